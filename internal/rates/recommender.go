// Package rates recommends a price band for a shipment from warehouse
// lane benchmarks, falling back to the market snapshot supplied with the
// request.
package rates

import (
	"context"

	"github.com/ignite/freightdesk/internal/agents"
	"github.com/ignite/freightdesk/internal/containers"
)

// Source yields the rate bands for a lane keyed by container type.
type Source interface {
	Snapshot(ctx context.Context, originCode, destCode string) (map[string]any, error)
}

// Recommender computes rate recommendations. A nil source degrades to
// the request's market data.
type Recommender struct {
	source Source
}

// NewRecommender builds a recommender over the given source.
func NewRecommender(source Source) *Recommender {
	return &Recommender{source: source}
}

// Collaborator exposes the recommender in the workflow's map shape. The
// request carries shipment_details, port_codes, and market_data.
func (r *Recommender) Collaborator() agents.Collaborator {
	return agents.Func(func(ctx context.Context, req map[string]any) (map[string]any, error) {
		containerType := shipmentField(req, "container_type")
		origin, dest := portCodes(req)

		bands, source := r.lookupBands(ctx, origin, dest, req)
		resp := map[string]any{
			"rate_ranges": bands,
			"source":      source,
		}
		if band := pickBand(bands, containerType); band != "" {
			resp["recommended_range"] = band
			resp["container_type"] = containerType
		}
		return resp, nil
	})
}

func (r *Recommender) lookupBands(ctx context.Context, origin, dest string, req map[string]any) (map[string]any, string) {
	if r.source != nil && origin != "" && dest != "" {
		if snap, err := r.source.Snapshot(ctx, origin, dest); err == nil {
			if bands, ok := snap["rate_ranges"].(map[string]any); ok && len(bands) > 0 {
				return bands, "warehouse"
			}
		}
	}
	if md, ok := req["market_data"].(map[string]any); ok {
		if bands, ok := md["rate_ranges"].(map[string]any); ok && len(bands) > 0 {
			return bands, "market_data"
		}
	}
	return map[string]any{}, "none"
}

// pickBand selects the band for the container type, trying the
// standardized code and its general-purpose fallback.
func pickBand(bands map[string]any, containerType string) string {
	if containerType == "" {
		return ""
	}
	code := containerType
	if std, ok := containers.Standardize(containerType); ok {
		code = std
	}
	if band, ok := bands[code].(string); ok {
		return band
	}
	if band, ok := bands[containers.RateFallback(code)].(string); ok {
		return band
	}
	return ""
}

func shipmentField(req map[string]any, key string) string {
	sd, _ := req["shipment_details"].(map[string]any)
	s, _ := sd[key].(string)
	return s
}

func portCodes(req map[string]any) (origin, dest string) {
	pc, _ := req["port_codes"].(map[string]string)
	if pc != nil {
		return pc["origin"], pc["destination"]
	}
	// Tolerate the generic map shape after JSON round-trips.
	if m, ok := req["port_codes"].(map[string]any); ok {
		origin, _ = m["origin"].(string)
		dest, _ = m["destination"].(string)
	}
	return origin, dest
}
