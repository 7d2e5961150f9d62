// Package responder generates the five customer-facing response types
// from Liquid templates. Generation is deterministic: the workflow's
// routing decides WHICH response is sent, the responder only phrases it.
package responder

import (
	"context"
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/ignite/freightdesk/internal/agents"
)

// Generator renders response templates with a shared Liquid engine.
type Generator struct {
	engine    *liquid.Engine
	templates map[string]compiled
	from      signature
}

type compiled struct {
	subject *liquid.Template
	body    *liquid.Template
}

type signature struct {
	Team string
}

// Option customizes the generator.
type Option func(*Generator)

// WithTeamName sets the signature line on outgoing responses.
func WithTeamName(name string) Option {
	return func(g *Generator) { g.from.Team = name }
}

// New compiles every template once. A template error is a programming
// error and fails construction.
func New(opts ...Option) (*Generator, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("default", func(value any, defaultVal string) any {
		if value == nil {
			return defaultVal
		}
		s := fmt.Sprintf("%v", value)
		if s == "" || s == "<nil>" {
			return defaultVal
		}
		return value
	})

	g := &Generator{
		engine:    engine,
		templates: map[string]compiled{},
		from:      signature{Team: "FreightDesk Quotes Team"},
	}
	for _, opt := range opts {
		opt(g)
	}

	for name, src := range templateSources {
		subject, err := engine.ParseString(src.subject)
		if err != nil {
			return nil, fmt.Errorf("responder: compiling %s subject: %w", name, err)
		}
		body, err := engine.ParseString(src.body)
		if err != nil {
			return nil, fmt.Errorf("responder: compiling %s body: %w", name, err)
		}
		g.templates[name] = compiled{subject: subject, body: body}
	}
	return g, nil
}

// Clarification asks the customer for the missing mandatory fields, in
// the priority order the request carries.
func (g *Generator) Clarification() agents.Collaborator {
	return g.collaborator("clarification")
}

// Confirmation asks the customer to confirm the collected shipment
// details before forwarder assignment.
func (g *Generator) Confirmation() agents.Collaborator {
	return g.collaborator("confirmation")
}

// Acknowledgment replies to forwarders and sales people.
func (g *Generator) Acknowledgment() agents.Collaborator {
	return g.collaborator("acknowledgment")
}

// ConfirmationAck tells the customer their confirmed booking is moving
// to rate sourcing.
func (g *Generator) ConfirmationAck() agents.Collaborator {
	return g.collaborator("confirmation_acknowledgment")
}

// Quote presents forwarder rates back to the customer.
func (g *Generator) Quote() agents.Collaborator {
	return g.collaborator("customer_quote")
}

func (g *Generator) collaborator(responseType string) agents.Collaborator {
	return agents.Func(func(_ context.Context, req map[string]any) (map[string]any, error) {
		tpl := g.templates[responseType]
		bindings := g.bindings(req)

		subject, err := tpl.subject.Render(bindings)
		if err != nil {
			return nil, fmt.Errorf("responder: rendering %s subject: %w", responseType, err)
		}
		body, err := tpl.body.Render(bindings)
		if err != nil {
			return nil, fmt.Errorf("responder: rendering %s body: %w", responseType, err)
		}
		return map[string]any{
			"subject":       strings.TrimSpace(string(subject)),
			"body":          strings.TrimSpace(string(body)),
			"response_type": responseType,
		}, nil
	})
}

// bindings flattens the workflow request into template variables.
func (g *Generator) bindings(req map[string]any) map[string]any {
	b := map[string]any{
		"first_name":     stringAt(req, "customer_first_name"),
		"team":           g.from.Team,
		"subject":        stringAt(req, "subject"),
		"missing_fields": stringsAt(req, "missing_fields"),
	}

	ed, _ := req["extracted_data"].(map[string]any)
	sd, _ := ed["shipment_details"].(map[string]any)
	b["origin_display"] = portDisplay(req, "origin", stringAt(sd, "origin"))
	b["destination_display"] = portDisplay(req, "destination", stringAt(sd, "destination"))
	b["detail_lines"] = detailLines(sd)
	b["rate_lines"] = rateLines(req)

	if sp, ok := req["assigned_sales_person"].(map[string]any); ok {
		b["sales_person"] = stringAt(sp, "name")
	}
	if rr, ok := req["rate_recommendation"].(map[string]any); ok {
		if band, ok := rr["recommended_range"].(string); ok {
			b["recommended_range"] = band
		}
	}
	return b
}

// portDisplay renders "<name> (<code>)" when the lookup resolved a code,
// otherwise the raw extracted value.
func portDisplay(req map[string]any, side, raw string) string {
	pl, _ := req["port_lookup"].(map[string]any)
	check, _ := pl[side].(map[string]any)
	name := stringAt(check, "port_name")
	code := stringAt(check, "port_code")
	if name != "" && code != "" {
		return fmt.Sprintf("%s (%s)", name, code)
	}
	if name != "" {
		return name
	}
	return raw
}

// detailLines lists the shipment facts the customer is asked to confirm.
// Only stated fields appear; container lines never appear for LCL.
func detailLines(sd map[string]any) []map[string]string {
	shipmentType := strings.ToUpper(stringAt(sd, "shipment_type"))
	fields := []struct {
		key   string
		label string
	}{
		{"shipment_type", "Shipment Type"},
		{"container_type", "Container Type"},
		{"container_count", "Containers"},
		{"commodity", "Commodity"},
		{"weight", "Weight"},
		{"volume", "Volume"},
		{"shipment_date", "Shipment Date"},
		{"requested_dates", "Requested Dates"},
		{"incoterm", "Incoterm"},
	}

	var lines []map[string]string
	for _, f := range fields {
		if shipmentType == "LCL" && strings.HasPrefix(f.key, "container") {
			continue
		}
		if v := stringAt(sd, f.key); v != "" {
			lines = append(lines, map[string]string{"label": f.label, "value": v})
		}
	}
	return lines
}

func rateLines(req map[string]any) []map[string]string {
	ri, _ := req["rate_information"].(map[string]any)
	rates, _ := ri["rate_information"].(map[string]any)
	if rates == nil {
		rates, _ = ri["rates"].(map[string]any)
	}
	var lines []map[string]string
	for k, v := range rates {
		lines = append(lines, map[string]string{"label": k, "value": fmt.Sprintf("%v", v)})
	}
	return lines
}

func stringAt(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func stringsAt(m map[string]any, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
