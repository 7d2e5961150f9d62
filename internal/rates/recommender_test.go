package rates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	bands map[string]any
	err   error
}

func (f fakeSource) Snapshot(_ context.Context, origin, dest string) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"lane": origin + "-" + dest, "rate_ranges": f.bands}, nil
}

func request() map[string]any {
	return map[string]any{
		"shipment_details": map[string]any{"container_type": "40 high cube"},
		"port_codes":       map[string]string{"origin": "CNSHA", "destination": "USLAX"},
	}
}

func TestRecommender_WarehouseBand(t *testing.T) {
	r := NewRecommender(fakeSource{bands: map[string]any{"40HC": "$2300-$2600"}})
	resp, err := r.Collaborator().Process(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "warehouse", resp["source"])
	assert.Equal(t, "$2300-$2600", resp["recommended_range"])
}

func TestRecommender_FallbackContainerType(t *testing.T) {
	// No 40HC lane entry; the general-purpose band is used.
	r := NewRecommender(fakeSource{bands: map[string]any{"40GP": "$2100-$2400"}})
	resp, err := r.Collaborator().Process(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "$2100-$2400", resp["recommended_range"])
}

func TestRecommender_MarketDataFallback(t *testing.T) {
	r := NewRecommender(fakeSource{err: errors.New("warehouse down")})
	req := request()
	req["market_data"] = map[string]any{
		"rate_ranges": map[string]any{"40HC": "$2500-$2800"},
	}
	resp, err := r.Collaborator().Process(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "market_data", resp["source"])
	assert.Equal(t, "$2500-$2800", resp["recommended_range"])
}

func TestRecommender_NoData(t *testing.T) {
	r := NewRecommender(nil)
	resp, err := r.Collaborator().Process(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "none", resp["source"])
	assert.NotContains(t, resp, "recommended_range")
}
