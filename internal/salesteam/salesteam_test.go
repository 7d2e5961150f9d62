package salesteam

import (
	"testing"

	"github.com/ignite/freightdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractionTo(country string) domain.Extraction {
	var ex domain.Extraction
	ex.ShipmentDetails.DestinationCountry = country
	return ex
}

func TestRoster_Assign(t *testing.T) {
	r := Default()

	t.Run("region match", func(t *testing.T) {
		got := r.Assign(extractionTo("China"))
		require.NotNil(t, got)
		assert.Equal(t, "Wei Chen", got["name"])
		assert.Equal(t, "region", got["matched_on"])
	})

	t.Run("round robin cycles on unknown region", func(t *testing.T) {
		r := NewRoster([]Member{
			{Name: "A", Email: "a@x.io"},
			{Name: "B", Email: "b@x.io"},
		})
		first := r.Assign(extractionTo("Chile"))
		second := r.Assign(extractionTo("Chile"))
		third := r.Assign(extractionTo("Chile"))
		assert.Equal(t, "A", first["name"])
		assert.Equal(t, "B", second["name"])
		assert.Equal(t, "A", third["name"])
	})

	t.Run("empty roster assigns nobody", func(t *testing.T) {
		assert.Nil(t, NewRoster(nil).Assign(extractionTo("China")))
	})
}
