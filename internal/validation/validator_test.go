package validation

import (
	"strings"
	"testing"

	"github.com/ignite/freightdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeFCL() domain.Extraction {
	return domain.Extraction{
		ShipmentDetails: domain.ShipmentDetails{
			Origin:         "Shanghai",
			Destination:    "Los Angeles",
			ContainerType:  "40HC",
			ContainerCount: "2",
			Commodity:      "Electronics",
			ShipmentType:   "FCL",
			ShipmentDate:   "2024-03-15",
		},
	}
}

func TestValidate_CompleteFCL(t *testing.T) {
	ok, missing := Validate(completeFCL(), PortChecks{})
	assert.True(t, ok)
	assert.Empty(t, missing)
}

func TestValidate_MinimalRequest(t *testing.T) {
	// "I want to ship from USA to China", only countries known.
	ex := domain.Extraction{
		ShipmentDetails: domain.ShipmentDetails{
			OriginCountry:      "USA",
			DestinationCountry: "China",
		},
	}

	ok, missing := Validate(ex, PortChecks{})
	assert.False(t, ok)
	assert.Equal(t, []string{
		"Origin (specific port required)",
		"Destination (specific port required)",
		"Shipment Type (FCL or LCL)",
		"Container Type",
		"Weight",
		"Volume",
		"Shipment Date",
		"Commodity Name",
	}, missing)
}

func TestValidate_PortResolvesToCountry(t *testing.T) {
	ex := completeFCL()
	ex.ShipmentDetails.Origin = "USA"

	ok, missing := Validate(ex, PortChecks{
		Origin: &PortCheck{PortName: "USA", IsCountry: true},
	})
	assert.False(t, ok)
	assert.Equal(t, []string{"Origin (specific port required)"}, missing)
}

func TestValidate_NilPortLookupTreatedAsNotACountry(t *testing.T) {
	ok, missing := Validate(completeFCL(), PortChecks{Origin: nil, Destination: nil})
	assert.True(t, ok)
	assert.Empty(t, missing)
}

func TestValidate_FCLRequirements(t *testing.T) {
	ex := domain.Extraction{
		ShipmentDetails: domain.ShipmentDetails{
			Origin:       "Shanghai",
			Destination:  "Los Angeles",
			ShipmentType: "FCL",
		},
	}

	ok, missing := Validate(ex, PortChecks{})
	assert.False(t, ok)
	assert.Equal(t, []string{
		"Container Type",
		"Shipment Date",
		"Commodity Name",
		"Quantity (number of containers)",
	}, missing)
}

func TestValidate_LCL(t *testing.T) {
	base := domain.ShipmentDetails{
		Origin:       "Shanghai",
		Destination:  "Los Angeles",
		ShipmentType: "LCL",
		ShipmentDate: "2024-03-15",
		Commodity:    "Textiles",
	}

	tests := []struct {
		name    string
		mutate  func(*domain.ShipmentDetails)
		missing []string
	}{
		{
			name:    "complete",
			mutate:  func(sd *domain.ShipmentDetails) { sd.Weight = "800 kg"; sd.Volume = "3 cbm" },
			missing: nil,
		},
		{
			name:    "weight without volume",
			mutate:  func(sd *domain.ShipmentDetails) { sd.Weight = "800 kg" },
			missing: []string{"Volume (required with weight for LCL)"},
		},
		{
			name:    "volume without weight",
			mutate:  func(sd *domain.ShipmentDetails) { sd.Volume = "3 cbm" },
			missing: []string{"Weight (required with volume for LCL)"},
		},
		{
			name:    "neither",
			mutate:  func(sd *domain.ShipmentDetails) {},
			missing: []string{"Weight", "Volume"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sd := base
			tt.mutate(&sd)
			ok, missing := Validate(domain.Extraction{ShipmentDetails: sd}, PortChecks{})
			assert.Equal(t, len(tt.missing) == 0, ok)
			assert.Equal(t, tt.missing, missing)
		})
	}
}

// LCL never asks for containers, whatever the input looks like.
func TestValidate_LCLNeverMentionsContainers(t *testing.T) {
	inputs := []domain.Extraction{
		{ShipmentDetails: domain.ShipmentDetails{ShipmentType: "LCL"}},
		{ShipmentDetails: domain.ShipmentDetails{ShipmentType: "lcl", ContainerType: "40HC"}},
		{SpecialRequirements: []string{"LCL shipment please"}},
		{ShipmentDetails: domain.ShipmentDetails{ShipmentType: "LCL", Weight: "1 t", Volume: "2 cbm"}},
	}

	for _, ex := range inputs {
		_, missing := Validate(ex, PortChecks{})
		for _, label := range missing {
			lower := strings.ToLower(label)
			assert.NotContains(t, lower, "container_count")
			assert.NotContains(t, lower, "number of containers")
			assert.NotContains(t, lower, "quantity (number of containers)")
			assert.NotContains(t, lower, "container")
		}
	}
}

// ShipmentType settled via special_requirements counts as known.
func TestValidate_TypeFromSpecialRequirements(t *testing.T) {
	ex := completeFCL()
	ex.ShipmentDetails.ShipmentType = ""
	ex.SpecialRequirements = []string{"FCL only"}

	ok, missing := Validate(ex, PortChecks{})
	assert.True(t, ok, "missing: %v", missing)
}

// Adding facts never introduces new missing fields (within a settled
// shipment type).
func TestValidate_MissingFieldsMonotonic(t *testing.T) {
	base := domain.Extraction{
		ShipmentDetails: domain.ShipmentDetails{ShipmentType: "FCL", Origin: "Shanghai"},
	}
	_, missingBase := Validate(base, PortChecks{})

	super := base
	super.ShipmentDetails.Destination = "Los Angeles"
	super.ShipmentDetails.ContainerType = "40HC"
	_, missingSuper := Validate(super, PortChecks{})

	baseSet := map[string]bool{}
	for _, m := range missingBase {
		baseSet[m] = true
	}
	for _, m := range missingSuper {
		assert.True(t, baseSet[m], "new missing field %q appeared on superset", m)
	}
	assert.Less(t, len(missingSuper), len(missingBase))
}

func TestPrioritize(t *testing.T) {
	raw := []string{
		"Commodity Name",
		"Origin (specific port required)",
		"Shipment Date",
		"email",
		"Destination (specific port required)",
		"Container Type",
		"weight",
	}

	got := Prioritize(raw)
	require.Equal(t, []string{
		"Destination (specific port required)",
		"Origin (specific port required)",
		"Container Type",
		"Shipment Date",
		"Commodity Name",
		"weight",
		"email",
	}, got)
}

func TestPrioritize_UnknownFieldsSink(t *testing.T) {
	got := Prioritize([]string{"zz_mystery", "origin", "something else"})
	assert.Equal(t, "origin", got[0])
	assert.Equal(t, []string{"something else", "zz_mystery"}, got[1:])
}

func TestPrioritize_Stability(t *testing.T) {
	// Substring matching works in both directions and ignores case.
	got := Prioritize([]string{"CONTAINER_TYPE", "destination"})
	assert.Equal(t, []string{"destination", "CONTAINER_TYPE"}, got)
}
