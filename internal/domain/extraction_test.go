package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseExtraction(t *testing.T) {
	raw := map[string]any{
		"shipment_details": map[string]any{
			"origin":          "Shanghai",
			"destination":     "Los Angeles",
			"container_type":  "40HC",
			"container_count": float64(2),
			"shipment_type":   "FCL",
			"weight":          "  20,000 kg ",
			"commodity":       "",
		},
		"contact_information": map[string]any{
			"name":  "John Doe",
			"email": "john.doe@techcorp.com",
		},
		"special_requirements": []any{"Fragile goods", "", "  "},
		"rate_information":     map[string]any{"quoted_rate": "$2,400", "currency": ""},
		"additional_notes":     "Repeat customer",
	}

	e := ParseExtraction(raw)
	assert.Equal(t, "Shanghai", e.ShipmentDetails.Origin)
	assert.Equal(t, "2", e.ShipmentDetails.ContainerCount)
	assert.Equal(t, "20,000 kg", e.ShipmentDetails.Weight)
	assert.Empty(t, e.ShipmentDetails.Commodity)
	assert.Equal(t, "John Doe", e.ContactInformation.Name)
	assert.Equal(t, []string{"Fragile goods"}, e.SpecialRequirements)
	assert.Equal(t, map[string]string{"quoted_rate": "$2,400"}, e.RateInformation)
	assert.Equal(t, "Repeat customer", e.AdditionalNotes)
}

func TestParseExtraction_NilAndEmpty(t *testing.T) {
	assert.True(t, ParseExtraction(nil).IsEmpty())
	assert.True(t, ParseExtraction(map[string]any{}).IsEmpty())
}

func TestResolvedShipmentType(t *testing.T) {
	tests := []struct {
		name string
		ex   Extraction
		want string
	}{
		{"explicit FCL", Extraction{ShipmentDetails: ShipmentDetails{ShipmentType: "fcl"}}, "FCL"},
		{"explicit LCL", Extraction{ShipmentDetails: ShipmentDetails{ShipmentType: " LCL "}}, "LCL"},
		{"unknown", Extraction{}, ""},
		{"garbage value", Extraction{ShipmentDetails: ShipmentDetails{ShipmentType: "full"}}, ""},
		{"from special requirements", Extraction{SpecialRequirements: []string{"needs fcl service"}}, "FCL"},
		{"lcl in requirements", Extraction{SpecialRequirements: []string{"LCL consolidation ok"}}, "LCL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ex.ResolvedShipmentType())
		})
	}
}

func TestToMap_RoundTripsNonEmptyFields(t *testing.T) {
	e := Extraction{
		ShipmentDetails:     ShipmentDetails{Origin: "Shanghai", ShipmentType: "FCL"},
		ContactInformation:  ContactInformation{Email: "a@b.com"},
		SpecialRequirements: []string{"Hazmat"},
		RateInformation:     map[string]string{"quoted_rate": "$1,000"},
	}

	back := ParseExtraction(e.ToMap())
	assert.Equal(t, e, back)
}
