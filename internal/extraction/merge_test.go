package extraction

import (
	"testing"

	"github.com/ignite/freightdesk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func shipment(sd domain.ShipmentDetails) domain.Extraction {
	return domain.Extraction{ShipmentDetails: sd}
}

func TestMerge_EmptyIsNoUpdate(t *testing.T) {
	cum := domain.Extraction{
		ShipmentDetails: domain.ShipmentDetails{
			Origin:      "Shanghai",
			Destination: "Los Angeles",
			Commodity:   "Electronics",
		},
		ContactInformation: domain.ContactInformation{Name: "John Doe", Email: "j@t.com"},
		AdditionalNotes:    "Repeat customer",
	}

	merged := Merge(domain.Extraction{}, cum)
	assert.Equal(t, cum, merged)
}

func TestMerge_RecencyPriority(t *testing.T) {
	cum := shipment(domain.ShipmentDetails{Origin: "Shanghai", Commodity: "Electronics"})
	new := shipment(domain.ShipmentDetails{Origin: "Ningbo", Destination: "Long Beach"})

	merged := Merge(new, cum)
	assert.Equal(t, "Ningbo", merged.ShipmentDetails.Origin)
	assert.Equal(t, "Long Beach", merged.ShipmentDetails.Destination)
	assert.Equal(t, "Electronics", merged.ShipmentDetails.Commodity)
}

func TestMerge_NoLose(t *testing.T) {
	cum := domain.Extraction{
		ShipmentDetails:     domain.ShipmentDetails{Origin: "Shanghai", Weight: "500 kg", Volume: "2 cbm"},
		ContactInformation:  domain.ContactInformation{Phone: "+86 123"},
		TimelineInformation: domain.TimelineInformation{Urgency: "high"},
		RateInformation:     map[string]string{"quoted_rate": "$900"},
	}
	new := domain.Extraction{
		ContactInformation: domain.ContactInformation{Name: "Wei"},
	}

	merged := Merge(new, cum)
	assert.Equal(t, "Shanghai", merged.ShipmentDetails.Origin)
	assert.Equal(t, "500 kg", merged.ShipmentDetails.Weight)
	assert.Equal(t, "+86 123", merged.ContactInformation.Phone)
	assert.Equal(t, "Wei", merged.ContactInformation.Name)
	assert.Equal(t, "high", merged.TimelineInformation.Urgency)
	assert.Equal(t, "$900", merged.RateInformation["quoted_rate"])
}

func TestMerge_LCLPrunesContainerFields(t *testing.T) {
	cum := shipment(domain.ShipmentDetails{
		ContainerType:  "40HC",
		ContainerCount: "2",
		Origin:         "Shanghai",
	})
	new := shipment(domain.ShipmentDetails{ShipmentType: "lcl", Weight: "800 kg"})

	merged := Merge(new, cum)
	assert.Equal(t, domain.ShipmentLCL, merged.ShipmentDetails.ShipmentType)
	assert.Empty(t, merged.ShipmentDetails.ContainerType)
	assert.Empty(t, merged.ShipmentDetails.ContainerCount)
	assert.Equal(t, "Shanghai", merged.ShipmentDetails.Origin)
	assert.Equal(t, "800 kg", merged.ShipmentDetails.Weight)
}

func TestMerge_LCLPrunesStrayContainerFieldsInSameEmail(t *testing.T) {
	cum := shipment(domain.ShipmentDetails{Origin: "Shanghai"})
	// Extractors sometimes hallucinate container fields alongside an LCL
	// declaration; the declaration wins.
	new := shipment(domain.ShipmentDetails{
		ShipmentType:   "LCL",
		ContainerType:  "40HC",
		ContainerCount: "2",
	})

	merged := Merge(new, cum)
	assert.Equal(t, domain.ShipmentLCL, merged.ShipmentDetails.ShipmentType)
	assert.Empty(t, merged.ShipmentDetails.ContainerType)
	assert.Empty(t, merged.ShipmentDetails.ContainerCount)
}

func TestMerge_FCLDropsStaleWeightAndVolume(t *testing.T) {
	cum := shipment(domain.ShipmentDetails{Weight: "20,000 kg", Volume: "55 cbm"})

	// FCL without restated weight/volume: both become obsolete.
	merged := Merge(shipment(domain.ShipmentDetails{ShipmentType: "FCL"}), cum)
	assert.Equal(t, domain.ShipmentFCL, merged.ShipmentDetails.ShipmentType)
	assert.Empty(t, merged.ShipmentDetails.Weight)
	assert.Empty(t, merged.ShipmentDetails.Volume)

	// FCL restating weight retains it; volume still dropped.
	merged = Merge(shipment(domain.ShipmentDetails{ShipmentType: "FCL", Weight: "18,000 kg"}), cum)
	assert.Equal(t, "18,000 kg", merged.ShipmentDetails.Weight)
	assert.Empty(t, merged.ShipmentDetails.Volume)
}

func TestMerge_UnknownShipmentTypeDoesNotOverwrite(t *testing.T) {
	cum := shipment(domain.ShipmentDetails{ShipmentType: "FCL", ContainerType: "20GP"})
	merged := Merge(shipment(domain.ShipmentDetails{ShipmentType: "maybe"}), cum)
	assert.Equal(t, domain.ShipmentFCL, merged.ShipmentDetails.ShipmentType)
	assert.Equal(t, "20GP", merged.ShipmentDetails.ContainerType)
}

func TestMerge_SpecialRequirementsOrderedUnion(t *testing.T) {
	cum := domain.Extraction{SpecialRequirements: []string{"Hazmat", "Fragile"}}
	new := domain.Extraction{SpecialRequirements: []string{"Fragile", "Temperature controlled"}}

	merged := Merge(new, cum)
	assert.Equal(t, []string{"Hazmat", "Fragile", "Temperature controlled"}, merged.SpecialRequirements)
}

func TestMerge_AdditionalNotes(t *testing.T) {
	tests := []struct {
		name string
		cum  string
		new  string
		want string
	}{
		{"new lines appended", "first fact", "second fact", "first fact\nsecond fact"},
		{"duplicates dropped", "same line", "same line", "same line"},
		{"blank new preserves", "kept", "   ", "kept"},
		{"boilerplate filtered", "real note", "Please provide the updated quote", "real note"},
		{
			name: "all boilerplate falls back to new",
			cum:  "",
			new:  "please provide the updated quote",
			want: "please provide the updated quote",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(
				domain.Extraction{AdditionalNotes: tt.new},
				domain.Extraction{AdditionalNotes: tt.cum},
			)
			assert.Equal(t, tt.want, merged.AdditionalNotes)
		})
	}
}

func TestMerge_RateInformationEmptyValuesPreserve(t *testing.T) {
	cum := domain.Extraction{RateInformation: map[string]string{"quoted_rate": "$900"}}
	new := domain.Extraction{RateInformation: map[string]string{"quoted_rate": "", "validity": "30 days"}}

	merged := Merge(new, cum)
	assert.Equal(t, "$900", merged.RateInformation["quoted_rate"])
	assert.Equal(t, "30 days", merged.RateInformation["validity"])
}

func TestMerge_AbsentCategoryPreserved(t *testing.T) {
	cum := domain.Extraction{
		TimelineInformation: domain.TimelineInformation{RequestedDates: "2024-03-15"},
		RateInformation:     map[string]string{"quoted_rate": "$900"},
	}
	merged := Merge(domain.Extraction{AdditionalNotes: "note"}, cum)
	assert.Equal(t, "2024-03-15", merged.TimelineInformation.RequestedDates)
	assert.Equal(t, cum.RateInformation, merged.RateInformation)
}
