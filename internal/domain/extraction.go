package domain

import (
	"fmt"
	"strings"
)

// ShipmentType values recognized in shipment_details.
const (
	ShipmentFCL = "FCL"
	ShipmentLCL = "LCL"
)

// ShipmentDetails holds the shipment facts of an extraction. Empty string
// means "unknown"; emptiness is resolved at ingress so the merge engine
// never re-checks it.
type ShipmentDetails struct {
	Origin             string `json:"origin,omitempty"`
	Destination        string `json:"destination,omitempty"`
	OriginCountry      string `json:"origin_country,omitempty"`
	DestinationCountry string `json:"destination_country,omitempty"`
	ContainerType      string `json:"container_type,omitempty"`
	ContainerCount     string `json:"container_count,omitempty"`
	Commodity          string `json:"commodity,omitempty"`
	Weight             string `json:"weight,omitempty"`
	Volume             string `json:"volume,omitempty"`
	ShipmentType       string `json:"shipment_type,omitempty"`
	ShipmentDate       string `json:"shipment_date,omitempty"`
	Incoterm           string `json:"incoterm,omitempty"`
}

// ContactInformation holds customer contact facts.
type ContactInformation struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Company  string `json:"company,omitempty"`
}

// TimelineInformation holds scheduling facts.
type TimelineInformation struct {
	RequestedDates string `json:"requested_dates,omitempty"`
	TransitTime    string `json:"transit_time,omitempty"`
	Urgency        string `json:"urgency,omitempty"`
	Deadline       string `json:"deadline,omitempty"`
}

// Extraction is the structured view of one email, and (cumulatively)
// of a whole thread.
type Extraction struct {
	ShipmentDetails     ShipmentDetails     `json:"shipment_details"`
	ContactInformation  ContactInformation  `json:"contact_information"`
	TimelineInformation TimelineInformation `json:"timeline_information"`
	SpecialRequirements []string            `json:"special_requirements,omitempty"`
	RateInformation     map[string]string   `json:"rate_information,omitempty"`
	AdditionalNotes     string              `json:"additional_notes,omitempty"`
}

// IsEmpty reports whether the extraction carries no facts at all.
func (e Extraction) IsEmpty() bool {
	return e.ShipmentDetails == (ShipmentDetails{}) &&
		e.ContactInformation == (ContactInformation{}) &&
		e.TimelineInformation == (TimelineInformation{}) &&
		len(e.SpecialRequirements) == 0 &&
		len(e.RateInformation) == 0 &&
		e.AdditionalNotes == ""
}

// ResolvedShipmentType returns FCL or LCL when the extraction settles the
// type, either via shipment_type or a mention in special_requirements.
// Returns "" when the type is unknown.
func (e Extraction) ResolvedShipmentType() string {
	switch strings.ToUpper(strings.TrimSpace(e.ShipmentDetails.ShipmentType)) {
	case ShipmentFCL:
		return ShipmentFCL
	case ShipmentLCL:
		return ShipmentLCL
	}
	for _, req := range e.SpecialRequirements {
		up := strings.ToUpper(req)
		if strings.Contains(up, ShipmentFCL) {
			return ShipmentFCL
		}
		if strings.Contains(up, ShipmentLCL) {
			return ShipmentLCL
		}
	}
	return ""
}

// ParseExtraction converts a collaborator's map-shaped extracted_data
// into the typed model. Empty strings collapse to the zero value, which
// the merge engine treats as "no update". Unknown keys are ignored.
func ParseExtraction(raw map[string]any) Extraction {
	var e Extraction
	if raw == nil {
		return e
	}
	if sd, ok := raw["shipment_details"].(map[string]any); ok {
		e.ShipmentDetails = ShipmentDetails{
			Origin:             str(sd["origin"]),
			Destination:        str(sd["destination"]),
			OriginCountry:      str(sd["origin_country"]),
			DestinationCountry: str(sd["destination_country"]),
			ContainerType:      str(sd["container_type"]),
			ContainerCount:     str(sd["container_count"]),
			Commodity:          str(sd["commodity"]),
			Weight:             str(sd["weight"]),
			Volume:             str(sd["volume"]),
			ShipmentType:       str(sd["shipment_type"]),
			ShipmentDate:       str(sd["shipment_date"]),
			Incoterm:           str(sd["incoterm"]),
		}
	}
	if ci, ok := raw["contact_information"].(map[string]any); ok {
		e.ContactInformation = ContactInformation{
			Name:     str(ci["name"]),
			Email:    str(ci["email"]),
			Phone:    str(ci["phone"]),
			WhatsApp: str(ci["whatsapp"]),
			Company:  str(ci["company"]),
		}
	}
	if ti, ok := raw["timeline_information"].(map[string]any); ok {
		e.TimelineInformation = TimelineInformation{
			RequestedDates: str(ti["requested_dates"]),
			TransitTime:    str(ti["transit_time"]),
			Urgency:        str(ti["urgency"]),
			Deadline:       str(ti["deadline"]),
		}
	}
	switch sr := raw["special_requirements"].(type) {
	case []any:
		for _, v := range sr {
			if s := strings.TrimSpace(str(v)); s != "" {
				e.SpecialRequirements = append(e.SpecialRequirements, s)
			}
		}
	case []string:
		for _, s := range sr {
			if s = strings.TrimSpace(s); s != "" {
				e.SpecialRequirements = append(e.SpecialRequirements, s)
			}
		}
	case string:
		if s := strings.TrimSpace(sr); s != "" {
			e.SpecialRequirements = append(e.SpecialRequirements, s)
		}
	}
	if ri, ok := raw["rate_information"].(map[string]any); ok {
		for k, v := range ri {
			if s := str(v); s != "" {
				if e.RateInformation == nil {
					e.RateInformation = map[string]string{}
				}
				e.RateInformation[k] = s
			}
		}
	}
	e.AdditionalNotes = str(raw["additional_notes"])
	return e
}

// ToMap renders the extraction in the map shape collaborators consume.
func (e Extraction) ToMap() map[string]any {
	sd := map[string]any{}
	putNonEmpty(sd, "origin", e.ShipmentDetails.Origin)
	putNonEmpty(sd, "destination", e.ShipmentDetails.Destination)
	putNonEmpty(sd, "origin_country", e.ShipmentDetails.OriginCountry)
	putNonEmpty(sd, "destination_country", e.ShipmentDetails.DestinationCountry)
	putNonEmpty(sd, "container_type", e.ShipmentDetails.ContainerType)
	putNonEmpty(sd, "container_count", e.ShipmentDetails.ContainerCount)
	putNonEmpty(sd, "commodity", e.ShipmentDetails.Commodity)
	putNonEmpty(sd, "weight", e.ShipmentDetails.Weight)
	putNonEmpty(sd, "volume", e.ShipmentDetails.Volume)
	putNonEmpty(sd, "shipment_type", e.ShipmentDetails.ShipmentType)
	putNonEmpty(sd, "shipment_date", e.ShipmentDetails.ShipmentDate)
	putNonEmpty(sd, "incoterm", e.ShipmentDetails.Incoterm)

	ci := map[string]any{}
	putNonEmpty(ci, "name", e.ContactInformation.Name)
	putNonEmpty(ci, "email", e.ContactInformation.Email)
	putNonEmpty(ci, "phone", e.ContactInformation.Phone)
	putNonEmpty(ci, "whatsapp", e.ContactInformation.WhatsApp)
	putNonEmpty(ci, "company", e.ContactInformation.Company)

	ti := map[string]any{}
	putNonEmpty(ti, "requested_dates", e.TimelineInformation.RequestedDates)
	putNonEmpty(ti, "transit_time", e.TimelineInformation.TransitTime)
	putNonEmpty(ti, "urgency", e.TimelineInformation.Urgency)
	putNonEmpty(ti, "deadline", e.TimelineInformation.Deadline)

	out := map[string]any{
		"shipment_details":     sd,
		"contact_information":  ci,
		"timeline_information": ti,
	}
	if len(e.SpecialRequirements) > 0 {
		reqs := make([]any, len(e.SpecialRequirements))
		for i, r := range e.SpecialRequirements {
			reqs[i] = r
		}
		out["special_requirements"] = reqs
	}
	if len(e.RateInformation) > 0 {
		ri := map[string]any{}
		for k, v := range e.RateInformation {
			ri[k] = v
		}
		out["rate_information"] = ri
	}
	if e.AdditionalNotes != "" {
		out["additional_notes"] = e.AdditionalNotes
	}
	return out
}

func putNonEmpty(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func str(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	case int:
		return fmt.Sprintf("%d", s)
	case bool:
		if s {
			return "true"
		}
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
