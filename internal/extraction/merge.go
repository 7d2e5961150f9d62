// Package extraction implements the recency-priority merge that folds a
// per-email extraction into a thread's cumulative extraction. Non-empty new
// values overwrite old ones, empty values preserve them; declaring a
// shipment type is the only operation that can remove previously known
// fields.
package extraction

import (
	"strings"

	"github.com/ignite/freightdesk/internal/domain"
)

// notesDenylist filters boilerplate lines out of additional_notes during
// the line-wise union. Matching is case-insensitive substring.
var notesDenylist = []string{
	"please provide the updated quote",
	"please provide a quote",
	"looking forward to your reply",
	"thanks in advance",
	"best regards",
}

// Merge folds new into cumulative with recency priority. The result equals
// cumulative with every field taken from new iff the new value is
// non-empty; an empty value is "no update", never a delete. Shipment-type
// declarations prune fields that become incoherent (see mergeShipment).
func Merge(new, cumulative domain.Extraction) domain.Extraction {
	merged := cumulative
	merged.ShipmentDetails = mergeShipment(new.ShipmentDetails, cumulative.ShipmentDetails)
	merged.ContactInformation = mergeContact(new.ContactInformation, cumulative.ContactInformation)
	merged.TimelineInformation = mergeTimeline(new.TimelineInformation, cumulative.TimelineInformation)
	merged.SpecialRequirements = unionRequirements(cumulative.SpecialRequirements, new.SpecialRequirements)
	merged.RateInformation = mergeRates(new.RateInformation, cumulative.RateInformation)
	merged.AdditionalNotes = unionNotes(cumulative.AdditionalNotes, new.AdditionalNotes)
	return merged
}

func mergeShipment(new, cum domain.ShipmentDetails) domain.ShipmentDetails {
	out := cum

	take(&out.Origin, new.Origin)
	take(&out.Destination, new.Destination)
	take(&out.OriginCountry, new.OriginCountry)
	take(&out.DestinationCountry, new.DestinationCountry)
	take(&out.ContainerType, new.ContainerType)
	take(&out.ContainerCount, new.ContainerCount)
	take(&out.Commodity, new.Commodity)
	take(&out.Weight, new.Weight)
	take(&out.Volume, new.Volume)
	take(&out.ShipmentDate, new.ShipmentDate)
	take(&out.Incoterm, new.Incoterm)

	// A non-FCL/LCL shipment_type in new must not overwrite a settled one.
	if out.ShipmentType == "" {
		take(&out.ShipmentType, new.ShipmentType)
	}

	// Pruning runs after the field merges, so stray fields carried in the
	// same email as the shipment-type declaration cannot survive it.
	switch strings.ToUpper(strings.TrimSpace(new.ShipmentType)) {
	case domain.ShipmentLCL:
		out.ShipmentType = domain.ShipmentLCL
		// Container fields are incoherent for LCL.
		out.ContainerType = ""
		out.ContainerCount = ""
	case domain.ShipmentFCL:
		out.ShipmentType = domain.ShipmentFCL
		// Weight and volume are optional for FCL; unless restated in this
		// email, earlier values are obsolete for the FCL confirmation.
		if new.Weight == "" {
			out.Weight = ""
		}
		if new.Volume == "" {
			out.Volume = ""
		}
	}
	return out
}

func mergeContact(new, cum domain.ContactInformation) domain.ContactInformation {
	out := cum
	take(&out.Name, new.Name)
	take(&out.Email, new.Email)
	take(&out.Phone, new.Phone)
	take(&out.WhatsApp, new.WhatsApp)
	take(&out.Company, new.Company)
	return out
}

func mergeTimeline(new, cum domain.TimelineInformation) domain.TimelineInformation {
	out := cum
	take(&out.RequestedDates, new.RequestedDates)
	take(&out.TransitTime, new.TransitTime)
	take(&out.Urgency, new.Urgency)
	take(&out.Deadline, new.Deadline)
	return out
}

func mergeRates(new, cum map[string]string) map[string]string {
	if len(new) == 0 {
		return cum
	}
	out := make(map[string]string, len(cum)+len(new))
	for k, v := range cum {
		out[k] = v
	}
	for k, v := range new {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// unionRequirements appends new strings not already present by exact
// match, preserving insertion order.
func unionRequirements(cum, new []string) []string {
	if len(new) == 0 {
		return cum
	}
	out := make([]string, len(cum), len(cum)+len(new))
	copy(out, cum)
	seen := make(map[string]bool, len(cum))
	for _, r := range cum {
		seen[r] = true
	}
	for _, r := range new {
		if r != "" && !seen[r] {
			out = append(out, r)
			seen[r] = true
		}
	}
	return out
}

// unionNotes merges additional_notes line-wise, dropping blanks,
// duplicates, and denylisted boilerplate. Falls back to the new value if
// the union comes out empty.
func unionNotes(cum, new string) string {
	if strings.TrimSpace(new) == "" {
		return cum
	}
	var lines []string
	seen := map[string]bool{}
	for _, line := range strings.Split(cum+"\n"+new, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] || isBoilerplate(line) {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return new
	}
	return strings.Join(lines, "\n")
}

func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range notesDenylist {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func take(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
