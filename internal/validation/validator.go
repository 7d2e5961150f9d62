// Package validation implements the mandatory-field gate: given a merged
// extraction and enriched port lookups it computes the ordered list of
// missing fields, which both drives routing and phrases clarification
// requests. Confirmations are forbidden while the list is non-empty.
package validation

import (
	"strings"

	"github.com/ignite/freightdesk/internal/domain"
)

// PortCheck is the enriched lookup result for a single port name.
type PortCheck struct {
	PortName  string `json:"port_name"`
	PortCode  string `json:"port_code"`
	Country   string `json:"country"`
	IsCountry bool   `json:"is_country"`
}

// PortChecks carries the lookups for both ends of the lane. A nil side
// means the lookup was unavailable and is treated as "not a country".
type PortChecks struct {
	Origin      *PortCheck
	Destination *PortCheck
}

// Human-readable labels reported to the customer, in validator order.
const (
	labelOrigin          = "Origin"
	labelOriginPort      = "Origin (specific port required)"
	labelDestination     = "Destination"
	labelDestinationPort = "Destination (specific port required)"
	labelShipmentType    = "Shipment Type (FCL or LCL)"
	labelContainerType   = "Container Type"
	labelContainerCount  = "Quantity (number of containers)"
	labelWeight          = "Weight"
	labelVolume          = "Volume"
	labelWeightWithLCL   = "Weight (required with volume for LCL)"
	labelVolumeWithLCL   = "Volume (required with weight for LCL)"
	labelShipmentDate    = "Shipment Date"
	labelCommodity       = "Commodity Name"
)

// Validate inspects the merged extraction and reports whether a
// confirmation may proceed, together with the priority-ordered list of
// missing mandatory fields.
func Validate(ex domain.Extraction, ports PortChecks) (bool, []string) {
	var missing []string
	sd := ex.ShipmentDetails

	missing = appendPortLabel(missing, sd.Origin, sd.OriginCountry, ports.Origin, labelOrigin, labelOriginPort)
	missing = appendPortLabel(missing, sd.Destination, sd.DestinationCountry, ports.Destination, labelDestination, labelDestinationPort)

	switch ex.ResolvedShipmentType() {
	case domain.ShipmentFCL:
		missing = appendIfEmpty(missing, sd.ContainerType, labelContainerType)
		missing = appendIfEmpty(missing, sd.ShipmentDate, labelShipmentDate)
		missing = appendIfEmpty(missing, sd.Commodity, labelCommodity)
		missing = appendIfEmpty(missing, sd.ContainerCount, labelContainerCount)
	case domain.ShipmentLCL:
		switch {
		case sd.Weight == "" && sd.Volume != "":
			missing = append(missing, labelWeightWithLCL)
		case sd.Weight != "" && sd.Volume == "":
			missing = append(missing, labelVolumeWithLCL)
		case sd.Weight == "" && sd.Volume == "":
			missing = append(missing, labelWeight, labelVolume)
		}
		missing = appendIfEmpty(missing, sd.ShipmentDate, labelShipmentDate)
		missing = appendIfEmpty(missing, sd.Commodity, labelCommodity)
		// LCL must never ask for container fields, whatever upstream
		// produced. Final safety pass.
		missing = stripContainerEntries(missing)
	default:
		missing = append(missing, labelShipmentType)
		missing = appendIfEmpty(missing, sd.ContainerType, labelContainerType)
		missing = appendIfEmpty(missing, sd.Weight, labelWeight)
		missing = appendIfEmpty(missing, sd.Volume, labelVolume)
		missing = appendIfEmpty(missing, sd.ShipmentDate, labelShipmentDate)
		missing = appendIfEmpty(missing, sd.Commodity, labelCommodity)
	}

	return len(missing) == 0, missing
}

// appendPortLabel applies the specific-port rule: the field is missing
// when empty, and a country-level value (either via the country field or
// the port lookup) demands a specific port.
func appendPortLabel(missing []string, port, country string, check *PortCheck, plain, specific string) []string {
	if port == "" {
		if country != "" {
			return append(missing, specific)
		}
		return append(missing, plain)
	}
	if check != nil && check.IsCountry {
		return append(missing, specific)
	}
	return missing
}

func appendIfEmpty(missing []string, value, label string) []string {
	if value == "" {
		return append(missing, label)
	}
	return missing
}

func stripContainerEntries(missing []string) []string {
	out := missing[:0]
	for _, label := range missing {
		if strings.Contains(strings.ToLower(label), "container") {
			continue
		}
		out = append(out, label)
	}
	return out
}
