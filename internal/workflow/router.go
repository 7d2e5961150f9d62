package workflow

import "strings"

// Node names. The graph has a single entry (NodeClassifyEmail) and every
// path ends at NodeUpdateThread, the turn committer.
const (
	NodeClassifyEmail        = "classify_email"
	NodeConversationState    = "conversation_state"
	NodeAnalyzeThread        = "analyze_thread"
	NodeExtractData          = "extract_data"
	NodeValidateData         = "validate_data"
	NodeEnrichPorts          = "enrich_ports"
	NodeStandardizeContainer = "standardize_container"
	NodeRecommendRates       = "recommend_rates"
	NodeNextAction           = "determine_next_action"
	NodeAssignSalesPerson    = "assign_sales_person"
	NodeClarification        = "generate_clarification_response"
	NodeConfirmation         = "generate_confirmation_response"
	NodeConfirmationAck      = "generate_confirmation_acknowledgment"
	NodeAcknowledgment       = "generate_acknowledgment_response"
	NodeDetectForwarder      = "detect_forwarder"
	NodeProcessForwarder     = "process_forwarder_response"
	NodeAssignForwarders     = "assign_forwarders"
	NodeDraftRateRequest     = "draft_rate_request"
	NodeNotifySales          = "notify_sales"
	NodeCustomerQuote        = "generate_customer_quote"
	NodeUpdateThread         = "update_thread"
)

// Confidence thresholds for the decision point.
const (
	confidenceHigh = 0.7
	confidenceLow  = 0.5
)

// routeAfterClassification sends sales people and forwarders to the
// acknowledgment path and everyone else (customers, unrecognized tags)
// into the conversation pipeline. A classification that failed on
// missing input commits the turn with no response.
func routeAfterClassification(s *State) string {
	classification := s.Result(SlotClassification)
	if !classification.OK() && s.ShouldEscalate {
		return NodeUpdateThread
	}
	switch senderType(classification) {
	case "sales_person", "forwarder":
		return NodeAcknowledgment
	default:
		return NodeConversationState
	}
}

func senderType(classification *Result) string {
	if sc := classification.Map("sender_classification"); sc != nil {
		if t, ok := sc["type"].(string); ok && t != "" {
			return t
		}
	}
	return classification.Str("sender_type")
}

// routeAfterNextAction: forwarder-flavored actions go to forwarder
// detection; clarification, confirmation, acknowledgment, and anything
// unrecognized go to sales-person assignment.
func routeAfterNextAction(s *State) string {
	action := nextActionTag(s)
	if strings.Contains(action, "forwarder") {
		return NodeDetectForwarder
	}
	return NodeAssignSalesPerson
}

func nextActionTag(s *State) string {
	na := s.Result(SlotNextAction)
	if tag := na.Str("next_action"); tag != "" {
		return strings.ToLower(tag)
	}
	return strings.ToLower(na.Str("action"))
}

// routeAfterSalesAssignment is the decision point: mandatory fields gate
// everything, then customer confirmation picks between confirmation
// request and confirmation acknowledgment, with a clarification fallback
// on low confidence.
func routeAfterSalesAssignment(s *State) string {
	missing := s.Missing
	if len(missing) == 0 {
		missing = s.Result(SlotNextAction).Strings("missing_fields")
	}
	if len(missing) > 0 {
		return NodeClarification
	}
	if overallConfidence(s) < confidenceLow {
		return NodeClarification
	}
	if !customerConfirmed(s) {
		return NodeConfirmation
	}
	return NodeConfirmationAck
}

// customerConfirmed is true iff the conversation-stage tag or the email
// type contains "confirm".
func customerConfirmed(s *State) bool {
	stage := strings.ToLower(s.Result(SlotConversationState).Str("conversation_stage"))
	emailType := strings.ToLower(s.Result(SlotClassification).Str("email_type"))
	return strings.Contains(stage, "confirm") || strings.Contains(emailType, "confirm")
}

// overallConfidence is the mean of the classification, extraction, and
// validation confidences. Absent confidences count as full so that a
// collaborator that reports nothing does not force the fallback.
func overallConfidence(s *State) float64 {
	sum := s.Result(SlotClassification).Float("confidence", 1.0)
	sum += s.Result(SlotExtraction).Float("confidence", 1.0)
	sum += s.Result(SlotValidation).Float("confidence", 1.0)
	return sum / 3
}

// routeAfterAcknowledgment: forwarder replies continue into rate
// processing; sales-person messages commit directly.
func routeAfterAcknowledgment(s *State) string {
	if s.IsForwarderEmail || senderType(s.Result(SlotClassification)) == "forwarder" {
		return NodeProcessForwarder
	}
	return NodeUpdateThread
}

// routeAfterConfirmationAck: a clean acknowledgment proceeds to forwarder
// assignment; a gate override (error result) commits with the substituted
// clarification instead.
func routeAfterConfirmationAck(s *State) string {
	if s.Result(SlotConfirmationAck).OK() {
		return NodeAssignForwarders
	}
	return NodeUpdateThread
}

// routeAfterDetectForwarder: an actual forwarder reply is processed for
// rates; otherwise the action was a request to pick a forwarder.
func routeAfterDetectForwarder(s *State) string {
	if s.IsForwarderEmail {
		return NodeProcessForwarder
	}
	return NodeAssignForwarders
}

// routeAfterNotifySales: with usable rate information in hand the turn
// ends with a customer quote.
func routeAfterNotifySales(s *State) string {
	fr := s.Result(SlotForwarderResponse)
	if fr.OK() && hasRateInformation(fr) {
		return NodeCustomerQuote
	}
	return NodeUpdateThread
}

func hasRateInformation(fr *Result) bool {
	if ri := fr.Map("rate_information"); len(ri) > 0 {
		return true
	}
	return len(fr.Strings("rates")) > 0 || fr.Map("rates") != nil
}
