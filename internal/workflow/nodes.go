package workflow

import (
	"context"
	"strings"

	"github.com/ignite/freightdesk/internal/agents"
	"github.com/ignite/freightdesk/internal/domain"
	"github.com/ignite/freightdesk/internal/extraction"
	"github.com/ignite/freightdesk/internal/validation"
)

// historyMaps renders the thread snapshot in the shape collaborators
// consume.
func historyMaps(entries []domain.EmailEntry) []map[string]any {
	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{
			"id":            e.ID,
			"sender":        e.Sender,
			"direction":     string(e.Direction),
			"subject":       e.Subject,
			"content":       e.Content,
			"response_type": e.ResponseType,
			"timestamp":     e.Timestamp,
		})
	}
	return out
}

func (o *Orchestrator) classifyEmail(ctx context.Context, s *State) (Patch, error) {
	if s.Email.Content == "" && s.Email.Subject == "" {
		patch := slotPatch(SlotClassification, Errorf("missing email content"))
		patch.ShouldEscalate = boolPtr(true)
		return patch, nil
	}

	resp := agents.Invoke(ctx, "classifier", o.agents.Classifier, map[string]any{
		"email_content":  s.Email.Content,
		"subject":        s.Email.Subject,
		"sender":         s.Email.Sender,
		"thread_id":      s.ThreadID,
		"thread_history": historyMaps(s.History),
	})
	result := ResultOf(resp)

	patch := slotPatch(SlotClassification, result)
	if senderType(result) == "forwarder" {
		patch.IsForwarderEmail = boolPtr(true)
	}
	if result.Bool("escalation_needed") {
		patch.ShouldEscalate = boolPtr(true)
	}
	return patch, nil
}

func (o *Orchestrator) conversationState(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "conversation state", o.agents.ConversationState, map[string]any{
		"email_content":         s.Email.Content,
		"subject":               s.Email.Subject,
		"thread_id":             s.ThreadID,
		"thread_history":        historyMaps(s.History),
		"cumulative_extraction": s.CumulativeStart.ToMap(),
		"customer_context":      s.CustomerContext,
		"forwarder_context":     s.ForwarderContext,
	})
	result := ResultOf(resp)

	patch := slotPatch(SlotConversationState, result)
	if result.Bool("should_escalate") {
		patch.ShouldEscalate = boolPtr(true)
	}
	return patch, nil
}

func (o *Orchestrator) analyzeThread(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "thread analyzer", o.agents.ThreadAnalyzer, map[string]any{
		"email_data": map[string]any{
			"sender":  s.Email.Sender,
			"subject": s.Email.Subject,
			"content": s.Email.Content,
		},
		"thread_history":           historyMaps(s.History),
		"previous_classifications": s.Result(SlotClassification).Payload(),
		"customer_context":         s.CustomerContext,
		"forwarder_context":        s.ForwarderContext,
	})
	return slotPatch(SlotThreadAnalysis, ResultOf(resp)), nil
}

func (o *Orchestrator) extractData(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "extractor", o.agents.Extractor, map[string]any{
		"email_content":         s.Email.Content,
		"sender":                s.Email.Sender,
		"subject":               s.Email.Subject,
		"thread_id":             s.ThreadID,
		"timestamp":             s.Email.ReceivedAt,
		"customer_context":      s.CustomerContext,
		"forwarder_context":     s.ForwarderContext,
		"prioritize_recent":     true,
		"cumulative_extraction": s.CumulativeStart.ToMap(),
	})
	result := ResultOf(resp)

	patch := slotPatch(SlotExtraction, result)
	perEmail := domain.Extraction{}
	if result.OK() {
		perEmail = domain.ParseExtraction(result.Map("extracted_data"))
	}
	// A failed extraction merges as identity: the thread keeps what it
	// already knew.
	merged := extraction.Merge(perEmail, s.CumulativeStart)
	patch.PerEmail = &perEmail
	patch.Merged = &merged
	return patch, nil
}

func (o *Orchestrator) validateData(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "validator", o.agents.Validator, map[string]any{
		"extracted_data":   s.Merged.ToMap(),
		"validation_rules": o.validationRules,
	})
	return slotPatch(SlotValidation, ResultOf(resp)), nil
}

// enrichPorts resolves the lane's ports and runs the mandatory-field
// gate over the merged extraction. An unavailable lookup degrades to
// "not a country".
func (o *Orchestrator) enrichPorts(ctx context.Context, s *State) (Patch, error) {
	var checks validation.PortChecks
	payload := map[string]any{}

	if origin := s.Merged.ShipmentDetails.Origin; origin != "" {
		checks.Origin = o.lookupPort(ctx, origin)
		if checks.Origin != nil {
			payload["origin"] = portCheckMap(checks.Origin)
		}
	}
	if dest := s.Merged.ShipmentDetails.Destination; dest != "" {
		checks.Destination = o.lookupPort(ctx, dest)
		if checks.Destination != nil {
			payload["destination"] = portCheckMap(checks.Destination)
		}
	}

	_, missing := validation.Validate(s.Merged, checks)

	patch := slotPatch(SlotPortLookup, ResultOf(payload))
	patch.PortChecks = &checks
	patch.Missing = missing
	if missing == nil {
		patch.Missing = []string{}
	}
	return patch, nil
}

func (o *Orchestrator) lookupPort(ctx context.Context, name string) *validation.PortCheck {
	resp := agents.Invoke(ctx, "port lookup", o.agents.PortLookup, map[string]any{
		"port_name": name,
	})
	result := ResultOf(resp)
	if !result.OK() {
		return nil
	}
	return &validation.PortCheck{
		PortName:  result.Str("port_name"),
		PortCode:  result.Str("port_code"),
		Country:   result.Str("country"),
		IsCountry: result.Bool("is_country"),
	}
}

func portCheckMap(c *validation.PortCheck) map[string]any {
	return map[string]any{
		"port_name":  c.PortName,
		"port_code":  c.PortCode,
		"country":    c.Country,
		"is_country": c.IsCountry,
	}
}

func (o *Orchestrator) standardizeContainer(ctx context.Context, s *State) (Patch, error) {
	sd := s.Merged.ShipmentDetails
	if s.Merged.ResolvedShipmentType() != domain.ShipmentFCL || sd.ContainerType == "" {
		return Patch{}, nil
	}
	resp := agents.Invoke(ctx, "container standardizer", o.agents.ContainerStandardizer, map[string]any{
		"container_type":  sd.ContainerType,
		"container_count": sd.ContainerCount,
	})
	return slotPatch(SlotContainer, ResultOf(resp)), nil
}

func (o *Orchestrator) recommendRates(ctx context.Context, s *State) (Patch, error) {
	shipment := s.Merged.ToMap()["shipment_details"].(map[string]any)
	if std := s.Result(SlotContainer).Str("standardized_type"); std != "" {
		shipment["container_type"] = std
	}
	resp := agents.Invoke(ctx, "rate recommender", o.agents.RateRecommender, map[string]any{
		"shipment_details": shipment,
		"port_codes":       o.portCodes(s),
		"market_data":      s.MarketData,
	})
	return slotPatch(SlotRates, ResultOf(resp)), nil
}

func (o *Orchestrator) portCodes(s *State) map[string]string {
	codes := map[string]string{}
	if s.PortChecks.Origin != nil {
		codes["origin"] = s.PortChecks.Origin.PortCode
	}
	if s.PortChecks.Destination != nil {
		codes["destination"] = s.PortChecks.Destination.PortCode
	}
	return codes
}

func (o *Orchestrator) determineNextAction(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "next action", o.agents.NextAction, map[string]any{
		"conversation_stage": s.Result(SlotConversationState).Str("conversation_stage"),
		"classification":     s.Result(SlotClassification).Payload(),
		"extracted_data":     s.Merged.ToMap(),
		"confidence":         overallConfidence(s),
		"validation":         s.Result(SlotValidation).Payload(),
		"enriched_data":      s.Result(SlotPortLookup).Payload(),
		"thread_id":          s.ThreadID,
		"missing_fields":     s.Missing,
	})
	return slotPatch(SlotNextAction, ResultOf(resp)), nil
}

func (o *Orchestrator) assignSalesPerson(_ context.Context, s *State) (Patch, error) {
	if o.sales == nil {
		return Patch{}, nil
	}
	person := o.sales.Assign(s.Merged)
	return Patch{AssignedSalesPerson: person}, nil
}

// responseRequest is the common request shape of the response generators.
func (o *Orchestrator) responseRequest(s *State) map[string]any {
	return map[string]any{
		"extracted_data":            s.Merged.ToMap(),
		"customer_first_name":       s.Email.FirstName(),
		"assigned_sales_person":     s.AssignedSalesPerson,
		"port_lookup":               s.Result(SlotPortLookup).Payload(),
		"container_standardization": s.Result(SlotContainer).Payload(),
		"thread_id":                 s.ThreadID,
		"subject":                   s.Email.Subject,
	}
}

func (o *Orchestrator) generateClarification(ctx context.Context, s *State) (Patch, error) {
	missing := s.Missing
	if len(missing) == 0 {
		missing = s.Result(SlotNextAction).Strings("missing_fields")
	}
	return slotPatch(SlotClarification, o.clarify(ctx, s, missing)), nil
}

func (o *Orchestrator) clarify(ctx context.Context, s *State, missing []string) *Result {
	req := o.responseRequest(s)
	req["missing_fields"] = validation.Prioritize(missing)
	return ResultOf(agents.Invoke(ctx, "clarification generator", o.agents.ClarificationGen, req))
}

// generateConfirmation runs the mandatory-field gate before the
// generator; an incomplete extraction suppresses the confirmation and
// substitutes a clarification.
func (o *Orchestrator) generateConfirmation(ctx context.Context, s *State) (Patch, error) {
	if blocked, patch := o.gateOverride(ctx, s, SlotConfirmation); blocked {
		return patch, nil
	}
	req := o.responseRequest(s)
	req["rate_recommendation"] = s.Result(SlotRates).Payload()
	resp := agents.Invoke(ctx, "confirmation generator", o.agents.ConfirmationGen, req)
	return slotPatch(SlotConfirmation, ResultOf(resp)), nil
}

// generateConfirmationAck acknowledges a customer confirmation; the same
// gate applies, and on success the router continues to forwarder
// assignment.
func (o *Orchestrator) generateConfirmationAck(ctx context.Context, s *State) (Patch, error) {
	if blocked, patch := o.gateOverride(ctx, s, SlotConfirmationAck); blocked {
		return patch, nil
	}
	req := o.responseRequest(s)
	resp := agents.Invoke(ctx, "confirmation acknowledgment generator", o.agents.ConfirmationAckGen, req)
	return slotPatch(SlotConfirmationAck, ResultOf(resp)), nil
}

// gateOverride re-runs the validator right before a confirmation-class
// generator. When fields are missing it records the gate error in the
// generator's slot and substitutes a clarification response.
func (o *Orchestrator) gateOverride(ctx context.Context, s *State, slot Slot) (bool, Patch) {
	ok, missing := validation.Validate(s.Merged, s.PortChecks)
	if ok {
		return false, Patch{}
	}
	gateErr := ResultOf(map[string]any{
		"error":           "mandatory fields missing: " + strings.Join(missing, ", "),
		"missing_fields":  missing,
		"override_reason": "mandatory_field_gate",
	})
	patch := slotPatch(slot, gateErr)
	patch.Missing = missing
	patch.Results[SlotClarification] = o.clarify(ctx, s, missing)
	return true, patch
}

// generateAcknowledgment replies to sales people and forwarders; it is
// never blocked by the validator.
func (o *Orchestrator) generateAcknowledgment(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "acknowledgment generator", o.agents.AcknowledgmentGen, map[string]any{
		"email_content":       s.Email.Content,
		"subject":             s.Email.Subject,
		"sender":              s.Email.Sender,
		"sender_type":         senderType(s.Result(SlotClassification)),
		"customer_first_name": s.Email.FirstName(),
		"thread_id":           s.ThreadID,
	})
	return slotPatch(SlotAcknowledgment, ResultOf(resp)), nil
}

func (o *Orchestrator) detectForwarder(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "forwarder detector", o.agents.ForwarderDetector, map[string]any{
		"email_data": map[string]any{
			"sender":  s.Email.Sender,
			"subject": s.Email.Subject,
			"content": s.Email.Content,
		},
		"forwarder_context": s.ForwarderContext,
	})
	result := ResultOf(resp)

	patch := slotPatch(SlotForwarderDetection, result)
	if result.Bool("is_forwarder") {
		patch.IsForwarderEmail = boolPtr(true)
	}
	return patch, nil
}

func (o *Orchestrator) processForwarderResponse(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "forwarder responder", o.agents.ForwarderResponder, map[string]any{
		"email_data": map[string]any{
			"sender":  s.Email.Sender,
			"subject": s.Email.Subject,
			"content": s.Email.Content,
		},
		"thread_history":    historyMaps(s.History),
		"forwarder_context": s.ForwarderContext,
		"extracted_data":    s.Merged.ToMap(),
	})
	return slotPatch(SlotForwarderResponse, ResultOf(resp)), nil
}

// assignForwarders picks a single forwarder by country matching:
// destination beats origin beats fallback. Assignment failure is a
// deterministic record, not an error; the turn still commits.
func (o *Orchestrator) assignForwarders(_ context.Context, s *State) (Patch, error) {
	origin, dest := laneCountries(s)
	if o.forwarders == nil {
		return slotPatch(SlotForwarderAssignment,
			ResultOf(map[string]any{"status": "no_forwarder_available"})), nil
	}
	forwarder, ok := o.forwarders.Assign(origin, dest)
	if !ok {
		return slotPatch(SlotForwarderAssignment, ResultOf(map[string]any{
			"status":              "no_forwarder_available",
			"origin_country":      origin,
			"destination_country": dest,
		})), nil
	}
	return slotPatch(SlotForwarderAssignment, ResultOf(map[string]any{
		"status":    "assigned",
		"forwarder": forwarder,
	})), nil
}

func laneCountries(s *State) (origin, dest string) {
	origin = s.Merged.ShipmentDetails.OriginCountry
	dest = s.Merged.ShipmentDetails.DestinationCountry
	if origin == "" && s.PortChecks.Origin != nil {
		origin = s.PortChecks.Origin.Country
	}
	if dest == "" && s.PortChecks.Destination != nil {
		dest = s.PortChecks.Destination.Country
	}
	return origin, dest
}

func (o *Orchestrator) draftRateRequest(ctx context.Context, s *State) (Patch, error) {
	assignment := s.Result(SlotForwarderAssignment)
	if !assignment.OK() || assignment.Str("status") != "assigned" {
		return Patch{}, nil
	}
	resp := agents.Invoke(ctx, "forwarder draft", o.agents.ForwarderDraft, map[string]any{
		"forwarder":        assignment.Map("forwarder"),
		"shipment_details": s.Merged.ToMap()["shipment_details"],
		"port_lookup":      s.Result(SlotPortLookup).Payload(),
		"customer": map[string]any{
			"name":  s.Email.FirstName(),
			"email": s.Email.Sender,
		},
		"thread_id": s.ThreadID,
	})
	return slotPatch(SlotForwarderDraft, ResultOf(resp)), nil
}

func (o *Orchestrator) notifySales(ctx context.Context, s *State) (Patch, error) {
	resp := agents.Invoke(ctx, "sales notifier", o.agents.SalesNotifier, map[string]any{
		"notification_type":  "forwarder_rates_received",
		"customer_details":   s.Merged.ToMap()["contact_information"],
		"shipment_details":   s.Merged.ToMap()["shipment_details"],
		"forwarder_rates":    s.Result(SlotForwarderResponse).Payload(),
		"timeline":           s.Merged.ToMap()["timeline_information"],
		"conversation_state": s.Result(SlotConversationState).Str("conversation_stage"),
		"thread_id":          s.ThreadID,
		"urgency":            s.Merged.TimelineInformation.Urgency,
	})
	return slotPatch(SlotSalesNotification, ResultOf(resp)), nil
}

func (o *Orchestrator) generateCustomerQuote(ctx context.Context, s *State) (Patch, error) {
	req := o.responseRequest(s)
	req["rate_information"] = s.Result(SlotForwarderResponse).Payload()
	req["rate_recommendation"] = s.Result(SlotRates).Payload()
	resp := agents.Invoke(ctx, "quote generator", o.agents.QuoteGen, req)
	return slotPatch(SlotCustomerQuote, ResultOf(resp)), nil
}
