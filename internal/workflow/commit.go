package workflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignite/freightdesk/internal/domain"
	"github.com/ignite/freightdesk/internal/pkg/logger"
)

// primaryOutbound defines the reply priority: the first non-error slot in
// this order is the single outbound artifact of the turn.
var primaryOutbound = []struct {
	slot         Slot
	responseType string
}{
	{SlotClarification, "clarification"},
	{SlotConfirmation, "confirmation"},
	{SlotAcknowledgment, "acknowledgment"},
	{SlotConfirmationAck, "confirmation_acknowledgment"},
	{SlotCustomerQuote, "customer_quote"},
}

// updateThread is the turn committer: the terminal node of every path.
// It appends the inbound entry, appends at most one outbound entry,
// persists the cumulative extraction, and marks the turn complete.
func (o *Orchestrator) updateThread(ctx context.Context, s *State) (Patch, error) {
	inbound := domain.EmailEntry{
		ID:            uuid.NewString(),
		Sender:        s.Email.Sender,
		Direction:     domain.DirectionInbound,
		Subject:       s.Email.Subject,
		Content:       s.Email.Content,
		Timestamp:     s.Email.ReceivedAt,
		ResponseType:  nextActionTag(s),
		WorkflowID:    s.WorkflowID,
		ExtractedData: s.PerEmail.ToMap(),
	}

	thread, err := o.store.Append(ctx, s.ThreadID, inbound)
	if err != nil {
		// A dead store must not fail the turn; fabricate a minimal
		// record so commit semantics hold, accepting lost persistence.
		logger.Error("thread store append failed; fabricating placeholder thread",
			"thread_id", s.ThreadID, "workflow_id", s.WorkflowID, "error", err.Error())
		thread = domain.NewThread(s.ThreadID)
		thread.Append(inbound)
		thread.Cumulative = s.Merged
	}

	if slot, responseType, payload := o.pickPrimaryOutbound(s); payload != nil {
		outbound := domain.EmailEntry{
			ID:           "bot_" + uuid.NewString(),
			Sender:       o.fromAddress,
			Direction:    domain.DirectionOutbound,
			Subject:      stringField(payload, "subject"),
			Content:      stringField(payload, "body"),
			Timestamp:    nowUTC(),
			ResponseType: responseType,
			BotResponse:  payload,
			WorkflowID:   s.WorkflowID,
		}
		if _, err := o.store.Append(ctx, s.ThreadID, outbound); err != nil {
			logger.Error("thread store append failed for outbound entry",
				"thread_id", s.ThreadID, "slot", string(slot), "error", err.Error())
		}
		if o.delivery != nil {
			o.delivery.Deliver(ctx, s.Email.Sender, outbound)
		}
	}

	if !s.PerEmail.IsEmpty() {
		if ok := o.store.UpdateCumulative(ctx, s.ThreadID, s.PerEmail); !ok {
			logger.Warn("cumulative extraction not persisted",
				"thread_id", s.ThreadID, "workflow_id", s.WorkflowID)
		}
	}

	cumulative, err := o.store.Cumulative(ctx, s.ThreadID)
	if err != nil || (cumulative.IsEmpty() && !thread.Cumulative.IsEmpty()) {
		cumulative = thread.Cumulative
	}

	return Patch{
		Cumulative:        &cumulative,
		WorkflowCompleted: boolPtr(true),
	}, nil
}

// pickPrimaryOutbound returns the first non-error response payload in
// priority order, or nil when the turn commits the inbound email only.
func (o *Orchestrator) pickPrimaryOutbound(s *State) (Slot, string, map[string]any) {
	for _, candidate := range primaryOutbound {
		if r := s.Result(candidate.slot); r.OK() {
			return candidate.slot, candidate.responseType, r.Data
		}
	}
	return "", "", nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
