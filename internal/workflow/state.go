package workflow

import (
	"github.com/ignite/freightdesk/internal/domain"
	"github.com/ignite/freightdesk/internal/validation"
)

// Slot identifies a per-node result in the turn state. The graph is
// constructed so at most one node writes any given slot per turn; the
// reducer slots below additionally tolerate concurrent-write bugs.
type Slot string

const (
	SlotClassification      Slot = "classification_result"
	SlotConversationState   Slot = "conversation_state_result"
	SlotThreadAnalysis      Slot = "thread_analysis_result"
	SlotExtraction          Slot = "extraction_result"
	SlotValidation          Slot = "validation_result"
	SlotPortLookup          Slot = "port_lookup_result"
	SlotContainer           Slot = "container_standardization_result"
	SlotRates               Slot = "rate_recommendation_result"
	SlotNextAction          Slot = "next_action_result"
	SlotClarification       Slot = "clarification_result"
	SlotConfirmation        Slot = "confirmation_result"
	SlotAcknowledgment      Slot = "acknowledgment_result"
	SlotConfirmationAck     Slot = "confirmation_ack_result"
	SlotForwarderDetection  Slot = "forwarder_detection_result"
	SlotForwarderResponse   Slot = "forwarder_response_result"
	SlotForwarderDraft      Slot = "forwarder_draft_result"
	SlotForwarderAssignment Slot = "forwarder_assignment_result"
	SlotEscalation          Slot = "escalation_result"
	SlotSalesNotification   Slot = "sales_notification_result"
	SlotCustomerQuote       Slot = "customer_quote_result"
)

// firstNonNilSlots keep their first written value; later writers lose.
var firstNonNilSlots = map[Slot]bool{
	SlotEscalation:        true,
	SlotSalesNotification: true,
	SlotForwarderResponse: true,
}

// State is the turn-local workflow record. Inputs are set once at turn
// start; everything else is mutated only through node patches.
type State struct {
	WorkflowID string
	ThreadID   string

	// Shared inputs (snapshot at turn start).
	Email            domain.Email
	History          []domain.EmailEntry
	CustomerContext  map[string]any
	ForwarderContext map[string]any
	MarketData       map[string]any
	CumulativeStart  domain.Extraction

	// Derived during the turn.
	PerEmail   domain.Extraction     // this email's extraction
	Merged     domain.Extraction     // PerEmail folded into CumulativeStart
	Cumulative domain.Extraction     // persisted view, copied back by the committer
	PortChecks validation.PortChecks // enriched origin/destination lookups
	Missing    []string              // mandatory-field gate output

	AssignedSalesPerson map[string]any

	// Control flags.
	ShouldEscalate    bool
	IsForwarderEmail  bool
	WorkflowCompleted bool

	results map[Slot]*Result
}

// NewState builds the immutable input context for one turn.
func NewState(workflowID, threadID string, email domain.Email) *State {
	return &State{
		WorkflowID: workflowID,
		ThreadID:   threadID,
		Email:      email,
		results:    map[Slot]*Result{},
	}
}

// Result returns a node's result slot, or nil when unset.
func (s *State) Result(slot Slot) *Result {
	return s.results[slot]
}

// FilledSlots lists the slots populated so far, for partial-failure
// reporting.
func (s *State) FilledSlots() []Slot {
	out := make([]Slot, 0, len(s.results))
	for slot := range s.results {
		out = append(out, slot)
	}
	return out
}

// Patch is a node's return value; nil fields leave the state untouched.
type Patch struct {
	Results map[Slot]*Result

	ShouldEscalate    *bool
	IsForwarderEmail  *bool
	WorkflowCompleted *bool

	PerEmail   *domain.Extraction
	Merged     *domain.Extraction
	Cumulative *domain.Extraction
	PortChecks *validation.PortChecks
	Missing    []string

	AssignedSalesPerson map[string]any
}

// apply folds a patch into the state field-by-field. Reducer slots merge
// by "first non-nil wins"; should_escalate merges by logical OR; all
// other fields take the last write.
func (s *State) apply(p Patch) {
	for slot, result := range p.Results {
		if result == nil {
			continue
		}
		if firstNonNilSlots[slot] && s.results[slot] != nil {
			continue
		}
		s.results[slot] = result
	}
	if p.ShouldEscalate != nil {
		s.ShouldEscalate = s.ShouldEscalate || *p.ShouldEscalate
	}
	if p.IsForwarderEmail != nil {
		s.IsForwarderEmail = *p.IsForwarderEmail
	}
	if p.WorkflowCompleted != nil {
		s.WorkflowCompleted = *p.WorkflowCompleted
	}
	if p.PerEmail != nil {
		s.PerEmail = *p.PerEmail
	}
	if p.Merged != nil {
		s.Merged = *p.Merged
	}
	if p.Cumulative != nil {
		s.Cumulative = *p.Cumulative
	}
	if p.PortChecks != nil {
		s.PortChecks = *p.PortChecks
	}
	if p.Missing != nil {
		s.Missing = p.Missing
	}
	if p.AssignedSalesPerson != nil {
		s.AssignedSalesPerson = p.AssignedSalesPerson
	}
}

// results helper for building single-slot patches.
func slotPatch(slot Slot, r *Result) Patch {
	return Patch{Results: map[Slot]*Result{slot: r}}
}

func boolPtr(b bool) *bool { return &b }
