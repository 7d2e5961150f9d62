// Package workflow is the stateful thread engine: a directed graph of
// typed processing nodes that turns each inbound email into at most one
// outbound response while cumulating shipment facts on the thread.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/freightdesk/internal/agents"
	"github.com/ignite/freightdesk/internal/domain"
	"github.com/ignite/freightdesk/internal/pkg/logger"
	"github.com/ignite/freightdesk/internal/threadstore"
)

// SalesAssigner picks the sales person responsible for a request.
type SalesAssigner interface {
	Assign(merged domain.Extraction) map[string]any
}

// ForwarderAssigner picks a forwarder for a lane by country matching;
// destination matches beat origin matches, which beat any fallback.
type ForwarderAssigner interface {
	Assign(originCountry, destCountry string) (map[string]any, bool)
}

// Deliverer hands a committed outbound entry to a mail transport. The
// core never depends on delivery succeeding.
type Deliverer interface {
	Deliver(ctx context.Context, to string, entry domain.EmailEntry)
}

// Orchestrator owns the graph, the thread store, and the collaborator
// registry, and processes one inbound email per call.
type Orchestrator struct {
	store      threadstore.Store
	agents     agents.Registry
	sales      SalesAssigner
	forwarders ForwarderAssigner
	delivery   Deliverer

	graph       *Graph
	locks       *threadLocks
	fromAddress string
	marketData  map[string]any

	validationRules map[string]any
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithSalesTeam wires the sales-person assigner.
func WithSalesTeam(s SalesAssigner) Option { return func(o *Orchestrator) { o.sales = s } }

// WithForwarders wires the forwarder assigner.
func WithForwarders(f ForwarderAssigner) Option { return func(o *Orchestrator) { o.forwarders = f } }

// WithDelivery wires an outbound mail transport.
func WithDelivery(d Deliverer) Option { return func(o *Orchestrator) { o.delivery = d } }

// WithFromAddress sets the bot's outbound sender address.
func WithFromAddress(addr string) Option { return func(o *Orchestrator) { o.fromAddress = addr } }

// WithMarketData provides the market snapshot passed to the rate
// recommender.
func WithMarketData(data map[string]any) Option {
	return func(o *Orchestrator) { o.marketData = data }
}

// WithValidationRules passes advisory rules to the validation agent.
func WithValidationRules(rules map[string]any) Option {
	return func(o *Orchestrator) { o.validationRules = rules }
}

// New builds the orchestrator and its graph. The graph is validated
// once here; a wiring mistake is a programming error.
func New(store threadstore.Store, registry agents.Registry, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		store:       store,
		agents:      registry,
		locks:       newThreadLocks(),
		fromAddress: "quotes@freightdesk.io",
	}
	for _, opt := range opts {
		opt(o)
	}
	o.graph = o.buildGraph()
	if err := o.graph.Validate(); err != nil {
		return nil, fmt.Errorf("workflow graph: %w", err)
	}
	return o, nil
}

func (o *Orchestrator) buildGraph() *Graph {
	g := NewGraph(NodeClassifyEmail)

	g.AddNode(NodeClassifyEmail, o.classifyEmail)
	g.AddNode(NodeConversationState, o.conversationState)
	g.AddNode(NodeAnalyzeThread, o.analyzeThread)
	g.AddNode(NodeExtractData, o.extractData)
	g.AddNode(NodeValidateData, o.validateData)
	g.AddNode(NodeEnrichPorts, o.enrichPorts)
	g.AddNode(NodeStandardizeContainer, o.standardizeContainer)
	g.AddNode(NodeRecommendRates, o.recommendRates)
	g.AddNode(NodeNextAction, o.determineNextAction)
	g.AddNode(NodeAssignSalesPerson, o.assignSalesPerson)
	g.AddNode(NodeClarification, o.generateClarification)
	g.AddNode(NodeConfirmation, o.generateConfirmation)
	g.AddNode(NodeConfirmationAck, o.generateConfirmationAck)
	g.AddNode(NodeAcknowledgment, o.generateAcknowledgment)
	g.AddNode(NodeDetectForwarder, o.detectForwarder)
	g.AddNode(NodeProcessForwarder, o.processForwarderResponse)
	g.AddNode(NodeAssignForwarders, o.assignForwarders)
	g.AddNode(NodeDraftRateRequest, o.draftRateRequest)
	g.AddNode(NodeNotifySales, o.notifySales)
	g.AddNode(NodeCustomerQuote, o.generateCustomerQuote)
	g.AddNode(NodeUpdateThread, o.updateThread)

	g.AddConditionalEdge(NodeClassifyEmail, routeAfterClassification,
		NodeAcknowledgment, NodeConversationState, NodeUpdateThread)
	g.AddEdge(NodeConversationState, NodeAnalyzeThread)
	g.AddEdge(NodeAnalyzeThread, NodeExtractData)
	g.AddEdge(NodeExtractData, NodeValidateData)
	g.AddEdge(NodeValidateData, NodeEnrichPorts)
	g.AddEdge(NodeEnrichPorts, NodeStandardizeContainer)
	g.AddEdge(NodeStandardizeContainer, NodeRecommendRates)
	g.AddEdge(NodeRecommendRates, NodeNextAction)
	g.AddConditionalEdge(NodeNextAction, routeAfterNextAction,
		NodeAssignSalesPerson, NodeDetectForwarder)
	g.AddConditionalEdge(NodeAssignSalesPerson, routeAfterSalesAssignment,
		NodeClarification, NodeConfirmation, NodeConfirmationAck)
	g.AddEdge(NodeClarification, NodeUpdateThread)
	g.AddEdge(NodeConfirmation, NodeUpdateThread)
	g.AddConditionalEdge(NodeConfirmationAck, routeAfterConfirmationAck,
		NodeAssignForwarders, NodeUpdateThread)
	g.AddEdge(NodeAssignForwarders, NodeDraftRateRequest)
	g.AddEdge(NodeDraftRateRequest, NodeUpdateThread)
	g.AddConditionalEdge(NodeAcknowledgment, routeAfterAcknowledgment,
		NodeProcessForwarder, NodeUpdateThread)
	g.AddConditionalEdge(NodeDetectForwarder, routeAfterDetectForwarder,
		NodeProcessForwarder, NodeAssignForwarders)
	g.AddEdge(NodeProcessForwarder, NodeNotifySales)
	g.AddConditionalEdge(NodeNotifySales, routeAfterNotifySales,
		NodeCustomerQuote, NodeUpdateThread)
	g.AddEdge(NodeCustomerQuote, NodeUpdateThread)
	g.AddEdge(NodeUpdateThread, End)

	return g
}

// TurnResult is the caller-visible outcome of one turn.
type TurnResult struct {
	WorkflowID string         `json:"workflow_id"`
	ThreadID   string         `json:"thread_id"`
	Status     RunStatus      `json:"status"`
	Result     map[string]any `json:"result"`
}

// ProcessEmail is the single entry point: it normalizes the inbound
// payload, serializes on the thread, runs the graph to the terminal
// node, and reports the filled slots. Turns for distinct threads may
// run in parallel; two turns for the same thread never interleave.
func (o *Orchestrator) ProcessEmail(ctx context.Context, raw map[string]any) (*TurnResult, error) {
	email := domain.ParseEmail(raw)
	threadID := email.ThreadID
	if threadID == "" {
		threadID = domain.NewThreadID()
	}
	workflowID := domain.NewWorkflowID()

	release, err := o.locks.acquire(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("acquiring thread lock %s: %w", threadID, err)
	}
	defer release()

	s := NewState(workflowID, threadID, email)
	o.snapshotThread(ctx, s)

	logger.Info("processing inbound email",
		"workflow_id", workflowID, "thread_id", threadID, "sender", email.Sender)

	start := time.Now()
	status, runErr := o.graph.Run(ctx, s)
	turn := &TurnResult{
		WorkflowID: workflowID,
		ThreadID:   threadID,
		Status:     status,
		Result:     o.summarize(s),
	}
	if runErr != nil {
		// Partial state: the caller still sees every slot filled
		// before the failure.
		logger.Error("turn failed", "workflow_id", workflowID, "error", runErr.Error())
		return turn, runErr
	}

	logger.Info("turn completed",
		"workflow_id", workflowID, "thread_id", threadID,
		"duration_ms", time.Since(start).Milliseconds())
	return turn, nil
}

// snapshotThread loads the read-only inputs for the turn. Store failures
// degrade to an empty snapshot.
func (o *Orchestrator) snapshotThread(ctx context.Context, s *State) {
	s.MarketData = o.marketData
	thread, err := o.store.Load(ctx, s.ThreadID)
	if err != nil {
		logger.Warn("thread snapshot unavailable", "thread_id", s.ThreadID, "error", err.Error())
		return
	}
	if thread == nil {
		return
	}
	s.History = thread.Emails
	s.CumulativeStart = thread.Cumulative
	s.Cumulative = thread.Cumulative
	// Paths that skip the extractor (forwarder and sales-person turns)
	// still see the thread's merged view.
	s.Merged = thread.Cumulative
	s.CustomerContext = thread.CustomerContext
	s.ForwarderContext = thread.ForwarderContext
}

// summarize renders the turn state for the caller: flags plus every
// filled slot (payload or error).
func (o *Orchestrator) summarize(s *State) map[string]any {
	out := map[string]any{
		"should_escalate":    s.ShouldEscalate,
		"is_forwarder_email": s.IsForwarderEmail,
		"workflow_completed": s.WorkflowCompleted,
	}
	for slot, result := range s.results {
		if result == nil {
			continue
		}
		if result.Data != nil {
			out[string(slot)] = result.Data
			continue
		}
		out[string(slot)] = map[string]any{"error": result.Err}
	}
	if len(s.Missing) > 0 {
		out["missing_fields"] = s.Missing
	}
	if s.AssignedSalesPerson != nil {
		out["assigned_sales_person"] = s.AssignedSalesPerson
	}
	return out
}

func nowUTC() time.Time { return time.Now().UTC() }
