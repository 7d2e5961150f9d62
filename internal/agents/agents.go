// Package agents defines the contract between the workflow core and its
// external collaborators. Each collaborator exposes a single typed
// operation that transforms a request map into a response map; the core
// never talks to a language model itself.
package agents

import (
	"context"
	"fmt"
)

// Collaborator is the single operation every agent exposes.
type Collaborator interface {
	Process(ctx context.Context, req map[string]any) (map[string]any, error)
}

// Func adapts a plain function to the Collaborator interface.
type Func func(ctx context.Context, req map[string]any) (map[string]any, error)

// Process implements Collaborator.
func (f Func) Process(ctx context.Context, req map[string]any) (map[string]any, error) {
	return f(ctx, req)
}

// Registry wires the collaborators the orchestrator depends on. Nil
// entries degrade to error payloads at call time.
type Registry struct {
	Classifier            Collaborator // email + sender classification
	ConversationState     Collaborator // stage + suggested next action
	ThreadAnalyzer        Collaborator // free-form thread insights
	Extractor             Collaborator // structured shipment extraction
	Validator             Collaborator // extraction quality assessment
	PortLookup            Collaborator // per-port enrichment
	ContainerStandardizer Collaborator // container type normalization (FCL)
	RateRecommender       Collaborator // market-rate recommendation
	NextAction            Collaborator // routing hint

	ClarificationGen   Collaborator
	ConfirmationGen    Collaborator
	AcknowledgmentGen  Collaborator
	ConfirmationAckGen Collaborator
	QuoteGen           Collaborator

	ForwarderDetector  Collaborator // is this sender a registered forwarder
	ForwarderResponder Collaborator // parse rates out of a forwarder reply
	ForwarderDraft     Collaborator // rate-request draft for a forwarder
	SalesNotifier      Collaborator // internal sales-team notification
}

// Invoke calls a collaborator and coerces every failure mode into an
// error payload so downstream nodes can degrade instead of aborting.
func Invoke(ctx context.Context, name string, c Collaborator, req map[string]any) map[string]any {
	if c == nil {
		return map[string]any{"error": name + " collaborator not configured"}
	}
	resp, err := c.Process(ctx, req)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("%s: %v", name, err)}
	}
	if resp == nil {
		return map[string]any{"error": name + " returned no response"}
	}
	return resp
}
