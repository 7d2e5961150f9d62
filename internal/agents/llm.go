package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ignite/freightdesk/internal/llm"
)

// LLM adapts a JSON-mode completer into a Collaborator: the request map
// becomes the user message, the decoded object becomes the response.
func LLM(c llm.Completer, name, system string) Collaborator {
	return Func(func(ctx context.Context, req map[string]any) (map[string]any, error) {
		user, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", name, err)
		}
		return c.CompleteJSON(ctx, system, string(user))
	})
}

const classifierPrompt = `You classify inbound emails for a freight forwarding sales desk.
Given the email content, subject, sender, and thread history, return JSON:
{"email_type": "quote_request|confirmation|clarification_response|rate_reply|other",
 "sender_type": "customer|forwarder|sales_person",
 "sender_classification": {"type": "...", "confidence": 0.0},
 "confidence": 0.0,
 "escalation_needed": false}
Classify the sender from context: forwarders quote rates, sales people are internal staff, everyone else is a customer.`

const conversationStatePrompt = `You track the stage of a freight quoting conversation.
Given the latest email, the thread history, and the cumulative extraction, return JSON:
{"conversation_stage": "customer_initial_request|customer_clarification|customer_confirmation|forwarder_reply|closed",
 "latest_sender": "customer|bot|forwarder|sales_person",
 "next_action": "process",
 "should_escalate": false}
A stage is customer_confirmation only when the customer explicitly agrees to previously stated shipment details.`

const threadAnalyzerPrompt = `You analyze a freight quoting email thread for context an account manager would want.
Return JSON: {"insights": "...", "customer_sentiment": "...", "open_questions": []}`

const extractorPrompt = `You extract structured shipment details from a freight quote email.
Return JSON:
{"extracted_data": {
   "shipment_details": {"origin": "", "origin_country": "", "destination": "", "destination_country": "",
     "container_type": "", "container_count": "", "commodity": "", "weight": "", "volume": "",
     "shipment_type": "", "shipment_date": "", "requested_dates": "", "incoterm": ""},
   "contact_information": {"name": "", "email": "", "phone": "", "company": ""},
   "timeline_information": {"urgency": "", "deadline": ""},
   "special_requirements": [],
   "rate_information": {},
   "additional_notes": ""},
 "quality_score": 0.0,
 "confidence": 0.0}
Rules: report only facts stated in THIS email; leave a field empty when the email does not state it.
Never infer container details for LCL shipments. shipment_type is FCL or LCL only when stated or unambiguous.`

const validatorPrompt = `You assess the quality of an extracted freight shipment record.
Return JSON: {"validation_status": "ok|suspect", "issues": [], "confidence": 0.0}.
Flag contradictions (e.g. LCL with container counts, weights that cannot fit the container type).`

const nextActionPrompt = `You pick the next action for a freight sales workflow.
Given conversation stage, classification, extracted data, validation, and missing mandatory fields, return JSON:
{"next_action": "send_clarification_request|send_confirmation_request|send_acknowledgment|assign_forwarder|process_forwarder_response",
 "confidence": 0.0,
 "missing_fields": []}
Any missing mandatory field forces send_clarification_request.`

const forwarderDetectorPrompt = `You decide whether an email comes from a freight forwarder replying with rates.
Return JSON: {"is_forwarder": false, "confidence": 0.0, "forwarder_name": ""}`

const forwarderResponderPrompt = `You parse rate information out of a freight forwarder's reply.
Return JSON: {"rate_information": {"<container or service>": "<rate>"}, "validity": "", "transit_time": "", "surcharges": [], "confidence": 0.0}.
Report only rates the forwarder actually quoted.`

const forwarderDraftPrompt = `You draft a rate request email to a freight forwarder.
Given the assigned forwarder, the confirmed shipment details, and port lookups, return JSON:
{"subject": "", "body": "", "forwarder_email": "", "status": "drafted"}.
The body states the lane (port names and codes), container type and count or LCL dimensions,
commodity, cargo-ready date, and asks for all-in rates with validity. Professional, concise, no pricing guesses.`

// NewLLMRegistry fills the model-backed collaborator slots. Deterministic
// collaborators (port lookup, container standardization, rate
// recommendation, response generation, notification) are wired separately
// by the caller.
func NewLLMRegistry(c llm.Completer) Registry {
	return Registry{
		Classifier:         LLM(c, "classifier", classifierPrompt),
		ConversationState:  LLM(c, "conversation state", conversationStatePrompt),
		ThreadAnalyzer:     LLM(c, "thread analyzer", threadAnalyzerPrompt),
		Extractor:          LLM(c, "extractor", extractorPrompt),
		Validator:          LLM(c, "validator", validatorPrompt),
		NextAction:         LLM(c, "next action", nextActionPrompt),
		ForwarderDetector:  LLM(c, "forwarder detector", forwarderDetectorPrompt),
		ForwarderResponder: LLM(c, "forwarder responder", forwarderResponderPrompt),
		ForwarderDraft:     LLM(c, "forwarder draft", forwarderDraftPrompt),
	}
}
