// Package domain defines the core data model for the freight sales
// assistant: inbound emails, per-thread email entries, thread aggregates,
// and the structured shipment extraction that accumulates across a thread.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Direction tags an EmailEntry as received or sent.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Email is a normalized inbound email.
type Email struct {
	Sender     string    `json:"sender"`
	SenderName string    `json:"sender_name,omitempty"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	ThreadID   string    `json:"thread_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// ParseEmail normalizes a loosely-shaped inbound payload into an Email.
// Alternative field names (body_text/body, from_email/from) are coalesced
// to the canonical content/sender.
func ParseEmail(raw map[string]any) Email {
	e := Email{ReceivedAt: time.Now().UTC()}
	e.Sender = firstString(raw, "sender", "from_email", "from")
	e.SenderName = firstString(raw, "sender_name", "from_name")
	e.Subject = firstString(raw, "subject")
	e.Content = firstString(raw, "content", "body_text", "body")
	e.ThreadID = firstString(raw, "thread_id")
	return e
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// FirstName derives a greeting name for the sender: display name first,
// then the local part of the address (split on "." and capitalized),
// falling back to "Valued Customer".
func (e Email) FirstName() string {
	if name := strings.TrimSpace(e.SenderName); name != "" {
		parts := strings.Fields(name)
		return capitalize(parts[0])
	}
	local := e.Sender
	if at := strings.Index(local, "@"); at > 0 {
		local = local[:at]
	}
	for _, tok := range strings.Split(local, ".") {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z')
		})
		if tok != "" {
			return capitalize(tok)
		}
	}
	return "Valued Customer"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// EmailEntry is one element of a thread: an inbound email or an
// outbound bot response, in insertion order.
type EmailEntry struct {
	ID            string         `json:"id"`
	Sender        string         `json:"sender"`
	Direction     Direction      `json:"direction"`
	Subject       string         `json:"subject"`
	Content       string         `json:"content"`
	Timestamp     time.Time      `json:"timestamp"`
	ExtractedData map[string]any `json:"extracted_data,omitempty"`
	ResponseType  string         `json:"response_type,omitempty"`
	BotResponse   map[string]any `json:"bot_response,omitempty"`
	WorkflowID    string         `json:"workflow_id,omitempty"`
}

// ThreadData is the per-thread aggregate persisted by the thread store.
// EmailEntry are appended exclusively by the turn committer; the
// cumulative extraction is replaced only by the merge engine.
type ThreadData struct {
	ThreadID          string         `json:"thread_id"`
	Emails            []EmailEntry   `json:"emails"`
	Cumulative        Extraction     `json:"cumulative_extraction"`
	LastUpdated       time.Time      `json:"last_updated"`
	CustomerContext   map[string]any `json:"customer_context,omitempty"`
	ForwarderContext  map[string]any `json:"forwarder_context,omitempty"`
	ConversationState string         `json:"conversation_state"`
	TotalEmails       int            `json:"total_emails"`
}

// NewThread returns an empty thread in the new_thread state.
func NewThread(threadID string) *ThreadData {
	return &ThreadData{
		ThreadID:          threadID,
		Emails:            []EmailEntry{},
		ConversationState: "new_thread",
		LastUpdated:       time.Now().UTC(),
	}
}

// Append adds an entry, bumps the counter, and advances the coarse
// conversation-state tag.
func (t *ThreadData) Append(entry EmailEntry) {
	t.Emails = append(t.Emails, entry)
	t.TotalEmails = len(t.Emails)
	t.LastUpdated = time.Now().UTC()

	switch {
	case entry.Direction == DirectionOutbound:
		if entry.ResponseType != "" {
			t.ConversationState = "bot_" + entry.ResponseType
		}
	case t.TotalEmails == 1:
		t.ConversationState = "customer_initial_request"
	default:
		if entry.ResponseType != "" {
			t.ConversationState = "customer_" + entry.ResponseType
		}
	}
}

// NewWorkflowID returns a workflow id from the current timestamp with
// microsecond precision.
func NewWorkflowID() string {
	return "workflow_" + microTimestamp()
}

// NewThreadID synthesizes a thread id when the inbound email carries none.
func NewThreadID() string {
	return "thread_" + microTimestamp()
}

func microTimestamp() string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s%06d", now.Format("20060102150405"), now.Nanosecond()/1000)
}
