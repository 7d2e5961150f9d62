package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmail_CoalescesAlternativeFieldNames(t *testing.T) {
	tests := []struct {
		name       string
		raw        map[string]any
		wantSender string
		wantBody   string
	}{
		{
			name:       "canonical fields",
			raw:        map[string]any{"sender": "a@b.com", "content": "hello"},
			wantSender: "a@b.com",
			wantBody:   "hello",
		},
		{
			name:       "from_email and body_text",
			raw:        map[string]any{"from_email": "a@b.com", "body_text": "hello"},
			wantSender: "a@b.com",
			wantBody:   "hello",
		},
		{
			name:       "from and body",
			raw:        map[string]any{"from": "a@b.com", "body": "hello"},
			wantSender: "a@b.com",
			wantBody:   "hello",
		},
		{
			name:       "canonical wins over alternates",
			raw:        map[string]any{"sender": "x@y.com", "from": "a@b.com", "content": "c", "body": "b"},
			wantSender: "x@y.com",
			wantBody:   "c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ParseEmail(tt.raw)
			assert.Equal(t, tt.wantSender, e.Sender)
			assert.Equal(t, tt.wantBody, e.Content)
		})
	}
}

func TestFirstName(t *testing.T) {
	tests := []struct {
		name  string
		email Email
		want  string
	}{
		{"display name", Email{Sender: "jd@x.com", SenderName: "John Doe"}, "John"},
		{"dotted local part", Email{Sender: "john.doe@techcorp.com"}, "John"},
		{"plain local part", Email{Sender: "maria@acme.io"}, "Maria"},
		{"numeric local part", Email{Sender: "12345@acme.io"}, "Valued Customer"},
		{"empty sender", Email{}, "Valued Customer"},
		{"uppercase display name", Email{SenderName: "WEI zhang"}, "Wei"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.email.FirstName())
		})
	}
}

func TestThreadData_Append(t *testing.T) {
	thread := NewThread("thread_1")
	assert.Equal(t, "new_thread", thread.ConversationState)

	thread.Append(EmailEntry{ID: "e1", Direction: DirectionInbound, ResponseType: "clarification"})
	assert.Equal(t, "customer_initial_request", thread.ConversationState)
	assert.Equal(t, 1, thread.TotalEmails)

	thread.Append(EmailEntry{ID: "bot_e1", Direction: DirectionOutbound, ResponseType: "clarification"})
	assert.Equal(t, "bot_clarification", thread.ConversationState)

	thread.Append(EmailEntry{ID: "e2", Direction: DirectionInbound, ResponseType: "confirmation"})
	assert.Equal(t, "customer_confirmation", thread.ConversationState)
	assert.Equal(t, 3, thread.TotalEmails)
	require.Len(t, thread.Emails, 3)
	assert.Equal(t, "e1", thread.Emails[0].ID)
}

func TestNewWorkflowID(t *testing.T) {
	id := NewWorkflowID()
	assert.True(t, strings.HasPrefix(id, "workflow_"))
	// 14 digits of timestamp + 6 digits of microseconds
	assert.Len(t, strings.TrimPrefix(id, "workflow_"), 20)

	tid := NewThreadID()
	assert.True(t, strings.HasPrefix(tid, "thread_"))
}

func TestParseEmail_ReceivedAtIsSet(t *testing.T) {
	e := ParseEmail(map[string]any{"sender": "a@b.com"})
	assert.WithinDuration(t, time.Now().UTC(), e.ReceivedAt, time.Minute)
}
