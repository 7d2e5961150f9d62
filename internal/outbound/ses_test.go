package outbound

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/ignite/freightdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func entry() domain.EmailEntry {
	return domain.EmailEntry{
		ID:           "bot_abc",
		Sender:       "quotes@freightdesk.io",
		Subject:      "Please confirm your shipment",
		Content:      "Hi John,\n\nPlease confirm.",
		ResponseType: "confirmation",
		WorkflowID:   "workflow_1",
	}
}

func TestSESSender_Deliver(t *testing.T) {
	fake := &fakeSES{}
	s := NewSESSenderWithClient(fake, "FreightDesk")

	s.Deliver(context.Background(), "john@techcorp.com", entry())

	require.Len(t, fake.inputs, 1)
	in := fake.inputs[0]
	assert.Equal(t, "FreightDesk <quotes@freightdesk.io>", *in.FromEmailAddress)
	assert.Equal(t, []string{"john@techcorp.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Please confirm your shipment", *in.Content.Simple.Subject.Data)
	require.Len(t, in.EmailTags, 2)
	assert.Equal(t, "workflow_1", *in.EmailTags[0].Value)
}

func TestSESSender_DeliverSkipsEmptyRecipient(t *testing.T) {
	fake := &fakeSES{}
	s := NewSESSenderWithClient(fake, "")
	s.Deliver(context.Background(), "", entry())
	assert.Empty(t, fake.inputs)
}

func TestSESSender_DeliverSwallowsErrors(t *testing.T) {
	fake := &fakeSES{err: errors.New("throttled")}
	s := NewSESSenderWithClient(fake, "")
	// Must not panic or propagate; the thread record is authoritative.
	s.Deliver(context.Background(), "john@techcorp.com", entry())
	assert.Len(t, fake.inputs, 1)
}
