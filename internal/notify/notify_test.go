package notify

import (
	"context"
	"testing"

	"github.com/ignite/freightdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureDelivery struct {
	to      string
	entries []domain.EmailEntry
}

func (c *captureDelivery) Deliver(_ context.Context, to string, entry domain.EmailEntry) {
	c.to = to
	c.entries = append(c.entries, entry)
}

func notificationRequest() map[string]any {
	return map[string]any{
		"notification_type": "forwarder_rates_received",
		"thread_id":         "thread_42",
		"customer_details":  map[string]any{"name": "John Doe"},
		"shipment_details":  map[string]any{"origin": "Shanghai", "destination": "Los Angeles"},
		"forwarder_rates": map[string]any{
			"rate_information": map[string]any{"40HC": "$2,400"},
		},
		"urgency": "high",
	}
}

func TestNotifier_EmailsSalesDesk(t *testing.T) {
	delivery := &captureDelivery{}
	n := New(delivery, "sales@freightdesk.io", "bot@freightdesk.io")

	resp, err := n.Collaborator().Process(context.Background(), notificationRequest())
	require.NoError(t, err)
	assert.Equal(t, true, resp["notified"])
	assert.Equal(t, "email", resp["channel"])

	require.Len(t, delivery.entries, 1)
	assert.Equal(t, "sales@freightdesk.io", delivery.to)
	entry := delivery.entries[0]
	assert.Equal(t, "sales_notification", entry.ResponseType)
	assert.Contains(t, entry.Subject, "Shanghai to Los Angeles")
	assert.Contains(t, entry.Content, "40HC: $2,400")
	assert.Contains(t, entry.Content, "Urgency: high")
}

func TestNotifier_LogOnlyWithoutTransport(t *testing.T) {
	n := New(nil, "", "bot@freightdesk.io")
	resp, err := n.Collaborator().Process(context.Background(), notificationRequest())
	require.NoError(t, err)
	assert.Equal(t, true, resp["notified"])
	assert.Equal(t, "log", resp["channel"])
}
