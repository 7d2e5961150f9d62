// Package notify tells the sales team when forwarder rates arrive so a
// human can review the quote before anything unusual ships.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/freightdesk/internal/agents"
	"github.com/ignite/freightdesk/internal/domain"
	"github.com/ignite/freightdesk/internal/market"
	"github.com/ignite/freightdesk/internal/pkg/logger"
)

// Deliverer is the mail transport notifications go out on.
type Deliverer interface {
	Deliver(ctx context.Context, to string, entry domain.EmailEntry)
}

// Notifier formats and sends internal sales notifications. A nil
// transport degrades to log-only, which keeps the workflow deterministic
// in tests and local runs.
type Notifier struct {
	delivery Deliverer
	desk     string // sales desk address
	from     string
	news     *market.NewsFeed
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithNews attaches industry headlines to each notification.
func WithNews(feed *market.NewsFeed) Option {
	return func(n *Notifier) { n.news = feed }
}

// New builds a notifier that mails the sales desk address.
func New(delivery Deliverer, desk, from string, opts ...Option) *Notifier {
	n := &Notifier{delivery: delivery, desk: desk, from: from}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Collaborator exposes the notifier in the workflow's map shape.
func (n *Notifier) Collaborator() agents.Collaborator {
	return agents.Func(func(ctx context.Context, req map[string]any) (map[string]any, error) {
		threadID, _ := req["thread_id"].(string)
		subject, body := n.compose(ctx, req)

		channel := "log"
		if n.delivery != nil && n.desk != "" {
			n.delivery.Deliver(ctx, n.desk, domain.EmailEntry{
				ID:           "notify_" + uuid.NewString(),
				Sender:       n.from,
				Direction:    domain.DirectionOutbound,
				Subject:      subject,
				Content:      body,
				Timestamp:    time.Now().UTC(),
				ResponseType: "sales_notification",
			})
			channel = "email"
		} else {
			logger.Info("sales notification", "thread_id", threadID, "subject", subject)
		}

		return map[string]any{
			"notified":  true,
			"channel":   channel,
			"recipient": n.desk,
			"subject":   subject,
		}, nil
	})
}

func (n *Notifier) compose(ctx context.Context, req map[string]any) (subject, body string) {
	threadID, _ := req["thread_id"].(string)
	sd, _ := req["shipment_details"].(map[string]any)
	origin, _ := sd["origin"].(string)
	dest, _ := sd["destination"].(string)

	subject = fmt.Sprintf("Forwarder rates in: %s to %s [%s]", origin, dest, threadID)

	var b strings.Builder
	b.WriteString("Forwarder rates received for thread " + threadID + ".\n\n")
	if customer, ok := req["customer_details"].(map[string]any); ok {
		if name, _ := customer["name"].(string); name != "" {
			fmt.Fprintf(&b, "Customer: %s\n", name)
		}
	}
	fmt.Fprintf(&b, "Lane: %s to %s\n", origin, dest)
	if urgency, _ := req["urgency"].(string); urgency != "" {
		fmt.Fprintf(&b, "Urgency: %s\n", urgency)
	}

	if rates, ok := req["forwarder_rates"].(map[string]any); ok {
		if ri, ok := rates["rate_information"].(map[string]any); ok && len(ri) > 0 {
			b.WriteString("\nQuoted rates:\n")
			for k, v := range ri {
				fmt.Fprintf(&b, "  %s: %v\n", k, v)
			}
		}
	}

	if n.news != nil {
		if headlines := n.news.Latest(ctx); len(headlines) > 0 {
			b.WriteString("\nMarket headlines:\n")
			for _, h := range headlines {
				fmt.Fprintf(&b, "  - %s\n", h.Title)
			}
		}
	}

	b.WriteString("\nThe customer quote goes out automatically; reply on the thread to intervene.")
	return subject, b.String()
}
