// Package outbound delivers committed bot responses by email. Delivery
// is best effort: the workflow's thread record is the source of truth
// and a transport failure never fails the turn.
package outbound

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/ignite/freightdesk/internal/domain"
	"github.com/ignite/freightdesk/internal/pkg/logger"
)

// sesAPI is the slice of the SES client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers outbound entries through AWS SES.
type SESSender struct {
	client   sesAPI
	fromName string
}

// NewSESSender builds the sender. Static credentials are optional; the
// default chain is used when they are empty.
func NewSESSender(ctx context.Context, accessKey, secretKey, region, fromName string) (*SESSender, error) {
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("outbound: loading AWS config: %w", err)
	}
	return &SESSender{client: sesv2.NewFromConfig(cfg), fromName: fromName}, nil
}

// NewSESSenderWithClient wraps an existing client, used by tests.
func NewSESSenderWithClient(client sesAPI, fromName string) *SESSender {
	return &SESSender{client: client, fromName: fromName}
}

// Deliver sends one committed outbound entry. Failures are logged, not
// returned; the thread record already holds the response.
func (s *SESSender) Deliver(ctx context.Context, to string, entry domain.EmailEntry) {
	if to == "" {
		logger.Warn("outbound: no recipient for entry", "entry_id", entry.ID)
		return
	}

	from := entry.Sender
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, entry.Sender)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(entry.Subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(entry.Content), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("workflow_id"), Value: aws.String(entry.WorkflowID)},
			{Name: aws.String("response_type"), Value: aws.String(entry.ResponseType)},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		logger.Error("outbound: SES send failed",
			"recipient", to, "entry_id", entry.ID, "error", err.Error())
		return
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	logger.Info("outbound: delivered",
		"recipient", to, "response_type", entry.ResponseType, "message_id", messageID)
}
