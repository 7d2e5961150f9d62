package threadstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ignite/freightdesk/internal/domain"
)

// DynamoStore persists threads in a DynamoDB table, one item per thread.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// threadItem is the DynamoDB row: the thread record is kept as a JSON
// blob so field names stay stable across versions.
type threadItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
}

const threadSK = "THREAD"

// NewDynamoStore builds a store against the given table, loading AWS
// config from the environment (optionally a named profile).
func NewDynamoStore(ctx context.Context, tableName, region, profile string) (*DynamoStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &DynamoStore{client: dynamodb.NewFromConfig(cfg), tableName: tableName}, nil
}

// NewDynamoStoreWithClient is used by tests and custom wiring.
func NewDynamoStoreWithClient(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

func threadPK(threadID string) string { return "THREAD#" + threadID }

// Load fetches a thread, or (nil, nil) when the item does not exist.
func (s *DynamoStore) Load(ctx context.Context, threadID string) (*domain.ThreadData, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: threadPK(threadID)},
			"SK": &types.AttributeValueMemberS{Value: threadSK},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting thread %s: %w", threadID, err)
	}
	if out.Item == nil {
		return nil, nil
	}
	var item threadItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling thread item %s: %w", threadID, err)
	}
	var thread domain.ThreadData
	if err := json.Unmarshal([]byte(item.Data), &thread); err != nil {
		return nil, fmt.Errorf("decoding thread %s: %w", threadID, err)
	}
	return &thread, nil
}

// Save persists the full thread record.
func (s *DynamoStore) Save(ctx context.Context, thread *domain.ThreadData) error {
	if thread == nil {
		return errors.New("nil thread")
	}
	data, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("encoding thread %s: %w", thread.ThreadID, err)
	}
	item := threadItem{
		PK:        threadPK(thread.ThreadID),
		SK:        threadSK,
		Data:      string(data),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling thread item %s: %w", thread.ThreadID, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("putting thread %s: %w", thread.ThreadID, err)
	}
	return nil
}

// Append loads-or-creates, appends, persists.
func (s *DynamoStore) Append(ctx context.Context, threadID string, entry domain.EmailEntry) (*domain.ThreadData, error) {
	return appendEntry(ctx, s, threadID, entry)
}

// Cumulative returns the stored merged extraction.
func (s *DynamoStore) Cumulative(ctx context.Context, threadID string) (domain.Extraction, error) {
	thread, err := s.Load(ctx, threadID)
	if err != nil || thread == nil {
		return domain.Extraction{}, err
	}
	return thread.Cumulative, nil
}

// UpdateCumulative merges and persists; false on failure.
func (s *DynamoStore) UpdateCumulative(ctx context.Context, threadID string, new domain.Extraction) bool {
	return updateCumulative(ctx, s, threadID, new)
}
