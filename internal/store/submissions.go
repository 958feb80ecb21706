package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// submissionRecordType partitions the recency GSI so the whole collection can
// be queried newest-first with a single key condition.
const submissionRecordType = "SUBMISSION"

// SubmissionStore persists scored submissions. Documents are append-only and
// schemaless: whatever the client sent is stored as-is next to the
// server-stamped fields.
type SubmissionStore interface {
	// Put stores an item and returns its generated id. The caller is expected
	// to have stamped created_at (unix millis) and, when known, user_id.
	Put(ctx context.Context, item map[string]interface{}) (string, error)
	// ListRecent returns up to limit submissions ordered newest-first,
	// restricted to one owner when ownerID is non-empty.
	ListRecent(ctx context.Context, ownerID string, limit int) ([]map[string]interface{}, error)
}

// DynamoSubmissionStore implements SubmissionStore over a DynamoDB table keyed
// by submission_id, with recency-index (record_type, created_at) and
// user-recency-index (user_id, created_at) GSIs.
type DynamoSubmissionStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

func NewDynamoSubmissionStore(client *dynamodb.Client, tableName string, logger *logrus.Logger) *DynamoSubmissionStore {
	return &DynamoSubmissionStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (s *DynamoSubmissionStore) Put(ctx context.Context, item map[string]interface{}) (string, error) {
	id := uuid.New().String()
	item["submission_id"] = id
	item["record_type"] = submissionRecordType

	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      marshaled,
	})
	if err != nil {
		return "", fmt.Errorf("put item failed: %w", err)
	}

	s.logger.WithField("submission_id", id).Debug("Submission stored")

	return id, nil
}

func (s *DynamoSubmissionStore) ListRecent(ctx context.Context, ownerID string, limit int) ([]map[string]interface{}, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String("recency-index"),
		KeyConditionExpression: aws.String("record_type = :rt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rt": &types.AttributeValueMemberS{Value: submissionRecordType},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(int32(limit)),
	}

	if ownerID != "" {
		input.IndexName = aws.String("user-recency-index")
		input.KeyConditionExpression = aws.String("user_id = :uid")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: ownerID},
		}
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	items := make([]map[string]interface{}, 0, len(result.Items))
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}

	return items, nil
}
