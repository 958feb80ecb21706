// Package store holds the DynamoDB-backed persistence layer. Stores are
// constructed once at startup around a shared client and live for the process
// lifetime.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sirupsen/logrus"

	"github.com/cld-events/bidsim-api/internal/models"
)

// ErrUserNotFound is returned when no user record matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserStore persists user records. Email uniqueness is enforced by the
// check-then-insert sequence in the auth handlers, not by the store; two
// concurrent signups for the same email can both land. This race is an
// accepted limitation.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// DynamoUserStore implements UserStore over a DynamoDB table keyed by user_id
// with an email-index GSI.
type DynamoUserStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

func NewDynamoUserStore(client *dynamodb.Client, tableName string, logger *logrus.Logger) *DynamoUserStore {
	return &DynamoUserStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (s *DynamoUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String("email-index"),
		KeyConditionExpression: aws.String("email = :email"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, ErrUserNotFound
	}

	var user models.User
	if err := attributevalue.UnmarshalMap(result.Items[0], &user); err != nil {
		return nil, fmt.Errorf("unmarshal failed: %w", err)
	}

	return &user, nil
}

func (s *DynamoUserStore) Create(ctx context.Context, user *models.User) error {
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if err != nil {
		return fmt.Errorf("put item failed: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.UserID,
		"email":   user.Email,
	}).Debug("User record created")

	return nil
}
