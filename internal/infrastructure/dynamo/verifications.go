package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/zycare/auth-api/internal/domain"
)

// VerificationRepo stores pending verification codes, one per identifier.
// The table's TTL attribute (expires_at) evicts stale entries server-side;
// DeleteExpired additionally sweeps entries the TTL has not yet collected.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

// Put writes the entry, overwriting any existing one for the same identifier.
func (r *VerificationRepo) Put(ctx context.Context, v *domain.PendingVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *VerificationRepo) Get(ctx context.Context, identifier string) (*domain.PendingVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identifier", identifier),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	var v domain.PendingVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// IncrementAttempts bumps the attempt counter atomically and returns the
// post-increment value. The conditional write keeps the count correct under
// concurrent guesses across instances. Returns ErrNotFound when the entry
// vanished (consumed or swept) between Get and the increment.
func (r *VerificationRepo) IncrementAttempts(ctx context.Context, identifier string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("identifier", identifier),
		UpdateExpression:    aws.String("ADD attempts :one"),
		ConditionExpression: aws.String("attribute_exists(identifier)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return 0, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
		}
		return 0, err
	}
	n, ok := out.Attributes["attempts"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("unexpected attempts attribute in update response")
	}
	attempts, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("parse attempts: %w", err)
	}
	return attempts, nil
}

// Delete removes the entry. Deleting a non-existent entry is not an error.
func (r *VerificationRepo) Delete(ctx context.Context, identifier string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identifier", identifier),
	})
	return err
}

// DeleteExpired scans for entries past their expiry and removes them.
// DynamoDB's TTL does this eventually; the sweep keeps the table tight in
// the window before TTL collection kicks in.
func (r *VerificationRepo) DeleteExpired(ctx context.Context) (int, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:            aws.String(r.tableName),
		FilterExpression:     aws.String("expires_at < :now"),
		ProjectionExpression: aws.String("identifier"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberN{Value: now},
		},
	})
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, item := range out.Items {
		idAttr, ok := item["identifier"].(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if err := r.Delete(ctx, idAttr.Value); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}
