package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/zycare/auth-api/internal/domain"
)

// IdentityRepo provides typed DynamoDB operations for the identities table.
type IdentityRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewIdentityRepo(client *dynamodb.Client, tableName string) *IdentityRepo {
	return &IdentityRepo{client: client, tableName: tableName}
}

func (r *IdentityRepo) Put(ctx context.Context, ident *domain.Identity) error {
	item, err := attributevalue.MarshalMap(ident)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *IdentityRepo) Get(ctx context.Context, identityID string) (*domain.Identity, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("identity_id", identityID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	var ident domain.Identity
	if err := attributevalue.UnmarshalMap(out.Item, &ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

// GetByIdentifier looks up an identity by its contact identifier via GSI.
func (r *IdentityRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("identifier-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "identifier"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: identifier}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("identity not found: %w", domain.ErrNotFound)
	}
	var ident domain.Identity
	if err := attributevalue.UnmarshalMap(out.Items[0], &ident); err != nil {
		return nil, err
	}
	return &ident, nil
}

func (r *IdentityRepo) Update(ctx context.Context, identityID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("identity_id", identityID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// MarkWelcomed flips is_new_user false→true exactly once. The conditional
// write makes the flip atomic: concurrent verifications (or out-of-band
// profile edits) cannot double-fire the welcome notification. Returns whether
// this call performed the flip.
func (r *IdentityRepo) MarkWelcomed(ctx context.Context, identityID string) (bool, error) {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("identity_id", identityID),
		UpdateExpression:    aws.String("SET #n = :f, #u = :t"),
		ConditionExpression: aws.String("#n = :tr"),
		ExpressionAttributeNames: map[string]string{
			"#n": fieldIsNewUser,
			"#u": fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":f":  &types.AttributeValueMemberBOOL{Value: false},
			":tr": &types.AttributeValueMemberBOOL{Value: true},
			":t":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
