package repository

import (
	"context"
	"errors"
	"time"

	"cotizapay/internal/domain/entities"
	"cotizapay/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultPaymentsTableName = "payments"
	paymentsQuoteIDIndex     = "quote_id-index"
)

type paymentItem struct {
	ID         string `dynamodbav:"id"`
	QuoteID    string `dynamodbav:"quote_id"`
	Amount     int64  `dynamodbav:"amount"`
	Status     string `dynamodbav:"status"`
	ProviderID string `dynamodbav:"provider_id,omitempty"`
	QRCode     string `dynamodbav:"qr_code,omitempty"`
	QRCodeData string `dynamodbav:"qr_code_data,omitempty"`
	InitPoint  string `dynamodbav:"init_point,omitempty"`
	CreatedAt  string `dynamodbav:"created_at"`
	UpdatedAt  string `dynamodbav:"updated_at"`
	ExpiresAt  string `dynamodbav:"expires_at,omitempty"`
	SettledAt  string `dynamodbav:"settled_at,omitempty"`
}

// PaymentDynamoRepository persists Payment entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//   - GSI: quote_id-index (PK: quote_id)
//
// UpdateStatus only moves items out of pending. A conditional write enforces
// that terminal states stay terminal even when two reconcilers race.

type PaymentDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IPaymentRepository = (*PaymentDynamoRepository)(nil)

func NewPaymentDynamoRepository(ddb *dynamodb.Client) *PaymentDynamoRepository {
	return &PaymentDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("PAYMENTS_TABLE", defaultPaymentsTableName),
	}
}

func (r *PaymentDynamoRepository) Create(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	it := toPaymentItem(p)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Payment{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return entities.Payment{}, err
	}
	return p, nil
}

func (r *PaymentDynamoRepository) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Payment{}, err
	}
	if len(out.Item) == 0 {
		return entities.Payment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it), nil
}

func (r *PaymentDynamoRepository) ListByQuoteID(ctx context.Context, quoteID string) ([]entities.Payment, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(paymentsQuoteIDIndex),
		KeyConditionExpression: aws.String("quote_id = :qid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":qid": &types.AttributeValueMemberS{Value: quoteID},
		},
	})
	if err != nil {
		return nil, err
	}

	items := make([]entities.Payment, 0, len(out.Items))
	for _, raw := range out.Items {
		var it paymentItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, err
		}
		items = append(items, fromPaymentItem(it))
	}
	return items, nil
}

// UpdateStatus transitions a payment out of pending. The condition loses
// against an item that already reached a terminal state; in that case the
// zero Payment is returned and the caller re-reads.
func (r *PaymentDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus, settledAt *time.Time) (entities.Payment, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	expr := "SET #status = :status, #updated_at = :updated_at"
	vals := map[string]types.AttributeValue{
		":status":     &types.AttributeValueMemberS{Value: string(status)},
		":updated_at": &types.AttributeValueMemberS{Value: now},
		":pending":    &types.AttributeValueMemberS{Value: string(entities.PaymentStatusPending)},
	}
	names := map[string]string{
		"#id":         "id",
		"#status":     "status",
		"#updated_at": "updated_at",
	}
	if settledAt != nil {
		expr += ", #settled_at = :settled_at"
		vals[":settled_at"] = &types.AttributeValueMemberS{Value: settledAt.UTC().Format(time.RFC3339Nano)}
		names["#settled_at"] = "settled_at"
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id) AND #status = :pending"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: vals,
		ExpressionAttributeNames:  names,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Payment{}, nil
		}
		return entities.Payment{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Payment{}, nil
	}

	var it paymentItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Payment{}, err
	}
	return fromPaymentItem(it), nil
}

func toPaymentItem(p entities.Payment) paymentItem {
	it := paymentItem{
		ID:         p.ID,
		QuoteID:    p.QuoteID,
		Amount:     p.Amount,
		Status:     string(p.Status),
		ProviderID: p.ProviderID,
		QRCode:     p.QRCode,
		QRCodeData: p.QRCodeData,
		InitPoint:  p.InitPoint,
		CreatedAt:  p.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:  p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if p.ExpiresAt != nil {
		it.ExpiresAt = p.ExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	if p.SettledAt != nil {
		it.SettledAt = p.SettledAt.UTC().Format(time.RFC3339Nano)
	}
	return it
}

func fromPaymentItem(it paymentItem) entities.Payment {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)

	p := entities.Payment{
		ID:         it.ID,
		QuoteID:    it.QuoteID,
		Amount:     it.Amount,
		Status:     entities.PaymentStatus(it.Status),
		ProviderID: it.ProviderID,
		QRCode:     it.QRCode,
		QRCodeData: it.QRCodeData,
		InitPoint:  it.InitPoint,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}
	if it.ExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, it.ExpiresAt); err == nil {
			p.ExpiresAt = &t
		}
	}
	if it.SettledAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, it.SettledAt); err == nil {
			p.SettledAt = &t
		}
	}
	return p
}
