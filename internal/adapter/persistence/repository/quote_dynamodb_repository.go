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

const defaultQuotesTableName = "quotes"

type quoteCustomerItem struct {
	Name    string `dynamodbav:"name"`
	Email   string `dynamodbav:"email,omitempty"`
	Phone   string `dynamodbav:"phone,omitempty"`
	Address string `dynamodbav:"address,omitempty"`
}

type quoteLineItem struct {
	ProductName string `dynamodbav:"product_name"`
	UnitPrice   int64  `dynamodbav:"unit_price"`
	Quantity    int    `dynamodbav:"quantity"`
	Subtotal    int64  `dynamodbav:"subtotal"`
}

type quoteItem struct {
	ID             string            `dynamodbav:"id"`
	Customer       quoteCustomerItem `dynamodbav:"customer"`
	Items          []quoteLineItem   `dynamodbav:"items"`
	DiscountPct    float64           `dynamodbav:"discount_pct"`
	TaxPct         float64           `dynamodbav:"tax_pct"`
	Subtotal       int64             `dynamodbav:"subtotal"`
	DiscountAmount int64             `dynamodbav:"discount_amount"`
	TaxAmount      int64             `dynamodbav:"tax_amount"`
	Total          int64             `dynamodbav:"total"`
	Status         string            `dynamodbav:"status"`
	CreatedAt      string            `dynamodbav:"created_at"`
	ExpiresAt      string            `dynamodbav:"expires_at"`
	UpdatedAt      string            `dynamodbav:"updated_at"`
}

// QuoteDynamoRepository persists Quote entities in DynamoDB.
//
// Table requirements:
//   - PK: id (string)
//
// Amounts are stored as integer cents, exactly as the domain computes them;
// the repository never re-derives totals.

type QuoteDynamoRepository struct {
	ddb       *dynamodb.Client
	tableName string
}

var _ interfaces.IQuoteRepository = (*QuoteDynamoRepository)(nil)

func NewQuoteDynamoRepository(ddb *dynamodb.Client) *QuoteDynamoRepository {
	return &QuoteDynamoRepository{
		ddb:       ddb,
		tableName: getenvDefault("QUOTES_TABLE", defaultQuotesTableName),
	}
}

func (r *QuoteDynamoRepository) Create(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	it := toQuoteItem(q)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Quote{}, err
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
		return entities.Quote{}, err
	}
	return q, nil
}

func (r *QuoteDynamoRepository) GetByID(ctx context.Context, id string) (entities.Quote, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Quote{}, err
	}
	if len(out.Item) == 0 {
		return entities.Quote{}, nil
	}

	var it quoteItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Quote{}, err
	}
	return fromQuoteItem(it), nil
}

// Update replaces the whole item. Repricing rewrites lines, percentages and
// every derived amount together, so a full put is simpler and safer than a
// field-by-field update expression.
func (r *QuoteDynamoRepository) Update(ctx context.Context, q entities.Quote) (entities.Quote, error) {
	it := toQuoteItem(q)
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return entities.Quote{}, err
	}

	_, err = r.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Quote{}, nil
		}
		return entities.Quote{}, err
	}
	return q, nil
}

func (r *QuoteDynamoRepository) UpdateStatus(ctx context.Context, id string, status entities.QuoteStatus) (entities.Quote, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("attribute_exists(#id)"),
		UpdateExpression:    aws.String("SET #status = :status, #updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":     &types.AttributeValueMemberS{Value: string(status)},
			":updated_at": &types.AttributeValueMemberS{Value: now},
		},
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#status":     "status",
			"#updated_at": "updated_at",
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return entities.Quote{}, nil
		}
		return entities.Quote{}, err
	}
	if len(out.Attributes) == 0 {
		return entities.Quote{}, nil
	}

	var it quoteItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return entities.Quote{}, err
	}
	return fromQuoteItem(it), nil
}

func toQuoteItem(q entities.Quote) quoteItem {
	lines := make([]quoteLineItem, 0, len(q.Items))
	for _, li := range q.Items {
		lines = append(lines, quoteLineItem{
			ProductName: li.ProductName,
			UnitPrice:   li.UnitPrice,
			Quantity:    li.Quantity,
			Subtotal:    li.Subtotal,
		})
	}
	return quoteItem{
		ID: q.ID,
		Customer: quoteCustomerItem{
			Name:    q.Customer.Name,
			Email:   q.Customer.Email,
			Phone:   q.Customer.Phone,
			Address: q.Customer.Address,
		},
		Items:          lines,
		DiscountPct:    q.DiscountPct,
		TaxPct:         q.TaxPct,
		Subtotal:       q.Subtotal,
		DiscountAmount: q.DiscountAmount,
		TaxAmount:      q.TaxAmount,
		Total:          q.Total,
		Status:         string(q.Status),
		CreatedAt:      q.CreatedAt.UTC().Format(time.RFC3339Nano),
		ExpiresAt:      q.ExpiresAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:      q.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func fromQuoteItem(it quoteItem) entities.Quote {
	createdAt, _ := time.Parse(time.RFC3339Nano, it.CreatedAt)
	expiresAt, _ := time.Parse(time.RFC3339Nano, it.ExpiresAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, it.UpdatedAt)

	lines := make([]entities.QuoteItem, 0, len(it.Items))
	for _, li := range it.Items {
		lines = append(lines, entities.QuoteItem{
			ProductName: li.ProductName,
			UnitPrice:   li.UnitPrice,
			Quantity:    li.Quantity,
			Subtotal:    li.Subtotal,
		})
	}
	return entities.Quote{
		ID: it.ID,
		Customer: entities.Customer{
			Name:    it.Customer.Name,
			Email:   it.Customer.Email,
			Phone:   it.Customer.Phone,
			Address: it.Customer.Address,
		},
		Items:          lines,
		DiscountPct:    it.DiscountPct,
		TaxPct:         it.TaxPct,
		Subtotal:       it.Subtotal,
		DiscountAmount: it.DiscountAmount,
		TaxAmount:      it.TaxAmount,
		Total:          it.Total,
		Status:         entities.QuoteStatus(it.Status),
		CreatedAt:      createdAt,
		ExpiresAt:      expiresAt,
		UpdatedAt:      updatedAt,
	}
}
