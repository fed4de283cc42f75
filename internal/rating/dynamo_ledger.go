package rating

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of the DynamoDB client the ledger uses
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoLedger stores one item per (booking, user) pair keyed by rating_key
type DynamoLedger struct {
	client    DynamoAPI
	tableName string
}

func NewDynamoLedger(client DynamoAPI, tableName string) *DynamoLedger {
	return &DynamoLedger{client: client, tableName: tableName}
}

type ledgerItem struct {
	RatingKey string `dynamodbav:"rating_key"`
	Reservation
}

func (d *DynamoLedger) Reserve(ctx context.Context, r Reservation) (bool, error) {
	item, err := attributevalue.MarshalMap(ledgerItem{RatingKey: r.Key(), Reservation: r})
	if err != nil {
		return false, fmt.Errorf("marshal failed: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(rating_key)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, fmt.Errorf("put item failed: %w", err)
	}
	return true, nil
}

func (d *DynamoLedger) Release(ctx context.Context, r Reservation) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"rating_key": &types.AttributeValueMemberS{Value: r.Key()},
		},
	})
	if err != nil {
		return fmt.Errorf("delete item failed: %w", err)
	}
	return nil
}
