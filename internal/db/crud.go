package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Implements the store.Backend interface
func (c *DynamoDB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := c.DDB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.Table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: key},
		},
		// hit counts are read-modify-write, so read the latest write
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, false, nil
	}

	var item linkItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal item: %w", err)
	}

	return []byte(item.Value), true, nil
}

func (c *DynamoDB) Put(ctx context.Context, key string, value []byte) error {
	item := linkItem{
		ID:        key,
		Value:     string(value),
		UpdatedAt: time.Now().Unix(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = c.DDB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.Table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

// ListKeys scans the table for ids starting with prefix, following pagination.
func (c *DynamoDB) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	filter := expression.Name("id").BeginsWith(prefix)
	projection := expression.NamesList(expression.Name("id"))
	expr, err := expression.NewBuilder().WithFilter(filter).WithProjection(projection).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(c.DDB, &dynamodb.ScanInput{
		TableName:                 aws.String(c.Table),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	keys := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}

		for _, av := range page.Items {
			var item linkItem
			if err := attributevalue.UnmarshalMap(av, &item); err != nil || item.ID == "" {
				c.Logger.Debug().Err(err).Msg("Skipping item without a readable id")
				continue
			}
			if !strings.HasPrefix(item.ID, prefix) {
				continue
			}
			keys = append(keys, item.ID)
		}
	}

	return keys, nil
}
