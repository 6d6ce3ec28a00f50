package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoDB.
type DynamoAPI interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// tableWaitTimeout bounds how long setup waits for a new table to become ACTIVE.
const tableWaitTimeout = 2 * time.Minute

type DynamoDB struct {
	Table       string
	Region      string
	DDBEndpoint string
	DDB         DynamoAPI
	Logger      zerolog.Logger
}

// linkItem is one short link as stored in DynamoDB
type linkItem struct {
	ID        string `dynamodbav:"id"`         // "{host}:{slug}" (partition key)
	Value     string `dynamodbav:"value"`      // JSON encoded link record
	UpdatedAt int64  `dynamodbav:"updated_at"` // Unix timestamp of the last write
}

// SetupDynamoDB builds the DynamoDB client (unless one was injected) and
// creates the table when it does not exist yet.
func SetupDynamoDB(ctx context.Context, c *DynamoDB) error {
	if c.DDB == nil {
		cfg, err := config.LoadDefaultConfig(ctx, func(o *config.LoadOptions) error {
			o.Region = c.Region

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to load aws config: %w", err)
		}

		if c.DDBEndpoint != "" {
			// Local endpoints (dynamodb-local, localstack) accept any static credentials
			cfg.Credentials = credentials.NewStaticCredentialsProvider("dummy1", "dummy2", "dummy3")
			c.DDB = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
				o.BaseEndpoint = aws.String(c.DDBEndpoint)
			})
			c.Logger.Info().Str("endpoint", c.DDBEndpoint).Msg("Using custom DynamoDB endpoint")
		} else {
			c.DDB = dynamodb.NewFromConfig(cfg)
		}
	}

	_, err := c.DDB.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.Table),
	})
	if err == nil {
		c.Logger.Debug().Str("table", c.Table).Msg("Connected to DynamoDB table")
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to describe table %s: %w", c.Table, err)
	}

	c.Logger.Debug().Str("table", c.Table).Msg("Table doesn't exist, creating...")

	// Only the key attribute is declared; value and updated_at are schemaless
	_, err = c.DDB.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(c.Table),
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       types.KeyTypeHash,
			},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(c.DDB)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(c.Table)}, tableWaitTimeout)
	if err != nil {
		return fmt.Errorf("failed waiting for table %s: %w", c.Table, err)
	}

	c.Logger.Info().Str("table", c.Table).Msg("Table created")
	return nil
}

func (c *DynamoDB) Close() error {
	return nil
}
