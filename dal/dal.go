package dal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planner-bff/models"
	"planner-bff/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// maxBatchWrite is the DynamoDB limit on requests per BatchWriteItem call
	maxBatchWrite = 25

	maxBatchRetries     = 5
	defaultBatchBackoff = 50 * time.Millisecond
)

// ErrUnprocessedItems is returned when throttling leaves batch items unwritten after every retry
var ErrUnprocessedItems = errors.New("dynamodb left batch items unprocessed")

// dynamoAPI is the part of the DynamoDB API the client calls
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	UpdateTimeToLive(ctx context.Context, params *dynamodb.UpdateTimeToLiveInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error)
}

type DynamoDBClient struct {
	client       dynamoAPI
	config       *models.Config
	logger       logger.Logger
	batchBackoff time.Duration
}

// NewDynamoDBClient creates a new DynamoDB client
func NewDynamoDBClient(cfg *models.Config, log logger.Logger) (*DynamoDBClient, error) {
	awsCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Use static credentials if provided
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"", // session token
		))
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		// Override endpoint for local DynamoDB
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	log.Info("DynamoDB client initialized successfully")
	return &DynamoDBClient{
		client:       client,
		config:       cfg,
		logger:       log,
		batchBackoff: defaultBatchBackoff,
	}, nil
}

// GetItem retrieves an item by its string key attributes. Reports false when absent.
func (db *DynamoDBClient) GetItem(ctx context.Context, tableName string, key map[string]string, result interface{}) (bool, error) {
	output, err := db.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(tableName),
		Key:            stringKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		db.logger.Errorf("Failed to get item: %v", err)
		return false, err
	}

	if output.Item == nil {
		return false, nil
	}

	return true, attributevalue.UnmarshalMap(output.Item, result)
}

// PutItem stores an item in DynamoDB
func (db *DynamoDBClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = db.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	})
	return err
}

// DeleteItem deletes an item by its string key attributes
func (db *DynamoDBClient) DeleteItem(ctx context.Context, tableName string, key map[string]string) error {
	_, err := db.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key:       stringKey(key),
	})
	return err
}

// QueryByPartition returns every item under one partition key, following pagination
func (db *DynamoDBClient) QueryByPartition(ctx context.Context, tableName, keyName, keyValue string, results interface{}) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		KeyConditionExpression: aws.String("#kn0 = :kv0"),
		ExpressionAttributeNames: map[string]string{
			"#kn0": keyName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kv0": &types.AttributeValueMemberS{Value: keyValue},
		},
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(db.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		items = append(items, page.Items...)
	}

	return attributevalue.UnmarshalListOfMaps(items, results)
}

// BatchDelete deletes items by key in chunks of the BatchWriteItem limit
func (db *DynamoDBClient) BatchDelete(ctx context.Context, tableName string, keys []map[string]string) error {
	for start := 0; start < len(keys); start += maxBatchWrite {
		end := start + maxBatchWrite
		if end > len(keys) {
			end = len(keys)
		}

		requests := make([]types.WriteRequest, 0, end-start)
		for _, key := range keys[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: stringKey(key)},
			})
		}

		if err := db.writeBatch(ctx, map[string][]types.WriteRequest{tableName: requests}); err != nil {
			return err
		}
	}
	return nil
}

// writeBatch resubmits unprocessed items with exponential backoff, up to maxBatchRetries times
func (db *DynamoDBClient) writeBatch(ctx context.Context, pending map[string][]types.WriteRequest) error {
	backoff := db.batchBackoff
	if backoff <= 0 {
		backoff = defaultBatchBackoff
	}

	for attempt := 0; ; attempt++ {
		output, err := db.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		pending = output.UnprocessedItems
		if len(pending) == 0 {
			return nil
		}
		if attempt >= maxBatchRetries {
			return fmt.Errorf("%w after %d retries", ErrUnprocessedItems, maxBatchRetries)
		}

		db.logger.Debugf("Retrying %d unprocessed batch tables (attempt %d)", len(pending), attempt+1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff << attempt):
		}
	}
}

// CreateTable creates a table
func (db *DynamoDBClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	_, err := db.client.CreateTable(ctx, input)
	return err
}

// DescribeTable describes a table
func (db *DynamoDBClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	return db.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	})
}

// UpdateTimeToLive enables TTL expiry on the given attribute
func (db *DynamoDBClient) UpdateTimeToLive(ctx context.Context, tableName, attribute string) error {
	_, err := db.client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			AttributeName: aws.String(attribute),
			Enabled:       aws.Bool(true),
		},
	})
	return err
}

func stringKey(key map[string]string) map[string]types.AttributeValue {
	av := make(map[string]types.AttributeValue, len(key))
	for name, value := range key {
		av[name] = &types.AttributeValueMemberS{Value: value}
	}
	return av
}
