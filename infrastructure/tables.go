package infrastructure

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/tidwall/gjson"
)

// TableSchema is one entry of table_schema.json
type TableSchema struct {
	TableName             string                `json:"TableName"`
	AttributeDefinitions  []AttributeDefinition `json:"AttributeDefinitions"`
	KeySchema             []KeySchemaElement    `json:"KeySchema"`
	BillingMode           string                `json:"BillingMode,omitempty"`
	ProvisionedThroughput *Throughput           `json:"ProvisionedThroughput,omitempty"`
	TimeToLiveAttribute   string                `json:"TimeToLiveAttribute,omitempty"`
}

type AttributeDefinition struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"`
}

type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

type Throughput struct {
	ReadCapacityUnits  int64 `json:"ReadCapacityUnits"`
	WriteCapacityUnits int64 `json:"WriteCapacityUnits"`
}

//go:embed table_schema.json
var tablesSchema []byte

const (
	defaultActiveTimeout = 2 * time.Minute
	defaultPollInterval  = 2 * time.Second
)

// TableBootstrapper creates the DynamoDB tables the BFF needs when they are missing
type TableBootstrapper struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger

	activeTimeout time.Duration
	pollInterval  time.Duration
}

func NewTableBootstrapper(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *TableBootstrapper {
	return &TableBootstrapper{
		db:            db,
		config:        cfg,
		logger:        log,
		activeTimeout: defaultActiveTimeout,
		pollInterval:  defaultPollInterval,
	}
}

// EnsureTables creates every configured table that does not exist and enables its TTL.
// With no tables configured only the client storage table is ensured.
func (b *TableBootstrapper) EnsureTables(ctx context.Context) error {
	tables := b.config.Tables
	if len(tables) == 0 {
		tables = []string{models.StorageTable}
	}

	for _, base := range tables {
		if err := b.ensureTable(ctx, base); err != nil {
			return err
		}
	}
	return nil
}

func (b *TableBootstrapper) ensureTable(ctx context.Context, base string) error {
	tableName := b.config.TableName(base)
	schema, err := GetTableSchema(base)
	if err != nil {
		return err
	}

	exists, err := b.tableExists(ctx, tableName)
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}
	if exists {
		b.logger.Debugf("Table %s already exists", tableName)
		return nil
	}

	b.logger.Infof("Creating table %s", tableName)
	if err := b.db.CreateTable(ctx, schema.ToDynamoInput(tableName)); err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
		b.logger.Infof("Table %s is being created by another instance", tableName)
	}

	if err := b.waitForActive(ctx, tableName); err != nil {
		return err
	}

	if schema.TimeToLiveAttribute != "" {
		if err := b.db.UpdateTimeToLive(ctx, tableName, schema.TimeToLiveAttribute); err != nil && !ttlAlreadyEnabled(err) {
			return fmt.Errorf("failed to enable TTL on %s: %w", tableName, err)
		}
	}
	b.logger.Infof("Table %s is ready", tableName)
	return nil
}

func (b *TableBootstrapper) tableExists(ctx context.Context, tableName string) (bool, error) {
	_, err := b.db.DescribeTable(ctx, tableName)
	if err == nil {
		return true, nil
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, err
}

func (b *TableBootstrapper) waitForActive(ctx context.Context, tableName string) error {
	ctx, cancel := context.WithTimeout(ctx, b.activeTimeout)
	defer cancel()

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		out, err := b.db.DescribeTable(ctx, tableName)
		if err == nil && out.Table != nil && out.Table.TableStatus == types.TableStatusActive {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("table %s did not become active: %w", tableName, ctx.Err())
		case <-ticker.C:
		}
	}
}

// ttlAlreadyEnabled recognizes the validation error DynamoDB returns when TTL is already on
func ttlAlreadyEnabled(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.ErrorCode() == "ValidationException" &&
		strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "already enabled")
}

// GetTableSchema reads the schema of a table from the embedded table_schema.json
func GetTableSchema(base string) (*TableSchema, error) {
	tableJSON := gjson.GetBytes(tablesSchema, gjson.Escape(base))
	if !tableJSON.Exists() {
		return nil, fmt.Errorf("table schema not found for key: %s", base)
	}

	var schema TableSchema
	if err := json.Unmarshal([]byte(tableJSON.Raw), &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema JSON: %w", err)
	}
	return &schema, nil
}

// ToDynamoInput converts the schema to a CreateTable request for the prefixed table name
func (ts *TableSchema) ToDynamoInput(tableName string) *dynamodb.CreateTableInput {
	attrDefs := make([]types.AttributeDefinition, 0, len(ts.AttributeDefinitions))
	for _, a := range ts.AttributeDefinitions {
		attrDefs = append(attrDefs, types.AttributeDefinition{
			AttributeName: aws.String(a.AttributeName),
			AttributeType: types.ScalarAttributeType(a.AttributeType),
		})
	}

	keySchema := make([]types.KeySchemaElement, 0, len(ts.KeySchema))
	for _, k := range ts.KeySchema {
		keySchema = append(keySchema, types.KeySchemaElement{
			AttributeName: aws.String(k.AttributeName),
			KeyType:       types.KeyType(k.KeyType),
		})
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(tableName),
		AttributeDefinitions: attrDefs,
		KeySchema:            keySchema,
	}

	if ts.ProvisionedThroughput != nil {
		input.BillingMode = types.BillingModeProvisioned
		input.ProvisionedThroughput = &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(ts.ProvisionedThroughput.ReadCapacityUnits),
			WriteCapacityUnits: aws.Int64(ts.ProvisionedThroughput.WriteCapacityUnits),
		}
	} else {
		input.BillingMode = types.BillingModePayPerRequest
	}
	return input
}
