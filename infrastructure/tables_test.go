package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"planner-bff/models"
	"planner-bff/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockDatabaseClient struct {
	mock.Mock
}

func (m *MockDatabaseClient) GetItem(ctx context.Context, tableName string, key map[string]string, result interface{}) (bool, error) {
	args := m.Called(ctx, tableName, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockDatabaseClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	return m.Called(ctx, tableName, item).Error(0)
}

func (m *MockDatabaseClient) DeleteItem(ctx context.Context, tableName string, key map[string]string) error {
	return m.Called(ctx, tableName, key).Error(0)
}

func (m *MockDatabaseClient) QueryByPartition(ctx context.Context, tableName, keyName, keyValue string, results interface{}) error {
	return m.Called(ctx, tableName, keyName, keyValue, results).Error(0)
}

func (m *MockDatabaseClient) BatchDelete(ctx context.Context, tableName string, keys []map[string]string) error {
	return m.Called(ctx, tableName, keys).Error(0)
}

func (m *MockDatabaseClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockDatabaseClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, tableName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}

func (m *MockDatabaseClient) UpdateTimeToLive(ctx context.Context, tableName, attribute string) error {
	return m.Called(ctx, tableName, attribute).Error(0)
}

func activeTable(name string) *dynamodb.DescribeTableOutput {
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{
		TableName:   aws.String(name),
		TableStatus: types.TableStatusActive,
	}}
}

// TableBootstrapperTestSuite covers table creation against a mocked DynamoDB
type TableBootstrapperTestSuite struct {
	suite.Suite
	db           *MockDatabaseClient
	bootstrapper *TableBootstrapper
}

func (suite *TableBootstrapperTestSuite) SetupTest() {
	suite.db = &MockDatabaseClient{}
	suite.bootstrapper = NewTableBootstrapper(suite.db, &models.Config{DynamoDBTablePrefix: "dev"}, logger.Nop())
	suite.bootstrapper.pollInterval = time.Millisecond
	suite.bootstrapper.activeTimeout = time.Second
}

func TestTableBootstrapperTestSuite(t *testing.T) {
	suite.Run(t, new(TableBootstrapperTestSuite))
}

func (suite *TableBootstrapperTestSuite) TestExistingTableIsLeftAlone() {
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").Return(activeTable("dev_client_storage"), nil)

	require.NoError(suite.T(), suite.bootstrapper.EnsureTables(context.Background()))
	suite.db.AssertNotCalled(suite.T(), "CreateTable", mock.Anything, mock.Anything)
	suite.db.AssertNotCalled(suite.T(), "UpdateTimeToLive", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TableBootstrapperTestSuite) TestMissingTableIsCreatedWithTTL() {
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").
		Return(nil, &types.ResourceNotFoundException{Message: aws.String("not found")}).Once()
	suite.db.On("CreateTable", mock.Anything, mock.MatchedBy(func(input *dynamodb.CreateTableInput) bool {
		return aws.ToString(input.TableName) == "dev_client_storage" &&
			input.BillingMode == types.BillingModePayPerRequest &&
			len(input.KeySchema) == 2 &&
			aws.ToString(input.KeySchema[0].AttributeName) == "session_id" &&
			input.KeySchema[0].KeyType == types.KeyTypeHash
	})).Return(nil)
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").Return(&dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableStatus: types.TableStatusCreating},
	}, nil).Once()
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").Return(activeTable("dev_client_storage"), nil)
	suite.db.On("UpdateTimeToLive", mock.Anything, "dev_client_storage", "expires_at").Return(nil)

	require.NoError(suite.T(), suite.bootstrapper.EnsureTables(context.Background()))
	suite.db.AssertExpectations(suite.T())
}

func (suite *TableBootstrapperTestSuite) TestTTLAlreadyEnabledIsTolerated() {
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").
		Return(nil, &types.ResourceNotFoundException{Message: aws.String("not found")}).Once()
	suite.db.On("CreateTable", mock.Anything, mock.Anything).Return(&types.ResourceInUseException{Message: aws.String("in use")})
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").Return(activeTable("dev_client_storage"), nil)
	suite.db.On("UpdateTimeToLive", mock.Anything, "dev_client_storage", "expires_at").
		Return(&smithy.GenericAPIError{Code: "ValidationException", Message: "TimeToLive is already enabled"})

	assert.NoError(suite.T(), suite.bootstrapper.EnsureTables(context.Background()))
}

func (suite *TableBootstrapperTestSuite) TestDescribeFailureIsReturned() {
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").Return(nil, errors.New("connection refused"))

	err := suite.bootstrapper.EnsureTables(context.Background())
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "dev_client_storage")
}

func (suite *TableBootstrapperTestSuite) TestTableNeverActiveTimesOut() {
	suite.bootstrapper.activeTimeout = 20 * time.Millisecond
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").
		Return(nil, &types.ResourceNotFoundException{Message: aws.String("not found")}).Once()
	suite.db.On("CreateTable", mock.Anything, mock.Anything).Return(nil)
	suite.db.On("DescribeTable", mock.Anything, "dev_client_storage").Return(&dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{TableStatus: types.TableStatusCreating},
	}, nil)

	err := suite.bootstrapper.EnsureTables(context.Background())
	require.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "did not become active")
}

func TestGetTableSchema(t *testing.T) {
	schema, err := GetTableSchema(models.StorageTable)
	require.NoError(t, err)
	assert.Equal(t, "expires_at", schema.TimeToLiveAttribute)
	assert.Len(t, schema.AttributeDefinitions, 2)

	_, err = GetTableSchema("users")
	assert.Error(t, err)

	provisioned := &TableSchema{ProvisionedThroughput: &Throughput{ReadCapacityUnits: 5, WriteCapacityUnits: 5}}
	input := provisioned.ToDynamoInput("dev_other")
	assert.Equal(t, types.BillingModeProvisioned, input.BillingMode)
	assert.Equal(t, int64(5), aws.ToInt64(input.ProvisionedThroughput.ReadCapacityUnits))
}
