package dal

import (
	"context"
	"errors"
	"testing"
	"time"

	"planner-bff/utils/logger"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDynamoAPI mocks the batch write call; other methods are not used by these tests
type MockDynamoAPI struct {
	dynamoAPI
	mock.Mock
}

func (m *MockDynamoAPI) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.BatchWriteItemOutput), args.Error(1)
}

func unprocessed(table string) *dynamodb.BatchWriteItemOutput {
	return &dynamodb.BatchWriteItemOutput{
		UnprocessedItems: map[string][]types.WriteRequest{
			table: {{DeleteRequest: &types.DeleteRequest{Key: stringKey(map[string]string{"session_id": "s1"})}}},
		},
	}
}

func newTestDynamoClient(api dynamoAPI) *DynamoDBClient {
	return &DynamoDBClient{client: api, logger: logger.Nop(), batchBackoff: time.Millisecond}
}

func TestBatchDeleteRetriesUnprocessedItems(t *testing.T) {
	api := &MockDynamoAPI{}
	api.On("BatchWriteItem", mock.Anything, mock.Anything).Return(unprocessed("client_storage"), nil).Once()
	api.On("BatchWriteItem", mock.Anything, mock.Anything).Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()

	err := newTestDynamoClient(api).BatchDelete(context.Background(), "client_storage", []map[string]string{
		{"session_id": "s1", "storage_key": "session#a"},
	})

	require.NoError(t, err)
	api.AssertNumberOfCalls(t, "BatchWriteItem", 2)
}

func TestBatchDeleteGivesUpAfterMaxRetries(t *testing.T) {
	api := &MockDynamoAPI{}
	api.On("BatchWriteItem", mock.Anything, mock.Anything).Return(unprocessed("client_storage"), nil)

	err := newTestDynamoClient(api).BatchDelete(context.Background(), "client_storage", []map[string]string{
		{"session_id": "s1", "storage_key": "session#a"},
	})

	assert.ErrorIs(t, err, ErrUnprocessedItems)
	api.AssertNumberOfCalls(t, "BatchWriteItem", maxBatchRetries+1)
}

func TestBatchDeleteStopsWhenContextEnds(t *testing.T) {
	api := &MockDynamoAPI{}
	api.On("BatchWriteItem", mock.Anything, mock.Anything).Return(unprocessed("client_storage"), nil)

	client := newTestDynamoClient(api)
	client.batchBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.BatchDelete(ctx, "client_storage", []map[string]string{{"session_id": "s1", "storage_key": "session#a"}})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	api.AssertNumberOfCalls(t, "BatchWriteItem", 1)
}

func TestBatchDeleteReturnsWriteError(t *testing.T) {
	api := &MockDynamoAPI{}
	boom := errors.New("throttled")
	api.On("BatchWriteItem", mock.Anything, mock.Anything).Return(nil, boom).Once()

	err := newTestDynamoClient(api).BatchDelete(context.Background(), "client_storage", []map[string]string{{"session_id": "s1", "storage_key": "session#a"}})

	assert.ErrorIs(t, err, boom)
}
