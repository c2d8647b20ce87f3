package dal

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DatabaseClientInterface defines the contract for database operations
type DatabaseClientInterface interface {
	// Item operations
	GetItem(ctx context.Context, tableName string, key map[string]string, result interface{}) (bool, error)
	PutItem(ctx context.Context, tableName string, item interface{}) error
	DeleteItem(ctx context.Context, tableName string, key map[string]string) error

	// Partition operations
	QueryByPartition(ctx context.Context, tableName, keyName, keyValue string, results interface{}) error
	BatchDelete(ctx context.Context, tableName string, keys []map[string]string) error

	// Table management operations
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error)
	UpdateTimeToLive(ctx context.Context, tableName, attribute string) error
}

// BackendClientInterface defines the contract for calls to the institutional backend
type BackendClientInterface interface {
	Get(ctx context.Context, path string, query url.Values, out interface{}) error
	Post(ctx context.Context, path string, body, out interface{}) error
	Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error

	Cookies() []*http.Cookie
	RestoreCookies(cookies []*http.Cookie)
	ResetCookies()
}
