package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/utils/logger"

	"github.com/aws/smithy-go"
)

const (
	attrSessionID  = "session_id"
	attrStorageKey = "storage_key"
)

// DynamoStorageRepository persists client storage in the {prefix}_client_storage table
type DynamoStorageRepository struct {
	db     dal.DatabaseClientInterface
	table  string
	ttl    time.Duration
	logger logger.Logger
	now    func() time.Time
}

func NewDynamoStorageRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *DynamoStorageRepository {
	return &DynamoStorageRepository{
		db:     db,
		table:  cfg.StorageTableName(),
		ttl:    cfg.SessionTTL,
		logger: log,
		now:    time.Now,
	}
}

func (r *DynamoStorageRepository) Get(ctx context.Context, sessionID string, scope models.StorageScope, key string) (string, bool, error) {
	var item models.StorageItem
	found, err := r.db.GetItem(ctx, r.table, itemKey(sessionID, scope, key), &item)
	if err != nil {
		return "", false, r.wrap("get", err)
	}
	if !found {
		return "", false, nil
	}

	// TTL deletion is lazy, so expired rows can still be read
	if item.ExpiresAt > 0 && item.ExpiresAt <= r.now().Unix() {
		return "", false, nil
	}
	return item.Value, true, nil
}

func (r *DynamoStorageRepository) Set(ctx context.Context, sessionID string, scope models.StorageScope, key, value string) error {
	now := r.now()
	item := models.StorageItem{
		SessionID:  sessionID,
		StorageKey: storageKey(scope, key),
		Value:      value,
		UpdatedAt:  now.Unix(),
	}
	if r.ttl > 0 {
		item.ExpiresAt = now.Add(r.ttl).Unix()
	}

	if err := r.db.PutItem(ctx, r.table, item); err != nil {
		return r.wrap("set", err)
	}
	return nil
}

func (r *DynamoStorageRepository) Remove(ctx context.Context, sessionID string, scope models.StorageScope, key string) error {
	if err := r.db.DeleteItem(ctx, r.table, itemKey(sessionID, scope, key)); err != nil {
		return r.wrap("remove", err)
	}
	return nil
}

// Clear deletes every entry of the session, in both scopes
func (r *DynamoStorageRepository) Clear(ctx context.Context, sessionID string) error {
	var items []models.StorageItem
	if err := r.db.QueryByPartition(ctx, r.table, attrSessionID, sessionID, &items); err != nil {
		return r.wrap("clear", err)
	}
	if len(items) == 0 {
		return nil
	}

	keys := make([]map[string]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, map[string]string{
			attrSessionID:  item.SessionID,
			attrStorageKey: item.StorageKey,
		})
	}

	if err := r.db.BatchDelete(ctx, r.table, keys); err != nil {
		return r.wrap("clear", err)
	}
	r.logger.Debugf("Cleared %d client storage entries for session %s", len(keys), sessionID)
	return nil
}

func (r *DynamoStorageRepository) wrap(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		r.logger.Errorf("Client storage %s failed: %s: %s", op, apiErr.ErrorCode(), apiErr.ErrorMessage())
		return fmt.Errorf("client storage %s failed (%s): %w", op, apiErr.ErrorCode(), err)
	}
	r.logger.Errorf("Client storage %s failed: %v", op, err)
	return fmt.Errorf("client storage %s failed: %w", op, err)
}

func itemKey(sessionID string, scope models.StorageScope, key string) map[string]string {
	return map[string]string{
		attrSessionID:  sessionID,
		attrStorageKey: storageKey(scope, key),
	}
}
