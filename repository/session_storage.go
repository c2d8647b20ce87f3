package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"planner-bff/models"
)

// SessionStorage is the client storage of a single session
type SessionStorage struct {
	repo      StorageRepositoryInterface
	sessionID string
}

func NewSessionStorage(repo StorageRepositoryInterface, sessionID string) *SessionStorage {
	return &SessionStorage{repo: repo, sessionID: sessionID}
}

// GetJSON decodes the stored value into out. Reports false when the key is absent.
func (s *SessionStorage) GetJSON(ctx context.Context, scope models.StorageScope, key string, out interface{}) (bool, error) {
	raw, ok, err := s.repo.Get(ctx, s.sessionID, scope, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("corrupt client storage value for %s: %w", key, err)
	}
	return true, nil
}

func (s *SessionStorage) SetJSON(ctx context.Context, scope models.StorageScope, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode client storage value for %s: %w", key, err)
	}
	return s.repo.Set(ctx, s.sessionID, scope, key, string(raw))
}

func (s *SessionStorage) Remove(ctx context.Context, scope models.StorageScope, key string) error {
	return s.repo.Remove(ctx, s.sessionID, scope, key)
}

// Clear wipes both the session and the local scope
func (s *SessionStorage) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx, s.sessionID)
}
