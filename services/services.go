package services

import (
	"context"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/repository"
	"planner-bff/utils/logger"
)

// Session owns the services of one BFF session. It is torn down on logout or expiry.
type Session struct {
	ID string

	Auth      AuthServiceInterface
	Positions PositionServiceInterface
	Filters   FilterServiceInterface
	Catalog   CatalogServiceInterface
}

// BackendFactory builds the backend client of a session; onUnauthorized runs on an intercepted 401
type BackendFactory func(onUnauthorized func(ctx context.Context)) (dal.BackendClientInterface, error)

// NewSession creates a session with all dependencies injected
func NewSession(
	sessionID string,
	newBackend BackendFactory,
	storageRepo repository.StorageRepositoryInterface,
	logger logger.Logger,
) (*Session, error) {
	session := &Session{ID: sessionID}
	log := logger.WithFields(map[string]interface{}{"session": shortID(sessionID)})

	client, err := newBackend(func(ctx context.Context) {
		log.Warn("Backend rejected session credentials, clearing session")
		session.Auth.ClearSession(ctx)
	})
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepository(client, log)
	storage := repository.NewSessionStorage(storageRepo, sessionID)

	filters := NewFilterService()
	positions := NewPositionService(repos.GetPositionRepository(), storage, log)

	session.Filters = filters
	session.Positions = positions
	session.Auth = NewAuthService(repos.GetAuthRepository(), client, storage, positions, filters, log)
	session.Catalog = NewCatalogService(repos.GetCourseRepository(), filters, log)
	return session, nil
}

// CurrentContext returns the selected context and user, for handlers
func (s *Session) CurrentContext() (*models.SelectedContext, *models.UserProfile) {
	return s.Positions.SelectedContext(), s.Auth.CurrentUser()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
