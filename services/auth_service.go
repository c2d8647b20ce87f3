package services

import (
	"context"
	"net/http"
	"sync"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/repository"
	"planner-bff/utils/logger"
)

// LandingRoute is the public page users land on after logout
const LandingRoute = "/"

// CookieJar holds the backend session cookies of one BFF session
type CookieJar interface {
	Cookies() []*http.Cookie
	RestoreCookies(cookies []*http.Cookie)
	ResetCookies()
}

// AuthService tracks authentication of one session. Clearing it cascades to the
// position state, the filters and both client storage scopes.
type AuthService struct {
	repo      repository.AuthRepositoryInterface
	jar       CookieJar
	storage   ClientStorage
	positions PositionServiceInterface
	filters   FilterServiceInterface
	logger    logger.Logger

	mu      sync.RWMutex
	session models.AuthSession
}

func NewAuthService(
	repo repository.AuthRepositoryInterface,
	jar CookieJar,
	storage ClientStorage,
	positions PositionServiceInterface,
	filters FilterServiceInterface,
	logger logger.Logger,
) *AuthService {
	return &AuthService{
		repo:      repo,
		jar:       jar,
		storage:   storage,
		positions: positions,
		filters:   filters,
		logger:    logger,
	}
}

// Login clears any previous state and client storage, authenticates against the backend
// and keeps its session cookies
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.UserProfile, error) {
	s.ClearSession(ctx)

	profile, err := s.repo.Login(ctx, creds)
	if err != nil {
		if dal.IsUnauthorized(err) || dal.StatusOf(err) == http.StatusBadRequest {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	s.mu.Lock()
	s.session = models.AuthSession{IsAuthenticated: true, CurrentUser: profile}
	s.mu.Unlock()

	if err := s.storage.SetJSON(ctx, models.ScopeLocal, models.StorageKeyBackendCookies, toBackendCookies(s.jar.Cookies())); err != nil {
		s.logger.Warnf("Failed to persist backend cookies: %v", err)
	}

	s.logger.Infof("User %d logged in", profile.ID)
	return profile, nil
}

// Logout notifies the backend and clears the session whatever the outcome
func (s *AuthService) Logout(ctx context.Context) string {
	if err := s.repo.Logout(ctx); err != nil {
		s.logger.Warnf("Backend logout failed, clearing session anyway: %v", err)
	}
	s.ClearSession(ctx)
	return LandingRoute
}

// CheckAuthStatus asks the backend whether the session is valid. Any failure clears it.
func (s *AuthService) CheckAuthStatus(ctx context.Context) bool {
	profile, err := s.repo.Status(ctx)
	if err != nil {
		s.logger.Debugf("Auth status check failed: %v", err)
		s.ClearSession(ctx)
		return false
	}

	s.mu.Lock()
	s.session = models.AuthSession{IsAuthenticated: true, CurrentUser: profile}
	s.mu.Unlock()
	return true
}

// VerifyAuthStatus revalidates the session like CheckAuthStatus, but only a backend rejection
// clears it. Other failures are returned and leave the session untouched.
func (s *AuthService) VerifyAuthStatus(ctx context.Context) (bool, error) {
	profile, err := s.repo.Status(ctx)
	if err != nil {
		if dal.IsUnauthorized(err) {
			s.ClearSession(ctx)
			return false, nil
		}
		return false, err
	}

	s.mu.Lock()
	s.session = models.AuthSession{IsAuthenticated: true, CurrentUser: profile}
	s.mu.Unlock()
	return true, nil
}

// ClearSession drops auth state, position state, filters, backend cookies and client storage
func (s *AuthService) ClearSession(ctx context.Context) {
	s.mu.Lock()
	s.session = models.AuthSession{}
	s.mu.Unlock()

	s.positions.ClearAllState(ctx)
	s.filters.Reset()
	s.jar.ResetCookies()

	if err := s.storage.Clear(ctx); err != nil {
		s.logger.Errorf("Failed to wipe client storage: %v", err)
	}
}

// RestoreBackendCookies reloads backend cookies saved by a previous login
func (s *AuthService) RestoreBackendCookies(ctx context.Context) (bool, error) {
	var stored []models.BackendCookie
	ok, err := s.storage.GetJSON(ctx, models.ScopeLocal, models.StorageKeyBackendCookies, &stored)
	if err != nil || !ok || len(stored) == 0 {
		return false, err
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	s.jar.RestoreCookies(cookies)
	return true, nil
}

func (s *AuthService) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsAuthenticated
}

func (s *AuthService) CurrentUser() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.CurrentUser == nil {
		return nil
	}
	user := *s.session.CurrentUser
	return &user
}

func (s *AuthService) Session() models.AuthSession {
	return models.AuthSession{
		IsAuthenticated: s.IsAuthenticated(),
		CurrentUser:     s.CurrentUser(),
	}
}

func toBackendCookies(cookies []*http.Cookie) []models.BackendCookie {
	out := make([]models.BackendCookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, models.BackendCookie{Name: c.Name, Value: c.Value})
	}
	return out
}
