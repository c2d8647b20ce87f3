package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/repository"
	"planner-bff/utils/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// AuthServiceTestSuite defines a test suite for AuthService and its cascade
type AuthServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	mockRepo    *MockAuthRepository
	mockPosRepo *MockPositionRepository
	storageRepo *repository.MemoryStorageRepository
	storage     *repository.SessionStorage
	jar         *fakeJar
	positions   *PositionService
	filters     *FilterService
	service     *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.mockRepo = &MockAuthRepository{}
	suite.mockPosRepo = &MockPositionRepository{}
	suite.storageRepo = repository.NewMemoryStorageRepository(10, time.Hour, logger.Nop())
	suite.storage = repository.NewSessionStorage(suite.storageRepo, "session-1")
	suite.jar = &fakeJar{}
	log := newMockLogger()
	suite.positions = NewPositionService(suite.mockPosRepo, suite.storage, log)
	suite.filters = NewFilterService()
	suite.service = NewAuthService(suite.mockRepo, suite.jar, suite.storage, suite.positions, suite.filters, log)
}

func (suite *AuthServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) loginAndSelect() {
	profile := &models.UserProfile{ID: 7, Email: "teacher@institute.edu"}
	suite.mockRepo.On("Login", mock.Anything, mock.Anything).Return(profile, nil).Once().
		Run(func(mock.Arguments) {
			suite.jar.RestoreCookies([]*http.Cookie{{Name: "JSESSIONID", Value: "abc"}})
		})
	suite.mockPosRepo.On("GetMyPositions", mock.Anything).Return(teacherSnapshot(), nil).Once()

	_, err := suite.service.Login(suite.ctx, models.Credentials{Email: "teacher@institute.edu", Password: "pw"})
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.positions.FetchPositions(suite.ctx))
	require.NoError(suite.T(), suite.positions.SelectInstitute(suite.ctx, instituteA, true))
	require.NoError(suite.T(), suite.positions.SelectCampus(suite.ctx, campusC1))
	require.NoError(suite.T(), suite.filters.SetPeriod("2024-1"))
}

func (suite *AuthServiceTestSuite) assertCleared() {
	assert.False(suite.T(), suite.service.IsAuthenticated())
	assert.Nil(suite.T(), suite.service.CurrentUser())
	assert.Nil(suite.T(), suite.positions.SelectedContext())
	assert.Nil(suite.T(), suite.positions.Snapshot())
	assert.False(suite.T(), suite.filters.HasActiveFilters())
	assert.Empty(suite.T(), suite.jar.Cookies())

	for _, scope := range []models.StorageScope{models.ScopeSession, models.ScopeLocal} {
		for _, key := range []string{models.StorageKeySelectedContext, models.StorageKeyBackendCookies} {
			_, ok, err := suite.storageRepo.Get(suite.ctx, "session-1", scope, key)
			assert.NoError(suite.T(), err)
			assert.False(suite.T(), ok, "%s/%s should be wiped", scope, key)
		}
	}
}

func (suite *AuthServiceTestSuite) TestLoginStoresProfileAndCookies() {
	suite.loginAndSelect()

	assert.True(suite.T(), suite.service.IsAuthenticated())
	assert.Equal(suite.T(), int64(7), suite.service.CurrentUser().ID)

	var stored []models.BackendCookie
	ok, err := suite.storage.GetJSON(suite.ctx, models.ScopeLocal, models.StorageKeyBackendCookies, &stored)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), []models.BackendCookie{{Name: "JSESSIONID", Value: "abc"}}, stored)
}

func (suite *AuthServiceTestSuite) TestLoginWipesStorageFirst() {
	require.NoError(suite.T(), suite.storage.SetJSON(suite.ctx, models.ScopeSession, "stale", "value"))
	suite.mockRepo.On("Login", mock.Anything, mock.Anything).Return(&models.UserProfile{ID: 1}, nil).Once()

	_, err := suite.service.Login(suite.ctx, models.Credentials{Email: "a@b.c", Password: "pw"})
	require.NoError(suite.T(), err)

	_, ok, _ := suite.storageRepo.Get(suite.ctx, "session-1", models.ScopeSession, "stale")
	assert.False(suite.T(), ok)
}

func (suite *AuthServiceTestSuite) TestLoginDropsPreviousUserState() {
	suite.loginAndSelect()
	require.NotNil(suite.T(), suite.positions.SelectedContext())

	suite.mockRepo.On("Login", mock.Anything, mock.Anything).Return(&models.UserProfile{ID: 8, Email: "other@institute.edu"}, nil).Once()
	_, err := suite.service.Login(suite.ctx, models.Credentials{Email: "other@institute.edu", Password: "pw"})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), int64(8), suite.service.CurrentUser().ID)
	assert.Nil(suite.T(), suite.positions.Snapshot())
	assert.Nil(suite.T(), suite.positions.SelectedContext())
	assert.False(suite.T(), suite.positions.HasPositions())
	assert.False(suite.T(), suite.filters.HasActiveFilters())
	assert.Empty(suite.T(), suite.jar.Cookies())
}

func (suite *AuthServiceTestSuite) TestVerifyAuthStatusClearsOnlyOnRejection() {
	suite.loginAndSelect()
	suite.mockRepo.On("Status", mock.Anything).
		Return(nil, &dal.BackendError{StatusCode: http.StatusServiceUnavailable, Path: dal.PathAuthStatus}).Once()

	valid, err := suite.service.VerifyAuthStatus(suite.ctx)
	assert.Error(suite.T(), err)
	assert.False(suite.T(), valid)
	assert.True(suite.T(), suite.service.IsAuthenticated())
	assert.NotNil(suite.T(), suite.positions.SelectedContext())

	suite.mockRepo.On("Status", mock.Anything).
		Return(nil, &dal.BackendError{StatusCode: http.StatusUnauthorized, Path: dal.PathAuthStatus}).Once()

	valid, err = suite.service.VerifyAuthStatus(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), valid)
	suite.assertCleared()
}

func (suite *AuthServiceTestSuite) TestVerifyAuthStatusSuccess() {
	suite.mockRepo.On("Status", mock.Anything).Return(&models.UserProfile{ID: 9}, nil).Once()

	valid, err := suite.service.VerifyAuthStatus(suite.ctx)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), valid)
	assert.Equal(suite.T(), int64(9), suite.service.CurrentUser().ID)
}

func (suite *AuthServiceTestSuite) TestLoginInvalidCredentials() {
	suite.mockRepo.On("Login", mock.Anything, mock.Anything).
		Return(nil, &dal.BackendError{StatusCode: http.StatusUnauthorized, Path: dal.PathLogin}).Once()

	_, err := suite.service.Login(suite.ctx, models.Credentials{Email: "a@b.c", Password: "bad"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
	assert.False(suite.T(), suite.service.IsAuthenticated())
}

func (suite *AuthServiceTestSuite) TestLoginBackendFailure() {
	suite.mockRepo.On("Login", mock.Anything, mock.Anything).
		Return(nil, &dal.BackendError{StatusCode: http.StatusBadGateway, Path: dal.PathLogin}).Once()

	_, err := suite.service.Login(suite.ctx, models.Credentials{Email: "a@b.c", Password: "pw"})
	assert.Error(suite.T(), err)
	assert.NotErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *AuthServiceTestSuite) TestLogoutClearsEverything() {
	suite.loginAndSelect()
	suite.mockRepo.On("Logout", mock.Anything).Return(nil).Once()

	route := suite.service.Logout(suite.ctx)

	assert.Equal(suite.T(), LandingRoute, route)
	suite.assertCleared()
}

func (suite *AuthServiceTestSuite) TestLogoutClearsEvenWhenBackendFails() {
	suite.loginAndSelect()
	suite.mockRepo.On("Logout", mock.Anything).Return(errors.New("network down")).Once()

	route := suite.service.Logout(suite.ctx)

	assert.Equal(suite.T(), LandingRoute, route)
	suite.assertCleared()
}

func (suite *AuthServiceTestSuite) TestCheckAuthStatusSuccess() {
	suite.mockRepo.On("Status", mock.Anything).Return(&models.UserProfile{ID: 9}, nil).Once()

	assert.True(suite.T(), suite.service.CheckAuthStatus(suite.ctx))
	assert.Equal(suite.T(), int64(9), suite.service.CurrentUser().ID)
}

func (suite *AuthServiceTestSuite) TestCheckAuthStatusFailureClears() {
	suite.loginAndSelect()
	suite.mockRepo.On("Status", mock.Anything).
		Return(nil, &dal.BackendError{StatusCode: http.StatusUnauthorized}).Once()

	assert.False(suite.T(), suite.service.CheckAuthStatus(suite.ctx))
	suite.assertCleared()
}

func (suite *AuthServiceTestSuite) TestRestoreBackendCookies() {
	require.NoError(suite.T(), suite.storage.SetJSON(suite.ctx, models.ScopeLocal, models.StorageKeyBackendCookies,
		[]models.BackendCookie{{Name: "JSESSIONID", Value: "xyz"}}))

	ok, err := suite.service.RestoreBackendCookies(suite.ctx)
	require.NoError(suite.T(), err)
	assert.True(suite.T(), ok)
	require.Len(suite.T(), suite.jar.Cookies(), 1)
	assert.Equal(suite.T(), "xyz", suite.jar.Cookies()[0].Value)
}

func (suite *AuthServiceTestSuite) TestRestoreBackendCookiesNothingStored() {
	ok, err := suite.service.RestoreBackendCookies(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), ok)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
