package services

import (
	"context"
	"net/http"
	"sync"

	"planner-bff/models"
	"planner-bff/utils/logger"

	"github.com/stretchr/testify/mock"
)

// MockLogger implements logger.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Debugf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Info(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Infof(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Warnf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Error(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Errorf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) Fatal(args ...interface{}) {
	m.Called(args...)
}

func (m *MockLogger) Fatalf(format string, args ...interface{}) {
	m.Called(format, args)
}

func (m *MockLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return m
}

func newMockLogger() *MockLogger {
	l := &MockLogger{}
	l.On("Debug", mock.Anything).Return().Maybe()
	l.On("Debugf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	l.On("Info", mock.Anything).Return().Maybe()
	l.On("Infof", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	l.On("Warn", mock.Anything).Return().Maybe()
	l.On("Warnf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	l.On("Error", mock.Anything).Return().Maybe()
	l.On("Errorf", mock.AnythingOfType("string"), mock.Anything).Return().Maybe()
	return l
}

// MockPositionRepository implements repository.PositionRepositoryInterface for testing
type MockPositionRepository struct {
	mock.Mock
}

func (m *MockPositionRepository) GetMyPositions(ctx context.Context) (*models.UserPositionsSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserPositionsSnapshot), args.Error(1)
}

// MockAuthRepository implements repository.AuthRepositoryInterface for testing
type MockAuthRepository struct {
	mock.Mock
}

func (m *MockAuthRepository) Login(ctx context.Context, creds models.Credentials) (*models.UserProfile, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockAuthRepository) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAuthRepository) Status(ctx context.Context) (*models.UserProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

// MockCourseRepository implements repository.CourseRepositoryInterface for testing
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) ListCourses(ctx context.Context, query models.CourseQuery) (*models.CoursePage, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CoursePage), args.Error(1)
}

func (m *MockCourseRepository) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepository) resource(args mock.Arguments) (models.CourseResource, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.CourseResource), args.Error(1)
}

func (m *MockCourseRepository) GetWeeklyPlannings(ctx context.Context, courseID int64) (models.CourseResource, error) {
	return m.resource(m.Called(ctx, courseID))
}

func (m *MockCourseRepository) GetModifications(ctx context.Context, courseID int64) (models.CourseResource, error) {
	return m.resource(m.Called(ctx, courseID))
}

func (m *MockCourseRepository) GetStatistics(ctx context.Context, courseID int64) (models.CourseResource, error) {
	return m.resource(m.Called(ctx, courseID))
}

func (m *MockCourseRepository) GetQualityReport(ctx context.Context, courseID int64) (models.CourseResource, error) {
	return m.resource(m.Called(ctx, courseID))
}

func (m *MockCourseRepository) Chat(ctx context.Context, req models.ChatRequest) (models.CourseResource, error) {
	return m.resource(m.Called(ctx, req))
}

func (m *MockCourseRepository) GetEnumerations(ctx context.Context) (models.CourseResource, error) {
	return m.resource(m.Called(ctx))
}

// fakeJar is an in-memory CookieJar
type fakeJar struct {
	mu      sync.Mutex
	cookies []*http.Cookie
	resets  int
}

func (j *fakeJar) Cookies() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]*http.Cookie(nil), j.cookies...)
}

func (j *fakeJar) RestoreCookies(cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = append(j.cookies, cookies...)
}

func (j *fakeJar) ResetCookies() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.cookies = nil
	j.resets++
}

// Fixtures

var (
	instituteA = models.Institute{ID: 1, Name: "Institute A"}
	instituteB = models.Institute{ID: 2, Name: "Institute B"}
	campusC1   = models.Campus{ID: 10, Name: "Campus 1", InstituteID: 1}
	campusC2   = models.Campus{ID: 11, Name: "Campus 2", InstituteID: 1}
	campusC3   = models.Campus{ID: 20, Name: "Campus 3", InstituteID: 2}
)

func teacherSnapshot() *models.UserPositionsSnapshot {
	return &models.UserPositionsSnapshot{
		UserID:   7,
		Email:    "teacher@institute.edu",
		FullName: "Ada Teacher",
		Positions: []models.Position{
			{ID: 100, Role: models.RoleTeacher, Institute: instituteA, Campuses: []models.Campus{campusC1}, IsActive: true},
		},
	}
}

func mixedSnapshot() *models.UserPositionsSnapshot {
	return &models.UserPositionsSnapshot{
		UserID: 7,
		Positions: []models.Position{
			{ID: 100, Role: models.RoleTeacher, Institute: instituteA, Campuses: []models.Campus{campusC1, campusC2}, IsActive: true},
			{ID: 101, Role: models.RoleCoordinator, Institute: instituteA, Campuses: []models.Campus{campusC1}, IsActive: true},
			{ID: 102, Role: models.RoleAnalyst, Institute: instituteA, Campuses: []models.Campus{campusC1}, IsActive: false},
			{ID: 103, Role: models.RoleTeacher, Institute: instituteB, Campuses: []models.Campus{campusC3}, IsActive: true},
			{ID: 104, Role: models.RoleTeacher, Institute: instituteA, Campuses: []models.Campus{campusC1}, IsActive: true},
		},
	}
}
