package repository

import (
	"context"

	"planner-bff/models"
)

// AuthRepositoryInterface defines the contract for backend authentication calls
type AuthRepositoryInterface interface {
	Login(ctx context.Context, creds models.Credentials) (*models.UserProfile, error)
	Logout(ctx context.Context) error
	Status(ctx context.Context) (*models.UserProfile, error)
}

// PositionRepositoryInterface defines the contract for position lookups
type PositionRepositoryInterface interface {
	GetMyPositions(ctx context.Context) (*models.UserPositionsSnapshot, error)
}

// CourseRepositoryInterface defines the contract for course reads and assistant calls
type CourseRepositoryInterface interface {
	ListCourses(ctx context.Context, query models.CourseQuery) (*models.CoursePage, error)
	GetCourse(ctx context.Context, courseID int64) (*models.Course, error)
	GetWeeklyPlannings(ctx context.Context, courseID int64) (models.CourseResource, error)
	GetModifications(ctx context.Context, courseID int64) (models.CourseResource, error)
	GetStatistics(ctx context.Context, courseID int64) (models.CourseResource, error)
	GetQualityReport(ctx context.Context, courseID int64) (models.CourseResource, error)
	Chat(ctx context.Context, req models.ChatRequest) (models.CourseResource, error)
	GetEnumerations(ctx context.Context) (models.CourseResource, error)
}

// StorageRepositoryInterface defines the contract for per-session client storage
type StorageRepositoryInterface interface {
	Get(ctx context.Context, sessionID string, scope models.StorageScope, key string) (string, bool, error)
	Set(ctx context.Context, sessionID string, scope models.StorageScope, key, value string) error
	Remove(ctx context.Context, sessionID string, scope models.StorageScope, key string) error
	// Clear wipes every scope of the session
	Clear(ctx context.Context, sessionID string) error
}

// RepositoryContainerInterface defines the contract for the per-session repository container
type RepositoryContainerInterface interface {
	GetAuthRepository() AuthRepositoryInterface
	GetPositionRepository() PositionRepositoryInterface
	GetCourseRepository() CourseRepositoryInterface
}
