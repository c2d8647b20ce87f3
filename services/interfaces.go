package services

import (
	"context"

	"planner-bff/models"
)

// PositionServiceInterface defines the contract for the position and context store
type PositionServiceInterface interface {
	FetchPositions(ctx context.Context) error
	SelectInstitute(ctx context.Context, institute models.Institute, persist bool) error
	SelectCampus(ctx context.Context, campus models.Campus) error
	BuildContextFromURLParams(instituteID, campusID int64) (*models.SelectedContext, bool)
	ValidateContext(instituteID, campusID int64) bool
	CommitContext(ctx context.Context, selected *models.SelectedContext) error
	ClearSelection(ctx context.Context)
	ClearCampusSelection(ctx context.Context)
	ClearRolesSelection(ctx context.Context)
	ClearAllState(ctx context.Context)
	Restore(ctx context.Context) error
	WaitForContext(ctx context.Context) (*models.SelectedContext, error)

	Snapshot() *models.UserPositionsSnapshot
	SelectedContext() *models.SelectedContext
	AvailableInstitutes() []models.Institute
	AvailableCampuses() []models.Campus
	AvailableRoles() []models.PositionRole
	HasPositions() bool
}

// AuthServiceInterface defines the contract for the authentication lifecycle
type AuthServiceInterface interface {
	Login(ctx context.Context, creds models.Credentials) (*models.UserProfile, error)
	Logout(ctx context.Context) string
	CheckAuthStatus(ctx context.Context) bool
	VerifyAuthStatus(ctx context.Context) (bool, error)
	ClearSession(ctx context.Context)
	RestoreBackendCookies(ctx context.Context) (bool, error)
	IsAuthenticated() bool
	CurrentUser() *models.UserProfile
	Session() models.AuthSession
}

// FilterServiceInterface defines the contract for catalog filter state
type FilterServiceInterface interface {
	SetUserID(userID *int64) error
	SetCampusID(campusID *int64) error
	SetPeriod(period string) error
	SetSearchText(text string) error
	SetField(field models.FilterField, value *string) error
	HasActiveFilters() bool
	HasActiveNonPermanentFilters() bool
	ClearFilters()
	ApplyPermanent(permanent models.PermanentFilters)
	CheckQuery(requested models.CourseFilters) error
	Reset()
	Snapshot() models.CourseFilters
	Permanent() models.PermanentFilters
}

// CatalogServiceInterface defines the contract for course reads
type CatalogServiceInterface interface {
	ListCourses(ctx context.Context, page, size int) (*models.CoursePage, error)
	ListCoursesWith(ctx context.Context, filters models.CourseFilters, page, size int) (*models.CoursePage, error)
	GetCourse(ctx context.Context, courseID int64) (*models.Course, error)
	Planner(ctx context.Context, courseID int64) (*models.CourseView, error)
	Details(ctx context.Context, courseID int64) (*models.CourseView, error)
	Statistics(ctx context.Context, courseID int64) (*models.CourseView, error)
	Report(ctx context.Context, courseID int64) (*models.CourseView, error)
	Chat(ctx context.Context, req models.ChatRequest) (models.CourseResource, error)
	Enumerations(ctx context.Context) (models.CourseResource, error)
}

// SessionManagerInterface defines the contract for the BFF session registry
type SessionManagerInterface interface {
	Create() (*Session, error)
	Resume(ctx context.Context, sessionID string) (*Session, bool)
	Remove(sessionID string)
	Sessions() []*Session
	Len() int
}
