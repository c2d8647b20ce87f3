package models

// CourseAccessMode selects how the course access guard validates a course
type CourseAccessMode string

const (
	CourseAccessNone      CourseAccessMode = ""
	CourseAccessOwnership CourseAccessMode = "ownership"
	CourseAccessDelegated CourseAccessMode = "delegated"
)

// RouteMeta declares the requirements of a navigation route
type RouteMeta struct {
	Name            string
	Path            string
	Public          bool
	RequiresContext bool
	RequiredRoles   []PositionRole
	CourseAccess    CourseAccessMode
	// AllowMissingCourseInMode tolerates a token without courseId in this mode
	AllowMissingCourseInMode string
}

// StorageScope separates per-tab from per-browser client storage
type StorageScope string

const (
	ScopeSession StorageScope = "session"
	ScopeLocal   StorageScope = "local"
)

// Client storage keys
const (
	StorageKeySelectedContext = "planner.selectedContext"
	StorageKeyBackendCookies  = "planner.backendCookies"
)

// StorageItem is one client storage entry as persisted in DynamoDB
type StorageItem struct {
	SessionID  string `json:"session_id" dynamodbav:"session_id"`
	StorageKey string `json:"storage_key" dynamodbav:"storage_key"`
	Value      string `json:"value" dynamodbav:"value"`
	UpdatedAt  int64  `json:"updated_at" dynamodbav:"updated_at"`
	ExpiresAt  int64  `json:"expires_at" dynamodbav:"expires_at"`
}
