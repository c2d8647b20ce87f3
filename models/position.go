package models

// PositionRole is the role string attached to a position
type PositionRole string

const (
	RoleTeacher          PositionRole = "TEACHER"
	RoleCoordinator      PositionRole = "COORDINATOR"
	RoleAnalyst          PositionRole = "ANALYST"
	RoleEducationManager PositionRole = "EDUCATION_MANAGER"
	RoleStudent          PositionRole = "STUDENT"
)

// StaffRoles are the roles allowed into the planning area
var StaffRoles = []PositionRole{RoleTeacher, RoleCoordinator, RoleAnalyst, RoleEducationManager}

// CampusPendingID marks a context where the institute is chosen but the campus is not
const CampusPendingID int64 = -1

// Institute is a teaching institute
type Institute struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Campus is a campus that belongs to an institute
type Campus struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	InstituteID int64  `json:"instituteId"`
}

// Position is a user's appointment at an institute, valid on a set of campuses
type Position struct {
	ID        int64        `json:"id"`
	Type      string       `json:"type"`
	Role      PositionRole `json:"role"`
	Institute Institute    `json:"institute"`
	Campuses  []Campus     `json:"campuses"`
	IsActive  bool         `json:"isActive"`
}

// HasCampus reports whether the position lists the campus
func (p Position) HasCampus(campusID int64) bool {
	for _, c := range p.Campuses {
		if c.ID == campusID {
			return true
		}
	}
	return false
}

// UserPositionsSnapshot is the bulk positions response for the current user
type UserPositionsSnapshot struct {
	UserID    int64      `json:"userId"`
	Email     string     `json:"email"`
	FullName  string     `json:"fullName"`
	Positions []Position `json:"positions"`
}

// SelectedContext is the user's current working scope.
// Roles is derived from the positions snapshot and is never set by callers.
type SelectedContext struct {
	Institute *Institute     `json:"institute"`
	Campus    *Campus        `json:"campus"`
	Roles     []PositionRole `json:"roles"`
}

// IsComplete reports whether both institute and campus are selected
func (s *SelectedContext) IsComplete() bool {
	return s != nil && s.Institute != nil && s.Campus != nil
}

// HasAnyRole reports whether the context holds at least one of the roles
func (s *SelectedContext) HasAnyRole(roles ...PositionRole) bool {
	if s == nil {
		return false
	}
	for _, held := range s.Roles {
		for _, r := range roles {
			if held == r {
				return true
			}
		}
	}
	return false
}

// HasOnlyRole reports whether the role is the single role held
func (s *SelectedContext) HasOnlyRole(role PositionRole) bool {
	return s != nil && len(s.Roles) == 1 && s.Roles[0] == role
}

// PersistedContext is what survives in session storage; roles are recomputed on restore
type PersistedContext struct {
	Institute *Institute `json:"institute,omitempty"`
	Campus    *Campus    `json:"campus,omitempty"`
}
