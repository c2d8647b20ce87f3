package models

import "encoding/json"

// Teacher is a teacher assigned to a course
type Teacher struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
}

// Course is a course section as returned by the backend
type Course struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	Period         string    `json:"period"`
	CampusID       int64     `json:"campusId"`
	CurricularUnit string    `json:"curricularUnit,omitempty"`
	Teachers       []Teacher `json:"teachers"`
}

// HasTeacher reports whether the user is in the course's teacher list
func (c *Course) HasTeacher(userID int64) bool {
	for _, t := range c.Teachers {
		if t.ID == userID {
			return true
		}
	}
	return false
}

// CoursePage is one page of the paginated course list
type CoursePage struct {
	Items []Course `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Size  int      `json:"size"`
}

// CourseQuery is the backend query for the paginated course list
type CourseQuery struct {
	Filters CourseFilters
	Page    int
	Size    int
}

// CourseResource is a raw JSON sub-resource of a course (plannings, history, statistics, report)
type CourseResource = json.RawMessage

// ChatRequest is a message for the educational assistant
type ChatRequest struct {
	Message  string `json:"message" validate:"required,max=4000"`
	CourseID *int64 `json:"courseId,omitempty"`
}

// CourseView is a course together with the sub-resources a page needs
type CourseView struct {
	Course          *Course        `json:"course"`
	WeeklyPlannings CourseResource `json:"weeklyPlannings,omitempty"`
	Modifications   CourseResource `json:"modifications,omitempty"`
	Statistics      CourseResource `json:"statistics,omitempty"`
	Report          CourseResource `json:"report,omitempty"`
}
