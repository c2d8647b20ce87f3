package models

// SelectInstituteRequest is the body of an institute selection
type SelectInstituteRequest struct {
	InstituteID int64 `json:"instituteId" validate:"required,gt=0" example:"1"`
	// Persist defaults to true
	Persist *bool `json:"persist,omitempty"`
}

// SelectCampusRequest is the body of a campus selection
type SelectCampusRequest struct {
	CampusID int64 `json:"campusId" validate:"required,gt=0" example:"10"`
}

// ContextLinkRequest asks for a ctx token built from the selected context plus navigation fields
type ContextLinkRequest struct {
	CourseID *int64  `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	Mode     *string `json:"mode,omitempty" validate:"omitempty,oneof=create edit view planner"`
	Step     *int64  `json:"step,omitempty" validate:"omitempty,gte=0"`
	IsEdit   *bool   `json:"isEdit,omitempty"`
}

// ContextLink is a ctx token and the query string that carries it
type ContextLink struct {
	Token string `json:"ctx"`
	Query string `json:"query"`
}
