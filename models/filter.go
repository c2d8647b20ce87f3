package models

// FilterField names a catalog filter
type FilterField string

const (
	FilterUserID     FilterField = "userId"
	FilterCampusID   FilterField = "campusId"
	FilterPeriod     FilterField = "period"
	FilterSearchText FilterField = "searchText"
)

// CourseFilters are the catalog filter selections
type CourseFilters struct {
	UserID     *int64 `json:"userId,omitempty"`
	CampusID   *int64 `json:"campusId,omitempty"`
	Period     string `json:"period,omitempty"`
	SearchText string `json:"searchText,omitempty"`
}

// PermanentFilters are role or route locked filter values
type PermanentFilters struct {
	UserID   *int64
	CampusID *int64
	Period   *string
}

// Fields lists the locked fields
func (p PermanentFilters) Fields() []FilterField {
	var fields []FilterField
	if p.UserID != nil {
		fields = append(fields, FilterUserID)
	}
	if p.CampusID != nil {
		fields = append(fields, FilterCampusID)
	}
	if p.Period != nil {
		fields = append(fields, FilterPeriod)
	}
	return fields
}

// SetFilterRequest is the body of a filter mutation
type SetFilterRequest struct {
	Field FilterField `json:"field" validate:"required,oneof=userId campusId period searchText"`
	Value *string     `json:"value"`
}
