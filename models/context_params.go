package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Context token field names
const (
	ParamInstituteID = "instituteId"
	ParamCampusID    = "campusId"
	ParamStep        = "step"
	ParamIsEdit      = "isEdit"
	ParamCourseID    = "courseId"
	ParamMode        = "mode"
)

// Navigation modes carried in the context token
const (
	ModeCreate  = "create"
	ModeEdit    = "edit"
	ModeView    = "view"
	ModePlanner = "planner"
)

// ContextParams is the navigation context carried in the opaque ctx URL token.
// Nil fields are absent from the token. Unknown fields survive in Extra.
type ContextParams struct {
	InstituteID *int64
	CampusID    *int64
	Step        *int64
	IsEdit      *bool
	CourseID    *int64
	Mode        *string
	Extra       map[string]json.RawMessage
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 { return &v }

// Bool returns a pointer to v
func Bool(v bool) *bool { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }

// ModeValue returns the mode or an empty string
func (p *ContextParams) ModeValue() string {
	if p == nil || p.Mode == nil {
		return ""
	}
	return *p.Mode
}

// MarshalJSON writes only the defined fields
func (p ContextParams) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 6+len(p.Extra))
	for k, v := range p.Extra {
		out[k] = v
	}
	if p.InstituteID != nil {
		out[ParamInstituteID] = *p.InstituteID
	}
	if p.CampusID != nil {
		out[ParamCampusID] = *p.CampusID
	}
	if p.Step != nil {
		out[ParamStep] = *p.Step
	}
	if p.IsEdit != nil {
		out[ParamIsEdit] = *p.IsEdit
	}
	if p.CourseID != nil {
		out[ParamCourseID] = *p.CourseID
	}
	if p.Mode != nil {
		out[ParamMode] = *p.Mode
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a JSON object and type-checks every known field
func (p *ContextParams) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("context payload is not an object")
	}

	var parsed ContextParams
	for key, value := range raw {
		var err error
		switch key {
		case ParamInstituteID:
			parsed.InstituteID, err = decodeID(key, value)
		case ParamCampusID:
			parsed.CampusID, err = decodeID(key, value)
		case ParamStep:
			parsed.Step, err = decodeID(key, value)
		case ParamCourseID:
			parsed.CourseID, err = decodeID(key, value)
		case ParamIsEdit:
			var b bool
			if err = json.Unmarshal(value, &b); err == nil && string(value) != "null" {
				parsed.IsEdit = &b
			} else {
				err = fmt.Errorf("%s must be a boolean", key)
			}
		case ParamMode:
			var s string
			if err = json.Unmarshal(value, &s); err == nil && string(value) != "null" {
				parsed.Mode = &s
			} else {
				err = fmt.Errorf("%s must be a string", key)
			}
		default:
			if parsed.Extra == nil {
				parsed.Extra = make(map[string]json.RawMessage)
			}
			parsed.Extra[key] = value
		}
		if err != nil {
			return err
		}
	}

	*p = parsed
	return nil
}

// decodeID accepts a finite integral JSON number only
func decodeID(key string, value json.RawMessage) (*int64, error) {
	var f float64
	if err := json.Unmarshal(value, &f); err != nil || string(value) == "null" {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return nil, fmt.Errorf("%s must be an integral number", key)
	}
	v := int64(f)
	return &v, nil
}
