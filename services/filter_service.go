package services

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"planner-bff/models"
)

// FilterService holds the catalog filter selections of one session.
// Permanent filters are locked by route or role and cannot be changed by the user.
type FilterService struct {
	mu        sync.RWMutex
	filters   models.CourseFilters
	permanent models.PermanentFilters
}

func NewFilterService() *FilterService {
	return &FilterService{}
}

func (s *FilterService) SetUserID(userID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permanent.UserID != nil && !sameID(s.permanent.UserID, userID) {
		return ErrPermanentFilterViolation
	}
	s.filters.UserID = copyID(userID)
	return nil
}

func (s *FilterService) SetCampusID(campusID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permanent.CampusID != nil && !sameID(s.permanent.CampusID, campusID) {
		return ErrPermanentFilterViolation
	}
	s.filters.CampusID = copyID(campusID)
	return nil
}

func (s *FilterService) SetPeriod(period string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.permanent.Period != nil && *s.permanent.Period != period {
		return ErrPermanentFilterViolation
	}
	s.filters.Period = period
	return nil
}

// SetSearchText sets the search text; it is never permanent
func (s *FilterService) SetSearchText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.SearchText = strings.TrimSpace(text)
	return nil
}

// SetField parses a raw value and sets the named filter. A nil value clears it.
func (s *FilterService) SetField(field models.FilterField, value *string) error {
	switch field {
	case models.FilterUserID:
		id, err := parseFilterID(value)
		if err != nil {
			return err
		}
		return s.SetUserID(id)
	case models.FilterCampusID:
		id, err := parseFilterID(value)
		if err != nil {
			return err
		}
		return s.SetCampusID(id)
	case models.FilterPeriod:
		return s.SetPeriod(stringValue(value))
	case models.FilterSearchText:
		return s.SetSearchText(stringValue(value))
	default:
		return fmt.Errorf("%w: unknown field %q", ErrInvalidFilterValue, field)
	}
}

// HasActiveFilters reports whether any filter, permanent or not, is set
func (s *FilterService) HasActiveFilters() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.filters
	return f.UserID != nil || f.CampusID != nil || f.Period != "" || f.SearchText != ""
}

// HasActiveNonPermanentFilters reports whether a user-editable filter is set
func (s *FilterService) HasActiveNonPermanentFilters() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, p := s.filters, s.permanent
	return (f.UserID != nil && p.UserID == nil) ||
		(f.CampusID != nil && p.CampusID == nil) ||
		(f.Period != "" && p.Period == nil) ||
		f.SearchText != ""
}

// ClearFilters resets the user-editable filters and restores the permanent ones
func (s *FilterService) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = models.CourseFilters{}
	s.applyPermanentLocked()
}

// ApplyPermanent replaces the permanent set and forces its values into the filters
func (s *FilterService) ApplyPermanent(permanent models.PermanentFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permanent = models.PermanentFilters{
		UserID:   copyID(permanent.UserID),
		CampusID: copyID(permanent.CampusID),
	}
	if permanent.Period != nil {
		period := *permanent.Period
		s.permanent.Period = &period
	}
	s.applyPermanentLocked()
}

// CheckQuery rejects requested filter values that contradict a permanent filter
func (s *FilterService) CheckQuery(requested models.CourseFilters) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.permanent
	if requested.UserID != nil && p.UserID != nil && *requested.UserID != *p.UserID {
		return ErrPermanentFilterViolation
	}
	if requested.CampusID != nil && p.CampusID != nil && *requested.CampusID != *p.CampusID {
		return ErrPermanentFilterViolation
	}
	if requested.Period != "" && p.Period != nil && requested.Period != *p.Period {
		return ErrPermanentFilterViolation
	}
	return nil
}

// Reset drops filters and the permanent set; used when the session is cleared
func (s *FilterService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = models.CourseFilters{}
	s.permanent = models.PermanentFilters{}
}

func (s *FilterService) Snapshot() models.CourseFilters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f := s.filters
	f.UserID = copyID(f.UserID)
	f.CampusID = copyID(f.CampusID)
	return f
}

func (s *FilterService) Permanent() models.PermanentFilters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permanent
}

func (s *FilterService) applyPermanentLocked() {
	if s.permanent.UserID != nil {
		s.filters.UserID = copyID(s.permanent.UserID)
	}
	if s.permanent.CampusID != nil {
		s.filters.CampusID = copyID(s.permanent.CampusID)
	}
	if s.permanent.Period != nil {
		s.filters.Period = *s.permanent.Period
	}
}

func parseFilterID(value *string) (*int64, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(*value), 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilterValue, *value)
	}
	return &id, nil
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
