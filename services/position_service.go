package services

import (
	"context"
	"sync"

	"planner-bff/models"
	"planner-bff/repository"
	"planner-bff/utils/logger"
)

// ClientStorage is the per-session client storage used by the services
type ClientStorage interface {
	GetJSON(ctx context.Context, scope models.StorageScope, key string, out interface{}) (bool, error)
	SetJSON(ctx context.Context, scope models.StorageScope, key string, value interface{}) error
	Remove(ctx context.Context, scope models.StorageScope, key string) error
	Clear(ctx context.Context) error
}

// PositionService owns the user's positions and the selected institute/campus context.
// Roles are always derived from the snapshot and are never persisted.
type PositionService struct {
	repo    repository.PositionRepositoryInterface
	storage ClientStorage
	logger  logger.Logger

	mu         sync.RWMutex
	snapshot   *models.UserPositionsSnapshot
	selected   *models.SelectedContext
	institutes []models.Institute
	campuses   []models.Campus
	// ready is closed once a complete context has roles derived from a snapshot
	ready chan struct{}
}

func NewPositionService(repo repository.PositionRepositoryInterface, storage ClientStorage, logger logger.Logger) *PositionService {
	return &PositionService{
		repo:    repo,
		storage: storage,
		logger:  logger,
		ready:   make(chan struct{}),
	}
}

// FetchPositions replaces the snapshot and re-derives any selected context against it
func (s *PositionService) FetchPositions(ctx context.Context) error {
	snapshot, err := s.repo.GetMyPositions(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snapshot
	s.institutes = activeInstitutes(snapshot)
	s.campuses = nil

	if s.selected != nil && s.selected.Institute != nil {
		s.campuses = instituteCampuses(snapshot, s.selected.Institute.ID)
		if s.selected.Campus != nil {
			s.selected.Roles = contextRoles(snapshot, s.selected.Institute.ID, s.selected.Campus.ID)
		}
	}
	s.signalIfReadyLocked()

	s.logger.Debugf("Loaded %d positions, %d institutes available", len(snapshot.Positions), len(s.institutes))
	return nil
}

// SelectInstitute sets the institute and recomputes the available campuses.
// A different institute drops the campus and roles.
func (s *PositionService) SelectInstitute(ctx context.Context, institute models.Institute, persist bool) error {
	s.mu.Lock()
	if s.selected == nil || s.selected.Institute == nil || s.selected.Institute.ID != institute.ID {
		s.selected = &models.SelectedContext{}
		s.resetReadyLocked()
	}
	inst := institute
	s.selected.Institute = &inst
	s.campuses = instituteCampuses(s.snapshot, institute.ID)
	persisted := s.persistedLocked()
	s.mu.Unlock()

	if !persist {
		return nil
	}
	return s.persist(ctx, persisted)
}

// SelectCampus sets the campus and recomputes roles for the selected institute
func (s *PositionService) SelectCampus(ctx context.Context, campus models.Campus) error {
	s.mu.Lock()
	if s.selected == nil || s.selected.Institute == nil {
		s.mu.Unlock()
		return ErrNoInstituteSelected
	}
	c := campus
	s.selected.Campus = &c
	s.selected.Roles = contextRoles(s.snapshot, s.selected.Institute.ID, campus.ID)
	s.signalIfReadyLocked()
	persisted := s.persistedLocked()
	s.mu.Unlock()

	return s.persist(ctx, persisted)
}

// BuildContextFromURLParams resolves ids against the snapshot without changing state
func (s *PositionService) BuildContextFromURLParams(instituteID, campusID int64) (*models.SelectedContext, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return nil, false
	}

	var institute *models.Institute
	var campus *models.Campus
	for _, p := range s.snapshot.Positions {
		if !p.IsActive || p.Institute.ID != instituteID {
			continue
		}
		if institute == nil {
			inst := p.Institute
			institute = &inst
		}
		for _, c := range p.Campuses {
			if c.ID == campusID && campus == nil {
				cc := c
				campus = &cc
			}
		}
	}
	if institute == nil || campus == nil {
		return nil, false
	}

	return &models.SelectedContext{
		Institute: institute,
		Campus:    campus,
		Roles:     contextRoles(s.snapshot, instituteID, campusID),
	}, true
}

// ValidateContext reports whether an active position covers the institute and campus
func (s *PositionService) ValidateContext(instituteID, campusID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return false
	}
	for _, p := range s.snapshot.Positions {
		if p.IsActive && p.Institute.ID == instituteID && p.HasCampus(campusID) {
			return true
		}
	}
	return false
}

// CommitContext makes a context built from URL params the selected context
func (s *PositionService) CommitContext(ctx context.Context, selected *models.SelectedContext) error {
	if !selected.IsComplete() {
		return ErrNoInstituteSelected
	}

	s.mu.Lock()
	next := cloneContext(selected)
	// Roles come from the snapshot, never from the caller
	next.Roles = contextRoles(s.snapshot, next.Institute.ID, next.Campus.ID)
	s.selected = next
	s.campuses = instituteCampuses(s.snapshot, next.Institute.ID)
	s.signalIfReadyLocked()
	persisted := s.persistedLocked()
	s.mu.Unlock()

	return s.persist(ctx, persisted)
}

// ClearSelection drops the whole selected context
func (s *PositionService) ClearSelection(ctx context.Context) {
	s.mu.Lock()
	s.selected = nil
	s.campuses = nil
	s.resetReadyLocked()
	s.mu.Unlock()

	s.forget(ctx)
}

// ClearCampusSelection keeps the institute and drops campus and roles
func (s *PositionService) ClearCampusSelection(ctx context.Context) {
	s.mu.Lock()
	if s.selected != nil {
		s.selected.Campus = nil
		s.selected.Roles = nil
	}
	s.resetReadyLocked()
	persisted := s.persistedLocked()
	s.mu.Unlock()

	if err := s.persist(ctx, persisted); err != nil {
		s.logger.Warnf("Failed to persist context after clearing campus: %v", err)
	}
}

// ClearRolesSelection drops the derived roles; the next campus selection recomputes them
func (s *PositionService) ClearRolesSelection(ctx context.Context) {
	s.mu.Lock()
	if s.selected != nil {
		s.selected.Roles = nil
	}
	persisted := s.persistedLocked()
	s.mu.Unlock()

	if err := s.persist(ctx, persisted); err != nil {
		s.logger.Warnf("Failed to persist context after clearing roles: %v", err)
	}
}

// ClearAllState is the complete reset used on logout
func (s *PositionService) ClearAllState(ctx context.Context) {
	s.mu.Lock()
	s.snapshot = nil
	s.selected = nil
	s.institutes = nil
	s.campuses = nil
	s.resetReadyLocked()
	s.mu.Unlock()

	s.forget(ctx)
}

// Restore loads the persisted institute and campus. Roles follow on the next FetchPositions.
func (s *PositionService) Restore(ctx context.Context) error {
	var persisted models.PersistedContext
	ok, err := s.storage.GetJSON(ctx, models.ScopeSession, models.StorageKeySelectedContext, &persisted)
	if err != nil {
		return err
	}
	if !ok || persisted.Institute == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &models.SelectedContext{
		Institute: persisted.Institute,
		Campus:    persisted.Campus,
	}
	if s.snapshot != nil {
		s.campuses = instituteCampuses(s.snapshot, persisted.Institute.ID)
		if persisted.Campus != nil {
			s.selected.Roles = contextRoles(s.snapshot, persisted.Institute.ID, persisted.Campus.ID)
		}
		s.signalIfReadyLocked()
	}
	return nil
}

// WaitForContext blocks until a complete context with derived roles exists or ctx is done
func (s *PositionService) WaitForContext(ctx context.Context) (*models.SelectedContext, error) {
	for {
		s.mu.RLock()
		if s.isReadyLocked() {
			selected := cloneContext(s.selected)
			s.mu.RUnlock()
			return selected, nil
		}
		ready := s.ready
		s.mu.RUnlock()

		select {
		case <-ready:
		case <-ctx.Done():
			return nil, ErrContextNotReady
		}
	}
}

func (s *PositionService) Snapshot() *models.UserPositionsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil
	}
	snapshot := *s.snapshot
	snapshot.Positions = append([]models.Position(nil), s.snapshot.Positions...)
	return &snapshot
}

func (s *PositionService) SelectedContext() *models.SelectedContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneContext(s.selected)
}

func (s *PositionService) AvailableInstitutes() []models.Institute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Institute(nil), s.institutes...)
}

func (s *PositionService) AvailableCampuses() []models.Campus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Campus(nil), s.campuses...)
}

func (s *PositionService) AvailableRoles() []models.PositionRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	return append([]models.PositionRole(nil), s.selected.Roles...)
}

func (s *PositionService) HasPositions() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

func (s *PositionService) isReadyLocked() bool {
	return s.snapshot != nil && s.selected.IsComplete()
}

func (s *PositionService) signalIfReadyLocked() {
	if !s.isReadyLocked() {
		return
	}
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
}

func (s *PositionService) resetReadyLocked() {
	select {
	case <-s.ready:
		s.ready = make(chan struct{})
	default:
	}
}

func (s *PositionService) persistedLocked() *models.PersistedContext {
	if s.selected == nil {
		return nil
	}
	return &models.PersistedContext{
		Institute: s.selected.Institute,
		Campus:    s.selected.Campus,
	}
}

func (s *PositionService) persist(ctx context.Context, persisted *models.PersistedContext) error {
	if persisted == nil {
		return s.storage.Remove(ctx, models.ScopeSession, models.StorageKeySelectedContext)
	}
	return s.storage.SetJSON(ctx, models.ScopeSession, models.StorageKeySelectedContext, persisted)
}

func (s *PositionService) forget(ctx context.Context) {
	if err := s.storage.Remove(ctx, models.ScopeSession, models.StorageKeySelectedContext); err != nil {
		s.logger.Warnf("Failed to remove persisted context: %v", err)
	}
}

// activeInstitutes lists the distinct institutes of active positions in first-seen order
func activeInstitutes(snapshot *models.UserPositionsSnapshot) []models.Institute {
	if snapshot == nil {
		return nil
	}
	seen := make(map[int64]bool)
	var institutes []models.Institute
	for _, p := range snapshot.Positions {
		if !p.IsActive || seen[p.Institute.ID] {
			continue
		}
		seen[p.Institute.ID] = true
		institutes = append(institutes, p.Institute)
	}
	return institutes
}

// instituteCampuses is the union of campuses across active positions at the institute
func instituteCampuses(snapshot *models.UserPositionsSnapshot, instituteID int64) []models.Campus {
	if snapshot == nil {
		return nil
	}
	seen := make(map[int64]bool)
	var campuses []models.Campus
	for _, p := range snapshot.Positions {
		if !p.IsActive || p.Institute.ID != instituteID {
			continue
		}
		for _, c := range p.Campuses {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			campuses = append(campuses, c)
		}
	}
	return campuses
}

// contextRoles is the union of roles of active positions at the institute that list the campus
func contextRoles(snapshot *models.UserPositionsSnapshot, instituteID, campusID int64) []models.PositionRole {
	roles := []models.PositionRole{}
	if snapshot == nil {
		return roles
	}
	seen := make(map[models.PositionRole]bool)
	for _, p := range snapshot.Positions {
		if !p.IsActive || p.Institute.ID != instituteID || !p.HasCampus(campusID) || seen[p.Role] {
			continue
		}
		seen[p.Role] = true
		roles = append(roles, p.Role)
	}
	return roles
}

func cloneContext(sc *models.SelectedContext) *models.SelectedContext {
	if sc == nil {
		return nil
	}
	out := &models.SelectedContext{}
	if sc.Institute != nil {
		inst := *sc.Institute
		out.Institute = &inst
	}
	if sc.Campus != nil {
		c := *sc.Campus
		out.Campus = &c
	}
	if sc.Roles != nil {
		out.Roles = append([]models.PositionRole{}, sc.Roles...)
	}
	return out
}
