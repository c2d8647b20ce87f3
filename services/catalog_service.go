package services

import (
	"context"

	"planner-bff/models"
	"planner-bff/repository"
	"planner-bff/utils/logger"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CatalogService reads courses for the catalog and the course pages
type CatalogService struct {
	repo    repository.CourseRepositoryInterface
	filters FilterServiceInterface
	logger  logger.Logger
}

func NewCatalogService(repo repository.CourseRepositoryInterface, filters FilterServiceInterface, logger logger.Logger) *CatalogService {
	return &CatalogService{
		repo:    repo,
		filters: filters,
		logger:  logger,
	}
}

// PermanentFiltersFor returns the filters locked for a catalog visit.
// Planner mode locks the campus to the context campus; a teacher-only context locks the user.
func PermanentFiltersFor(mode string, selected *models.SelectedContext, user *models.UserProfile) models.PermanentFilters {
	var permanent models.PermanentFilters
	if selected == nil {
		return permanent
	}
	if mode == models.ModePlanner && selected.Campus != nil {
		campusID := selected.Campus.ID
		permanent.CampusID = &campusID
	}
	if selected.HasOnlyRole(models.RoleTeacher) && user != nil {
		userID := user.ID
		permanent.UserID = &userID
	}
	return permanent
}

// ListCourses queries one page of courses with the session's current filters
func (s *CatalogService) ListCourses(ctx context.Context, page, size int) (*models.CoursePage, error) {
	return s.ListCoursesWith(ctx, s.filters.Snapshot(), page, size)
}

// ListCoursesWith queries one page of courses with explicit filters, bypassing the session's filter state
func (s *CatalogService) ListCoursesWith(ctx context.Context, filters models.CourseFilters, page, size int) (*models.CoursePage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	return s.repo.ListCourses(ctx, models.CourseQuery{
		Filters: filters,
		Page:    page,
		Size:    size,
	})
}

func (s *CatalogService) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	return s.repo.GetCourse(ctx, courseID)
}

// Planner loads a course with its weekly plannings
func (s *CatalogService) Planner(ctx context.Context, courseID int64) (*models.CourseView, error) {
	return s.view(ctx, courseID, func(ctx context.Context, view *models.CourseView) (err error) {
		view.WeeklyPlannings, err = s.repo.GetWeeklyPlannings(ctx, courseID)
		return err
	})
}

// Details loads a course with its modification history
func (s *CatalogService) Details(ctx context.Context, courseID int64) (*models.CourseView, error) {
	return s.view(ctx, courseID, func(ctx context.Context, view *models.CourseView) (err error) {
		view.Modifications, err = s.repo.GetModifications(ctx, courseID)
		return err
	})
}

func (s *CatalogService) Statistics(ctx context.Context, courseID int64) (*models.CourseView, error) {
	return s.view(ctx, courseID, func(ctx context.Context, view *models.CourseView) (err error) {
		view.Statistics, err = s.repo.GetStatistics(ctx, courseID)
		return err
	})
}

// Report loads a course with its AI quality report
func (s *CatalogService) Report(ctx context.Context, courseID int64) (*models.CourseView, error) {
	return s.view(ctx, courseID, func(ctx context.Context, view *models.CourseView) (err error) {
		view.Report, err = s.repo.GetQualityReport(ctx, courseID)
		return err
	})
}

func (s *CatalogService) Chat(ctx context.Context, req models.ChatRequest) (models.CourseResource, error) {
	return s.repo.Chat(ctx, req)
}

func (s *CatalogService) Enumerations(ctx context.Context) (models.CourseResource, error) {
	return s.repo.GetEnumerations(ctx)
}

// view fetches the course and one sub-resource concurrently; the first error wins
func (s *CatalogService) view(ctx context.Context, courseID int64, fetch func(context.Context, *models.CourseView) error) (*models.CourseView, error) {
	view := &models.CourseView{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		course, err := s.repo.GetCourse(gctx, courseID)
		if err != nil {
			return err
		}
		view.Course = course
		return nil
	})
	g.Go(func() error {
		return fetch(gctx, view)
	})

	if err := g.Wait(); err != nil {
		s.logger.Debugf("Failed to load course %d: %v", courseID, err)
		return nil, err
	}
	return view, nil
}
