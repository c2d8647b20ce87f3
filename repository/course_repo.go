package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/utils/logger"
)

type CourseRepository struct {
	client dal.BackendClientInterface
	logger logger.Logger
}

func NewCourseRepository(client dal.BackendClientInterface, log logger.Logger) *CourseRepository {
	return &CourseRepository{
		client: client,
		logger: log,
	}
}

// ListCourses fetches one page of the course list with the given filters
func (r *CourseRepository) ListCourses(ctx context.Context, query models.CourseQuery) (*models.CoursePage, error) {
	var page models.CoursePage
	if err := r.client.Get(ctx, dal.PathCourses, courseQueryValues(query), &page); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return &page, nil
}

func (r *CourseRepository) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	var course models.Course
	if err := r.client.Get(ctx, coursePath(courseID, ""), nil, &course); err != nil {
		// Callers classify by backend status, so the error is returned as is
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) GetWeeklyPlannings(ctx context.Context, courseID int64) (models.CourseResource, error) {
	return r.getRaw(ctx, coursePath(courseID, "weekly-plannings"))
}

func (r *CourseRepository) GetModifications(ctx context.Context, courseID int64) (models.CourseResource, error) {
	return r.getRaw(ctx, coursePath(courseID, "modifications"))
}

func (r *CourseRepository) GetStatistics(ctx context.Context, courseID int64) (models.CourseResource, error) {
	return r.getRaw(ctx, coursePath(courseID, "statistics"))
}

// GetQualityReport fetches the AI generated quality report of a course
func (r *CourseRepository) GetQualityReport(ctx context.Context, courseID int64) (models.CourseResource, error) {
	return r.getRaw(ctx, dal.PathAgentReport+"/"+strconv.FormatInt(courseID, 10))
}

// Chat forwards a message to the educational assistant
func (r *CourseRepository) Chat(ctx context.Context, req models.ChatRequest) (models.CourseResource, error) {
	var raw models.CourseResource
	if err := r.client.Post(ctx, dal.PathAgentChat, req, &raw); err != nil {
		return nil, fmt.Errorf("assistant chat failed: %w", err)
	}
	return raw, nil
}

func (r *CourseRepository) GetEnumerations(ctx context.Context) (models.CourseResource, error) {
	return r.getRaw(ctx, dal.PathEnumerations)
}

func (r *CourseRepository) getRaw(ctx context.Context, path string) (models.CourseResource, error) {
	var raw models.CourseResource
	if err := r.client.Get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func coursePath(courseID int64, sub string) string {
	path := dal.PathCourses + "/" + strconv.FormatInt(courseID, 10)
	if sub != "" {
		path += "/" + sub
	}
	return path
}

func courseQueryValues(query models.CourseQuery) url.Values {
	values := url.Values{}
	values.Set("page", strconv.Itoa(query.Page))
	values.Set("size", strconv.Itoa(query.Size))

	f := query.Filters
	if f.CampusID != nil {
		values.Set("campusId", strconv.FormatInt(*f.CampusID, 10))
	}
	if f.UserID != nil {
		values.Set("userId", strconv.FormatInt(*f.UserID, 10))
	}
	if f.Period != "" {
		values.Set("period", f.Period)
	}
	if f.SearchText != "" {
		values.Set("search", f.SearchText)
	}
	return values
}
