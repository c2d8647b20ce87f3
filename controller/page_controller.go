package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"planner-bff/middleware"
	"planner-bff/models"
	"planner-bff/services"
	"planner-bff/utils/logger"

	"github.com/gin-gonic/gin"
)

// PageController answers guarded navigations with JSON page models
type PageController struct {
	sessions *middleware.SessionMiddleware
	logger   logger.Logger
}

func NewPageController(sessions *middleware.SessionMiddleware, logger logger.Logger) *PageController {
	return &PageController{
		sessions: sessions,
		logger:   logger,
	}
}

// pageContext is the navigation state echoed with every page
type pageContext struct {
	Selected *models.SelectedContext `json:"selected,omitempty"`
	User     *models.UserProfile     `json:"user,omitempty"`
	Token    string                  `json:"ctx,omitempty"`
	Mode     string                  `json:"mode,omitempty"`
}

func (h *PageController) render(c *gin.Context, status int, page string, data interface{}, pageErr string) {
	var pc *pageContext
	if session, ok := middleware.GetSession(c); ok {
		selected, user := session.CurrentContext()
		params, token := middleware.ContextParams(c)
		pc = &pageContext{
			Selected: selected,
			User:     user,
			Token:    token,
			Mode:     params.ModeValue(),
		}
	}
	c.JSON(status, models.PageResponse{
		Page:    page,
		Context: pc,
		Data:    data,
		Error:   pageErr,
	})
}

// Landing handles GET /
// The error query parameter is echoed for the landing page message.
func (h *PageController) Landing(c *gin.Context) {
	authenticated := false
	if session, ok := middleware.GetSession(c); ok {
		authenticated = session.Auth.IsAuthenticated()
	}
	h.render(c, http.StatusOK, RouteLanding, gin.H{"authenticated": authenticated}, c.Query("error"))
}

// Login handles GET /login
func (h *PageController) Login(c *gin.Context) {
	authenticated := false
	if session, ok := middleware.GetSession(c); ok {
		authenticated = session.Auth.IsAuthenticated()
	}
	h.render(c, http.StatusOK, RouteLogin, gin.H{"authenticated": authenticated}, "")
}

// Menu handles GET /menu, the institute and campus chooser
func (h *PageController) Menu(c *gin.Context) {
	session, _ := middleware.GetSession(c)
	if err := ensurePositions(c, session); err != nil {
		h.logger.Warnf("Failed to load positions for menu: %v", err)
		h.render(c, backendStatus(err), RouteMenu, nil, "positions_unavailable")
		return
	}

	h.render(c, http.StatusOK, RouteMenu, gin.H{
		"institutes": session.Positions.AvailableInstitutes(),
		"campuses":   session.Positions.AvailableCampuses(),
		"roles":      session.Positions.AvailableRoles(),
	}, "")
}

// Home handles GET /home. The error query parameter carries a reason code such as insufficient_permissions.
func (h *PageController) Home(c *gin.Context) {
	session, _ := middleware.GetSession(c)
	h.render(c, http.StatusOK, RouteHome, gin.H{
		"roles": session.Positions.AvailableRoles(),
	}, c.Query("error"))
}

// Courses handles GET /courses, the paginated catalog.
// Permanent filters are locked for the visit; a query contradicting one forces logout.
func (h *PageController) Courses(c *gin.Context) {
	session, _ := middleware.GetSession(c)
	ctx := c.Request.Context()

	applyCatalogPermanent(c, session)

	requested, err := filtersFromQuery(c)
	if err != nil {
		failure(c, http.StatusBadRequest, "Invalid filter", "ValidationError", err.Error())
		return
	}
	if err := applyRequestedFilters(session.Filters, requested); err != nil {
		if errors.Is(err, services.ErrPermanentFilterViolation) {
			landing := forceLogout(c, h.sessions, h.logger, session, err)
			c.Redirect(http.StatusFound, landing)
			c.Abort()
			return
		}
		failure(c, http.StatusBadRequest, "Invalid filter", "ValidationError", err.Error())
		return
	}

	page, size := pagination(c)
	result, err := session.Catalog.ListCourses(ctx, page, size)
	if err != nil {
		h.logger.Warnf("Failed to list courses: %v", err)
		h.render(c, backendStatus(err), RouteCourses, nil, "courses_unavailable")
		return
	}

	h.render(c, http.StatusOK, RouteCourses, gin.H{
		"courses":   result,
		"filters":   session.Filters.Snapshot(),
		"permanent": session.Filters.Permanent().Fields(),
	}, "")
}

// Planner handles GET /planner: the course and its weekly plannings
func (h *PageController) Planner(c *gin.Context) {
	h.coursePage(c, RoutePlanner, func(ctx context.Context, session *services.Session, courseID int64) (*models.CourseView, error) {
		return session.Catalog.Planner(ctx, courseID)
	})
}

// Statistics handles GET /statistics
func (h *PageController) Statistics(c *gin.Context) {
	h.coursePage(c, RouteStatistics, func(ctx context.Context, session *services.Session, courseID int64) (*models.CourseView, error) {
		return session.Catalog.Statistics(ctx, courseID)
	})
}

// CourseDetails handles GET /course-details: the course with plannings and modification history
func (h *PageController) CourseDetails(c *gin.Context) {
	h.coursePage(c, RouteCourseDetails, func(ctx context.Context, session *services.Session, courseID int64) (*models.CourseView, error) {
		return session.Catalog.Details(ctx, courseID)
	})
}

// Reports handles GET /reports: the AI quality report of the course
func (h *PageController) Reports(c *gin.Context) {
	h.coursePage(c, RouteReports, func(ctx context.Context, session *services.Session, courseID int64) (*models.CourseView, error) {
		return session.Catalog.Report(ctx, courseID)
	})
}

// CourseAssignment handles GET /course-assignment. Create mode has no course yet.
func (h *PageController) CourseAssignment(c *gin.Context) {
	session, _ := middleware.GetSession(c)
	params, _ := middleware.ContextParams(c)

	enumerations, err := session.Catalog.Enumerations(c.Request.Context())
	if err != nil {
		h.logger.Warnf("Failed to load enumerations: %v", err)
		h.render(c, backendStatus(err), RouteCourseAssignment, nil, "enumerations_unavailable")
		return
	}

	data := gin.H{
		"mode":         params.ModeValue(),
		"enumerations": enumerations,
	}
	if course, ok := middleware.GuardedCourse(c); ok {
		data["course"] = course
	}
	h.render(c, http.StatusOK, RouteCourseAssignment, data, "")
}

// applyCatalogPermanent locks the permanent filters of the catalog visit described by the request's ctx
func applyCatalogPermanent(c *gin.Context, session *services.Session) {
	params, _ := middleware.ContextParams(c)
	mode := params.ModeValue()
	if mode == "" {
		mode = c.Query("mode")
	}

	selected, user := session.CurrentContext()
	session.Filters.ApplyPermanent(services.PermanentFiltersFor(mode, selected, user))
}

type courseLoader func(ctx context.Context, session *services.Session, courseID int64) (*models.CourseView, error)

func (h *PageController) coursePage(c *gin.Context, page string, load courseLoader) {
	session, _ := middleware.GetSession(c)
	course, ok := middleware.GuardedCourse(c)
	if !ok {
		h.render(c, http.StatusNotFound, page, nil, "course_not_found")
		return
	}

	view, err := load(c.Request.Context(), session, course.ID)
	if err != nil {
		h.logger.Warnf("Failed to load %s for course %d: %v", page, course.ID, err)
		h.render(c, backendStatus(err), page, nil, page+"_unavailable")
		return
	}
	h.render(c, http.StatusOK, page, view, "")
}

// filtersFromQuery reads the catalog filters a request names
func filtersFromQuery(c *gin.Context) (models.CourseFilters, error) {
	var filters models.CourseFilters
	for _, field := range []models.FilterField{models.FilterUserID, models.FilterCampusID} {
		raw, ok := c.GetQuery(string(field))
		if !ok || raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return filters, errors.New(string(field) + " must be a positive integer")
		}
		if field == models.FilterUserID {
			filters.UserID = &id
		} else {
			filters.CampusID = &id
		}
	}
	filters.Period = c.Query(string(models.FilterPeriod))
	filters.SearchText = c.Query("search")
	return filters, nil
}

// applyRequestedFilters rejects contradictions of permanent filters, then sets what was asked for
func applyRequestedFilters(filters services.FilterServiceInterface, requested models.CourseFilters) error {
	if err := filters.CheckQuery(requested); err != nil {
		return err
	}
	if requested.UserID != nil {
		if err := filters.SetUserID(requested.UserID); err != nil {
			return err
		}
	}
	if requested.CampusID != nil {
		if err := filters.SetCampusID(requested.CampusID); err != nil {
			return err
		}
	}
	if requested.Period != "" {
		if err := filters.SetPeriod(requested.Period); err != nil {
			return err
		}
	}
	if requested.SearchText != "" {
		return filters.SetSearchText(requested.SearchText)
	}
	return nil
}

func pagination(c *gin.Context) (int, int) {
	page, size := 1, services.DefaultPageSize
	if raw := c.Query("page"); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			page = p
		}
	}
	if raw := c.Query("size"); raw != "" {
		if s, err := strconv.Atoi(raw); err == nil && s > 0 {
			size = s
		}
	}
	return page, size
}
