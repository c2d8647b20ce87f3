package controller

import (
	"net/http"

	"planner-bff/middleware"
	"planner-bff/models"
	"planner-bff/services"
	"planner-bff/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Page route names
const (
	RouteLanding          = "landing"
	RouteLogin            = "login"
	RouteMenu             = "menu"
	RouteHome             = "home"
	RouteCourses          = "courses"
	RouteStudentCourses   = "student-courses"
	RoutePlanner          = "planner"
	RouteStatistics       = "statistics"
	RouteCourseDetails    = "course-details"
	RouteReports          = "reports"
	RouteCourseAssignment = "course-assignment"
)

var (
	reportRoles     = []models.PositionRole{models.RoleCoordinator, models.RoleAnalyst, models.RoleEducationManager}
	assignmentRoles = []models.PositionRole{models.RoleCoordinator, models.RoleEducationManager}
)

// Route binds a method and guarded route to its handler
type Route struct {
	method  string
	meta    models.RouteMeta
	handler gin.HandlerFunc
}

type Controller struct {
	Auth    *AuthController
	Context *ContextController
	Pages   *PageController
	Catalog *CatalogController

	sessions *middleware.SessionMiddleware
	guards   *middleware.Guards
	config   *models.Config
	logger   logger.Logger
}

func NewController(cfg *models.Config, log logger.Logger, manager services.SessionManagerInterface) *Controller {
	sessions := middleware.NewSessionMiddleware(cfg, log, manager)

	return &Controller{
		Auth:     NewAuthController(sessions, log),
		Context:  NewContextController(log),
		Pages:    NewPageController(sessions, log),
		Catalog:  NewCatalogController(sessions, log),
		sessions: sessions,
		guards:   middleware.NewGuards(cfg, log),
		config:   cfg,
		logger:   log,
	}
}

// Sessions returns the session middleware shared by the handlers
func (c *Controller) Sessions() *middleware.SessionMiddleware {
	return c.sessions
}

// Routes is the navigation table. Each entry declares its guards through RouteMeta.
func (c *Controller) Routes(basePath string) []Route {
	staff := models.StaffRoles

	return []Route{
		// Public
		{http.MethodGet, models.RouteMeta{Name: RouteLanding, Path: "/", Public: true}, c.Pages.Landing},
		{http.MethodGet, models.RouteMeta{Name: RouteLogin, Path: "/login", Public: true}, c.Pages.Login},
		{http.MethodPost, models.RouteMeta{Path: basePath + "/auth/login", Public: true}, c.Auth.Login},
		{http.MethodPost, models.RouteMeta{Path: basePath + "/auth/logout", Public: true}, c.Auth.Logout},
		{http.MethodGet, models.RouteMeta{Path: basePath + "/auth/status", Public: true}, c.Auth.Status},

		// Authenticated
		{http.MethodGet, models.RouteMeta{Name: RouteMenu, Path: "/menu"}, c.Pages.Menu},
		{http.MethodGet, models.RouteMeta{Name: RouteHome, Path: "/home"}, c.Pages.Home},
		{http.MethodGet, models.RouteMeta{Name: RouteStudentCourses, Path: "/student/courses"}, c.Catalog.StudentCourses},
		{http.MethodGet, models.RouteMeta{Path: basePath + "/enumerations"}, c.Catalog.Enumerations},
		{http.MethodGet, models.RouteMeta{Path: basePath + "/context"}, c.Context.GetContext},
		{http.MethodGet, models.RouteMeta{Path: basePath + "/context/positions"}, c.Context.GetPositions},
		{http.MethodGet, models.RouteMeta{Path: basePath + "/context/institutes"}, c.Context.GetInstitutes},
		{http.MethodPost, models.RouteMeta{Path: basePath + "/context/institute"}, c.Context.SelectInstitute},
		{http.MethodGet, models.RouteMeta{Path: basePath + "/context/campuses"}, c.Context.GetCampuses},
		{http.MethodPost, models.RouteMeta{Path: basePath + "/context/campus"}, c.Context.SelectCampus},
		{http.MethodDelete, models.RouteMeta{Path: basePath + "/context"}, c.Context.ClearContext},
		{http.MethodDelete, models.RouteMeta{Path: basePath + "/context/campus"}, c.Context.ClearCampus},
		{http.MethodDelete, models.RouteMeta{Path: basePath + "/context/roles"}, c.Context.ClearRoles},
		{http.MethodPost, models.RouteMeta{Path: basePath + "/context/link"}, c.Context.Link},

		// Context and role
		{http.MethodGet, models.RouteMeta{Name: RouteCourses, Path: "/courses", RequiresContext: true, RequiredRoles: staff}, c.Pages.Courses},
		{http.MethodPut, models.RouteMeta{Path: "/courses/filters", RequiresContext: true, RequiredRoles: staff}, c.Catalog.SetFilter},
		{http.MethodDelete, models.RouteMeta{Path: "/courses/filters", RequiresContext: true, RequiredRoles: staff}, c.Catalog.ClearFilters},
		{http.MethodPost, models.RouteMeta{Path: "/assistant/chat", RequiresContext: true, RequiredRoles: staff}, c.Catalog.Chat},

		// Context, role and course access
		{http.MethodGet, models.RouteMeta{
			Name: RoutePlanner, Path: "/planner", RequiresContext: true, RequiredRoles: staff,
			CourseAccess: models.CourseAccessOwnership,
		}, c.Pages.Planner},
		{http.MethodGet, models.RouteMeta{
			Name: RouteStatistics, Path: "/statistics", RequiresContext: true, RequiredRoles: staff,
			CourseAccess: models.CourseAccessDelegated,
		}, c.Pages.Statistics},
		{http.MethodGet, models.RouteMeta{
			Name: RouteCourseDetails, Path: "/course-details", RequiresContext: true, RequiredRoles: staff,
			CourseAccess: models.CourseAccessDelegated,
		}, c.Pages.CourseDetails},
		{http.MethodGet, models.RouteMeta{
			Name: RouteReports, Path: "/reports", RequiresContext: true, RequiredRoles: reportRoles,
			CourseAccess: models.CourseAccessDelegated,
		}, c.Pages.Reports},
		{http.MethodGet, models.RouteMeta{
			Name: RouteCourseAssignment, Path: "/course-assignment", RequiresContext: true, RequiredRoles: assignmentRoles,
			CourseAccess: models.CourseAccessDelegated, AllowMissingCourseInMode: models.ModeCreate,
		}, c.Pages.CourseAssignment},
	}
}

// RegisterRoutes mounts health, metrics and the guarded route table
func (c *Controller) RegisterRoutes(r *gin.Engine, basePath string) {
	r.GET("/health", c.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	group := r.Group("", c.sessions.LoadSession())
	for _, rt := range c.Routes(basePath) {
		handlers := append(c.guards.For(rt.meta), rt.handler)
		group.Handle(rt.method, rt.meta.Path, handlers...)
	}
}

func (c *Controller) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": c.config.AppVersion,
		"service": c.config.AppName,
	})
}
