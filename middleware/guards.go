package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/services"
	"planner-bff/utils/ctxtoken"
	"planner-bff/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Redirect targets
const (
	LoginRoute = "/login"
	MenuRoute  = "/menu"
	HomeRoute  = "/home"
	// CatalogRoute keeps the caller's ctx token when a course is out of reach
	CatalogRoute = "/courses"

	ErrorInsufficientPermissions = "insufficient_permissions"
)

const (
	contextParamsKey = "ctx_params"
	contextTokenKey  = "ctx_token"
	courseKey        = "course"

	defaultContextWait = 2 * time.Second
)

var guardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "planner_guard_decisions_total",
	Help: "Route guard decisions by guard and outcome.",
}, []string{"guard", "outcome"})

// Guards gate navigation in the fixed order Auth, Context, Role, Course-Access.
// Every failure ends in a redirect; panics fail closed.
type Guards struct {
	logger      logger.Logger
	contextWait time.Duration
}

// NewGuards creates the route guards
func NewGuards(cfg *models.Config, log logger.Logger) *Guards {
	wait := cfg.ContextWaitTimeout
	if wait <= 0 {
		wait = defaultContextWait
	}
	return &Guards{
		logger:      log,
		contextWait: wait,
	}
}

// For composes the guards a route declares
func (g *Guards) For(meta models.RouteMeta) []gin.HandlerFunc {
	if meta.Public {
		return []gin.HandlerFunc{PublicRoute()}
	}

	handlers := []gin.HandlerFunc{g.Auth()}
	if meta.RequiresContext || meta.CourseAccess != models.CourseAccessNone {
		handlers = append(handlers, g.Context())
	}
	if len(meta.RequiredRoles) > 0 {
		handlers = append(handlers, g.Role(meta.RequiredRoles...))
	}
	if meta.CourseAccess != models.CourseAccessNone {
		handlers = append(handlers, g.CourseAccess(meta.CourseAccess, meta.AllowMissingCourseInMode))
	}
	return handlers
}

// Auth allows authenticated sessions. It makes no backend call.
func (g *Guards) Auth() gin.HandlerFunc {
	return g.failClosed("auth", LoginRoute, func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok || !session.Auth.IsAuthenticated() {
			g.deny(c, "auth", LoginRoute)
			return
		}
		g.allow(c, "auth")
	})
}

// Context requires a complete institute/campus context in the ctx token and commits it
func (g *Guards) Context() gin.HandlerFunc {
	return g.failClosed("context", MenuRoute, func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			g.deny(c, "context", MenuRoute)
			return
		}

		token := c.Query(ctxtoken.QueryKey)
		params, ok := ctxtoken.ExtractFromURL(c.Request.URL.Query())
		if !ok {
			if token != "" {
				g.logger.Warnf("Rejected malformed context token on %s", c.Request.URL.Path)
			}
			g.deny(c, "context", MenuRoute)
			return
		}

		// A campus of -1 means institute chosen, campus pending; not a complete context
		if params.InstituteID == nil || *params.InstituteID <= 0 || params.CampusID == nil || *params.CampusID <= 0 {
			g.deny(c, "context", MenuRoute)
			return
		}

		ctx := c.Request.Context()
		if !session.Positions.HasPositions() {
			if err := session.Positions.FetchPositions(ctx); err != nil {
				g.logger.Warnf("Positions fetch failed in context guard: %v", err)
				g.deny(c, "context", MenuRoute)
				return
			}
		}

		selected, ok := session.Positions.BuildContextFromURLParams(*params.InstituteID, *params.CampusID)
		if !ok {
			g.logger.WithFields(map[string]interface{}{
				"institute_id": *params.InstituteID,
				"campus_id":    *params.CampusID,
			}).Warn("Context token names a context the user does not hold")
			g.deny(c, "context", MenuRoute)
			return
		}

		if err := session.Positions.CommitContext(ctx, selected); err != nil {
			g.logger.Errorf("Failed to commit context: %v", err)
			g.deny(c, "context", MenuRoute)
			return
		}

		c.Set(contextParamsKey, params)
		c.Set(contextTokenKey, token)
		g.allow(c, "context")
	})
}

// Role allows the route when the context holds any of the roles
func (g *Guards) Role(required ...models.PositionRole) gin.HandlerFunc {
	denied := HomeRoute + "?" + url.Values{"error": {ErrorInsufficientPermissions}}.Encode()

	return g.failClosed("role", denied, func(c *gin.Context) {
		if len(required) == 0 {
			g.allow(c, "role")
			return
		}

		session, ok := GetSession(c)
		if !ok {
			g.deny(c, "role", denied)
			return
		}

		selected, err := g.awaitContext(c.Request.Context(), session)
		if err != nil || !selected.HasAnyRole(required...) {
			g.deny(c, "role", denied)
			return
		}
		g.allow(c, "role")
	})
}

// CourseAccess validates the ctx token's course. Ownership mode checks the teacher list for
// teacher-only contexts; delegated mode trusts a successful backend fetch.
func (g *Guards) CourseAccess(mode models.CourseAccessMode, allowMissingInMode string) gin.HandlerFunc {
	return g.failClosed("course_access", MenuRoute, func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			g.deny(c, "course_access", MenuRoute)
			return
		}

		params, token := contextFrom(c)
		catalog := catalogRoute(token)
		if params == nil {
			g.deny(c, "course_access", MenuRoute)
			return
		}

		if params.CourseID == nil {
			if allowMissingInMode != "" && params.ModeValue() == allowMissingInMode {
				g.allow(c, "course_access")
				return
			}
			g.deny(c, "course_access", catalog)
			return
		}

		ctx := c.Request.Context()
		selected, err := g.awaitContext(ctx, session)
		if err != nil {
			g.deny(c, "course_access", MenuRoute)
			return
		}

		course, err := session.Catalog.GetCourse(ctx, *params.CourseID)
		if err != nil {
			g.deny(c, "course_access", classifyCourseError(err, catalog))
			return
		}

		if mode == models.CourseAccessOwnership && selected.HasOnlyRole(models.RoleTeacher) {
			user := session.Auth.CurrentUser()
			if user == nil || !course.HasTeacher(user.ID) {
				g.logger.Infof("Course %d is not owned by the current teacher", course.ID)
				g.deny(c, "course_access", catalog)
				return
			}
		}

		c.Set(courseKey, course)
		g.allow(c, "course_access")
	})
}

// ContextParams returns the params committed by the context guard
func ContextParams(c *gin.Context) (*models.ContextParams, string) {
	return contextFrom(c)
}

// GuardedCourse returns the course loaded by the course-access guard
func GuardedCourse(c *gin.Context) (*models.Course, bool) {
	value, ok := c.Get(courseKey)
	if !ok {
		return nil, false
	}
	course, ok := value.(*models.Course)
	return course, ok
}

func (g *Guards) awaitContext(ctx context.Context, session *services.Session) (*models.SelectedContext, error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.contextWait)
	defer cancel()
	return session.Positions.WaitForContext(waitCtx)
}

// allow returns without c.Next so panics further down the chain are not caught by the guard
func (g *Guards) allow(c *gin.Context, guard string) {
	guardDecisions.WithLabelValues(guard, "allow").Inc()
}

func (g *Guards) deny(c *gin.Context, guard, location string) {
	guardDecisions.WithLabelValues(guard, "deny").Inc()
	g.logger.Debugf("Guard %s redirected %s to %s", guard, c.Request.URL.Path, location)
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// failClosed turns a panic in a guard into a redirect
func (g *Guards) failClosed(guard, fallback string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				g.logger.Errorf("Guard %s panicked: %v", guard, r)
				guardDecisions.WithLabelValues(guard, "panic").Inc()
				c.Redirect(http.StatusFound, fallback)
				c.Abort()
			}
		}()
		handler(c)
	}
}

func contextFrom(c *gin.Context) (*models.ContextParams, string) {
	token, _ := c.Get(contextTokenKey)
	tokenString, _ := token.(string)
	if value, ok := c.Get(contextParamsKey); ok {
		if params, ok := value.(*models.ContextParams); ok {
			return params, tokenString
		}
	}

	params, ok := ctxtoken.ExtractFromURL(c.Request.URL.Query())
	if !ok {
		return nil, ""
	}
	return params, c.Query(ctxtoken.QueryKey)
}

func catalogRoute(token string) string {
	if token == "" {
		return CatalogRoute
	}
	return CatalogRoute + "?" + url.Values{ctxtoken.QueryKey: {token}}.Encode()
}

// classifyCourseError maps a course fetch failure to a redirect
func classifyCourseError(err error, catalog string) string {
	switch {
	case dal.IsUnauthorized(err):
		return LoginRoute
	case dal.IsForbidden(err), dal.IsNotFound(err):
		return catalog
	default:
		return MenuRoute
	}
}
