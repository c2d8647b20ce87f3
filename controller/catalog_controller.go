package controller

import (
	"errors"
	"net/http"

	"planner-bff/middleware"
	"planner-bff/models"
	"planner-bff/services"
	"planner-bff/utils/logger"

	"github.com/gin-gonic/gin"
)

// CatalogController handles catalog filter mutations and the thin backend forwards
type CatalogController struct {
	sessions *middleware.SessionMiddleware
	logger   logger.Logger
}

func NewCatalogController(sessions *middleware.SessionMiddleware, logger logger.Logger) *CatalogController {
	return &CatalogController{
		sessions: sessions,
		logger:   logger,
	}
}

// SetFilter handles PUT /courses/filters
// @Summary Set a catalog filter
// @Description Set or clear one filter. Changing a permanent filter is a security violation and ends the session.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param ctx query string true "Context token"
// @Param request body models.SetFilterRequest true "Filter mutation"
// @Success 200 {object} models.APIResponse "Filter updated"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid filter value"
// @Failure 401 {object} models.APIResponse "Unauthorized - Session ended after a permanent filter change"
// @Router /courses/filters [put]
func (h *CatalogController) SetFilter(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.SetFilterRequest
	if !bindAndValidate(c, h.logger, &req) {
		return
	}

	applyCatalogPermanent(c, session)
	if err := session.Filters.SetField(req.Field, req.Value); err != nil {
		if errors.Is(err, services.ErrPermanentFilterViolation) {
			landing := forceLogout(c, h.sessions, h.logger, session, err)
			c.JSON(http.StatusUnauthorized, models.APIResponse{
				Status:  "error",
				Code:    http.StatusUnauthorized,
				Message: "Session ended",
				Data:    gin.H{"redirect": landing},
				Error: &models.APIError{
					Type:    "SecurityViolation",
					Details: err.Error(),
					Field:   string(req.Field),
				},
			})
			return
		}
		failure(c, http.StatusBadRequest, "Invalid filter value", "ValidationError", err.Error())
		return
	}

	success(c, http.StatusOK, "Filter updated", gin.H{
		"filters":        session.Filters.Snapshot(),
		"hasUserFilters": session.Filters.HasActiveNonPermanentFilters(),
		"hasAnyFilters":  session.Filters.HasActiveFilters(),
	})
}

// ClearFilters handles DELETE /courses/filters
// @Summary Clear catalog filters
// @Description Reset user filters; permanent filters keep their locked values
// @Tags Catalog
// @Produce json
// @Param ctx query string true "Context token"
// @Success 200 {object} models.APIResponse "Filters cleared"
// @Router /courses/filters [delete]
func (h *CatalogController) ClearFilters(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	applyCatalogPermanent(c, session)
	session.Filters.ClearFilters()
	success(c, http.StatusOK, "Filters cleared", session.Filters.Snapshot())
}

// Chat handles POST /assistant/chat
// @Summary Educational assistant
// @Description Forward a message to the backend AI agent
// @Tags Assistant
// @Accept json
// @Produce json
// @Param ctx query string true "Context token"
// @Param request body models.ChatRequest true "Chat message"
// @Success 200 {object} models.APIResponse "Assistant reply"
// @Failure 502 {object} models.APIResponse "Bad Gateway - Backend unavailable"
// @Router /assistant/chat [post]
func (h *CatalogController) Chat(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.ChatRequest
	if !bindAndValidate(c, h.logger, &req) {
		return
	}

	reply, err := session.Catalog.Chat(c.Request.Context(), req)
	if err != nil {
		backendFailure(c, h.logger, "Assistant unavailable", err)
		return
	}
	success(c, http.StatusOK, "Assistant reply", reply)
}

// Enumerations handles GET /api/v1/enumerations
// @Summary Enumerations catalog
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.APIResponse "Enumerations retrieved successfully"
// @Router /enumerations [get]
func (h *CatalogController) Enumerations(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	enumerations, err := session.Catalog.Enumerations(c.Request.Context())
	if err != nil {
		backendFailure(c, h.logger, "Failed to load enumerations", err)
		return
	}
	success(c, http.StatusOK, "Enumerations retrieved successfully", enumerations)
}

// StudentCourses handles GET /student/courses, the read-only catalog.
// It queries with its own filters and leaves the staff catalog state alone.
// The alumno query parameter is passed through literally for the student view.
func (h *CatalogController) StudentCourses(c *gin.Context) {
	session, _ := middleware.GetSession(c)

	page, size := pagination(c)
	filters := models.CourseFilters{SearchText: c.Query("search")}
	result, err := session.Catalog.ListCoursesWith(c.Request.Context(), filters, page, size)
	if err != nil {
		h.logger.Warnf("Failed to list student courses: %v", err)
		c.JSON(backendStatus(err), models.PageResponse{Page: RouteStudentCourses, Error: "courses_unavailable"})
		return
	}

	c.JSON(http.StatusOK, models.PageResponse{
		Page: RouteStudentCourses,
		Data: gin.H{
			"courses":  result,
			"alumno":   c.Query("alumno"),
			"readOnly": true,
		},
	})
}
