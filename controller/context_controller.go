package controller

import (
	"errors"
	"net/http"

	"planner-bff/models"
	"planner-bff/services"
	"planner-bff/utils/ctxtoken"
	"planner-bff/utils/logger"

	"github.com/gin-gonic/gin"
)

// ContextController exposes the positions snapshot and the institute/campus selection
type ContextController struct {
	logger logger.Logger
}

func NewContextController(logger logger.Logger) *ContextController {
	return &ContextController{
		logger: logger,
	}
}

type contextState struct {
	Selected *models.SelectedContext `json:"selected"`
	Auth     models.AuthSession      `json:"auth"`
}

// GetContext handles GET /api/v1/context
// @Summary Current context
// @Description Return the selected institute, campus and roles with the authentication state
// @Tags Context
// @Produce json
// @Success 200 {object} models.APIResponse "Current context"
// @Failure 401 {object} models.APIResponse "Unauthorized"
// @Router /context [get]
func (h *ContextController) GetContext(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	success(c, http.StatusOK, "Context retrieved successfully", contextState{
		Selected: session.Positions.SelectedContext(),
		Auth:     session.Auth.Session(),
	})
}

// GetPositions handles GET /api/v1/context/positions
// @Summary User positions
// @Description Return the positions snapshot, fetching it from the backend on first use
// @Tags Context
// @Produce json
// @Success 200 {object} models.APIResponse "Positions retrieved successfully"
// @Failure 502 {object} models.APIResponse "Bad Gateway - Backend unavailable"
// @Router /context/positions [get]
func (h *ContextController) GetPositions(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if err := ensurePositions(c, session); err != nil {
		backendFailure(c, h.logger, "Failed to load positions", err)
		return
	}
	success(c, http.StatusOK, "Positions retrieved successfully", session.Positions.Snapshot())
}

// GetInstitutes handles GET /api/v1/context/institutes
// @Summary Available institutes
// @Tags Context
// @Produce json
// @Success 200 {object} models.APIResponse "Institutes retrieved successfully"
// @Router /context/institutes [get]
func (h *ContextController) GetInstitutes(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	if err := ensurePositions(c, session); err != nil {
		backendFailure(c, h.logger, "Failed to load positions", err)
		return
	}
	success(c, http.StatusOK, "Institutes retrieved successfully", session.Positions.AvailableInstitutes())
}

// SelectInstitute handles POST /api/v1/context/institute
// @Summary Select institute
// @Description Select an institute from the user's active positions. A different institute drops the campus.
// @Tags Context
// @Accept json
// @Produce json
// @Param request body models.SelectInstituteRequest true "Institute selection"
// @Success 200 {object} models.APIResponse "Institute selected"
// @Failure 404 {object} models.APIResponse "Not Found - Institute not available to the user"
// @Router /context/institute [post]
func (h *ContextController) SelectInstitute(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.SelectInstituteRequest
	if !bindAndValidate(c, h.logger, &req) {
		return
	}
	if err := ensurePositions(c, session); err != nil {
		backendFailure(c, h.logger, "Failed to load positions", err)
		return
	}

	var institute *models.Institute
	for _, inst := range session.Positions.AvailableInstitutes() {
		if inst.ID == req.InstituteID {
			inst := inst
			institute = &inst
			break
		}
	}
	if institute == nil {
		h.logger.Warnf("Rejected selection of institute %d not held by the user", req.InstituteID)
		failure(c, http.StatusNotFound, "Institute not available", "ContextError", "no active position at this institute")
		return
	}

	persist := req.Persist == nil || *req.Persist
	if err := session.Positions.SelectInstitute(c.Request.Context(), *institute, persist); err != nil {
		h.logger.Errorf("Failed to persist institute selection: %v", err)
		failure(c, http.StatusInternalServerError, "Failed to select institute", "StorageError", err.Error())
		return
	}

	success(c, http.StatusOK, "Institute selected", gin.H{
		"selected": session.Positions.SelectedContext(),
		"campuses": session.Positions.AvailableCampuses(),
	})
}

// GetCampuses handles GET /api/v1/context/campuses
// @Summary Available campuses
// @Description Campuses of the selected institute covered by an active position
// @Tags Context
// @Produce json
// @Success 200 {object} models.APIResponse "Campuses retrieved successfully"
// @Router /context/campuses [get]
func (h *ContextController) GetCampuses(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	success(c, http.StatusOK, "Campuses retrieved successfully", session.Positions.AvailableCampuses())
}

// SelectCampus handles POST /api/v1/context/campus
// @Summary Select campus
// @Description Select a campus of the selected institute; roles are recomputed from the positions
// @Tags Context
// @Accept json
// @Produce json
// @Param request body models.SelectCampusRequest true "Campus selection"
// @Success 200 {object} models.APIResponse "Campus selected"
// @Failure 404 {object} models.APIResponse "Not Found - Campus not available"
// @Failure 409 {object} models.APIResponse "Conflict - No institute selected"
// @Router /context/campus [post]
func (h *ContextController) SelectCampus(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.SelectCampusRequest
	if !bindAndValidate(c, h.logger, &req) {
		return
	}

	var campus *models.Campus
	for _, cc := range session.Positions.AvailableCampuses() {
		if cc.ID == req.CampusID {
			cc := cc
			campus = &cc
			break
		}
	}
	if campus == nil {
		if selected := session.Positions.SelectedContext(); selected == nil || selected.Institute == nil {
			failure(c, http.StatusConflict, "Select an institute first", "ContextError", services.ErrNoInstituteSelected.Error())
			return
		}
		h.logger.Warnf("Rejected selection of campus %d not held by the user", req.CampusID)
		failure(c, http.StatusNotFound, "Campus not available", "ContextError", "no active position on this campus")
		return
	}

	if err := session.Positions.SelectCampus(c.Request.Context(), *campus); err != nil {
		if errors.Is(err, services.ErrNoInstituteSelected) {
			failure(c, http.StatusConflict, "Select an institute first", "ContextError", err.Error())
			return
		}
		h.logger.Errorf("Failed to persist campus selection: %v", err)
		failure(c, http.StatusInternalServerError, "Failed to select campus", "StorageError", err.Error())
		return
	}

	success(c, http.StatusOK, "Campus selected", session.Positions.SelectedContext())
}

// ClearContext handles DELETE /api/v1/context
// @Summary Clear selection
// @Tags Context
// @Produce json
// @Success 200 {object} models.APIResponse "Selection cleared"
// @Router /context [delete]
func (h *ContextController) ClearContext(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	session.Positions.ClearSelection(c.Request.Context())
	success(c, http.StatusOK, "Selection cleared", session.Positions.SelectedContext())
}

// ClearCampus handles DELETE /api/v1/context/campus
// @Summary Clear campus selection
// @Tags Context
// @Produce json
// @Success 200 {object} models.APIResponse "Campus cleared"
// @Router /context/campus [delete]
func (h *ContextController) ClearCampus(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	session.Positions.ClearCampusSelection(c.Request.Context())
	success(c, http.StatusOK, "Campus cleared", session.Positions.SelectedContext())
}

// ClearRoles handles DELETE /api/v1/context/roles
// @Summary Clear derived roles
// @Tags Context
// @Produce json
// @Success 200 {object} models.APIResponse "Roles cleared"
// @Router /context/roles [delete]
func (h *ContextController) ClearRoles(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	session.Positions.ClearRolesSelection(c.Request.Context())
	success(c, http.StatusOK, "Roles cleared", session.Positions.SelectedContext())
}

// Link handles POST /api/v1/context/link
// @Summary Build a context link
// @Description Encode the selected context plus navigation fields into a ctx token. A pending campus is encoded as -1.
// @Tags Context
// @Accept json
// @Produce json
// @Param request body models.ContextLinkRequest true "Navigation fields"
// @Success 200 {object} models.APIResponse "Link built"
// @Failure 409 {object} models.APIResponse "Conflict - No institute selected"
// @Router /context/link [post]
func (h *ContextController) Link(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req models.ContextLinkRequest
	if !bindAndValidate(c, h.logger, &req) {
		return
	}

	selected := session.Positions.SelectedContext()
	if selected == nil || selected.Institute == nil {
		failure(c, http.StatusConflict, "Select an institute first", "ContextError", services.ErrNoInstituteSelected.Error())
		return
	}

	params := models.ContextParams{
		InstituteID: models.Int64(selected.Institute.ID),
		CampusID:    models.Int64(models.CampusPendingID),
		CourseID:    req.CourseID,
		Mode:        req.Mode,
		Step:        req.Step,
		IsEdit:      req.IsEdit,
	}
	if selected.Campus != nil {
		params.CampusID = models.Int64(selected.Campus.ID)
	}

	query := ctxtoken.BuildQueryParams(params)
	success(c, http.StatusOK, "Link built", models.ContextLink{
		Token: query.Get(ctxtoken.QueryKey),
		Query: query.Encode(),
	})
}
