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

type AuthController struct {
	sessions *middleware.SessionMiddleware
	logger   logger.Logger
}

func NewAuthController(sessions *middleware.SessionMiddleware, logger logger.Logger) *AuthController {
	return &AuthController{
		sessions: sessions,
		logger:   logger,
	}
}

// Login handles POST /api/v1/auth/login
// @Summary Log in
// @Description Authenticate against the backend and bind the backend session to the BFF session cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.Credentials true "Login credentials"
// @Success 200 {object} models.APIResponse "Login successful"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid input"
// @Failure 401 {object} models.APIResponse "Unauthorized - Invalid credentials"
// @Failure 502 {object} models.APIResponse "Bad Gateway - Backend unavailable"
// @Router /auth/login [post]
func (h *AuthController) Login(c *gin.Context) {
	var req models.Credentials
	if !bindAndValidate(c, h.logger, &req) {
		return
	}

	// a login always starts from a fresh session; the previous user is logged out first
	if previous, ok := middleware.GetSession(c); ok && previous.Auth.IsAuthenticated() {
		previous.Auth.Logout(c.Request.Context())
	}
	session, err := h.sessions.RenewSession(c)
	if err != nil {
		h.logger.Errorf("Failed to create session: %v", err)
		failure(c, http.StatusInternalServerError, "Login failed", "SessionError", err.Error())
		return
	}

	profile, err := session.Auth.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			failure(c, http.StatusUnauthorized, "Invalid email or password", "AuthenticationError", err.Error())
			return
		}
		backendFailure(c, h.logger, "Login failed", err)
		return
	}

	success(c, http.StatusOK, "Login successful", session.Auth.Session())
	h.logger.Debugf("Session %s bound to user %d", session.ID, profile.ID)
}

// Logout handles POST /api/v1/auth/logout
// @Summary Log out
// @Description Notify the backend and clear the session; the session is cleared even if the backend call fails
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.APIResponse "Logged out"
// @Router /auth/logout [post]
func (h *AuthController) Logout(c *gin.Context) {
	landing := services.LandingRoute
	if session, ok := middleware.GetSession(c); ok {
		landing = session.Auth.Logout(c.Request.Context())
	}
	h.sessions.EndSession(c)

	success(c, http.StatusOK, "Logged out", gin.H{"redirect": landing})
}

// Status handles GET /api/v1/auth/status
// @Summary Authentication status
// @Description Revalidate the session with the backend
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.APIResponse "Authentication status"
// @Router /auth/status [get]
func (h *AuthController) Status(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		success(c, http.StatusOK, "Not authenticated", models.AuthSession{})
		return
	}

	if !session.Auth.CheckAuthStatus(c.Request.Context()) {
		success(c, http.StatusOK, "Not authenticated", models.AuthSession{})
		return
	}
	success(c, http.StatusOK, "Authenticated", session.Auth.Session())
}
