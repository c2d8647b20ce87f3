package controller

import (
	"errors"
	"net/http"
	"strings"

	"planner-bff/dal"
	"planner-bff/middleware"
	"planner-bff/models"
	"planner-bff/services"
	"planner-bff/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func success(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.APIResponse{
		Status:  "success",
		Code:    status,
		Message: message,
		Data:    data,
	})
}

func failure(c *gin.Context, status int, message, errType, details string) {
	c.JSON(status, models.APIResponse{
		Status:  "error",
		Code:    status,
		Message: message,
		Error: &models.APIError{
			Type:    errType,
			Details: details,
		},
	})
}

// bindAndValidate decodes the JSON body and runs struct validation, answering 400 on failure
func bindAndValidate(c *gin.Context, log logger.Logger, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		log.Debugf("Failed to bind JSON: %v", err)
		failure(c, http.StatusBadRequest, "Invalid request", "ValidationError", err.Error())
		return false
	}
	if err := validate.Struct(req); err != nil {
		failure(c, http.StatusBadRequest, "Validation failed", "ValidationError", formatValidationErrors(err))
		return false
	}
	return true
}

// formatValidationErrors formats validation errors into readable messages
func formatValidationErrors(err error) string {
	var messages []string

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			switch fieldError.Tag() {
			case "required":
				messages = append(messages, fieldError.Field()+" is required")
			case "email":
				messages = append(messages, fieldError.Field()+" must be a valid email address")
			case "min", "gte", "gt":
				messages = append(messages, fieldError.Field()+" must be at least "+fieldError.Param())
			case "max":
				messages = append(messages, fieldError.Field()+" must be at most "+fieldError.Param()+" characters")
			case "oneof":
				messages = append(messages, fieldError.Field()+" must be one of: "+strings.ReplaceAll(fieldError.Param(), " ", ", "))
			default:
				messages = append(messages, fieldError.Field()+" is invalid")
			}
		}
	}
	if len(messages) == 0 {
		return err.Error()
	}
	return strings.Join(messages, "; ")
}

// backendFailure answers an API call whose backend request failed
func backendFailure(c *gin.Context, log logger.Logger, message string, err error) {
	status := backendStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: %v", message, err)
	}
	failure(c, status, message, "BackendError", err.Error())
}

// backendStatus maps a backend failure to the status the BFF answers with
func backendStatus(err error) int {
	switch code := dal.StatusOf(err); {
	case code == http.StatusUnauthorized, code == http.StatusForbidden, code == http.StatusNotFound:
		return code
	case code >= 400 && code < 500:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// requireSession returns the request's session or answers 401
func requireSession(c *gin.Context) (*services.Session, bool) {
	session, ok := middleware.GetSession(c)
	if !ok || !session.Auth.IsAuthenticated() {
		failure(c, http.StatusUnauthorized, "Authentication required", "AuthenticationError", services.ErrNotAuthenticated.Error())
		return nil, false
	}
	return session, true
}

// forceLogout ends a session that tried to change a locked filter
func forceLogout(c *gin.Context, sessions *middleware.SessionMiddleware, log logger.Logger, session *services.Session, reason error) string {
	user := session.Auth.CurrentUser()
	fields := map[string]interface{}{"path": c.Request.URL.Path}
	if user != nil {
		fields["user_id"] = user.ID
	}
	log.WithFields(fields).Warnf("Forcing logout: %v", reason)

	landing := session.Auth.Logout(c.Request.Context())
	sessions.EndSession(c)
	return landing
}

// ensurePositions loads the positions snapshot once per session
func ensurePositions(c *gin.Context, session *services.Session) error {
	if session.Positions.HasPositions() {
		return nil
	}
	return session.Positions.FetchPositions(c.Request.Context())
}
