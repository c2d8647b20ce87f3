package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"planner-bff/dal"
	"planner-bff/models"
	"planner-bff/services"
	"planner-bff/utils/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "bff_session"

// SessionMiddleware binds requests to BFF sessions through a signed session cookie
type SessionMiddleware struct {
	Config  *models.Config
	Logger  logger.Logger
	Manager services.SessionManagerInterface
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(cfg *models.Config, log logger.Logger, manager services.SessionManagerInterface) *SessionMiddleware {
	return &SessionMiddleware{
		Config:  cfg,
		Logger:  log,
		Manager: manager,
	}
}

// IssueToken signs a session cookie value for the session id
func (m *SessionMiddleware) IssueToken(sessionID string) (string, error) {
	now := time.Now()
	claims := models.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Config.AppName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.Config.SessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.Config.SessionSecret))
	if err != nil {
		m.Logger.Errorf("Failed to sign session token: %v", err)
		return "", err
	}
	return signed, nil
}

// ParseToken validates a session cookie value and returns its claims
func (m *SessionMiddleware) ParseToken(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.Config.SessionSecret), nil
	}, jwt.WithIssuer(m.Config.AppName))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// LoadSession attaches the caller's session, rehydrating it when needed. It never aborts.
func (m *SessionMiddleware) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(m.Config.SessionCookieName)
		if err != nil || cookie == "" {
			c.Next()
			return
		}

		claims, err := m.ParseToken(cookie)
		if err != nil {
			m.Logger.Debugf("Ignoring invalid session cookie: %v", err)
			c.Next()
			return
		}

		if session, ok := m.Manager.Resume(c.Request.Context(), claims.SessionID); ok {
			SetSession(c, session)
		}
		c.Next()
	}
}

// EnsureSession returns the caller's session, creating one and setting its cookie if needed
func (m *SessionMiddleware) EnsureSession(c *gin.Context) (*services.Session, error) {
	if session, ok := GetSession(c); ok {
		return session, nil
	}

	session, err := m.Manager.Create()
	if err != nil {
		return nil, err
	}
	token, err := m.IssueToken(session.ID)
	if err != nil {
		m.Manager.Remove(session.ID)
		return nil, err
	}

	m.setCookie(c, token, int(m.Config.SessionTTL.Seconds()))
	SetSession(c, session)
	return session, nil
}

// RenewSession replaces the caller's session with a fresh one under a new id and cookie
func (m *SessionMiddleware) RenewSession(c *gin.Context) (*services.Session, error) {
	if previous, ok := GetSession(c); ok {
		m.Manager.Remove(previous.ID)
		SetSession(c, nil)
	}
	return m.EnsureSession(c)
}

// EndSession drops the session from memory and expires its cookie
func (m *SessionMiddleware) EndSession(c *gin.Context) {
	if session, ok := GetSession(c); ok {
		m.Manager.Remove(session.ID)
	}
	m.setCookie(c, "", -1)
}

// PublicRoute marks the request as serving a public route; backend 401s then keep the session
func PublicRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(dal.WithPublicRoute(c.Request.Context()))
		c.Next()
	}
}

// GetSession returns the session attached to the request
func GetSession(c *gin.Context) (*services.Session, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	session, ok := value.(*services.Session)
	return session, ok && session != nil
}

// SetSession attaches a session to the request
func SetSession(c *gin.Context, session *services.Session) {
	c.Set(sessionKey, session)
}

func (m *SessionMiddleware) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.Config.SessionCookieName, value, maxAge, "/", "", m.Config.CookieSecure, true)
}
