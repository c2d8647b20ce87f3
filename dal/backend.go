package dal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"planner-bff/models"
	"planner-bff/utils/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/gjson"
)

// Backend REST endpoints
const (
	PathLogin        = "/auth/login"
	PathLogout       = "/auth/logout"
	PathAuthStatus   = "/auth/status"
	PathMyPositions  = "/users/me/positions"
	PathCourses      = "/courses"
	PathEnumerations = "/enumerations"
	PathAgentChat    = "/ai-agent/chat"
	PathAgentReport  = "/ai-agent/report"
)

var backendResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "planner_backend_responses_total",
	Help: "Backend responses by method and status class.",
}, []string{"method", "status_class"})

// BackendError is a non-2xx response from the backend
type BackendError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

// StatusOf returns the backend status carried by err, or 0
func StatusOf(err error) int {
	var be *BackendError
	if errors.As(err, &be) {
		return be.StatusCode
	}
	return 0
}

// IsUnauthorized reports a backend 401
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsForbidden reports a backend 403
func IsForbidden(err error) bool { return StatusOf(err) == http.StatusForbidden }

// IsNotFound reports a backend 404
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// BackendClient calls the institutional REST backend on behalf of one BFF session.
// Backend session cookies live in the client's jar and are attached to every request.
type BackendClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        *resettableJar
	logger     logger.Logger
}

// NewBackendClient creates a backend client whose 401 responses are reported to onUnauthorized
func NewBackendClient(cfg *models.Config, log logger.Logger, onUnauthorized func(ctx context.Context)) (*BackendClient, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BackendBaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend base url must be absolute: %q", cfg.BackendBaseURL)
	}

	jar, err := newResettableJar()
	if err != nil {
		return nil, err
	}

	return &BackendClient{
		baseURL: base,
		httpClient: &http.Client{
			Timeout: cfg.BackendTimeout,
			Jar:     jar,
			Transport: &UnauthorizedInterceptor{
				Next:           http.DefaultTransport,
				LoginPath:      PathLogin,
				OnUnauthorized: onUnauthorized,
			},
		},
		jar:    jar,
		logger: log,
	}, nil
}

// Get performs a GET and decodes the (unwrapped) response into out
func (b *BackendClient) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return b.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST with a JSON body and decodes the response into out
func (b *BackendClient) Post(ctx context.Context, path string, body, out interface{}) error {
	return b.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Do performs a request. Non-2xx statuses are returned as *BackendError.
// A response shaped {"data": ...} is unwrapped before decoding.
func (b *BackendClient) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := b.endpoint(path, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build backend request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		backendResponsesTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("backend %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	backendResponsesTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode/100)+"xx").Inc()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read backend response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b.logger.Debugf("Backend %s %s returned %d", method, path, resp.StatusCode)
		return &BackendError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(respBody),
		}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	payload := unwrapEnvelope(respBody)
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], payload...)
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode backend response for %s: %w", path, err)
	}
	return nil
}

// Cookies returns the backend cookies currently held for the base URL
func (b *BackendClient) Cookies() []*http.Cookie {
	return b.jar.Cookies(b.baseURL)
}

// RestoreCookies loads previously persisted backend cookies
func (b *BackendClient) RestoreCookies(cookies []*http.Cookie) {
	b.jar.SetCookies(b.baseURL, cookies)
}

// ResetCookies drops all backend cookies
func (b *BackendClient) ResetCookies() {
	b.jar.Reset()
}

func (b *BackendClient) endpoint(path string, query url.Values) string {
	u := *b.baseURL
	u.Path = strings.TrimRight(b.baseURL.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// unwrapEnvelope returns the "data" member of an enveloped object, or the body itself
func unwrapEnvelope(body []byte) []byte {
	parsed := gjson.ParseBytes(body)
	if parsed.IsObject() {
		if data := parsed.Get("data"); data.Exists() {
			return []byte(data.Raw)
		}
	}
	return body
}

// resettableJar is a cookie jar that can be emptied on session teardown
type resettableJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newResettableJar() (*resettableJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &resettableJar{jar: jar}, nil
}

func (j *resettableJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *resettableJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *resettableJar) Reset() {
	fresh, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.jar = fresh
	j.mu.Unlock()
}
