package dal

import (
	"context"
	"net/http"
	"strings"
)

type publicRouteKey struct{}

// WithPublicRoute marks ctx as serving a public BFF route
func WithPublicRoute(ctx context.Context) context.Context {
	return context.WithValue(ctx, publicRouteKey{}, true)
}

// IsPublicRoute reports whether ctx serves a public BFF route
func IsPublicRoute(ctx context.Context) bool {
	public, _ := ctx.Value(publicRouteKey{}).(bool)
	return public
}

// UnauthorizedInterceptor reports backend 401 responses so the session can be cleared.
// The login endpoint and requests made while serving a public route are exempt.
type UnauthorizedInterceptor struct {
	Next           http.RoundTripper
	LoginPath      string
	OnUnauthorized func(ctx context.Context)
}

// RoundTrip implements http.RoundTripper
func (i *UnauthorizedInterceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	next := i.Next
	if next == nil {
		next = http.DefaultTransport
	}

	resp, err := next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized &&
		!strings.HasSuffix(req.URL.Path, i.LoginPath) &&
		!IsPublicRoute(req.Context()) &&
		i.OnUnauthorized != nil {
		i.OnUnauthorized(req.Context())
	}

	return resp, nil
}
