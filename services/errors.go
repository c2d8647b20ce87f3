package services

import "errors"

var (
	ErrNotAuthenticated         = errors.New("not authenticated")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrNoInstituteSelected      = errors.New("no institute selected")
	ErrPermanentFilterViolation = errors.New("attempt to modify a permanent filter")
	ErrContextNotReady          = errors.New("selected context not ready")
	ErrInvalidFilterValue       = errors.New("invalid filter value")
)
