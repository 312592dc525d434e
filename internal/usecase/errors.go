package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrTokenNotConfigured is returned when a sync is requested before
	// the provider access token has been stored in settings. It must
	// stay distinct from provider outages so callers can tell a
	// configuration gap from a transient failure.
	ErrTokenNotConfigured = errors.New("provider token not configured")

	// ErrNothingSelected is the export refusal: no aggregated fixture
	// is marked for calendar export.
	ErrNothingSelected = errors.New("no fixtures selected")
)
