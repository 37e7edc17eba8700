package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrNotConfigured is returned when a service is invoked without its
	// required collaborators.
	ErrNotConfigured = errors.New("application: service not configured")
)
