package services

import "errors"

// Report service errors
var (
	ErrNoReportsFound = errors.New("no reports found")
	ErrNoUploadsFound = errors.New("no upload records found")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
