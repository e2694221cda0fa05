package repository

import "errors"

// Sentinel kinds for job store errors.
var (
	ErrNotFound          = errors.New("job not found")
	ErrJobExists         = errors.New("job already exists")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrInvalidID         = errors.New("invalid job id")
)
