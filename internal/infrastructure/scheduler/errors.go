package scheduler

import "errors"

var (
	// ErrAlreadyRunning is returned when Start is called twice
	ErrAlreadyRunning = errors.New("scheduler is already running")

	// ErrInvalidInterval is returned when a job is registered without a positive interval
	ErrInvalidInterval = errors.New("job interval must be positive")

	// ErrJobNotFound is returned for an unknown job name
	ErrJobNotFound = errors.New("job not found")
)
