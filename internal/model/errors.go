package model

import "errors"

// Common errors used across the application
var (
	// Storage errors
	ErrKeyNotFound    = errors.New("key not found")
	ErrStorageFailure = errors.New("unable to save data")

	// Input errors
	ErrValidation      = errors.New("validation failed")
	ErrInvalidPosition = errors.New("invalid score position")

	// Game errors
	ErrGameNotFound = errors.New("game not found")

	// Session errors
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionNotStarted     = errors.New("session has not started")
	ErrSessionFinished       = errors.New("session is already finished")
	ErrActiveSessionNotFound = errors.New("active session not found")

	// Import errors
	ErrInvalidFormat  = errors.New("invalid backup file format")
	ErrImportDeclined = errors.New("import was not confirmed")
)
