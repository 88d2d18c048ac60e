package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrNotFound indicates that record was not found or belongs to another user
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists indicates a unique constraint violation
	ErrAlreadyExists = errors.New("record already exists")

	// ErrInUse indicates that record is still referenced and cannot be deleted
	ErrInUse = errors.New("record is referenced by other records")

	// ErrStale indicates that record was modified since the caller read it
	ErrStale = errors.New("record was modified concurrently")
)
