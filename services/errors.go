package services

import "errors"

// Error taxonomy for tree operations. Controllers map these to HTTP statuses
// with errors.Is; services wrap them with fmt.Errorf("...: %w", ...) so the
// kind stays recoverable through the wrapping.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrDuplicateName  = errors.New("duplicate name")
	ErrInvalidParent  = errors.New("invalid parent")
	ErrInvalidType    = errors.New("invalid type")
	ErrInvalidName    = errors.New("invalid name")
	ErrCascadeFailure = errors.New("cascade delete failed")
)
