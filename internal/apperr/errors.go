package apperr

import "errors"

// ErrInvalid is returned when the input fails validation (HTTP 400).
var ErrInvalid = errors.New("invalid input")

// ErrNotFound indicates that the requested resource does not exist (HTTP 404).
var ErrNotFound = errors.New("not found")
