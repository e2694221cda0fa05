package loader

import "errors"

// Sentinel kinds for loader errors.
var (
	ErrMalformedTable = errors.New("malformed table")
	ErrMalformedJSON  = errors.New("malformed rating document")
	ErrInvalidOption  = errors.New("invalid loader option")
	ErrEmptyInput     = errors.New("no ratings in input")
)
