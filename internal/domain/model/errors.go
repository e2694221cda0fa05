package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidRating = errors.New("invalid rating")
)
