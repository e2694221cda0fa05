package alpha

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInsufficientData reports that no item was rated by at least two coders.
	ErrInsufficientData = errors.New("no items to compare")
	ErrConversion       = errors.New("rating conversion failed")
	ErrUnknownMetric    = errors.New("unknown metric")
	ErrInvalidMetric    = errors.New("invalid metric")
)
