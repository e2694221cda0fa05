package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrPayloadTooLarge = errors.New("payload too large")

	errComputeFailed = errors.New("compute failed")
	errSubmitFailed  = errors.New("submit failed")
	errLookupFailed  = errors.New("lookup failed")
)

// KindError tags an error with the operation that failed and a sentinel kind.
// errors.Is matches both the kind and the wrapped cause.
type KindError struct {
	Op   string
	Kind error
	Err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *KindError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// WrapKind wraps err as kind for op.
func WrapKind(op string, kind, err error) error {
	return &KindError{Op: op, Kind: kind, Err: err}
}

