package logger

import (
	"errors"
	"io"
	"os"
)

// Output formats accepted by WithFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned by InitWithOptions for an unsupported format.
var ErrUnknownFormat = errors.New("unknown log format")

// Option configures InitWithOptions.
type Option func(*options)

type options struct {
	format string
	writer io.Writer
}

func newOptions(opts []Option) options {
	o := options{format: FormatText, writer: os.Stdout}

	// Apply all options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFormat selects "text" or "json" output. An empty value keeps text.
func WithFormat(format string) Option {
	return func(o *options) {
		if format != "" {
			o.format = format
		}
	}
}

// WithWriter redirects log output, e.g. to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}
