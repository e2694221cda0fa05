package loader

// Option applies a configuration option to table reading.
type Option func(*options)

type options struct {
	delimiter   rune
	orientation Orientation
	header      bool
}

func newOptions(opts []Option) options {
	o := options{orientation: CodersAsRows}

	// Apply all options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithDelimiter sets the column separator, e.g. ',' or '\t'. Zero splits on
// runs of whitespace.
func WithDelimiter(r rune) Option {
	return func(o *options) {
		o.delimiter = r
	}
}

// WithOrientation says whether rows are coders or items.
func WithOrientation(or Orientation) Option {
	return func(o *options) {
		if or != "" {
			o.orientation = or
		}
	}
}

// WithHeader marks the first row as labels: item IDs when rows are coders,
// coder names (ignored) when rows are items.
func WithHeader(header bool) Option {
	return func(o *options) {
		o.header = header
	}
}
