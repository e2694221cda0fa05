package alpha

// Option applies a configuration option to a computation.
type Option[V comparable] func(*settings[V])

type settings[V comparable] struct {
	convert   Converter[V]
	missing   []V
	forceBulk bool
}

func newSettings[V comparable](opts []Option[V]) settings[V] {
	s := settings[V]{convert: ToFloat[V]}

	// Apply all options
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithConverter replaces the default ToFloat conversion.
func WithConverter[V comparable](conv Converter[V]) Option[V] {
	return func(s *settings[V]) {
		if conv != nil {
			s.convert = conv
		}
	}
}

// WithMissing adds values that mark a rating as absent, e.g. "*" or -1.
func WithMissing[V comparable](values ...V) Option[V] {
	return func(s *settings[V]) {
		s.missing = append(s.missing, values...)
	}
}

// WithForceBulk evaluates a custom metric through the vectorized path. It has
// no effect on built-in metrics, which always use it.
func WithForceBulk[V comparable]() Option[V] {
	return func(s *settings[V]) {
		s.forceBulk = true
	}
}
