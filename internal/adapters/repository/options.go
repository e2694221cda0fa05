// Package repository defines the job store interface and errors.
package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithRetention caps how many finished jobs are kept. Older finished jobs
// are evicted first. Zero or negative keeps everything.
func WithRetention(n int) Option {
	return func(s *MemoryStore) {
		s.retention = n
	}
}
