package repository

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithIDGenerator replaces the UUID generator used for athletes saved
// without an ID.
func WithIDGenerator(gen func() string) Option {
	return func(s *InMemoryStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}
