package driven

// Cache is a read-through cache with TTL expiry. Entries are replaced
// wholesale on refresh and never partially mutated.
type Cache interface {
	// Get returns the cached value for key, or false if absent/expired.
	Get(key string) (any, bool)

	// Set stores or replaces the value for key.
	Set(key string, value any)
}
