package cache

// Cache is a get-or-compute memo keyed by string
type Cache[V any] interface {
	Get(key string) (V, bool)
	GetOrCompute(key string, compute func() V) V
	Values() []V
}

var _ Cache[int] = (*MemoryCache[int])(nil)
