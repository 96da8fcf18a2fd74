package cache

import (
	"strconv"

	"golang.org/x/sync/singleflight"

	"solde/internal/metrics"
)

// Loader fronts an LRUCache with a load function. Concurrent misses for the
// same key share one load.
type Loader[T any] struct {
	name  string
	cache *LRUCache[T]
	group singleflight.Group
}

func NewLoader[T any](name string, cache *LRUCache[T]) *Loader[T] {
	return &Loader[T]{name: name, cache: cache}
}

// Get returns the cached value for key or calls load. Errors are not cached.
// Callers arriving after an Invalidate never join a load started before it.
func (l *Loader[T]) Get(key string, load func() (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		metrics.CacheLookups.WithLabelValues(l.name, "hit").Inc()
		return v, nil
	}
	metrics.CacheLookups.WithLabelValues(l.name, "miss").Inc()

	gen := l.cache.generation()
	v, err, _ := l.group.Do(strconv.FormatUint(gen, 10)+":"+key, func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		l.cache.setIfGeneration(gen, key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached entry.
func (l *Loader[T]) Invalidate() {
	l.cache.Clear()
}

func (l *Loader[T]) Cache() *LRUCache[T] { return l.cache }
