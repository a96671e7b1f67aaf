package state

import (
	"maps"
	"slices"
)

// Cloner is implemented by values that hold slices or maps and must be
// deep-copied when a snapshot is taken.
type Cloner interface {
	Clone() any
}

// Store is the working memory of a single workflow run. It is owned by one
// run and is not safe for concurrent use.
type Store struct {
	values map[string]any
}

func NewStore() *Store {
	return &Store{values: make(map[string]any, 8)}
}

func (s *Store) Set(key string, value any) {
	if s.values == nil {
		s.values = make(map[string]any, 8)
	}
	s.values[key] = value
}

// Get returns the stored value or def when key is absent.
func (s *Store) Get(key string, def any) any {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

func (s *Store) Lookup(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns stored keys in sorted order.
func (s *Store) Keys() []string {
	return slices.Sorted(maps.Keys(s.values))
}

// Snapshot returns an independent copy of every stored value. Mutating the
// result never affects the store.
func (s *Store) Snapshot() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = cloneValue(v)
	}
	return out
}

// Value fetches key from a store or snapshot-like map as T.
func Value[T any](src map[string]any, key string) (T, bool) {
	var zero T
	raw, ok := src[key]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Typed fetches key from the live store as T.
func Typed[T any](s *Store, key string) (T, bool) {
	return Value[T](s.values, key)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Cloner:
		return t.Clone()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	case []string:
		return slices.Clone(t)
	case map[string]string:
		return maps.Clone(t)
	default:
		return v
	}
}
