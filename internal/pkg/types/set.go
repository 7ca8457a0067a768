// Package types holds small generic containers shared across services.
package types

// Set is an unordered collection of unique comparable values, backed by a
// map. The zero value is nil and not writable; construct with NewSet.
type Set[T comparable] map[T]struct{}

// NewSet builds a Set holding the given values.
func NewSet[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add inserts v. Adding an existing value is a no-op.
func (s Set[T]) Add(v T) {
	s[v] = struct{}{}
}

// Delete removes v if present.
func (s Set[T]) Delete(v T) {
	delete(s, v)
}

// Contains reports whether v is in the set.
func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in unspecified order.
func (s Set[T]) Values() []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}
