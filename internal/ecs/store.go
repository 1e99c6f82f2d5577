package ecs

// Store is a slot array for one attribute type, indexed by Entity.Index.
// Presence is tracked separately so the zero value of T is a valid attribute.
type Store[T any] struct {
	vals []T
	has  []bool
}

// NewStore creates an empty attribute store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		vals: make([]T, 0, 64),
		has:  make([]bool, 0, 64),
	}
}

func (s *Store[T]) grow(idx uint32) {
	for uint32(len(s.vals)) <= idx {
		var zero T
		s.vals = append(s.vals, zero)
		s.has = append(s.has, false)
	}
}

// Set inserts or replaces the attribute for e.
func (s *Store[T]) Set(e Entity, v T) {
	s.grow(e.Index)
	s.vals[e.Index] = v
	s.has[e.Index] = true
}

// Get returns the attribute for e.
func (s *Store[T]) Get(e Entity) (T, bool) {
	if int(e.Index) >= len(s.vals) || !s.has[e.Index] {
		var zero T
		return zero, false
	}
	return s.vals[e.Index], true
}

// Ptr returns a pointer to the attribute for in-place mutation, or nil.
// The pointer is invalidated by the next Set on a higher index.
func (s *Store[T]) Ptr(e Entity) *T {
	if int(e.Index) >= len(s.vals) || !s.has[e.Index] {
		return nil
	}
	return &s.vals[e.Index]
}

// Has reports whether e carries this attribute.
func (s *Store[T]) Has(e Entity) bool {
	return int(e.Index) < len(s.has) && s.has[e.Index]
}

// Remove drops the attribute for e.
func (s *Store[T]) Remove(e Entity) {
	if int(e.Index) >= len(s.vals) {
		return
	}
	var zero T
	s.vals[e.Index] = zero
	s.has[e.Index] = false
}

// Reset removes every attribute.
func (s *Store[T]) Reset() {
	s.vals = s.vals[:0]
	s.has = s.has[:0]
}
