package arbor

import "slices"

// orderedSet keeps insertion order and gives constant time membership tests.
// The zero value is ready to use.
type orderedSet[T comparable] struct {
	index map[T]int
	items []T
}

// add returns false when v was already present.
func (s *orderedSet[T]) add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[v]; ok {
		return false
	}

	s.index[v] = len(s.items)
	s.items = append(s.items, v)

	return true
}

func (s *orderedSet[T]) remove(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}

	delete(s.index, v)
	s.items = slices.Delete(s.items, i, i+1)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}

	return true
}

func (s *orderedSet[T]) has(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s *orderedSet[T]) len() int {
	return len(s.items)
}

// snapshot returns a copy, safe to iterate while the set is modified.
func (s *orderedSet[T]) snapshot() []T {
	return slices.Clone(s.items)
}

func (s *orderedSet[T]) clear() {
	clear(s.index)
	s.items = s.items[:0]
}

// SubscriptionID identifies a registered callback. Zero is never issued.
type SubscriptionID uint64

type subscriber[F any] struct {
	id SubscriptionID
	fn F
}

type subscribers[F any] struct {
	next    SubscriptionID
	entries []subscriber[F]
}

func (s *subscribers[F]) add(fn F) SubscriptionID {
	s.next++
	s.entries = append(s.entries, subscriber[F]{id: s.next, fn: fn})

	return s.next
}

func (s *subscribers[F]) remove(id SubscriptionID) bool {
	for i, e := range s.entries {
		if e.id == id {
			s.entries = slices.Delete(s.entries, i, i+1)
			return true
		}
	}

	return false
}

func (s *subscribers[F]) has(id SubscriptionID) bool {
	for _, e := range s.entries {
		if e.id == id {
			return true
		}
	}

	return false
}

func (s *subscribers[F]) len() int {
	return len(s.entries)
}

func (s *subscribers[F]) clear() {
	s.entries = nil
}

// each calls visit on the callbacks registered when it starts, skipping those removed meanwhile.
func (s *subscribers[F]) each(visit func(fn F)) {
	for _, e := range slices.Clone(s.entries) {
		if s.has(e.id) {
			visit(e.fn)
		}
	}
}
