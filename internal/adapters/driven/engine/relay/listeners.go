package relay

import "sort"

// listeners is an ordered set of callbacks keyed by registration id.
type listeners[T any] struct {
	fns map[int]func(T)
}

func (l *listeners[T]) add(id int, fn func(T)) {
	if l.fns == nil {
		l.fns = make(map[int]func(T))
	}
	l.fns[id] = fn
}

func (l *listeners[T]) remove(id int) {
	delete(l.fns, id)
}

func (l *listeners[T]) len() int {
	return len(l.fns)
}

// snapshot returns the callbacks in registration order.
func (l *listeners[T]) snapshot() []func(T) {
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(T), len(ids))
	for i, id := range ids {
		out[i] = l.fns[id]
	}
	return out
}
