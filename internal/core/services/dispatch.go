package services

import (
	"sort"
	"sync"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// delivery is a queued snapshot. A zero target goes to every observer
// registered at publish time, i.e. with an id up to upTo.
type delivery struct {
	state  domain.SessionState
	target int
	upTo   int
}

// dispatcher delivers snapshots to observers on its own goroutine, in the
// order they were published. Observers may call back into the session.
type dispatcher struct {
	mu        sync.Mutex
	queue     []delivery
	observers map[int]func(domain.SessionState)
	nextID    int
	closed    bool

	wake     chan struct{}
	finished chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		observers: make(map[int]func(domain.SessionState)),
		wake:      make(chan struct{}, 1),
		finished:  make(chan struct{}),
	}
	go d.run()
	return d
}

// subscribe registers fn and queues current as its first snapshot.
func (d *dispatcher) subscribe(fn func(domain.SessionState), current domain.SessionState) func() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return func() {}
	}
	d.nextID++
	id := d.nextID
	d.observers[id] = fn
	d.queue = append(d.queue, delivery{state: current, target: id})
	d.mu.Unlock()
	d.signal()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.observers, id)
			d.mu.Unlock()
		})
	}
}

func (d *dispatcher) publish(state domain.SessionState) {
	d.mu.Lock()
	if d.closed || len(d.observers) == 0 {
		d.mu.Unlock()
		return
	}
	d.queue = append(d.queue, delivery{state: state, upTo: d.nextID})
	d.mu.Unlock()
	d.signal()
}

// close stops accepting snapshots; already queued ones are still delivered.
func (d *dispatcher) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	d.signal()
}

// wait blocks until every queued snapshot has been delivered after close.
func (d *dispatcher) wait() {
	<-d.finished
}

func (d *dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	defer close(d.finished)
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			closed := d.closed
			d.mu.Unlock()
			if closed {
				return
			}
			<-d.wake
			continue
		}
		batch := d.queue
		d.queue = nil
		ids := make([]int, 0, len(d.observers))
		for id := range d.observers {
			ids = append(ids, id)
		}
		observers := make(map[int]func(domain.SessionState), len(d.observers))
		for id, fn := range d.observers {
			observers[id] = fn
		}
		d.mu.Unlock()

		sort.Ints(ids)
		for _, item := range batch {
			if item.target != 0 {
				if fn, ok := observers[item.target]; ok {
					fn(item.state)
				}
				continue
			}
			for _, id := range ids {
				if id <= item.upTo {
					observers[id](item.state)
				}
			}
		}
	}
}
