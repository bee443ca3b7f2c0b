package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

// Ensure MultiTargetSession implements the interface.
var _ driving.SessionController = (*MultiTargetSession)(nil)

// MultiTargetSession tracks several reference images through independent
// sessions. Its tracking flag is the OR of its members'; no ordering is
// guaranteed between members.
type MultiTargetSession struct {
	id         string
	variant    domain.Variant
	members    []driving.SessionController
	dispatcher *dispatcher

	mu     sync.Mutex
	states []domain.SessionState
	last   domain.SessionState
	unsubs []func()
	closed bool
}

// NewMultiTargetSession composes member sessions. Members must not be started.
func NewMultiTargetSession(id string, variant domain.Variant, members ...driving.SessionController) (*MultiTargetSession, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: multi-target session without members", domain.ErrInvalidInput)
	}
	m := &MultiTargetSession{
		id:         id,
		variant:    variant,
		members:    members,
		dispatcher: newDispatcher(),
		states:     make([]domain.SessionState, len(members)),
	}
	for i, member := range members {
		m.states[i] = member.State()
	}
	m.last = combineStates(m.states)

	for i, member := range members {
		m.unsubs = append(m.unsubs, member.Subscribe(func(s domain.SessionState) {
			m.update(i, s)
		}))
	}
	return m, nil
}

// ID returns the session identifier.
func (m *MultiTargetSession) ID() string {
	return m.id
}

// Variant returns the session configuration.
func (m *MultiTargetSession) Variant() domain.Variant {
	return m.variant
}

// Members returns the composed sessions.
func (m *MultiTargetSession) Members() []driving.SessionController {
	return m.members
}

func (m *MultiTargetSession) update(i int, s domain.SessionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.states[i] = s
	combined := combineStates(m.states)
	if statesEqual(combined, m.last) {
		return
	}
	m.last = combined
	m.dispatcher.publish(combined)
}

// combineStates folds member states into one.
func combineStates(states []domain.SessionState) domain.SessionState {
	out := domain.SessionState{Phase: domain.PhaseTornDown}
	for _, s := range states {
		if s.Error != nil && out.Error == nil {
			out.Error = s.Error
		}
		if s.Tracking {
			if !out.Tracking {
				out.DetectedObjectID = s.DetectedObjectID
			}
			out.Tracking = true
		}
		out.Loading = out.Loading || s.Loading
		if s.Phase < out.Phase {
			out.Phase = s.Phase
		}
	}
	if out.Error != nil {
		out.Phase = domain.PhaseError
		out.Loading = false
		out.Tracking = false
		out.DetectedObjectID = ""
	}
	return out
}

func statesEqual(a, b domain.SessionState) bool {
	return a.Phase == b.Phase && a.Loading == b.Loading && a.Tracking == b.Tracking &&
		a.DetectedObjectID == b.DetectedObjectID && a.Error == b.Error
}

// Start starts every member in order and stops at the first failure.
func (m *MultiTargetSession) Start(ctx context.Context) error {
	for _, member := range m.members {
		if err := member.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// State returns the combined snapshot.
func (m *MultiTargetSession) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Subscribe registers an observer of combined snapshots.
func (m *MultiTargetSession) Subscribe(fn func(domain.SessionState)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispatcher.subscribe(fn, m.last)
}

// Close tears down every member.
func (m *MultiTargetSession) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	unsubs := m.unsubs
	m.unsubs = nil
	m.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
	var errs []error
	for _, member := range m.members {
		if err := member.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	for i := range m.states {
		m.states[i] = domain.SessionState{Phase: domain.PhaseTornDown}
	}
	m.last = combineStates(m.states)
	m.dispatcher.publish(m.last)
	m.mu.Unlock()
	m.dispatcher.close()
	return errors.Join(errs...)
}

// Done blocks until every snapshot published before Close has been delivered.
func (m *MultiTargetSession) Done() {
	m.dispatcher.wait()
}
