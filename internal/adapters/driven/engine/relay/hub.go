package relay

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
)

// Ensure Hub implements the interfaces.
var (
	_ driven.EngineFactory     = (*Hub)(nil)
	_ driven.EngineEventRouter = (*Hub)(nil)
)

type hubEntry struct {
	id      string
	engine  *Engine
	variant domain.Variant
}

// Hub creates one relay engine per session and finds it again by id,
// so events posted for a session reach the engine it listens to.
type Hub struct {
	mu        sync.RWMutex
	entries   map[string]hubEntry
	available bool
}

// NewHub creates a hub. When available is true, new engines start available,
// which suits bridges that only connect once the engine script has loaded.
func NewHub(available bool) *Hub {
	return &Hub{entries: make(map[string]hubEntry), available: available}
}

// Create implements driven.EngineFactory.
func (h *Hub) Create(id string, variant domain.Variant) (driven.TrackingEngineProvider, error) {
	if !variant.Engine.IsValid() {
		return nil, fmt.Errorf("%w: engine %q", domain.ErrUnsupportedType, variant.Engine)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.entries[id]; exists {
		return nil, fmt.Errorf("%w: engine for %s", domain.ErrAlreadyExists, id)
	}
	e := New()
	e.available = h.available
	h.entries[id] = hubEntry{id: id, engine: e, variant: variant}
	return e, nil
}

// Engine returns the engine created for id.
func (h *Hub) Engine(id string) (*Engine, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entry, ok := h.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: engine for %s", domain.ErrNotFound, id)
	}
	return entry.engine, nil
}

// Engines returns the engines of a session and its multi-target members,
// ordered by id.
func (h *Hub) Engines(sessionID string) []*Engine {
	entries := h.session(sessionID)
	out := make([]*Engine, len(entries))
	for i, entry := range entries {
		out[i] = entry.engine
	}
	return out
}

func (h *Hub) session(sessionID string) []hubEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []hubEntry
	for id, entry := range h.entries {
		if belongs(id, sessionID) {
			out = append(out, entry)
		}
	}
	slices.SortFunc(out, func(a, b hubEntry) int { return compareMemberIDs(a.id, b.id) })
	return out
}

// compareMemberIDs orders a session before its members and members by
// their numeric suffix, so "s/2" sorts before "s/10".
func compareMemberIDs(a, b string) int {
	ai, aok := memberIndex(a)
	bi, bok := memberIndex(b)
	switch {
	case aok && bok && ai != bi:
		return cmp.Compare(ai, bi)
	case aok != bok:
		if aok {
			return 1
		}
		return -1
	}
	return strings.Compare(a, b)
}

func memberIndex(id string) (int, bool) {
	i := strings.LastIndexByte(id, '/')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Route implements driven.EngineEventRouter. Target events for a
// multi-target session go to the member tracking that target, matched by
// id and then by index; everything else is broadcast to every member.
func (h *Hub) Route(sessionID string, ev domain.EngineEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	entries := h.session(sessionID)
	if len(entries) == 0 {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
	}

	if len(entries) > 1 && (ev.Type == domain.EventTargetFound || ev.Type == domain.EventTargetLost) {
		if i := memberFor(entries, ev); i >= 0 {
			ev.TargetIndex = 0
			return entries[i].engine.Emit(ev)
		}
	}

	var errs []error
	for _, entry := range entries {
		if err := entry.engine.Emit(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func memberFor(entries []hubEntry, ev domain.EngineEvent) int {
	if ev.TargetID != "" {
		for i, entry := range entries {
			if slices.Contains(entry.variant.Targets, ev.TargetID) {
				return i
			}
		}
	}
	if ev.TargetIndex >= 0 && ev.TargetIndex < len(entries) {
		return ev.TargetIndex
	}
	return -1
}

// Remove forgets a session's engines, including multi-target members.
func (h *Hub) Remove(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.entries {
		if belongs(id, sessionID) {
			delete(h.entries, id)
		}
	}
}

func belongs(id, sessionID string) bool {
	return id == sessionID || strings.HasPrefix(id, sessionID+"/")
}
