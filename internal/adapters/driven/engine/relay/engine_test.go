package relay

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

func TestEngine_ListenersAndUnsubscribe(t *testing.T) {
	e := NewAvailable()

	var calls []string
	unsubs := []func(){
		e.OnReady(func() { calls = append(calls, "ready") }),
		e.OnError(func(err error) { calls = append(calls, "error:"+err.Error()) }),
		e.OnTargetFound(func(ev domain.TargetEvent) { calls = append(calls, "found:"+ev.TargetID) }),
		e.OnTargetLost(func(ev domain.TargetEvent) { calls = append(calls, "lost:"+ev.TargetID) }),
		e.OnDescriptorsLoaded(func() { calls = append(calls, "loaded") }),
	}
	assert.Equal(t, 5, e.ListenerCount())

	e.EmitReady()
	e.EmitDescriptorsLoaded()
	e.EmitTargetFound(domain.TargetEvent{TargetID: "personne"})
	e.EmitTargetLost(domain.TargetEvent{TargetID: "personne"})
	e.EmitError(errors.New("boom"))

	assert.Equal(t, []string{"ready", "loaded", "found:personne", "lost:personne", "error:boom"}, calls)

	for _, u := range unsubs {
		u()
		u() // idempotent
	}
	assert.Zero(t, e.ListenerCount())

	e.EmitReady()
	assert.Len(t, calls, 5)
}

func TestEngine_EmitSerialised(t *testing.T) {
	e := NewAvailable()
	var seen []domain.EngineEventType
	e.OnTargetFound(func(domain.TargetEvent) { seen = append(seen, domain.EventTargetFound) })
	e.OnTargetLost(func(domain.TargetEvent) { seen = append(seen, domain.EventTargetLost) })

	require.NoError(t, e.Emit(domain.EngineEvent{Type: domain.EventTargetFound, TargetID: "th"}))
	require.NoError(t, e.Emit(domain.EngineEvent{Type: domain.EventTargetLost, TargetID: "th"}))
	assert.Equal(t, []domain.EngineEventType{domain.EventTargetFound, domain.EventTargetLost}, seen)

	assert.ErrorIs(t, e.Emit(domain.EngineEvent{Type: "nope"}), domain.ErrInvalidInput)
}

func TestEngine_EmitAvailableAndError(t *testing.T) {
	e := New()
	assert.False(t, e.IsAvailable())
	require.NoError(t, e.Emit(domain.EngineEvent{Type: domain.EventAvailable}))
	assert.True(t, e.IsAvailable())

	var got error
	e.OnError(func(err error) { got = err })
	require.NoError(t, e.Emit(domain.EngineEvent{Type: domain.EventError, ErrorName: "NotReadableError"}))
	assert.ErrorIs(t, got, domain.ErrCameraInUse)
}

func TestEngine_StartStop(t *testing.T) {
	e := New()
	err := e.Start(domain.Variant{Name: "mindar-face"})
	assert.ErrorIs(t, err, domain.ErrEngineLoad)
	assert.False(t, e.Running())

	e.SetAvailable(true)
	require.NoError(t, e.Start(domain.Variant{Name: "mindar-face"}))
	assert.True(t, e.Running())
	assert.Equal(t, "mindar-face", e.Variant().Name)

	e.FailStop(errors.New("not constructed"))
	assert.Error(t, e.Stop())
	starts, stops := e.Calls()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, stops)
}

func TestEngine_ListenerMayUnsubscribeDuringDelivery(t *testing.T) {
	e := NewAvailable()
	var unsub func()
	count := 0
	unsub = e.OnReady(func() {
		count++
		unsub()
	})
	e.EmitReady()
	e.EmitReady()
	assert.Equal(t, 1, count)
}

func TestEngine_ConcurrentEmit(t *testing.T) {
	e := NewAvailable()
	var mu sync.Mutex
	n := 0
	e.OnTargetFound(func(domain.TargetEvent) {
		mu.Lock()
		n++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.EmitTargetFound(domain.TargetEvent{TargetIndex: i})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, n)
}
