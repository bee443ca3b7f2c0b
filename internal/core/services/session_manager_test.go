package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	camrelay "github.com/custodia-labs/arvision/internal/adapters/driven/camera/relay"
	"github.com/custodia-labs/arvision/internal/adapters/driven/engine/relay"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
)

func fastSettings() domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Session = fastTiming
	return s
}

func newTestManager(t *testing.T, hub *relay.Hub, cam *camrelay.Camera) *SessionManager {
	t.Helper()
	var m *SessionManager
	if cam != nil {
		m = NewSessionManager(hub, cam, nil, fastSettings)
	} else {
		m = NewSessionManager(hub, nil, nil, fastSettings)
	}
	t.Cleanup(func() { _ = m.CloseAll() })
	return m
}

func TestSessionManager_NoEngines(t *testing.T) {
	m := NewSessionManager(nil, nil, nil, nil)
	_, err := m.Create(driving.SessionOptions{Variant: "mindar-image"})
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestSessionManager_CreateGetList(t *testing.T) {
	hub := relay.NewHub(true)
	m := newTestManager(t, hub, nil)

	s, err := m.Create(driving.SessionOptions{Variant: "mindar-image"})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, "mindar-image", s.Variant().Name)

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, []string{s.ID()}, m.List())

	_, err = hub.Engine(s.ID())
	assert.NoError(t, err)
}

func TestSessionManager_CreateErrors(t *testing.T) {
	m := newTestManager(t, relay.NewHub(true), nil)

	_, err := m.Create(driving.SessionOptions{Variant: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = m.Create(driving.SessionOptions{Variant: "mindar-image", Targets: []string{"th"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = m.Create(driving.SessionOptions{Variant: "legacy-ar", Targets: []string{"missing"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, m.List())
}

func TestSessionManager_PlatformFromUserAgent(t *testing.T) {
	cam := camrelay.New()
	cam.FailWithName("NotAllowedError")
	m := newTestManager(t, relay.NewHub(true), cam)

	s, err := m.Create(driving.SessionOptions{
		Variant:   "mindar-face",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Version/17.0 Mobile/15E148 Safari/604.1",
	})
	require.NoError(t, err)

	err = s.Start(context.Background())
	var se *domain.SessionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, domain.CategoryCameraPermission, se.Category)
	assert.Equal(t, domain.PlatformIOS.Guidance(domain.CategoryCameraPermission), se.Guidance)

	reqs := cam.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, domain.FacingUser, reqs[0].Facing)
}

func TestSessionManager_MultiTargetMarkerSession(t *testing.T) {
	hub := relay.NewHub(true)
	cam := camrelay.New()
	m := newTestManager(t, hub, cam)

	s, err := m.Create(driving.SessionOptions{Variant: "legacy-ar", Targets: []string{"th", "personne"}})
	require.NoError(t, err)
	multi, ok := s.(*MultiTargetSession)
	require.True(t, ok)
	assert.Len(t, multi.Members(), 2)
	assert.Len(t, hub.Engines(s.ID()), 2)

	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, cam.Streams(), 1)
	assert.Equal(t, s.ID()+"/0", m.Guard().Holder())

	require.NoError(t, m.Close(s.ID()))
	assert.Zero(t, cam.LiveTracks())
	assert.Empty(t, m.Guard().Holder())
}

func TestSessionManager_SingleTargetMarkerSession(t *testing.T) {
	m := newTestManager(t, relay.NewHub(true), nil)

	s, err := m.Create(driving.SessionOptions{Variant: "legacy-ar", Targets: []string{"th"}})
	require.NoError(t, err)
	_, ok := s.(*SessionController)
	assert.True(t, ok)
	assert.Equal(t, []string{"th"}, s.Variant().Targets)
}

func TestSessionManager_CloseAndCloseAll(t *testing.T) {
	hub := relay.NewHub(true)
	m := newTestManager(t, hub, nil)

	a, err := m.Create(driving.SessionOptions{Variant: "mindar-image"})
	require.NoError(t, err)
	b, err := m.Create(driving.SessionOptions{Variant: "mindar-face"})
	require.NoError(t, err)
	assert.Len(t, m.List(), 2)

	require.NoError(t, m.Close(a.ID()))
	assert.ErrorIs(t, m.Close(a.ID()), domain.ErrNotFound)
	_, err = m.Get(a.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, domain.PhaseTornDown, a.State().Phase)
	assert.Empty(t, hub.Engines(a.ID()))

	require.NoError(t, m.CloseAll())
	assert.Empty(t, m.List())
	assert.Empty(t, hub.Engines(b.ID()))
}
