package services

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
	"github.com/custodia-labs/arvision/internal/logger"
)

// Ensure SessionManager implements the interface.
var _ driving.SessionManager = (*SessionManager)(nil)

// SessionManager creates sessions and keeps a registry of open ones.
// All sessions share one camera guard.
type SessionManager struct {
	engines     driven.EngineFactory
	camera      driven.Camera
	guard       *CameraGuard
	descriptors driving.RecognitionService
	catalog     *domain.Catalog
	settings    func() domain.AppSettings

	mu       sync.RWMutex
	sessions map[string]driving.SessionController
}

// NewSessionManager creates a session manager.
// camera and descriptors may be nil; settings defaults to domain.DefaultAppSettings.
func NewSessionManager(
	engines driven.EngineFactory,
	camera driven.Camera,
	descriptors driving.RecognitionService,
	settings func() domain.AppSettings,
) *SessionManager {
	if settings == nil {
		settings = domain.DefaultAppSettings
	}
	return &SessionManager{
		engines:     engines,
		camera:      camera,
		guard:       NewCameraGuard(),
		descriptors: descriptors,
		catalog:     domain.DefaultCatalog(),
		settings:    settings,
		sessions:    make(map[string]driving.SessionController),
	}
}

// Guard returns the shared camera guard.
func (m *SessionManager) Guard() *CameraGuard {
	return m.guard
}

// Create builds a session without starting it.
// Marker variants tracking several images get one engine per image,
// composed into a MultiTargetSession.
func (m *SessionManager) Create(opts driving.SessionOptions) (driving.SessionController, error) {
	if m.engines == nil {
		return nil, domain.ErrNotImplemented
	}
	variant, ok := domain.LookupVariant(opts.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: variant %q", domain.ErrNotFound, opts.Variant)
	}
	variant, err := variant.WithTargets(opts.Targets...)
	if err != nil {
		return nil, err
	}
	for _, target := range variant.Targets {
		if !m.catalog.Contains(target) {
			return nil, fmt.Errorf("%w: reference image %q", domain.ErrNotFound, target)
		}
	}

	id := uuid.NewString()
	settings := m.settings()
	base := SessionConfig{
		ID:          id,
		Variant:     variant,
		Camera:      m.camera,
		Guard:       m.guard,
		Constraints: settings.Camera.Constraints(variant.Engine.Facing()),
		Timing:      settings.Session,
		Platform:    domain.DetectPlatform(opts.UserAgent),
		Descriptors: m.descriptors,
	}

	var session driving.SessionController
	if variant.Engine == domain.EngineMarker && len(variant.Targets) > 1 {
		session, err = m.createMulti(base)
	} else {
		session, err = m.createSingle(base)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()
	logger.Info("created session %s (%s)", id, variant.Name)
	return session, nil
}

func (m *SessionManager) createSingle(cfg SessionConfig) (*SessionController, error) {
	engine, err := m.engines.Create(cfg.ID, cfg.Variant)
	if err != nil {
		return nil, fmt.Errorf("create %s engine: %w", cfg.Variant.Engine, err)
	}
	cfg.Engine = engine
	return NewSessionController(cfg)
}

// createMulti gives the camera to the first member only.
func (m *SessionManager) createMulti(base SessionConfig) (*MultiTargetSession, error) {
	members := make([]driving.SessionController, 0, len(base.Variant.Targets))
	closeAll := func() {
		for _, member := range members {
			_ = member.Close()
		}
	}
	for i, target := range base.Variant.Targets {
		cfg := base
		cfg.ID = fmt.Sprintf("%s/%d", base.ID, i)
		cfg.Variant.Targets = []string{target}
		if i > 0 {
			cfg.Camera = nil
		}
		member, err := m.createSingle(cfg)
		if err != nil {
			closeAll()
			return nil, err
		}
		members = append(members, member)
	}
	multi, err := NewMultiTargetSession(base.ID, base.Variant, members...)
	if err != nil {
		closeAll()
		return nil, err
	}
	return multi, nil
}

// Get returns a session by id.
func (m *SessionManager) Get(id string) (driving.SessionController, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	return s, nil
}

// List returns the ids of open sessions, sorted.
func (m *SessionManager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close tears down and forgets a session.
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	defer m.release(id)
	return s.Close()
}

func (m *SessionManager) release(id string) {
	if r, ok := m.engines.(driven.EngineReleaser); ok {
		r.Remove(id)
	}
}

// CloseAll tears down every session.
func (m *SessionManager) CloseAll() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]driving.SessionController)
	m.mu.Unlock()

	var errs []error
	for id, s := range sessions {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
		m.release(id)
	}
	return errors.Join(errs...)
}
