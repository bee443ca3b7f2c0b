package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/logger"
)

// CameraGuard enforces a single acquired camera stream across sessions.
type CameraGuard struct {
	mu     sync.Mutex
	holder string
}

// NewCameraGuard creates an unclaimed guard.
func NewCameraGuard() *CameraGuard {
	return &CameraGuard{}
}

// Holder returns the owner of the current claim, or "" if free.
func (g *CameraGuard) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder
}

// Claim reserves the camera for owner. The returned release func is idempotent.
func (g *CameraGuard) Claim(owner string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.holder != "" {
		return nil, fmt.Errorf("%w: held by session %s", domain.ErrCameraInUse, g.holder)
	}
	g.holder = owner

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			if g.holder == owner {
				g.holder = ""
			}
		})
	}, nil
}

// Acquire claims the guard and acquires a stream through the fallback tiers.
// The claim is dropped if acquisition fails.
func (g *CameraGuard) Acquire(
	ctx context.Context,
	camera driven.Camera,
	owner string,
	ideal domain.CameraConstraints,
) (driven.Stream, func(), error) {
	release, err := g.Claim(owner)
	if err != nil {
		return nil, nil, err
	}
	stream, err := AcquireWithFallback(ctx, camera, ideal)
	if err != nil {
		release()
		return nil, nil, err
	}
	return stream, release, nil
}

// AcquireWithFallback tries ideal, then simplified, then minimal constraints.
// Constraint and not-found failures fall through to the next tier;
// permission and in-use failures stop immediately.
func AcquireWithFallback(ctx context.Context, camera driven.Camera, ideal domain.CameraConstraints) (driven.Stream, error) {
	var lastErr error
	for i, tier := range ideal.FallbackTiers() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stream, err := camera.Acquire(ctx, tier)
		if err == nil {
			logger.Debug("camera acquired on tier %d (%+v)", i+1, tier)
			return stream, nil
		}
		if !domain.IsCameraFallthrough(err) {
			return nil, err
		}
		logger.Warn("camera tier %d failed: %v", i+1, err)
		lastErr = err
	}
	return nil, fmt.Errorf("acquire camera: %w", lastErr)
}

// StopStream stops every track of a stream, logging failures.
func StopStream(stream driven.Stream) {
	if stream == nil {
		return
	}
	for _, track := range stream.Tracks() {
		if err := track.Stop(); err != nil {
			logger.Warn("stop track of stream %s: %v", stream.ID(), err)
		}
	}
}
