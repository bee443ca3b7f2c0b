//go:build !cgo

package camera

import (
	"context"
	"fmt"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
)

// Ensure Camera implements the interface.
var _ driven.Camera = (*Camera)(nil)

// Available reports whether this build can open capture devices.
func Available() bool {
	return false
}

// Camera is a stub for builds without CGO.
type Camera struct{}

// New creates a camera adapter.
func New() *Camera {
	return &Camera{}
}

// Acquire always fails: no capture backend is compiled in.
func (c *Camera) Acquire(_ context.Context, constraints domain.CameraConstraints) (driven.Stream, error) {
	return nil, fmt.Errorf("device %d (built without cgo): %w", constraints.Device, domain.ErrCameraNotFound)
}
