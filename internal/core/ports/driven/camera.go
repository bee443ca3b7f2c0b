package driven

import (
	"context"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// Camera acquires camera streams.
// Acquire must fail with one of the domain camera errors so callers can
// decide whether to fall back to looser constraints.
type Camera interface {
	Acquire(ctx context.Context, constraints domain.CameraConstraints) (Stream, error)
}

// Stream is an acquired camera stream.
type Stream interface {
	// ID identifies the stream.
	ID() string

	// Tracks returns the stream's media tracks.
	Tracks() []Track
}

// Track is one media track of a stream.
type Track interface {
	// Stop releases the track. Stopping a stopped track is a no-op.
	Stop() error

	// Live reports whether the track is still running.
	Live() bool
}

// FrameSource is implemented by streams that can hand out encoded frames.
type FrameSource interface {
	// Frame captures one frame encoded as JPEG.
	Frame(ctx context.Context) ([]byte, error)
}
