// Package relay provides a camera whose outcomes are decided by the caller.
//
// It stands in for a browser camera when the host page reports
// getUserMedia results over the wire, and for tests that need scripted
// acquisition failures.
package relay

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
)

// Ensure Camera implements the interface.
var _ driven.Camera = (*Camera)(nil)

// Camera hands out synthetic streams, failing according to a queue.
type Camera struct {
	mu       sync.Mutex
	failures []error
	requests []domain.CameraConstraints
	streams  []*Stream
	frame    []byte
}

// New creates a camera that succeeds until told otherwise.
func New() *Camera {
	return &Camera{}
}

// FailNext queues errors returned by the next acquisitions, in order.
func (c *Camera) FailNext(errs ...error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, errs...)
}

// FailWithName queues a failure reported by platform error name.
func (c *Camera) FailWithName(names ...string) {
	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, domain.ErrorFromName(name, ""))
	}
	c.FailNext(errs...)
}

// SetFrame sets the payload returned by Frame on every stream.
func (c *Camera) SetFrame(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = append([]byte(nil), data...)
}

// Acquire records the request and either fails or returns a new stream.
func (c *Camera) Acquire(ctx context.Context, constraints domain.CameraConstraints) (driven.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, constraints)
	if len(c.failures) > 0 {
		err := c.failures[0]
		c.failures = c.failures[1:]
		return nil, err
	}
	s := &Stream{
		id:          uuid.NewString(),
		constraints: constraints,
		frame:       c.frame,
	}
	s.track = &Track{live: true}
	c.streams = append(c.streams, s)
	return s, nil
}

// Requests returns every constraint set passed to Acquire.
func (c *Camera) Requests() []domain.CameraConstraints {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.CameraConstraints(nil), c.requests...)
}

// Streams returns every stream handed out.
func (c *Camera) Streams() []*Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Stream(nil), c.streams...)
}

// LiveTracks counts tracks that have not been stopped.
func (c *Camera) LiveTracks() int {
	c.mu.Lock()
	streams := append([]*Stream(nil), c.streams...)
	c.mu.Unlock()

	n := 0
	for _, s := range streams {
		if s.track.Live() {
			n++
		}
	}
	return n
}

// Stream is a synthetic camera stream with one video track.
type Stream struct {
	id          string
	constraints domain.CameraConstraints
	frame       []byte
	track       *Track
}

// ID identifies the stream.
func (s *Stream) ID() string {
	return s.id
}

// Constraints returns the request that produced the stream.
func (s *Stream) Constraints() domain.CameraConstraints {
	return s.constraints
}

// Tracks returns the video track.
func (s *Stream) Tracks() []driven.Track {
	return []driven.Track{s.track}
}

// Frame returns the configured frame while the track is live.
func (s *Stream) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.track.Live() {
		return nil, fmt.Errorf("stream %s: %w", s.id, domain.ErrSessionClosed)
	}
	if len(s.frame) == 0 {
		return nil, fmt.Errorf("stream %s has no frame: %w", s.id, domain.ErrNotFound)
	}
	return append([]byte(nil), s.frame...), nil
}

// Track is a synthetic video track.
type Track struct {
	mu    sync.Mutex
	live  bool
	stops int
}

// Stop ends the track.
func (t *Track) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = false
	t.stops++
	return nil
}

// Live reports whether the track is running.
func (t *Track) Live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

// Stops returns how many times Stop was called.
func (t *Track) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}
