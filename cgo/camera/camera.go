//go:build cgo

package camera

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
)

// Ensure Camera implements the interface.
var _ driven.Camera = (*Camera)(nil)

// Available reports whether this build can open capture devices.
func Available() bool {
	return true
}

// Camera opens OpenCV capture devices.
type Camera struct{}

// New creates a camera adapter.
func New() *Camera {
	return &Camera{}
}

// Acquire opens the requested device and applies the resolution constraint.
// Desktop capture devices expose no facing mode, so Facing is ignored.
func (c *Camera) Acquire(ctx context.Context, constraints domain.CameraConstraints) (driven.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	device := constraints.Device
	if device < 0 {
		device = 0
	}

	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open device %d: %w: %w", device, domain.ErrCameraNotFound, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, fmt.Errorf("open device %d: %w", device, domain.ErrCameraNotFound)
	}

	if constraints.Width > 0 && constraints.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(constraints.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(constraints.Height))
		w := int(vc.Get(gocv.VideoCaptureFrameWidth))
		h := int(vc.Get(gocv.VideoCaptureFrameHeight))
		if w != constraints.Width || h != constraints.Height {
			_ = vc.Close()
			return nil, fmt.Errorf("device %d gave %dx%d for %dx%d: %w",
				device, w, h, constraints.Width, constraints.Height, domain.ErrCameraConstraints)
		}
	}

	probe := gocv.NewMat()
	defer probe.Close()
	if ok := vc.Read(&probe); !ok || probe.Empty() {
		_ = vc.Close()
		return nil, fmt.Errorf("read device %d: %w", device, domain.ErrCameraInUse)
	}

	s := &Stream{id: uuid.NewString(), vc: vc}
	s.track = &Track{stream: s}
	return s, nil
}

// Stream is an open capture device.
type Stream struct {
	id    string
	track *Track

	mu     sync.Mutex
	vc     *gocv.VideoCapture
	closed bool
}

// ID identifies the stream.
func (s *Stream) ID() string {
	return s.id
}

// Tracks returns the single video track.
func (s *Stream) Tracks() []driven.Track {
	return []driven.Track{s.track}
}

// Frame captures one frame encoded as JPEG.
func (s *Stream) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("stream %s: %w", s.id, domain.ErrSessionClosed)
	}

	img := gocv.NewMat()
	defer img.Close()
	if ok := s.vc.Read(&img); !ok || img.Empty() {
		return nil, fmt.Errorf("read frame: %w", domain.ErrCameraInUse)
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

func (s *Stream) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.vc.Close()
}

func (s *Stream) live() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Track is the video track of a Stream.
type Track struct {
	stream *Stream
}

// Stop releases the capture device.
func (t *Track) Stop() error {
	return t.stream.close()
}

// Live reports whether the device is still open.
func (t *Track) Live() bool {
	return t.stream.live()
}
