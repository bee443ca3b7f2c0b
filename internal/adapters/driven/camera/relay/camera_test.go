package relay

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
)

func TestCamera_AcquireAndStop(t *testing.T) {
	cam := New()
	cam.SetFrame([]byte{0xff, 0xd8})
	want := domain.IdealConstraints(domain.FacingEnvironment)

	stream, err := cam.Acquire(context.Background(), want)
	require.NoError(t, err)
	assert.NotEmpty(t, stream.ID())
	assert.Equal(t, 1, cam.LiveTracks())
	assert.Equal(t, []domain.CameraConstraints{want}, cam.Requests())

	frames, ok := stream.(driven.FrameSource)
	require.True(t, ok)
	data, err := frames.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data)

	for _, track := range stream.Tracks() {
		require.NoError(t, track.Stop())
	}
	assert.Equal(t, 0, cam.LiveTracks())

	_, err = frames.Frame(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestCamera_FailNextInOrder(t *testing.T) {
	cam := New()
	cam.FailWithName("OverconstrainedError", "NotAllowedError")

	_, err := cam.Acquire(context.Background(), domain.CameraConstraints{})
	assert.ErrorIs(t, err, domain.ErrCameraConstraints)

	_, err = cam.Acquire(context.Background(), domain.CameraConstraints{})
	assert.ErrorIs(t, err, domain.ErrCameraPermissionDenied)

	_, err = cam.Acquire(context.Background(), domain.CameraConstraints{})
	require.NoError(t, err)
	assert.Len(t, cam.Requests(), 3)
	assert.Len(t, cam.Streams(), 1)
}

func TestCamera_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Acquire(ctx, domain.CameraConstraints{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStream_FrameWithoutPayload(t *testing.T) {
	stream, err := New().Acquire(context.Background(), domain.CameraConstraints{})
	require.NoError(t, err)

	_, err = stream.(*Stream).Frame(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
