package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraConstraints_FallbackTiers(t *testing.T) {
	tiers := IdealConstraints(FacingEnvironment).FallbackTiers()
	require.Len(t, tiers, 3)

	assert.Equal(t, 1280, tiers[0].Width)
	assert.Equal(t, FacingEnvironment, tiers[0].Facing)

	assert.Zero(t, tiers[1].Width)
	assert.Equal(t, FacingEnvironment, tiers[1].Facing)

	assert.True(t, tiers[2].IsMinimal())
	assert.Equal(t, -1, tiers[2].Device)
}
