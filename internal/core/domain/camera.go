package domain

// FacingMode selects which physical camera to prefer.
type FacingMode string

// Facing modes.
const (
	// FacingAny accepts whichever camera the platform offers.
	FacingAny FacingMode = ""

	// FacingEnvironment prefers the rear camera.
	FacingEnvironment FacingMode = "environment"

	// FacingUser prefers the front camera.
	FacingUser FacingMode = "user"
)

// CameraConstraints describes a camera acquisition request.
// Zero values mean "no preference".
type CameraConstraints struct {
	// Device is the platform device index, or -1 for the default device.
	Device int

	// Width is the ideal frame width in pixels.
	Width int

	// Height is the ideal frame height in pixels.
	Height int

	// Facing is the preferred camera direction.
	Facing FacingMode
}

// Default ideal camera resolution.
const (
	DefaultCameraWidth  = 1280
	DefaultCameraHeight = 720
)

// IdealConstraints returns the most specific request for a facing mode.
func IdealConstraints(facing FacingMode) CameraConstraints {
	return CameraConstraints{
		Device: -1,
		Width:  DefaultCameraWidth,
		Height: DefaultCameraHeight,
		Facing: facing,
	}
}

// FallbackTiers expands an ideal request into the fixed fallback order:
// the request itself, then facing only, then any camera.
func (c CameraConstraints) FallbackTiers() []CameraConstraints {
	simplified := CameraConstraints{Device: c.Device, Facing: c.Facing}
	minimal := CameraConstraints{Device: c.Device}
	return []CameraConstraints{c, simplified, minimal}
}

// IsMinimal returns true if the request expresses no preference beyond device.
func (c CameraConstraints) IsMinimal() bool {
	return c.Width == 0 && c.Height == 0 && c.Facing == FacingAny
}
