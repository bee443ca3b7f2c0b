package domain

import "fmt"

// EngineKind identifies which tracking engine a variant drives.
type EngineKind string

// Engine kinds.
const (
	// EngineMarker is the legacy marker engine consuming fset/fset3/iset.
	EngineMarker EngineKind = "marker"

	// EngineNeuralImage is the neural image engine consuming .mind targets.
	EngineNeuralImage EngineKind = "neural-image"

	// EngineNeuralFace is the neural face engine; it needs no descriptors.
	EngineNeuralFace EngineKind = "neural-face"
)

// IsValid returns true if the engine kind is recognised.
func (k EngineKind) IsValid() bool {
	switch k {
	case EngineMarker, EngineNeuralImage, EngineNeuralFace:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k EngineKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the engine.
func (k EngineKind) Description() string {
	switch k {
	case EngineMarker:
		return "Marker tracking (legacy)"
	case EngineNeuralImage:
		return "Neural image tracking"
	case EngineNeuralFace:
		return "Neural face tracking"
	default:
		return "Unknown"
	}
}

// Facing returns the camera direction this engine expects.
func (k EngineKind) Facing() FacingMode {
	if k == EngineNeuralFace {
		return FacingUser
	}
	return FacingEnvironment
}

// EngineTuning mirrors the configuration attributes handed to the engine.
type EngineTuning struct {
	FilterMinCF      float64 `json:"filterMinCF"`
	FilterBeta       float64 `json:"filterBeta"`
	WarmupTolerance  int     `json:"warmupTolerance"`
	MissTolerance    int     `json:"missTolerance"`
	MaxTrack         int     `json:"maxTrack"`
	TargetDescriptor string  `json:"imageTargetSrc,omitempty"`
}

// Variant configures one flavour of AR session.
type Variant struct {
	// Name is the variant key, also used in routes.
	Name string

	// Title is the human-readable label.
	Title string

	// Engine selects the tracking engine.
	Engine EngineKind

	// Targets lists the reference image names tracked, in engine index order.
	Targets []string

	// Selectable allows the caller to replace Targets.
	Selectable bool

	// Tuning holds engine parameters.
	Tuning EngineTuning

	// Overlay is the ARObject id shown when no target-specific object matches.
	Overlay string
}

// WithTargets returns a copy tracking names, for selectable variants.
// An empty list keeps the variant's own targets.
func (v Variant) WithTargets(names ...string) (Variant, error) {
	if len(names) == 0 {
		return v, nil
	}
	if !v.Selectable {
		return Variant{}, fmt.Errorf("%w: variant %q has fixed targets", ErrInvalidInput, v.Name)
	}
	v.Targets = append([]string(nil), names...)
	return v, nil
}

// DescriptorFormats returns the formats this variant's engine loads.
func (v Variant) DescriptorFormats() []DescriptorFormat {
	switch v.Engine {
	case EngineMarker:
		return MarkerFormats()
	case EngineNeuralImage:
		return []DescriptorFormat{FormatMind}
	default:
		return nil
	}
}

// DefaultMarkerTarget is the image tracked by the legacy variant when none is chosen.
const DefaultMarkerTarget = "logoGifty144x144"

// DefaultVariants returns the built-in session variants.
func DefaultVariants() []Variant {
	return []Variant{
		{
			Name:    "mindar-image",
			Title:   "Image tracking",
			Engine:  EngineNeuralImage,
			Targets: []string{"personne"},
			Tuning: EngineTuning{
				FilterMinCF:      0.001,
				FilterBeta:       5,
				WarmupTolerance:  3,
				MissTolerance:    5,
				MaxTrack:         1,
				TargetDescriptor: DescriptorBasePath + "/personne" + FormatMind.Extension(),
			},
			Overlay: "personne",
		},
		{
			Name:   "mindar-face",
			Title:  "Face tracking",
			Engine: EngineNeuralFace,
			Tuning: EngineTuning{MaxTrack: 1},
		},
		{
			Name:       "legacy-ar",
			Title:      "Marker tracking",
			Engine:     EngineMarker,
			Targets:    []string{DefaultMarkerTarget},
			Selectable: true,
			Tuning:     EngineTuning{MaxTrack: 1},
		},
	}
}

// LookupVariant finds a built-in variant by name.
func LookupVariant(name string) (Variant, bool) {
	for _, v := range DefaultVariants() {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}
