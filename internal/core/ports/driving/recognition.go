package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/arvision/internal/core/domain"
)

// RecognitionService loads reference descriptors and scores candidates against them.
type RecognitionService interface {
	// LoadDescriptor fetches and caches one descriptor payload.
	// Unknown images fail with domain.ErrNotFound without touching storage.
	LoadDescriptor(ctx context.Context, imageName string, format domain.DescriptorFormat) (*domain.DescriptorPayload, error)

	// LoadAllDescriptors loads every format the image declares, skipping failures.
	LoadAllDescriptors(ctx context.Context, imageName string) ([]*domain.DescriptorPayload, error)

	// ListAvailableImages yields the catalog in declaration order.
	ListAvailableImages() iter.Seq[domain.ImageSummary]

	// Recognize compares a candidate against a reference descriptor.
	// It never returns an error; failures are reported in the result.
	// A nil threshold uses the current default; an explicit one is used as given.
	Recognize(ctx context.Context, candidate domain.Candidate, imageName string, format domain.DescriptorFormat, threshold *float64) domain.RecognitionResult

	// CalculateSimilarity scores two buffers in [0,1].
	CalculateSimilarity(a, b []byte) float64

	// SetDefaultThreshold updates the default threshold.
	// Values outside [0,1] are rejected and the previous value kept.
	SetDefaultThreshold(v float64) error

	// DefaultThreshold returns the current default threshold.
	DefaultThreshold() float64

	// DescriptorInfo reports the catalog entry and cached formats for an image.
	DescriptorInfo(imageName string) (*domain.DescriptorInfo, error)
}
