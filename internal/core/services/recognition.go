package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
	"github.com/custodia-labs/arvision/internal/core/ports/driving"
	"github.com/custodia-labs/arvision/internal/logger"
)

// Ensure RecognitionService implements the interface.
var _ driving.RecognitionService = (*RecognitionService)(nil)

// RecognitionService loads reference descriptors and scores candidates.
// Descriptors are cached for the life of the service and never invalidated.
type RecognitionService struct {
	catalog    *domain.Catalog
	source     driven.DescriptorSource
	comparator Comparator

	mu        sync.RWMutex
	cache     map[domain.DescriptorKey]*domain.DescriptorPayload
	threshold float64

	inflight singleflight.Group
}

// RecognitionOption configures a RecognitionService.
type RecognitionOption func(*RecognitionService)

// WithComparator replaces the default length heuristic.
func WithComparator(c Comparator) RecognitionOption {
	return func(s *RecognitionService) {
		if c != nil {
			s.comparator = c
		}
	}
}

// WithThreshold sets the initial default threshold. Invalid values are ignored.
func WithThreshold(v float64) RecognitionOption {
	return func(s *RecognitionService) {
		if domain.ValidThreshold(v) {
			s.threshold = v
		}
	}
}

// NewRecognitionService creates a recognition service over a catalog and source.
// A nil catalog uses the built-in default.
func NewRecognitionService(
	catalog *domain.Catalog,
	source driven.DescriptorSource,
	opts ...RecognitionOption,
) *RecognitionService {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	s := &RecognitionService{
		catalog:    catalog,
		source:     source,
		comparator: LengthComparator{},
		cache:      make(map[domain.DescriptorKey]*domain.DescriptorPayload),
		threshold:  domain.DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the catalog the service resolves names against.
func (s *RecognitionService) Catalog() *domain.Catalog {
	return s.catalog
}

// LoadDescriptor fetches and caches one descriptor payload.
func (s *RecognitionService) LoadDescriptor(
	ctx context.Context,
	imageName string,
	format domain.DescriptorFormat,
) (*domain.DescriptorPayload, error) {
	img, ok := s.catalog.Lookup(imageName)
	if !ok {
		return nil, fmt.Errorf("%w: reference image %q", domain.ErrNotFound, imageName)
	}
	locator, ok := img.Locator(format)
	if !ok {
		return nil, fmt.Errorf("%w: image %q has no %q descriptor", domain.ErrInvalidInput, imageName, format)
	}

	key := domain.DescriptorKey{ImageName: imageName, Format: format}
	if p, hit := s.cached(key); hit {
		logger.Debug("descriptor cache hit: %s", key)
		return p, nil
	}

	if s.source == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	// The shared fetch outlives any single caller; each caller only stops waiting.
	ch := s.inflight.DoChan(key.String(), func() (any, error) {
		if p, hit := s.cached(key); hit {
			return p, nil
		}
		logger.Debug("fetching descriptor %s from %s", key, locator)
		data, err := s.source.Fetch(context.WithoutCancel(ctx), locator)
		if err != nil {
			if errors.Is(err, domain.ErrFetchFailed) {
				return nil, fmt.Errorf("load %s: %w", key, err)
			}
			return nil, fmt.Errorf("load %s: %w: %w", key, domain.ErrFetchFailed, err)
		}
		p := &domain.DescriptorPayload{ImageName: imageName, Format: format, Data: data}
		s.mu.Lock()
		s.cache[key] = p
		s.mu.Unlock()
		logger.Info("loaded descriptor %s (%d bytes)", key, len(data))
		return p, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.DescriptorPayload), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load %s: %w", key, ctx.Err())
	}
}

func (s *RecognitionService) cached(key domain.DescriptorKey) (*domain.DescriptorPayload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.cache[key]
	return p, ok
}

// LoadAllDescriptors loads every format the image declares.
// Individual format failures are logged and skipped.
func (s *RecognitionService) LoadAllDescriptors(ctx context.Context, imageName string) ([]*domain.DescriptorPayload, error) {
	img, ok := s.catalog.Lookup(imageName)
	if !ok {
		return nil, fmt.Errorf("%w: reference image %q", domain.ErrNotFound, imageName)
	}

	var loaded []*domain.DescriptorPayload
	for _, format := range img.Formats() {
		p, err := s.LoadDescriptor(ctx, imageName, format)
		if err != nil {
			logger.Warn("skipping %s descriptor for %s: %v", format, imageName, err)
			continue
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// ListAvailableImages yields the catalog in declaration order.
func (s *RecognitionService) ListAvailableImages() iter.Seq[domain.ImageSummary] {
	return s.catalog.Summaries()
}

// Recognize compares a candidate against a reference descriptor.
func (s *RecognitionService) Recognize(
	ctx context.Context,
	candidate domain.Candidate,
	imageName string,
	format domain.DescriptorFormat,
	threshold *float64,
) domain.RecognitionResult {
	t := s.DefaultThreshold()
	if threshold != nil {
		t = *threshold
	}

	reference, err := s.LoadDescriptor(ctx, imageName, format)
	if err != nil {
		logger.Warn("recognize %s/%s: %v", imageName, format, err)
		return domain.FailedRecognition(imageName, format, t, err)
	}

	data, err := s.candidateBytes(ctx, candidate)
	if err != nil {
		logger.Warn("recognize %s/%s: %v", imageName, format, err)
		return domain.FailedRecognition(imageName, format, t, err)
	}

	similarity := s.CalculateSimilarity(reference.Data, data)
	result := domain.NewRecognitionResult(imageName, format, similarity, t)
	logger.Debug("recognize %s/%s: similarity=%.4f threshold=%.2f match=%t",
		imageName, format, similarity, t, result.Match)
	return result
}

func (s *RecognitionService) candidateBytes(ctx context.Context, c domain.Candidate) ([]byte, error) {
	switch {
	case c.Data != nil:
		return c.Data, nil
	case c.Locator != "":
		if s.source == nil {
			return nil, domain.ErrNotImplemented
		}
		data, err := s.source.Fetch(ctx, c.Locator)
		if err != nil {
			return nil, fmt.Errorf("read candidate %s: %w", c.Locator, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: empty candidate", domain.ErrInvalidInput)
	}
}

// CalculateSimilarity scores two buffers in [0,1].
func (s *RecognitionService) CalculateSimilarity(a, b []byte) float64 {
	return clampScore(s.comparator.Similarity(a, b))
}

// SetDefaultThreshold updates the default threshold.
func (s *RecognitionService) SetDefaultThreshold(v float64) error {
	if !domain.ValidThreshold(v) {
		logger.Warn("rejected threshold %v: must be within [0,1]", v)
		return fmt.Errorf("%w: threshold %v outside [0,1]", domain.ErrInvalidInput, v)
	}
	s.mu.Lock()
	s.threshold = v
	s.mu.Unlock()
	return nil
}

// DefaultThreshold returns the current default threshold.
func (s *RecognitionService) DefaultThreshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// DescriptorInfo reports the catalog entry and cached formats for an image.
func (s *RecognitionService) DescriptorInfo(imageName string) (*domain.DescriptorInfo, error) {
	img, ok := s.catalog.Lookup(imageName)
	if !ok {
		return nil, fmt.Errorf("%w: reference image %q", domain.ErrNotFound, imageName)
	}
	info := &domain.DescriptorInfo{
		Image:     img,
		Available: img.Formats(),
	}
	s.mu.RLock()
	for key := range s.cache {
		if key.ImageName == imageName {
			info.Loaded = append(info.Loaded, key.String())
		}
	}
	s.mu.RUnlock()
	slices.Sort(info.Loaded)
	return info, nil
}
