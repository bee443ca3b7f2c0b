// Package local reads descriptor payloads from a directory tree.
//
// Locators map onto paths below the root, so the locator
// /composant/image-a-reconnaitre/th.fset reads
// <root>/composant/image-a-reconnaitre/th.fset.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.DescriptorSource = (*Source)(nil)

// Source serves descriptors from a local directory.
type Source struct {
	root string
}

// New creates a source rooted at dir. The directory must exist.
func New(dir string) (*Source, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("descriptor directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}
	return &Source{root: abs}, nil
}

// Root returns the absolute root directory.
func (s *Source) Root() string {
	return s.root
}

// Path maps a locator to a file path below the root.
func (s *Source) Path(locator string) (string, error) {
	rel := filepath.FromSlash(strings.TrimLeft(locator, "/"))
	if rel == "" || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: locator %q escapes the descriptor root", domain.ErrInvalidInput, locator)
	}
	return filepath.Join(s.root, rel), nil
}

// Fetch reads the file a locator points at.
func (s *Source) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, err)
	}
	path, err := s.Path(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, domain.ErrDescriptorMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetchFailed, locator, err)
	}
	return data, nil
}
