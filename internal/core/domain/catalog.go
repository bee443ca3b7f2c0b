package domain

import (
	"fmt"
	"iter"
	"maps"
	"strings"
)

// DescriptorFormat identifies one descriptor file variant for a reference image.
type DescriptorFormat string

// Supported descriptor formats.
const (
	// FormatFSet is the legacy marker engine's primary feature set.
	FormatFSet DescriptorFormat = "fset"

	// FormatFSet3 is the legacy marker engine's 3D feature set.
	FormatFSet3 DescriptorFormat = "fset3"

	// FormatISet is the legacy marker engine's image set.
	FormatISet DescriptorFormat = "iset"

	// FormatMind is the neural engine's combined target file.
	FormatMind DescriptorFormat = "mind"
)

// formatOrder is the canonical iteration order for formats.
var formatOrder = []DescriptorFormat{FormatFSet, FormatFSet3, FormatISet, FormatMind}

// MarkerFormats returns the formats consumed by the legacy marker engine.
func MarkerFormats() []DescriptorFormat {
	return []DescriptorFormat{FormatFSet, FormatFSet3, FormatISet}
}

// AllFormats returns every known format in canonical order.
func AllFormats() []DescriptorFormat {
	out := make([]DescriptorFormat, len(formatOrder))
	copy(out, formatOrder)
	return out
}

// IsValid returns true if the format is recognised.
func (f DescriptorFormat) IsValid() bool {
	switch f {
	case FormatFSet, FormatFSet3, FormatISet, FormatMind:
		return true
	default:
		return false
	}
}

// Extension returns the file extension including the leading dot.
func (f DescriptorFormat) Extension() string {
	return "." + string(f)
}

// String returns the string representation.
func (f DescriptorFormat) String() string {
	return string(f)
}

// ParseDescriptorFormat converts a user supplied string into a format.
// Leading dots and case are ignored, so ".FSET" parses as FormatFSet.
func ParseDescriptorFormat(s string) (DescriptorFormat, error) {
	f := DescriptorFormat(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: descriptor format %q", ErrUnsupportedType, s)
	}
	return f, nil
}

// DescriptorBasePath is the path prefix under which descriptor files are served.
const DescriptorBasePath = "/composant/image-a-reconnaitre"

// ReferenceImage identifies a trackable subject and where its descriptors live.
type ReferenceImage struct {
	// Name is the unique catalog key.
	Name string

	// DisplayName is the human-readable label.
	DisplayName string

	// Locators maps each available format to its storage locator.
	Locators map[DescriptorFormat]string
}

// Locator returns the storage locator for a format.
func (r ReferenceImage) Locator(format DescriptorFormat) (string, bool) {
	loc, ok := r.Locators[format]
	return loc, ok
}

// Formats returns the formats this image provides, in canonical order.
func (r ReferenceImage) Formats() []DescriptorFormat {
	var out []DescriptorFormat
	for _, f := range formatOrder {
		if _, ok := r.Locators[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Summary returns the public name pair for listings.
func (r ReferenceImage) Summary() ImageSummary {
	return ImageSummary{Name: r.Name, DisplayName: r.DisplayName}
}

func (r ReferenceImage) clone() ReferenceImage {
	r.Locators = maps.Clone(r.Locators)
	return r
}

// ImageSummary is the listing view of a reference image.
type ImageSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// NewReferenceImage builds a catalog entry whose locators follow the
// DescriptorBasePath/<name>.<ext> convention for the given formats.
func NewReferenceImage(name, displayName string, formats ...DescriptorFormat) ReferenceImage {
	locators := make(map[DescriptorFormat]string, len(formats))
	for _, f := range formats {
		locators[f] = DescriptorBasePath + "/" + name + f.Extension()
	}
	return ReferenceImage{Name: name, DisplayName: displayName, Locators: locators}
}

// Catalog is the static, ordered set of reference images.
// It is immutable after construction and safe for concurrent reads.
type Catalog struct {
	images []ReferenceImage
	index  map[string]int
}

// NewCatalog creates a catalog preserving declaration order.
// Empty or duplicate names are rejected.
func NewCatalog(images ...ReferenceImage) (*Catalog, error) {
	c := &Catalog{
		images: make([]ReferenceImage, 0, len(images)),
		index:  make(map[string]int, len(images)),
	}
	for _, img := range images {
		if img.Name == "" {
			return nil, fmt.Errorf("%w: reference image without name", ErrInvalidInput)
		}
		if _, dup := c.index[img.Name]; dup {
			return nil, fmt.Errorf("%w: reference image %q", ErrAlreadyExists, img.Name)
		}
		c.index[img.Name] = len(c.images)
		c.images = append(c.images, img.clone())
	}
	return c, nil
}

// DefaultCatalog returns the built-in catalog of reference images.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(
		NewReferenceImage("logoGifty144x144", "Logo Gifty 144x144", MarkerFormats()...),
		NewReferenceImage("th", "Image TH", MarkerFormats()...),
		NewReferenceImage("personne", "Image Personne", FormatFSet, FormatFSet3, FormatISet, FormatMind),
	)
	if err != nil {
		panic(err) // static data
	}
	return c
}

// Lookup returns the reference image with the given name.
func (c *Catalog) Lookup(name string) (ReferenceImage, bool) {
	i, ok := c.index[name]
	if !ok {
		return ReferenceImage{}, false
	}
	return c.images[i].clone(), true
}

// Contains reports whether name is in the catalog.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.images)
}

// Images yields every reference image in declaration order.
// Each call starts a fresh iteration.
func (c *Catalog) Images() iter.Seq[ReferenceImage] {
	return func(yield func(ReferenceImage) bool) {
		for _, img := range c.images {
			if !yield(img.clone()) {
				return
			}
		}
	}
}

// Summaries yields {name, displayName} pairs in declaration order.
// Each call starts a fresh iteration.
func (c *Catalog) Summaries() iter.Seq[ImageSummary] {
	return func(yield func(ImageSummary) bool) {
		for _, img := range c.images {
			if !yield(img.Summary()) {
				return
			}
		}
	}
}
