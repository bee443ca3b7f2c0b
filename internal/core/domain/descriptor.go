package domain

// DescriptorKey identifies one cached descriptor payload.
type DescriptorKey struct {
	ImageName string
	Format    DescriptorFormat
}

// String returns the "<image>_<format>" form used in cache listings.
func (k DescriptorKey) String() string {
	return k.ImageName + "_" + k.Format.String()
}

// DescriptorPayload is the raw content of one descriptor format for one image.
// Payloads are treated as opaque bytes.
type DescriptorPayload struct {
	// ImageName is the owning reference image.
	ImageName string

	// Format is the descriptor variant.
	Format DescriptorFormat

	// Data is the raw descriptor content.
	Data []byte
}

// Key returns the cache key for this payload.
func (p *DescriptorPayload) Key() DescriptorKey {
	return DescriptorKey{ImageName: p.ImageName, Format: p.Format}
}

// Size returns the payload length in bytes.
func (p *DescriptorPayload) Size() int {
	return len(p.Data)
}

// DescriptorInfo describes what the catalog offers for an image and what is cached.
type DescriptorInfo struct {
	// Image is the catalog entry.
	Image ReferenceImage

	// Available lists the formats the image declares.
	Available []DescriptorFormat

	// Loaded lists cache keys already resident for this image.
	Loaded []string
}
