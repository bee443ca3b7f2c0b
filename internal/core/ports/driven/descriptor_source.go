package driven

import "context"

// DescriptorSource retrieves raw descriptor payloads.
// Implementations must wrap retrieval failures with domain.ErrFetchFailed
// and missing entries additionally with domain.ErrDescriptorMissing.
type DescriptorSource interface {
	// Fetch returns the payload stored at locator.
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// DescriptorStore is a DescriptorSource that can also be written to.
type DescriptorStore interface {
	DescriptorSource

	// Put stores data at locator, replacing any previous payload.
	Put(ctx context.Context, locator string, data []byte) error

	// List returns every stored locator in lexical order.
	List(ctx context.Context) ([]string, error)

	// Close releases resources.
	Close() error
}
