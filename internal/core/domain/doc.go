// Package domain defines the core business entities for ARVision.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ReferenceImage / Catalog: trackable subjects and their descriptor locators
//   - DescriptorPayload: opaque descriptor bytes for one (image, format) pair
//   - RecognitionResult: the outcome of one comparison attempt
//   - SessionState / SessionError: the live state of one AR tracking session
//   - Variant: the configuration of one tracking mode (image, face, legacy marker)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
