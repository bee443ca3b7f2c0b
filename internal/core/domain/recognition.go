package domain

import "math"

// DefaultSimilarityThreshold is the initial process-wide acceptance threshold.
const DefaultSimilarityThreshold = 0.6

// ValidThreshold reports whether v is a usable threshold in [0,1].
func ValidThreshold(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// Candidate is the image being compared against a reference descriptor.
// Exactly one of Data or Locator is expected to be set; Data wins if both are.
type Candidate struct {
	// Data holds raw image bytes.
	Data []byte

	// Locator is resolved through the descriptor source when Data is nil.
	Locator string
}

// CandidateBytes wraps raw bytes as a candidate.
func CandidateBytes(data []byte) Candidate {
	return Candidate{Data: data}
}

// CandidateLocator wraps a locator string as a candidate.
func CandidateLocator(locator string) Candidate {
	return Candidate{Locator: locator}
}

// IsLocator returns true if the candidate must be fetched before comparison.
func (c Candidate) IsLocator() bool {
	return c.Data == nil && c.Locator != ""
}

// IsEmpty returns true if the candidate carries neither bytes nor a locator.
func (c Candidate) IsEmpty() bool {
	return c.Data == nil && c.Locator == ""
}

// RecognitionResult is the outcome of one comparison attempt.
type RecognitionResult struct {
	// Success is false when the comparison could not be performed.
	Success bool `json:"success"`

	// Similarity is the score in [0,1].
	Similarity float64 `json:"similarity"`

	// ImageName is the reference image compared against.
	ImageName string `json:"imageName"`

	// Format is the descriptor format used.
	Format DescriptorFormat `json:"descriptorType"`

	// Threshold is the acceptance threshold applied.
	Threshold float64 `json:"threshold"`

	// Match is true when Similarity is strictly greater than Threshold.
	Match bool `json:"match"`

	// Error describes the failure when Success is false.
	Error string `json:"error,omitempty"`
}

// NewRecognitionResult builds a successful result, deriving Match.
func NewRecognitionResult(imageName string, format DescriptorFormat, similarity, threshold float64) RecognitionResult {
	return RecognitionResult{
		Success:    true,
		Similarity: similarity,
		ImageName:  imageName,
		Format:     format,
		Threshold:  threshold,
		Match:      similarity > threshold,
	}
}

// FailedRecognition builds an unsuccessful result carrying err's message.
func FailedRecognition(imageName string, format DescriptorFormat, threshold float64, err error) RecognitionResult {
	return RecognitionResult{
		ImageName: imageName,
		Format:    format,
		Threshold: threshold,
		Error:     err.Error(),
	}
}
