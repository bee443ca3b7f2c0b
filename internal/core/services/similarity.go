package services

// Comparator scores how alike two buffers are, in [0,1].
type Comparator interface {
	Similarity(a, b []byte) float64
}

// LengthComparator is the buffer-length heuristic used as a stand-in for real
// feature matching. It scores 1 - |len(a)-len(b)| / max(len(a),len(b)),
// clamped at zero. Two empty buffers are identical; one empty buffer scores 0.
// The score says nothing about image content.
type LengthComparator struct{}

// Similarity implements Comparator.
func (LengthComparator) Similarity(a, b []byte) float64 {
	la, lb := len(a), len(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return max(0, 1-float64(diff)/float64(longest))
}

// ComparatorFunc adapts a function to Comparator.
type ComparatorFunc func(a, b []byte) float64

// Similarity implements Comparator.
func (f ComparatorFunc) Similarity(a, b []byte) float64 {
	return f(a, b)
}

func clampScore(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
