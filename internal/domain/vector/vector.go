// Package vector holds the similarity math shared by ranking and embedding generation.
package vector

import "math"

// Norm returns the L2 norm of v.
func Norm(v []float32) float64 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	return math.Sqrt(sumSquares)
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero vector has similarity 0 to everything. Callers guarantee equal lengths.
func Cosine(a, b []float32) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return clamp(Dot(a, b) / (na * nb))
}

// CosineWithNorm is Cosine with the norm of a precomputed, for scans against a fixed query.
func CosineWithNorm(a []float32, normA float64, b []float32) float64 {
	nb := Norm(b)
	if normA == 0 || nb == 0 {
		return 0
	}
	return clamp(Dot(a, b) / (normA * nb))
}

// Dot returns the dot product of a and b over their common prefix.
func Dot(a, b []float32) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := range n {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// NormalizeL2 scales v in place to unit length. Zero vectors are left untouched.
func NormalizeL2(v []float32) {
	magnitude := Norm(v)
	if magnitude == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / magnitude)
	}
}

// float rounding can push |cos| a hair past 1.
// IsFinite reports whether v has no NaN or infinite components.
func IsFinite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func clamp(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
