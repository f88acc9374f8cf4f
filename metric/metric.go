// Package metric provides vector similarity and distance functions for
// embedding comparison.
package metric

import "math"

// Cosine returns the cosine similarity between two vectors: the dot
// product divided by the product of the Euclidean norms. Returns 0 when
// the vectors differ in length or either norm is 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Dot returns the dot product of two vectors (0 if lengths differ).
func Dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

// Euclidean returns the L2 distance between two vectors.
func Euclidean(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Manhattan returns the L1 distance between two vectors.
func Manhattan(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return sum
}

// CosineMatrix computes the full pairwise cosine similarity matrix
// between two embedding sets: out[i][j] = Cosine(a[i], b[j]).
func CosineMatrix(a, b [][]float32) [][]float64 {
	out := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, len(b))
		for j := range b {
			row[j] = Cosine(a[i], b[j])
		}
		out[i] = row
	}
	return out
}

// Transpose returns the transpose of a rectangular matrix.
func Transpose(m [][]float64) [][]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([][]float64, len(m[0]))
	for j := range out {
		row := make([]float64, len(m))
		for i := range m {
			row[i] = m[i][j]
		}
		out[j] = row
	}
	return out
}

// Argmax returns the index of the maximum value; ties resolve to the
// first occurrence. Returns -1 for an empty slice.
func Argmax(row []float64) int {
	if len(row) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(row); i++ {
		if row[i] > row[best] {
			best = i
		}
	}
	return best
}

// Flatten concatenates an embedding set into one long vector.
func Flatten(embeddings [][]float32) []float32 {
	n := 0
	for _, e := range embeddings {
		n += len(e)
	}
	out := make([]float32, 0, n)
	for _, e := range embeddings {
		out = append(out, e...)
	}
	return out
}
