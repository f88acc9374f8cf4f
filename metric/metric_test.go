package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-3, 0}), 1e-9)
}

func TestCosine_ZeroNorm(t *testing.T) {
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, Cosine(nil, nil))
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 2}))
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 11.0, Dot([]float32{1, 2}, []float32{3, 4}), 1e-9)
}

func TestEuclidean(t *testing.T) {
	assert.InDelta(t, 5.0, Euclidean([]float32{0, 0}, []float32{3, 4}), 1e-9)
}

func TestManhattan(t *testing.T) {
	assert.InDelta(t, 7.0, Manhattan([]float32{0, 0}, []float32{3, 4}), 1e-9)
}

func TestCosineMatrix(t *testing.T) {
	a := [][]float32{{1, 0}, {0, 1}}
	b := [][]float32{{1, 0}, {0, 1}}
	m := CosineMatrix(a, b)
	assert.InDelta(t, 1.0, m[0][0], 1e-9)
	assert.InDelta(t, 0.0, m[0][1], 1e-9)
	assert.InDelta(t, 0.0, m[1][0], 1e-9)
	assert.InDelta(t, 1.0, m[1][1], 1e-9)
}

func TestTranspose(t *testing.T) {
	m := [][]float64{{1, 2, 3}, {4, 5, 6}}
	tr := Transpose(m)
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, tr)
	assert.Nil(t, Transpose(nil))
}

func TestArgmax(t *testing.T) {
	assert.Equal(t, 2, Argmax([]float64{0.1, 0.3, 0.9, 0.2}))
	// ties resolve to the first occurrence
	assert.Equal(t, 1, Argmax([]float64{0.1, 0.9, 0.9}))
	assert.Equal(t, -1, Argmax(nil))
}

func TestFlatten(t *testing.T) {
	out := Flatten([][]float32{{1, 2}, {3, 4}})
	assert.Equal(t, []float32{1, 2, 3, 4}, out)
}
