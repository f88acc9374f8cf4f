package evaluator

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/klejdi94/bitext/core"
	"github.com/klejdi94/bitext/encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vocabEncoder returns a fixed vector per sentence.
func vocabEncoder(vocab map[string][]float32) encoder.Encoder {
	return encoder.EncoderFunc(func(ctx context.Context, sentences []string, opts encoder.Options) ([][]float32, error) {
		out := make([][]float32, len(sentences))
		for i, s := range sentences {
			vec, ok := vocab[s]
			if !ok {
				return nil, fmt.Errorf("no vector for %q", s)
			}
			out[i] = vec
		}
		return out, nil
	})
}

var alignedVocab = map[string][]float32{
	"hello":   {1, 0},
	"world":   {0, 1},
	"bonjour": {1, 0.1},
	"monde":   {0.1, 1},
}

var scrambledVocab = map[string][]float32{
	"hello":   {1, 0},
	"world":   {0, 1},
	"bonjour": {0.1, 1},
	"monde":   {1, 0.1},
}

func TestTranslation_PerfectAlignment(t *testing.T) {
	ev, err := NewTranslation([]string{"hello", "world"}, []string{"bonjour", "monde"},
		WithLogger(NopLogger()))
	require.NoError(t, err)
	res, err := ev.Evaluate(context.Background(), vocabEncoder(alignedVocab), DefaultEvalOptions())
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.AccSrc2Trg)
	assert.Equal(t, 1.0, res.AccTrg2Src)
	assert.Equal(t, 1.0, res.Score)
	assert.Empty(t, res.Wrong)
}

func TestTranslation_Scrambled(t *testing.T) {
	ev, err := NewTranslation([]string{"hello", "world"}, []string{"bonjour", "monde"},
		WithLogger(NopLogger()))
	require.NoError(t, err)
	res, err := ev.Evaluate(context.Background(), vocabEncoder(scrambledVocab), DefaultEvalOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.AccSrc2Trg)
	assert.Equal(t, 0.0, res.AccTrg2Src)
	assert.Equal(t, 0.0, res.Score)
}

func TestTranslation_ScoreInRange(t *testing.T) {
	vocab := map[string][]float32{
		"a": {1, 0}, "b": {0, 1}, "c": {1, 1},
		"x": {1, 0.2}, "y": {1, 0.1}, "z": {0.5, 0.5},
	}
	ev, err := NewTranslation([]string{"a", "b", "c"}, []string{"x", "y", "z"},
		WithLogger(NopLogger()))
	require.NoError(t, err)
	res, err := ev.Evaluate(context.Background(), vocabEncoder(vocab), DefaultEvalOptions())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Score, 0.0)
	assert.LessOrEqual(t, res.Score, 1.0)
	assert.Equal(t, (res.AccSrc2Trg+res.AccTrg2Src)/2, res.Score)
}

func TestTranslation_Symmetry(t *testing.T) {
	// asymmetric vocabulary: src->trg retrieval succeeds, trg->src partly fails
	vocab := map[string][]float32{
		"a": {1, 0}, "b": {0.9, 0.1},
		"x": {1, 0.05}, "y": {0.8, 0.3},
	}
	fwd, err := NewTranslation([]string{"a", "b"}, []string{"x", "y"}, WithLogger(NopLogger()))
	require.NoError(t, err)
	rev, err := NewTranslation([]string{"x", "y"}, []string{"a", "b"}, WithLogger(NopLogger()))
	require.NoError(t, err)

	fwdRes, err := fwd.Evaluate(context.Background(), vocabEncoder(vocab), DefaultEvalOptions())
	require.NoError(t, err)
	revRes, err := rev.Evaluate(context.Background(), vocabEncoder(vocab), DefaultEvalOptions())
	require.NoError(t, err)
	assert.Equal(t, fwdRes.AccSrc2Trg, revRes.AccTrg2Src)
	assert.Equal(t, fwdRes.AccTrg2Src, revRes.AccSrc2Trg)
}

func TestTranslation_LengthMismatch(t *testing.T) {
	encodeCalls := 0
	enc := encoder.EncoderFunc(func(ctx context.Context, s []string, o encoder.Options) ([][]float32, error) {
		encodeCalls++
		return make([][]float32, len(s)), nil
	})
	_, err := NewTranslation([]string{"a", "b", "c"}, []string{"x", "y"})
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
	// construction fails before any encoding happens
	assert.Equal(t, 0, encodeCalls)
	_ = enc
}

func TestTranslation_Empty(t *testing.T) {
	_, err := NewTranslation(nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyCorpus)
}

func TestTranslation_WrongMatchReport(t *testing.T) {
	// "hello" retrieves "monde" (wrong); report carries the top candidates
	ev, err := NewTranslation([]string{"hello", "world"}, []string{"bonjour", "monde"},
		WithWrongMatches(true), WithLogger(NopLogger()))
	require.NoError(t, err)
	res, err := ev.Evaluate(context.Background(), vocabEncoder(scrambledVocab), DefaultEvalOptions())
	require.NoError(t, err)
	require.Len(t, res.Wrong, 2)

	m := res.Wrong[0]
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, 1, m.Predicted)
	assert.Equal(t, "hello", m.Source)
	assert.Equal(t, "monde", m.Target)
	assert.Greater(t, m.Score, m.CorrectScore)
	require.Len(t, m.Top, 2)
	// ranked descending by score
	assert.Equal(t, "monde", m.Top[0].Sentence)
	assert.GreaterOrEqual(t, m.Top[0].Score, m.Top[1].Score)
}

func TestTranslation_TopFiveCap(t *testing.T) {
	n := 8
	vocab := make(map[string][]float32)
	src := make([]string, n)
	trg := make([]string, n)
	for i := 0; i < n; i++ {
		src[i] = fmt.Sprintf("s%d", i)
		trg[i] = fmt.Sprintf("t%d", i)
		vocab[src[i]] = []float32{float32(i), 1}
		// reversed targets so every retrieval misses
		vocab[trg[i]] = []float32{float32(n - 1 - i), 1}
	}
	ev, err := NewTranslation(src, trg, WithWrongMatches(true), WithLogger(NopLogger()))
	require.NoError(t, err)
	res, err := ev.Evaluate(context.Background(), vocabEncoder(vocab), DefaultEvalOptions())
	require.NoError(t, err)
	require.NotEmpty(t, res.Wrong)
	assert.Len(t, res.Wrong[0].Top, 5)
}

func TestTranslation_CSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ev, err := NewTranslation([]string{"hello", "world"}, []string{"bonjour", "monde"},
		WithName("en-fr"), WithLogger(NopLogger()))
	require.NoError(t, err)
	assert.Equal(t, "translation_evaluation_en-fr_results.csv", ev.CSVFile())

	for epoch := 0; epoch < 3; epoch++ {
		_, err := ev.Evaluate(context.Background(), vocabEncoder(alignedVocab),
			EvalOptions{OutputPath: dir, Epoch: epoch, Steps: epoch * 10})
		require.NoError(t, err)
	}

	f, err := os.Open(filepath.Join(dir, ev.CSVFile()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // one header + three data rows
	assert.Equal(t, []string{"epoch", "steps", "src2trg", "trg2src"}, rows[0])
	assert.Equal(t, []string{"1", "10", "1", "1"}, rows[2])
}

func TestTranslation_CSVDisabled(t *testing.T) {
	dir := t.TempDir()
	ev, err := NewTranslation([]string{"hello"}, []string{"bonjour"},
		WithCSV(false), WithLogger(NopLogger()))
	require.NoError(t, err)
	_, err = ev.Evaluate(context.Background(), vocabEncoder(alignedVocab),
		EvalOptions{OutputPath: dir, Epoch: -1, Steps: -1})
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTranslation_EncoderErrorPropagates(t *testing.T) {
	ev, err := NewTranslation([]string{"hello"}, []string{"bonjour"}, WithLogger(NopLogger()))
	require.NoError(t, err)
	boom := fmt.Errorf("encoder down")
	enc := encoder.EncoderFunc(func(ctx context.Context, s []string, o encoder.Options) ([][]float32, error) {
		return nil, boom
	})
	_, err = ev.Evaluate(context.Background(), enc, DefaultEvalOptions())
	assert.ErrorIs(t, err, boom)
}

func TestTranslation_Diagnostics(t *testing.T) {
	vocab := map[string][]float32{
		"a": {1, 0}, "b": {0, 1},
		"x": {1, 0}, "y": {0, 1},
	}
	ev, err := NewTranslation([]string{"a", "b"}, []string{"x", "y"}, WithLogger(NopLogger()))
	require.NoError(t, err)
	res, err := ev.Evaluate(context.Background(), vocabEncoder(vocab), DefaultEvalOptions())
	require.NoError(t, err)
	// identical flattened vectors: cosine 1, zero distances, dot = |v|^2
	assert.InDelta(t, 1.0, res.Diagnostics.Cosine, 1e-9)
	assert.InDelta(t, 0.0, res.Diagnostics.NegManhattan, 1e-9)
	assert.InDelta(t, 0.0, res.Diagnostics.NegEuclidean, 1e-9)
	assert.InDelta(t, 2.0, res.Diagnostics.DotProduct, 1e-9)
}

func TestSuite_Run(t *testing.T) {
	c1, err := core.NewCorpus("en-fr", []string{"hello", "world"}, []string{"bonjour", "monde"})
	require.NoError(t, err)
	s := NewSuite("multilingual")
	_, err = s.AddCorpus(c1, WithLogger(NopLogger()))
	require.NoError(t, err)

	report, err := s.Run(context.Background(), vocabEncoder(alignedVocab))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1.0, report.Mean)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "en-fr", report.Results[0].Name)
	assert.NoError(t, report.Results[0].Error)
}

func TestSuite_Empty(t *testing.T) {
	_, err := NewSuite("empty").Run(context.Background(), vocabEncoder(nil))
	assert.Error(t, err)
}
