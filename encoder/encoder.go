// Package encoder defines the sentence encoder interface and implementations.
package encoder

import (
	"context"

	"github.com/schollz/progressbar/v3"
)

// DefaultBatchSize is used when Options.BatchSize is unset.
const DefaultBatchSize = 16

// Options controls a single Encode call.
type Options struct {
	// BatchSize is the number of sentences sent per request to the
	// underlying model (default DefaultBatchSize).
	BatchSize int
	// ShowProgress renders a terminal progress bar while encoding.
	ShowProgress bool
}

// Encoder maps a list of sentences to fixed-dimension embedding vectors,
// index-aligned with the input. Implementations must preserve input order.
type Encoder interface {
	Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(ctx context.Context, sentences []string, opts Options) ([][]float32, error)

func (f EncoderFunc) Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
	return f(ctx, sentences, opts)
}

// EncodeBatches splits sentences into batches of opts.BatchSize, calls fn
// for each batch in order, and concatenates the results. Order is
// preserved: result index i corresponds to sentences[i].
func EncodeBatches(ctx context.Context, sentences []string, opts Options, fn func(ctx context.Context, batch []string) ([][]float32, error)) ([][]float32, error) {
	size := opts.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	var bar *progressbar.ProgressBar
	if opts.ShowProgress {
		bar = progressbar.Default(int64(len(sentences)), "encoding")
	}
	out := make([][]float32, 0, len(sentences))
	for start := 0; start < len(sentences); start += size {
		end := start + size
		if end > len(sentences) {
			end = len(sentences)
		}
		vectors, err := fn(ctx, sentences[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
		if bar != nil {
			_ = bar.Add(end - start)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	return out, nil
}
