// Package bitext provides a Go library for evaluating the translation
// matching accuracy of cross-lingual sentence embedding models on parallel
// corpora.
//
// Quick start:
//
//	enc := encoder.NewOpenAIEncoder(os.Getenv("OPENAI_API_KEY"))
//	ev, err := bitext.NewEvaluator(source, target,
//		evaluator.WithName("en-de"),
//		evaluator.WithWrongMatches(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := ev.Evaluate(context.Background(), enc, evaluator.DefaultEvalOptions())
package bitext

import (
	"context"

	"github.com/klejdi94/bitext/core"
	"github.com/klejdi94/bitext/encoder"
	"github.com/klejdi94/bitext/evaluator"
)

// NewCorpus builds a named parallel corpus from aligned sentence slices.
func NewCorpus(name string, source, target []string) (*core.Corpus, error) {
	return core.NewCorpus(name, source, target)
}

// ReadTSV loads a parallel corpus from a source<TAB>target file.
func ReadTSV(name, path string) (*core.Corpus, error) {
	return core.ReadTSV(name, path)
}

// NewEvaluator builds a translation matching evaluator over aligned sentences.
func NewEvaluator(source, target []string, opts ...evaluator.Option) (*evaluator.Translation, error) {
	return evaluator.NewTranslation(source, target, opts...)
}

// Evaluate is a one-shot convenience: build an evaluator over the sentences
// and run it with default options (no CSV output).
func Evaluate(ctx context.Context, enc encoder.Encoder, source, target []string, opts ...evaluator.Option) (*evaluator.Result, error) {
	merged := append([]evaluator.Option{evaluator.WithCSV(false)}, opts...)
	ev, err := evaluator.NewTranslation(source, target, merged...)
	if err != nil {
		return nil, err
	}
	return ev.Evaluate(ctx, enc, evaluator.DefaultEvalOptions())
}

// Score returns the mean of the two directional accuracies for the corpus.
func Score(ctx context.Context, enc encoder.Encoder, source, target []string) (float64, error) {
	res, err := Evaluate(ctx, enc, source, target)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}
