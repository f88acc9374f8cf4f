package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/klejdi94/bitext/core"
	"github.com/klejdi94/bitext/encoder"
)

// Suite runs a set of translation evaluators (e.g. one per language
// pair) against a single encoder.
type Suite struct {
	name       string
	evaluators []*Translation
	opts       EvalOptions
}

// NewSuite creates a new evaluation suite with the given name.
func NewSuite(name string) *Suite {
	return &Suite{name: name, opts: DefaultEvalOptions()}
}

// WithEvalOptions sets the per-call options used for every evaluator.
func (s *Suite) WithEvalOptions(opts EvalOptions) *Suite {
	s.opts = opts
	return s
}

// Add adds an already-constructed evaluator.
func (s *Suite) Add(t *Translation) *Suite {
	s.evaluators = append(s.evaluators, t)
	return s
}

// AddCorpus builds an evaluator for the corpus and adds it.
func (s *Suite) AddCorpus(c *core.Corpus, opts ...Option) (*Suite, error) {
	t, err := NewTranslationCorpus(c, opts...)
	if err != nil {
		return s, err
	}
	return s.Add(t), nil
}

// Report holds the results of running a suite.
type Report struct {
	Suite    string
	Total    int
	Results  []CorpusResult
	Mean     float64 // mean score across corpora
	Duration time.Duration
}

// CorpusResult is the result of one evaluator run.
type CorpusResult struct {
	Name   string
	Result *Result
	Error  error
}

// Run evaluates every corpus and returns a report. Individual evaluator
// errors are recorded per corpus, not fatal to the suite.
func (s *Suite) Run(ctx context.Context, enc encoder.Encoder) (*Report, error) {
	if len(s.evaluators) == 0 {
		return nil, fmt.Errorf("evaluator: suite %q has no corpora", s.name)
	}
	start := time.Now()
	report := &Report{
		Suite:   s.name,
		Total:   len(s.evaluators),
		Results: make([]CorpusResult, 0, len(s.evaluators)),
	}
	sum := 0.0
	scored := 0
	for _, t := range s.evaluators {
		res, err := t.Evaluate(ctx, enc, s.opts)
		cr := CorpusResult{Name: t.name, Result: res, Error: err}
		report.Results = append(report.Results, cr)
		if err == nil {
			sum += res.Score
			scored++
		}
	}
	if scored > 0 {
		report.Mean = sum / float64(scored)
	}
	report.Duration = time.Since(start)
	return report, nil
}
