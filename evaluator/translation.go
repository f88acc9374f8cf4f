// Package evaluator measures cross-lingual embedding quality on parallel corpora.
package evaluator

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/klejdi94/bitext/core"
	"github.com/klejdi94/bitext/encoder"
	"github.com/klejdi94/bitext/metric"
)

// Translation checks whether each source sentence's embedding is nearest
// (by cosine similarity) to its true translation's embedding, in both
// directions, and reports retrieval accuracy per direction.
type Translation struct {
	corpus            *core.Corpus
	name              string
	batchSize         int
	showProgressBar   bool
	printWrongMatches bool
	writeCSV          bool
	logger            Logger

	csvFile    string
	csvHeaders []string
}

// Option configures a Translation evaluator.
type Option func(*Translation)

// WithName sets the label used in log messages and the CSV file name.
func WithName(name string) Option {
	return func(t *Translation) { t.name = name }
}

// WithBatchSize sets the batch size forwarded to the encoder.
func WithBatchSize(n int) Option {
	return func(t *Translation) { t.batchSize = n }
}

// WithProgressBar toggles the encoder progress bar.
func WithProgressBar(show bool) Option {
	return func(t *Translation) { t.showProgressBar = show }
}

// WithWrongMatches toggles per-mismatch reporting: every src→trg miss is
// logged with its top-5 ranked candidates.
func WithWrongMatches(print bool) Option {
	return func(t *Translation) { t.printWrongMatches = print }
}

// WithCSV toggles appending results to a CSV file when Evaluate is given
// an output path (default on).
func WithCSV(write bool) Option {
	return func(t *Translation) { t.writeCSV = write }
}

// WithLogger sets the logger for accuracy summaries and diagnostics.
func WithLogger(l Logger) Option {
	return func(t *Translation) { t.logger = l }
}

// NewTranslation builds an evaluator for aligned source and target
// sentence lists: target[i] must be the translation of source[i].
// Fails when the lists differ in length or are empty.
func NewTranslation(source, target []string, opts ...Option) (*Translation, error) {
	t := &Translation{
		batchSize: encoder.DefaultBatchSize,
		writeCSV:  true,
		logger:    StdLogger(true),
	}
	for _, o := range opts {
		o(t)
	}
	corpus, err := core.NewCorpus(t.name, source, target)
	if err != nil {
		return nil, err
	}
	t.corpus = corpus
	suffix := ""
	if t.name != "" {
		suffix = "_" + t.name
	}
	t.csvFile = "translation_evaluation" + suffix + "_results.csv"
	t.csvHeaders = []string{"epoch", "steps", "src2trg", "trg2src"}
	return t, nil
}

// NewTranslationCorpus builds an evaluator from an existing corpus,
// using the corpus name as the evaluator name unless overridden.
func NewTranslationCorpus(c *core.Corpus, opts ...Option) (*Translation, error) {
	merged := append([]Option{WithName(c.Name)}, opts...)
	return NewTranslation(c.Source, c.Target, merged...)
}

// EvalOptions carries per-call evaluation parameters.
type EvalOptions struct {
	// OutputPath, when non-empty and CSV writing is enabled, is the
	// directory the results CSV is appended to.
	OutputPath string
	// Epoch and Steps label the row in the results CSV; -1 means the
	// evaluation is not part of a training loop.
	Epoch int
	Steps int
}

// DefaultEvalOptions returns options for a standalone evaluation
// (epoch and steps unset).
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{Epoch: -1, Steps: -1}
}

// Candidate is one ranked retrieval candidate for a mismatch report.
type Candidate struct {
	Index    int
	Score    float64
	Sentence string
}

// Mismatch describes one src→trg retrieval miss.
type Mismatch struct {
	// Index is the source sentence index; Predicted is the target index
	// that incorrectly won the argmax.
	Index        int
	Predicted    int
	Source       string
	Target       string
	Score        float64 // winning (incorrect) score
	CorrectScore float64 // score of the true pair
	Top          []Candidate
}

// Diagnostics holds the four flattened pairwise statistics between the
// two embedding sets, each set concatenated into one long vector. This
// collapses per-pair granularity into one scalar per statistic; it is a
// rough inspection aid and never contributes to the score.
type Diagnostics struct {
	Cosine       float64
	NegManhattan float64
	NegEuclidean float64
	DotProduct   float64
}

// Result holds the outcome of one evaluation call.
type Result struct {
	AccSrc2Trg  float64
	AccTrg2Src  float64
	Score       float64 // (AccSrc2Trg + AccTrg2Src) / 2
	Wrong       []Mismatch
	Diagnostics Diagnostics
}

// Evaluate encodes both sides of the corpus with enc, computes the full
// pairwise cosine similarity matrix, and scores nearest-neighbor
// retrieval in both directions. Encoder and filesystem errors propagate
// unchanged.
func (t *Translation) Evaluate(ctx context.Context, enc encoder.Encoder, opts EvalOptions) (*Result, error) {
	outTxt := ":"
	if opts.Epoch != -1 {
		if opts.Steps == -1 {
			outTxt = fmt.Sprintf(" after epoch %d:", opts.Epoch)
		} else {
			outTxt = fmt.Sprintf(" in epoch %d after %d steps:", opts.Epoch, opts.Steps)
		}
	}
	t.logger.Infof("Evaluating translation matching accuracy on %s dataset%s", t.name, outTxt)

	encOpts := encoder.Options{BatchSize: t.batchSize, ShowProgress: t.showProgressBar}
	embeddings1, err := enc.Encode(ctx, t.corpus.Source, encOpts)
	if err != nil {
		return nil, err
	}
	embeddings2, err := enc.Encode(ctx, t.corpus.Target, encOpts)
	if err != nil {
		return nil, err
	}
	n := t.corpus.Len()
	if len(embeddings1) != n || len(embeddings2) != n {
		return nil, fmt.Errorf("evaluator: encoder returned %d/%d vectors for %d sentences",
			len(embeddings1), len(embeddings2), n)
	}

	cosSims := metric.CosineMatrix(embeddings1, embeddings2)

	res := &Result{}
	correctSrc2Trg := 0
	for i, row := range cosSims {
		maxIdx := metric.Argmax(row)
		if maxIdx == i {
			correctSrc2Trg++
			continue
		}
		if t.printWrongMatches {
			m := t.mismatch(i, maxIdx, row)
			res.Wrong = append(res.Wrong, m)
			t.logMismatch(m)
		}
	}
	correctTrg2Src := 0
	for i, row := range metric.Transpose(cosSims) {
		if metric.Argmax(row) == i {
			correctTrg2Src++
		}
	}

	res.AccSrc2Trg = float64(correctSrc2Trg) / float64(n)
	res.AccTrg2Src = float64(correctTrg2Src) / float64(n)
	res.Score = (res.AccSrc2Trg + res.AccTrg2Src) / 2

	t.logger.Infof("Accuracy src2trg: %.2f", res.AccSrc2Trg*100)
	t.logger.Infof("Accuracy trg2src: %.2f", res.AccTrg2Src*100)

	res.Diagnostics = flatDiagnostics(embeddings1, embeddings2)
	t.logger.Debugf("Cosine-Similarity: %v", res.Diagnostics.Cosine)
	t.logger.Debugf("Manhattan-Distance: %v", res.Diagnostics.NegManhattan)
	t.logger.Debugf("Euclidean-Distance: %v", res.Diagnostics.NegEuclidean)
	t.logger.Debugf("Dot-Product-Similarity: %v", res.Diagnostics.DotProduct)

	if opts.OutputPath != "" && t.writeCSV {
		if err := t.appendCSV(opts, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Score runs Evaluate and returns only the combined scalar score.
func (t *Translation) Score(ctx context.Context, enc encoder.Encoder, opts EvalOptions) (float64, error) {
	res, err := t.Evaluate(ctx, enc, opts)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}

func (t *Translation) mismatch(i, maxIdx int, row []float64) Mismatch {
	m := Mismatch{
		Index:        i,
		Predicted:    maxIdx,
		Source:       t.corpus.Source[i],
		Target:       t.corpus.Target[maxIdx],
		Score:        row[maxIdx],
		CorrectScore: row[i],
	}
	ranked := make([]Candidate, len(row))
	for j, score := range row {
		ranked[j] = Candidate{Index: j, Score: score, Sentence: t.corpus.Target[j]}
	}
	// stable: ties keep original index order
	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].Score > ranked[b].Score })
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	m.Top = ranked
	return m
}

func (t *Translation) logMismatch(m Mismatch) {
	t.logger.Debugf("i: %d j: %d INCORRECT", m.Index, m.Predicted)
	t.logger.Debugf("Src: %s", m.Source)
	t.logger.Debugf("Trg: %s", m.Target)
	t.logger.Debugf("Argmax score: %v vs. correct score: %v", m.Score, m.CorrectScore)
	for _, c := range m.Top {
		t.logger.Debugf("\t%d (Score: %.4f) %s", c.Index, c.Score, c.Sentence)
	}
}

func flatDiagnostics(embeddings1, embeddings2 [][]float32) Diagnostics {
	flat1 := metric.Flatten(embeddings1)
	flat2 := metric.Flatten(embeddings2)
	return Diagnostics{
		Cosine:       metric.Cosine(flat1, flat2),
		NegManhattan: -metric.Manhattan(flat1, flat2),
		NegEuclidean: -metric.Euclidean(flat1, flat2),
		DotProduct:   metric.Dot(flat1, flat2),
	}
}

// CSVFile returns the results file name this evaluator appends to.
func (t *Translation) CSVFile() string {
	return t.csvFile
}

// appendCSV appends one result row, creating the file with a header row
// when it does not exist yet. Concurrent evaluators sharing one path
// race on the existence check.
func (t *Translation) appendCSV(opts EvalOptions, res *Result) error {
	csvPath := filepath.Join(opts.OutputPath, t.csvFile)
	_, statErr := os.Stat(csvPath)
	exists := statErr == nil

	f, err := os.OpenFile(csvPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(t.csvHeaders); err != nil {
			return err
		}
	}
	row := []string{
		strconv.Itoa(opts.Epoch),
		strconv.Itoa(opts.Steps),
		strconv.FormatFloat(res.AccSrc2Trg, 'g', -1, 64),
		strconv.FormatFloat(res.AccTrg2Src, 'g', -1, 64),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
