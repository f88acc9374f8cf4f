// Package cost provides token counting and cost estimation for embedding API calls.
package cost

import (
	"sync"
	"sync/atomic"
)

// TokenCounter estimates token count for text (e.g. ~4 chars per token for English).
type TokenCounter interface {
	CountTokens(text string) int
}

// SimpleCounter uses a rough heuristic: tokens ≈ runes/4.
type SimpleCounter struct{}

func (SimpleCounter) CountTokens(text string) int {
	n := 0
	for range text {
		n++
	}
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// Estimator estimates embedding cost for a batch of sentences.
type Estimator struct {
	model        string
	inputPer1K   float64
	tokenCounter TokenCounter
}

// EstimatorOption configures the estimator.
type EstimatorOption func(*Estimator)

// WithTokenCounter sets a custom token counter.
func WithTokenCounter(tc TokenCounter) EstimatorOption {
	return func(e *Estimator) {
		e.tokenCounter = tc
	}
}

// NewEstimator creates an estimator for an embedding model with given
// input pricing (per 1K tokens, USD). Embedding APIs bill input only.
func NewEstimator(model string, inputPer1K float64, opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		model:        model,
		inputPer1K:   inputPer1K,
		tokenCounter: SimpleCounter{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Estimate returns the estimated token count and cost in USD for
// encoding the given sentences.
func (e *Estimator) Estimate(sentences []string) (tokens int, usd float64) {
	if e.tokenCounter == nil {
		return 0, 0
	}
	for _, s := range sentences {
		tokens += e.tokenCounter.CountTokens(s)
	}
	usd = (float64(tokens) / 1000) * e.inputPer1K
	return tokens, usd
}

// Tracker records actual token usage reported by encoders.
type Tracker struct {
	totalTokens  atomic.Uint64
	mu           sync.Mutex
	totalCostUSD float64
	modelPricing map[string]float64 // input per 1K tokens
}

// NewTracker creates a cost tracker. Register model pricing with RegisterModel.
func NewTracker() *Tracker {
	return &Tracker{modelPricing: make(map[string]float64)}
}

// RegisterModel sets input pricing (per 1K tokens) for a model.
func (t *Tracker) RegisterModel(model string, inputPer1K float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modelPricing[model] = inputPer1K
}

// Record records token usage from an encode call and returns the cost
// in USD (0 for unregistered models).
func (t *Tracker) Record(model string, tokens int) float64 {
	t.totalTokens.Add(uint64(tokens))
	t.mu.Lock()
	defer t.mu.Unlock()
	per1K, ok := t.modelPricing[model]
	if !ok {
		return 0
	}
	usd := (float64(tokens) / 1000) * per1K
	t.totalCostUSD += usd
	return usd
}

// TotalTokens returns total tokens recorded.
func (t *Tracker) TotalTokens() uint64 {
	return t.totalTokens.Load()
}

// TotalCostUSD returns total cost in USD.
func (t *Tracker) TotalCostUSD() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalCostUSD
}
