// Package results provides evaluation run recording and aggregate queries.
package results

import (
	"context"
	"sync"
	"time"
)

// Run is a single recorded evaluation (corpus name, training position,
// both retrieval accuracies, combined score).
type Run struct {
	Name       string
	Epoch      int
	Steps      int
	AccSrc2Trg float64
	AccTrg2Src float64
	Score      float64
	At         time.Time
}

// Store is the interface for recording and querying evaluation runs.
type Store interface {
	Record(ctx context.Context, r Run) error
	Query(ctx context.Context, q Query) ([]Aggregate, error)
}

// Query filters and groups runs for aggregation.
type Query struct {
	Name    string
	From    time.Time
	To      time.Time
	GroupBy string // "name", "day", "hour"
	Limit   int
}

// Aggregate is a bucketed aggregate (e.g. per corpus or per day).
type Aggregate struct {
	Key           string
	Runs          int64
	AvgScore      float64
	BestScore     float64
	AvgAccSrc2Trg float64
	AvgAccTrg2Src float64
}

// MemoryStore is an in-memory implementation (bounded slice, no persistence).
type MemoryStore struct {
	mu      sync.RWMutex
	max     int
	records []Run
}

// NewMemoryStore creates an in-memory store that keeps at most max runs (0 = unbounded).
func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: max, records: make([]Run, 0, 256)}
}

// Record implements Store.
func (m *MemoryStore) Record(ctx context.Context, r Run) error {
	if r.At.IsZero() {
		r.At = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	if m.max > 0 && len(m.records) > m.max {
		m.records = m.records[len(m.records)-m.max:]
	}
	return nil
}

// Query implements Store. GroupBy "name" groups by corpus name, "day" and
// "hour" by timestamp bucket; anything else collapses into one bucket.
func (m *MemoryStore) Query(ctx context.Context, q Query) ([]Aggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return aggregate(m.records, q), nil
}

func aggregate(records []Run, q Query) []Aggregate {
	agg := make(map[string]*Aggregate)
	var order []string
	for _, r := range records {
		if q.Name != "" && r.Name != q.Name {
			continue
		}
		if !q.From.IsZero() && r.At.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && r.At.After(q.To) {
			continue
		}
		k := bucketKey(r, q.GroupBy)
		a, ok := agg[k]
		if !ok {
			a = &Aggregate{Key: k}
			agg[k] = a
			order = append(order, k)
		}
		a.Runs++
		a.AvgScore += (r.Score - a.AvgScore) / float64(a.Runs)
		a.AvgAccSrc2Trg += (r.AccSrc2Trg - a.AvgAccSrc2Trg) / float64(a.Runs)
		a.AvgAccTrg2Src += (r.AccTrg2Src - a.AvgAccTrg2Src) / float64(a.Runs)
		if r.Score > a.BestScore {
			a.BestScore = r.Score
		}
	}
	out := make([]Aggregate, 0, len(agg))
	for _, k := range order {
		out = append(out, *agg[k])
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func bucketKey(r Run, groupBy string) string {
	switch groupBy {
	case "name":
		return r.Name
	case "day":
		return r.At.Format("2006-01-02")
	case "hour":
		return r.At.Format("2006-01-02-15")
	default:
		return "all"
	}
}
