package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Middleware wraps an encoder with additional behavior (logging, metrics, cache, etc.).
type Middleware func(Encoder) Encoder

// Chain wraps e with all middlewares in order (first middleware is outermost).
func Chain(e Encoder, mws ...Middleware) Encoder {
	for i := len(mws) - 1; i >= 0; i-- {
		e = mws[i](e)
	}
	return e
}

// loggingEncoder logs encode calls.
type loggingEncoder struct {
	next Encoder
	logf func(format string, args ...interface{})
}

// Logging returns a middleware that logs each Encode call (sentence count, duration, error).
func Logging(logf func(format string, args ...interface{})) Middleware {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return func(e Encoder) Encoder {
		return &loggingEncoder{next: e, logf: logf}
	}
}

func (l *loggingEncoder) Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
	start := time.Now()
	vectors, err := l.next.Encode(ctx, sentences, opts)
	if err != nil {
		l.logf("encode sentences=%d error: %v", len(sentences), err)
		return nil, err
	}
	l.logf("encode sentences=%d took=%v", len(sentences), time.Since(start))
	return vectors, nil
}

// metricsEncoder counts calls, sentences, and errors.
type metricsEncoder struct {
	next      Encoder
	calls     atomic.Uint64
	sentences atomic.Uint64
	errors    atomic.Uint64
}

// Metrics returns a middleware that counts Encode calls, sentences, and errors.
// Counters are exposed via the returned MetricsCounters.
func Metrics() (Middleware, *MetricsCounters) {
	m := &metricsEncoder{}
	return func(e Encoder) Encoder {
		m.next = e
		return m
	}, &MetricsCounters{m: m}
}

// MetricsCounters provides read access to collected metrics.
type MetricsCounters struct {
	m *metricsEncoder
}

func (c *MetricsCounters) Calls() uint64     { return c.m.calls.Load() }
func (c *MetricsCounters) Sentences() uint64 { return c.m.sentences.Load() }
func (c *MetricsCounters) Errors() uint64    { return c.m.errors.Load() }

func (m *metricsEncoder) Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
	m.calls.Add(1)
	m.sentences.Add(uint64(len(sentences)))
	vectors, err := m.next.Encode(ctx, sentences, opts)
	if err != nil {
		m.errors.Add(1)
		return nil, err
	}
	return vectors, nil
}

// Cache is the interface for embedding caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error
}

// cacheEncoder serves embeddings from a cache, encoding only the misses.
type cacheEncoder struct {
	next   Encoder
	cache  Cache
	prefix string
	ttl    time.Duration
}

// CacheMiddleware returns a middleware that caches per-sentence embeddings.
// keyPrefix namespaces the cache (use the model name: two models must not
// share vectors). Misses are encoded in one pass and results merged back
// in input order.
func CacheMiddleware(cache Cache, keyPrefix string, ttl time.Duration) Middleware {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return func(e Encoder) Encoder {
		return &cacheEncoder{next: e, cache: cache, prefix: keyPrefix, ttl: ttl}
	}
}

func (c *cacheEncoder) key(sentence string) string {
	sum := sha256.Sum256([]byte(c.prefix + "\x00" + sentence))
	return c.prefix + ":" + hex.EncodeToString(sum[:])
}

func (c *cacheEncoder) Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
	if c.cache == nil {
		return c.next.Encode(ctx, sentences, opts)
	}
	vectors := make([][]float32, len(sentences))
	var missIdx []int
	var missed []string
	for i, s := range sentences {
		if vec, ok := c.cache.Get(ctx, c.key(s)); ok {
			vectors[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missed = append(missed, s)
	}
	if len(missed) > 0 {
		fresh, err := c.next.Encode(ctx, missed, opts)
		if err != nil {
			return nil, err
		}
		for j, i := range missIdx {
			vectors[i] = fresh[j]
			_ = c.cache.Set(ctx, c.key(sentences[i]), fresh[j], c.ttl)
		}
	}
	return vectors, nil
}

// InMemoryCache is a simple in-memory cache (for testing/single process).
type InMemoryCache struct {
	mu    sync.RWMutex
	store map[string]memCacheEntry
}

type memCacheEntry struct {
	vec     []float32
	expires time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{store: make(map[string]memCacheEntry)}
}

func (m *InMemoryCache) Get(ctx context.Context, key string) ([]float32, bool) {
	m.mu.RLock()
	e, ok := m.store[key]
	m.mu.RUnlock()
	if !ok || time.Now().After(e.expires) {
		return nil, false
	}
	return e.vec, true
}

func (m *InMemoryCache) Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error {
	m.mu.Lock()
	m.store[key] = memCacheEntry{vec: vec, expires: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// rateLimitEncoder limits encode calls per window.
type rateLimitEncoder struct {
	next   Encoder
	tokens chan struct{}
}

// RateLimit returns a middleware that allows at most limit Encode calls per window.
func RateLimit(limit int, window time.Duration) Middleware {
	return func(e Encoder) Encoder {
		r := &rateLimitEncoder{next: e, tokens: make(chan struct{}, limit)}
		for i := 0; i < limit; i++ {
			r.tokens <- struct{}{}
		}
		go func() {
			tick := window / time.Duration(limit)
			if tick < time.Millisecond {
				tick = time.Millisecond
			}
			for range time.Tick(tick) {
				select {
				case r.tokens <- struct{}{}:
				default:
				}
			}
		}()
		return r
	}
}

func (r *rateLimitEncoder) Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
	select {
	case <-r.tokens:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.next.Encode(ctx, sentences, opts)
}

// BackoffFunc returns delay before the next retry (attempt is 0-based).
type BackoffFunc func(attempt int) time.Duration

// ExponentialBackoff returns delay = base * 2^attempt, capped at max.
func ExponentialBackoff(base, max time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		d := base * time.Duration(math.Pow(2, float64(attempt)))
		if d > max {
			return max
		}
		return d
	}
}

// retryEncoder retries failed encode calls.
type retryEncoder struct {
	next       Encoder
	maxRetries int
	backoff    BackoffFunc
}

// Retry returns a middleware that retries failed Encode calls with backoff.
func Retry(maxRetries int, backoff BackoffFunc) Middleware {
	if backoff == nil {
		backoff = ExponentialBackoff(500*time.Millisecond, 30*time.Second)
	}
	return func(e Encoder) Encoder {
		return &retryEncoder{next: e, maxRetries: maxRetries, backoff: backoff}
	}
}

func (r *retryEncoder) Encode(ctx context.Context, sentences []string, opts Options) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		vectors, err := r.next.Encode(ctx, sentences, opts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if attempt == r.maxRetries {
			break
		}
		select {
		case <-time.After(r.backoff(attempt)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
