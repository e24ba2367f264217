// Package predcache memoizes model predictions in a bounded in-process LRU.
// The model is a pure function of the vector, so a cached label never goes stale.
package predcache

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/mqttguard/internal/domain/feature"
	predictuc "github.com/kailas-cloud/mqttguard/internal/usecase/predict"
)

// CachedPredictor caches labels keyed by the exact vector bits.
type CachedPredictor struct {
	inner      predictuc.Predictor
	cache      *lru.Cache[string, int]
	cacheTotal *prometheus.CounterVec
}

var _ predictuc.Predictor = (*CachedPredictor)(nil)

// New creates a caching decorator holding at most size entries.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly; may be nil.
func New(inner predictuc.Predictor, size int, cacheTotal *prometheus.CounterVec) (*CachedPredictor, error) {
	cache, err := lru.New[string, int](size)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	return &CachedPredictor{inner: inner, cache: cache, cacheTotal: cacheTotal}, nil
}

// Predict returns a cached label or calls the inner predictor. Errors are not cached.
func (c *CachedPredictor) Predict(ctx context.Context, v feature.Vector) (int, error) {
	key := cacheKey(v)

	if label, ok := c.cache.Get(key); ok {
		c.incCache("hit")
		return label, nil
	}
	c.incCache("miss")

	label, err := c.inner.Predict(ctx, v)
	if err != nil {
		return 0, fmt.Errorf("predict vector: %w", err)
	}

	c.cache.Add(key, label)
	return label, nil
}

// Len returns the number of cached entries.
func (c *CachedPredictor) Len() int {
	return c.cache.Len()
}

func (c *CachedPredictor) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey encodes v as little-endian float64 bits. -0 and +0 get distinct
// keys, which only costs a miss.
func cacheKey(v feature.Vector) string {
	buf := make([]byte, len(v)*8)
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return string(buf)
}
