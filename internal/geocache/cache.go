// Package geocache is the layered lookup in front of the static geodata
// files: process memory, then a persisted store with a TTL, then one load of
// the per-state file.
package geocache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// Kind names a cache instance and sets its persisted key prefix and TTL.
type Kind struct {
	Name   string
	Prefix string
	TTL    time.Duration
}

var (
	Boundaries  = Kind{Name: "boundary", Prefix: "rto:boundary:", TTL: 7 * 24 * time.Hour}
	Coordinates = Kind{Name: "coordinate", Prefix: "rto:coord:", TTL: 30 * 24 * time.Hour}
)

// Batch is everything one static file holds for a state.
type Batch[T any] struct {
	Items  map[string]T
	Failed []string
}

// LoadFunc reads the static file of a state.
type LoadFunc[T any] func(ctx context.Context, state string) (Batch[T], error)

type entry[T any] struct {
	Value     T     `json:"value"`
	Timestamp int64 `json:"timestamp"`
}

// Options tune a Cache. Zero values pick the defaults.
type Options struct {
	Store       Store
	Now         func() time.Time
	LoadTimeout time.Duration
	// NegativeTTL bounds how long a failed state load is remembered; zero keeps
	// it until Clear.
	NegativeTTL time.Duration
}

// Cache answers per-key lookups of one geodata kind. Safe for concurrent use.
type Cache[T any] struct {
	kind        Kind
	load        LoadFunc[T]
	store       Store
	now         func() time.Time
	loadTimeout time.Duration
	negTTL      time.Duration

	mu       sync.RWMutex
	mem      map[string]map[string]T
	loaded   map[string]bool
	negative map[string]time.Time
	failed   map[string][]string
	gen      uint64

	group singleflight.Group
}

func New[T any](kind Kind, load LoadFunc[T], opts Options) *Cache[T] {
	c := &Cache[T]{
		kind:        kind,
		load:        load,
		store:       opts.Store,
		now:         opts.Now,
		loadTimeout: opts.LoadTimeout,
		negTTL:      opts.NegativeTTL,
	}
	if c.store == nil {
		c.store = NopStore{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.loadTimeout <= 0 {
		c.loadTimeout = 30 * time.Second
	}
	c.reset()
	return c
}

func (c *Cache[T]) reset() {
	c.mem = make(map[string]map[string]T)
	c.loaded = make(map[string]bool)
	c.negative = make(map[string]time.Time)
	c.failed = make(map[string][]string)
}

func (c *Cache[T]) Kind() Kind { return c.kind }

func stateKey(state string) string { return strings.ToLower(strings.TrimSpace(state)) }

// PersistKey is the persisted-tier key of one item.
func (c *Cache[T]) PersistKey(state, key string) string {
	return c.kind.Prefix + stateKey(state) + ":" + key
}

func (c *Cache[T]) memGet(sk, key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.mem[sk][key]
	return v, ok
}

func (c *Cache[T]) memPut(sk, key string, v T) {
	c.mu.Lock()
	if c.mem[sk] == nil {
		c.mem[sk] = make(map[string]T)
	}
	c.mem[sk][key] = v
	c.mu.Unlock()
}

// GetCached checks memory then the persisted store. It never loads the static
// file. Expired or undecodable persisted entries are deleted.
func (c *Cache[T]) GetCached(ctx context.Context, state, key string) (T, bool) {
	sk := stateKey(state)
	if v, ok := c.memGet(sk, key); ok {
		metrics.GeoCacheHitsTotal.WithLabelValues(c.kind.Name, "memory").Inc()
		return v, true
	}
	var zero T
	pk := c.PersistKey(state, key)
	raw, ok, err := c.store.Get(ctx, pk)
	if err != nil {
		logger.L().Debug("geocache_store_get_error", "kind", c.kind.Name, "key", pk, "err", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	var e entry[T]
	if err := json.Unmarshal(raw, &e); err != nil {
		c.evict(ctx, pk, "corrupt")
		return zero, false
	}
	if c.now().Sub(time.UnixMilli(e.Timestamp)) > c.kind.TTL {
		c.evict(ctx, pk, "expired")
		return zero, false
	}
	c.memPut(sk, key, e.Value)
	metrics.GeoCacheHitsTotal.WithLabelValues(c.kind.Name, "persisted").Inc()
	return e.Value, true
}

func (c *Cache[T]) evict(ctx context.Context, pk, reason string) {
	_ = c.store.Del(ctx, pk)
	metrics.GeoCacheEvictionsTotal.WithLabelValues(c.kind.Name).Inc()
	logger.L().Debug("geocache_evict", "kind", c.kind.Name, "key", pk, "reason", reason)
}

// Fetch: memory, persisted store, then the state's static file.
// Background: the tile map asks for one district at a time but the static
// file holds the whole state, so one load fills memory for every key.
// Constraint: at most one load per state in flight, shared by concurrent
// callers; a failed load is remembered until Clear or NegativeTTL.
func (c *Cache[T]) Fetch(ctx context.Context, state, key string) (T, bool) {
	if v, ok := c.GetCached(ctx, state, key); ok {
		return v, true
	}
	var zero T
	sk := stateKey(state)
	if !c.ensureLoaded(ctx, state) {
		metrics.GeoCacheMissesTotal.WithLabelValues(c.kind.Name).Inc()
		return zero, false
	}
	v, ok := c.memGet(sk, key)
	if !ok {
		metrics.GeoCacheMissesTotal.WithLabelValues(c.kind.Name).Inc()
		return zero, false
	}
	metrics.GeoCacheHitsTotal.WithLabelValues(c.kind.Name, "static").Inc()
	c.persist(ctx, state, key, v)
	return v, true
}

func (c *Cache[T]) persist(ctx context.Context, state, key string, v T) {
	b, err := json.Marshal(entry[T]{Value: v, Timestamp: c.now().UnixMilli()})
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.PersistKey(state, key), b, c.kind.TTL); err != nil {
		logger.L().Debug("geocache_store_set_error", "kind", c.kind.Name, "err", err)
	}
}

// Entries loads the state if needed and returns every item known for it.
func (c *Cache[T]) Entries(ctx context.Context, state string) map[string]T {
	c.ensureLoaded(ctx, state)
	sk := stateKey(state)
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]T, len(c.mem[sk]))
	for k, v := range c.mem[sk] {
		out[k] = v
	}
	return out
}

// Failed returns the per-item failures the state's file reported.
func (c *Cache[T]) Failed(state string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f := c.failed[stateKey(state)]
	out := make([]string, len(f))
	copy(out, f)
	return out
}

// ensureLoaded reports whether the state's static file is in memory.
func (c *Cache[T]) ensureLoaded(ctx context.Context, state string) bool {
	sk := stateKey(state)
	c.mu.RLock()
	loaded := c.loaded[sk]
	negAt, neg := c.negative[sk]
	gen := c.gen
	c.mu.RUnlock()
	if loaded {
		return true
	}
	if neg && (c.negTTL <= 0 || c.now().Sub(negAt) < c.negTTL) {
		return false
	}
	ch := c.group.DoChan(strconv.FormatUint(gen, 10)+"|"+sk, func() (any, error) {
		return c.loadState(ctx, state, sk, gen), nil
	})
	select {
	case res := <-ch:
		return res.Val.(bool)
	case <-ctx.Done():
		return false
	}
}

func (c *Cache[T]) loadState(ctx context.Context, state, sk string, gen uint64) bool {
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
	defer cancel()
	t0 := time.Now()
	batch, err := c.load(lctx, state)
	metrics.StaticLoadDurationMs.WithLabelValues(c.kind.Name).Observe(float64(time.Since(t0).Milliseconds()))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		logger.L().Debug("geocache_load_discarded", "kind", c.kind.Name, "state", state)
		return false
	}
	if err != nil {
		c.negative[sk] = c.now()
		metrics.StaticLoadsTotal.WithLabelValues(c.kind.Name, "fail").Inc()
		logger.L().Warn("geocache_static_load_failed", "kind", c.kind.Name, "state", state, "err", err)
		return false
	}
	m := c.mem[sk]
	if m == nil {
		m = make(map[string]T, len(batch.Items))
		c.mem[sk] = m
	}
	for k, v := range batch.Items {
		m[k] = v
	}
	c.loaded[sk] = true
	delete(c.negative, sk)
	c.failed[sk] = append([]string(nil), batch.Failed...)
	metrics.StaticLoadsTotal.WithLabelValues(c.kind.Name, "ok").Inc()
	logger.L().Info("geocache_static_load", "kind", c.kind.Name, "state", state, "items", len(batch.Items), "failed", len(batch.Failed), "duration_ms", time.Since(t0).Milliseconds())
	return true
}

// Clear: drop memory, this kind's persisted entries, negative and loaded
// markers.
// Constraint: loads in flight when Clear runs are discarded on completion.
func (c *Cache[T]) Clear(ctx context.Context) {
	c.mu.Lock()
	c.reset()
	c.gen++
	c.mu.Unlock()
	if err := c.store.Clear(ctx, c.kind.Prefix); err != nil {
		logger.L().Warn("geocache_store_clear_error", "kind", c.kind.Name, "err", err)
	}
	logger.L().Info("geocache_cleared", "kind", c.kind.Name)
}
