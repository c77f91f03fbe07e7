// Package cache implements the process-wide MetricCache: an ordered map
// from metric name to its pending list of datapoints, written by every
// ingestion listener and read by the query handler and the persister drain
// worker. The sharded-map-of-locks layout is grounded on the Level type's
// children-map-plus-RWMutex pattern used throughout the teacher's in-memory
// metric store.
package cache

import (
	"sync"
	"sync/atomic"

	"github.com/carbond/carbond/internal/schema"
)

const shardCount = 64

type shard struct {
	mu      sync.RWMutex
	metrics map[string][]schema.Datapoint
}

// Cache is the process-wide pending-datapoint store described by spec.md
// §4.3. Writers append under a per-shard lock; size() is tracked as an
// atomic running total so it never needs to walk every shard.
type Cache struct {
	shards [shardCount]*shard
	size   int64
}

// New constructs an empty cache.
func New() *Cache {
	c := &Cache{}
	for i := range c.shards {
		c.shards[i] = &shard{metrics: make(map[string][]schema.Datapoint)}
	}
	return c
}

func (c *Cache) shardFor(metric string) *shard {
	h := fnv32(metric)
	return c.shards[h%shardCount]
}

func fnv32(s string) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}
	return h
}

// Store appends a datapoint to metric's pending list, creating the list if
// absent. Safe for concurrent use by any number of writers and one drainer.
func (c *Cache) Store(metric string, dp schema.Datapoint) {
	sh := c.shardFor(metric)
	sh.mu.Lock()
	sh.metrics[metric] = append(sh.metrics[metric], dp)
	sh.mu.Unlock()
	atomic.AddInt64(&c.size, 1)
}

// Get returns a snapshot of metric's pending list; an unknown metric yields
// an empty (non-nil) slice. The returned slice is a copy: callers may not
// mutate the cache's backing array through it.
func (c *Cache) Get(metric string) []schema.Datapoint {
	sh := c.shardFor(metric)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	existing := sh.metrics[metric]
	out := make([]schema.Datapoint, len(existing))
	copy(out, existing)
	return out
}

// PopMetric atomically drains one metric's pending list for the persister.
// The caller does not choose which metric is popped up front: Pop picks an
// arbitrary non-empty metric (if any) and removes it entirely, returning
// its name and its datapoints in arrival order. ok is false if the cache
// held no pending datapoints.
func (c *Cache) PopMetric() (metric string, points []schema.Datapoint, ok bool) {
	for _, sh := range c.shards {
		sh.mu.Lock()
		for name, pts := range sh.metrics {
			if len(pts) == 0 {
				continue
			}
			delete(sh.metrics, name)
			sh.mu.Unlock()
			atomic.AddInt64(&c.size, -int64(len(pts)))
			return name, pts, true
		}
		sh.mu.Unlock()
	}
	return "", nil, false
}

// Size returns the total pending datapoint count across all metrics.
func (c *Cache) Size() int64 {
	return atomic.LoadInt64(&c.size)
}

// Reset clears every pending list without draining to a persister.
func (c *Cache) Reset() {
	for _, sh := range c.shards {
		sh.mu.Lock()
		sh.metrics = make(map[string][]schema.Datapoint)
		sh.mu.Unlock()
	}
	atomic.StoreInt64(&c.size, 0)
}
