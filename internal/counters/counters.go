// Package counters implements the process-wide counter table: a mapping of
// name to atomically incremented int64, sampled non-destructively by the
// instrumentation layer. Grounded on the corpus's preference for sync/atomic
// over a mutex-guarded map for hot counters (pkg/metricstore's MemoryUsageTracker
// reads runtime stats without ever taking the store's write lock).
package counters

import "sync/atomic"

// Table is a fixed set of named counters known at construction time; the
// spec's counter table only ever needs a handful of well-known names, so a
// struct of atomics avoids a map lookup on every increment.
type Table struct {
	metricsReceived atomic.Int64
	cacheQueries    atomic.Int64
	framingErrors   atomic.Int64
	parseErrors     atomic.Int64
	clientsPaused   atomic.Bool
}

// New returns an empty counter table.
func New() *Table {
	return &Table{}
}

func (t *Table) IncMetricsReceived(n int64) { t.metricsReceived.Add(n) }
func (t *Table) IncCacheQueries()           { t.cacheQueries.Add(1) }
func (t *Table) IncFramingErrors()          { t.framingErrors.Add(1) }
func (t *Table) IncParseErrors()            { t.parseErrors.Add(1) }

func (t *Table) MetricsReceived() int64 { return t.metricsReceived.Load() }
func (t *Table) CacheQueries() int64    { return t.cacheQueries.Load() }
func (t *Table) FramingErrors() int64   { return t.framingErrors.Load() }
func (t *Table) ParseErrors() int64     { return t.parseErrors.Load() }

// SetClientsPaused records the registry's effective pause state for
// observability; it does not itself drive pause/resume.
func (t *Table) SetClientsPaused(paused bool) { t.clientsPaused.Store(paused) }
func (t *Table) ClientsPaused() bool           { return t.clientsPaused.Load() }

// Reset zeroes every counter. Sampling is otherwise non-destructive.
func (t *Table) Reset() {
	t.metricsReceived.Store(0)
	t.cacheQueries.Store(0)
	t.framingErrors.Store(0)
	t.parseErrors.Store(0)
}
