package cache

import (
	"sync"
	"testing"

	"github.com/carbond/carbond/internal/schema"
)

// ─── Store / Get ─────────────────────────────────────────────────────────────

// TestGetReturnsNonAliasedCopy verifies mutating a slice returned by Get does
// not corrupt the cache's backing array.
func TestGetReturnsNonAliasedCopy(t *testing.T) {
	c := New()
	c.Store("cpu.load", schema.Datapoint{Timestamp: 1, Value: 1.0})

	got := c.Get("cpu.load")
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	got[0].Value = 99.0

	again := c.Get("cpu.load")
	if float64(again[0].Value) != 1.0 {
		t.Errorf("Get after mutating a prior result returned %+v, want Value=1.0 (aliased backing array)", again[0])
	}
}

// TestGetUnknownMetricReturnsEmpty verifies an unknown metric yields a
// non-nil empty slice rather than nil.
func TestGetUnknownMetricReturnsEmpty(t *testing.T) {
	c := New()
	got := c.Get("no.such.metric")
	if got == nil {
		t.Error("Get of unknown metric returned nil, want non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("len(got) = %d, want 0", len(got))
	}
}

// TestStoreAppendsInArrivalOrder verifies repeated Store calls append rather
// than overwrite.
func TestStoreAppendsInArrivalOrder(t *testing.T) {
	c := New()
	c.Store("cpu.load", schema.Datapoint{Timestamp: 1, Value: 1.0})
	c.Store("cpu.load", schema.Datapoint{Timestamp: 2, Value: 2.0})
	c.Store("cpu.load", schema.Datapoint{Timestamp: 3, Value: 3.0})

	got := c.Get("cpu.load")
	if len(got) != 3 {
		t.Fatalf("len(got) = %d, want 3", len(got))
	}
	for i, want := range []int64{1, 2, 3} {
		if got[i].Timestamp != want {
			t.Errorf("got[%d].Timestamp = %d, want %d", i, got[i].Timestamp, want)
		}
	}
}

// ─── PopMetric ───────────────────────────────────────────────────────────────

// TestPopMetricDrainsEntireMetric verifies PopMetric removes all pending
// points for the metric it selects, leaving nothing behind for that metric.
func TestPopMetricDrainsEntireMetric(t *testing.T) {
	c := New()
	c.Store("cpu.load", schema.Datapoint{Timestamp: 1, Value: 1.0})
	c.Store("cpu.load", schema.Datapoint{Timestamp: 2, Value: 2.0})

	metric, points, ok := c.PopMetric()
	if !ok {
		t.Fatal("PopMetric() ok = false, want true")
	}
	if metric != "cpu.load" {
		t.Errorf("metric = %q, want cpu.load", metric)
	}
	if len(points) != 2 {
		t.Errorf("len(points) = %d, want 2", len(points))
	}

	if got := c.Get("cpu.load"); len(got) != 0 {
		t.Errorf("cpu.load still has %d pending points after PopMetric", len(got))
	}
}

// TestPopMetricEmptyCacheReturnsFalse verifies draining an empty cache is
// observable via ok rather than a zero-value metric/points pair.
func TestPopMetricEmptyCacheReturnsFalse(t *testing.T) {
	c := New()
	_, _, ok := c.PopMetric()
	if ok {
		t.Error("PopMetric() on empty cache: ok = true, want false")
	}
}

// TestPopMetricDrainsEveryStoredMetric verifies repeated PopMetric calls
// eventually drain every metric ever stored, each exactly once.
func TestPopMetricDrainsEveryStoredMetric(t *testing.T) {
	c := New()
	want := map[string]int{"a": 1, "b": 2, "c": 3}
	for metric, n := range want {
		for i := 0; i < n; i++ {
			c.Store(metric, schema.Datapoint{Timestamp: int64(i), Value: schema.Float(i)})
		}
	}

	got := map[string]int{}
	for {
		metric, points, ok := c.PopMetric()
		if !ok {
			break
		}
		got[metric] = len(points)
	}

	if len(got) != len(want) {
		t.Fatalf("drained %d distinct metrics, want %d", len(got), len(want))
	}
	for metric, n := range want {
		if got[metric] != n {
			t.Errorf("metric %q drained with %d points, want %d", metric, got[metric], n)
		}
	}
}

// ─── concurrent Store + PopMetric ───────────────────────────────────────────

// TestConcurrentStoreAndPopMetricConservesCount verifies that datapoints
// written by concurrent writers are neither lost nor duplicated across
// concurrent PopMetric drains: every stored point is accounted for by
// exactly one drain.
func TestConcurrentStoreAndPopMetricConservesCount(t *testing.T) {
	c := New()
	const writers = 8
	const perWriter = 200

	total := 0
	stop := make(chan struct{})
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, points, ok := c.PopMetric(); ok {
				total += len(points)
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				c.Store("metric", schema.Datapoint{Timestamp: int64(i), Value: schema.Float(w)})
			}
		}(w)
	}
	wg.Wait()
	close(stop)
	<-drainDone

	for {
		_, points, ok := c.PopMetric()
		if !ok {
			break
		}
		total += len(points)
	}

	want := writers * perWriter
	if total != want {
		t.Errorf("drained %d datapoints, want %d", total, want)
	}
	if size := c.Size(); size != 0 {
		t.Errorf("Size() after fully draining = %d, want 0", size)
	}
}

// ─── Size / Reset ────────────────────────────────────────────────────────────

// TestSizeTracksStoreAndPopMetric verifies Size reflects Store/PopMetric
// without needing to walk every shard.
func TestSizeTracksStoreAndPopMetric(t *testing.T) {
	c := New()
	if size := c.Size(); size != 0 {
		t.Fatalf("Size() on empty cache = %d, want 0", size)
	}

	c.Store("a", schema.Datapoint{Timestamp: 1, Value: 1})
	c.Store("a", schema.Datapoint{Timestamp: 2, Value: 2})
	c.Store("b", schema.Datapoint{Timestamp: 3, Value: 3})
	if size := c.Size(); size != 3 {
		t.Errorf("Size() after 3 stores = %d, want 3", size)
	}

	if _, _, ok := c.PopMetric(); !ok {
		t.Fatal("PopMetric() ok = false, want true")
	}
	if size := c.Size(); size != 1 && size != 2 {
		t.Errorf("Size() after draining one metric = %d, want 1 or 2 depending on drain order", size)
	}
}

// TestResetClearsSizeAndContents verifies Reset drops every pending metric
// and zeroes Size without going through PopMetric.
func TestResetClearsSizeAndContents(t *testing.T) {
	c := New()
	c.Store("a", schema.Datapoint{Timestamp: 1, Value: 1})
	c.Store("b", schema.Datapoint{Timestamp: 2, Value: 2})

	c.Reset()

	if size := c.Size(); size != 0 {
		t.Errorf("Size() after Reset = %d, want 0", size)
	}
	if got := c.Get("a"); len(got) != 0 {
		t.Errorf("Get(\"a\") after Reset = %v, want empty", got)
	}
	if _, _, ok := c.PopMetric(); ok {
		t.Error("PopMetric() after Reset: ok = true, want false")
	}
}
