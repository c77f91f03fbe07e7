package query

import (
	"net"
	"testing"
	"time"

	"github.com/carbond/carbond/internal/schema"
	"github.com/carbond/carbond/internal/wire"
)

type fakeCache struct {
	points map[string][]schema.Datapoint
}

func (f *fakeCache) Get(metric string) []schema.Datapoint {
	return f.points[metric]
}

type fakeCounters struct {
	queries       int
	framingErrors int
}

func (f *fakeCounters) IncCacheQueries()  { f.queries++ }
func (f *fakeCounters) IncFramingErrors() { f.framingErrors++ }

func TestServeConnReturnsCachedPoints(t *testing.T) {
	cache := &fakeCache{points: map[string][]schema.Datapoint{
		"cpu.load": {
			{Timestamp: 1700000000, Value: 1.5},
			{Timestamp: 1700000060, Value: 2.0},
		},
	}}
	counters := &fakeCounters{}
	h := NewHandler(cache, counters)

	server, client := net.Pipe()
	defer client.Close()
	go func() {
		h.ServeConn(server)
	}()

	if err := wire.WriteFrame(client, []byte("cpu.load")); err != nil {
		t.Fatalf("write request: %v", err)
	}
	blob, err := wire.ReadFrame(client)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	points, err := wire.DecodePoints(blob)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(points))
	}
	if points[0].Timestamp != 1700000000 || points[0].Value != 1.5 {
		t.Errorf("points[0] = %+v", points[0])
	}
	if counters.queries != 1 {
		t.Errorf("queries = %d, want 1", counters.queries)
	}
}

func TestServeConnUnknownMetricReturnsEmpty(t *testing.T) {
	cache := &fakeCache{points: map[string][]schema.Datapoint{}}
	counters := &fakeCounters{}
	h := NewHandler(cache, counters)

	server, client := net.Pipe()
	defer client.Close()
	go func() {
		h.ServeConn(server)
	}()

	if err := wire.WriteFrame(client, []byte("no.such.metric")); err != nil {
		t.Fatalf("write request: %v", err)
	}
	blob, err := wire.ReadFrame(client)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	points, err := wire.DecodePoints(blob)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("len(points) = %d, want 0", len(points))
	}
}

func TestServeConnHandlesMultipleRequestsOnOneConn(t *testing.T) {
	cache := &fakeCache{points: map[string][]schema.Datapoint{
		"a": {{Timestamp: 1, Value: 1}},
		"b": {{Timestamp: 2, Value: 2}},
	}}
	counters := &fakeCounters{}
	h := NewHandler(cache, counters)

	server, client := net.Pipe()
	defer client.Close()
	go func() {
		h.ServeConn(server)
	}()

	for _, metric := range []string{"a", "b"} {
		if err := wire.WriteFrame(client, []byte(metric)); err != nil {
			t.Fatalf("write request %q: %v", metric, err)
		}
		blob, err := wire.ReadFrame(client)
		if err != nil {
			t.Fatalf("read response for %q: %v", metric, err)
		}
		points, err := wire.DecodePoints(blob)
		if err != nil {
			t.Fatalf("decode response for %q: %v", metric, err)
		}
		if len(points) != 1 {
			t.Errorf("metric %q: len(points) = %d, want 1", metric, len(points))
		}
	}
	if counters.queries != 2 {
		t.Errorf("queries = %d, want 2", counters.queries)
	}
}

func TestServeConnClosesOnDisconnect(t *testing.T) {
	cache := &fakeCache{points: map[string][]schema.Datapoint{}}
	counters := &fakeCounters{}
	h := NewHandler(cache, counters)

	server, client := net.Pipe()
	done := make(chan struct{})
	go func() {
		h.ServeConn(server)
		close(done)
	}()

	client.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ServeConn did not return after client disconnect")
	}
}
