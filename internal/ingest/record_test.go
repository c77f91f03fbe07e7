package ingest

import (
	"testing"

	"github.com/carbond/carbond/internal/schema"
)

type fakeSink struct {
	stored          []schema.Datapoint
	metrics         []string
	metricsReceived int64
	parseErrors     int64
	framingErrors   int64
}

func (f *fakeSink) Store(metric string, dp schema.Datapoint) {
	f.metrics = append(f.metrics, metric)
	f.stored = append(f.stored, dp)
}
func (f *fakeSink) IncMetricsReceived(n int64) { f.metricsReceived += n }
func (f *fakeSink) IncParseErrors()            { f.parseErrors++ }
func (f *fakeSink) IncFramingErrors()          { f.framingErrors++ }

// TestPublishLineHappyPath reproduces spec end-to-end scenario 1.
func TestPublishLineHappyPath(t *testing.T) {
	sink := &fakeSink{}
	publishLine(sink, "cpu.load 1.5 1700000000\n")

	if sink.metricsReceived != 1 {
		t.Errorf("metricsReceived = %d, want 1", sink.metricsReceived)
	}
	if len(sink.stored) != 1 || sink.metrics[0] != "cpu.load" {
		t.Fatalf("stored = %v, metrics = %v", sink.stored, sink.metrics)
	}
	dp := sink.stored[0]
	if dp.Timestamp != 1700000000 || float64(dp.Value) != 1.5 {
		t.Errorf("stored datapoint = %+v, want {1700000000 1.5}", dp)
	}
}

func TestPublishLineMalformedIsDropped(t *testing.T) {
	sink := &fakeSink{}
	publishLine(sink, "not enough fields\n")
	if len(sink.stored) != 0 {
		t.Errorf("malformed line should not be stored, got %v", sink.stored)
	}
	if sink.parseErrors != 1 {
		t.Errorf("parseErrors = %d, want 1", sink.parseErrors)
	}
}

func TestPublishLineNonNumericValueDropped(t *testing.T) {
	sink := &fakeSink{}
	publishLine(sink, "cpu.load notanumber 1700000000\n")
	if len(sink.stored) != 0 {
		t.Errorf("non-numeric value should not be stored")
	}
	if sink.metricsReceived != 0 {
		t.Errorf("metricsReceived = %d, want 0", sink.metricsReceived)
	}
}

func TestPublishLineNaNRejectedBeforeCounting(t *testing.T) {
	sink := &fakeSink{}
	publishLine(sink, "cpu.load NaN 1700000000\n")
	if len(sink.stored) != 0 {
		t.Errorf("NaN value should not be stored")
	}
	if sink.metricsReceived != 0 {
		t.Errorf("metricsReceived = %d, want 0 (NaN rejected before counting for line protocols)", sink.metricsReceived)
	}
}

func TestPublishLineBlankIgnored(t *testing.T) {
	sink := &fakeSink{}
	publishLine(sink, "\n")
	if len(sink.stored) != 0 || sink.parseErrors != 0 {
		t.Errorf("blank line should be silently ignored, got stored=%v parseErrors=%d", sink.stored, sink.parseErrors)
	}
}
