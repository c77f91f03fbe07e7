package ingest

import (
	"strconv"
	"strings"

	carbondlog "github.com/carbond/carbond/internal/log"
	"github.com/carbond/carbond/internal/schema"
)

// Sink is the shared post-parse publish target for every listener variant:
// the cache store plus the counter table it must keep in sync with. Kept as
// an interface so the listeners never depend on the concrete cache type.
type Sink interface {
	Store(metric string, dp schema.Datapoint)
	IncMetricsReceived(n int64)
	IncParseErrors()
	IncFramingErrors()
}

// parseLine decodes a single "metric value timestamp" record. A record that
// fails coercion is reported as a ValueCoercionError; callers drop it and
// move on without closing the connection, per spec.md §4.1 step 1.
func parseLine(line string) (metric string, value, timestamp float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return "", 0, 0, &RecordParseError{Raw: line, Reason: "expected 3 space-separated fields"}
	}

	value, verr := strconv.ParseFloat(fields[1], 64)
	if verr != nil {
		return "", 0, 0, &ValueCoercionError{Field: "value", Raw: fields[1]}
	}
	timestamp, terr := strconv.ParseFloat(fields[2], 64)
	if terr != nil {
		return "", 0, 0, &ValueCoercionError{Field: "timestamp", Raw: fields[2]}
	}
	return fields[0], value, timestamp, nil
}

// publishLine runs the shared post-parse path of spec.md §4.1 for a single
// decoded line: reject NaN, count, store. Malformed lines never terminate
// the connection — the caller logs at most once per invalid record and
// continues.
func publishLine(sink Sink, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	metric, value, timestamp, err := parseLine(line)
	if err != nil {
		sink.IncParseErrors()
		carbondlog.ComponentDebug("ingest", "dropping malformed record: ", err)
		return
	}

	if value != value { // NaN
		return
	}

	sink.IncMetricsReceived(1)
	sink.Store(metric, schema.Datapoint{Timestamp: int64(timestamp), Value: schema.Float(value)})
}
