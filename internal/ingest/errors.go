package ingest

import "fmt"

// ProtocolFramingError is connection-fatal: a malformed length prefix or an
// oversize Batched frame. It never affects other peers.
type ProtocolFramingError struct {
	Detail string
}

func (e *ProtocolFramingError) Error() string {
	return fmt.Sprintf("ingest: protocol framing error: %s", e.Detail)
}

// RecordParseError covers a bad line or an undecodable blob. It is recorded
// and dropped: never connection-fatal for text listeners, blob-fatal (whole
// blob discarded) for Batched.
type RecordParseError struct {
	Raw    string
	Reason string
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("ingest: record parse error: %s (%q)", e.Reason, e.Raw)
}

// ValueCoercionError covers a non-numeric value or timestamp; the record is
// dropped.
type ValueCoercionError struct {
	Field string
	Raw   string
}

func (e *ValueCoercionError) Error() string {
	return fmt.Sprintf("ingest: cannot coerce %s %q to float64", e.Field, e.Raw)
}
