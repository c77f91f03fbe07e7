// Package wire implements the length-prefixed binary framing shared by the
// Batched ingestion listener and the cache query handler: a 4-byte
// big-endian length prefix followed by an Avro-encoded blob. The blob codec
// is grounded in the same github.com/linkedin/goavro/v2 dependency the
// corpus already uses for its on-disk checkpoint format, repurposed here
// from a container (OCF) file to a single in-memory binary record.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/linkedin/goavro/v2"
)

// MaxFrameLength caps any single Batched or query-response blob, per the
// protocol's MAX_LENGTH of 1 MiB. Exceeding it on read is a protocol error.
const MaxFrameLength = 1 << 20 // 1 MiB

// ErrFrameTooLarge is returned by ReadFrame when the announced length
// exceeds MaxFrameLength.
var ErrFrameTooLarge = fmt.Errorf("wire: frame exceeds max length of %d bytes", MaxFrameLength)

const batchSchema = `
{
  "type": "array",
  "items": {
    "type": "record",
    "name": "BatchRecord",
    "fields": [
      {"name": "metric", "type": "string"},
      {"name": "timestamp", "type": "double"},
      {"name": "value", "type": "double"}
    ]
  }
}`

var batchCodec *goavro.Codec

func init() {
	codec, err := goavro.NewCodec(batchSchema)
	if err != nil {
		panic(fmt.Sprintf("wire: invalid embedded batch schema: %v", err))
	}
	batchCodec = codec
}

// Record is one decoded (metric, (timestamp, value)) pair from a Batched
// blob.
type Record struct {
	Metric    string
	Timestamp float64
	Value     float64
}

const pointSchema = `
{
  "type": "array",
  "items": {
    "type": "record",
    "name": "QueryPoint",
    "fields": [
      {"name": "timestamp", "type": "double"},
      {"name": "value", "type": "double"}
    ]
  }
}`

var pointCodec *goavro.Codec

func init() {
	codec, err := goavro.NewCodec(pointSchema)
	if err != nil {
		panic(fmt.Sprintf("wire: invalid embedded point schema: %v", err))
	}
	pointCodec = codec
}

// Point is one decoded (timestamp, value) pair from a query response.
type Point struct {
	Timestamp float64
	Value     float64
}

// EncodePoints serializes the cache-query response blob.
func EncodePoints(points []Point) ([]byte, error) {
	native := make([]any, len(points))
	for i, p := range points {
		native[i] = map[string]any{"timestamp": p.Timestamp, "value": p.Value}
	}
	buf, err := pointCodec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("wire: encoding points: %w", err)
	}
	return buf, nil
}

// DecodePoints parses a blob produced by EncodePoints.
func DecodePoints(blob []byte) ([]Point, error) {
	native, _, err := pointCodec.NativeFromBinary(blob)
	if err != nil {
		return nil, fmt.Errorf("wire: decoding points: %w", err)
	}
	items, ok := native.([]any)
	if !ok {
		return nil, fmt.Errorf("wire: decoded points have unexpected shape %T", native)
	}
	out := make([]Point, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("wire: decoded point %d has unexpected shape %T", i, item)
		}
		out[i] = Point{Timestamp: m["timestamp"].(float64), Value: m["value"].(float64)}
	}
	return out, nil
}

// EncodeBatch serializes records into the blob format carried inside a
// length-prefixed frame.
func EncodeBatch(records []Record) ([]byte, error) {
	native := make([]any, len(records))
	for i, r := range records {
		native[i] = map[string]any{
			"metric":    r.Metric,
			"timestamp": r.Timestamp,
			"value":     r.Value,
		}
	}
	buf, err := batchCodec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("wire: encoding batch: %w", err)
	}
	return buf, nil
}

// DecodeBatch parses a blob produced by EncodeBatch. NaN values are not
// dropped here — callers apply the protocol's NaN-rejection rule themselves
// (see internal/ingest), matching spec.md's note that the decoded count,
// not the post-filter count, is what the ingest counter reflects.
func DecodeBatch(blob []byte) ([]Record, error) {
	native, _, err := batchCodec.NativeFromBinary(blob)
	if err != nil {
		return nil, fmt.Errorf("wire: decoding batch: %w", err)
	}
	items, ok := native.([]any)
	if !ok {
		return nil, fmt.Errorf("wire: decoded batch has unexpected shape %T", native)
	}
	out := make([]Record, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("wire: decoded batch record %d has unexpected shape %T", i, item)
		}
		out[i] = Record{
			Metric:    m["metric"].(string),
			Timestamp: m["timestamp"].(float64),
			Value:     m["value"].(float64),
		}
	}
	return out, nil
}

// WriteFrame writes a 4-byte big-endian length prefix followed by payload.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameLength {
		return ErrFrameTooLarge
	}
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame, rejecting announced lengths
// above MaxFrameLength without reading the oversize payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameLength {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// IsNaN reports whether a decoded value is the protocol's absent marker.
func IsNaN(v float64) bool {
	return math.IsNaN(v)
}
