package wire

import (
	"bytes"
	"math"
	"testing"
)

func TestEncodeDecodeBatchRoundTrip(t *testing.T) {
	records := []Record{
		{Metric: "cpu.load", Timestamp: 1700000000, Value: 1.5},
		{Metric: "mem.used", Timestamp: 1700000010, Value: 42},
	}

	blob, err := EncodeBatch(records)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeBatch(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(records) {
		t.Fatalf("len = %d, want %d", len(decoded), len(records))
	}
	for i, want := range records {
		if decoded[i] != want {
			t.Errorf("decoded[%d] = %+v, want %+v", i, decoded[i], want)
		}
	}
}

func TestDecodeBatchNaNNotDropped(t *testing.T) {
	records := []Record{
		{Metric: "m", Timestamp: 1, Value: 1.0},
		{Metric: "m", Timestamp: 2, Value: math.NaN()},
	}
	blob, err := EncodeBatch(records)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeBatch(blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 {
		t.Fatalf("len = %d, want 2 (decode count, not filtered count)", len(decoded))
	}
	if !IsNaN(decoded[1].Value) {
		t.Errorf("decoded[1].Value should be NaN")
	}
}

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello carbond")
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("got %q, want %q", got, payload)
	}
}

func TestWriteFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	oversize := make([]byte, MaxFrameLength+1)
	if err := WriteFrame(&buf, oversize); err != ErrFrameTooLarge {
		t.Errorf("err = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	var lenBuf [4]byte
	lenBuf[0] = 0xFF // announce an absurd length
	buf.Write(lenBuf[:])
	if _, err := ReadFrame(&buf); err != ErrFrameTooLarge {
		t.Errorf("err = %v, want ErrFrameTooLarge", err)
	}
}
