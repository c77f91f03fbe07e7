package ingest

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	carbondlog "github.com/carbond/carbond/internal/log"
	"github.com/carbond/carbond/internal/schema"
	"github.com/carbond/carbond/internal/wire"
)

// BatchedListener accepts 4-byte-length-prefixed Avro-encoded blobs over
// TCP, each decoding to a heterogeneous list of (metric, (timestamp,
// value)) pairs, per spec.md §4.1's Batched variant. A blob exceeding
// wire.MaxFrameLength is a protocol error and closes the connection; a
// decode failure for the whole blob is logged and the blob discarded
// without closing the connection.
type BatchedListener struct {
	addr     string
	sink     Sink
	registry *ClientManager

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
}

func NewBatchedListener(addr string, sink Sink, registry *ClientManager) *BatchedListener {
	return &BatchedListener{addr: addr, sink: sink, registry: registry}
}

func (l *BatchedListener) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.listener = ln
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			return nil
		}
		l.wg.Add(1)
		go l.handleConn(conn)
	}
}

func (l *BatchedListener) handleConn(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	client := l.registry.register(conn)
	defer l.registry.unregister(client)

	for {
		if closed := client.waitWhilePaused(); closed {
			return
		}
		blob, err := wire.ReadFrame(conn)
		if err != nil {
			if errors.Is(err, wire.ErrFrameTooLarge) {
				carbondlog.ComponentDebug("ingest", "batched frame exceeds max length, closing connection")
				l.sink.IncFramingErrors()
			} else if !errors.Is(err, io.EOF) {
				carbondlog.ComponentDebug("ingest", "batched connection error: ", err)
			}
			return
		}

		records, err := wire.DecodeBatch(blob)
		if err != nil {
			carbondlog.ComponentDebug("ingest", "discarding undecodable batch blob: ", err)
			continue
		}

		l.sink.IncMetricsReceived(int64(len(records)))
		for _, r := range records {
			if wire.IsNaN(r.Value) {
				continue
			}
			l.sink.Store(r.Metric, schema.Datapoint{Timestamp: int64(r.Timestamp), Value: schema.Float(r.Value)})
		}
	}
}

func (l *BatchedListener) Close() error {
	l.mu.Lock()
	ln := l.listener
	l.mu.Unlock()
	if ln != nil {
		ln.Close()
	}
	l.wg.Wait()
	return nil
}
