// Package query implements the cache-read protocol of spec.md §4.4: a
// length-prefixed request/response stream sharing the Batched listener's
// framing, returning the pending datapoints for a metric without draining
// them.
package query

import (
	"errors"
	"io"
	"net"

	carbondlog "github.com/carbond/carbond/internal/log"
	"github.com/carbond/carbond/internal/schema"
	"github.com/carbond/carbond/internal/wire"
)

// Cache is the read side of internal/cache.Cache this handler depends on.
type Cache interface {
	Get(metric string) []schema.Datapoint
}

// Counters is the subset of the counter table the query handler touches.
type Counters interface {
	IncCacheQueries()
	IncFramingErrors()
}

// Handler serves the query protocol over accepted TCP connections.
type Handler struct {
	cache    Cache
	counters Counters
}

func NewHandler(cache Cache, counters Counters) *Handler {
	return &Handler{cache: cache, counters: counters}
}

// ServeConn handles one query connection until the peer disconnects or a
// framing error occurs; framing errors close the connection without
// affecting other peers.
func (h *Handler) ServeConn(conn net.Conn) {
	defer conn.Close()
	for {
		req, err := wire.ReadFrame(conn)
		if err != nil {
			if errors.Is(err, wire.ErrFrameTooLarge) {
				h.counters.IncFramingErrors()
				carbondlog.ComponentDebug("query", "request frame exceeds max length, closing connection")
			} else if err != io.EOF {
				carbondlog.ComponentDebug("query", "connection error: ", err)
			}
			return
		}

		metric := string(req)
		points := h.cache.Get(metric)
		h.counters.IncCacheQueries()

		resp := make([]wire.Point, len(points))
		for i, dp := range points {
			resp[i] = wire.Point{Timestamp: float64(dp.Timestamp), Value: float64(dp.Value)}
		}
		blob, err := wire.EncodePoints(resp)
		if err != nil {
			carbondlog.ComponentError("query", "encoding response: ", err)
			return
		}
		if err := wire.WriteFrame(conn, blob); err != nil {
			carbondlog.ComponentDebug("query", "write error: ", err)
			return
		}
	}
}
