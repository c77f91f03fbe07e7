package ingest

import (
	"context"
	"net"
	"strings"
	"sync"

	carbondlog "github.com/carbond/carbond/internal/log"
)

// maxDatagramSize bounds a single UDP read; a record truncated by this
// limit is lost per spec.md §6 ("UDP max record size = MTU").
const maxDatagramSize = 65536

// LineDatagramListener accepts newline-delimited records over UDP. Datagram
// listeners are never pausable (UDP has no backpressure channel), per
// spec.md §4.2. Grounded on the graphite reference listener's
// serveUDP/handleUDPMessage.
type LineDatagramListener struct {
	addr string
	sink Sink

	mu   sync.Mutex
	conn *net.UDPConn
	wg   sync.WaitGroup
}

func NewLineDatagramListener(addr string, sink Sink) *LineDatagramListener {
	return &LineDatagramListener{addr: addr, sink: sink}
}

func (l *LineDatagramListener) ListenAndServe(ctx context.Context) error {
	udpAddr, err := net.ResolveUDPAddr("udp", l.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.Close()
	}()

	buf := make([]byte, maxDatagramSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return nil
		}
		packet := string(buf[:n])
		l.wg.Add(1)
		go l.handlePacket(packet)
	}
}

func (l *LineDatagramListener) handlePacket(packet string) {
	defer l.wg.Done()
	for _, line := range strings.Split(packet, "\n") {
		publishLine(l.sink, line)
	}
}

func (l *LineDatagramListener) Close() error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn != nil {
		if err := conn.Close(); err != nil {
			carbondlog.ComponentDebug("ingest", "lineDatagram close error: ", err)
		}
	}
	l.wg.Wait()
	return nil
}
