package ingest

import (
	"net"
	"testing"
	"time"
)

func TestClientManagerPauseResumeIdempotent(t *testing.T) {
	m := NewClientManager()
	m.PauseAll()
	m.PauseAll()
	if !m.Paused() {
		t.Fatal("expected paused after PauseAll")
	}
	m.ResumeAll()
	m.ResumeAll()
	if m.Paused() {
		t.Fatal("expected resumed after ResumeAll")
	}
}

func TestNewConnectionStartsPausedWhenRegistryPaused(t *testing.T) {
	m := NewClientManager()
	m.PauseAll()

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	pc := m.register(server)
	defer m.unregister(pc)

	done := make(chan bool, 1)
	go func() {
		done <- pc.waitWhilePaused()
	}()

	select {
	case <-done:
		t.Fatal("waitWhilePaused returned before resume")
	case <-time.After(50 * time.Millisecond):
	}

	m.ResumeAll()
	select {
	case closed := <-done:
		if closed {
			t.Fatal("expected not closed")
		}
	case <-time.After(time.Second):
		t.Fatal("waitWhilePaused did not unblock after resume")
	}
}
