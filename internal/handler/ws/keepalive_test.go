package ws

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type countingPinger struct {
	pings atomic.Int32
	err   error
}

func (p *countingPinger) Ping(ctx context.Context) error {
	p.pings.Add(1)
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKeepAlive_StopsOnPingFailure(t *testing.T) {
	p := &countingPinger{err: errors.New("closed")}
	k := NewKeepAlive(5*time.Millisecond, time.Second)

	stopped := k.Start(context.Background(), p, discardLogger())

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop after ping failure")
	}
	if got := p.pings.Load(); got != 1 {
		t.Errorf("pings = %d, want 1", got)
	}
}

func TestKeepAlive_Stop(t *testing.T) {
	p := &countingPinger{}
	k := NewKeepAlive(time.Hour, time.Second)

	stopped := k.Start(context.Background(), p, discardLogger())
	k.Stop()
	k.Stop()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop")
	}
	if got := p.pings.Load(); got != 0 {
		t.Errorf("pings = %d, want 0", got)
	}
}

func TestKeepAlive_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	k := NewKeepAlive(time.Hour, time.Second)

	stopped := k.Start(ctx, &countingPinger{}, discardLogger())
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("keep-alive did not stop on context cancel")
	}
}
