package ws

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Pinger sends one keep-alive probe and waits for the answer.
// *websocket.Conn satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KeepAlive pings a connection on a fixed interval until stopped or a ping fails.
type KeepAlive struct {
	interval time.Duration
	timeout  time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewKeepAlive creates a keep-alive pinging every interval
func NewKeepAlive(interval, timeout time.Duration) *KeepAlive {
	return &KeepAlive{
		interval: interval,
		timeout:  timeout,
		done:     make(chan struct{}),
	}
}

// Start pings p in the background. The returned channel closes when
// pinging ends, either because Stop was called or because a ping failed.
func (k *KeepAlive) Start(ctx context.Context, p Pinger, logger *slog.Logger) <-chan struct{} {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, k.timeout)
				err := p.Ping(pingCtx)
				cancel()
				if err != nil {
					logger.Warn("keep-alive ping failed, stopping", "error", err)
					return
				}
			case <-ctx.Done():
				return
			case <-k.done:
				return
			}
		}
	}()

	return stopped
}

// Stop ends pinging. Safe to call more than once.
func (k *KeepAlive) Stop() {
	k.stopOnce.Do(func() { close(k.done) })
}
