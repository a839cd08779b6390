package library

import (
	"sync"
	"time"
)

// Clock schedules deferred calls. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending call scheduled by a Clock
type Timer interface {
	Stop() bool
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall-clock Clock
var SystemClock Clock = systemClock{}

// windowBuffer queues items and releases them as one batch when a fixed
// window elapses. The window opens with the first queued item and windows
// never overlap; an empty window produces nothing. Flushing never fails.
type windowBuffer[T any] struct {
	mu     sync.Mutex
	clock  Clock
	window time.Duration
	items  []T
	timer  Timer
	closed bool
	flush  func([]T)
}

func newWindowBuffer[T any](clock Clock, window time.Duration, flush func([]T)) *windowBuffer[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &windowBuffer[T]{
		clock:  clock,
		window: window,
		flush:  flush,
	}
}

// Push queues item, opening a window if none is open
func (w *windowBuffer[T]) Push(item T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.items = append(w.items, item)
	if w.timer == nil {
		w.timer = w.clock.AfterFunc(w.window, w.fire)
	}
}

func (w *windowBuffer[T]) fire() {
	w.mu.Lock()
	batch := w.items
	w.items = nil
	w.timer = nil
	w.mu.Unlock()

	if len(batch) > 0 {
		w.flush(batch)
	}
}

// Pending returns the number of queued items
func (w *windowBuffer[T]) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Close stops the open window and flushes whatever is queued
func (w *windowBuffer[T]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	batch := w.items
	w.items = nil
	w.mu.Unlock()

	if len(batch) > 0 {
		w.flush(batch)
	}
}
