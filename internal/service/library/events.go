package library

import (
	"log/slog"
	"sync"
	"time"

	"medialib/internal/domain/models"
)

// EventKind names a terminal event of a folder protocol or a reconciled batch.
type EventKind string

const (
	EventFetchComplete  EventKind = "fetch_complete"
	EventFetchError     EventKind = "fetch_error"
	EventCreateComplete EventKind = "create_complete"
	EventCreateError    EventKind = "create_error"
	EventUpdateComplete EventKind = "update_complete"
	EventUpdateError    EventKind = "update_error"
	EventMoveComplete   EventKind = "move_complete"
	EventMoveError      EventKind = "move_error"
	EventDeleteComplete EventKind = "delete_complete"
	EventDeleteError    EventKind = "delete_error"
	EventReconciled     EventKind = "reconciled"
	EventSorted         EventKind = "sorted"
)

// MoveDialogID is the dialog token every move completion closes in addition to its own.
const MoveDialogID = "folderMoveToFolder"

// Event is emitted upward once per finished request or applied batch.
// CloseDialogIDs are opaque tokens for the dialog layer.
type Event struct {
	Kind           EventKind             `json:"kind"`
	FolderID       string                `json:"folder_id,omitempty"`
	Folder         *models.Folder        `json:"folder,omitempty"`
	Folders        []models.Folder       `json:"folders,omitempty"`
	Changes        []models.FolderChange `json:"changes,omitempty"`
	CloseDialogIDs []string              `json:"close_dialog_ids,omitempty"`
	Error          *models.ErrorInfo     `json:"error,omitempty"`
	At             time.Time             `json:"at"`
}

// EventBus fans events out to subscribers synchronously, in publish order.
// Subscribers must not block.
type EventBus struct {
	mu        sync.RWMutex
	listeners map[int]func(Event)
	nextID    int
	logger    *slog.Logger
}

// NewEventBus creates an event bus
func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		listeners: make(map[int]func(Event)),
		logger:    logger,
	}
}

// Subscribe registers fn and returns a function that removes it
func (b *EventBus) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.listeners, id)
	}
}

// Publish delivers e to every subscriber
func (b *EventBus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	listeners := make([]func(Event), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.RUnlock()

	b.logger.Debug("folder event", "kind", e.Kind, "folder_id", e.FolderID, "listeners", len(listeners))

	for _, fn := range listeners {
		fn(e)
	}
}
