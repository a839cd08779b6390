package library

import (
	"log/slog"
	"time"

	"medialib/internal/domain/models"
)

const (
	// DefaultChangeWindow is how long change notifications are queued before being applied
	DefaultChangeWindow = 2000 * time.Millisecond

	// DefaultSortWindow coalesces create/update completions into one re-sort
	DefaultSortWindow = 1000 * time.Millisecond
)

// Reconciler buffers change feed notifications and applies them to the store
// as one batch per window, in arrival order.
type Reconciler struct {
	store   *FolderStore
	bus     *EventBus
	buffer  *windowBuffer[models.FolderChange]
	metrics *Metrics
	logger  *slog.Logger
}

// NewReconciler creates a reconciler flushing every window
func NewReconciler(store *FolderStore, bus *EventBus, clock Clock, window time.Duration, metrics *Metrics, logger *slog.Logger) *Reconciler {
	r := &Reconciler{
		store:   store,
		bus:     bus,
		metrics: metrics,
		logger:  logger,
	}
	r.buffer = newWindowBuffer(clock, window, r.apply)
	return r
}

// Push queues one change notification. It matches the FolderChangeFeed handler signature.
func (r *Reconciler) Push(change models.FolderChange) {
	if change.Folder.ID == "" {
		r.logger.Warn("dropping folder change without id", "transition", change.Kind)
		return
	}
	switch change.Kind {
	case models.ChangeCreate, models.ChangeUpdate, models.ChangeDelete:
	default:
		r.logger.Warn("dropping folder change with unknown transition",
			"transition", change.Kind,
			"folder_id", change.Folder.ID,
		)
		return
	}
	r.buffer.Push(change)
}

// Pending returns the number of queued, not yet applied notifications
func (r *Reconciler) Pending() int {
	return r.buffer.Pending()
}

// Close applies whatever is queued and stops buffering
func (r *Reconciler) Close() {
	r.buffer.Close()
}

func (r *Reconciler) apply(batch []models.FolderChange) {
	r.store.ApplyChanges(batch)
	r.metrics.observeBatch(len(batch))
	r.metrics.setStored(r.store.Len())

	r.logger.Debug("folder changes reconciled", "batch_size", len(batch))

	r.bus.Publish(Event{Kind: EventReconciled, Changes: batch})
}

// SortScheduler re-sorts the store once per window after create/update
// completions, however many fired inside the window.
type SortScheduler struct {
	store       *FolderStore
	bus         *EventBus
	buffer      *windowBuffer[EventKind]
	unsubscribe func()
	metrics     *Metrics
	logger      *slog.Logger
}

// NewSortScheduler subscribes to bus and starts scheduling sorts
func NewSortScheduler(store *FolderStore, bus *EventBus, clock Clock, window time.Duration, metrics *Metrics, logger *slog.Logger) *SortScheduler {
	s := &SortScheduler{
		store:   store,
		bus:     bus,
		metrics: metrics,
		logger:  logger,
	}
	s.buffer = newWindowBuffer(clock, window, s.sort)
	s.unsubscribe = bus.Subscribe(s.onEvent)
	return s
}

func (s *SortScheduler) onEvent(e Event) {
	if triggersSort(e) {
		s.buffer.Push(e.Kind)
	}
}

// triggersSort reports whether e may have changed a folder name
func triggersSort(e Event) bool {
	switch e.Kind {
	case EventCreateComplete, EventUpdateComplete:
		return true
	case EventReconciled:
		for _, change := range e.Changes {
			if change.Kind == models.ChangeCreate || change.Kind == models.ChangeUpdate {
				return true
			}
		}
	}
	return false
}

func (s *SortScheduler) sort(triggers []EventKind) {
	s.store.Sort()
	s.metrics.observeSort()
	s.logger.Debug("folders sorted", "triggers", len(triggers))
	s.bus.Publish(Event{Kind: EventSorted})
}

// Close unsubscribes and runs a pending sort, if any
func (s *SortScheduler) Close() {
	s.unsubscribe()
	s.buffer.Close()
}
