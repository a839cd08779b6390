package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"medialib/internal/domain/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func mkFolder(id, name, parent string) models.Folder {
	f := models.Folder{ID: id, Name: name, Revision: "r-" + id}
	if parent != "" {
		f.ParentID = strPtr(parent)
	}
	return f
}

// mockDocs is an in-memory FolderDocumentStore that records calls.
type mockDocs struct {
	mu      sync.Mutex
	folders map[string]models.Folder
	assets  map[string]int // folder id -> asset count
	nextID  int
	calls   []string

	fetchErr  error
	createErr error
	setErr    error
	deleteErr error
	countErr  error
}

func newMockDocs(folders ...models.Folder) *mockDocs {
	m := &mockDocs{
		folders: make(map[string]models.Folder),
		assets:  make(map[string]int),
	}
	for _, f := range folders {
		m.folders[f.ID] = f
	}
	return m
}

func (m *mockDocs) record(call string) {
	m.calls = append(m.calls, call)
}

func (m *mockDocs) called(call string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (m *mockDocs) FetchAll(ctx context.Context) ([]models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("FetchAll")
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	out := make([]models.Folder, 0, len(m.folders))
	for _, f := range m.folders {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockDocs) CountByName(ctx context.Context, name string, parentID *string, excludeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CountByName")
	if m.countErr != nil {
		return 0, m.countErr
	}
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	n := 0
	for _, f := range m.folders {
		if f.Name == name && f.ParentRef() == parent && f.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (m *mockDocs) CountAssets(ctx context.Context, folderID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CountAssets")
	if m.countErr != nil {
		return 0, m.countErr
	}
	return m.assets[folderID], nil
}

func (m *mockDocs) CountChildren(ctx context.Context, folderID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CountChildren")
	n := 0
	for _, f := range m.folders {
		if f.ParentRef() == folderID {
			n++
		}
	}
	return n, nil
}

func (m *mockDocs) Create(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Create")
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	f := models.Folder{
		ID:        fmt.Sprintf("new-%d", m.nextID),
		Name:      name,
		ParentID:  parentID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Revision:  "r1",
	}
	m.folders[f.ID] = f
	return &f, nil
}

func (m *mockDocs) patch(id string, fn func(*models.Folder)) (*models.Folder, error) {
	if m.setErr != nil {
		return nil, m.setErr
	}
	f, ok := m.folders[id]
	if !ok {
		return nil, errors.New("document not found")
	}
	fn(&f)
	f.Revision += "+"
	m.folders[id] = f
	return &f, nil
}

func (m *mockDocs) SetName(ctx context.Context, id, name string) (*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetName")
	return m.patch(id, func(f *models.Folder) { f.Name = name })
}

func (m *mockDocs) SetParent(ctx context.Context, id, parentID string) (*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("SetParent")
	return m.patch(id, func(f *models.Folder) { f.ParentID = strPtr(parentID) })
}

func (m *mockDocs) UnsetParent(ctx context.Context, id string) (*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UnsetParent")
	return m.patch(id, func(f *models.Folder) { f.ParentID = nil })
}

func (m *mockDocs) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Delete")
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.folders, id)
	return nil
}

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward by d and runs due timers in order
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	now := c.now
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

// eventRecorder collects bus events.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func recordEvents(bus *EventBus) *eventRecorder {
	r := &eventRecorder{}
	bus.Subscribe(func(e Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	return r
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (r *eventRecorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return Event{}
	}
	return r.events[len(r.events)-1]
}

func (r *eventRecorder) count(kind EventKind) int {
	n := 0
	for _, k := range r.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}
