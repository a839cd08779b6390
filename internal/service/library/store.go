package library

import (
	"slices"
	"strings"
	"sync"

	"medialib/internal/domain/models"
)

// FolderStore is the normalized in-memory folder table plus tree UI state.
//
// allIDs and byIDs always hold the same ids. allIDs is the display order and is
// only re-established by Sort. Every mutation goes through a named method and
// runs under one lock, so operations never interleave. No operation performs I/O;
// operations on unknown ids are silent no-ops.
//
// The store does not check the parent graph for cycles.
type FolderStore struct {
	mu sync.RWMutex

	allIDs []string
	byIDs  map[string]*models.FolderItem

	expanded        map[string]struct{}
	currentFolderID string

	creating      bool
	creatingError *models.ErrorInfo

	fetching      bool
	fetchCount    int
	fetchingError *models.ErrorInfo
}

// NewFolderStore creates an empty store positioned at root
func NewFolderStore() *FolderStore {
	return &FolderStore{
		byIDs:           make(map[string]*models.FolderItem),
		expanded:        make(map[string]struct{}),
		currentFolderID: models.RootFolderID,
		fetchCount:      -1,
	}
}

// BeginFetch marks a fetch as in flight
func (s *FolderStore) BeginFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = true
	s.fetchingError = nil
}

// ApplyFetch inserts fetched folders that are not already present.
func (s *FolderStore) ApplyFetch(folders []models.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, folder := range folders {
		if folder.ID == "" {
			continue
		}
		if _, exists := s.byIDs[folder.ID]; exists {
			continue
		}
		s.allIDs = append(s.allIDs, folder.ID)
		s.byIDs[folder.ID] = &models.FolderItem{Folder: folder}
	}

	s.fetching = false
	s.fetchCount = len(folders)
	s.fetchingError = nil
}

// FailFetch records a fetch-level error
func (s *FolderStore) FailFetch(info *models.ErrorInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = false
	s.fetchingError = info
}

// BeginCreate marks a create as in flight and clears the creation-scoped error
func (s *FolderStore) BeginCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creating = true
	s.creatingError = nil
}

// FailCreate records a creation-scoped error
func (s *FolderStore) FailCreate(info *models.ErrorInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creating = false
	s.creatingError = info
}

// ApplyCreate upserts a created folder
func (s *FolderStore) ApplyCreate(folder models.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creating = false
	s.upsertLocked(folder)
}

// ApplyUpdate stores a renamed folder and ends its pending mutation
func (s *FolderStore) ApplyUpdate(folder models.Folder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.byIDs[folder.ID]; ok {
		item.Folder = folder
		item.Updating = false
	}
}

// ApplyMove stores a re-parented folder and ends its pending mutation
func (s *FolderStore) ApplyMove(folder models.Folder) {
	s.ApplyUpdate(folder)
}

// ApplyDelete removes a folder. If it was the current folder, the current
// folder moves to its former parent, or root.
func (s *FolderStore) ApplyDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(id)
}

// ApplyChanges applies one reconciled batch in arrival order.
// Updates for folders the client does not know yet are dropped.
func (s *FolderStore) ApplyChanges(changes []models.FolderChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, change := range changes {
		switch change.Kind {
		case models.ChangeCreate:
			s.upsertLocked(change.Folder)
		case models.ChangeUpdate:
			if item, ok := s.byIDs[change.Folder.ID]; ok {
				item.Folder = change.Folder
			}
		case models.ChangeDelete:
			s.deleteLocked(change.Folder.ID)
		}
	}
}

func (s *FolderStore) upsertLocked(folder models.Folder) {
	if folder.ID == "" {
		return
	}
	// A known folder keeps its updating, picked and error state
	if item, exists := s.byIDs[folder.ID]; exists {
		item.Folder = folder
		return
	}
	s.allIDs = append(s.allIDs, folder.ID)
	s.byIDs[folder.ID] = &models.FolderItem{Folder: folder}
}

func (s *FolderStore) deleteLocked(id string) {
	item, ok := s.byIDs[id]
	if !ok {
		return
	}

	if i := slices.Index(s.allIDs, id); i >= 0 {
		s.allIDs = slices.Delete(s.allIDs, i, i+1)
	}
	delete(s.byIDs, id)
	delete(s.expanded, id)

	if s.currentFolderID == id {
		if parent := item.Folder.ParentRef(); parent != "" {
			s.currentFolderID = parent
		} else {
			s.currentFolderID = models.RootFolderID
		}
	}
}

// BeginMutation marks a folder as updating and clears its error.
// Returns false if the folder is unknown.
func (s *FolderStore) BeginMutation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byIDs[id]
	if !ok {
		return false
	}
	item.Updating = true
	item.Error = nil
	return true
}

// BeginDelete un-picks and marks the folder as updating, then sweeps every
// folder's stored error. Returns false if the folder is unknown.
func (s *FolderStore) BeginDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.byIDs[id]
	if !ok {
		return false
	}
	item.Picked = false
	item.Updating = true
	for _, other := range s.byIDs {
		other.Error = nil
	}
	return true
}

// FailMutation attaches err to the folder and clears its updating flag
func (s *FolderStore) FailMutation(id string, info *models.ErrorInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.byIDs[id]; ok {
		item.Error = info
		item.Updating = false
	}
}

func (s *FolderStore) SetUpdating(id string, updating bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.byIDs[id]; ok {
		item.Updating = updating
	}
}

func (s *FolderStore) SetError(id string, info *models.ErrorInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.byIDs[id]; ok {
		item.Error = info
	}
}

func (s *FolderStore) ClearError(id string) {
	s.SetError(id, nil)
}

// ClearAllErrors drops the stored error of every folder
func (s *FolderStore) ClearAllErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.byIDs {
		item.Error = nil
	}
}

func (s *FolderStore) SetPicked(id string, picked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.byIDs[id]; ok {
		item.Picked = picked
	}
}

// Sort orders allIDs by folder name (byte-wise); equal names keep their relative order.
func (s *FolderStore) Sort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	slices.SortStableFunc(s.allIDs, func(a, b string) int {
		return strings.Compare(s.byIDs[a].Folder.Name, s.byIDs[b].Folder.Name)
	})
}

// ToggleExpanded flips the expansion state of id
func (s *FolderStore) ToggleExpanded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expanded[id]; ok {
		delete(s.expanded, id)
		return
	}
	s.expanded[id] = struct{}{}
}

func (s *FolderStore) Expand(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expanded[id] = struct{}{}
}

func (s *FolderStore) Collapse(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.expanded, id)
}

// SetCurrentFolder navigates to id (a folder id or one of the sentinels)
func (s *FolderStore) SetCurrentFolder(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = models.RootFolderID
	}
	s.currentFolderID = id
}

func (s *FolderStore) CurrentFolderID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentFolderID
}

// Item returns a copy of the folder item for id
func (s *FolderStore) Item(id string) (models.FolderItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.byIDs[id]
	if !ok {
		return models.FolderItem{}, false
	}
	return *item, true
}

// Items returns copies of all folder items in allIDs order
func (s *FolderStore) Items() []models.FolderItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.itemsLocked()
}

func (s *FolderStore) itemsLocked() []models.FolderItem {
	items := make([]models.FolderItem, 0, len(s.allIDs))
	for _, id := range s.allIDs {
		items = append(items, *s.byIDs[id])
	}
	return items
}

// IDs returns a copy of allIDs
func (s *FolderStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.allIDs)
}

// Len returns the number of folders in the table
func (s *FolderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byIDs)
}

func (s *FolderStore) IsExpanded(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.expanded[id]
	return ok
}

// snapshot copies the table and expanded set under one read lock
func (s *FolderStore) snapshot() ([]models.FolderItem, map[string]struct{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expanded := make(map[string]struct{}, len(s.expanded))
	for id := range s.expanded {
		expanded[id] = struct{}{}
	}
	return s.itemsLocked(), expanded
}

// State returns a point-in-time copy of the whole store
func (s *FolderStore) State() models.FolderState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expanded := make([]string, 0, len(s.expanded))
	for id := range s.expanded {
		expanded = append(expanded, id)
	}
	slices.Sort(expanded)

	return models.FolderState{
		Items:           s.itemsLocked(),
		ExpandedIDs:     expanded,
		CurrentFolderID: s.currentFolderID,
		Creating:        s.creating,
		CreatingError:   s.creatingError,
		Fetching:        s.fetching,
		FetchCount:      s.fetchCount,
		FetchingError:   s.fetchingError,
	}
}
