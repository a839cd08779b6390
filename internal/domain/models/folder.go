package models

import (
	"time"
)

// Reserved ids that never denote a stored folder.
const (
	RootFolderID   = "__ROOT__" // root level
	SeeAllFolderID = "__ALL__"  // no folder filter
)

// IsSentinelID reports whether id is one of the reserved non-entity ids.
func IsSentinelID(id string) bool {
	return id == RootFolderID || id == SeeAllFolderID
}

// Folder is a folder document as held by the remote store.
type Folder struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	ParentID  *string   `json:"parent_id,omitempty" db:"parent_id"` // NULL = root level (weak reference)
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Revision  string    `json:"revision" db:"revision"`
}

// ParentRef returns the parent id, or "" when the folder sits at root.
func (f *Folder) ParentRef() string {
	if f.ParentID == nil {
		return ""
	}
	return *f.ParentID
}

// ErrorInfo is the flattened error kept on a folder item or a store-level slot.
type ErrorInfo struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// FolderItem wraps a stored Folder with UI-only state.
type FolderItem struct {
	Folder   Folder     `json:"folder"`
	Updating bool       `json:"updating"`
	Picked   bool       `json:"picked"`
	Error    *ErrorInfo `json:"error,omitempty"`
}

// ChangeKind is the transition carried by a change feed event.
type ChangeKind string

const (
	ChangeCreate ChangeKind = "create"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// FolderChange is one raw change notification for a folder document.
// For deletes only Folder.ID is guaranteed to be set.
type FolderChange struct {
	Kind   ChangeKind `json:"transition"`
	Folder Folder     `json:"document"`
}
