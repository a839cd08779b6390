package services

import (
	"context"

	"medialib/internal/domain/models"
)

// FolderService runs the folder mutation protocols against the remote store
// and writes their results back into the local folder store.
type FolderService interface {
	// FetchFolders loads all folders into the store
	FetchFolders(ctx context.Context) error

	// CreateFolder creates a folder after checking sibling name uniqueness
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	// RenameFolder renames a folder after checking sibling name uniqueness
	RenameFolder(ctx context.Context, req *RenameFolderRequest) (*models.Folder, error)

	// MoveFolder re-parents a folder. It does not check for cycles: callers
	// choose the destination from the move targets of the folder.
	MoveFolder(ctx context.Context, req *MoveFolderRequest) (*models.Folder, error)

	// DeleteFolder deletes a folder (must have no assets and no subfolders)
	DeleteFolder(ctx context.Context, req *DeleteFolderRequest) error
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null for root folders
}

// RenameFolderRequest represents a folder rename request
type RenameFolderRequest struct {
	FolderID      string `json:"-"`
	Name          string `json:"name"`
	CloseDialogID string `json:"close_dialog_id,omitempty"`
}

// MoveFolderRequest represents a folder move request
type MoveFolderRequest struct {
	FolderID      string  `json:"-"`
	ParentID      *string `json:"parent_id"` // null moves to root
	CloseDialogID string  `json:"close_dialog_id,omitempty"`
}

// DeleteFolderRequest represents a folder delete request
type DeleteFolderRequest struct {
	FolderID      string `json:"-"`
	CloseDialogID string `json:"close_dialog_id,omitempty"`
}
