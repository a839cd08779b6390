package repositories

import (
	"context"

	"medialib/internal/domain/models"
)

// FolderDocumentStore is the remote authority for folder documents.
// Parent references are weak: they are never validated for existence and never block deletes.
type FolderDocumentStore interface {
	// FetchAll returns every non-draft folder ordered by name ascending
	FetchAll(ctx context.Context) ([]models.Folder, error)

	// CountByName counts folders named name within a parent scope.
	// parentID nil means root scope (parent absent). excludeID, when non-empty, is left out of the count.
	CountByName(ctx context.Context, name string, parentID *string, excludeID string) (int, error)

	// CountAssets counts asset documents whose folder reference equals folderID
	CountAssets(ctx context.Context, folderID string) (int, error)

	// CountChildren counts folder documents whose parent reference equals folderID
	CountChildren(ctx context.Context, folderID string) (int, error)

	// Create creates a folder; the store assigns id, timestamps and revision
	Create(ctx context.Context, name string, parentID *string) (*models.Folder, error)

	// SetName patches the folder name
	SetName(ctx context.Context, id, name string) (*models.Folder, error)

	// SetParent patches the parent reference
	SetParent(ctx context.Context, id, parentID string) (*models.Folder, error)

	// UnsetParent removes the parent field, moving the folder to root
	UnsetParent(ctx context.Context, id string) (*models.Folder, error)

	// Delete deletes a folder document
	Delete(ctx context.Context, id string) error
}

// FolderChangeFeed delivers raw folder change notifications until ctx is cancelled.
type FolderChangeFeed interface {
	Listen(ctx context.Context, handle func(models.FolderChange)) error
}
