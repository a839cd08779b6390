package library

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medialib/internal/domain/models"
	"medialib/internal/domain/repositories"
	"medialib/internal/repository/postgres"
)

const folderColumns = "id, name, parent_id, revision, created_at, updated_at"

// PostgresFolderDocumentStore implements FolderDocumentStore on Postgres.
// parent_id has no foreign key: parent references are weak.
type PostgresFolderDocumentStore struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewFolderDocumentStore creates a new folder document store
func NewFolderDocumentStore(config *postgres.RepositoryConfig) repositories.FolderDocumentStore {
	return &PostgresFolderDocumentStore{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// FetchAll returns every non-draft folder ordered by name
func (r *PostgresFolderDocumentStore) FetchAll(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE NOT is_draft
		ORDER BY name ASC
	`, folderColumns, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, postgres.RemoteError("fetch folders", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(
			&folder.ID,
			&folder.Name,
			&folder.ParentID,
			&folder.Revision,
			&folder.CreatedAt,
			&folder.UpdatedAt,
		); err != nil {
			return nil, postgres.RemoteError("scan folder", err)
		}
		folders = append(folders, folder)
	}

	if err := rows.Err(); err != nil {
		return nil, postgres.RemoteError("iterate folders", err)
	}

	return folders, nil
}

// CountByName counts folders named name in the parent scope, optionally excluding one id
func (r *PostgresFolderDocumentStore) CountByName(ctx context.Context, name string, parentID *string, excludeID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE name = $1`, r.tables.Folders)
	args := []interface{}{name}

	if parentID == nil {
		query += ` AND parent_id IS NULL`
	} else {
		args = append(args, *parentID)
		query += fmt.Sprintf(` AND parent_id = $%d`, len(args))
	}

	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(` AND id <> $%d`, len(args))
	}

	return r.count(ctx, "count folders by name", query, args...)
}

// CountAssets counts assets filed in folderID
func (r *PostgresFolderDocumentStore) CountAssets(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE folder_id = $1`, r.tables.Assets)
	return r.count(ctx, "count folder assets", query, folderID)
}

// CountChildren counts folders whose parent is folderID
func (r *PostgresFolderDocumentStore) CountChildren(ctx context.Context, folderID string) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE parent_id = $1`, r.tables.Folders)
	return r.count(ctx, "count subfolders", query, folderID)
}

func (r *PostgresFolderDocumentStore) count(ctx context.Context, op, query string, args ...interface{}) (int, error) {
	var n int
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, postgres.RemoteError(op, err)
	}
	return n, nil
}

// Create inserts a folder with a fresh id and revision
func (r *PostgresFolderDocumentStore) Create(ctx context.Context, name string, parentID *string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, parent_id, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING %s
	`, r.tables.Folders, folderColumns)

	return r.returning(ctx, "create folder", query,
		uuid.NewString(),
		name,
		parentID,
		uuid.NewString(),
	)
}

// SetName patches the folder name
func (r *PostgresFolderDocumentStore) SetName(ctx context.Context, id, name string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, revision = $2, updated_at = now()
		WHERE id = $3
		RETURNING %s
	`, r.tables.Folders, folderColumns)

	return r.returning(ctx, "set folder name", query, name, uuid.NewString(), id)
}

// SetParent patches the parent reference
func (r *PostgresFolderDocumentStore) SetParent(ctx context.Context, id, parentID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, revision = $2, updated_at = now()
		WHERE id = $3
		RETURNING %s
	`, r.tables.Folders, folderColumns)

	return r.returning(ctx, "set folder parent", query, parentID, uuid.NewString(), id)
}

// UnsetParent clears the parent reference, placing the folder at root
func (r *PostgresFolderDocumentStore) UnsetParent(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = NULL, revision = $1, updated_at = now()
		WHERE id = $2
		RETURNING %s
	`, r.tables.Folders, folderColumns)

	return r.returning(ctx, "unset folder parent", query, uuid.NewString(), id)
}

// Delete deletes a folder document
func (r *PostgresFolderDocumentStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Folders)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return postgres.RemoteError("delete folder", err)
	}

	if result.RowsAffected() == 0 {
		return postgres.RemoteError("delete folder "+id, pgx.ErrNoRows)
	}

	return nil
}

func (r *PostgresFolderDocumentStore) returning(ctx context.Context, op, query string, args ...interface{}) (*models.Folder, error) {
	var folder models.Folder
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(
		&folder.ID,
		&folder.Name,
		&folder.ParentID,
		&folder.Revision,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.RemoteError(op, err)
	}
	return &folder, nil
}
