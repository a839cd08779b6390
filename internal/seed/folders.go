package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"medialib/internal/domain/repositories"
	"medialib/internal/domain/services"
	"medialib/internal/repository/postgres"
)

//go:embed folders.yaml
var defaultFixture []byte

// DefaultFixture returns the built-in development folder tree
func DefaultFixture() []byte {
	return defaultFixture
}

// FolderNode is one folder of a seed fixture
type FolderNode struct {
	Name     string       `yaml:"name"`
	Assets   int          `yaml:"assets,omitempty"`
	Children []FolderNode `yaml:"children,omitempty"`
}

// Fixture is a folder tree to seed
type Fixture struct {
	Folders []FolderNode `yaml:"folders"`
}

// ParseFixture decodes a YAML fixture and rejects unnamed folders
func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	var check func(nodes []FolderNode, path string) error
	check = func(nodes []FolderNode, path string) error {
		for i, node := range nodes {
			if node.Name == "" {
				return fmt.Errorf("fixture folder %s[%d] has no name", path, i)
			}
			if node.Assets < 0 {
				return fmt.Errorf("fixture folder %s/%s has negative asset count", path, node.Name)
			}
			if err := check(node.Children, path+"/"+node.Name); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(fixture.Folders, ""); err != nil {
		return nil, err
	}

	return &fixture, nil
}

// Count returns the number of folders in the fixture
func (f *Fixture) Count() int {
	var count func(nodes []FolderNode) int
	count = func(nodes []FolderNode) int {
		n := len(nodes)
		for _, node := range nodes {
			n += count(node.Children)
		}
		return n
	}
	return count(f.Folders)
}

// AssetInserter adds placeholder assets to a folder
type AssetInserter func(ctx context.Context, folderID string, count int) error

// ServiceFactory builds a folder service over a fresh in-memory store
type ServiceFactory func() services.FolderService

// FolderSeeder creates fixture folders through the folder create protocol,
// parents before children, inside one transaction.
type FolderSeeder struct {
	newService ServiceFactory
	txManager repositories.TransactionManager
	addAssets AssetInserter
	logger    *slog.Logger
}

// NewFolderSeeder creates a new folder seeder
func NewFolderSeeder(newService ServiceFactory, txManager repositories.TransactionManager, addAssets AssetInserter, logger *slog.Logger) *FolderSeeder {
	return &FolderSeeder{
		newService: newService,
		txManager:  txManager,
		addAssets:  addAssets,
		logger:     logger,
	}
}

// Seed creates every folder in fixture. Any failure rolls back the whole tree.
// Each call gets its own service, so a rolled back attempt leaves no folders
// behind in memory either.
func (s *FolderSeeder) Seed(ctx context.Context, fixture *Fixture) (int, error) {
	folders := s.newService()
	created := 0

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		created = 0
		var walk func(nodes []FolderNode, parentID *string) error
		walk = func(nodes []FolderNode, parentID *string) error {
			for _, node := range nodes {
				folder, err := folders.CreateFolder(ctx, &services.CreateFolderRequest{
					Name:     node.Name,
					ParentID: parentID,
				})
				if err != nil {
					return fmt.Errorf("create folder %q: %w", node.Name, err)
				}
				created++

				if node.Assets > 0 && s.addAssets != nil {
					if err := s.addAssets(ctx, folder.ID, node.Assets); err != nil {
						return fmt.Errorf("add assets to %q: %w", node.Name, err)
					}
				}

				s.logger.Debug("seeded folder",
					"id", folder.ID,
					"name", folder.Name,
					"parent_id", folder.ParentRef(),
					"assets", node.Assets,
				)

				id := folder.ID
				if err := walk(node.Children, &id); err != nil {
					return err
				}
			}
			return nil
		}
		return walk(fixture.Folders, nil)
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// PostgresAssetInserter inserts placeholder asset rows into the assets table
func PostgresAssetInserter(config *postgres.RepositoryConfig) AssetInserter {
	return func(ctx context.Context, folderID string, count int) error {
		executor := postgres.GetExecutor(ctx, config.Pool)
		query := `INSERT INTO ` + config.Tables.Assets + ` (id, folder_id, name) VALUES ($1, $2, $3)`
		for i := 0; i < count; i++ {
			if _, err := executor.Exec(ctx, query, uuid.NewString(), folderID, fmt.Sprintf("asset-%03d", i+1)); err != nil {
				return err
			}
		}
		return nil
	}
}

// ClearData deletes every folder and asset row
func ClearData(ctx context.Context, config *postgres.RepositoryConfig) error {
	for _, table := range []string{config.Tables.Assets, config.Tables.Folders} {
		if _, err := config.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// DropTables drops the folder and asset tables along with the notify function
func DropTables(ctx context.Context, config *postgres.RepositoryConfig) error {
	stmts := []string{
		"DROP TABLE IF EXISTS " + config.Tables.Assets + " CASCADE",
		"DROP TABLE IF EXISTS " + config.Tables.Folders + " CASCADE",
		"DROP FUNCTION IF EXISTS " + config.Tables.Folders + "_notify() CASCADE",
	}
	for _, stmt := range stmts {
		if _, err := config.Pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
