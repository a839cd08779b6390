package main

import (
	"context"
	"flag"
	"log"
	"os"

	"medialib/internal/config"
	"medialib/internal/domain/services"
	"medialib/internal/repository/postgres"
	postgresLibrary "medialib/internal/repository/postgres/library"
	"medialib/internal/seed"
	"medialib/internal/service/library"

	"github.com/joho/godotenv"
)

func main() {
	fixturePath := flag.String("file", "", "YAML folder tree to seed (default: built-in fixture)")
	dropTables := flag.Bool("drop-tables", false, "Drop folder and asset tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed folders")
	clearData := flag.Bool("clear-data", false, "Delete all folders and assets (keep schema)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}

	if *dropTables {
		logger.Info("dropping tables", "prefix", cfg.TablePrefix)
		if err := seed.DropTables(ctx, repoConfig); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgresLibrary.EnsureSchema(ctx, repoConfig, cfg.NotifyChannel); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		logger.Info("schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		if err := seed.ClearData(ctx, repoConfig); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		logger.Info("data cleared")
		return
	}

	data := seed.DefaultFixture()
	if *fixturePath != "" {
		data, err = os.ReadFile(*fixturePath)
		if err != nil {
			log.Fatalf("Failed to read fixture: %v", err)
		}
	}
	fixture, err := seed.ParseFixture(data)
	if err != nil {
		log.Fatalf("Invalid fixture: %v", err)
	}

	logger.Warn("clearing existing folders and assets before seeding")
	if err := seed.ClearData(ctx, repoConfig); err != nil {
		logger.Warn("could not clear data", "error", err)
	}

	// Seeding runs the regular create protocol against a private store
	docs := postgresLibrary.NewFolderDocumentStore(repoConfig)
	newService := func() services.FolderService {
		return library.NewFolderService(docs, library.NewFolderStore(), library.NewEventBus(logger), nil, logger)
	}
	txManager := postgres.NewTransactionManager(pool, logger)

	seeder := seed.NewFolderSeeder(newService, txManager, seed.PostgresAssetInserter(repoConfig), logger)
	created, err := seeder.Seed(ctx, fixture)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	logger.Info("seeding complete", "folders", created, "prefix", cfg.TablePrefix)
}
