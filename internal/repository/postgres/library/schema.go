package library

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"medialib/internal/repository/postgres"
)

// EnsureSchema creates the folder and asset tables and installs the trigger
// that publishes folder changes on channel. It is idempotent.
//
// Statements run one at a time so a failure names the statement.
func EnsureSchema(ctx context.Context, config *postgres.RepositoryConfig, channel string) error {
	if !channelPattern.MatchString(channel) {
		return fmt.Errorf("invalid notify channel %q", channel)
	}

	for i, stmt := range schemaStatements(config.Tables, channel) {
		if _, err := config.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}

	config.Logger.Info("folder schema ready",
		"folders", config.Tables.Folders,
		"assets", config.Tables.Assets,
		"channel", channel,
	)
	return nil
}

func schemaStatements(tables *postgres.TableNames, channel string) []string {
	folders := pgx.Identifier{tables.Folders}.Sanitize()
	assets := pgx.Identifier{tables.Assets}.Sanitize()
	notifyFn := pgx.Identifier{tables.Folders + "_notify"}.Sanitize()
	trigger := pgx.Identifier{tables.Folders + "_notify_trigger"}.Sanitize()

	return []string{
		// parent_id carries no foreign key: a dangling parent is tolerated
		`CREATE TABLE IF NOT EXISTS ` + folders + ` (
			id TEXT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			parent_id TEXT,
			is_draft BOOLEAN NOT NULL DEFAULT FALSE,
			revision TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + pgx.Identifier{"idx_" + tables.Folders + "_parent_name"}.Sanitize() +
			` ON ` + folders + ` (parent_id, name)`,
		`CREATE TABLE IF NOT EXISTS ` + assets + ` (
			id TEXT PRIMARY KEY,
			folder_id TEXT,
			name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS ` + pgx.Identifier{"idx_" + tables.Assets + "_folder"}.Sanitize() +
			` ON ` + assets + ` (folder_id)`,
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION %s() RETURNS trigger AS $$
		DECLARE
			doc %s;
		BEGIN
			IF TG_OP = 'DELETE' THEN
				doc := OLD;
			ELSE
				doc := NEW;
			END IF;
			IF doc.is_draft THEN
				RETURN NULL;
			END IF;
			PERFORM pg_notify('%s', json_build_object(
				'transition', CASE TG_OP
					WHEN 'INSERT' THEN 'create'
					WHEN 'UPDATE' THEN 'update'
					ELSE 'delete'
				END,
				'document', row_to_json(doc)
			)::text);
			RETURN NULL;
		END;
		$$ LANGUAGE plpgsql`, notifyFn, folders, channel),
		`DROP TRIGGER IF EXISTS ` + trigger + ` ON ` + folders,
		`CREATE TRIGGER ` + trigger + `
			AFTER INSERT OR UPDATE OR DELETE ON ` + folders + `
			FOR EACH ROW EXECUTE FUNCTION ` + notifyFn + `()`,
	}
}
