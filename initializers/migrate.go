package initializers

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"

	"github.com/doug-martin/goqu/v9"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the embedded migration file names in apply order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Migrate applies every embedded migration that is not yet recorded in
// schema_migrations. Each file runs in its own transaction.
func Migrate(db *goqu.Database) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name text PRIMARY KEY,
		applied_at timestamptz NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	names, err := Migrations()
	if err != nil {
		return fmt.Errorf("failed to list migrations: %w", err)
	}

	for _, name := range names {
		var count int
		_, err := db.From("schema_migrations").
			Select(goqu.COUNT("*")).
			Where(goqu.C("name").Eq(name)).
			ScanVal(&count)
		if err != nil {
			return fmt.Errorf("failed to check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		err = db.WithTx(func(tx *goqu.TxDatabase) error {
			if _, err := tx.Exec(string(body)); err != nil {
				return err
			}
			_, err := tx.Insert("schema_migrations").
				Rows(goqu.Record{"name": name}).
				Executor().Exec()
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
		log.Printf("Applied migration %s", name)
	}

	return nil
}
