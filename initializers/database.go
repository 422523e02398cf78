package initializers

import (
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
)

var DB *goqu.Database

// ConnectDB opens the postgres pool behind DB.
func ConnectDB(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("DB_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to reach database: %w", err)
	}

	DB = goqu.New("postgres", db)
	return nil
}
