package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InMemoryDSN keeps the whole register in process memory; state is lost
// on restart, matching the reference system's session-scoped store.
const InMemoryDSN = "file::memory:?cache=shared"

// ConnectSQLite opens a SQLite database at the given DSN.
func ConnectSQLite(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = InMemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}

	return db, nil
}
