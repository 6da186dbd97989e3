package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS songs (
	slug       TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	artist     TEXT,
	difficulty TEXT,
	tags       TEXT NOT NULL DEFAULT '[]',
	playlist   TEXT NOT NULL DEFAULT '[]',
	content    TEXT NOT NULL DEFAULT '',
	counter    INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS players (
	chat_id      INTEGER PRIMARY KEY,
	username     TEXT,
	tg_name      TEXT,
	added_at     INTEGER NOT NULL,
	songs_opened INTEGER NOT NULL DEFAULT 0
);`

// Open connects to Turso (libsql://, https://) or, for "file:" URLs, to a
// local SQLite file, then checks the connection.
func Open(url, authToken string) (*sql.DB, error) {
	driver, dsn := "libsql", url
	if strings.HasPrefix(url, "file:") {
		driver, dsn = "sqlite", strings.TrimPrefix(url, "file:")
	} else if authToken != "" {
		dsn = fmt.Sprintf("%s?authToken=%s", url, authToken)
	}

	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if driver == "sqlite" {
		// one writer at a time for a local file
		database.SetMaxOpenConns(1)
	} else {
		database.SetMaxOpenConns(25)
		database.SetMaxIdleConns(25)
	}
	database.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return database, nil
}

// Migrate creates the tables when they are missing.
func Migrate(ctx context.Context, database *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
