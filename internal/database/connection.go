package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the database and creates the schema when missing
func Open(driver, dsn string) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch driver {
	case DriverSQLite:
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		db, err = sqlx.Connect("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}

		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case DriverPostgres:
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func ensureSQLiteDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		serial = "SERIAL PRIMARY KEY"
	}

	statements := []struct {
		table string
		ddl   string
	}{
		{"profiles", `
			CREATE TABLE IF NOT EXISTS profiles (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				created_at TEXT NOT NULL,
				last_login TEXT NOT NULL,
				quizzes_taken INTEGER NOT NULL DEFAULT 0,
				flashcards_practiced INTEGER NOT NULL DEFAULT 0,
				conversations_practiced INTEGER NOT NULL DEFAULT 0,
				total_score INTEGER NOT NULL DEFAULT 0,
				last_word_of_day TEXT
			)`},
		{"mastery_records", `
			CREATE TABLE IF NOT EXISTS mastery_records (
				profile_id TEXT NOT NULL,
				category TEXT NOT NULL,
				word TEXT NOT NULL,
				correct_count INTEGER NOT NULL DEFAULT 0,
				incorrect_count INTEGER NOT NULL DEFAULT 0,
				mastery_level INTEGER NOT NULL DEFAULT 0,
				last_practiced TEXT,
				PRIMARY KEY (profile_id, category, word),
				FOREIGN KEY (profile_id) REFERENCES profiles(id)
			)`},
		{"quiz_results", `
			CREATE TABLE IF NOT EXISTS quiz_results (
				id ` + serial + `,
				profile_id TEXT NOT NULL,
				taken_at TEXT NOT NULL,
				category TEXT NOT NULL,
				score INTEGER NOT NULL,
				max_score INTEGER NOT NULL,
				percentage REAL NOT NULL,
				FOREIGN KEY (profile_id) REFERENCES profiles(id)
			)`},
		{"custom_words", `
			CREATE TABLE IF NOT EXISTS custom_words (
				id ` + serial + `,
				profile_id TEXT NOT NULL,
				category TEXT NOT NULL,
				spanish TEXT NOT NULL,
				english TEXT NOT NULL,
				example TEXT NOT NULL DEFAULT '',
				example_translation TEXT NOT NULL DEFAULT '',
				difficulty TEXT NOT NULL DEFAULT 'custom',
				pronunciation_tip TEXT NOT NULL DEFAULT '',
				added_on TEXT NOT NULL,
				FOREIGN KEY (profile_id) REFERENCES profiles(id)
			)`},
		{"word_of_day_history", `
			CREATE TABLE IF NOT EXISTS word_of_day_history (
				id ` + serial + `,
				profile_id TEXT NOT NULL,
				shown_on TEXT NOT NULL,
				category TEXT NOT NULL,
				category_display TEXT NOT NULL,
				spanish TEXT NOT NULL,
				english TEXT NOT NULL,
				example TEXT NOT NULL DEFAULT '',
				example_translation TEXT NOT NULL DEFAULT '',
				difficulty TEXT NOT NULL DEFAULT '',
				pronunciation_tip TEXT NOT NULL DEFAULT '',
				FOREIGN KEY (profile_id) REFERENCES profiles(id)
			)`},
	}

	for _, s := range statements {
		if _, err := db.Exec(s.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", s.table, err)
		}
	}
	return nil
}
