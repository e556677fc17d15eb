package database

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

func open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// migrateLedger creates the per-user ledger schema. AUTOINCREMENT keeps ids
// from being reused within a table after deletes.
func migrateLedger(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS income (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS expense (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		amount REAL NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS loans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		amount REAL NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		date_taken TEXT NOT NULL,
		interest_rate REAL NOT NULL DEFAULT 0,
		emi_amount REAL NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS chat_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_income_date ON income(date);
	CREATE INDEX IF NOT EXISTS idx_expense_date ON expense(date);
	CREATE INDEX IF NOT EXISTS idx_expense_category ON expense(category);
	CREATE INDEX IF NOT EXISTS idx_loans_status ON loans(status);
	`

	_, err := db.Exec(schema)
	return err
}

func migrateUsers(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		phone TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT 'User',
		privacy_accepted INTEGER NOT NULL DEFAULT 0,
		unique_id TEXT UNIQUE,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);
	`

	_, err := db.Exec(schema)
	return err
}
