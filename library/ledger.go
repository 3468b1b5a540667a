package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger event kinds.
const (
	EventCheckout = "checkout"
	EventReturn   = "return"
	EventReserve  = "reserve"
	EventFinePaid = "fine_paid"
)

// Ledger is an append-only sqlite audit trail of circulation events. It is
// a side recorder: the JSON data file stays the source of truth for state,
// and the ledger only answers "what happened when".
type Ledger struct {
	db *sql.DB

	recordStmt *sql.Stmt
}

// LedgerEntry is one recorded circulation event.
type LedgerEntry struct {
	ID         int64
	Event      string
	UserName   string
	BookTitle  string
	Detail     string
	RecordedAt time.Time
}

const ledgerSchemaVersion = 1

// OpenLedger opens (or creates) the ledger database at path and applies the
// schema.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create ledger dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	if err := applyLedgerMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	lg := &Ledger{db: db}
	lg.recordStmt, err = db.Prepare(`INSERT INTO events(event,user_name,book_title,detail) VALUES(?,?,?,?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare ledger insert: %w", err)
	}
	return lg, nil
}

func applyLedgerMigrations(db *sql.DB) error {
	// WAL keeps writes cheap for the per-operation appends.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= ledgerSchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            event TEXT NOT NULL,
            user_name TEXT NOT NULL,
            book_title TEXT NOT NULL,
            detail TEXT NOT NULL,
            recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_events_recorded_at ON events(recorded_at);`,
		`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, ledgerSchemaVersion); err != nil {
			return fmt.Errorf("apply ledger migration: %w", err)
		}
	}
	return tx.Commit()
}

// Close releases the prepared statement and closes the database.
func (lg *Ledger) Close() error {
	if lg.recordStmt != nil {
		lg.recordStmt.Close()
	}
	return lg.db.Close()
}

// Record appends one event.
func (lg *Ledger) Record(event, userName, bookTitle, detail string) error {
	_, err := lg.recordStmt.Exec(event, userName, bookTitle, detail)
	return err
}

// Recent returns the newest events first, at most limit of them.
func (lg *Ledger) Recent(limit int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := lg.db.Query(`SELECT id,event,user_name,book_title,detail,recorded_at FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.Event, &e.UserName, &e.BookTitle, &e.Detail, &e.RecordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
