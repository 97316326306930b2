package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"dlremindme/internal/owner"
	"dlremindme/internal/task"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteStorage struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	s := &SQLiteStorage{db: db}

	// Create tables if they don't exist
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// createTables creates the necessary tables
func (s *SQLiteStorage) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			owner TEXT NOT NULL,
			position INTEGER NOT NULL, -- insertion order within the owner
			id TEXT NOT NULL,
			name TEXT NOT NULL,
			deadline TEXT NOT NULL, -- ISO 8601, kept verbatim
			PRIMARY KEY (owner, position)
		)`,
		`CREATE TABLE IF NOT EXISTS sent_notifications (
			task_id TEXT NOT NULL,
			tier INTEGER NOT NULL,
			sent_at TEXT NOT NULL, -- RFC 3339
			PRIMARY KEY (task_id, tier)
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query %q: %w", query, err)
		}
	}
	return nil
}

// Task registry operations
func (s *SQLiteStorage) LoadTasks() (owner.Records, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT owner, id, name, deadline FROM tasks ORDER BY owner, position")
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	recs := make(owner.Records)
	for rows.Next() {
		var ownerID string
		var rec task.Record
		if err := rows.Scan(&ownerID, &rec.ID, &rec.Name, &rec.Deadline); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		recs[ownerID] = append(recs[ownerID], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return recs, nil
}

// SaveTasks replaces the whole registry in a single transaction.
func (s *SQLiteStorage) SaveTasks(recs owner.Records) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tasks"); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO tasks (owner, position, id, name, deadline) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for ownerID, list := range recs {
		for i, rec := range list {
			if _, err := stmt.Exec(ownerID, i, rec.ID, rec.Name, rec.Deadline); err != nil {
				return fmt.Errorf("failed to insert task %s: %w", rec.ID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tasks: %w", err)
	}
	return nil
}

// Sent-reminder journal operations
func (s *SQLiteStorage) ListSent() ([]*task.SentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT task_id, tier, sent_at FROM sent_notifications ORDER BY sent_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query sent notifications: %w", err)
	}
	defer rows.Close()

	var list []*task.SentRecord
	for rows.Next() {
		var rec task.SentRecord
		var sentAt string
		if err := rows.Scan(&rec.TaskID, &rec.Tier, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan sent notification: %w", err)
		}
		if rec.SentAt, err = time.Parse(time.RFC3339Nano, sentAt); err != nil {
			return nil, fmt.Errorf("failed to parse sent_at %q: %w", sentAt, err)
		}
		list = append(list, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sent notifications: %w", err)
	}
	return list, nil
}

func (s *SQLiteStorage) CreateSent(rec *task.SentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT OR IGNORE INTO sent_notifications (task_id, tier, sent_at) VALUES (?, ?, ?)",
		rec.TaskID, int(rec.Tier), rec.SentAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record sent notification: %w", err)
	}
	return nil
}
