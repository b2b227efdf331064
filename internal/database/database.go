package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/pineunity/apmec-horizon/pkg/logging"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Operation statuses.
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// ErrInFlight is returned by Begin when the same action on the same resource
// is still pending.
var ErrInFlight = errors.New("operation already in progress")

// Operation is one deploy or delete action sent to the orchestration API.
type Operation struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Action     string    `json:"action"`
	Name       string    `json:"name"`
	ResourceID string    `json:"resource_id,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DB is the operations log.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
func Open(path string) (*DB, error) {
	dsn := path
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		if !strings.Contains(path, "?") {
			dsn = path + "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Debug("Database", "Operations log ready at %s", path)
	return &DB{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Begin records a pending operation. It fails with ErrInFlight when an
// operation with the same kind, action and name is still pending.
func (d *DB) Begin(ctx context.Context, kind, action, name string) (Operation, error) {
	now := d.now()
	op := Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Action:    action,
		Name:      name,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := d.db.ExecContext(ctx, `
		INSERT INTO operations (id, kind, action, name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.Kind, op.Action, op.Name, op.Status, op.CreatedAt, op.UpdatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return Operation{}, fmt.Errorf("%s %s %s: %w", action, kind, name, ErrInFlight)
		}
		return Operation{}, fmt.Errorf("failed to record operation: %w", err)
	}
	return op, nil
}

// Finish completes a pending operation. A nil opErr marks it succeeded.
func (d *DB) Finish(ctx context.Context, id, resourceID string, opErr error) error {
	status, message := StatusSucceeded, ""
	if opErr != nil {
		status, message = StatusFailed, opErr.Error()
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE operations SET status = ?, error = ?, resource_id = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		status, message, resourceID, d.now(), id, StatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed to finish operation %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("operation %s is not pending", id)
	}
	return nil
}

// Recent returns the most recent operations, newest first.
func (d *DB) Recent(ctx context.Context, limit int) ([]Operation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, kind, action, name, resource_id, status, error, created_at, updated_at
		FROM operations
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	ops := make([]Operation, 0)
	for rows.Next() {
		var op Operation
		if err := rows.Scan(&op.ID, &op.Kind, &op.Action, &op.Name, &op.ResourceID,
			&op.Status, &op.Error, &op.CreatedAt, &op.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// AbandonPending marks every pending operation as abandoned. The panel calls
// it at startup, when no operation of a previous process can still complete.
func (d *DB) AbandonPending(ctx context.Context) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE operations SET status = ?, updated_at = ? WHERE status = ?`,
		StatusAbandoned, d.now(), StatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to abandon pending operations: %w", err)
	}
	return res.RowsAffected()
}

// SchemaVersion returns the applied migration version.
func (d *DB) SchemaVersion() (int64, error) {
	return version(d.db)
}
