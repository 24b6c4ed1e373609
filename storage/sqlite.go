// Package storage provides SQLite conversation persistence.
//
// Information Hiding:
// - SQLite connection management hidden behind SqliteStore
// - Schema and migration details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/SyntheticAutonomicMind/SAM-sub003/model"
)

// SqliteStore persists conversations in a SQLite database file.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			pinned INTEGER NOT NULL DEFAULT 0,
			importance REAL NOT NULL DEFAULT 0.5,
			timestamp INTEGER NOT NULL,
			tool_name TEXT,
			tool_execution_id TEXT,
			tool_status TEXT,
			parent_tool_name TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id) ON DELETE CASCADE,
			UNIQUE(session_id, ordinal)
		);

		CREATE INDEX IF NOT EXISTS idx_messages_session
		ON messages(session_id, ordinal);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSession replaces the stored messages for a session.
func (s *SqliteStore) SaveSession(ctx context.Context, sessionID string, messages []model.Message) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id) VALUES (?)
		 ON CONFLICT(session_id) DO UPDATE SET updated_at = datetime('now')`,
		sessionID,
	); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear session messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages
		(id, session_id, ordinal, role, content, pinned, importance, timestamp,
		 tool_name, tool_execution_id, tool_status, parent_tool_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		pinned := 0
		if msg.IsPinned {
			pinned = 1
		}
		if _, err := stmt.ExecContext(ctx,
			msg.ID, sessionID, i, string(msg.Role), msg.Content, pinned,
			msg.Importance, msg.Timestamp.UnixMilli(),
			msg.ToolName, msg.ToolExecutionID, string(msg.ToolStatus), msg.ParentToolName,
		); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// LoadSession returns the stored messages for a session in order.
// Returns an empty slice if the session doesn't exist.
func (s *SqliteStore) LoadSession(ctx context.Context, sessionID string) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, pinned, importance, timestamp,
		       tool_name, tool_execution_id, tool_status, parent_tool_name
		FROM messages WHERE session_id = ? ORDER BY ordinal
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var msg model.Message
		var role, toolStatus string
		var pinned int
		var ts int64
		var toolName, toolExecID, parentTool sql.NullString

		if err := rows.Scan(&msg.ID, &role, &msg.Content, &pinned, &msg.Importance, &ts,
			&toolName, &toolExecID, &toolStatus, &parentTool); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.Role = model.Role(role)
		msg.IsPinned = pinned != 0
		msg.Timestamp = time.UnixMilli(ts)
		msg.ToolName = toolName.String
		msg.ToolExecutionID = toolExecID.String
		msg.ToolStatus = model.ToolStatus(toolStatus)
		msg.ParentToolName = parentTool.String
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return messages, nil
}

// DeleteSession removes a session and its messages.
func (s *SqliteStore) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions returns all session ids, most recently updated first.
func (s *SqliteStore) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, id)
	}
	return sessions, rows.Err()
}
