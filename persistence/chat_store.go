package persistence

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ChatMessage is one turn of a project conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatHistory is the conversation storage the server depends on. The SQLite
// store is the default; tests swap in the in-memory one.
type ChatHistory interface {
	Append(ctx context.Context, projectID string, messages ...ChatMessage) error
	History(ctx context.Context, projectID string, limit int) ([]ChatMessage, error)
	Clear(ctx context.Context, projectID string) error
}

// ChatStore persists chat transcripts per project in a SQLite database, so
// conversations survive server restarts.
type ChatStore struct {
	db *sql.DB
}

// OpenChatStore opens/creates the database at dbPath.
func OpenChatStore(dbPath string) (*ChatStore, error) {
	if dbPath == "" {
		dbPath = filepath.Join(DefaultConfigDir(), "chat.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &ChatStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *ChatStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_project ON messages(project_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores messages for a project.
func (s *ChatStore) Append(ctx context.Context, projectID string, messages ...ChatMessage) error {
	if projectID == "" {
		return errors.New("project id required")
	}
	if len(messages) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, m := range messages {
		created := m.CreatedAt
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (project_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
			projectID, m.Role, m.Content, created); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// History returns the last limit messages for a project in chronological
// order. limit <= 0 returns everything.
func (s *ChatStore) History(ctx context.Context, projectID string, limit int) ([]ChatMessage, error) {
	query := `SELECT role, content, created_at FROM messages WHERE project_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// Clear deletes a project's transcript.
func (s *ChatStore) Clear(ctx context.Context, projectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE project_id = ?`, projectID)
	return err
}

// Close releases the database handle.
func (s *ChatStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// MemoryChatHistory keeps transcripts in memory. Used when no database is
// configured and in tests.
type MemoryChatHistory struct {
	mu       sync.Mutex
	messages map[string][]ChatMessage
}

// NewMemoryChatHistory builds an empty in-memory history.
func NewMemoryChatHistory() *MemoryChatHistory {
	return &MemoryChatHistory{messages: make(map[string][]ChatMessage)}
}

// Append stores messages for a project.
func (m *MemoryChatHistory) Append(ctx context.Context, projectID string, messages ...ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[projectID] = append(m.messages[projectID], messages...)
	return nil
}

// History returns the last limit messages for a project.
func (m *MemoryChatHistory) History(ctx context.Context, projectID string, limit int) ([]ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.messages[projectID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Clear forgets a project's transcript.
func (m *MemoryChatHistory) Clear(ctx context.Context, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, projectID)
	return nil
}
