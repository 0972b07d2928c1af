package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/jobcoach/coach-api/internal/domain"
)

// Archive persists turns and job descriptions in a SQLite database. The
// schema mirrors the chat_history / job_descriptions split of the hosted
// deployment.
type Archive struct {
	db *sql.DB
}

// NewArchive opens (or creates) the database at dbPath and ensures the
// tables exist.
func NewArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS chat_history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id   TEXT NOT NULL,
		speaker      TEXT NOT NULL,
		message_text TEXT NOT NULL,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_chat_history_session ON chat_history(session_id, id);
	CREATE TABLE IF NOT EXISTS job_descriptions (
		session_id  TEXT PRIMARY KEY,
		job_title   TEXT,
		job_details TEXT NOT NULL,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating archive tables: %w", err)
	}

	return &Archive{db: db}, nil
}

func (a *Archive) SaveTurn(ctx context.Context, sessionID domain.SessionID, turn domain.Turn) error {
	_, err := a.db.ExecContext(ctx,
		"INSERT INTO chat_history (session_id, speaker, message_text) VALUES (?, ?, ?)",
		string(sessionID), string(turn.Speaker), turn.Text)
	if err != nil {
		return fmt.Errorf("saving turn for session %s: %w", sessionID, err)
	}
	return nil
}

func (a *Archive) SaveJobDescription(ctx context.Context, sessionID domain.SessionID, title, text string) error {
	_, err := a.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO job_descriptions (session_id, job_title, job_details) VALUES (?, ?, ?)",
		string(sessionID), title, text)
	if err != nil {
		return fmt.Errorf("saving job description for session %s: %w", sessionID, err)
	}
	return nil
}

func (a *Archive) History(ctx context.Context, sessionID domain.SessionID) ([]domain.Turn, error) {
	rows, err := a.db.QueryContext(ctx,
		"SELECT speaker, message_text FROM chat_history WHERE session_id = ? ORDER BY id",
		string(sessionID))
	if err != nil {
		return nil, fmt.Errorf("loading history for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var turns []domain.Turn
	for rows.Next() {
		var speaker, text string
		if err := rows.Scan(&speaker, &text); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, domain.Turn{Speaker: domain.Speaker(speaker), Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}
	return turns, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}
