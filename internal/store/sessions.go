package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Session states.
const (
	SessionGroomed   = "groomed"   // result produced, nothing written yet
	SessionPublished = "published" // issues created in the tracker
	SessionDiscarded = "discarded"
)

// GroomSession records one grooming exchange and what became of it.
type GroomSession struct {
	ID           string
	ProjectKey   string
	SourceIssue  string
	Kind         string // "epic" or "stories"
	InputSummary string
	InputText    string
	Result       string // groomed structure as JSON
	CreatedKeys  string // comma-separated issue keys written back
	Status       string
	CreatedAt    int64
	UpdatedAt    int64
}

// SaveSession inserts or replaces a grooming session.
func (s *Store) SaveSession(sess *GroomSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if sess.CreatedAt == 0 {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now
	if sess.Status == "" {
		sess.Status = SessionGroomed
	}

	query := `
	INSERT OR REPLACE INTO groom_sessions (
		id, project_key, source_issue, kind, input_summary, input_text,
		result, created_keys, status, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		sess.ID, sess.ProjectKey,
		sql.NullString{String: sess.SourceIssue, Valid: sess.SourceIssue != ""},
		sess.Kind, sess.InputSummary, sess.InputText,
		sql.NullString{String: sess.Result, Valid: sess.Result != ""},
		sql.NullString{String: sess.CreatedKeys, Valid: sess.CreatedKeys != ""},
		sess.Status, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id, or nil when absent.
func (s *Store) GetSession(id string) (*GroomSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT id, project_key, source_issue, kind, input_summary, input_text,
	       result, created_keys, status, created_at, updated_at
	FROM groom_sessions WHERE id = ?
	`
	sess, err := scanSession(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return sess, nil
}

// ListSessions returns the project's sessions, newest first.
func (s *Store) ListSessions(projectKey string, limit int) ([]*GroomSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT id, project_key, source_issue, kind, input_summary, input_text,
	       result, created_keys, status, created_at, updated_at
	FROM groom_sessions WHERE project_key = ?
	ORDER BY created_at DESC LIMIT ?
	`
	rows, err := s.db.Query(query, projectKey, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*GroomSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// MarkSessionPublished records the issue keys created from a session.
func (s *Store) MarkSessionPublished(id, createdKeys string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`UPDATE groom_sessions SET status = ?, created_keys = ?, updated_at = ? WHERE id = ?`,
		SessionPublished, createdKeys, time.Now().UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("marking session published: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*GroomSession, error) {
	sess := &GroomSession{}
	var sourceIssue, result, createdKeys sql.NullString
	err := row.Scan(
		&sess.ID, &sess.ProjectKey, &sourceIssue, &sess.Kind,
		&sess.InputSummary, &sess.InputText, &result, &createdKeys,
		&sess.Status, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sess.SourceIssue = sourceIssue.String
	sess.Result = result.String
	sess.CreatedKeys = createdKeys.String
	return sess, nil
}
