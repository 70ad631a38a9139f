package store

import (
	"database/sql"
	"fmt"
	"time"
)

// PromptTemplate is a named prompt override a team can manage at runtime.
type PromptTemplate struct {
	Name      string
	Kind      string // "epic", "stories", "release_notes"
	Body      string
	CreatedAt int64
	UpdatedAt int64
}

// SaveTemplate inserts or replaces a prompt template.
func (s *Store) SaveTemplate(tpl *PromptTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if tpl.CreatedAt == 0 {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO prompt_templates (name, kind, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		tpl.Name, tpl.Kind, tpl.Body, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	return nil
}

// GetTemplate retrieves a template by name, or nil when absent.
func (s *Store) GetTemplate(name string) (*PromptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl := &PromptTemplate{}
	err := s.db.QueryRow(
		`SELECT name, kind, body, created_at, updated_at FROM prompt_templates WHERE name = ?`,
		name,
	).Scan(&tpl.Name, &tpl.Kind, &tpl.Body, &tpl.CreatedAt, &tpl.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting template: %w", err)
	}
	return tpl, nil
}

// ListTemplates returns all templates ordered by name.
func (s *Store) ListTemplates() ([]*PromptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT name, kind, body, created_at, updated_at FROM prompt_templates ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []*PromptTemplate
	for rows.Next() {
		tpl := &PromptTemplate{}
		if err := rows.Scan(&tpl.Name, &tpl.Kind, &tpl.Body, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template by name.
func (s *Store) DeleteTemplate(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM prompt_templates WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s not found", name)
	}
	return nil
}
