package store

import (
	"fmt"
	"time"
)

// ProjectSnapshot is a cached discovery result for dashboard listings.
type ProjectSnapshot struct {
	Key         string
	Name        string
	ProjectType string
	Lead        string
	SyncedAt    int64
}

// SaveProjectSnapshots replaces the snapshot set in one transaction.
func (s *Store) SaveProjectSnapshots(snapshots []ProjectSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM project_snapshots`); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}

	now := time.Now().UnixMilli()
	for _, snap := range snapshots {
		if _, err := tx.Exec(
			`INSERT INTO project_snapshots (key, name, project_type, lead, synced_at)
			 VALUES (?, ?, ?, ?, ?)`,
			snap.Key, snap.Name, snap.ProjectType, snap.Lead, now,
		); err != nil {
			return fmt.Errorf("inserting snapshot %s: %w", snap.Key, err)
		}
	}
	return tx.Commit()
}

// ListProjectSnapshots returns all snapshots ordered by key.
func (s *Store) ListProjectSnapshots() ([]ProjectSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT key, name, project_type, lead, synced_at FROM project_snapshots ORDER BY key`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []ProjectSnapshot
	for rows.Next() {
		var snap ProjectSnapshot
		if err := rows.Scan(&snap.Key, &snap.Name, &snap.ProjectType, &snap.Lead, &snap.SyncedAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}
