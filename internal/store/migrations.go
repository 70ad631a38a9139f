package store

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS groom_sessions (
		id TEXT PRIMARY KEY,
		project_key TEXT NOT NULL,
		source_issue TEXT,
		kind TEXT NOT NULL,
		input_summary TEXT NOT NULL,
		input_text TEXT NOT NULL,
		result TEXT,
		created_keys TEXT,
		status TEXT NOT NULL DEFAULT 'groomed',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_groom_sessions_project ON groom_sessions(project_key);
	CREATE INDEX IF NOT EXISTS idx_groom_sessions_created ON groom_sessions(created_at);

	CREATE TABLE IF NOT EXISTS prompt_templates (
		name TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		body TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS project_snapshots (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		project_type TEXT,
		lead TEXT,
		synced_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}
