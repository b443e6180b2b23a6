package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Rounds table - one row per finished round
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL CHECK(mode IN ('classic', 'replay', 'guided')),
			score INTEGER NOT NULL CHECK(score >= 0),
			high_score INTEGER NOT NULL DEFAULT 0,
			pops INTEGER NOT NULL DEFAULT 0,
			escapes INTEGER NOT NULL DEFAULT 0,
			final_speed INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for the leaderboard queries
		`CREATE INDEX IF NOT EXISTS idx_rounds_score ON rounds(score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_mode_score ON rounds(mode, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_ended_at ON rounds(ended_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
