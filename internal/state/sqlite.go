// Copyright 2026 CorpusForge, Inc.
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver
)

const createProgressTable = `
CREATE TABLE IF NOT EXISTS progress (
	project     TEXT PRIMARY KEY,
	next_offset INTEGER NOT NULL,
	updated_at  TEXT NOT NULL
)`

// SQLiteStore persists progress in a SQLite database, one row per project.
// SQLite's transactional writes give the same crash-atomicity as the file
// backend's rename, and the table doubles as a queryable scrape audit.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the progress database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	// WAL mode for crash safety without blocking readers.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening progress database: %w", err)
	}

	if _, err := db.Exec(createProgressTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating progress table: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Load returns all persisted offsets. Unreadable rows are skipped rather
// than failing the run; a completely unreadable table loads as empty.
func (s *SQLiteStore) Load(ctx context.Context) (map[string]int, error) {
	offsets := make(map[string]int)

	rows, err := s.db.QueryContext(ctx, `SELECT project, next_offset FROM progress`)
	if err != nil {
		log.Warn().Str("path", s.path).Err(err).Msg("progress table unreadable, starting from scratch")
		return offsets, nil
	}
	defer rows.Close()

	for rows.Next() {
		var project string
		var offset int
		if err := rows.Scan(&project, &offset); err != nil {
			log.Warn().Err(err).Msg("skipping unreadable progress row")
			continue
		}
		offsets[project] = offset
	}
	if err := rows.Err(); err != nil {
		log.Warn().Err(err).Msg("progress scan interrupted")
	}

	return offsets, nil
}

// Save upserts the offset for one project.
func (s *SQLiteStore) Save(ctx context.Context, project string, offset int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (project, next_offset, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(project) DO UPDATE SET
			next_offset = excluded.next_offset,
			updated_at = excluded.updated_at`,
		project, offset, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("saving progress for %s: %w", project, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
