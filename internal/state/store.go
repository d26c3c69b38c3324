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
	"os"
	"path/filepath"
)

// Store is a durable mapping from project key to the next unfetched offset.
// It is the single source of truth on restart.
type Store interface {
	// Load returns the persisted offsets. Missing or corrupt backing
	// storage yields an empty mapping, never an error, so a damaged state
	// file restarts projects from zero instead of blocking the run.
	Load(ctx context.Context) (map[string]int, error)

	// Save persists the offset for one project. The write must be atomic
	// with respect to process crash: afterwards the store holds either the
	// old or the new value, never a partial one.
	Save(ctx context.Context, project string, offset int) error

	// Close releases backing resources.
	Close() error
}

// DefaultStatePath returns the standard location of the progress file:
// ~/.jira-harvest/progress.state.
func DefaultStatePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home directory is not accessible
		homeDir = "."
	}
	return filepath.Join(homeDir, ".jira-harvest", "progress.state")
}
