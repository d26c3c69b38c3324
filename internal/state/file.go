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
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// currentVersion is the progress file schema version. Increment on breaking
// changes to the progressFile structure.
const currentVersion = 1

// progressFile is the on-disk layout of the file backend.
type progressFile struct {
	// Version indicates the schema version of this file.
	Version int `json:"version"`

	// Checksum is the SHA256 hash of the file content (excluding this
	// field). Used to detect corruption or tampering.
	Checksum string `json:"checksum"`

	// Projects maps project keys to the next unfetched offset.
	Projects map[string]int `json:"projects"`
}

// FileStore persists progress as a single JSON blob, rewritten in full on
// every save. Saves are infrequent (one per page), so whole-map writes are
// simpler than fine-grained updates and still cheap.
type FileStore struct {
	path    string
	offsets map[string]int
}

// NewFileStore creates a file-backed Store at the given path. The file is
// read lazily on Load; it does not need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads and validates the progress file. Any failure to read, parse,
// or verify the file is treated as "no progress": the scrape restarts from
// zero, which is safe because delivery is at-least-once.
func (s *FileStore) Load(_ context.Context) (map[string]int, error) {
	s.offsets = make(map[string]int)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("path", s.path).Err(err).Msg("progress file unreadable, starting from scratch")
		}
		return copyOffsets(s.offsets), nil
	}

	var pf progressFile
	if err := json.Unmarshal(data, &pf); err != nil {
		log.Warn().Str("path", s.path).Err(err).Msg("progress file corrupt, starting from scratch")
		return copyOffsets(s.offsets), nil
	}

	if pf.Version != currentVersion {
		log.Warn().Str("path", s.path).Int("version", pf.Version).
			Msg("progress file version mismatch, starting from scratch")
		return copyOffsets(s.offsets), nil
	}

	saved := pf.Checksum
	pf.Checksum = ""
	calculated, err := calculateChecksum(&pf)
	if err != nil || saved != calculated {
		log.Warn().Str("path", s.path).Msg("progress file checksum mismatch, starting from scratch")
		return copyOffsets(s.offsets), nil
	}

	if pf.Projects != nil {
		s.offsets = pf.Projects
	}
	return copyOffsets(s.offsets), nil
}

// Save upserts one project's offset and atomically rewrites the whole file
// using a write-to-temp-and-rename pattern.
func (s *FileStore) Save(_ context.Context, project string, offset int) error {
	if s.offsets == nil {
		s.offsets = make(map[string]int)
	}
	s.offsets[project] = offset

	pf := progressFile{
		Version:  currentVersion,
		Projects: s.offsets,
	}

	checksum, err := calculateChecksum(&pf)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	pf.Checksum = checksum

	stateDir := filepath.Dir(s.path)
	if mkdirErr := os.MkdirAll(stateDir, 0o755); mkdirErr != nil {
		return fmt.Errorf("failed to create state directory: %w", mkdirErr)
	}

	data, err := json.Marshal(&pf)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	tempFile := s.path + ".tmp"
	if writeErr := os.WriteFile(tempFile, data, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write temporary progress file: %w", writeErr)
	}

	// Sync to ensure data is flushed to disk before the rename.
	file, err := os.Open(tempFile)
	if err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to open temp file for sync: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Close implements the Store interface. The file backend holds no open
// resources between saves.
func (s *FileStore) Close() error {
	return nil
}

// calculateChecksum computes the SHA256 hash of the file content with the
// checksum field cleared.
func calculateChecksum(pf *progressFile) (string, error) {
	pfCopy := *pf
	pfCopy.Checksum = ""

	data, err := json.Marshal(&pfCopy)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func copyOffsets(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
