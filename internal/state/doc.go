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

// Package state provides durable progress persistence for the pagination
// engine: a mapping from project key to the next unfetched offset, surviving
// process restarts.
//
// Two backends implement the Store interface. FileStore keeps the whole
// mapping in a single JSON blob written atomically (temp file, fsync,
// rename) with a SHA-256 checksum; a missing, unreadable, or corrupt file
// loads as an empty mapping, which restarts every project from zero, safe
// under the harvester's at-least-once delivery contract. SQLiteStore keeps
// one row per project in a WAL-mode SQLite database and upserts on save.
//
// Saves happen once per fetched page, not per record, so a crash mid-page
// re-fetches that page on restart. Offsets only ever grow for a project.
package state
