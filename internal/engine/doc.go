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

// Package engine implements the resumable pagination engine at the heart of
// the harvester. It turns the paginated Jira search API into a pull-based,
// low-memory stream of issues: one project at a time, one page at a time,
// one issue per Next call.
//
// Progress is persisted through a state.Store once per page, after every
// issue of that page has been yielded. On restart the engine resumes at the
// last persisted offset, which gives at-least-once delivery: a crash
// mid-page replays that page's issues, but never skips one.
//
// The stream is finite and not restartable within a single run; create a new
// Engine to scrape again. A fatal fetch error (non-retryable response or an
// exhausted retry budget) aborts the whole run, since silently truncating a
// project's data would be a correctness hazard. The already-persisted offset
// stays valid for a clean resume.
package engine
