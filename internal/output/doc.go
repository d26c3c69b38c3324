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

// Package output provides utilities for writing data in NDJSON (Newline Delimited JSON) format.
// Each line of the corpus file contains one valid JSON object. Records are
// flushed as they are written, never accumulated in memory, so the corpus
// survives a crash up to the last completed line.
//
// The corpus file is opened in append mode: if a previous run crashed, its
// records are kept and the new run's records follow them. Combined with
// page-granular progress persistence this gives at-least-once delivery;
// a consumer deduplicates on doc_id.
package output
