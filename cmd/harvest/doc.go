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

// Package main implements the harvest command-line interface.
// This tool scrapes issue data from Jira projects and writes it
// as NDJSON training records for corpus construction.
//
// The CLI supports:
//   - Scraping one or more projects in a single resumable run
//   - Durable per-project progress (file or sqlite backend)
//   - Automatic retry with backoff for transient API failures
//   - Append-mode output so repeated runs grow one corpus file
//   - Graceful error handling with appropriate exit codes
//
// Usage:
//
//	harvest scrape [flags]
//
// Example:
//
//	harvest scrape --projects SPARK,KAFKA --output spark_kafka.ndjson
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Request/authorization error
//   - 3: Network error or retries exhausted
package main
