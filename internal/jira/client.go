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

package jira

import "context"

// Client defines the interface for fetching issues from Jira.
// This interface is the sole network boundary of the harvester and allows
// for easy mocking in tests.
type Client interface {
	// SearchIssues retrieves one page of issues for the given project,
	// ordered by creation date ascending. Pagination is offset-based via
	// opts.StartAt; the page size is opts.MaxResults.
	SearchIssues(ctx context.Context, project string, opts SearchOptions) (*SearchResult, error)
}
