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

import (
	"context"
	"fmt"

	harvesterrors "github.com/corpusforge/jira-harvest/internal/errors"
)

// MockClient is a mock implementation of the Client interface for testing.
// It serves deterministic pages sliced from a fixed per-project issue set
// and supports scripting errors for specific call numbers to simulate
// transient failures and rate limiting.
type MockClient struct {
	// Projects maps project keys to their full ordered issue sets.
	Projects map[string][]Issue

	// ErrBeforeCall maps a 1-based call number to an error returned
	// instead of a page. The issue set is untouched, so a retry of the
	// same offset sees the same data.
	ErrBeforeCall map[int]error

	// Track calls for verification
	CallCount   int
	LastProject string
	LastOpts    SearchOptions
	Requests    []SearchOptions
}

// NewMockClient creates a mock with sequentially keyed issues per project.
func NewMockClient(counts map[string]int) *MockClient {
	projects := make(map[string][]Issue, len(counts))
	for key, n := range counts {
		projects[key] = GenerateIssues(key, n)
	}
	return &MockClient{Projects: projects}
}

// SearchIssues implements the Client interface.
func (m *MockClient) SearchIssues(ctx context.Context, project string, opts SearchOptions) (*SearchResult, error) {
	m.CallCount++
	m.LastProject = project
	m.LastOpts = opts
	m.Requests = append(m.Requests, opts)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err, ok := m.ErrBeforeCall[m.CallCount]; ok {
		return nil, err
	}

	issues, ok := m.Projects[project]
	if !ok {
		return nil, &APIError{
			StatusCode: 404,
			Class:      ErrorClassClient,
			Message:    fmt.Sprintf("no such project %s", project),
			Err:        harvesterrors.ErrProjectNotFound,
		}
	}

	start := opts.StartAt
	if start > len(issues) {
		start = len(issues)
	}
	end := start + opts.MaxResults
	if end > len(issues) {
		end = len(issues)
	}

	return &SearchResult{
		StartAt:    opts.StartAt,
		MaxResults: opts.MaxResults,
		Total:      len(issues),
		Issues:     issues[start:end],
	}, nil
}

// GenerateIssues creates n sequentially keyed test issues for a project.
func GenerateIssues(project string, n int) []Issue {
	issues := make([]Issue, n)
	for i := range issues {
		key := fmt.Sprintf("%s-%d", project, i+1)
		issues[i] = Issue{
			ID:  fmt.Sprintf("%d", 10000+i),
			Key: key,
			Fields: IssueFields{
				Summary:     fmt.Sprintf("Test issue %s", key),
				Description: fmt.Sprintf("Description for %s", key),
				Status:      &NamedValue{Name: "Open"},
				Priority:    &NamedValue{Name: "Major"},
				IssueType:   &NamedValue{Name: "Bug"},
				Project:     &ProjectRef{Key: project},
				Reporter:    &User{DisplayName: "Alice"},
				Created:     "2024-01-15T10:00:00.000+0000",
				Updated:     "2024-01-16T10:00:00.000+0000",
			},
		}
	}
	return issues
}
