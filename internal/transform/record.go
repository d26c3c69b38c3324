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

// Package transform converts raw Jira issues into structured training
// records. Transform is a pure function: it performs no I/O and signals a
// per-issue skip by returning an error, which the caller logs without
// stopping the stream.
package transform

import (
	"fmt"
	"strings"

	"github.com/corpusforge/jira-harvest/internal/jira"
)

// Record is one line of the output corpus.
type Record struct {
	DocID        string          `json:"doc_id"`
	Source       string          `json:"source"`
	Metadata     Metadata        `json:"metadata"`
	Text         string          `json:"text"`
	DerivedTasks map[string]Task `json:"derived_tasks"`
}

// Metadata carries the structured fields extracted from an issue.
type Metadata struct {
	IssueID   string   `json:"issue_id"`
	IssueKey  string   `json:"issue_key"`
	Project   string   `json:"project"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority"`
	IssueType string   `json:"issue_type"`
	Reporter  string   `json:"reporter"`
	Assignee  string   `json:"assignee"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
	Labels    []string `json:"labels"`
}

// Task is one derived instruction-tuning example.
type Task struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

const source = "apache_jira"

// Transform converts a single issue into a corpus record. It returns an
// error when required fields are missing; the issue is then skipped.
// Presence checks only, no schema validation.
func Transform(issue jira.Issue) (*Record, error) {
	if issue.Key == "" {
		return nil, fmt.Errorf("issue %s is missing key", issue.ID)
	}
	f := issue.Fields
	if f.Summary == "" {
		return nil, fmt.Errorf("issue %s is missing summary", issue.Key)
	}

	meta := Metadata{
		IssueID:   issue.ID,
		IssueKey:  issue.Key,
		Title:     f.Summary,
		CreatedAt: f.Created,
		UpdatedAt: f.Updated,
		Labels:    f.Labels,
		Assignee:  "Unassigned",
	}
	if f.Project != nil {
		meta.Project = f.Project.Key
	}
	if f.Status != nil {
		meta.Status = f.Status.Name
	}
	if f.Priority != nil {
		meta.Priority = f.Priority.Name
	}
	if f.IssueType != nil {
		meta.IssueType = f.IssueType.Name
	}
	if f.Reporter != nil {
		meta.Reporter = f.Reporter.DisplayName
	}
	if f.Assignee != nil && f.Assignee.DisplayName != "" {
		meta.Assignee = f.Assignee.DisplayName
	}

	description := CleanText(f.Description)

	var comments []string
	if f.Comment != nil {
		for _, c := range f.Comment.Comments {
			if body := CleanText(c.Body); body != "" {
				comments = append(comments, body)
			}
		}
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Title: %s\n\nDescription:\n%s", meta.Title, description)
	if len(comments) > 0 {
		text.WriteString("\n\n--- Comments ---\n")
		text.WriteString(strings.Join(comments, "\n\n"))
	}
	fullText := text.String()

	tasks := map[string]Task{
		"instruction_summarize": {
			Instruction: "Summarize the following issue, including the problem and all discussion.",
			Input:       fullText,
			Output:      meta.Title,
		},
		"instruction_classify_priority": {
			Instruction: "Based on the issue description, classify its priority (e.g., Blocker, Critical, Major, Minor, Trivial).",
			Input:       fmt.Sprintf("Title: %s\nDescription: %s", meta.Title, description),
			Output:      meta.Priority,
		},
		"instruction_qna_status": {
			Instruction: fmt.Sprintf("What is the current status of issue %s?", meta.IssueKey),
			Input:       fullText,
			Output:      meta.Status,
		},
	}

	return &Record{
		DocID:        "jira_" + meta.IssueKey,
		Source:       source,
		Metadata:     meta,
		Text:         fullText,
		DerivedTasks: tasks,
	}, nil
}

// CleanText normalizes Jira markup in free text. Full markup parsing is out
// of scope; only code-block markers are rewritten so fenced blocks survive.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "{code}", "```")
	text = strings.ReplaceAll(text, "{noformat}", "```")
	return strings.TrimSpace(text)
}
