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

package transform

import (
	"strings"
	"testing"

	"github.com/corpusforge/jira-harvest/internal/jira"
)

func fullIssue() jira.Issue {
	return jira.Issue{
		ID:  "12345",
		Key: "SPARK-100",
		Fields: jira.IssueFields{
			Summary:     "Executor crashes on large shuffles",
			Description: "Seen under load: {code}java.lang.OutOfMemoryError{code}",
			Status:      &jira.NamedValue{Name: "Open"},
			Priority:    &jira.NamedValue{Name: "Critical"},
			IssueType:   &jira.NamedValue{Name: "Bug"},
			Project:     &jira.ProjectRef{Key: "SPARK"},
			Reporter:    &jira.User{DisplayName: "Alice"},
			Assignee:    &jira.User{DisplayName: "Bob"},
			Labels:      []string{"shuffle", "memory"},
			Created:     "2024-01-15T10:00:00.000+0000",
			Updated:     "2024-02-01T10:00:00.000+0000",
			Comment: &jira.CommentBlock{Comments: []jira.Comment{
				{Body: "Reproduced on 3.5.0."},
				{Body: "  {noformat}stack trace here{noformat}  "},
				{Body: ""},
			}},
		},
	}
}

func TestTransformFullIssue(t *testing.T) {
	record, err := Transform(fullIssue())
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if record.DocID != "jira_SPARK-100" {
		t.Errorf("DocID = %q, want jira_SPARK-100", record.DocID)
	}
	if record.Source != "apache_jira" {
		t.Errorf("Source = %q, want apache_jira", record.Source)
	}

	m := record.Metadata
	if m.Project != "SPARK" || m.Status != "Open" || m.Priority != "Critical" {
		t.Errorf("metadata mismatch: %+v", m)
	}
	if m.Reporter != "Alice" || m.Assignee != "Bob" {
		t.Errorf("people mismatch: reporter=%q assignee=%q", m.Reporter, m.Assignee)
	}
	if m.IssueType != "Bug" {
		t.Errorf("IssueType = %q, want Bug", m.IssueType)
	}

	if !strings.Contains(record.Text, "Title: Executor crashes on large shuffles") {
		t.Errorf("text missing title: %q", record.Text)
	}
	if !strings.Contains(record.Text, "```java.lang.OutOfMemoryError```") {
		t.Errorf("code markup not rewritten: %q", record.Text)
	}
	if !strings.Contains(record.Text, "--- Comments ---") {
		t.Errorf("comments section missing: %q", record.Text)
	}
	if !strings.Contains(record.Text, "Reproduced on 3.5.0.") {
		t.Errorf("comment body missing: %q", record.Text)
	}

	if len(record.DerivedTasks) != 3 {
		t.Fatalf("got %d derived tasks, want 3", len(record.DerivedTasks))
	}
	if task := record.DerivedTasks["instruction_classify_priority"]; task.Output != "Critical" {
		t.Errorf("priority task output = %q, want Critical", task.Output)
	}
	if task := record.DerivedTasks["instruction_qna_status"]; task.Output != "Open" {
		t.Errorf("status task output = %q, want Open", task.Output)
	}
	if task := record.DerivedTasks["instruction_qna_status"]; !strings.Contains(task.Instruction, "SPARK-100") {
		t.Errorf("status task instruction missing issue key: %q", task.Instruction)
	}
}

func TestTransformMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		issue jira.Issue
	}{
		{"missing key", jira.Issue{ID: "1", Fields: jira.IssueFields{Summary: "x"}}},
		{"missing summary", jira.Issue{ID: "1", Key: "SPARK-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Transform(tt.issue); err == nil {
				t.Error("expected skip error, got nil")
			}
		})
	}
}

func TestTransformSparseIssueDefaults(t *testing.T) {
	issue := jira.Issue{
		ID:  "2",
		Key: "KAFKA-7",
		Fields: jira.IssueFields{
			Summary: "Broker leaks file handles",
		},
	}

	record, err := Transform(issue)
	if err != nil {
		t.Fatalf("Transform failed on sparse issue: %v", err)
	}

	if record.Metadata.Assignee != "Unassigned" {
		t.Errorf("Assignee = %q, want Unassigned default", record.Metadata.Assignee)
	}
	if record.Metadata.Status != "" || record.Metadata.Priority != "" {
		t.Errorf("absent fields must stay empty: %+v", record.Metadata)
	}
	if strings.Contains(record.Text, "--- Comments ---") {
		t.Error("comments section present without comments")
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"whitespace", "  \n\t ", ""},
		{"code markers", "{code}x := 1{code}", "```x := 1```"},
		{"noformat markers", "{noformat}raw{noformat}", "```raw```"},
		{"trim", "  hello  ", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
