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

// Issue represents a single Jira issue as returned by the search API.
// Only the fields on the allow-list are ever populated; everything else is
// excluded at the API level to keep pages small.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the requested subset of an issue's fields. Pointer
// fields are optional in the API response; nil means absent.
type IssueFields struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Status      *NamedValue   `json:"status"`
	Priority    *NamedValue   `json:"priority"`
	IssueType   *NamedValue   `json:"issuetype"`
	Project     *ProjectRef   `json:"project"`
	Reporter    *User         `json:"reporter"`
	Assignee    *User         `json:"assignee"`
	Labels      []string      `json:"labels"`
	Created     string        `json:"created"`
	Updated     string        `json:"updated"`
	Comment     *CommentBlock `json:"comment"`
}

// NamedValue is a Jira field object of which only the display name matters
// (status, priority, issue type).
type NamedValue struct {
	Name string `json:"name"`
}

// ProjectRef identifies the project an issue belongs to.
type ProjectRef struct {
	Key string `json:"key"`
}

// User represents a Jira user reference.
type User struct {
	DisplayName string `json:"displayName"`
}

// CommentBlock wraps the comment list the API nests under "comment".
type CommentBlock struct {
	Comments []Comment `json:"comments"`
}

// Comment is a single issue comment.
type Comment struct {
	Body string `json:"body"`
}

// SearchResult represents one page of issues from a search call.
// Total is the number of issues matching the query at fetch time, which may
// drift while a long scrape is running; the pagination engine treats an
// empty page as the authoritative end-of-project signal.
type SearchResult struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// SearchOptions configures a single search call.
type SearchOptions struct {
	// StartAt is the zero-based offset of the first issue to return.
	StartAt int

	// MaxResults is the page size. Defaults to defaultPageSize if zero.
	MaxResults int

	// Fields restricts the response to the listed field names.
	// Empty means DefaultFields.
	Fields []string
}

// DefaultFields is the field allow-list sent with every search request.
// Fixed configuration, not derived at runtime.
var DefaultFields = []string{
	"summary",
	"description",
	"status",
	"priority",
	"issuetype",
	"reporter",
	"assignee",
	"labels",
	"created",
	"updated",
	"comment",
}

const defaultPageSize = 50
