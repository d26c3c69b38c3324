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

package output

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testRecord struct {
	DocID string `json:"doc_id"`
	Text  string `json:"text"`
}

func TestWriterProducesOneLinePerRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	records := []testRecord{
		{DocID: "jira_SPARK-1", Text: "first"},
		{DocID: "jira_SPARK-2", Text: "second"},
		{DocID: "jira_SPARK-3", Text: "third"},
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	if w.Count() != 3 {
		t.Errorf("Count() = %d, want 3", w.Count())
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, line := range lines {
		var got testRecord
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if got.DocID != records[i].DocID {
			t.Errorf("line %d doc_id = %q, want %q (order must be preserved)", i, got.DocID, records[i].DocID)
		}
	}
}

func TestAppendWriterKeepsExistingRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.ndjson")

	first, err := NewAppendWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Write(testRecord{DocID: "jira_SPARK-1"}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	// A second run must append, not truncate.
	second, err := NewAppendWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Write(testRecord{DocID: "jira_SPARK-2"}); err != nil {
		t.Fatal(err)
	}
	if err := second.Close(); err != nil {
		t.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	var docIDs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var r testRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("corpus line not valid JSON: %v", err)
		}
		docIDs = append(docIDs, r.DocID)
	}

	want := []string{"jira_SPARK-1", "jira_SPARK-2"}
	if len(docIDs) != len(want) {
		t.Fatalf("got %d records, want %d", len(docIDs), len(want))
	}
	for i := range want {
		if docIDs[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, docIDs[i], want[i])
		}
	}
}

func TestAppendWriterCountIsPerRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.ndjson")

	w, err := NewAppendWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		if err := w.Write(testRecord{DocID: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	if w.Count() != 5 {
		t.Errorf("Count() = %d, want 5", w.Count())
	}
}
