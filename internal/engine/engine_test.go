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

package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	harvesterrors "github.com/corpusforge/jira-harvest/internal/errors"
	"github.com/corpusforge/jira-harvest/internal/jira"
)

// memStore is an in-memory state.Store that records every save for
// verification.
type memStore struct {
	offsets map[string]int
	saves   []save
}

type save struct {
	project string
	offset  int
}

func newMemStore() *memStore {
	return &memStore{offsets: make(map[string]int)}
}

func (s *memStore) Load(context.Context) (map[string]int, error) {
	out := make(map[string]int, len(s.offsets))
	for k, v := range s.offsets {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Save(_ context.Context, project string, offset int) error {
	s.offsets[project] = offset
	s.saves = append(s.saves, save{project, offset})
	return nil
}

func (s *memStore) Close() error { return nil }

// collect drains the engine, returning yielded issue keys.
func collect(t *testing.T, e *Engine) []string {
	t.Helper()
	var keys []string
	for {
		issue, err := e.Next(context.Background())
		if errors.Is(err, ErrEndOfStream) {
			return keys
		}
		require.NoError(t, err)
		keys = append(keys, issue.Key)
	}
}

func fastRetry(client jira.Client) jira.Client {
	return jira.NewRetryClient(client, jira.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Cooldown:          time.Millisecond,
	})
}

func TestNewRejectsBadConfig(t *testing.T) {
	mock := jira.NewMockClient(map[string]int{"DEMO": 1})

	_, err := New(mock, newMemStore(), Options{Projects: nil, PageSize: 2})
	assert.Error(t, err, "empty project list must be rejected")

	_, err = New(mock, newMemStore(), Options{Projects: []string{"DEMO"}, PageSize: 0})
	assert.Error(t, err, "non-positive page size must be rejected")
}

func TestPaginationWalk(t *testing.T) {
	// total=5, page_size=2: offsets 0, 2, 4 return issues, offset 5
	// confirms exhaustion. Four fetches, five issues, three saves.
	mock := jira.NewMockClient(map[string]int{"DEMO": 5})
	store := newMemStore()

	e, err := New(mock, store, Options{Projects: []string{"DEMO"}, PageSize: 2})
	require.NoError(t, err)

	keys := collect(t, e)

	assert.Equal(t, []string{"DEMO-1", "DEMO-2", "DEMO-3", "DEMO-4", "DEMO-5"}, keys)
	assert.Equal(t, 4, mock.CallCount)
	assert.Equal(t, []save{{"DEMO", 2}, {"DEMO", 4}, {"DEMO", 5}}, store.saves)

	// The stream stays ended.
	_, err = e.Next(context.Background())
	assert.ErrorIs(t, err, ErrEndOfStream)
}

func TestZeroIssueProject(t *testing.T) {
	mock := jira.NewMockClient(map[string]int{"EMPTY": 0})
	store := newMemStore()

	e, err := New(mock, store, Options{Projects: []string{"EMPTY"}, PageSize: 2})
	require.NoError(t, err)

	keys := collect(t, e)

	assert.Empty(t, keys, "zero-issue project must yield no records")
	assert.Equal(t, 1, mock.CallCount, "exhaustion detected on the first fetch")
	assert.Empty(t, store.saves, "empty pages must not be persisted")
}

func TestProjectsProcessedInOrder(t *testing.T) {
	mock := jira.NewMockClient(map[string]int{"DEMO": 3, "KAFKA": 2})
	store := newMemStore()

	e, err := New(mock, store, Options{Projects: []string{"DEMO", "KAFKA"}, PageSize: 2})
	require.NoError(t, err)

	keys := collect(t, e)

	assert.Equal(t, []string{"DEMO-1", "DEMO-2", "DEMO-3", "KAFKA-1", "KAFKA-2"}, keys,
		"projects must be processed fully, one after another")
	assert.Equal(t, 3, store.offsets["DEMO"])
	assert.Equal(t, 2, store.offsets["KAFKA"])
}

func TestResumeFromSnapshot(t *testing.T) {
	// Snapshot after two full pages (offset 4): only page 3 onward is
	// yielded, pages 1..2 are never re-fetched.
	mock := jira.NewMockClient(map[string]int{"DEMO": 5})
	store := newMemStore()
	store.offsets["DEMO"] = 4

	e, err := New(mock, store, Options{Projects: []string{"DEMO"}, PageSize: 2})
	require.NoError(t, err)

	keys := collect(t, e)

	assert.Equal(t, []string{"DEMO-5"}, keys)
	for _, req := range mock.Requests {
		assert.GreaterOrEqual(t, req.StartAt, 4, "resumed run must never revisit completed pages")
	}
}

func TestCompletedProjectYieldsNothingOnRerun(t *testing.T) {
	mock := jira.NewMockClient(map[string]int{"DEMO": 5})
	store := newMemStore()
	store.offsets["DEMO"] = 5

	e, err := New(mock, store, Options{Projects: []string{"DEMO"}, PageSize: 2})
	require.NoError(t, err)

	keys := collect(t, e)

	assert.Empty(t, keys)
	assert.Equal(t, 1, mock.CallCount, "one confirming fetch, then exhausted")
}

func TestTransientFailureThenSuccess(t *testing.T) {
	// First fetch 503s, the retry layer backs off and retries the same
	// offset; the stream is identical to an unimpeded run.
	mock := jira.NewMockClient(map[string]int{"DEMO": 2})
	mock.ErrBeforeCall = map[int]error{
		1: &jira.APIError{StatusCode: 503, Class: jira.ErrorClassServer},
	}
	store := newMemStore()

	e, err := New(fastRetry(mock), store, Options{Projects: []string{"DEMO"}, PageSize: 2})
	require.NoError(t, err)

	keys := collect(t, e)

	assert.Equal(t, []string{"DEMO-1", "DEMO-2"}, keys, "issues yielded exactly once")
	assert.Equal(t, []save{{"DEMO", 2}}, store.saves)
}

func TestThrottledFetchesEventuallySucceed(t *testing.T) {
	// Three consecutive 429s, then success: the page's issues appear
	// exactly once and the offset is not persisted during the throttle.
	throttle := &jira.APIError{StatusCode: 429, Class: jira.ErrorClassThrottle}
	mock := jira.NewMockClient(map[string]int{"DEMO": 2})
	mock.ErrBeforeCall = map[int]error{1: throttle, 2: throttle, 3: throttle}
	store := newMemStore()

	e, err := New(fastRetry(mock), store, Options{Projects: []string{"DEMO"}, PageSize: 2})
	require.NoError(t, err)

	first, err := e.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DEMO-1", first.Key)
	assert.Equal(t, 4, mock.CallCount, "three throttled attempts and one success")
	assert.Empty(t, store.saves, "no persisted-offset change before the page is drained")

	rest := collect(t, e)
	assert.Equal(t, []string{"DEMO-2"}, rest)
	assert.Equal(t, []save{{"DEMO", 2}}, store.saves)
}

func TestRetryExhaustionAbortsRun(t *testing.T) {
	failure := &jira.APIError{StatusCode: 503, Class: jira.ErrorClassServer}
	mock := jira.NewMockClient(map[string]int{"DEMO": 5})
	// Page one succeeds, then every attempt at offset 2 fails.
	mock.ErrBeforeCall = map[int]error{2: failure, 3: failure, 4: failure}
	store := newMemStore()

	e, err := New(fastRetry(mock), store, Options{Projects: []string{"DEMO", "KAFKA"}, PageSize: 2})
	require.NoError(t, err)

	var keys []string
	var streamErr error
	for {
		issue, err := e.Next(context.Background())
		if err != nil {
			streamErr = err
			break
		}
		keys = append(keys, issue.Key)
	}

	assert.Equal(t, []string{"DEMO-1", "DEMO-2"}, keys, "issues before the failure are delivered")
	require.ErrorIs(t, streamErr, harvesterrors.ErrRetriesExhausted)
	assert.Contains(t, streamErr.Error(), "DEMO", "error must name the failing project")
	assert.Contains(t, streamErr.Error(), "offset 2", "error must name the failing offset")

	// The error is sticky: the run is aborted, KAFKA is never reached.
	_, err = e.Next(context.Background())
	assert.ErrorIs(t, err, harvesterrors.ErrRetriesExhausted)

	// The persisted offset still reflects the last good page.
	assert.Equal(t, map[string]int{"DEMO": 2}, store.offsets)
}

func TestNonRetryableErrorAbortsImmediately(t *testing.T) {
	mock := jira.NewMockClient(map[string]int{"DEMO": 5})
	mock.ErrBeforeCall = map[int]error{
		1: &jira.APIError{StatusCode: 404, Class: jira.ErrorClassClient, Err: harvesterrors.ErrProjectNotFound},
	}

	e, err := New(fastRetry(mock), newMemStore(), Options{Projects: []string{"DEMO"}, PageSize: 2})
	require.NoError(t, err)

	_, err = e.Next(context.Background())
	require.ErrorIs(t, err, harvesterrors.ErrProjectNotFound)
	assert.Equal(t, 1, mock.CallCount, "4xx must not be retried")
}

func TestCrashAtAnyPointLosesNoIssue(t *testing.T) {
	// Simulate a crash after k yielded records by abandoning the engine
	// and restarting from the persisted store. The pre-crash sequence up
	// to the last persisted offset plus the resumed sequence must cover
	// every issue, gaps never, duplicates allowed.
	const total = 7
	const pageSize = 3

	for k := 0; k <= total; k++ {
		store := newMemStore()

		e, err := New(jira.NewMockClient(map[string]int{"DEMO": total}), store,
			Options{Projects: []string{"DEMO"}, PageSize: pageSize})
		require.NoError(t, err)

		seen := make(map[string]int)
		for i := 0; i < k; i++ {
			issue, err := e.Next(context.Background())
			require.NoError(t, err)
			seen[issue.Key]++
		}

		// Crash: in-memory engine state is discarded, store survives.
		resumed, err := New(jira.NewMockClient(map[string]int{"DEMO": total}), store,
			Options{Projects: []string{"DEMO"}, PageSize: pageSize})
		require.NoError(t, err)
		for _, key := range collect(t, resumed) {
			seen[key]++
		}

		for i := 1; i <= total; i++ {
			key := fmt.Sprintf("DEMO-%d", i)
			assert.GreaterOrEqual(t, seen[key], 1, "crash after %d records: issue %s missing", k, key)
		}
	}
}

func TestMidPageAbandonmentReplaysPage(t *testing.T) {
	// Abandon the engine after consuming one record of a three-issue
	// page. The offset must not be durable yet, so a restarted run
	// re-fetches the page and the unconsumed records are still yielded.
	store := newMemStore()

	e, err := New(jira.NewMockClient(map[string]int{"DEMO": 3}), store,
		Options{Projects: []string{"DEMO"}, PageSize: 3})
	require.NoError(t, err)

	first, err := e.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DEMO-1", first.Key)
	assert.Empty(t, store.saves, "partially consumed page must not advance the durable offset")

	resumed, err := New(jira.NewMockClient(map[string]int{"DEMO": 3}), store,
		Options{Projects: []string{"DEMO"}, PageSize: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"DEMO-1", "DEMO-2", "DEMO-3"}, collect(t, resumed),
		"restart replays the abandoned page in full")
}

func TestDuplicateProjectEntriesAreFetchedIndependently(t *testing.T) {
	mock := jira.NewMockClient(map[string]int{"DEMO": 3})
	store := newMemStore()

	e, err := New(mock, store, Options{Projects: []string{"DEMO", "DEMO"}, PageSize: 2})
	require.NoError(t, err)

	keys := collect(t, e)

	// The second entry resumes at the offset the first pass persisted, so
	// it performs its own confirming fetch and yields nothing new. Offsets
	// never regress.
	assert.Equal(t, []string{"DEMO-1", "DEMO-2", "DEMO-3"}, keys)
	for i := 1; i < len(store.saves); i++ {
		assert.GreaterOrEqual(t, store.saves[i].offset, store.saves[i-1].offset,
			"persisted offsets must be monotonically non-decreasing")
	}
}
