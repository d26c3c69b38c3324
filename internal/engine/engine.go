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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/corpusforge/jira-harvest/internal/jira"
	"github.com/corpusforge/jira-harvest/internal/state"
)

// Prometheus metrics for the pagination engine.
var (
	pagesFetchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_pages_fetched_total",
		Help: "Total number of pages fetched by project",
	}, []string{"project"})

	issuesYieldedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_issues_yielded_total",
		Help: "Total number of issues yielded by project",
	}, []string{"project"})
)

// ErrEndOfStream signals that every configured project has been fetched to
// completion. It is the stream's io.EOF equivalent, not a failure.
var ErrEndOfStream = errors.New("end of issue stream")

// Options configures an Engine.
type Options struct {
	// Projects is the ordered list of project keys to scrape. Duplicates
	// are fetched independently, in order.
	Projects []string

	// PageSize is the number of issues requested per fetch. Must be >= 1.
	PageSize int

	// Fields restricts fetched issues to this allow-list. Empty means
	// jira.DefaultFields.
	Fields []string
}

// Engine is a pull-based iterator over the issues of a sequence of projects.
// Each Next call performs work only when its in-memory page buffer is empty:
// it persists the offset of the page just drained, fetches the next page
// (possibly sleeping through retries in the client layer), and buffers it.
// At most one page is in memory at any time.
//
// Engine is not safe for concurrent use; the harvester is deliberately
// single-threaded, one fetch at a time.
type Engine struct {
	client jira.Client
	store  state.Store
	opts   Options

	offsets map[string]int // loaded once at start
	loaded  bool

	idx     int // index into opts.Projects
	offset  int // offset after the last fetched page for the current project
	started bool

	buf         []jira.Issue
	bufPos      int
	pendingSave bool // offset not yet durable for the buffered page

	fetched int // issues yielded for the current project, for progress logs

	done bool
	err  error // sticky fatal error
}

// New validates the configuration and creates an Engine. It performs no I/O;
// the progress store is read on the first Next call.
func New(client jira.Client, store state.Store, opts Options) (*Engine, error) {
	if len(opts.Projects) == 0 {
		return nil, errors.New("engine: no projects configured")
	}
	if opts.PageSize < 1 {
		return nil, fmt.Errorf("engine: page size must be >= 1, got %d", opts.PageSize)
	}

	return &Engine{
		client: client,
		store:  store,
		opts:   opts,
	}, nil
}

// Next returns the next issue in strict per-project, per-page, in-page
// order. It returns ErrEndOfStream once all projects are exhausted. Any
// other error is fatal and sticky: the run is aborted, subsequent calls
// return the same error, and the persisted offset remains valid for a
// future restart.
func (e *Engine) Next(ctx context.Context) (jira.Issue, error) {
	if e.err != nil {
		return jira.Issue{}, e.err
	}
	if e.done {
		return jira.Issue{}, ErrEndOfStream
	}

	if !e.loaded {
		offsets, err := e.store.Load(ctx)
		if err != nil {
			return jira.Issue{}, e.fail(fmt.Errorf("loading progress: %w", err))
		}
		e.offsets = offsets
		e.loaded = true
	}

	for {
		// Drain the buffered page first.
		if e.bufPos < len(e.buf) {
			issue := e.buf[e.bufPos]
			e.bufPos++
			e.fetched++
			issuesYieldedTotal.WithLabelValues(e.currentProject()).Inc()
			return issue, nil
		}

		// The buffered page is fully drained; only now is the advanced
		// offset made durable. A crash mid-page resumes at the old
		// offset and re-fetches the whole page: replayed issues are
		// possible, a skipped issue is not.
		if e.pendingSave {
			project := e.opts.Projects[e.idx]
			if err := e.store.Save(ctx, project, e.offset); err != nil {
				return jira.Issue{}, e.fail(fmt.Errorf("persisting offset %d for project %s: %w", e.offset, project, err))
			}
			// Track the advance in memory too, so a duplicate project
			// entry later in the list resumes here instead of
			// regressing the offset.
			e.offsets[project] = e.offset
			e.pendingSave = false
		}

		if e.idx >= len(e.opts.Projects) {
			e.done = true
			return jira.Issue{}, ErrEndOfStream
		}

		project := e.opts.Projects[e.idx]
		if !e.started {
			e.offset = e.offsets[project]
			e.fetched = 0
			e.started = true
			log.Info().Str("project", project).Int("offset", e.offset).Msg("starting project")
		}

		page, err := e.client.SearchIssues(ctx, project, jira.SearchOptions{
			StartAt:    e.offset,
			MaxResults: e.opts.PageSize,
			Fields:     e.opts.Fields,
		})
		if err != nil {
			return jira.Issue{}, e.fail(fmt.Errorf("project %s at offset %d: %w", project, e.offset, err))
		}
		pagesFetchedTotal.WithLabelValues(project).Inc()

		// An empty page is the authoritative end-of-project signal. The
		// reported total may drift while a long scrape runs, so it is
		// used for progress only, never to skip the confirming fetch.
		if len(page.Issues) == 0 {
			log.Info().Str("project", project).Int("offset", e.offset).Msg("project exhausted")
			e.idx++
			e.started = false
			continue
		}

		e.offset += len(page.Issues)
		e.pendingSave = true
		e.buf = page.Issues
		e.bufPos = 0

		log.Info().
			Str("project", project).
			Int("progress", e.offset).
			Int("total", page.Total).
			Msg("page fetched")
	}
}

// fail records a fatal error, making it sticky across Next calls.
func (e *Engine) fail(err error) error {
	e.err = err
	return err
}

func (e *Engine) currentProject() string {
	if e.idx < len(e.opts.Projects) {
		return e.opts.Projects[e.idx]
	}
	return ""
}
