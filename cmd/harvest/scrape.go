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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/corpusforge/jira-harvest/internal/config"
	"github.com/corpusforge/jira-harvest/internal/engine"
	"github.com/corpusforge/jira-harvest/internal/jira"
	"github.com/corpusforge/jira-harvest/internal/logging"
	"github.com/corpusforge/jira-harvest/internal/metrics"
	"github.com/corpusforge/jira-harvest/internal/output"
	"github.com/corpusforge/jira-harvest/internal/state"
	"github.com/corpusforge/jira-harvest/internal/transform"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// scrapeFlags holds the command-line overrides for the scrape command.
// Empty values mean "use the config file / defaults".
type scrapeFlags struct {
	configPath   string
	outputPath   string
	statePath    string
	stateBackend string
	projects     []string
	pageSize     int
	logLevel     string
	pretty       bool
}

func newScrapeCommand() *cobra.Command {
	var flags scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape configured Jira projects into the NDJSON corpus",
		Long: `Scrape walks every configured project page by page and appends one
NDJSON record per issue to the output file.

Progress is saved after each page. Re-running the command skips pages
that were already persisted, so a crash or Ctrl-C never loses issues
and never rescans completed projects.

Configuration is resolved in order: built-in defaults, config file
(--config or the default search path), JIRA_HARVEST_* environment
variables, then command-line flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(flags)
			if err != nil {
				return err
			}
			return runScrape(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to config file (default: search .jira-harvest.yaml, ~/.jira-harvest/config.yaml)")
	cmd.Flags().StringVar(&flags.outputPath, "output", "", "Output NDJSON file, opened in append mode")
	cmd.Flags().StringVar(&flags.statePath, "state", "", "Progress state location (default: ~/.jira-harvest/progress.state)")
	cmd.Flags().StringVar(&flags.stateBackend, "state-backend", "", "Progress backend: file or sqlite")
	cmd.Flags().StringSliceVar(&flags.projects, "projects", nil, "Project keys to scrape, in order")
	cmd.Flags().IntVar(&flags.pageSize, "page-size", 0, "Issues requested per API call")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "Human-readable console logs instead of JSON")

	return cmd
}

// resolveConfig loads configuration and applies flag overrides on top.
func resolveConfig(flags scrapeFlags) (*config.Config, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	if flags.outputPath != "" {
		cfg.Output.Path = flags.outputPath
	}
	if flags.statePath != "" {
		cfg.State.Path = flags.statePath
	}
	if flags.stateBackend != "" {
		cfg.State.Backend = flags.stateBackend
	}
	if len(flags.projects) > 0 {
		cfg.Scrape.Projects = flags.projects
	}
	if flags.pageSize > 0 {
		cfg.Scrape.PageSize = flags.pageSize
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.pretty {
		cfg.Log.Pretty = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openStore creates the progress store for the configured backend.
func openStore(cfg *config.Config) (state.Store, error) {
	path := cfg.State.Path
	if path == "" {
		path = state.DefaultStatePath()
	}

	switch cfg.State.Backend {
	case "sqlite":
		return state.NewSQLiteStore(path)
	default:
		return state.NewFileStore(path), nil
	}
}

// runScrape executes a full scrape run: every configured project, every
// page, until the stream is exhausted or a fatal error aborts the run.
func runScrape(ctx context.Context, cfg *config.Config) error {
	log := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: os.Stderr,
	})

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open progress store: %w", err)
	}
	defer store.Close()

	writer, err := output.NewAppendWriter(cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer writer.Close()

	client := jira.NewRetryClient(
		jira.NewRESTClient(jira.RESTConfig{
			Endpoint:          cfg.Jira.Endpoint,
			RequestsPerSecond: cfg.Jira.RequestsPerSecond,
			Burst:             cfg.Jira.Burst,
		}),
		jira.RetryConfig{
			MaxAttempts:       cfg.Retry.MaxAttempts,
			InitialBackoff:    cfg.Retry.InitialBackoff.Std(),
			MaxBackoff:        cfg.Retry.MaxBackoff.Std(),
			BackoffMultiplier: cfg.Retry.BackoffMultiplier,
			Cooldown:          cfg.Retry.Cooldown.Std(),
		},
	)

	eng, err := engine.New(client, store, engine.Options{
		Projects: cfg.Scrape.Projects,
		PageSize: cfg.Scrape.PageSize,
		Fields:   cfg.Scrape.Fields,
	})
	if err != nil {
		return err
	}

	log.Info().
		Strs("projects", cfg.Scrape.Projects).
		Int("page_size", cfg.Scrape.PageSize).
		Str("output", cfg.Output.Path).
		Str("state_backend", cfg.State.Backend).
		Msg("starting scrape")

	start := time.Now()
	skipped, err := drainIssues(ctx, eng, writer, log)
	if err != nil {
		return err
	}

	log.Info().
		Int("records_written", writer.Count()).
		Int("records_skipped", skipped).
		Dur("elapsed", time.Since(start)).
		Msg("scrape complete")
	return nil
}

// drainIssues pulls issues from the engine until the stream ends,
// transforming and writing each one. Issues that cannot be transformed
// are counted and skipped; they never abort the run.
func drainIssues(ctx context.Context, eng *engine.Engine, writer output.RecordWriter, log zerolog.Logger) (skipped int, err error) {
	for {
		issue, err := eng.Next(ctx)
		if errors.Is(err, engine.ErrEndOfStream) {
			return skipped, nil
		}
		if err != nil {
			return skipped, err
		}

		record, err := transform.Transform(issue)
		if err != nil {
			metrics.RecordsSkipped.Inc()
			skipped++
			log.Warn().
				Str("issue", issue.Key).
				Err(err).
				Msg("skipping untransformable issue")
			continue
		}

		if err := writer.Write(record); err != nil {
			return skipped, fmt.Errorf("failed to write record: %w", err)
		}
	}
}
