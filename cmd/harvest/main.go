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
	"os/signal"
	"syscall"

	harvesterrors "github.com/corpusforge/jira-harvest/internal/errors"
	"github.com/corpusforge/jira-harvest/pkg/version"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "harvest",
		Short: "Scrape Jira issues into an NDJSON training corpus",
		Long: `Harvest walks the issue pages of one or more Jira projects and writes
each issue as a cleaned NDJSON training record. Progress is persisted per
project after every page, so an interrupted run resumes from the last
durable offset instead of starting over.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.AddCommand(newScrapeCommand())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}

// mapErrorToExitCode maps internal errors to appropriate exit codes.
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, harvesterrors.ErrBadRequest) ||
		errors.Is(err, harvesterrors.ErrProjectNotFound) ||
		errors.Is(err, harvesterrors.ErrRateLimited) ||
		errors.Is(err, harvesterrors.ErrMalformedResponse) {
		return 2 // Request/authorization errors
	}

	if errors.Is(err, harvesterrors.ErrNetworkFailure) ||
		errors.Is(err, harvesterrors.ErrRetriesExhausted) {
		return 3 // Network errors
	}

	return 1 // General error
}
