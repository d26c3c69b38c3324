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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrBadRequest indicates the Jira API rejected the request (a 4xx
	// other than 429). Not retryable. Maps to exit code 2.
	ErrBadRequest = errors.New("jira rejected request")

	// ErrProjectNotFound indicates the requested project does not exist or
	// is not visible to anonymous access. Maps to exit code 2.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimited indicates the Jira API returned 429. The retry layer
	// handles this with a cooldown, so it only surfaces when the wait is
	// canceled mid-cooldown. Maps to exit code 2.
	ErrRateLimited = errors.New("jira rate limit exceeded")

	// ErrRetriesExhausted indicates a transient failure persisted past the
	// retry budget for a single page. Maps to exit code 3.
	ErrRetriesExhausted = errors.New("retry attempts exhausted")

	// ErrMalformedResponse indicates the API returned a body that could not
	// be decoded. Not retryable. Maps to exit code 2.
	ErrMalformedResponse = errors.New("malformed api response")
)
