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
	"errors"
	"fmt"

	harvesterrors "github.com/corpusforge/jira-harvest/internal/errors"
)

// ErrorClass categorizes API failures for retry decisions.
type ErrorClass string

const (
	// ErrorClassClient covers 4xx responses other than 429. Not retryable.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer covers 5xx responses. Retryable with backoff.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassThrottle covers 429 responses. Retryable after a fixed
	// cooldown, never counted against the retry budget.
	ErrorClassThrottle ErrorClass = "throttle"

	// ErrorClassNetwork covers connection errors and timeouts.
	// Retryable with backoff.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode covers unparseable response bodies. Not retryable.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError is an error from the Jira API with its HTTP status and class.
type APIError struct {
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jira %s error (status %d): %s: %v",
			e.Class, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("jira %s error (status %d): %s",
		e.Class, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to an ErrorClass and the matching
// sentinel error.
func classifyStatus(status int) (ErrorClass, error) {
	switch {
	case status == 429:
		return ErrorClassThrottle, harvesterrors.ErrRateLimited
	case status == 404:
		return ErrorClassClient, harvesterrors.ErrProjectNotFound
	case status >= 400 && status < 500:
		return ErrorClassClient, harvesterrors.ErrBadRequest
	case status >= 500:
		return ErrorClassServer, harvesterrors.ErrNetworkFailure
	default:
		return ErrorClassClient, harvesterrors.ErrBadRequest
	}
}

// ClassOf returns the ErrorClass of an error, or ErrorClassNetwork for
// non-API errors, which keeps plain transport failures retryable.
func ClassOf(err error) ErrorClass {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Class
	}
	return ErrorClassNetwork
}

// IsThrottle reports whether the error is a 429 rate-limit response.
func IsThrottle(err error) bool {
	return ClassOf(err) == ErrorClassThrottle
}

// IsRetryable reports whether the error may be retried with backoff.
// Throttle errors are handled separately and are not "retryable" in the
// backoff sense.
func IsRetryable(err error) bool {
	switch ClassOf(err) {
	case ErrorClassServer, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
