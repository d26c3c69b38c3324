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
	"context"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	harvesterrors "github.com/corpusforge/jira-harvest/internal/errors"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvest_retry_exhausted_total",
		Help: "Total number of times the retry budget was exhausted by error class",
	}, []string{"error_class"})

	rateLimitHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "harvest_rate_limit_hits_total",
		Help: "Total number of 429 responses received",
	})
)

// RetryConfig configures the retry behavior for search calls.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts for transient failures,
	// including the initial request.
	MaxAttempts int

	// InitialBackoff is the backoff before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// Cooldown is the fixed wait after a 429 response. Rate-limit retries
	// are unbounded and never consume the transient retry budget.
	Cooldown time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       5,
		InitialBackoff:    4 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 2.0,
		Cooldown:          60 * time.Second,
	}
}

// RetryClient wraps a Client with automatic retry logic: exponential backoff
// for transient failures and a fixed cooldown for rate limiting. A 429
// resets the transient attempt counter, so a persistently rate-limited API
// stalls rather than fails.
type RetryClient struct {
	client Client
	config RetryConfig
}

// NewRetryClient creates a RetryClient with the given configuration.
// A zero MaxAttempts falls back to the defaults.
func NewRetryClient(client Client, config RetryConfig) *RetryClient {
	if config.MaxAttempts <= 0 {
		config = DefaultRetryConfig()
	}
	return &RetryClient{client: client, config: config}
}

// SearchIssues implements the Client interface with retry logic. The same
// offset is retried until it succeeds, the error proves non-retryable, or
// the transient retry budget runs out.
func (r *RetryClient) SearchIssues(ctx context.Context, project string, opts SearchOptions) (*SearchResult, error) {
	attempt := 0
	var lastErr error

	for {
		result, err := r.client.SearchIssues(ctx, project, opts)
		if err == nil {
			if attempt > 0 || lastErr != nil {
				log.Info().
					Str("project", project).
					Int("offset", opts.StartAt).
					Msg("request succeeded after retry")
			}
			return result, nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if IsThrottle(err) {
			rateLimitHitsTotal.Inc()
			retriesTotal.WithLabelValues(string(ErrorClassThrottle)).Inc()
			log.Warn().
				Str("project", project).
				Int("offset", opts.StartAt).
				Dur("cooldown", r.config.Cooldown).
				Msg("rate limit hit, cooling down")

			if err := r.sleep(ctx, r.config.Cooldown); err != nil {
				return nil, fmt.Errorf("%w: %v", harvesterrors.ErrRateLimited, err)
			}
			// A throttle response proves the server is reachable.
			attempt = 0
			lastErr = err
			continue
		}

		if !IsRetryable(err) {
			return nil, err
		}

		lastErr = err
		attempt++
		class := string(ClassOf(err))
		if attempt >= r.config.MaxAttempts {
			retryExhaustedTotal.WithLabelValues(class).Inc()
			return nil, fmt.Errorf("%w after %d attempts: %v",
				harvesterrors.ErrRetriesExhausted, attempt, lastErr)
		}

		backoff := r.calculateBackoff(attempt)
		retriesTotal.WithLabelValues(class).Inc()
		log.Warn().
			Str("project", project).
			Int("offset", opts.StartAt).
			Str("error_class", class).
			Int("attempt", attempt).
			Int("max_attempts", r.config.MaxAttempts).
			Dur("backoff", backoff).
			Err(err).
			Msg("transient failure, backing off")

		if err := r.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}
}

// sleep waits for d with context cancellation support.
func (r *RetryClient) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// calculateBackoff returns the backoff before retry number attempt, with
// ±10% jitter to prevent thundering herd.
func (r *RetryClient) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffMultiplier, float64(attempt-1))

	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}

	jitter := backoff * 0.1 * (2*float64(time.Now().UnixNano()%100)/100 - 1)
	backoff += jitter

	return time.Duration(backoff)
}
