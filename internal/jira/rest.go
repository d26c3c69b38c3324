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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	harvesterrors "github.com/corpusforge/jira-harvest/internal/errors"
	"github.com/corpusforge/jira-harvest/pkg/version"
)

// maxResponseSize limits how much of a response body is read, preventing
// memory issues from a misbehaving server.
const maxResponseSize = 50 * 1024 * 1024 // 50MB

// RESTClient implements the Client interface against the Jira REST search
// endpoint. It is configured with:
//   - Optimized connection pooling so consecutive page fetches reuse the
//     same connection
//   - A client-side token-bucket pacer to keep the request rate polite
//     before the server ever answers 429
//   - Response size limiting to prevent memory issues
//   - User-Agent header for API compliance
type RESTClient struct {
	httpClient *http.Client
	endpoint   string
	limiter    *rate.Limiter
}

// RESTConfig configures a RESTClient.
type RESTConfig struct {
	// Endpoint is the full URL of the search resource,
	// e.g. https://issues.apache.org/jira/rest/api/2/search.
	Endpoint string

	// RequestsPerSecond is the sustained client-side request rate.
	// Zero disables pacing.
	RequestsPerSecond float64

	// Burst is the token-bucket burst size. Defaults to 1 when pacing
	// is enabled.
	Burst int

	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration
}

// NewRESTClient creates a Jira REST client for the given configuration.
func NewRESTClient(cfg RESTConfig) *RESTClient {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &RESTClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		endpoint: cfg.Endpoint,
		limiter:  limiter,
	}
}

// SearchIssues fetches one page of issues for a project, ordered by creation
// date ascending so offsets remain stable across calls.
func (c *RESTClient) SearchIssues(ctx context.Context, project string, opts SearchOptions) (*SearchResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := c.buildRequest(ctx, project, opts)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Message: fmt.Sprintf("search request for project %s", project),
			Err:     fmt.Errorf("%w: %v", harvesterrors.ErrNetworkFailure, err),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		class, sentinel := classifyStatus(resp.StatusCode)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    fmt.Sprintf("search for project %s at offset %d", project, opts.StartAt),
			Err:        sentinel,
		}
	}

	var result SearchResult
	limited := io.LimitReader(resp.Body, maxResponseSize)
	if err := json.NewDecoder(limited).Decode(&result); err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassDecode,
			Message:    fmt.Sprintf("decoding search response for project %s", project),
			Err:        fmt.Errorf("%w: %v", harvesterrors.ErrMalformedResponse, err),
		}
	}

	return &result, nil
}

// buildRequest assembles the search GET request with the JQL query, offset
// pagination parameters, and the field allow-list.
func (c *RESTClient) buildRequest(ctx context.Context, project string, opts SearchOptions) (*http.Request, error) {
	pageSize := opts.MaxResults
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}

	params := url.Values{}
	params.Set("jql", fmt.Sprintf("project = %q ORDER BY created ASC", project))
	params.Set("startAt", strconv.Itoa(opts.StartAt))
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("fields", strings.Join(fields, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building search request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", fmt.Sprintf("jira-harvest/%s", version.Version))

	return req, nil
}
