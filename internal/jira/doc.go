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

// Package jira provides the client layer for the Jira REST search API.
//
// The package is organized around a small Client interface that represents
// the single network boundary of the harvester. Two implementations exist:
// RESTClient talks to a real Jira instance over HTTP with connection reuse
// and client-side request pacing, and MockClient serves scripted pages for
// tests. RetryClient decorates any Client with the retry policy: exponential
// backoff for transient failures and a fixed cooldown for rate limiting.
//
// Errors returned by RESTClient are *APIError values carrying the HTTP
// status code and an ErrorClass so callers can distinguish retryable from
// fatal conditions without string matching.
package jira
