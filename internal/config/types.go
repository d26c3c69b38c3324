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

// Package config types define the configuration structures used throughout
// jira-harvest. These types represent settings that can be loaded from YAML
// configuration files, environment variables, or command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/corpusforge/jira-harvest/internal/jira"
)

// Duration wraps time.Duration with YAML support for values like "60s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the complete configuration for jira-harvest.
// It consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	Jira   JiraConfig   `yaml:"jira"`
	Scrape ScrapeConfig `yaml:"scrape"`
	Retry  RetryConfig  `yaml:"retry"`
	State  StateConfig  `yaml:"state"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// JiraConfig contains Jira-specific settings: the search endpoint and the
// client-side request pacing. A custom endpoint allows pointing the
// harvester at any Jira instance.
type JiraConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// ScrapeConfig controls what gets scraped: the ordered project list, the
// page size, and the field allow-list sent with every search request.
type ScrapeConfig struct {
	Projects []string `yaml:"projects"`
	PageSize int      `yaml:"page_size"`
	Fields   []string `yaml:"fields"`
}

// RetryConfig controls the retry policy for page fetches. Transient
// failures use bounded exponential backoff; 429 responses use the fixed
// cooldown with unbounded retries.
type RetryConfig struct {
	MaxAttempts       int      `yaml:"max_attempts"`
	InitialBackoff    Duration `yaml:"initial_backoff"`
	MaxBackoff        Duration `yaml:"max_backoff"`
	BackoffMultiplier float64  `yaml:"backoff_multiplier"`
	Cooldown          Duration `yaml:"cooldown"`
}

// StateConfig selects and locates the progress store backend.
// Backend is "file" or "sqlite".
type StateConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// OutputConfig locates the corpus output file.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// DefaultConfig returns a Config with sensible defaults: the public Apache
// Jira instance and the three flagship projects the corpus was designed
// around. Everything can be overridden per deployment.
func DefaultConfig() *Config {
	return &Config{
		Jira: JiraConfig{
			Endpoint:          "https://issues.apache.org/jira/rest/api/2/search",
			RequestsPerSecond: 2.0,
			Burst:             5,
		},
		Scrape: ScrapeConfig{
			Projects: []string{"SPARK", "KAFKA", "HADOOP"},
			PageSize: 50,
			Fields:   jira.DefaultFields,
		},
		Retry: RetryConfig{
			MaxAttempts:       5,
			InitialBackoff:    Duration(4 * time.Second),
			MaxBackoff:        Duration(60 * time.Second),
			BackoffMultiplier: 2.0,
			Cooldown:          Duration(60 * time.Second),
		},
		State: StateConfig{
			Backend: "file",
		},
		Output: OutputConfig{
			Path: "jira_corpus.ndjson",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks if the configuration contains valid values. This should
// be called after loading configuration from all sources.
func (c *Config) Validate() error {
	if c.Jira.Endpoint == "" {
		return fmt.Errorf("jira endpoint must not be empty")
	}
	if len(c.Scrape.Projects) == 0 {
		return fmt.Errorf("at least one project must be configured")
	}
	if c.Scrape.PageSize < 1 {
		return fmt.Errorf("page size must be >= 1, got %d", c.Scrape.PageSize)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BackoffMultiplier < 1 {
		return fmt.Errorf("backoff multiplier must be >= 1, got %v", c.Retry.BackoffMultiplier)
	}
	switch c.State.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("unknown state backend %q (want file or sqlite)", c.State.Backend)
	}
	return nil
}
