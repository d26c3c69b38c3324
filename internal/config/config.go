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

// Package config provides configuration management for jira-harvest with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// The package supports YAML configuration files and provides automatic
// discovery of configuration in standard locations.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .jira-harvest.yaml (current directory)
//   - .jira-harvest.yml (current directory)
//   - ~/.jira-harvest/config.yaml
//   - ~/.jira-harvest/config.yml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides. Returns an error if the specified config file cannot
// be loaded, but succeeds with defaults if no config file is found in
// standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".jira-harvest.yaml",
			".jira-harvest.yml",
			filepath.Join(os.Getenv("HOME"), ".jira-harvest", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".jira-harvest", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.State.Path = expandPath(cfg.State.Path)
	cfg.Output.Path = expandPath(cfg.Output.Path)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("JIRA_HARVEST_ENDPOINT"); endpoint != "" {
		cfg.Jira.Endpoint = endpoint
	}
	if projects := os.Getenv("JIRA_HARVEST_PROJECTS"); projects != "" {
		cfg.Scrape.Projects = splitProjects(projects)
	}
	if pageSize := os.Getenv("JIRA_HARVEST_PAGE_SIZE"); pageSize != "" {
		if size, err := strconv.Atoi(pageSize); err == nil && size > 0 {
			cfg.Scrape.PageSize = size
		}
	}
	if statePath := os.Getenv("JIRA_HARVEST_STATE_PATH"); statePath != "" {
		cfg.State.Path = statePath
	}
	if backend := os.Getenv("JIRA_HARVEST_STATE_BACKEND"); backend != "" {
		cfg.State.Backend = backend
	}
	if outputPath := os.Getenv("JIRA_HARVEST_OUTPUT"); outputPath != "" {
		cfg.Output.Path = outputPath
	}
	if level := os.Getenv("JIRA_HARVEST_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
}

// splitProjects parses a comma-separated project list, dropping empties.
func splitProjects(s string) []string {
	var projects []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			projects = append(projects, p)
		}
	}
	return projects
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}
