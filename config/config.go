// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config holds the settings of a conformit service.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/conformit/core"
	"gopkg.in/yaml.v3"
)

// Config holds configuration for a conformit service.
type Config struct {
	// TerminologyURL is the base URL of the terminology server REST API.
	// Example: "http://localhost:8080"
	TerminologyURL string `yaml:"terminology_url"`

	// MaxResults caps the number of concept ids a single query may return.
	// Default: 200000
	MaxResults int `yaml:"max_results"`

	// PageSize is the number of concept ids requested per query page.
	// Default: 10000
	PageSize int `yaml:"page_size"`

	// FetchBatchSize is the number of concepts fetched per bulk request.
	// Default: 500
	FetchBatchSize int `yaml:"fetch_batch_size"`

	// RequestsPerSecond limits requests to the terminology server. Zero disables the limit.
	// Default: 10
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Timeout bounds each terminology server request.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// RetryAttempts is the number of attempts made for a failing request.
	// Default: 3
	RetryAttempts int `yaml:"retry_attempts"`

	// RetryDelay is the delay before the first retry; later retries double it.
	// Default: 500ms
	RetryDelay time.Duration `yaml:"retry_delay"`

	// DBPath is the directory of the template database.
	// Default: "./conformit.db"
	DBPath string `yaml:"db_path"`

	// InMemory keeps the template database in memory.
	InMemory bool `yaml:"in_memory"`

	// TemplatesDir is a directory of JSON template files imported at startup.
	TemplatesDir string `yaml:"templates_dir"`

	// WatchTemplates re-imports TemplatesDir whenever it changes.
	WatchTemplates bool `yaml:"watch_templates"`

	// ListenAddr is the address of the HTTP API.
	// Default: ":8090"
	ListenAddr string `yaml:"listen_addr"`

	// IsAType is the IS-A relationship type id.
	// Default: "116680003"
	IsAType string `yaml:"is_a_type"`

	// PoolSize is the number of concurrent searches of a batch. Zero picks a default.
	PoolSize int `yaml:"pool_size"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithTerminologyURL sets the terminology server base URL.
func WithTerminologyURL(url string) ConfigOption {
	return func(c *Config) {
		c.TerminologyURL = url
	}
}

// WithMaxResults sets the query result cap.
func WithMaxResults(n int) ConfigOption {
	return func(c *Config) {
		c.MaxResults = n
	}
}

// WithRateLimit sets the requests per second sent to the terminology server.
func WithRateLimit(rps float64) ConfigOption {
	return func(c *Config) {
		c.RequestsPerSecond = rps
	}
}

// WithRetry sets the attempts and initial delay for failing requests.
func WithRetry(attempts int, delay time.Duration) ConfigOption {
	return func(c *Config) {
		c.RetryAttempts = attempts
		c.RetryDelay = delay
	}
}

// WithDBPath sets the template database directory.
func WithDBPath(path string) ConfigOption {
	return func(c *Config) {
		c.DBPath = path
	}
}

// WithInMemory keeps the template database in memory.
func WithInMemory(inMemory bool) ConfigOption {
	return func(c *Config) {
		c.InMemory = inMemory
	}
}

// WithTemplatesDir sets the template import directory.
func WithTemplatesDir(dir string) ConfigOption {
	return func(c *Config) {
		c.TemplatesDir = dir
	}
}

// WithListenAddr sets the HTTP API address.
func WithListenAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.ListenAddr = addr
	}
}

// WithPoolSize sets the batch concurrency.
func WithPoolSize(n int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = n
	}
}

// DefaultConfig returns a Config for a terminology server on localhost.
func DefaultConfig() *Config {
	return &Config{
		TerminologyURL:    "http://localhost:8080",
		MaxResults:        200000,
		PageSize:          10000,
		FetchBatchSize:    500,
		RequestsPerSecond: 10,
		Timeout:           60 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        500 * time.Millisecond,
		DBPath:            "./conformit.db",
		ListenAddr:        ":8090",
		IsAType:           core.IsA,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//		WithTerminologyURL("https://snowstorm.example.org/snowstorm/snomed-ct"),
//		WithRateLimit(5),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// LoadFromFile reads a YAML configuration file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Normalize ensures the configuration is in a canonical form.
func (c *Config) Normalize() {
	c.TerminologyURL = strings.TrimRight(strings.TrimSpace(c.TerminologyURL), "/")
	if c.IsAType == "" {
		c.IsAType = core.IsA
	}
	if c.PoolSize < 0 {
		c.PoolSize = 0
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.TerminologyURL == "" {
		return errors.New("config: TerminologyURL is required")
	}
	if c.MaxResults < 1 {
		return errors.New("config: MaxResults must be positive")
	}
	if c.PageSize < 1 {
		return errors.New("config: PageSize must be positive")
	}
	if c.FetchBatchSize < 1 {
		return errors.New("config: FetchBatchSize must be positive")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("config: RequestsPerSecond cannot be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("config: Timeout must be positive")
	}
	if c.RetryAttempts < 1 {
		return errors.New("config: RetryAttempts must be at least 1")
	}
	if c.RetryDelay < 0 {
		return errors.New("config: RetryDelay cannot be negative")
	}
	if !c.InMemory && c.DBPath == "" {
		return errors.New("config: DBPath is required unless InMemory is set")
	}
	if c.WatchTemplates && c.TemplatesDir == "" {
		return errors.New("config: TemplatesDir is required when WatchTemplates is set")
	}
	return nil
}
