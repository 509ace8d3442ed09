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


package conformit

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/poiesic/conformit/batch"
	"github.com/poiesic/conformit/config"
	"github.com/poiesic/conformit/search"
	"github.com/poiesic/conformit/server"
	"github.com/poiesic/conformit/storage"
	"github.com/poiesic/conformit/storage/badger"
	"github.com/poiesic/conformit/templates"
	"github.com/poiesic/conformit/terminology"
	"github.com/poiesic/conformit/terminology/snowstorm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Service wires the template store, the terminology client and the searcher
// described by a config.Config.
type Service struct {
	cfg       *config.Config
	backend   *badger.Backend
	repo      storage.TemplateRepository
	templates *templates.Service
	client    terminology.Client
	registry  *prometheus.Registry
	monitor   *search.MetricsMonitor
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	client terminology.Client
	logger *slog.Logger
}

// WithClient replaces the Snowstorm client built from the config.
func WithClient(client terminology.Client) ServiceOption {
	return func(o *serviceOptions) {
		o.client = client
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// Open validates cfg, opens the template database and imports cfg.TemplatesDir when set.
// Import failures of individual files are logged, not returned.
func Open(ctx context.Context, cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(cfg.DBPath, cfg.InMemory)
	if err != nil {
		return nil, err
	}

	repo, err := badger.NewTemplateRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	svc, err := templates.NewService(repo, templates.WithLogger(options.logger))
	if err != nil {
		repo.Close()
		backend.Close()
		return nil, err
	}

	client := options.client
	if client == nil {
		client, err = snowstorm.NewClient(cfg.TerminologyURL,
			snowstorm.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
			snowstorm.WithRateLimit(cfg.RequestsPerSecond),
			snowstorm.WithPageSize(cfg.PageSize),
			snowstorm.WithFetchBatchSize(cfg.FetchBatchSize),
			snowstorm.WithRetry(cfg.RetryAttempts, cfg.RetryDelay),
			snowstorm.WithLogger(options.logger),
		)
		if err != nil {
			repo.Close()
			backend.Close()
			return nil, err
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s := &Service{
		cfg:       cfg,
		backend:   backend,
		repo:      repo,
		templates: svc,
		client:    client,
		registry:  registry,
		monitor:   search.NewMetricsMonitor(registry),
		logger:    options.logger,
	}

	if cfg.TemplatesDir != "" {
		if _, err := svc.Import(ctx, cfg.TemplatesDir); err != nil {
			s.logger.Warn("some templates failed to import", "dir", cfg.TemplatesDir, "err", err)
		}
	}
	return s, nil
}

// Close closes the template database.
func (s *Service) Close() error {
	if err := s.repo.Close(); err != nil {
		s.logger.Error("error closing template repository", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Config returns the validated configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Templates returns the template service.
func (s *Service) Templates() *templates.Service {
	return s.templates
}

// Client returns the terminology client.
func (s *Service) Client() terminology.Client {
	return s.client
}

// Gatherer returns the registry holding the service's metrics.
func (s *Service) Gatherer() prometheus.Gatherer {
	return s.registry
}

// NewSearcher creates a searcher configured from the config and reporting to
// the service's metrics. opts are applied last.
func (s *Service) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	base := []search.Option{
		search.WithLogger(s.logger),
		search.WithMaxResults(s.cfg.MaxResults),
		search.WithIsAType(s.cfg.IsAType),
		search.WithMonitor(s.monitor),
	}
	return search.NewSearcher(s.templates, s.client, append(base, opts...)...)
}

// NewBatchRunner creates a batch runner over a new searcher. Release the runner when done.
func (s *Service) NewBatchRunner(opts ...batch.Option) (*batch.Runner, error) {
	searcher, err := s.NewSearcher()
	if err != nil {
		return nil, err
	}
	base := []batch.Option{batch.WithLogger(s.logger)}
	if s.cfg.PoolSize > 0 {
		base = append(base, batch.WithPoolSize(s.cfg.PoolSize))
	}
	return batch.NewRunner(searcher, append(base, opts...)...)
}

// NewServer creates the HTTP API over the template service and a new searcher.
func (s *Service) NewServer(opts ...server.Option) (*server.Server, error) {
	searcher, err := s.NewSearcher()
	if err != nil {
		return nil, err
	}
	base := []server.Option{server.WithLogger(s.logger), server.WithGatherer(s.registry)}
	return server.NewServer(s.templates, searcher, append(base, opts...)...)
}

// WatchTemplates re-imports the configured templates directory on change
// until ctx is cancelled. Close the returned watcher when done.
func (s *Service) WatchTemplates(ctx context.Context, opts ...templates.WatcherOption) (*templates.Watcher, error) {
	w, err := templates.NewWatcher(s.templates, s.cfg.TemplatesDir, opts...)
	if err != nil {
		return nil, err
	}
	go w.Run(ctx)
	return w, nil
}
