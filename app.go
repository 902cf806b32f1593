package main

import (
	"context"
	"fmt"
	"time"

	"api-testcase-generator/internal/config"
	"api-testcase-generator/internal/llm"
	"api-testcase-generator/internal/logger"
	"api-testcase-generator/internal/plan"
	"api-testcase-generator/internal/pytestgen"
	"api-testcase-generator/internal/reporter"
	"api-testcase-generator/internal/service"
	"api-testcase-generator/internal/store"

	"github.com/rs/zerolog/log"
)

// app holds the collaborators built from config/config.yaml for one invocation.
type app struct {
	cfg      *config.Config
	svc      *service.Service
	llmLog   *logger.Logger
	exporter *store.Exporter
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cfg: cfg, llmLog: logger.Nop()}

	var model llm.TextGenerator
	if cfg.LLM.APIKey != "" {
		if l, err := logger.NewLogger(cfg.Paths.LogDir); err != nil {
			log.Warn().Err(err).Msg("LLM interactions will not be logged")
		} else {
			a.llmLog = l
		}
		model, err = llm.NewClient(&cfg.LLM, a.llmLog)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
	} else {
		log.Debug().Str("provider", cfg.LLM.Provider).Msg("No LLM API key, test plan generation and AI-enhanced tests are disabled")
	}

	opts := service.Options{
		TestConfigPath: cfg.Paths.TestConfig,
		PlanPath:       cfg.Paths.TestPlan,
		SpecFile:       cfg.Paths.SpecFile,
		Reporter: reporter.NewReporter(reporter.Config{
			Formats:   cfg.Reporting.Format,
			OutputDir: cfg.Reporting.OutputDir,
		}),
		Pytest: pytestgen.NewGenerator(model),
	}

	if model != nil {
		fetcher := plan.NewFetcher(plan.FetchConfig{
			MaxURLs:     cfg.Fetch.MaxURLs,
			Concurrency: cfg.Fetch.Concurrency,
			Timeout:     time.Duration(cfg.Fetch.Timeout) * time.Second,
			Retry: plan.RetryConfig{
				Attempts: cfg.Fetch.Retry.Attempts,
				Delay:    time.Duration(cfg.Fetch.Retry.Delay) * time.Second,
			},
		})
		opts.Planner = plan.NewGenerator(model, fetcher, cfg.Paths.TestPlan)
	}

	if cfg.Export.Enabled {
		db := cfg.Export.DB
		exporter, err := store.Open(ctx, store.Config{
			Type:     db.Type,
			Host:     db.Host,
			Port:     db.Port,
			Database: db.Name,
			User:     db.User,
			Password: db.Password,
			SSLMode:  db.SSLMode,
			Table:    db.Table,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		if err := exporter.EnsureTable(ctx); err != nil {
			exporter.Close()
			a.Close()
			return nil, err
		}
		a.exporter = exporter
		opts.Exporter = exporter
	}

	a.svc = service.New(opts)
	return a, nil
}

// Close releases the database connection and the LLM log file.
func (a *app) Close() {
	if a.exporter != nil {
		if err := a.exporter.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database connection")
		}
	}
	if err := a.llmLog.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close LLM log")
	}
}
