package main

import (
	"context"
	"fmt"

	"vercheck/internal/config"
	"vercheck/internal/debug"
	appErrors "vercheck/internal/errors"
	"vercheck/internal/settings"
	"vercheck/internal/update"

	"go.uber.org/zap"
)

// services bundles what a command needs to talk to the update core.
type services struct {
	manager   *settings.Manager
	scheduler *update.Scheduler
	checker   *update.Checker
	running   update.Version
	// checkable is false for development builds.
	checkable bool
}

func openManager(ctx context.Context) (*settings.Manager, error) {
	backend, err := config.SettingsBackend()
	if err != nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "settings backend", err)
	}
	path, err := config.SettingsPath(backend)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "settings path", err)
	}

	log := debug.L().With(zap.String("component", "settings"), zap.String("backend", backend))
	store, err := settings.OpenStore(ctx, backend, path, settings.WithLogger(log))
	if err != nil {
		return nil, err
	}
	manager, err := settings.Open(ctx, store, settings.WithLogger(log))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load settings from %s: %w", path, err)
	}
	manager.OnChange(func(field string, s settings.Settings) {
		log.Info("setting changed",
			zap.String("field", field),
			zap.Bool("enabled", s.AutomaticCheckEnabled),
			zap.Time("last_check", s.LastSuccessfulCheck))
	})
	return manager, nil
}

func (e *env) openServices(ctx context.Context) (*services, error) {
	manager, err := openManager(ctx)
	if err != nil {
		return nil, err
	}

	running, ok := update.RunningVersion(Version)
	clientOpts := []update.ClientOption{update.WithTimeout(config.GetDuration(config.KeyRequestTimeout))}
	if e.httpClient != nil {
		clientOpts = append([]update.ClientOption{update.WithHTTPClient(e.httpClient)}, clientOpts...)
	}
	checker := update.NewChecker(
		config.GetString(config.KeyManifestURL),
		update.WithFetcher(update.NewManifestClient(clientOpts...)),
	)
	scheduler := update.NewScheduler(checker, running, manager,
		update.WithLogger(debug.L().With(zap.String("component", "update"))))

	return &services{
		manager:   manager,
		scheduler: scheduler,
		checker:   checker,
		running:   running,
		checkable: ok,
	}, nil
}

func (s *services) Close() {
	if err := s.manager.Close(); err != nil {
		debug.Logf("close settings: %v", err)
	}
}
