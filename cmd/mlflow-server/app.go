package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/BearBump/mlflow-server/config"
	"github.com/BearBump/mlflow-server/internal/mlflowserver"
)

type storeInitializer interface {
	InitializeBackendStores(ctx context.Context, backendStoreURI, defaultArtifactRoot string) error
}

type serverRunner interface {
	RunServer(ctx context.Context, opts mlflowserver.Options) error
}

// runBootstrap loads config, initializes the backend store and blocks in
// the server run-loop. It returns the process exit code. Run-loop errors
// other than ShellCommandError are not handled and panic.
//
// environ == nil means the process environment.
func runBootstrap(ctx context.Context, log *logrus.Logger, environ map[string]string, f bootstrapFactories) int {
	env, err := config.LoadEnvironment(environ)
	if err != nil {
		log.Errorf("Error reading environment - %v", err)
		return 1
	}

	tracker := f.newTracker(log, env.SentryDSN)
	defer tracker.Flush()
	defer tracker.Recover()

	cfg, err := config.FromEnvironment(environ)
	if err != nil {
		log.Error(err.Error())
		return 1
	}

	settings, err := config.LoadSettings(env.SettingsPath)
	if err != nil {
		log.Errorf("Error loading bootstrap settings %s - %v", env.SettingsPath, err)
		return 1
	}

	stores := f.newStores(log, settings)
	if err := stores.InitializeBackendStores(ctx, cfg.BackendStoreURI, cfg.DefaultArtifactRoot); err != nil {
		log.Errorf("Error initializing backend store - %v", err)
		return 1
	}

	server := f.newServer(log, settings)
	err = server.RunServer(ctx, mlflowserver.Options{
		BackendStoreURI:     cfg.BackendStoreURI,
		DefaultArtifactRoot: cfg.DefaultArtifactRoot,
		Host:                cfg.Host,
		Port:                cfg.Port,
		Workers:             cfg.Workers,
		StaticPrefix:        settings.Server.StaticPrefix,
		GunicornOpts:        settings.Server.GunicornOpts,
		ExposePrometheus:    settings.Server.ExposePrometheus,
		AppName:             settings.Server.AppName,
	})
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}

	var shellErr *mlflowserver.ShellCommandError
	if errors.As(err, &shellErr) {
		log.Errorf("Running the mlflow server failed — see logs above for details - %v", err)
		return 1
	}

	// Не обрабатываем: пусть процесс упадёт, перезапуском занимается супервизор.
	panic(err)
}
