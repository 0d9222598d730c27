package main

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/BearBump/mlflow-server/config"
	"github.com/BearBump/mlflow-server/internal/errtrack"
	"github.com/BearBump/mlflow-server/internal/mlflowserver"
	"github.com/BearBump/mlflow-server/internal/storage/backendstore"
)

type bootstrapFactories struct {
	newTracker func(log *logrus.Logger, dsn string) *errtrack.Tracker
	newStores  func(log *logrus.Logger, settings *config.Settings) storeInitializer
	newServer  func(log *logrus.Logger, settings *config.Settings) serverRunner
}

func defaultBootstrapFactories() bootstrapFactories {
	return bootstrapFactories{
		newTracker: errtrack.Setup,
		newStores: func(log *logrus.Logger, settings *config.Settings) storeInitializer {
			return backendstore.New(log).
				WithConnectTimeout(secondsOrZero(settings.Store.ConnectTimeoutSeconds))
		},
		newServer: func(log *logrus.Logger, settings *config.Settings) serverRunner {
			// executable == "" falls back to "mlflow" from PATH
			return mlflowserver.New(log, settings.Server.Executable).
				WithShutdownGrace(secondsOrZero(settings.Server.ShutdownGraceSeconds))
		},
	}
}

// secondsOrZero keeps unset settings at zero so the With* setters keep
// their defaults.
func secondsOrZero(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
