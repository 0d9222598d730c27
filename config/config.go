package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v4"
)

const (
	BackendStoreURIEnv     = "MLFLOW_BACKEND_STORE_URI"
	DefaultArtifactRootEnv = "MLFLOW_DEFAULT_ARTIFACT_ROOT"
	SentryDSNEnv           = "SENTRY_DSN"
	SettingsPathEnv        = "MLFLOW_BOOTSTRAP_CONFIG"
)

// Сервер всегда слушает один и тот же адрес, из окружения это не настраивается.
const (
	DefaultHost    = "0.0.0.0"
	DefaultPort    = 5000
	DefaultWorkers = 1
)

// ServerConfig is rebuilt on every start and never persisted.
type ServerConfig struct {
	BackendStoreURI     string `env:"MLFLOW_BACKEND_STORE_URI,required,notEmpty"`
	DefaultArtifactRoot string `env:"MLFLOW_DEFAULT_ARTIFACT_ROOT,required,notEmpty"`

	Host    string
	Port    int
	Workers int
}

// Environment holds the optional variables read next to ServerConfig.
type Environment struct {
	SentryDSN    string `env:"SENTRY_DSN"`
	SettingsPath string `env:"MLFLOW_BOOTSTRAP_CONFIG"`
}

// MissingVariableError reports a required variable that is unset or empty.
type MissingVariableError struct {
	Name string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("environment variable %s cannot be found", e.Name)
}

// FromEnvironment reads ServerConfig from environ, or from the process
// environment when environ is nil. Only the first missing variable is
// reported, backend store URI before artifact root.
func FromEnvironment(environ map[string]string) (*ServerConfig, error) {
	cfg, err := env.ParseAsWithOptions[ServerConfig](env.Options{Environment: environ})
	if err != nil {
		return nil, firstMissing(err)
	}

	cfg.Host = DefaultHost
	cfg.Port = DefaultPort
	cfg.Workers = DefaultWorkers
	return &cfg, nil
}

func LoadEnvironment(environ map[string]string) (Environment, error) {
	out, err := env.ParseAsWithOptions[Environment](env.Options{Environment: environ})
	if err != nil {
		return Environment{}, errors.Wrap(err, "parse environment")
	}
	return out, nil
}

func firstMissing(err error) error {
	var agg env.AggregateError
	if !errors.As(err, &agg) {
		return errors.Wrap(err, "parse environment")
	}
	for _, e := range agg.Errors {
		var notSet env.EnvVarIsNotSetError
		if errors.As(e, &notSet) {
			return &MissingVariableError{Name: notSet.Key}
		}
		var empty env.EmptyEnvVarError
		if errors.As(e, &empty) {
			return &MissingVariableError{Name: empty.Key}
		}
	}
	return errors.Wrap(err, "parse environment")
}

type Settings struct {
	Server ServerSettings `yaml:"server"`
	Store  StoreSettings  `yaml:"store"`
}

type ServerSettings struct {
	Executable           string `yaml:"executable"`
	StaticPrefix         string `yaml:"static_prefix"`
	GunicornOpts         string `yaml:"gunicorn_opts"`
	ExposePrometheus     string `yaml:"expose_prometheus"`
	AppName              string `yaml:"app_name"`
	ShutdownGraceSeconds int    `yaml:"shutdown_grace_seconds"`
}

type StoreSettings struct {
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
}

// LoadSettings returns zero Settings for an empty filename; defaults are
// applied by the caller.
func LoadSettings(filename string) (*Settings, error) {
	if filename == "" {
		return &Settings{}, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var settings Settings
	err = yaml.Unmarshal(data, &settings)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal YAML")
	}

	return &settings, nil
}
