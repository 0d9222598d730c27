package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFromEnvironment_OK(t *testing.T) {
	cfg, err := FromEnvironment(map[string]string{
		BackendStoreURIEnv:     "postgresql://db/mlflow",
		DefaultArtifactRootEnv: "s3://bucket/path",
	})
	require.NoError(t, err)
	require.Equal(t, "postgresql://db/mlflow", cfg.BackendStoreURI)
	require.Equal(t, "s3://bucket/path", cfg.DefaultArtifactRoot)
	require.Equal(t, "0.0.0.0", cfg.Host)
	require.Equal(t, 5000, cfg.Port)
	require.Equal(t, 1, cfg.Workers)
}

func TestFromEnvironment_HostPortNotConfigurable(t *testing.T) {
	cfg, err := FromEnvironment(map[string]string{
		BackendStoreURIEnv:     "sqlite:///tmp/mlflow.db",
		DefaultArtifactRootEnv: "/tmp/artifacts",
		"Host":                 "127.0.0.1",
		"Port":                 "8080",
		"Workers":              "4",
	})
	require.NoError(t, err)
	require.Equal(t, DefaultHost, cfg.Host)
	require.Equal(t, DefaultPort, cfg.Port)
	require.Equal(t, DefaultWorkers, cfg.Workers)
}

func TestFromEnvironment_Missing(t *testing.T) {
	cases := []struct {
		name    string
		environ map[string]string
		want    string
	}{
		{
			name:    "both missing reports backend store first",
			environ: map[string]string{},
			want:    BackendStoreURIEnv,
		},
		{
			name:    "backend store missing",
			environ: map[string]string{DefaultArtifactRootEnv: "/a"},
			want:    BackendStoreURIEnv,
		},
		{
			name:    "backend store empty",
			environ: map[string]string{BackendStoreURIEnv: "", DefaultArtifactRootEnv: "/a"},
			want:    BackendStoreURIEnv,
		},
		{
			name:    "artifact root missing",
			environ: map[string]string{BackendStoreURIEnv: "sqlite:///x.db"},
			want:    DefaultArtifactRootEnv,
		},
		{
			name:    "artifact root empty",
			environ: map[string]string{BackendStoreURIEnv: "sqlite:///x.db", DefaultArtifactRootEnv: ""},
			want:    DefaultArtifactRootEnv,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := FromEnvironment(tc.environ)
			require.Nil(t, cfg)

			var missing *MissingVariableError
			require.True(t, errors.As(err, &missing))
			require.Equal(t, tc.want, missing.Name)
			require.Equal(t, "environment variable "+tc.want+" cannot be found", err.Error())
		})
	}
}

func TestLoadEnvironment(t *testing.T) {
	e, err := LoadEnvironment(map[string]string{
		SentryDSNEnv:    "https://key@sentry.example/1",
		SettingsPathEnv: "/etc/mlflow/bootstrap.yaml",
	})
	require.NoError(t, err)
	require.Equal(t, "https://key@sentry.example/1", e.SentryDSN)
	require.Equal(t, "/etc/mlflow/bootstrap.yaml", e.SettingsPath)

	e, err = LoadEnvironment(map[string]string{})
	require.NoError(t, err)
	require.Empty(t, e.SentryDSN)
	require.Empty(t, e.SettingsPath)
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bootstrap.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
server:
  executable: "/opt/mlflow/bin/mlflow"
  static_prefix: "/mlflow"
  gunicorn_opts: "--timeout 120"
  expose_prometheus: "/tmp/metrics"
  app_name: "basic-auth"
  shutdown_grace_seconds: 30
store:
  connect_timeout_seconds: 5
`), 0o600))

	s, err := LoadSettings(p)
	require.NoError(t, err)
	require.Equal(t, "/opt/mlflow/bin/mlflow", s.Server.Executable)
	require.Equal(t, "/mlflow", s.Server.StaticPrefix)
	require.Equal(t, "--timeout 120", s.Server.GunicornOpts)
	require.Equal(t, "/tmp/metrics", s.Server.ExposePrometheus)
	require.Equal(t, "basic-auth", s.Server.AppName)
	require.Equal(t, 30, s.Server.ShutdownGraceSeconds)
	require.Equal(t, 5, s.Store.ConnectTimeoutSeconds)
}

func TestLoadSettings_EmptyPath(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)
	require.Equal(t, &Settings{}, s)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "failed to read config file")
	require.ErrorIs(t, err, fs.ErrNotExist)

	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("server: [unterminated"), 0o600))
	_, err = LoadSettings(p)
	require.ErrorContains(t, err, "failed to unmarshal YAML")
}
