package mlflowserver

import (
	"net/url"
	"strconv"
)

// Options mirror the flags of "mlflow server". Host, Port and Workers are
// filled from config constants by the caller.
type Options struct {
	BackendStoreURI     string
	DefaultArtifactRoot string
	Host                string
	Port                int
	Workers             int

	StaticPrefix     string
	GunicornOpts     string
	ExposePrometheus string
	AppName          string
}

// Args returns the argument list passed to the mlflow executable.
func Args(o Options) []string {
	args := []string{
		"server",
		"--backend-store-uri", o.BackendStoreURI,
		"--default-artifact-root", o.DefaultArtifactRoot,
		"--host", o.Host,
		"--port", strconv.Itoa(o.Port),
		"--workers", strconv.Itoa(o.Workers),
	}
	if o.StaticPrefix != "" {
		args = append(args, "--static-prefix", o.StaticPrefix)
	}
	if o.GunicornOpts != "" {
		args = append(args, "--gunicorn-opts", o.GunicornOpts)
	}
	if o.ExposePrometheus != "" {
		args = append(args, "--expose-prometheus", o.ExposePrometheus)
	}
	if o.AppName != "" {
		args = append(args, "--app-name", o.AppName)
	}
	return args
}

// redactArgs hides credentials in URI valued flags.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i+1 < len(out); i++ {
		switch out[i] {
		case "--backend-store-uri", "--default-artifact-root":
			if u, err := url.Parse(out[i+1]); err == nil {
				out[i+1] = u.Redacted()
			}
		}
	}
	return out
}
