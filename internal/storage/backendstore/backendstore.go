package backendstore

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultConnectTimeout = 10 * time.Second

var schemeRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9+.\-]*):`)

// UnsupportedSchemeError is returned for a URI no initializer knows.
type UnsupportedSchemeError struct {
	Kind   string
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported %s scheme %q", e.Kind, e.Scheme)
}

// Initializer prepares the backend store and the artifact root before the
// tracking server starts. Connections it opens are closed before it returns.
type Initializer struct {
	log            *logrus.Logger
	connectTimeout time.Duration
}

func New(log *logrus.Logger) *Initializer {
	return &Initializer{log: log, connectTimeout: defaultConnectTimeout}
}

func (i *Initializer) WithConnectTimeout(d time.Duration) *Initializer {
	if d > 0 {
		i.connectTimeout = d
	}
	return i
}

func (i *Initializer) InitializeBackendStores(ctx context.Context, backendStoreURI, defaultArtifactRoot string) error {
	if err := i.initBackendStore(ctx, backendStoreURI); err != nil {
		return err
	}
	return i.initArtifactRoot(defaultArtifactRoot)
}

func (i *Initializer) initBackendStore(ctx context.Context, raw string) error {
	scheme := storeScheme(raw)

	ctx, cancel := context.WithTimeout(ctx, i.connectTimeout)
	defer cancel()

	switch scheme {
	case "postgresql", "postgres":
		return i.initPostgres(ctx, raw)
	case "mysql":
		return i.initMySQL(ctx, raw)
	case "sqlite":
		return i.initSQLite(ctx, raw)
	case "", "file":
		return i.initFileStore(raw)
	default:
		return &UnsupportedSchemeError{Kind: "backend store", Scheme: scheme}
	}
}

// storeScheme returns the dialect of a SQLAlchemy style URI,
// e.g. "postgresql" for "postgresql+psycopg2://...".
func storeScheme(raw string) string {
	dialect, _, _ := strings.Cut(uriScheme(raw), "+")
	return dialect
}

// uriScheme returns the lowercased scheme of raw, or "" when raw is a plain
// filesystem path. Plain paths are never URL-decoded, so "%" stays literal.
// A single letter before ":" is a Windows drive, not a scheme.
func uriScheme(raw string) string {
	m := schemeRe.FindStringSubmatch(raw)
	if m == nil || len(m[1]) == 1 {
		return ""
	}
	return strings.ToLower(m[1])
}

// withScheme swaps the (possibly "+driver") scheme of raw for scheme.
func withScheme(raw, scheme string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parse backend store uri")
	}
	u.Scheme = scheme
	return u, nil
}

// redact hides the password so URIs can be logged.
func redact(u *url.URL) string {
	return u.Redacted()
}
