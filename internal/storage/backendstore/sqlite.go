package backendstore

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const sqliteMemory = ":memory:"

func (i *Initializer) initSQLite(ctx context.Context, raw string) error {
	path := sqlitePath(raw)
	if path != sqliteMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return errors.Wrap(err, "create sqlite dir")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrap(err, "open sqlite")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping sqlite")
	}

	var version string
	if err := db.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&version); err != nil {
		return errors.Wrap(err, "query sqlite version")
	}

	i.log.WithField("sqlite_version", version).Infof("backend store sqlite database %s is ready", path)
	return nil
}

// sqlitePath follows SQLAlchemy: sqlite:///rel.db is relative,
// sqlite:////abs.db is absolute, sqlite:// is in-memory.
func sqlitePath(raw string) string {
	_, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return sqliteMemory
	}
	rest, _, _ = strings.Cut(rest, "?")
	rest = strings.TrimPrefix(rest, "/")
	if rest == "" {
		return sqliteMemory
	}
	return rest
}
