package backendstore

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

func (i *Initializer) initPostgres(ctx context.Context, raw string) error {
	u, err := withScheme(raw, "postgresql")
	if err != nil {
		return err
	}

	cfg, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return errors.Wrap(err, "parse pg config")
	}
	cfg.ConnConfig.ConnectTimeout = i.connectTimeout
	cfg.MaxConns = 1

	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "connect pg")
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping pg")
	}

	var version string
	if err := db.QueryRow(ctx, `SHOW server_version`).Scan(&version); err != nil {
		return errors.Wrap(err, "query pg server version")
	}

	i.log.WithField("server_version", version).Infof("backend store %s is reachable", redact(u))
	return nil
}
