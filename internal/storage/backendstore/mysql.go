package backendstore

import (
	"context"
	"database/sql"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const defaultMySQLPort = "3306"

func (i *Initializer) initMySQL(ctx context.Context, raw string) error {
	u, err := withScheme(raw, "mysql")
	if err != nil {
		return err
	}

	cfg := mysqlConfig(u)
	cfg.Timeout = i.connectTimeout

	conn, err := mysql.NewConnector(cfg)
	if err != nil {
		return errors.Wrap(err, "mysql connector")
	}
	db := sql.OpenDB(conn)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping mysql")
	}

	var version string
	if err := db.QueryRowContext(ctx, `SELECT VERSION()`).Scan(&version); err != nil {
		return errors.Wrap(err, "query mysql version")
	}

	i.log.WithField("server_version", version).Infof("backend store %s is reachable", redact(u))
	return nil
}

// mysqlConfig maps a SQLAlchemy mysql URI onto the driver config. Only
// unix_socket is honoured from the query; other options belong to the
// Python driver and are ignored.
func mysqlConfig(u *url.URL) *mysql.Config {
	cfg := mysql.NewConfig()
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")

	if sock := u.Query().Get("unix_socket"); sock != "" {
		cfg.Net = "unix"
		cfg.Addr = sock
		return cfg
	}

	cfg.Net = "tcp"
	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := u.Port()
	if port == "" {
		port = defaultMySQLPort
	}
	cfg.Addr = net.JoinHostPort(host, port)
	return cfg
}
