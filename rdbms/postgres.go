package rdbms

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms/shared"
)

func newPostgresConnection(ctx context.Context, log logger.Logger, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	u, err := d.Parse()
	if err != nil {
		return nil, err
	}
	if u.Driver != "postgres" { // dburl maps postgres:// and postgresql:// to this driver name
		return nil, errors.Errorf("expected a PostgreSQL DSN, got scheme %q", u.OriginalScheme)
	}
	log.Info("Opening database connection: ", d)
	conn := &shared.HpConnection{
		Dml:    shared.NewDmlGenerator(shared.BindStyleDollar),
		DbType: constants.ConnectionTypePostgres,
	}
	if conn.DbSql, err = openSqlDb(ctx, constants.DriverPostgresPgx, d.Dsn); err != nil {
		return nil, errors.Wrapf(err, "unable to connect to database %v", d)
	}
	log.Info("Successful connection to: ", d)
	return conn, nil
}

// SqlState returns the PostgreSQL error code wrapped in err, or "" if there isn't one.
func SqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
