package rdbms

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms/shared"
	relloyd "github.com/relloyd/go-sql/database/sql"
	go_ora "github.com/sijms/go-ora/v2"
)

// oci8Open is set when the binary is built with the oci8 tag.
var oci8Open func(ctx context.Context, dsn string) (*relloyd.DB, error)

func newOracleConnection(ctx context.Context, log logger.Logger, d *shared.DsnConnectionDetails, driver string) (shared.Connector, error) {
	oc, err := shared.OracleDsnToOracleConnectionDetails(d.Dsn)
	if err != nil {
		return nil, err
	}
	log.Info("Opening database connection: ", oc)
	conn := &shared.HpConnection{
		Dml:    shared.NewDmlGenerator(shared.BindStyleColon),
		DbType: constants.ConnectionTypeOracle,
	}
	switch driver {
	case constants.DriverOracleOci8:
		if oci8Open == nil {
			return nil, errors.Wrapf(ErrDriverNotAvailable, "driver %q (rebuild with -tags oci8)", driver)
		}
		dsn, err := shared.OracleConnectionDetailsToDSN(oc)
		if err != nil {
			return nil, err
		}
		if conn.DbRelloyd, err = oci8Open(ctx, dsn); err != nil {
			return nil, errors.Wrapf(err, "unable to connect to database %v", oc)
		}
	case constants.DriverOracleGoOra:
		url, err := goOraUrl(oc)
		if err != nil {
			return nil, err
		}
		if conn.DbSql, err = openSqlDb(ctx, driver, url); err != nil {
			return nil, errors.Wrapf(err, "unable to connect to database %v", oc)
		}
	default:
		return nil, errors.Wrapf(ErrDriverNotAvailable, "unknown Oracle driver %q", driver)
	}
	log.Info("Successful connection to: ", oc)
	return conn, nil
}

// goOraUrl converts our Oracle connection details into a go-ora URL.
// Params are passed through as go-ora URL options.
func goOraUrl(oc *shared.OracleConnectionDetails) (string, error) {
	port, err := strconv.Atoi(oc.DBPort)
	if err != nil {
		return "", errors.Wrapf(err, "invalid Oracle port %q", oc.DBPort)
	}
	options := make(map[string]string)
	for k, v := range oc.GetParams() {
		options[strings.ToUpper(k)] = v
	}
	return go_ora.BuildUrl(oc.DBHost, port, oc.DBName, oc.DBUser, oc.DBPass, options), nil
}
