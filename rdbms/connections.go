package rdbms

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms/shared"
)

// ErrDriverNotAvailable is returned when the driver required by a connection is not compiled in.
var ErrDriverNotAvailable = errors.New("database driver not available")

// sqlOpen is swapped out by tests.
var sqlOpen = sql.Open

// sqlDrivers lists the drivers registered with database/sql.
var sqlDrivers = sql.Drivers

// ConnectionOptions tune how OpenDbConnection reaches the database.
type ConnectionOptions struct {
	OracleDriver string // constants.DriverOracleGoOra (default) or constants.DriverOracleOci8
}

// OpenDbConnection opens and pings a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(ctx context.Context, log logger.Logger, c shared.ConnectionDetails, opts ConnectionOptions) (db shared.Connector, err error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	switch c.Type {
	case constants.ConnectionTypeOracle:
		driver := opts.OracleDriver
		if driver == "" {
			driver = constants.DriverOracleGoOra
		}
		db, err = newOracleConnection(ctx, log, shared.GetDsnConnectionDetails(&c), driver)
	case constants.ConnectionTypePostgres:
		db, err = newPostgresConnection(ctx, log, shared.GetDsnConnectionDetails(&c))
	default:
		err = fmt.Errorf("unsupported database type, %q", c.Type)
	}
	return
}

// DriverAvailable returns true if the named driver can be used to open connections.
func DriverAvailable(driver string) bool {
	if driver == constants.DriverOracleOci8 {
		return oci8Open != nil
	}
	for _, d := range sqlDrivers() {
		if d == driver {
			return true
		}
	}
	return false
}

// openSqlDb opens a database/sql handle using driver and pings it.
func openSqlDb(ctx context.Context, driver string, dsn string) (*sql.DB, error) {
	if !DriverAvailable(driver) {
		return nil, errors.Wrapf(ErrDriverNotAvailable, "driver %q", driver)
	}
	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, err
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
