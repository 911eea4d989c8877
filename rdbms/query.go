package rdbms

import (
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms/shared"
)

// SqlQuery executes sqltext on db and hands the column names, then each row, to i.
// Values are scanned into interface{} so the driver decides the Go type.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler) error {
	rows, err := db.QueryContext(ctx, sqltext)
	if err != nil {
		return errors.Wrapf(err, "error during database query using SQL: '%v'", sqltext)
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return errors.Wrap(err, "error fetching column names")
	}
	log.Debug("query columns = ", cols)
	// Scan the values dynamically.
	numCols := len(cols)
	scanPtrs := make([]interface{}, numCols)
	scanVals := make([]interface{}, numCols)
	for idx := 0; idx < numCols; idx++ {
		scanPtrs[idx] = &scanVals[idx]
	}
	header := make([]interface{}, numCols)
	for idx := range cols {
		header[idx] = cols[idx]
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	for rows.Next() {
		if err = ctx.Err(); err != nil { // quit if asked to...
			return err
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return errors.Wrap(err, "error scanning row")
		}
		row := make([]interface{}, numCols)
		copy(row, scanVals)
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	if err = rows.Err(); err != nil {
		return errors.Wrap(err, "error fetching rows")
	}
	return nil
}
