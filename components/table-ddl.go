package components

import (
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms/shared"
)

type TableDdlConfig struct {
	Log         logger.Logger
	Name        string
	OutputDb    shared.Connector
	SchemaTable string // used for logging
	DdlText     string // idempotent DDL e.g. CREATE TABLE IF NOT EXISTS
}

// EnsureTable executes cfg.DdlText in its own transaction and commits.
func EnsureTable(ctx context.Context, cfg *TableDdlConfig) error {
	cfg.Log.Debug(cfg.Name, " executing DDL: ", cfg.DdlText)
	tx, err := cfg.OutputDb.BeginTx(ctx)
	if err != nil {
		return errors.Wrapf(err, "%v unable to begin transaction", cfg.Name)
	}
	if _, err = tx.ExecContext(ctx, cfg.DdlText); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "%v unable to create table %v", cfg.Name, cfg.SchemaTable)
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrapf(err, "%v unable to commit DDL for table %v", cfg.Name, cfg.SchemaTable)
	}
	cfg.Log.Info("Table ", cfg.SchemaTable, " verified/created successfully.")
	return nil
}
