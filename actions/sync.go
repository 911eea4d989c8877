package actions

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/address"
	"github.com/relloyd/addrsync/components"
	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms"
	"github.com/relloyd/addrsync/rdbms/shared"
	"github.com/relloyd/addrsync/stats"
	"github.com/rs/xid"
)

// openDbConnection is swapped out by tests.
var openDbConnection = rdbms.OpenDbConnection

type AddressSyncConfig struct {
	Log                *logger.LoggerImpl
	SourceConnection   *shared.ConnectionDetails // Oracle
	TargetConnection   *shared.ConnectionDetails // PostgreSQL
	TargetSchemaTable  rdbms.SchemaTable         // [<schema>.]<table>
	CommitBatchSize    int
	OracleDriver       string    // see rdbms.ConnectionOptions
	FailOnExtractError bool      // abort instead of loading nothing when the source query fails
	DryRun             bool      // print the DDL and source query then return without connecting
	StatsDumpFrequency int       // seconds between progress logs; 0 disables them
	Out                io.Writer // dry run output, defaults to stdout
}

// AddressSyncResult describes a completed run.
type AddressSyncResult struct {
	RunId     string
	Extracted int
	components.LoadResult
}

// RunAddressSync copies address records from the source Oracle database into the target PostgreSQL table.
// The target table is created if it does not exist. Both connections are closed before returning.
func RunAddressSync(ctx context.Context, cfg *AddressSyncConfig) (res AddressSyncResult, err error) {
	if cfg.Log == nil {
		return res, errors.New("missing logger")
	}
	if cfg.CommitBatchSize <= 0 {
		return res, fmt.Errorf("commit-batch-size must be greater than 0, got %v", cfg.CommitBatchSize)
	}
	if !cfg.TargetSchemaTable.Valid() {
		return res, fmt.Errorf("invalid target table %q, expected [<schema>.]<table>", cfg.TargetSchemaTable.String())
	}
	ddl := address.DDL(cfg.TargetSchemaTable.String())
	if cfg.DryRun {
		_, err = fmt.Fprintf(stdout(cfg.Out), "%v;\n\n%v\n", ddl, address.SourceQuery)
		return
	}
	if cfg.SourceConnection == nil || cfg.TargetConnection == nil {
		return res, errors.New("source and target connections are required")
	}
	res.RunId = xid.New().String()
	log := cfg.Log.WithField("run", res.RunId)
	start := time.Now()
	log.Info("Address sync started.")
	defer func() {
		if err != nil {
			log.Error("Address sync failed: ", err)
		}
		log.Info("Address sync finished in ", time.Since(start).Round(time.Millisecond), ".")
	}()
	// Connect.
	opts := rdbms.ConnectionOptions{OracleDriver: cfg.OracleDriver}
	src, err := openDbConnection(ctx, log, *cfg.SourceConnection, opts)
	if err != nil {
		return res, errors.Wrapf(err, "unable to open source connection %q", cfg.SourceConnection.LogicalName)
	}
	tgt, err := openDbConnection(ctx, log, *cfg.TargetConnection, opts)
	if err != nil {
		src.Close()
		log.Info("source connection closed")
		return res, errors.Wrapf(err, "unable to open target connection %q", cfg.TargetConnection.LogicalName)
	}
	defer func() {
		src.Close()
		tgt.Close()
		log.Info("connections closed")
	}()
	// Stats.
	statsMgr := stats.NewStatsManager(log, stats.SetStatsDumpFrequency(cfg.StatsDumpFrequency))
	extractWatcher := statsMgr.AddStepWatcher(constants.StepNameExtract)
	loadWatcher := statsMgr.AddStepWatcher(constants.StepNameLoad)
	statsMgr.StartDumping()
	defer statsMgr.StopDumping()
	// Ensure the target table exists.
	if err = components.EnsureTable(ctx, &components.TableDdlConfig{
		Log:         log,
		Name:        "Schema ensurer",
		OutputDb:    tgt,
		SchemaTable: cfg.TargetSchemaTable.String(),
		DdlText:     ddl,
	}); err != nil {
		return
	}
	// Extract.
	var rows [][]string
	rows, err = components.NewTableInput(&components.TableInputConfig{
		Log:             log,
		Name:            "Extractor",
		Db:              src,
		Sqltext:         address.SourceQuery,
		ExpectedColumns: address.NumSourceColumns,
		Normalize:       address.Normalize,
		FailOnError:     cfg.FailOnExtractError,
		StepWatcher:     extractWatcher,
	}).Extract(ctx)
	if err != nil {
		return
	}
	res.Extracted = len(rows)
	var records []address.Record
	if records, err = address.NewRecordsFromRows(rows); err != nil {
		return
	}
	upserts := make([]components.UpsertRecord, len(records))
	for idx := range records {
		upserts[idx] = records[idx]
	}
	// Load.
	res.LoadResult, err = components.NewTableUpsert(&components.TableUpsertConfig{
		Log:             log,
		Name:            "Loader",
		OutputDb:        tgt,
		OutputSchema:    cfg.TargetSchemaTable.GetSchema(),
		OutputTable:     cfg.TargetSchemaTable.GetTable(),
		KeyCols:         address.KeyCols(),
		WriteCols:       address.SourcedCols(),
		TrackedCols:     address.TrackedCols(),
		CommitBatchSize: cfg.CommitBatchSize,
		StepWatcher:     loadWatcher,
	}).Load(ctx, upserts)
	return
}
