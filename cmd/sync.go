package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/actions"
	"github.com/relloyd/addrsync/config"
	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/helper"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms"
	"github.com/relloyd/addrsync/rdbms/shared"
	"github.com/spf13/cobra"
)

const (
	argsDefinitionTxt           = "[<source-connection> <target-connection>]"
	defaultConnectionNameSource = "source"
	defaultConnectionNameTarget = "target"
)

var (
	syncCfg          = actions.AddressSyncConfig{}
	syncSourceDsn    string
	syncTargetDsn    string
	syncTargetTable  string
	syncConnectNames []string
)

var syncCmd = &cobra.Command{
	Use:   "sync " + argsDefinitionTxt,
	Short: "Copy address records from Oracle into PostgreSQL",
	Long: `Synchronise person address records from an Oracle source into a PostgreSQL table.

- The target table is created if it does not exist.
- Every living person's address, landlines, mobile and e-mails are extracted in one query.
- New records are inserted, changed records are updated and unchanged records are skipped.
- A failing record is logged and skipped; the rest of its batch is retried in a new transaction.

Refer to saved connections by name, or supply --source-dsn and --target-dsn.`,
	Args: getConnectionsArgsFunc(&syncConnectNames),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runSync(cmd)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().SortFlags = false
	switches.addFlag(syncCmd, &syncSourceDsn, "source-dsn", "", false, "")
	switches.addFlag(syncCmd, &syncTargetDsn, "target-dsn", "", false, "")
	switches.addFlag(syncCmd, &syncTargetTable, "target-table", constants.TargetSchemaDefault+"."+constants.TargetTableDefault, false, "")
	switches.addFlag(syncCmd, &syncCfg.CommitBatchSize, "commit-batch-size", strconv.Itoa(constants.TableSyncBatchSizeDefault), false, "")
	switches.addFlag(syncCmd, &syncCfg.OracleDriver, "oracle-driver", constants.DriverOracleGoOra, false, "")
	switches.addFlag(syncCmd, &syncCfg.FailOnExtractError, "fail-on-extract-error", "", false, "")
	switches.addFlag(syncCmd, &syncCfg.DryRun, "dry-run", "", false, "")
	switches.addFlag(syncCmd, &syncCfg.StatsDumpFrequency, "stats", strconv.Itoa(constants.StatsDumpFrequencySeconds), false, "")
}

func runSync(cmd *cobra.Command) error {
	log, err := logger.New(logger.Options{
		Service:        constants.AppName,
		Level:          logLevel,
		PrintStackDump: stackDumpOnPanic,
		LogFile:        logFile,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Close()
	}()
	syncCfg.Log = log
	syncCfg.Out = cmd.OutOrStdout()
	syncCfg.TargetSchemaTable = rdbms.SchemaTable{SchemaTable: syncTargetTable}
	if !syncCfg.DryRun {
		syncCfg.SourceConnection, syncCfg.TargetConnection, err = getSyncConnections(config.Connections, syncConnectNames, syncSourceDsn, syncTargetDsn)
		if err != nil {
			return err
		}
	}
	// Cancel the run on SIGINT or SIGTERM so the current statement aborts and connections are closed.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	_, err = actions.RunAddressSync(ctx, &syncCfg)
	return err
}

// getSyncConnections loads the named connections, else builds connections from the DSNs.
// The source must be Oracle and the target must be PostgreSQL.
func getSyncConnections(loader actions.ConnectionLoader, names []string, srcDsn string, tgtDsn string) (src *shared.ConnectionDetails, tgt *shared.ConnectionDetails, err error) {
	if len(names) == 2 { // if we were given connection names...
		if src, err = loader.GetConnectionDetails(names[0]); err != nil {
			return nil, nil, err
		}
		if tgt, err = loader.GetConnectionDetails(names[1]); err != nil {
			return nil, nil, err
		}
	} else if srcDsn != "" && tgtDsn != "" { // else use the DSNs...
		src = &shared.ConnectionDetails{
			Type:        constants.ConnectionTypeOracle,
			LogicalName: defaultConnectionNameSource,
			Data:        shared.DsnConnectionDetails{Dsn: srcDsn}.GetMap(nil),
		}
		tgt = &shared.ConnectionDetails{
			Type:        constants.ConnectionTypePostgres,
			LogicalName: defaultConnectionNameTarget,
			Data:        shared.DsnConnectionDetails{Dsn: tgtDsn}.GetMap(nil),
		}
	} else {
		return nil, nil, fmt.Errorf("please supply %v or set --source-dsn and --target-dsn (or %v and %v)",
			argsDefinitionTxt, helper.FlagNameToEnvVar("source-dsn"), helper.FlagNameToEnvVar("target-dsn"))
	}
	if src.Type != constants.ConnectionTypeOracle {
		return nil, nil, fmt.Errorf("source connection %q must be of type %v, not %v", src.LogicalName, constants.ConnectionTypeOracle, src.Type)
	}
	if tgt.Type != constants.ConnectionTypePostgres {
		return nil, nil, fmt.Errorf("target connection %q must be of type %v, not %v", tgt.LogicalName, constants.ConnectionTypePostgres, tgt.Type)
	}
	return src, tgt, nil
}

// getConnectionsArgsFunc returns a func that cobra uses to validate that we have 0 or 2 args.
// It saves the args as the source and target connection names.
func getConnectionsArgsFunc(names *[]string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return errors.New("requires " + argsDefinitionTxt)
		}
		*names = args
		return nil
	}
}
