package cmd

import (
	"os"

	"github.com/relloyd/addrsync/constants"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2024-01-01T00:00+0000"
	logLevel         string
	logFile          string
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   constants.AppName,
	Short: "Synchronise person address records from Oracle into PostgreSQL",
	Long: `addrsync copies person address and contact records from an Oracle database into a
PostgreSQL table. Each run extracts every living person's address, landlines, mobile and
e-mail addresses, creates the target table if it is missing, then inserts new records and
updates changed ones in batches.

Save connections once using 'addrsync config connections add' and refer to them by name,
or supply connect strings via flags or ADDRSYNC_* environment variables.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	switches.addPersistentFlag(rootCmd, &logLevel, "log-level", constants.LogLevelDefault, "")
	switches.addPersistentFlag(rootCmd, &logFile, "log-file", constants.LogFileDefault, "")
	switches.addPersistentFlag(rootCmd, &stackDumpOnPanic, "print-stack", "", "")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
