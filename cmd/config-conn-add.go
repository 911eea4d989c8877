package cmd

import (
	"github.com/relloyd/addrsync/actions"
	"github.com/relloyd/addrsync/config"
	"github.com/spf13/cobra"
)

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a connection",
	Long:  `Add a logical database connection for use with the sync command.`,
}

func initConnAdd() {
	configConnCmd.AddCommand(configConnAddCmd)
	initConnAddOracle()
	initConnAddPostgres()
}

func getConnectionGetterSetter() actions.ConnectionGetterSetter {
	return config.Connections
}
