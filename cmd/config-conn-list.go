package cmd

import (
	"fmt"

	"github.com/relloyd/addrsync/actions"
	"github.com/relloyd/addrsync/config"
	"github.com/spf13/cobra"
)

var connListCfg = actions.ConnectionListConfig{}

var configConnListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all connections",
	Long: fmt.Sprintf(`List connections stored in config store %q
by printing them all to STDOUT with passwords redacted`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		connListCfg.ConfigFile = config.Connections
		connListCfg.Out = cmd.OutOrStdout()
		return actions.RunConnectionList(&connListCfg)
	},
}

func initConnList() {
	configConnCmd.AddCommand(configConnListCmd)
	switches.addFlag(configConnListCmd, &connListCfg.Output, "output", "", false, "")
	configConnListCmd.SilenceUsage = true
}
