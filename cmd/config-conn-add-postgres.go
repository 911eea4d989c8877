package cmd

import (
	"fmt"

	"github.com/relloyd/addrsync/actions"
	"github.com/relloyd/addrsync/config"
	"github.com/relloyd/addrsync/constants"
	"github.com/spf13/cobra"
)

var configConnAddPgCfg = &actions.ConnectionConfig{}
var postgresConn = actions.PostgresDsn{}

var configConnAddPgCmd = &cobra.Command{
	Use:     "postgres",
	Aliases: []string{"pg"},
	Short:   "Add a PostgreSQL connection",
	Long: fmt.Sprintf(`Add a PostgreSQL connection to the config store %q
by providing a URL of the form:

postgres://<user>:<password>@<host>:<port>/<database>?<param1>&<...paramN>
`,
		config.Connections.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		configConnAddPgCfg.Type = constants.ConnectionTypePostgres
		configConnAddPgCfg.ConfigFile = getConnectionGetterSetter()
		configConnAddPgCfg.ConnDetails = postgresConn
		configConnAddPgCfg.Out = cmd.OutOrStdout()
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnAddPgCfg)
	},
}

func initConnAddPostgres() {
	configConnAddCmd.AddCommand(configConnAddPgCmd)
	configConnAddPgCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddPgCmd, &configConnAddPgCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddPgCmd, &configConnAddPgCfg.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddPgCmd, &postgresConn.Dsn, "postgres-dsn", "", true, "")
}
