package cmd

import (
	"fmt"

	"github.com/relloyd/addrsync/actions"
	"github.com/relloyd/addrsync/config"
	"github.com/relloyd/addrsync/constants"
	"github.com/spf13/cobra"
)

var configConnAddOraCfg = &actions.ConnectionConfig{}
var oracleConn = actions.OracleDsn{}

var configConnAddOraCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Add an Oracle connection",
	Long: fmt.Sprintf(`Add an Oracle connection to the config store %q
by providing a DSN of the form:

oracle://<user>/<password>@//<host>:<port>/<SID or service name>?<param1>&<...paramN>

By default, %v is added to parameters unless overridden.
`,
		config.Connections.FullPath, constants.OracleConnectionDefaultParams),
	RunE: func(cmd *cobra.Command, args []string) error {
		configConnAddOraCfg.Type = constants.ConnectionTypeOracle
		configConnAddOraCfg.ConfigFile = getConnectionGetterSetter()
		configConnAddOraCfg.ConnDetails = oracleConn
		configConnAddOraCfg.Out = cmd.OutOrStdout()
		cmd.SilenceUsage = true
		return actions.RunConnectionAdd(configConnAddOraCfg)
	},
}

func initConnAddOracle() {
	configConnAddCmd.AddCommand(configConnAddOraCmd)
	configConnAddOraCmd.Flags().SortFlags = false
	switches.addFlag(configConnAddOraCmd, &configConnAddOraCfg.LogicalName, "connection-name", "", true, "")
	switches.addFlag(configConnAddOraCmd, &configConnAddOraCfg.Force, "force-connection", "", false, "")
	switches.addFlag(configConnAddOraCmd, &oracleConn.Dsn, "oracle-dsn", "", true, "")
}
