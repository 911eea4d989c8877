package cmd

import (
	"fmt"

	"github.com/relloyd/addrsync/config"
	"github.com/relloyd/addrsync/constants"
	"github.com/spf13/cobra"
)

var defaultCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Configure default values for command flags",
	Long: fmt.Sprintf(`Configure default values for command flags, where:

- Defaults are stored in config file %q
- Keys match flag names, e.g. commit-batch-size
- Environment variables %v_<FLAG_NAME> take priority over these defaults`, config.Main.FullPath, constants.EnvVarPrefix),
}

func init() {
	configCmd.AddCommand(defaultCmd)
}
