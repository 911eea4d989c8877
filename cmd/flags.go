package cmd

import (
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/relloyd/addrsync/config"
	"github.com/relloyd/addrsync/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"trace | debug | info | warn | error\""},
	"log-file": cliFlag{name: "log-file", shortHand: "",
		desc: "File to append log lines to, in addition to the console (empty to disable)"},
	"print-stack": cliFlag{name: "print-stack", shortHand: "",
		desc: "Add a stack trace to error log lines"},
	"source-dsn": cliFlag{name: "source-dsn", shortHand: "s",
		desc: "Oracle connect string used when no connection names are given:\n" +
			"oracle://<user>/<password>@//<host>:<port>/<service>?<params>"},
	"target-dsn": cliFlag{name: "target-dsn", shortHand: "t",
		desc: "PostgreSQL URL used when no connection names are given:\n" +
			"postgres://<user>:<password>@<host>:<port>/<database>?<params>"},
	"target-table": cliFlag{name: "target-table", shortHand: "T",
		desc: "The [<schema>.]<table> to create if missing and load"},
	"commit-batch-size": cliFlag{name: "commit-batch-size", shortHand: "B",
		desc: "Number of records in each transaction before committing"},
	"oracle-driver": cliFlag{name: "oracle-driver", shortHand: "",
		desc: "Oracle driver: \"oracle\" (pure Go) or \"oci8\" (requires a build with -tags oci8)"},
	"fail-on-extract-error": cliFlag{name: "fail-on-extract-error", shortHand: "",
		desc: "Abort the run when the source query fails, instead of logging the error and loading nothing"},
	"dry-run": cliFlag{name: "dry-run", shortHand: "d",
		desc: "Print the target table DDL and the source query without connecting"},
	"stats": cliFlag{name: "stats", shortHand: "L",
		desc: "Number of seconds between logging progress statistics (use 0 to disable)"},
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "Connection name referred to by the sync command"},
	"oracle-dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "Oracle connect string of the form:\n" +
			"oracle://<user>/<password>@//<host>:<port>/<service>?<params>"},
	"postgres-dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "PostgreSQL URL of the form:\n" +
			"postgres://<user>:<password>@<host>:<port>/<database>?<params>"},
	"force-connection": cliFlag{name: "force", shortHand: "f",
		desc: "Allow overwrite of existing connections"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Print in \"yaml\" or \"json\" format instead of plain text"},
}

// addFlag adds a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// The default value is taken from the environment, then the Main config file, then defaultValue.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	sw := f.addFlagToSet(c.Flags(), targetVar, name, defaultValue, desc2)
	// Optionally mark the flag as mandatory.
	if required { // if the flag is required...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// addPersistentFlag is addFlag for flags inherited by all subcommands of c.
func (f *cliFlags) addPersistentFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, desc2 string) {
	f.addFlagToSet(c.PersistentFlags(), targetVar, name, defaultValue, desc2)
}

func (f *cliFlags) addFlagToSet(fs *pflag.FlagSet, targetVar interface{}, name string, defaultValue string, desc2 string) cliFlag {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, config.Main.Get) // get the cliFlag details, with defaults taken from env, config or the supplied defaultValue
	desc := sw.desc + desc2                                 // create the full flag description for use below
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		fs.StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
		// Signal that the flag was set so defaults satisfy required flags.
		if sw.val != "" { // if there is a value via env, config or default...
			mustSetFlag(fs, sw.name, sw.val)
		}
	case *bool:
		defaultBool := helper.GetTrueFalseStringAsBool(sw.val)
		fs.BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc)
	case *int:
		defaultInt := 0
		if sw.val != "" {
			var err error
			if defaultInt, err = strconv.Atoi(sw.val); err != nil {
				fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
				os.Exit(1)
			}
		}
		fs.IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	return sw
}

// getCliFlag fetches the default value of flag name from the environment, else from the Main config file
// using fnGetConfig, else uses the supplied defaultValue.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	s.val = ""
	if err := helper.ReadValueFromEnv(helper.FlagNameToEnvVar(s.name), &s.val); err == nil { // if the env var is set...
		return s
	}
	if err := fnGetConfig(s.name, &s.val); err != nil || s.val == "" { // if there was no usable value in config...
		// Apply the default.
		s.val = defaultValue
	}
	return s
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
