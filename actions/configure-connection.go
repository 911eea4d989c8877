package actions

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/config"
	"github.com/relloyd/addrsync/helper"
	"github.com/relloyd/addrsync/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile  ConnectionGetterSetter `errorTxt:"connections config file" mandatory:"yes"`
	LogicalName string                 `errorTxt:"connection-name" mandatory:"yes"`
	Type        string                 // constants.ConnectionTypeOracle or constants.ConnectionTypePostgres
	ConnDetails ConnectionValidator
	Force       bool
	Out         io.Writer
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	// Setup the basics ready to be persisted below.
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if err := helper.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	if cfg.ConfigFile == nil || cfg.ConnDetails == nil {
		return errors.New("missing config file or connection details")
	}
	if strings.ContainsAny(cfg.LogicalName, ". ") {
		return fmt.Errorf("connection name %q cannot contain periods or spaces", cfg.LogicalName)
	}
	if err := cfg.ConnDetails.Validate(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	cfg.ConnDetails.GetMap(connection.Data)
	// Check for an existing saved connection.
	tmpConn := &shared.ConnectionDetails{}
	err := cfg.ConfigFile.Get(cfg.LogicalName, tmpConn)
	if err != nil { // if there is an error finding the connection...
		if !errors.As(err, &config.KeyNotFoundError{}) && !errors.As(err, &config.FileNotFoundError{}) { // if the error is real...
			return err
		}
	} else if !cfg.Force { // else the connection exists, but we are not allowed to overwrite it...
		return fmt.Errorf("connection %q exists, use force to update the connection or remove it first", cfg.LogicalName)
	}
	// Set config (creates the file if missing).
	if err = cfg.ConfigFile.Set(cfg.LogicalName, &connection); err != nil {
		return errors.Wrap(err, "error writing connections config file after adding")
	}
	_, _ = fmt.Fprintf(stdout(cfg.Out), "Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.LogicalName); err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %v", cfg.LogicalName, err)
	}
	_, _ = fmt.Fprintf(stdout(cfg.Out), "Connection %q removed\n", cfg.LogicalName)
	return nil
}

type ConnectionListConfig struct {
	ConfigFile ConnectionLister `errorTxt:"connections config file" mandatory:"yes"`
	Output     string           // "" for plain text, "yaml" or "json"
	Out        io.Writer
}

// RunConnectionList prints all saved connections with passwords redacted.
func RunConnectionList(cfg *ConnectionListConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	keys, err := cfg.ConfigFile.GetAllKeys()
	if err != nil {
		return err
	}
	conns := make(map[string]shared.ConnectionDetails, len(keys))
	for _, k := range keys { // for each connection name...
		conn := shared.ConnectionDetails{}
		if err = cfg.ConfigFile.Get(k, &conn); err != nil {
			return errors.Wrapf(err, "unable to read connection %q", k)
		}
		conns[k] = redactConnection(conn)
	}
	w := stdout(cfg.Out)
	var b []byte
	switch cfg.Output {
	case "":
		for _, k := range keys {
			if _, err = fmt.Fprintf(w, "%v:\n%v\n", k, conns[k]); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		b, err = yaml.Marshal(conns)
	case "json":
		b, err = json.MarshalIndent(conns, "", "  ")
		b = append(b, '\n')
	default:
		return fmt.Errorf("unsupported output format %q, use yaml or json", cfg.Output)
	}
	if err != nil {
		return errors.Wrap(err, "unable to marshal connections")
	}
	_, err = w.Write(b)
	return err
}
