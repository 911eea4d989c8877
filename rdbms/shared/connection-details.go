package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/addrsync/constants"
	"github.com/xo/dburl"
)

// ConnectionDetails is intended to hold credentials for a logical database connection.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"database type" mandatory:"yes" yaml:"type" mapstructure:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"database logical name" mandatory:"yes" yaml:"logicalName" mapstructure:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data" mapstructure:"data"`
}

// GetDsn returns the connect string held in Data.
func (c ConnectionDetails) GetDsn() string {
	return c.Data[DefaultDsnConnectionKeyNames.Dsn]
}

// String redacts passwords and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := make([]string, 0, len(c.Data)+1)
	x = append(x, fmt.Sprintf("  type = %v", c.Type))
	keys := make([]string, 0, len(c.Data))
	for k := range c.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Data[k]
		switch k {
		case DefaultDsnConnectionKeyNames.Dsn:
			v = RedactDsn(c.Type, v)
		case "password":
			v = "xxxxx"
		}
		x = append(x, fmt.Sprintf("  %v = %v", k, v))
	}
	return strings.Join(x, "\n")
}

// RedactDsn returns dsn with the password removed.
// Oracle DSNs are parsed explicitly since their format isn't compatible with dburl.
// A DSN that can't be parsed is hidden completely.
func RedactDsn(connectionType string, dsn string) string {
	if connectionType == constants.ConnectionTypeOracle {
		o, err := OracleDsnToOracleConnectionDetails(dsn)
		if err != nil {
			return "<unparseable Oracle DSN>"
		}
		return o.String()
	}
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "<unparseable DSN>"
	}
	return u.Redacted()
}
