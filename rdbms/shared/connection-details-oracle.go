package shared

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/helper"
)

var reOracleDsn = regexp.MustCompile(`^oracle://.+?/.+?@//.+:[0-9]+/.+$`)

// OracleConnectionDetails is a helper type to build connection details with.
// oracle://user/password@//host:port/service?param1=value1&param2=value2
type OracleConnectionDetails struct {
	DBName   string `errorTxt:"Oracle database service name" mandatory:"yes"`
	DBUser   string `errorTxt:"Oracle username" mandatory:"yes"`
	DBPass   string `errorTxt:"Oracle password" mandatory:"yes"`
	DBHost   string `errorTxt:"Oracle hostname" mandatory:"yes"`
	DBPort   string `errorTxt:"Oracle port" mandatory:"yes"`
	DBParams string // param1=value1&param2=value2
}

// String returns the DSN with the password masked.
func (d OracleConnectionDetails) String() string {
	return fmt.Sprintf("oracle://%v/%v@//%v:%v/%v?%v",
		d.DBUser,
		"xxxxx",
		d.DBHost,
		d.DBPort,
		d.DBName,
		d.DBParams)
}

// GetParams returns the DBParams as a map.
// Later duplicates win.
func (d OracleConnectionDetails) GetParams() map[string]string {
	m := make(map[string]string)
	for _, kv := range strings.Split(d.DBParams, "&") {
		if kv == "" {
			continue
		}
		k, v := helper.Split(kv, "=")
		m[k] = v
	}
	return m
}

// OracleConnectionDetailsToDSN is a helper function to build a connection string.
// DBParams is optional.
func OracleConnectionDetailsToDSN(d *OracleConnectionDetails) (retval string, err error) {
	var txt []string
	if d.DBUser == "" {
		txt = append(txt, "user")
	}
	if d.DBPass == "" {
		txt = append(txt, "password")
	}
	if d.DBHost == "" {
		txt = append(txt, "host")
	}
	if d.DBPort == "" {
		txt = append(txt, "port")
	}
	if d.DBName == "" {
		txt = append(txt, "database service name")
	}
	if len(txt) > 0 {
		return "", errors.New("unable to build database connection string due to missing: " + strings.Join(txt, ", ") + ".")
	}
	retval = fmt.Sprintf("oracle://%v/%v@//%v:%v/%v", d.DBUser, d.DBPass, d.DBHost, d.DBPort, d.DBName)
	if d.DBParams != "" {
		retval = retval + "?" + d.DBParams
	}
	return
}

// OracleDsnToOracleConnectionDetails parses an Oracle DSN.
// When no params are given, constants.OracleConnectionDefaultParams is applied.
func OracleDsnToOracleConnectionDetails(d string) (*OracleConnectionDetails, error) {
	if !reOracleDsn.MatchString(d) {
		return nil, errors.New("unsupported Oracle DSN format")
	}
	d = strings.TrimPrefix(d, "oracle://")
	userPwd, theRest := helper.SplitRight(d, `@`)
	user, pass := helper.Split(userPwd, `/`)
	hostPort, dbNameParams := helper.Split(strings.TrimLeft(theRest, "/"), `/`)
	host, port := helper.SplitRight(hostPort, `:`)
	dbName, params := helper.Split(dbNameParams, `?`)
	if params == "" { // if the user did not override the default params...
		params = constants.OracleConnectionDefaultParams
	}
	return &OracleConnectionDetails{
		DBUser:   user,
		DBPass:   pass,
		DBHost:   host,
		DBPort:   port,
		DBName:   dbName,
		DBParams: params,
	}, nil
}
