package actions

import (
	"fmt"

	"github.com/relloyd/addrsync/helper"
	"github.com/relloyd/addrsync/rdbms/shared"
)

// OracleDsn is a connect string of the form:
// oracle://<user>/<password>@//<host>:<port>/<service>?<params>
type OracleDsn struct {
	shared.DsnConnectionDetails
}

func (o OracleDsn) Validate() error {
	d, err := shared.OracleDsnToOracleConnectionDetails(o.Dsn)
	if err != nil {
		return err
	}
	return helper.ValidateStructIsPopulated(d)
}

// PostgresDsn is a URL of the form postgres://<user>:<password>@<host>:<port>/<database>?<params>
type PostgresDsn struct {
	shared.DsnConnectionDetails
}

func (p PostgresDsn) Validate() error {
	u, err := p.Parse()
	if err != nil {
		return err
	}
	if u.Driver != "postgres" {
		return fmt.Errorf("expected a PostgreSQL DSN, got scheme %q", u.OriginalScheme)
	}
	return nil
}
