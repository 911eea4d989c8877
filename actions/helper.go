package actions

import (
	"io"
	"os"

	"github.com/relloyd/addrsync/rdbms/shared"
)

// stdout returns w, or os.Stdout if w is nil.
func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// redactConnection returns a copy of c with passwords removed from its Data.
func redactConnection(c shared.ConnectionDetails) shared.ConnectionDetails {
	r := shared.ConnectionDetails{Type: c.Type, LogicalName: c.LogicalName, Data: make(map[string]string, len(c.Data))}
	for k, v := range c.Data {
		switch k {
		case shared.DefaultDsnConnectionKeyNames.Dsn:
			v = shared.RedactDsn(c.Type, v)
		case "password":
			v = "xxxxx"
		}
		r.Data[k] = v
	}
	return r
}
