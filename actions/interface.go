package actions

import (
	"github.com/relloyd/addrsync/rdbms/shared"
)

// ConnectionGetterSetter is a store of named connections, e.g. config.Connections.
type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

type ConnectionLister interface {
	Get(key string, out interface{}) error
	GetAllKeys() ([]string, error)
}

type ConnectionLoader interface {
	GetConnectionDetails(connectionName string) (connectionDetails *shared.ConnectionDetails, err error)
}

// ConnectionValidator checks a connect string before it is saved into a connection's Data map.
type ConnectionValidator interface {
	Validate() error
	GetMap(m map[string]string) map[string]string
}
