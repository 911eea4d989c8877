//go:build oci8

package rdbms

import (
	"context"

	_ "github.com/relloyd/go-oci8"
	relloyd "github.com/relloyd/go-sql/database/sql"
)

func init() {
	oci8Open = func(ctx context.Context, dsn string) (*relloyd.DB, error) {
		db, err := relloyd.Open("oci8", dsn)
		if err != nil {
			return nil, err
		}
		if err = db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}
}
