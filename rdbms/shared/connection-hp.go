package shared

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	relloyd "github.com/relloyd/go-sql/database/sql"
)

// HpConnection is a wrapper around:
// 1) Go native sql.DB
// 2) relloyd/go-sql.DB, used by the OCI Oracle driver
// It also adds the DmlGenerator interface for use in components that output records to a database.
type HpConnection struct {
	DbRelloyd *relloyd.DB
	DbSql     *sql.DB
	Dml       DmlGenerator
	DbType    string
}

// Connector:

func (c *HpConnection) Begin() (Transacter, error) {
	return c.BeginTx(context.Background())
}

func (c *HpConnection) BeginTx(ctx context.Context) (Transacter, error) {
	if c.DbRelloyd == nil && c.DbSql == nil {
		return nil, errors.New("HpConnection was not configured correctly: both DbSql and DbRelloyd are missing")
	}
	if c.DbRelloyd != nil { // if we're using relloyd/go-sql...
		tx, err := c.DbRelloyd.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		return &HpTx{txRelloyd: tx}, nil
	}
	tx, err := c.DbSql.BeginTx(ctx, nil) // else fall back to Go native sql library...
	if err != nil {
		return nil, err
	}
	return &HpTx{txSql: tx}, nil
}

func (c *HpConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *HpConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	if c.DbRelloyd != nil {
		return c.DbRelloyd.ExecContext(ctx, query, args...)
	}
	return c.DbSql.ExecContext(ctx, query, args...)
}

func (c *HpConnection) Query(query string, args ...interface{}) (Rows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *HpConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	if c.DbRelloyd != nil {
		r, err := c.DbRelloyd.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return &HpRows{rowsRelloyd: r, useRelloyd: true}, nil
	}
	r, err := c.DbSql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &HpRows{rowsSql: r}, nil
}

func (c *HpConnection) Close() {
	if c.DbRelloyd != nil {
		_ = c.DbRelloyd.Close()
	} else if c.DbSql != nil {
		_ = c.DbSql.Close()
	}
}

func (c *HpConnection) GetDmlGenerator() DmlGenerator {
	return c.Dml
}

func (c *HpConnection) GetType() string {
	return c.DbType
}

// Transacter:

type HpTx struct {
	txRelloyd *relloyd.Tx
	txSql     *sql.Tx
}

func (t *HpTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.ExecContext(context.Background(), query, args...)
}

func (t *HpTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	if t.txRelloyd != nil {
		return t.txRelloyd.ExecContext(ctx, query, args...)
	}
	return t.txSql.ExecContext(ctx, query, args...)
}

func (t *HpTx) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	if t.txRelloyd != nil {
		r, err := t.txRelloyd.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		return &HpRows{rowsRelloyd: r, useRelloyd: true}, nil
	}
	r, err := t.txSql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &HpRows{rowsSql: r}, nil
}

func (t *HpTx) Commit() error {
	if t.txRelloyd != nil {
		return t.txRelloyd.Commit()
	}
	return t.txSql.Commit()
}

func (t *HpTx) Rollback() error {
	if t.txRelloyd != nil {
		return t.txRelloyd.Rollback()
	}
	return t.txSql.Rollback()
}

// Rows:

type HpRows struct {
	rowsRelloyd *relloyd.Rows
	rowsSql     *sql.Rows
	useRelloyd  bool
}

func (r *HpRows) Close() error {
	if r.useRelloyd {
		return r.rowsRelloyd.Close()
	}
	return r.rowsSql.Close()
}

func (r *HpRows) Columns() ([]string, error) {
	if r.useRelloyd {
		return r.rowsRelloyd.Columns()
	}
	return r.rowsSql.Columns()
}

func (r *HpRows) Err() error {
	if r.useRelloyd {
		return r.rowsRelloyd.Err()
	}
	return r.rowsSql.Err()
}

func (r *HpRows) Next() bool {
	if r.useRelloyd {
		return r.rowsRelloyd.Next()
	}
	return r.rowsSql.Next()
}

func (r *HpRows) Scan(dest ...interface{}) error {
	if r.useRelloyd {
		return r.rowsRelloyd.Scan(dest...)
	}
	return r.rowsSql.Scan(dest...)
}
