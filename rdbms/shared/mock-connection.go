package shared

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// In-memory connections used by tests of components that read from or write to a database.

// MockResult implements Result.
type MockResult struct {
	Affected int64
}

func (r MockResult) LastInsertId() (int64, error) {
	return 0, errors.New("LastInsertId is not supported")
}

func (r MockResult) RowsAffected() (int64, error) {
	return r.Affected, nil
}

// MockRows implements Rows over a fixed result set.
type MockRows struct {
	Cols    []string
	Data    [][]interface{}
	ErrLate error // returned by Err() once all rows are consumed
	idx     int
	closed  bool
}

func (r *MockRows) Columns() ([]string, error) {
	return r.Cols, nil
}

func (r *MockRows) Next() bool {
	if r.closed || r.idx >= len(r.Data) {
		return false
	}
	r.idx++
	return true
}

func (r *MockRows) Scan(dest ...interface{}) error {
	if r.idx == 0 || r.idx > len(r.Data) {
		return errors.New("scan called without a current row")
	}
	row := r.Data[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %v destination arguments in Scan, not %v", len(row), len(dest))
	}
	for i, d := range dest {
		if err := assignValue(d, row[i]); err != nil {
			return errors.Wrapf(err, "scan error on column index %v", i)
		}
	}
	return nil
}

func (r *MockRows) Err() error {
	if r.idx >= len(r.Data) {
		return r.ErrLate
	}
	return nil
}

func (r *MockRows) Close() error {
	r.closed = true
	return nil
}

func assignValue(dest interface{}, src interface{}) error {
	switch d := dest.(type) {
	case sql.Scanner:
		return d.Scan(src)
	case *interface{}:
		*d = src
	case *string:
		if src == nil {
			return errors.New("converting NULL to string is unsupported")
		}
		*d = fmt.Sprintf("%v", src)
	default:
		return fmt.Errorf("unsupported Scan destination %T", dest)
	}
	return nil
}

// MockSourceConnection serves a canned result set to every query.
type MockSourceConnection struct {
	Cols     []string
	Data     [][]interface{}
	QueryErr error // returned by QueryContext
	RowsErr  error // returned by Rows.Err after the last row
	Queries  []string
	Closed   bool
}

func (c *MockSourceConnection) Begin() (Transacter, error) {
	return nil, errors.New("MockSourceConnection does not support transactions")
}

func (c *MockSourceConnection) BeginTx(ctx context.Context) (Transacter, error) {
	return c.Begin()
}

func (c *MockSourceConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

func (c *MockSourceConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	return nil, errors.New("MockSourceConnection does not support Exec")
}

func (c *MockSourceConnection) Query(query string, args ...interface{}) (Rows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *MockSourceConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	c.Queries = append(c.Queries, query)
	if c.QueryErr != nil {
		return nil, c.QueryErr
	}
	return &MockRows{Cols: c.Cols, Data: c.Data, ErrLate: c.RowsErr}, nil
}

func (c *MockSourceConnection) Close() {
	c.Closed = true
}

func (c *MockSourceConnection) GetType() string {
	return "mock-source"
}

func (c *MockSourceConnection) GetDmlGenerator() DmlGenerator {
	return NewDmlGenerator(BindStyleColon)
}

var (
	reMockSelect = regexp.MustCompile(`^select (.+) from (\S+) where (\w+) = \S+$`)
	reMockInsert = regexp.MustCompile(`^insert into (\S+) \((.+)\) values \(.+\)$`)
	reMockUpdate = regexp.MustCompile(`^update (\S+) set (.+) where (\w+) = \S+$`)
)

// MockTargetConnection is an in-memory table that understands the single row statements produced by
// DmlGeneratorBind for a table with one key column. Work done inside a transaction is only visible
// to other transactions after Commit.
type MockTargetConnection struct {
	KeyColumn string
	// FailOn is called before each statement is applied. A non-nil error fails the statement.
	FailOn      func(stmt string, args []interface{}) error
	BeginErr    error
	CommitErr   error
	RollbackErr error

	Begins    int
	Commits   int
	Rollbacks int
	Selects   int
	Inserts   int
	Updates   int
	DDL       []string
	Closed    bool

	mu    sync.Mutex
	table map[string]map[string]interface{}
}

func NewMockTargetConnection(keyColumn string) *MockTargetConnection {
	return &MockTargetConnection{KeyColumn: keyColumn, table: make(map[string]map[string]interface{})}
}

// Rows returns a copy of the committed table.
func (c *MockTargetConnection) Rows() map[string]map[string]interface{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyTable(c.table)
}

// Put stores a committed row.
func (c *MockTargetConnection) Put(row map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table[fmt.Sprintf("%v", row[c.KeyColumn])] = copyRow(row)
}

func (c *MockTargetConnection) Begin() (Transacter, error) {
	return c.BeginTx(context.Background())
}

func (c *MockTargetConnection) BeginTx(ctx context.Context) (Transacter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.BeginErr != nil {
		return nil, c.BeginErr
	}
	c.Begins++
	return &MockTx{conn: c, work: copyTable(c.table)}, nil
}

func (c *MockTargetConnection) Exec(query string, args ...interface{}) (Result, error) {
	return c.ExecContext(context.Background(), query, args...)
}

// ExecContext outside of a transaction is auto-committed.
func (c *MockTargetConnection) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	tx := &MockTx{conn: c, work: c.Rows()}
	r, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.table = tx.work
	c.mu.Unlock()
	return r, nil
}

func (c *MockTargetConnection) Query(query string, args ...interface{}) (Rows, error) {
	return c.QueryContext(context.Background(), query, args...)
}

func (c *MockTargetConnection) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	tx := &MockTx{conn: c, work: c.Rows()}
	return tx.QueryContext(ctx, query, args...)
}

func (c *MockTargetConnection) Close() {
	c.Closed = true
}

func (c *MockTargetConnection) GetType() string {
	return "mock-target"
}

func (c *MockTargetConnection) GetDmlGenerator() DmlGenerator {
	return NewDmlGenerator(BindStyleDollar)
}

func (c *MockTargetConnection) fail(stmt string, args []interface{}) error {
	if c.FailOn == nil {
		return nil
	}
	return c.FailOn(stmt, args)
}

// MockTx is a transaction on MockTargetConnection.
type MockTx struct {
	conn *MockTargetConnection
	work map[string]map[string]interface{}
	done bool
}

func (t *MockTx) Exec(query string, args ...interface{}) (Result, error) {
	return t.ExecContext(context.Background(), query, args...)
}

func (t *MockTx) ExecContext(ctx context.Context, query string, args ...interface{}) (Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.done {
		return nil, sql.ErrTxDone
	}
	if err := t.conn.fail(query, args); err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	switch {
	case strings.HasPrefix(strings.ToLower(q), "create "):
		t.conn.DDL = append(t.conn.DDL, q)
		return MockResult{}, nil
	case reMockInsert.MatchString(q):
		m := reMockInsert.FindStringSubmatch(q)
		cols := strings.Split(m[2], ", ")
		if len(cols) != len(args) {
			return nil, fmt.Errorf("insert has %v columns but %v args", len(cols), len(args))
		}
		row := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			row[col] = args[i]
		}
		key := fmt.Sprintf("%v", row[t.conn.KeyColumn])
		if _, exists := t.work[key]; exists {
			return nil, fmt.Errorf("duplicate key value violates unique constraint: %v = %v", t.conn.KeyColumn, key)
		}
		t.work[key] = row
		t.conn.Inserts++
		return MockResult{Affected: 1}, nil
	case reMockUpdate.MatchString(q):
		m := reMockUpdate.FindStringSubmatch(q)
		set := strings.Split(m[2], ", ")
		if len(set)+1 != len(args) {
			return nil, fmt.Errorf("update has %v columns but %v args", len(set)+1, len(args))
		}
		key := fmt.Sprintf("%v", args[len(args)-1])
		row, exists := t.work[key]
		if !exists {
			return MockResult{}, nil
		}
		for i, s := range set {
			col := strings.TrimSpace(strings.SplitN(s, "=", 2)[0])
			row[col] = args[i]
		}
		t.conn.Updates++
		return MockResult{Affected: 1}, nil
	}
	return nil, fmt.Errorf("unsupported statement for mock target: %v", q)
}

func (t *MockTx) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.done {
		return nil, sql.ErrTxDone
	}
	if err := t.conn.fail(query, args); err != nil {
		return nil, err
	}
	m := reMockSelect.FindStringSubmatch(strings.TrimSpace(query))
	if m == nil || len(args) != 1 {
		return nil, fmt.Errorf("unsupported query for mock target: %v", query)
	}
	t.conn.Selects++
	cols := strings.Split(m[1], ", ")
	rows := &MockRows{Cols: cols}
	if row, ok := t.work[fmt.Sprintf("%v", args[0])]; ok {
		vals := make([]interface{}, len(cols))
		for i, col := range cols {
			vals[i] = row[col] // missing columns are NULL
		}
		rows.Data = [][]interface{}{vals}
	}
	return rows, nil
}

func (t *MockTx) Commit() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	if t.conn.CommitErr != nil {
		return t.conn.CommitErr
	}
	t.done = true
	t.conn.table = t.work
	t.conn.Commits++
	return nil
}

func (t *MockTx) Rollback() error {
	t.conn.mu.Lock()
	defer t.conn.mu.Unlock()
	if t.done {
		return sql.ErrTxDone
	}
	if t.conn.RollbackErr != nil {
		return t.conn.RollbackErr
	}
	t.done = true
	t.work = nil
	t.conn.Rollbacks++
	return nil
}

func copyRow(r map[string]interface{}) map[string]interface{} {
	c := make(map[string]interface{}, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func copyTable(t map[string]map[string]interface{}) map[string]map[string]interface{} {
	c := make(map[string]map[string]interface{}, len(t))
	for k, r := range t {
		c[k] = copyRow(r)
	}
	return c
}
