package components

import (
	"context"
	"database/sql"
	"fmt"

	om "github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms"
	"github.com/relloyd/addrsync/rdbms/shared"
	s "github.com/relloyd/addrsync/stats"
)

// UpsertRecord is a row that TableUpsert can write.
type UpsertRecord interface {
	Key() string                                 // the primary key value, used in logs
	BindValue(field string) (interface{}, error) // value for a field named in KeyCols or WriteCols
	Tracked() []sql.NullString                   // values compared with the stored TrackedCols
}

type TableUpsertConfig struct {
	Log             logger.Logger
	Name            string
	OutputDb        shared.Connector
	OutputSchema    string
	OutputTable     string
	KeyCols         *om.OrderedMap // ordered map of: key = record field name; value = target table column name
	WriteCols       *om.OrderedMap // non-key columns written by insert and update
	TrackedCols     *om.OrderedMap // non-key columns fetched and compared with UpsertRecord.Tracked()
	CommitBatchSize int
	StepWatcher     *s.StepWatcher // optional ptr to object that can gather step stats.
}

// LoadResult counts what happened to the records given to Load.
// Inserted and Updated only include rows that were committed.
type LoadResult struct {
	Read      int
	Inserted  int
	Updated   int
	Unchanged int
	Failed    int
	Discarded int // rows written successfully then lost to a rollback caused by a later failure in the same batch
	Commits   int
}

type rowOutcome int

const (
	rowInserted rowOutcome = iota
	rowUpdated
	rowUnchanged
)

// TableUpsert inserts new records and updates changed ones, one row at a time, committing once per batch.
type TableUpsert struct {
	cfg       *TableUpsertConfig
	insertSql shared.SqlStmtGenerator
	updateSql shared.SqlStmtGenerator
	selectSql shared.SqlStmtGenerator
}

func NewTableUpsert(cfg *TableUpsertConfig) *TableUpsert {
	if cfg.CommitBatchSize <= 0 {
		cfg.Log.Panic(cfg.Name, " commit batch size must be greater than 0")
	}
	dml := cfg.OutputDb.GetDmlGenerator()
	newCfg := func(other *om.OrderedMap) *shared.SqlStatementGeneratorConfig {
		return &shared.SqlStatementGeneratorConfig{
			Log:             cfg.Log,
			OutputSchema:    cfg.OutputSchema,
			OutputTable:     cfg.OutputTable,
			TargetKeyCols:   cfg.KeyCols,
			TargetOtherCols: other,
		}
	}
	return &TableUpsert{
		cfg:       cfg,
		insertSql: dml.NewInsertGenerator(newCfg(cfg.WriteCols)),
		updateSql: dml.NewUpdateGenerator(newCfg(cfg.WriteCols)),
		selectSql: dml.NewSelectByKeyGenerator(newCfg(cfg.TrackedCols)),
	}
}

// pendingTx counts rows written since the transaction began.
type pendingTx struct {
	tx       shared.Transacter
	inserted int
	updated  int
}

func (p *pendingTx) written() int {
	return p.inserted + p.updated
}

// Load writes records in batches of CommitBatchSize.
// A failing row is logged, the open transaction is rolled back and a new one is begun so the remaining
// rows are still processed. Failures to begin, roll back or commit a transaction are returned.
func (t *TableUpsert) Load(ctx context.Context, records []UpsertRecord) (LoadResult, error) {
	cfg := t.cfg
	res := LoadResult{Read: len(records)}
	if len(records) == 0 {
		cfg.Log.Warn(cfg.Name, " no records to insert or update.")
		return res, nil
	}
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.StartWatching()
		defer cfg.StepWatcher.StopWatching()
	}
	batchSize := cfg.CommitBatchSize
	for batchNum, start := 1, 0; start < len(records); batchNum, start = batchNum+1, start+batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		p, err := t.begin(ctx)
		if err != nil {
			return res, err
		}
		for idx, rec := range batch {
			outcome, err := t.upsertRow(ctx, p.tx, rec)
			if t.cfg.StepWatcher != nil {
				t.cfg.StepWatcher.AddProcessed(1)
			}
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil { // if we were cancelled...
					_ = p.tx.Rollback()
					t.discard(&res, p)
					return res, ctxErr
				}
				t.logRowError(idx+1+(batchNum-1)*batchSize, rec, err)
				res.Failed++
				if cfg.StepWatcher != nil {
					cfg.StepWatcher.AddFailed(1)
				}
				if err = p.tx.Rollback(); err != nil {
					return res, errors.Wrapf(err, "%v unable to roll back transaction", cfg.Name)
				}
				t.discard(&res, p)
				if p, err = t.begin(ctx); err != nil {
					return res, err
				}
				continue
			}
			switch outcome {
			case rowInserted:
				p.inserted++
			case rowUpdated:
				p.updated++
			case rowUnchanged:
				res.Unchanged++
				if cfg.StepWatcher != nil {
					cfg.StepWatcher.AddUnchanged(1)
				}
			}
		}
		if err = p.tx.Commit(); err != nil {
			return res, errors.Wrapf(err, "%v unable to commit batch %v", cfg.Name, batchNum)
		}
		res.Commits++
		res.Inserted += p.inserted
		res.Updated += p.updated
		if cfg.StepWatcher != nil {
			cfg.StepWatcher.AddCommits(1)
			cfg.StepWatcher.AddInserted(int64(p.inserted))
			cfg.StepWatcher.AddUpdated(int64(p.updated))
		}
		cfg.Log.Info(fmt.Sprintf("Batch %v with %v records processed.", batchNum, len(batch)))
	}
	cfg.Log.Info(fmt.Sprintf("%v complete: read=%v inserted=%v updated=%v unchanged=%v failed=%v discarded=%v commits=%v",
		cfg.Name, res.Read, res.Inserted, res.Updated, res.Unchanged, res.Failed, res.Discarded, res.Commits))
	return res, nil
}

func (t *TableUpsert) begin(ctx context.Context) (*pendingTx, error) {
	tx, err := t.cfg.OutputDb.BeginTx(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "%v unable to begin transaction", t.cfg.Name)
	}
	return &pendingTx{tx: tx}, nil
}

func (t *TableUpsert) discard(res *LoadResult, p *pendingTx) {
	n := p.written()
	if n == 0 {
		return
	}
	res.Discarded += n
	if t.cfg.StepWatcher != nil {
		t.cfg.StepWatcher.AddDiscarded(int64(n))
	}
	t.cfg.Log.Warn(t.cfg.Name, " rollback discarded ", n, " uncommitted rows in the current batch")
}

func (t *TableUpsert) logRowError(rowNum int, rec UpsertRecord, err error) {
	if state := rdbms.SqlState(err); state != "" {
		t.cfg.Log.Error(fmt.Sprintf("Error on record %v (key=%v, sqlstate=%v): %v", rowNum, rec.Key(), state, err))
		return
	}
	t.cfg.Log.Error(fmt.Sprintf("Error on record %v (key=%v): %v", rowNum, rec.Key(), err))
}

// upsertRow selects the stored row by key, then inserts, updates or leaves it alone.
func (t *TableUpsert) upsertRow(ctx context.Context, tx shared.Transacter, rec UpsertRecord) (rowOutcome, error) {
	stored, found, err := t.fetchStored(ctx, tx, rec)
	if err != nil {
		return 0, err
	}
	if !found {
		if err = t.exec(ctx, tx, t.insertSql, rec); err != nil {
			return 0, err
		}
		return rowInserted, nil
	}
	if trackedEqual(stored, rec.Tracked()) {
		return rowUnchanged, nil
	}
	if err = t.exec(ctx, tx, t.updateSql, rec); err != nil {
		return 0, err
	}
	return rowUpdated, nil
}

func (t *TableUpsert) fetchStored(ctx context.Context, tx shared.Transacter, rec UpsertRecord) ([]sql.NullString, bool, error) {
	args, err := bindArgs(t.selectSql, rec)
	if err != nil {
		return nil, false, err
	}
	rows, err := tx.QueryContext(ctx, t.selectSql.GetStatement(), args...)
	if err != nil {
		return nil, false, errors.Wrap(err, "select failed")
	}
	defer func() {
		_ = rows.Close()
	}()
	if !rows.Next() {
		return nil, false, errors.Wrap(rows.Err(), "select failed") // nil when there are simply no rows
	}
	stored := make([]sql.NullString, t.cfg.TrackedCols.Len())
	ptrs := make([]interface{}, len(stored))
	for idx := range stored {
		ptrs[idx] = &stored[idx]
	}
	if err = rows.Scan(ptrs...); err != nil {
		return nil, false, errors.Wrap(err, "select scan failed")
	}
	return stored, true, nil
}

func (t *TableUpsert) exec(ctx context.Context, tx shared.Transacter, g shared.SqlStmtGenerator, rec UpsertRecord) error {
	args, err := bindArgs(g, rec)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, g.GetStatement(), args...)
	return err
}

func bindArgs(g shared.SqlStmtGenerator, rec UpsertRecord) ([]interface{}, error) {
	fields := g.GetBindFields()
	args := make([]interface{}, len(fields))
	for idx, f := range fields {
		v, err := rec.BindValue(f)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return args, nil
}

func trackedEqual(stored []sql.NullString, incoming []sql.NullString) bool {
	if len(stored) != len(incoming) {
		return false
	}
	for idx := range stored {
		if stored[idx] != incoming[idx] {
			return false
		}
	}
	return true
}
