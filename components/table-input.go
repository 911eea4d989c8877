package components

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms"
	"github.com/relloyd/addrsync/rdbms/shared"
	s "github.com/relloyd/addrsync/stats"
)

type TableInputConfig struct {
	Log             logger.Logger
	Name            string
	Db              shared.Connector
	Sqltext         string
	ExpectedColumns int                                 // rows with any other number of columns fail the extract; 0 skips the check
	Normalize       func(v interface{}) (string, error) // converts each scanned value to text
	FailOnError     bool                                // return extraction errors instead of an empty result
	StepWatcher     *s.StepWatcher                      // optional ptr to object that can gather step stats.
}

// TableInput fetches the full result of a query into memory as normalised text.
type TableInput struct {
	cfg  *TableInputConfig
	rows [][]string
}

func NewTableInput(cfg *TableInputConfig) *TableInput {
	return &TableInput{cfg: cfg}
}

// Extract runs the query and returns every row.
// On failure the error is logged and an empty result is returned, unless FailOnError is set.
func (t *TableInput) Extract(ctx context.Context) ([][]string, error) {
	cfg := t.cfg
	cfg.Log.Info(cfg.Name, " extracting rows...")
	if cfg.StepWatcher != nil {
		cfg.StepWatcher.StartWatching()
		defer cfg.StepWatcher.StopWatching()
	}
	t.rows = make([][]string, 0)
	err := rdbms.SqlQuery(ctx, cfg.Log, cfg.Db, cfg.Sqltext, t)
	if err != nil {
		t.rows = nil
		if cfg.FailOnError || ctx.Err() != nil {
			return nil, errors.Wrapf(err, "%v extract failed", cfg.Name)
		}
		cfg.Log.Error(cfg.Name, " error extracting rows: ", err)
		return [][]string{}, nil
	}
	cfg.Log.Info(cfg.Name, " found ", len(t.rows), " rows.")
	rows := t.rows
	t.rows = nil
	return rows, nil
}

// HandleHeader implements shared.SqlResultHandler.
func (t *TableInput) HandleHeader(header []interface{}) error {
	if t.cfg.ExpectedColumns > 0 && len(header) != t.cfg.ExpectedColumns {
		return fmt.Errorf("expected %v columns, query returned %v", t.cfg.ExpectedColumns, len(header))
	}
	return nil
}

// HandleRow implements shared.SqlResultHandler.
func (t *TableInput) HandleRow(row []interface{}) error {
	if t.cfg.ExpectedColumns > 0 && len(row) != t.cfg.ExpectedColumns {
		return fmt.Errorf("expected %v columns, row %v has %v", t.cfg.ExpectedColumns, len(t.rows)+1, len(row))
	}
	out := make([]string, len(row))
	for idx, v := range row {
		var err error
		if t.cfg.Normalize != nil {
			out[idx], err = t.cfg.Normalize(v)
		} else {
			out[idx] = fmt.Sprintf("%v", v)
		}
		if err != nil {
			return errors.Wrapf(err, "row %v column %v", len(t.rows)+1, idx+1)
		}
	}
	t.rows = append(t.rows, out)
	if t.cfg.StepWatcher != nil {
		t.cfg.StepWatcher.AddProcessed(1)
	}
	return nil
}
