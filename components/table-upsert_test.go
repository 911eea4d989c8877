package components

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/relloyd/addrsync/address"
	"github.com/relloyd/addrsync/rdbms/shared"
	"github.com/relloyd/addrsync/stats"
)

func newTestTableUpsert(db shared.Connector, batchSize int) (*TableUpsert, *stats.StepWatcher, func() string) {
	log, buf := newTestLogger()
	sw := stats.NewStepWatcher(log, "load")
	return NewTableUpsert(&TableUpsertConfig{
		Log:             log,
		Name:            "test load",
		OutputDb:        db,
		OutputSchema:    "public",
		OutputTable:     "endereco",
		KeyCols:         address.KeyCols(),
		WriteCols:       address.SourcedCols(),
		TrackedCols:     address.TrackedCols(),
		CommitBatchSize: batchSize,
		StepWatcher:     sw,
	}), sw, buf.String
}

func TestTableUpsertNoRecords(t *testing.T) {
	db := shared.NewMockTargetConnection(address.ColIdPessoa)
	u, _, logs := newTestTableUpsert(db, 10)
	res, err := u.Load(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if res != (LoadResult{}) || db.Begins != 0 || db.Selects != 0 {
		t.Fatalf("expected no database activity; got %+v, begins=%v, selects=%v", res, db.Begins, db.Selects)
	}
	if !strings.Contains(logs(), "no records to insert or update") {
		t.Fatalf("expected warning; got %v", logs())
	}
}

func TestTableUpsertCommitsPerBatch(t *testing.T) {
	cases := []struct {
		records int
		batch   int
		commits int
	}{
		{1, 1000, 1},
		{5, 2, 3},
		{6, 2, 3},
		{7, 1, 7},
		{1000, 1000, 1},
		{1001, 1000, 2},
	}
	for _, c := range cases {
		db := shared.NewMockTargetConnection(address.ColIdPessoa)
		u, sw, _ := newTestTableUpsert(db, c.batch)
		res, err := u.Load(context.Background(), testRecords(c.records))
		if err != nil {
			t.Fatal(err)
		}
		if res.Commits != c.commits || db.Commits != c.commits {
			t.Fatalf("%v records in batches of %v: expected %v commits; got %v (db %v)", c.records, c.batch, c.commits, res.Commits, db.Commits)
		}
		if res.Inserted != c.records || len(db.Rows()) != c.records {
			t.Fatalf("expected %v rows inserted; got %v (db %v)", c.records, res.Inserted, len(db.Rows()))
		}
		if s := sw.RenderStats(); s.RowsInserted != c.records || s.Commits != c.commits || s.TotalRowsProcessed != c.records {
			t.Fatalf("unexpected stats %+v", s)
		}
	}
}

func TestTableUpsertIsIdempotent(t *testing.T) {
	db := shared.NewMockTargetConnection(address.ColIdPessoa)
	u, _, _ := newTestTableUpsert(db, 2)
	recs := testRecords(3)
	if _, err := u.Load(context.Background(), recs); err != nil {
		t.Fatal(err)
	}
	before := db.Rows()
	res, err := u.Load(context.Background(), recs)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 0 || res.Updated != 0 || res.Unchanged != 3 {
		t.Fatalf("expected all rows unchanged on the second run; got %+v", res)
	}
	if db.Updates != 0 || db.Inserts != 3 {
		t.Fatalf("expected no extra writes; got inserts=%v updates=%v", db.Inserts, db.Updates)
	}
	after := db.Rows()
	for k, row := range before {
		for col, v := range row {
			if after[k][col] != v {
				t.Fatalf("row %v column %v changed from %v to %v", k, col, v, after[k][col])
			}
		}
	}
	// Empty update timestamp and second landline are stored as NULL.
	if v := after["1"][address.ColDddTel2]; v != nil {
		t.Fatalf("expected NULL dddtel2; got %v", v)
	}
}

func TestTableUpsertUpdatesChangedRecord(t *testing.T) {
	db := shared.NewMockTargetConnection(address.ColIdPessoa)
	u, _, _ := newTestTableUpsert(db, 10)
	if _, err := u.Load(context.Background(), []UpsertRecord{testRecord("42", "Rua A")}); err != nil {
		t.Fatal(err)
	}
	res, err := u.Load(context.Background(), []UpsertRecord{testRecord("42", "Rua B")})
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 1 || res.Inserted != 0 {
		t.Fatalf("expected 1 update; got %+v", res)
	}
	rows := db.Rows()
	if len(rows) != 1 || rows["42"][address.ColEnderecoRua] != "Rua B" || rows["42"][address.ColIdPessoa] != "42" {
		t.Fatalf("expected the stored address to change with the key preserved; got %v", rows)
	}
}

func TestTableUpsertRewritesSecondLandline(t *testing.T) {
	db := shared.NewMockTargetConnection(address.ColIdPessoa)
	u, _, _ := newTestTableUpsert(db, 10)
	rec := testRecord("7", "Rua A")
	rec.DddTel2 = "21"
	rec.Telefone2 = "22223333"
	for i := 0; i < 2; i++ {
		if _, err := u.Load(context.Background(), []UpsertRecord{rec}); err != nil {
			t.Fatal(err)
		}
	}
	if db.Inserts != 1 || db.Updates != 1 {
		t.Fatalf("expected 1 insert then 1 update; got inserts=%v updates=%v", db.Inserts, db.Updates)
	}
	if row := db.Rows()["7"]; row[address.ColTelefone2] != "22223333" {
		t.Fatalf("expected telefone2 to be stored; got %v", row)
	}
}

func TestTableUpsertContinuesAfterFailedRow(t *testing.T) {
	db := shared.NewMockTargetConnection(address.ColIdPessoa)
	db.FailOn = func(stmt string, args []interface{}) error {
		if strings.HasPrefix(stmt, "insert") && args[0] == "3" {
			return errors.New("value too long for type character varying(8)")
		}
		return nil
	}
	u, sw, logs := newTestTableUpsert(db, 10)
	res, err := u.Load(context.Background(), testRecords(5))
	if err != nil {
		t.Fatal(err)
	}
	// Rows 1 and 2 are lost to the rollback; rows 4 and 5 are committed in a fresh transaction.
	expected := LoadResult{Read: 5, Inserted: 2, Failed: 1, Discarded: 2, Commits: 1}
	if res != expected {
		t.Fatalf("expected %+v; got %+v", expected, res)
	}
	rows := db.Rows()
	if len(rows) != 2 || rows["4"] == nil || rows["5"] == nil {
		t.Fatalf("expected rows 4 and 5 stored; got %v", rows)
	}
	if db.Rollbacks != 1 || db.Begins != 2 {
		t.Fatalf("expected 1 rollback and 2 begins; got %v and %v", db.Rollbacks, db.Begins)
	}
	if !strings.Contains(logs(), "Error on record 3 (key=3)") {
		t.Fatalf("expected row error log; got %v", logs())
	}
	if s := sw.RenderStats(); s.RowsFailed != 1 || s.RowsDiscarded != 2 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestTableUpsertLogsRecordNumberAcrossBatches(t *testing.T) {
	db := shared.NewMockTargetConnection(address.ColIdPessoa)
	db.FailOn = func(stmt string, args []interface{}) error {
		if strings.HasPrefix(stmt, "select") && args[0] == "5" {
			return errors.New("canceling statement due to statement timeout")
		}
		return nil
	}
	u, _, logs := newTestTableUpsert(db, 2)
	res, err := u.Load(context.Background(), testRecords(6))
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 5 || res.Failed != 1 || res.Commits != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if !strings.Contains(logs(), "Error on record 5 (key=5)") {
		t.Fatalf("expected the record number to count across batches; got %v", logs())
	}
}

func TestTableUpsertTransactionFailures(t *testing.T) {
	db := shared.NewMockTargetConnection(address.ColIdPessoa)
	db.CommitErr = errors.New("could not serialize access")
	u, _, _ := newTestTableUpsert(db, 10)
	if _, err := u.Load(context.Background(), testRecords(2)); err == nil {
		t.Fatal("expected commit failure to propagate")
	}
	if len(db.Rows()) != 0 {
		t.Fatal("expected nothing committed")
	}

	db = shared.NewMockTargetConnection(address.ColIdPessoa)
	db.BeginErr = errors.New("too many connections")
	u, _, _ = newTestTableUpsert(db, 10)
	if _, err := u.Load(context.Background(), testRecords(2)); err == nil {
		t.Fatal("expected begin failure to propagate")
	}
}

func TestTableUpsertCancelled(t *testing.T) {
	db := shared.NewMockTargetConnection(address.ColIdPessoa)
	u, _, _ := newTestTableUpsert(db, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := u.Load(ctx, testRecords(3)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled; got %v", err)
	}
	if len(db.Rows()) != 0 || db.Rollbacks != 1 {
		t.Fatalf("expected the batch to be rolled back; got rows=%v rollbacks=%v", len(db.Rows()), db.Rollbacks)
	}
}
