package actions

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/relloyd/addrsync/address"
	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/logger"
	"github.com/relloyd/addrsync/rdbms"
	"github.com/relloyd/addrsync/rdbms/shared"
	"github.com/relloyd/addrsync/rdbms/shared/mocks"
)

var (
	testSource = &shared.ConnectionDetails{Type: constants.ConnectionTypeOracle, LogicalName: "source"}
	testTarget = &shared.ConnectionDetails{Type: constants.ConnectionTypePostgres, LogicalName: "target"}
)

func newTestSyncConfig(t *testing.T) (*AddressSyncConfig, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	log, err := logger.New(logger.Options{Service: constants.AppName, Level: "info", Console: buf})
	if err != nil {
		t.Fatal(err)
	}
	return &AddressSyncConfig{
		Log:               log,
		SourceConnection:  testSource,
		TargetConnection:  testTarget,
		TargetSchemaTable: rdbms.NewSchemaTable(constants.TargetSchemaDefault, constants.TargetTableDefault),
		CommitBatchSize:   2,
	}, buf
}

// stubConnections makes RunAddressSync use src and tgt, restoring the real opener when the test ends.
func stubConnections(t *testing.T, src shared.Connector, srcErr error, tgt shared.Connector, tgtErr error) {
	orig := openDbConnection
	t.Cleanup(func() { openDbConnection = orig })
	openDbConnection = func(ctx context.Context, log logger.Logger, c shared.ConnectionDetails, opts rdbms.ConnectionOptions) (shared.Connector, error) {
		switch c.LogicalName {
		case testSource.LogicalName:
			return src, srcErr
		case testTarget.LogicalName:
			return tgt, tgtErr
		}
		t.Fatalf("unexpected connection %v", c.LogicalName)
		return nil, nil
	}
}

func sourceRow(id string, street string) []interface{} {
	return []interface{}{id, nil, street, "10", nil, "Centro", "3550308", "01001000", "11", "33334444",
		nil, nil, "11", "999998888", "a@x.com"}
}

func newTestSource(rows ...[]interface{}) *shared.MockSourceConnection {
	return &shared.MockSourceConnection{
		Cols: []string{"IDPESSOA", "DTATUALIZACAO", "ENDERECORUA", "ENDERECONUMERO", "ENDERECOCOMPLEMENTO",
			"ENDERECABAIRRO", "CDCIDADE", "CEP", "DDDTEL1", "TELEFONE1", "DDDTEL2", "TELEFONE2", "DDDCEL", "CELULAR", "EMAILS"},
		Data: rows,
	}
}

func TestRunAddressSync(t *testing.T) {
	src := newTestSource(sourceRow("1", "Rua A"), sourceRow("2", " Rua B "), sourceRow("3", "Rua C"))
	tgt := shared.NewMockTargetConnection(address.ColIdPessoa)
	stubConnections(t, src, nil, tgt, nil)
	cfg, logs := newTestSyncConfig(t)
	res, err := RunAddressSync(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Extracted != 3 || res.Inserted != 3 || res.Commits != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.RunId == "" || !strings.Contains(logs.String(), "run="+res.RunId) {
		t.Fatalf("expected run id %q in logs", res.RunId)
	}
	if !src.Closed || !tgt.Closed {
		t.Fatal("expected both connections to be closed")
	}
	for _, msg := range []string{"Address sync started", "connections closed", "Address sync finished in"} {
		if !strings.Contains(logs.String(), msg) {
			t.Fatalf("expected log message %q in: %v", msg, logs.String())
		}
	}
	if len(tgt.DDL) != 1 || !strings.Contains(tgt.DDL[0], "public.endereco") {
		t.Fatalf("expected DDL for public.endereco; got %v", tgt.DDL)
	}
	if rows := tgt.Rows(); rows["2"][address.ColEnderecoRua] != "Rua B" {
		t.Fatalf("expected normalised street; got %v", rows["2"])
	}
	// Second run on unchanged data writes nothing.
	src.Closed, tgt.Closed = false, false
	res, err = RunAddressSync(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Unchanged != 3 || res.Inserted != 0 || res.Updated != 0 || len(tgt.Rows()) != 3 {
		t.Fatalf("expected an idempotent second run; got %+v", res)
	}
}

func TestRunAddressSyncNoRows(t *testing.T) {
	src := newTestSource()
	tgt := shared.NewMockTargetConnection(address.ColIdPessoa)
	stubConnections(t, src, nil, tgt, nil)
	cfg, logs := newTestSyncConfig(t)
	res, err := RunAddressSync(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if res.Read != 0 || tgt.Inserts != 0 || tgt.Updates != 0 || tgt.Begins != 1 {
		t.Fatalf("expected only the DDL transaction; got %+v begins=%v", res, tgt.Begins)
	}
	if !strings.Contains(logs.String(), "no records to insert or update") {
		t.Fatal("expected a warning about zero records")
	}
}

func TestRunAddressSyncExtractFailure(t *testing.T) {
	src := &shared.MockSourceConnection{QueryErr: errors.New("ORA-00942: table or view does not exist")}
	tgt := shared.NewMockTargetConnection(address.ColIdPessoa)
	stubConnections(t, src, nil, tgt, nil)
	cfg, _ := newTestSyncConfig(t)
	if _, err := RunAddressSync(context.Background(), cfg); err != nil {
		t.Fatalf("expected the extract failure to be logged only; got %v", err)
	}
	cfg.FailOnExtractError = true
	if _, err := RunAddressSync(context.Background(), cfg); err == nil {
		t.Fatal("expected the extract failure to be returned")
	}
	if !src.Closed || !tgt.Closed {
		t.Fatal("expected both connections to be closed")
	}
}

func TestRunAddressSyncTargetOpenFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	src := mocks.NewMockConnector(ctrl)
	src.EXPECT().Close().Times(1)
	stubConnections(t, src, nil, nil, errors.New("connection refused"))
	cfg, _ := newTestSyncConfig(t)
	_, err := RunAddressSync(context.Background(), cfg)
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected target connection error; got %v", err)
	}
}

func TestRunAddressSyncSourceOpenFailure(t *testing.T) {
	stubConnections(t, nil, rdbms.ErrDriverNotAvailable, nil, nil)
	cfg, _ := newTestSyncConfig(t)
	if _, err := RunAddressSync(context.Background(), cfg); !errors.Is(err, rdbms.ErrDriverNotAvailable) {
		t.Fatalf("expected ErrDriverNotAvailable; got %v", err)
	}
}

func TestRunAddressSyncDdlFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	src := mocks.NewMockConnector(ctrl) // no queries expected
	src.EXPECT().Close().Times(1)
	tgt := mocks.NewMockConnector(ctrl)
	tgt.EXPECT().BeginTx(gomock.Any()).Return(nil, errors.New("the database system is shutting down"))
	tgt.EXPECT().Close().Times(1)
	stubConnections(t, src, nil, tgt, nil)
	cfg, logs := newTestSyncConfig(t)
	if _, err := RunAddressSync(context.Background(), cfg); err == nil {
		t.Fatal("expected DDL failure to propagate")
	}
	if !strings.Contains(logs.String(), "connections closed") {
		t.Fatal("expected cleanup to be logged")
	}
}

func TestRunAddressSyncCommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	src := newTestSource(sourceRow("1", "Rua A"))
	tgt := mocks.NewMockConnector(ctrl)
	ddlTx := mocks.NewMockTransacter(ctrl)
	loadTx := mocks.NewMockTransacter(ctrl)
	gomock.InOrder(
		tgt.EXPECT().BeginTx(gomock.Any()).Return(ddlTx, nil),
		tgt.EXPECT().GetDmlGenerator().Return(shared.NewDmlGenerator(shared.BindStyleDollar)),
		tgt.EXPECT().BeginTx(gomock.Any()).Return(loadTx, nil),
	)
	ddlTx.EXPECT().ExecContext(gomock.Any(), gomock.Any()).Return(shared.MockResult{}, nil)
	ddlTx.EXPECT().Commit().Return(nil)
	loadTx.EXPECT().QueryContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(&shared.MockRows{}, nil)
	loadTx.EXPECT().ExecContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(shared.MockResult{Affected: 1}, nil)
	loadTx.EXPECT().Commit().Return(errors.New("could not serialize access due to concurrent update"))
	tgt.EXPECT().Close()
	stubConnections(t, src, nil, tgt, nil)
	cfg, _ := newTestSyncConfig(t)
	if _, err := RunAddressSync(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "unable to commit") {
		t.Fatalf("expected commit failure; got %v", err)
	}
	if !src.Closed {
		t.Fatal("expected source to be closed")
	}
}

func TestRunAddressSyncValidation(t *testing.T) {
	stubConnections(t, nil, errors.New("should not connect"), nil, errors.New("should not connect"))
	cfg, _ := newTestSyncConfig(t)
	cfg.TargetSchemaTable = rdbms.SchemaTable{SchemaTable: "public.endereco; drop table x"}
	if _, err := RunAddressSync(context.Background(), cfg); err == nil || !strings.Contains(err.Error(), "invalid target table") {
		t.Fatalf("expected invalid target table error; got %v", err)
	}
	cfg, _ = newTestSyncConfig(t)
	cfg.CommitBatchSize = 0
	if _, err := RunAddressSync(context.Background(), cfg); err == nil {
		t.Fatal("expected batch size error")
	}
	cfg, _ = newTestSyncConfig(t)
	cfg.TargetConnection = nil
	if _, err := RunAddressSync(context.Background(), cfg); err == nil {
		t.Fatal("expected missing connection error")
	}
}

func TestRunAddressSyncDryRun(t *testing.T) {
	stubConnections(t, nil, errors.New("should not connect"), nil, errors.New("should not connect"))
	cfg, _ := newTestSyncConfig(t)
	out := &bytes.Buffer{}
	cfg.Out = out
	cfg.DryRun = true
	cfg.TargetSchemaTable = rdbms.NewSchemaTable("", "addr")
	if _, err := RunAddressSync(context.Background(), cfg); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "CREATE TABLE IF NOT EXISTS addr (") || !strings.Contains(out.String(), address.SourceQuery) {
		t.Fatalf("unexpected dry run output: %v", out.String())
	}
}
