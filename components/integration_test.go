//go:build integration

package components

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/relloyd/addrsync/constants"
	"github.com/relloyd/addrsync/rdbms"
	"github.com/relloyd/addrsync/rdbms/shared"
)

// Run with: ADDRSYNC_TEST_ORACLE_DSN=oracle://user/pass@//host:1521/service go test -tags integration ./components/
// The user needs CREATE TABLE. The source tables are created in its own schema and dropped afterwards.

var integrationSourceTables = []string{
	"TB1173_PESSOA (ID NUMBER PRIMARY KEY, IDPESSOA RAW(16))",
	"TB1121_ENDERECO (IDPESSOA RAW(16), ATUALIZACAO DATE, LOGRADOURO VARCHAR2(500), NUMERO VARCHAR2(15), " +
		"COMPLEMENTO VARCHAR2(500), BAIRRO VARCHAR2(300), CIDADE_ID NUMBER, CEP VARCHAR2(8))",
	"TB1152_TELEFONE (ID NUMBER, PESSOA_ID NUMBER, DDD VARCHAR2(4), NUMERO VARCHAR2(18), TIPOTELEFONE VARCHAR2(20))",
	"TB1120_EMAIL (PESSOA_ID NUMBER, EMAIL VARCHAR2(200))",
	"TB1124_FALECIMENTO (IDPESSOA RAW(16))",
}

var integrationSeed = []string{
	"INSERT INTO TB1173_PESSOA VALUES (1, HEXTORAW('0A01'))",
	"INSERT INTO TB1173_PESSOA VALUES (2, HEXTORAW('0A02'))",
	"INSERT INTO TB1121_ENDERECO VALUES (HEXTORAW('0A01'), SYSDATE, ' Rua A ', '10', NULL, 'Centro', 3550308, '01001000')",
	"INSERT INTO TB1121_ENDERECO VALUES (HEXTORAW('0A02'), SYSDATE, 'Rua B', '20', NULL, 'Centro', 3550308, '01001000')",
	"INSERT INTO TB1152_TELEFONE VALUES (1, 1, '11', '33334444', 'CASA')",
	"INSERT INTO TB1152_TELEFONE VALUES (2, 1, '11', '999998888', 'CELULAR')",
	"INSERT INTO TB1120_EMAIL VALUES (1, 'b@x.com')",
	"INSERT INTO TB1120_EMAIL VALUES (1, 'a@x.com')",
	"INSERT INTO TB1124_FALECIMENTO VALUES (HEXTORAW('0A02'))",
}

func openIntegrationSource(t *testing.T) shared.Connector {
	dsn := os.Getenv("ADDRSYNC_TEST_ORACLE_DSN")
	if dsn == "" {
		t.Skip("ADDRSYNC_TEST_ORACLE_DSN is not set")
	}
	log, _ := newTestLogger()
	db, err := rdbms.OpenDbConnection(context.Background(), log, shared.ConnectionDetails{
		Type:        constants.ConnectionTypeOracle,
		LogicalName: "integration",
		Data:        map[string]string{shared.DefaultDsnConnectionKeyNames.Dsn: dsn},
	}, rdbms.ConnectionOptions{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(db.Close)
	return db
}

func TestTableInputExcludesDeceasedOnOracle(t *testing.T) {
	ctx := context.Background()
	db := openIntegrationSource(t)
	for _, tbl := range integrationSourceTables {
		if _, err := db.ExecContext(ctx, "CREATE TABLE "+tbl); err != nil {
			t.Fatal(err)
		}
		name := strings.Fields(tbl)[0]
		t.Cleanup(func() { _, _ = db.ExecContext(context.Background(), "DROP TABLE "+name+" PURGE") })
	}
	for _, stmt := range integrationSeed {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatal(err)
		}
	}
	ti, _ := newTestTableInput(db, true)
	rows, err := ti.Extract(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the living person to be extracted; got %v rows: %v", len(rows), rows)
	}
	r := rows[0]
	if r[0] != "0A01" {
		t.Fatalf("expected person 0A01; got %q", r[0])
	}
	if r[2] != "Rua A" || r[13] != "999998888" || r[14] != "a@x.com; b@x.com" {
		t.Fatalf("unexpected row %v", r)
	}
}
