package components

import (
	"bytes"
	"fmt"

	"github.com/relloyd/addrsync/address"
	"github.com/relloyd/addrsync/logger"
)

// newTestLogger returns a logger whose output is captured in the returned buffer.
func newTestLogger() (*logger.LoggerImpl, *bytes.Buffer) {
	log := logger.NewLogger("addrsync-test", "info", false)
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	return log, buf
}

func testSourceRow(id string, street string) []interface{} {
	return []interface{}{[]byte(id), "2024-05-06 07:08:09", " " + street + " ", int64(10), nil, "Centro“", int64(3550308),
		"01001000", "11", "33334444", nil, nil, "11", "999998888", "a@x.com; b@x.com"}
}

func testRecords(n int) []UpsertRecord {
	recs := make([]UpsertRecord, 0, n)
	for i := 1; i <= n; i++ {
		recs = append(recs, testRecord(fmt.Sprintf("%v", i), "Rua A"))
	}
	return recs
}

func testRecord(id string, street string) address.Record {
	return address.Record{
		IdPessoa:      id,
		DtAtualizacao: "2024-05-06 07:08:09",
		EnderecoRua:   street,
		CdCidade:      "3550308",
		Cep:           "01001000",
		DddTel1:       "11",
		Telefone1:     "33334444",
		Email:         "a@x.com",
	}
}
