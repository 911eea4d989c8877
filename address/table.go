package address

import (
	"fmt"

	om "github.com/cevaris/ordered_map"
	"github.com/relloyd/addrsync/helper"
)

// Destination column names.
const (
	ColIdPessoa            = "idpessoa"
	ColDtAtualizacao       = "dtatualizacao"
	ColEnderecoRua         = "enderecorua"
	ColEnderecoNumero      = "endereconumero"
	ColEnderecoComplemento = "enderecocomplemento"
	ColEnderecoBairro      = "enderecobairro"
	ColCdCidade            = "cdcidade"
	ColCep                 = "cep"
	ColDddTel1             = "dddtel1"
	ColTelefone1           = "telefone1"
	ColDddTel2             = "dddtel2"
	ColTelefone2           = "telefone2"
	ColDddCel              = "dddcel"
	ColCelular             = "celular"
	ColEmail               = "email"
	ColDtAtualizacaoEmail  = "dtatualizacaoemail"
)

// sourcedColumns are the non-key columns fed by SourceQuery, in query order.
var sourcedColumns = []string{
	ColDtAtualizacao,
	ColEnderecoRua,
	ColEnderecoNumero,
	ColEnderecoComplemento,
	ColEnderecoBairro,
	ColCdCidade,
	ColCep,
	ColDddTel1,
	ColTelefone1,
	ColDddTel2,
	ColTelefone2,
	ColDddCel,
	ColCelular,
	ColEmail,
}

const ddlTemplate = `CREATE TABLE IF NOT EXISTS %v (
    idpessoa character varying NOT NULL PRIMARY KEY,
    dtatualizacao character varying(200),
    enderecorua character varying(500),
    endereconumero character varying(15),
    enderecocomplemento character varying(500),
    enderecobairro character varying(300),
    cdcidade text,
    cep character varying(8),
    dddtel1 character varying(4),
    telefone1 character varying(18),
    dddtel2 character varying(4),
    telefone2 character varying(18),
    dddcel character varying(4),
    celular character varying(18),
    email character varying(500),
    dtatualizacaoemail character varying(25)
)`

// DDL returns the idempotent CREATE TABLE statement for schemaTable, i.e. [<schema>.]<table>.
func DDL(schemaTable string) string {
	return fmt.Sprintf(ddlTemplate, schemaTable)
}

// KeyCols maps the record key field to its column.
func KeyCols() *om.OrderedMap {
	return helper.StringSliceToOrderedMap([]string{ColIdPessoa})
}

// SourcedCols maps the 14 non-key fields written by insert and update to their columns.
func SourcedCols() *om.OrderedMap {
	return helper.StringSliceToOrderedMap(sourcedColumns)
}

// TrackedCols maps the 15 non-key columns used for change detection.
// It is SourcedCols plus dtatualizacaoemail, which nothing writes.
func TrackedCols() *om.OrderedMap {
	m := SourcedCols()
	m.Set(ColDtAtualizacaoEmail, ColDtAtualizacaoEmail)
	return m
}
