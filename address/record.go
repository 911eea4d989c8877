package address

import (
	"database/sql"

	"github.com/pkg/errors"
)

// Record is one person's address and contact details, normalised.
type Record struct {
	IdPessoa            string
	DtAtualizacao       string
	EnderecoRua         string
	EnderecoNumero      string
	EnderecoComplemento string
	EnderecoBairro      string
	CdCidade            string
	Cep                 string
	DddTel1             string
	Telefone1           string
	DddTel2             string
	Telefone2           string
	DddCel              string
	Celular             string
	Email               string
}

// NewRecordFromRow builds a Record from a normalised row in SourceQuery column order.
func NewRecordFromRow(row []string) (Record, error) {
	if len(row) != NumSourceColumns {
		return Record{}, errors.Errorf("expected %v columns, got %v", NumSourceColumns, len(row))
	}
	return Record{
		IdPessoa:            row[0],
		DtAtualizacao:       row[1],
		EnderecoRua:         row[2],
		EnderecoNumero:      row[3],
		EnderecoComplemento: row[4],
		EnderecoBairro:      row[5],
		CdCidade:            row[6],
		Cep:                 row[7],
		DddTel1:             row[8],
		Telefone1:           row[9],
		DddTel2:             row[10],
		Telefone2:           row[11],
		DddCel:              row[12],
		Celular:             row[13],
		Email:               row[14],
	}, nil
}

// NewRecordsFromRows converts all rows or returns the first error.
func NewRecordsFromRows(rows [][]string) ([]Record, error) {
	retval := make([]Record, 0, len(rows))
	for idx, row := range rows {
		r, err := NewRecordFromRow(row)
		if err != nil {
			return nil, errors.Wrapf(err, "row %v", idx+1)
		}
		retval = append(retval, r)
	}
	return retval, nil
}

// Key returns the person id.
func (r Record) Key() string {
	return r.IdPessoa
}

// BindValue returns the value written to column field by insert and update.
// An empty update timestamp or second landline is written as NULL.
func (r Record) BindValue(field string) (interface{}, error) {
	switch field {
	case ColIdPessoa:
		return r.IdPessoa, nil
	case ColDtAtualizacao:
		return nullIfEmpty(r.DtAtualizacao), nil
	case ColEnderecoRua:
		return r.EnderecoRua, nil
	case ColEnderecoNumero:
		return r.EnderecoNumero, nil
	case ColEnderecoComplemento:
		return r.EnderecoComplemento, nil
	case ColEnderecoBairro:
		return r.EnderecoBairro, nil
	case ColCdCidade:
		return r.CdCidade, nil
	case ColCep:
		return r.Cep, nil
	case ColDddTel1:
		return r.DddTel1, nil
	case ColTelefone1:
		return r.Telefone1, nil
	case ColDddTel2:
		return nullIfEmpty(r.DddTel2), nil
	case ColTelefone2:
		return nullIfEmpty(r.Telefone2), nil
	case ColDddCel:
		return r.DddCel, nil
	case ColCelular:
		return r.Celular, nil
	case ColEmail:
		return r.Email, nil
	}
	return nil, errors.Errorf("unknown address field %q", field)
}

// Tracked returns the values compared against the stored row, in TrackedCols order.
// dddtel2 and telefone2 are always compared against NULL rather than the incoming values, so a person
// with a second landline is rewritten on every run. dtatualizacaoemail is never sourced so it is NULL too.
func (r Record) Tracked() []sql.NullString {
	str := func(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }
	dt := sql.NullString{}
	if r.DtAtualizacao != "" {
		dt = str(r.DtAtualizacao)
	}
	return []sql.NullString{
		dt,
		str(r.EnderecoRua),
		str(r.EnderecoNumero),
		str(r.EnderecoComplemento),
		str(r.EnderecoBairro),
		str(r.CdCidade),
		str(r.Cep),
		str(r.DddTel1),
		str(r.Telefone1),
		{}, // dddtel2
		{}, // telefone2
		str(r.DddCel),
		str(r.Celular),
		str(r.Email),
		{}, // dtatualizacaoemail
	}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
