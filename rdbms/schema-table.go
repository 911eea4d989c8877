package rdbms

import (
	"regexp"
	"strings"
)

var reIdentifier = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_$]*|"[^"]+")$`)

// SchemaTable holds a [<schema>.]<table> name as supplied by the user.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<table>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{table}
	}
	return SchemaTable{schema + "." + table}
}

// split returns the schema and table parts.
// A leading double quoted name is taken whole, so dots inside quotes never separate schema from table.
func (st *SchemaTable) split() (schema string, table string) {
	s := st.SchemaTable
	if strings.HasPrefix(s, `"`) {
		i := strings.Index(s[1:], `"`) + 1
		if i > 0 && i+1 < len(s) && s[i+1] == '.' { // if the quoted name is followed by a dot...
			return s[:i+1], s[i+2:]
		}
		return "", s // "random.table" or a quoted name we can't split
	}
	i := strings.Index(s, ".")
	if i < 0 { // if we have just a table...
		return "", s
	}
	return s[:i], s[i+1:]
}

func (st *SchemaTable) GetTable() string {
	_, t := st.split()
	return t
}

func (st *SchemaTable) GetSchema() string {
	sch, _ := st.split()
	return sch
}

// Valid returns true when the schema (if any) and table are plain or double quoted identifiers.
// Names are interpolated into DDL and DML so nothing else is accepted.
func (st *SchemaTable) Valid() bool {
	t := st.GetTable()
	if !reIdentifier.MatchString(t) {
		return false
	}
	if s := st.GetSchema(); s != "" && !reIdentifier.MatchString(s) {
		return false
	}
	return true
}

func (st *SchemaTable) String() string {
	return st.SchemaTable
}
