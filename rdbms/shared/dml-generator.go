package shared

import (
	"fmt"
	"strings"

	om "github.com/cevaris/ordered_map"
	h "github.com/relloyd/addrsync/helper"
	"github.com/relloyd/addrsync/logger"
)

// Bind styles understood by DmlGeneratorBind.
const (
	BindStyleDollar = "$" // PostgreSQL: $1, $2, ...
	BindStyleColon  = ":" // Oracle: :1, :2, ...
)

type SqlStatementGeneratorConfig struct {
	Log             logger.Logger
	OutputSchema    string
	SchemaSeparator string
	OutputTable     string
	TargetKeyCols   *om.OrderedMap // ordered map of: key = record field name; value = target table column name
	TargetOtherCols *om.OrderedMap // ordered map of: key = record field name; value = target table column name
}

// DmlGeneratorBind produces single row statements that use numbered bind variables.
type DmlGeneratorBind struct {
	BindStyle string
}

func NewDmlGenerator(bindStyle string) *DmlGeneratorBind {
	return &DmlGeneratorBind{BindStyle: bindStyle}
}

// sqlStmt implements SqlStmtGenerator.
type sqlStmt struct {
	stmt       string
	bindFields []string
}

func (s *sqlStmt) GetStatement() string {
	return s.stmt
}

func (s *sqlStmt) GetBindFields() []string {
	return s.bindFields
}

// NewInsertGenerator returns:
// insert into <schema>.<table> (<key cols>, <other cols>) values (<binds>)
func (g *DmlGeneratorBind) NewInsertGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator {
	fixSqlStatementGeneratorConfig(cfg)
	fields, cols := mustGetFieldsAndColumns(cfg.TargetKeyCols, cfg.TargetOtherCols)
	binds := make([]string, len(cols))
	for idx := range cols {
		binds[idx] = g.bind(idx + 1)
	}
	s := &sqlStmt{
		stmt: fmt.Sprintf("insert into %v%v%v (%v) values (%v)",
			cfg.OutputSchema, cfg.SchemaSeparator, cfg.OutputTable,
			strings.Join(cols, ", "), strings.Join(binds, ", ")),
		bindFields: fields,
	}
	cfg.Log.Debug("setup INSERT generator with SQL: ", s.stmt)
	return s
}

// NewUpdateGenerator returns:
// update <schema>.<table> set <col> = <bind>, ... where <key col> = <bind> and ...
// The other columns are bound first, followed by the keys.
func (g *DmlGeneratorBind) NewUpdateGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator {
	fixSqlStatementGeneratorConfig(cfg)
	otherFields, otherCols := mustGetFieldsAndColumns(cfg.TargetOtherCols)
	keyFields, keyCols := mustGetFieldsAndColumns(cfg.TargetKeyCols)
	idx := 1
	set := make([]string, len(otherCols))
	for i, c := range otherCols {
		set[i] = fmt.Sprintf("%v = %v", c, g.bind(idx))
		idx++
	}
	s := &sqlStmt{
		stmt: fmt.Sprintf("update %v%v%v set %v where %v",
			cfg.OutputSchema, cfg.SchemaSeparator, cfg.OutputTable,
			strings.Join(set, ", "), g.keyPredicate(keyCols, idx)),
		bindFields: append(otherFields, keyFields...),
	}
	cfg.Log.Debug("setup UPDATE generator with SQL: ", s.stmt)
	return s
}

// NewSelectByKeyGenerator returns:
// select <other cols> from <schema>.<table> where <key col> = <bind> and ...
func (g *DmlGeneratorBind) NewSelectByKeyGenerator(cfg *SqlStatementGeneratorConfig) SqlStmtGenerator {
	fixSqlStatementGeneratorConfig(cfg)
	_, otherCols := mustGetFieldsAndColumns(cfg.TargetOtherCols)
	keyFields, keyCols := mustGetFieldsAndColumns(cfg.TargetKeyCols)
	s := &sqlStmt{
		stmt: fmt.Sprintf("select %v from %v%v%v where %v",
			strings.Join(otherCols, ", "),
			cfg.OutputSchema, cfg.SchemaSeparator, cfg.OutputTable,
			g.keyPredicate(keyCols, 1)),
		bindFields: keyFields,
	}
	cfg.Log.Debug("setup SELECT generator with SQL: ", s.stmt)
	return s
}

func (g *DmlGeneratorBind) bind(n int) string {
	return fmt.Sprintf("%v%v", g.BindStyle, n)
}

func (g *DmlGeneratorBind) keyPredicate(keyCols []string, firstBind int) string {
	p := make([]string, len(keyCols))
	for i, c := range keyCols {
		p[i] = fmt.Sprintf("%v = %v", c, g.bind(firstBind+i))
	}
	return strings.Join(p, " and ")
}

func fixSqlStatementGeneratorConfig(cfg *SqlStatementGeneratorConfig) {
	if cfg.OutputTable == "" {
		cfg.Log.Panic("Error, missing output table name.")
	}
	if cfg.TargetKeyCols == nil || cfg.TargetKeyCols.Len() == 0 {
		cfg.Log.Panic("Error, missing key columns for table ", cfg.OutputTable)
	}
	if cfg.OutputSchema == "" {
		cfg.SchemaSeparator = ""
		cfg.Log.Debug("No output schema supplied; setting a blank separator.")
	} else {
		cfg.SchemaSeparator = "."
	}
}

// mustGetFieldsAndColumns returns the keys and values of the ordered maps, in order.
func mustGetFieldsAndColumns(maps ...*om.OrderedMap) (fields []string, cols []string) {
	for _, m := range maps {
		if m == nil {
			continue
		}
		iter := m.IterFunc()
		for kv, ok := iter(); ok; kv, ok = iter() {
			fields = append(fields, fmt.Sprintf("%v", kv.Key))
		}
		c, err := h.OrderedMapValuesToStringSlice(m)
		if err != nil {
			panic(err)
		}
		cols = append(cols, c...)
	}
	return
}
