package sink

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/seedkit/seedkit/schema"
)

// SQLInsert writes every batch as a standalone, multi-row INSERT statement
// and every deferred update as an UPDATE ... WHERE keyed on the target
// row's own primary key (spec.md §5 "sql-insert").
type SQLInsert struct {
	w   *bufio.Writer
	buf io.Writer
}

// NewSQLInsert wraps w with buffered output, matching the teacher's
// buffered-dump-writer pattern in cmd/dump.
func NewSQLInsert(w io.Writer) *SQLInsert {
	return &SQLInsert{w: bufio.NewWriter(w), buf: w}
}

func (s *SQLInsert) WriteTableBatch(batch TableBatch) error {
	if len(batch.Rows) == 0 {
		return nil
	}
	fmt.Fprintf(s.w, "INSERT INTO %s (%s) VALUES\n", quoteIdent(batch.Table), quoteColumns(batch.Columns))
	for i, row := range batch.Rows {
		values := make([]string, len(batch.Columns))
		for j, col := range batch.Columns {
			values[j] = sqlLiteral(row[col])
		}
		sep := ","
		if i == len(batch.Rows)-1 {
			sep = ";"
		}
		fmt.Fprintf(s.w, "  (%s)%s\n", strings.Join(values, ", "), sep)
	}
	return s.w.Flush()
}

func (s *SQLInsert) WriteDeferredUpdate(batch UpdateBatch) error {
	for _, upd := range batch.Updates {
		sets := make([]string, 0, len(batch.Columns))
		for _, c := range batch.Columns {
			sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(c), sqlLiteral(upd.Values[c])))
		}
		wheres := sortedKeyClauses(upd.Key)
		fmt.Fprintf(s.w, "UPDATE %s SET %s WHERE %s;\n", quoteIdent(batch.Table), strings.Join(sets, ", "), strings.Join(wheres, " AND "))
	}
	return s.w.Flush()
}

func (s *SQLInsert) Finalize() error { return s.w.Flush() }

func sortedKeyClauses(key map[string]interface{}) []string {
	cols := make([]string, 0, len(key))
	for c := range key {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	clauses := make([]string, len(cols))
	for i, c := range cols {
		clauses[i] = fmt.Sprintf("%s = %s", quoteIdent(c), sqlLiteral(key[c]))
	}
	return clauses
}

// quoteIdent only double-quotes identifiers that actually need it (reserved
// words, mixed case, non-lowercase-identifier characters), matching how
// pg_dump-style tooling renders a schema back to readable SQL.
func quoteIdent(name string) string {
	return schema.QuoteIdentifier(name)
}

func quoteColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// sqlLiteral renders a generated value as a SQL literal. nil becomes NULL;
// strings are single-quote-escaped; everything else uses fmt's default
// formatting, which covers the numeric and boolean values genColumn
// produces.
func sqlLiteral(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	switch val := v.(type) {
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
