package sink

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SQLCopy writes every batch as a COPY ... FROM stdin block in PostgreSQL's
// tab-separated text format, the bulk-load path spec.md §5 names as
// "sql-copy". Deferred updates have no COPY equivalent, so they fall back to
// plain UPDATE statements, same as SQLInsert.
type SQLCopy struct {
	w *bufio.Writer
}

func NewSQLCopy(w io.Writer) *SQLCopy {
	return &SQLCopy{w: bufio.NewWriter(w)}
}

func (s *SQLCopy) WriteTableBatch(batch TableBatch) error {
	if len(batch.Rows) == 0 {
		return nil
	}
	fmt.Fprintf(s.w, "COPY %s (%s) FROM stdin;\n", quoteIdent(batch.Table), quoteColumns(batch.Columns))
	for _, row := range batch.Rows {
		fields := make([]string, len(batch.Columns))
		for i, col := range batch.Columns {
			fields[i] = copyField(row[col])
		}
		fmt.Fprintln(s.w, strings.Join(fields, "\t"))
	}
	fmt.Fprintln(s.w, `\.`)
	return s.w.Flush()
}

func (s *SQLCopy) WriteDeferredUpdate(batch UpdateBatch) error {
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

func (s *SQLCopy) Finalize() error { return s.w.Flush() }

// copyField renders a value in COPY text format: \N for NULL, backslash
// escaping for tabs/newlines/backslashes within strings.
func copyField(v interface{}) string {
	if v == nil {
		return `\N`
	}
	switch val := v.(type) {
	case string:
		r := strings.NewReplacer("\\", `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)
		return r.Replace(val)
	case bool:
		if val {
			return "t"
		}
		return "f"
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
