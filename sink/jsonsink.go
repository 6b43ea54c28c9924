package sink

import (
	"encoding/json"
	"io"
)

// JSON writes the whole run as a single document: one array of row objects
// per table, plus the resolved deferred-update values merged directly into
// their target rows so the document needs no second pass to apply (spec.md
// §5 "json").
type JSONSink struct {
	w      io.Writer
	tables map[string][]map[string]interface{}
	order  []string
}

func NewJSON(w io.Writer) *JSONSink {
	return &JSONSink{w: w, tables: map[string][]map[string]interface{}{}}
}

func (s *JSONSink) WriteTableBatch(batch TableBatch) error {
	s.order = append(s.order, batch.Table)
	s.tables[batch.Table] = append(s.tables[batch.Table], batch.Rows...)
	return nil
}

// WriteDeferredUpdate finds each update's target row by matching every
// column in upd.Key against the already-buffered rows -- a linear scan, but
// one per deferred-update step rather than per row, and seed-data runs stay
// small enough that this never matters.
func (s *JSONSink) WriteDeferredUpdate(batch UpdateBatch) error {
	rows := s.tables[batch.Table]
	for _, upd := range batch.Updates {
		for _, row := range rows {
			if rowMatchesKey(row, upd.Key) {
				for k, v := range upd.Values {
					row[k] = v
				}
				break
			}
		}
	}
	return nil
}

func (s *JSONSink) Finalize() error {
	doc := make(map[string][]map[string]interface{}, len(s.order))
	for _, t := range s.order {
		doc[t] = s.tables[t]
	}
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func rowMatchesKey(row, key map[string]interface{}) bool {
	for k, v := range key {
		if row[k] != v {
			return false
		}
	}
	return true
}
