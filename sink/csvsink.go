package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
)

// CSV writes one file per table under a directory (dir/<table>.csv,
// header row plus generated rows) and, since a plain CSV file has no update
// semantics, resolves deferred updates in memory before the file for that
// table is written -- requiring WriteDeferredUpdate to be buffered ahead of
// Finalize (spec.md §5 "csv").
type CSV struct {
	dir     string
	tables  map[string]TableBatch
	order   []string
	pending map[string][]UpdateBatch
}

func NewCSV(dir string) *CSV {
	return &CSV{
		dir:     dir,
		tables:  map[string]TableBatch{},
		pending: map[string][]UpdateBatch{},
	}
}

func (s *CSV) WriteTableBatch(batch TableBatch) error {
	s.order = append(s.order, batch.Table)
	s.tables[batch.Table] = batch
	return nil
}

func (s *CSV) WriteDeferredUpdate(batch UpdateBatch) error {
	s.pending[batch.Table] = append(s.pending[batch.Table], batch)
	return nil
}

func (s *CSV) Finalize() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create csv output dir: %w", err)
	}
	for _, table := range s.order {
		batch := s.tables[table]
		for _, upd := range s.pending[table] {
			applyUpdates(batch, upd)
		}
		if err := s.writeFile(batch); err != nil {
			return err
		}
	}
	return nil
}

func (s *CSV) writeFile(batch TableBatch) error {
	path := filepath.Join(s.dir, batch.Table+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(batch.Columns); err != nil {
		return err
	}
	for _, row := range batch.Rows {
		record := make([]string, len(batch.Columns))
		for i, col := range batch.Columns {
			record[i] = csvField(row[col])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func applyUpdates(batch TableBatch, upd UpdateBatch) {
	for _, u := range upd.Updates {
		for _, row := range batch.Rows {
			if rowMatchesKey(row, u.Key) {
				for k, v := range u.Values {
					row[k] = v
				}
				break
			}
		}
	}
}

func csvField(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
