package sink_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedkit/seedkit/sink"
)

func TestCSV_WritesFilePerTableWithDeferredUpdatesApplied(t *testing.T) {
	dir := t.TempDir()
	s := sink.NewCSV(dir)

	require.NoError(t, s.WriteTableBatch(sink.TableBatch{
		Table:   "departments",
		Columns: []string{"id", "head_id"},
		Rows: []map[string]interface{}{
			{"id": 1, "head_id": nil},
		},
	}))
	require.NoError(t, s.WriteDeferredUpdate(sink.UpdateBatch{
		Table:   "departments",
		Columns: []string{"head_id"},
		Parent:  "employees",
		Updates: []sink.RowUpdate{
			{Key: map[string]interface{}{"id": 1}, Values: map[string]interface{}{"head_id": 4}},
		},
	}))
	require.NoError(t, s.Finalize())

	f, err := os.Open(filepath.Join(dir, "departments.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"id", "head_id"}, records[0])
	require.Equal(t, []string{"1", "4"}, records[1])
}
