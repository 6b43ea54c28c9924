package sink_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedkit/seedkit/sink"
)

func TestJSON_MergesDeferredUpdates(t *testing.T) {
	var buf bytes.Buffer
	s := sink.NewJSON(&buf)

	require.NoError(t, s.WriteTableBatch(sink.TableBatch{
		Table:   "departments",
		Columns: []string{"id", "head_id"},
		Rows: []map[string]interface{}{
			{"id": float64(1), "head_id": nil},
		},
	}))
	require.NoError(t, s.WriteDeferredUpdate(sink.UpdateBatch{
		Table:   "departments",
		Columns: []string{"head_id"},
		Parent:  "employees",
		Updates: []sink.RowUpdate{
			{Key: map[string]interface{}{"id": float64(1)}, Values: map[string]interface{}{"head_id": float64(9)}},
		},
	}))
	require.NoError(t, s.Finalize())

	var doc map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Equal(t, float64(9), doc["departments"][0]["head_id"])
}
