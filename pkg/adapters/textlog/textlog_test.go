package textlog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/adapters/textlog"
	"github.com/aretw0/lattice/pkg/core"
)

func replay(t *testing.T, l core.Log) []core.Transaction {
	t.Helper()
	var got []core.Transaction
	for tx, err := range l.Replay(context.Background()) {
		require.NoError(t, err)
		got = append(got, tx)
	}
	return got
}

func TestLog_AppendReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.csv")
	l, err := textlog.Open(textlog.Config{Path: path, Sync: true})
	require.NoError(t, err)
	defer l.Close()

	history := []core.Transaction{
		core.Create{},
		core.Set{Object: 1, Key: "proffesion", Value: "developer \"lol\"\t\n\"kk\""},
		core.Set{Object: 1, Key: "a,b", Value: ""},
		core.Link{Object: 1, Key: "self", Other: 1},
	}
	for _, tx := range history {
		require.NoError(t, l.Append(context.Background(), tx))
	}

	assert.Equal(t, history, replay(t, l))
}

func TestMarshal_Format(t *testing.T) {
	line, err := textlog.Marshal(core.Set{Object: 4, Key: "name", Value: "amit"})
	require.NoError(t, err)
	assert.Equal(t, "1,4,name,amit,0\n", string(line))

	line, err = textlog.Marshal(core.Link{Object: 4, Key: "child", Other: 9})
	require.NoError(t, err)
	assert.Equal(t, "3,4,child,,9\n", string(line))
}

func TestReplay_ReadsQuotedRecords(t *testing.T) {
	// Records written with every string field quoted.
	path := filepath.Join(t.TempDir(), "db.csv")
	content := "0,0,\"\",\"\",0\n1,1,\"name\",\"timothy \"\"the greate\"\" bourn\",0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	l, err := textlog.Open(textlog.Config{Path: path})
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, []core.Transaction{
		core.Create{},
		core.Set{Object: 1, Key: "name", Value: "timothy \"the greate\" bourn"},
	}, replay(t, l))
}

func TestReplay_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.csv")
	require.NoError(t, os.WriteFile(path, []byte("7,1,k,v,0\n"), 0644))

	l, err := textlog.Open(textlog.Config{Path: path})
	require.NoError(t, err)
	defer l.Close()

	var lastErr error
	for _, err := range l.Replay(context.Background()) {
		lastErr = err
	}
	assert.ErrorIs(t, lastErr, core.ErrMalformedTransaction)
}

func TestReplay_TornTail(t *testing.T) {
	tests := []struct {
		name string
		tail string
	}{
		{"complete fields without newline", "1,1,k,v,1"},
		{"missing fields", "1,1,na"},
		{"open quote", "1,1,k,\"half"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "db.csv")
			require.NoError(t, os.WriteFile(path, []byte("0,0,,,0\n"+tt.tail), 0644))

			l, err := textlog.Open(textlog.Config{Path: path})
			require.NoError(t, err)
			defer l.Close()

			var lastErr error
			for _, err := range l.Replay(context.Background()) {
				if err != nil {
					lastErr = err
				}
			}
			assert.ErrorIs(t, lastErr, core.ErrStorageIO)
		})
	}
}

func TestReplay_QuotedNewlineAtEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.csv")
	l, err := textlog.Open(textlog.Config{Path: path})
	require.NoError(t, err)
	defer l.Close()

	tx := core.Set{Object: 1, Key: "bio", Value: "ends with\n"}
	require.NoError(t, l.Append(context.Background(), tx))
	assert.Equal(t, []core.Transaction{tx}, replay(t, l))
}
