package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending(t *testing.T) {
	fsys := fstest.MapFS{
		"010_j.up.sql":   {Data: []byte("j")},
		"002_b.up.sql":   {Data: []byte("b")},
		"001_a.up.sql":   {Data: []byte("a")},
		"002_b.down.sql": {Data: []byte("drop b")},
		"readme.up.sql":  {Data: []byte("skip")},
	}

	tests := []struct {
		name    string
		applied int
		want    []int
	}{
		{"fresh", 0, []int{1, 2, 10}},
		{"partly applied", 1, []int{2, 10}},
		{"numeric not lexical", 2, []int{10}},
		{"up to date", 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pending(fsys, tt.applied)
			require.NoError(t, err)
			var versions []int
			for _, m := range got {
				versions = append(versions, m.Version)
			}
			assert.Equal(t, tt.want, versions)
		})
	}
}

func TestPending_Embedded(t *testing.T) {
	got, err := Pending(FS, 0)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "001_history.up.sql", got[0].Name)
	assert.Contains(t, got[0].SQL, "CREATE TABLE IF NOT EXISTS history")
}
