package memnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
)

func TestTable_CreateColumn(t *testing.T) {
	tbl := NewTable()

	require.NoError(t, tbl.CreateColumn("stringdb::score", network.NumberColumn, nil))
	require.NoError(t, tbl.CreateColumn("stringdb::score", network.NumberColumn, nil), "same type is a no-op")

	err := tbl.CreateColumn("stringdb::score", network.StringColumn, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrColumnType))
	assert.True(t, errors.IsInvalid(err))

	assert.Error(t, tbl.CreateColumn("", network.StringColumn, nil))
	assert.Error(t, tbl.CreateColumn("flag", network.BoolColumn, "yes"))
}

func TestTable_GetSet(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.CreateColumn("name", network.StringColumn, nil))
	require.NoError(t, tbl.CreateColumn("score", network.NumberColumn, nil))
	require.NoError(t, tbl.CreateColumn("enrich", network.BoolColumn, false))
	require.NoError(t, tbl.CreateColumn("structures", network.StringListColumn, nil))

	_, ok := tbl.Get(1, "name")
	assert.False(t, ok)

	v, ok := tbl.Get(1, "enrich")
	require.True(t, ok, "default applies to unset cells")
	assert.Equal(t, false, v)

	require.NoError(t, tbl.Set(1, "name", "TP53"))
	require.NoError(t, tbl.Set(1, "score", 3))
	require.NoError(t, tbl.Set(1, "structures", []any{"1A1U", "2XWR"}))

	name, ok := network.GetString(tbl, 1, "name")
	assert.True(t, ok)
	assert.Equal(t, "TP53", name)

	score, ok := network.GetNumber(tbl, 1, "score")
	assert.True(t, ok)
	assert.Equal(t, 3.0, score)

	list, ok := network.GetStringList(tbl, 1, "structures")
	require.True(t, ok)
	assert.Equal(t, []string{"1A1U", "2XWR"}, list)
	list[0] = "changed"
	again, _ := network.GetStringList(tbl, 1, "structures")
	assert.Equal(t, "1A1U", again[0], "returned lists are copies")

	err := tbl.Set(1, "score", "high")
	assert.True(t, errors.Is(err, errors.ErrColumnType))

	err = tbl.Set(1, "missing", "x")
	assert.True(t, errors.Is(err, errors.ErrColumnMissing))

	require.NoError(t, tbl.Set(1, "name", nil))
	_, ok = tbl.Get(1, "name")
	assert.False(t, ok)
}

func TestTable_ColumnsInNamespace(t *testing.T) {
	tbl := NewTable()
	for _, name := range []string{"name", "tissue::liver", "compartment::nucleus", "tissue::brain", "tissues"} {
		require.NoError(t, tbl.CreateColumn(name, network.NumberColumn, nil))
	}

	var names []string
	for _, c := range tbl.ColumnsInNamespace("tissue") {
		names = append(names, c.Name)
		assert.Equal(t, "tissue", c.Namespace())
	}
	assert.Equal(t, []string{"tissue::liver", "tissue::brain"}, names)
	assert.Len(t, tbl.Columns(), 5)
}
