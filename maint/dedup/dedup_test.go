package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metrico/deltamaint/delta"
	"github.com/metrico/deltamaint/delta/dataset"
	"github.com/metrico/deltamaint/delta/memengine"
)

func newTable(t *testing.T) *memengine.Table {
	col1, err := dataset.Wrap("col1", []int64{1, 2, 3, 4, 5, 6, 9})
	assert.NoError(t, err)
	col2, err := dataset.Wrap("col2", []string{"A", "A", "A", "A", "B", "D", "B"})
	assert.NoError(t, err)
	col3, err := dataset.Wrap("col3", []string{"A", "B", "A", "A", "B", "D", "B"})
	assert.NoError(t, err)
	ds, err := dataset.New(col1, col2, col3)
	assert.NoError(t, err)
	return memengine.NewTable("dedup", ds)
}

func TestKillDuplicates(t *testing.T) {
	tbl := newTable(t)
	err := KillDuplicates(tbl, []string{"col3", "col2"})
	assert.NoError(t, err)

	data, err := tbl.ReadAll()
	assert.NoError(t, err)
	// (A,A) appears three times and (B,B) twice; every copy goes, the
	// unique tuples survive
	assert.Equal(t, 2, data.Len())
	assert.Equal(t, map[string]any{"col1": int64(2), "col2": "A", "col3": "B"}, data.Row(0))
	assert.Equal(t, map[string]any{"col1": int64(6), "col2": "D", "col3": "D"}, data.Row(1))

	v, err := tbl.Version()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestKillDuplicatesSingleColumn(t *testing.T) {
	tbl := newTable(t)
	err := KillDuplicates(tbl, []string{"col2"})
	assert.NoError(t, err)

	data, err := tbl.ReadAll()
	assert.NoError(t, err)
	// only the single D row has a unique col2 value
	assert.Equal(t, 1, data.Len())
	assert.Equal(t, map[string]any{"col1": int64(6), "col2": "D", "col3": "D"}, data.Row(0))
}

func TestKillDuplicatesIdempotent(t *testing.T) {
	tbl := newTable(t)
	assert.NoError(t, KillDuplicates(tbl, []string{"col3", "col2"}))
	v1, _ := tbl.Version()
	assert.NoError(t, KillDuplicates(tbl, []string{"col3", "col2"}))
	v2, err := tbl.Version()
	assert.NoError(t, err)
	assert.Equal(t, v1, v2, "a second run must not commit a new version")
}

func TestKillDuplicatesValidation(t *testing.T) {
	t.Run("NoColumns", func(t *testing.T) {
		err := KillDuplicates(newTable(t), nil)
		assert.Error(t, err)
	})

	t.Run("MissingColumn", func(t *testing.T) {
		tbl := newTable(t)
		err := KillDuplicates(tbl, []string{"col2", "nope"})
		var mc *delta.MissingColumnError
		assert.ErrorAs(t, err, &mc)
		assert.Equal(t, []string{"col1", "col2", "col3"}, mc.Have)
		assert.Equal(t, []string{"col2", "nope"}, mc.Want)

		// the precondition failure must leave the table untouched
		data, _ := tbl.ReadAll()
		assert.Equal(t, 7, data.Len())
		v, _ := tbl.Version()
		assert.Equal(t, int64(0), v)
	})
}
