package scd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/metrico/deltamaint/delta"
	"github.com/metrico/deltamaint/delta/dataset"
	"github.com/metrico/deltamaint/delta/memengine"
)

var (
	t2024 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2025 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tSep  = time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
)

func dimTable(t *testing.T) *memengine.Table {
	pk, err := dataset.Wrap("pkey", []int64{1, 2, 4})
	assert.NoError(t, err)
	attr, err := dataset.Wrap("attr", []string{"A", "B", "D"})
	assert.NoError(t, err)
	cur, err := dataset.Wrap("is_current", []bool{true, true, true})
	assert.NoError(t, err)
	eff, err := dataset.Wrap("effective_time", []time.Time{t2024, t2024, t2024})
	assert.NoError(t, err)
	end := dataset.NewTimestamp("end_time")
	for i := 0; i < 3; i++ {
		assert.NoError(t, end.Append(nil))
	}
	ds, err := dataset.New(pk, attr, cur, eff, end)
	assert.NoError(t, err)
	return memengine.NewTable("dim", ds)
}

func updatesOf(t *testing.T, pkeys []int64, attrs []string, effs []time.Time) *dataset.Dataset {
	pk, err := dataset.Wrap("pkey", pkeys)
	assert.NoError(t, err)
	attr, err := dataset.Wrap("attr", attrs)
	assert.NoError(t, err)
	eff, err := dataset.Wrap("effective_time", effs)
	assert.NoError(t, err)
	ds, err := dataset.New(pk, attr, eff)
	assert.NoError(t, err)
	return ds
}

func TestType2Upsert(t *testing.T) {
	tbl := dimTable(t)
	updates := updatesOf(t,
		[]int64{2, 3},
		[]string{"Z", "C"},
		[]time.Time{t2025, tSep},
	)
	err := Type2Upsert(tbl, updates, "pkey", []string{"attr"}, "is_current", "effective_time", "end_time")
	assert.NoError(t, err)

	data, err := tbl.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, 5, data.Len())

	rows := make([]map[string]any, data.Len())
	for i := range rows {
		rows[i] = data.Row(i)
	}
	assert.Contains(t, rows, map[string]any{
		"pkey": int64(1), "attr": "A", "is_current": true,
		"effective_time": t2024, "end_time": nil,
	})
	assert.Contains(t, rows, map[string]any{
		"pkey": int64(2), "attr": "B", "is_current": false,
		"effective_time": t2024, "end_time": t2025,
	})
	assert.Contains(t, rows, map[string]any{
		"pkey": int64(2), "attr": "Z", "is_current": true,
		"effective_time": t2025, "end_time": nil,
	})
	assert.Contains(t, rows, map[string]any{
		"pkey": int64(3), "attr": "C", "is_current": true,
		"effective_time": tSep, "end_time": nil,
	})
	assert.Contains(t, rows, map[string]any{
		"pkey": int64(4), "attr": "D", "is_current": true,
		"effective_time": t2024, "end_time": nil,
	})

	v, err := tbl.Version()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestType2UpsertNoChange(t *testing.T) {
	tbl := dimTable(t)
	before, err := tbl.ReadAll()
	assert.NoError(t, err)

	// the update carries the attribute the current row already has
	updates := updatesOf(t, []int64{2}, []string{"B"}, []time.Time{t2025})
	err = Type2Upsert(tbl, updates, "pkey", []string{"attr"}, "is_current", "effective_time", "end_time")
	assert.NoError(t, err)

	after, err := tbl.ReadAll()
	assert.NoError(t, err)
	assert.Equal(t, before.Len(), after.Len())
	for i := 0; i < before.Len(); i++ {
		assert.Equal(t, before.Row(i), after.Row(i))
	}
	v, _ := tbl.Version()
	assert.Equal(t, int64(0), v)
}

func TestType2UpsertMultipleAttributes(t *testing.T) {
	pk, _ := dataset.Wrap("pkey", []int64{1})
	a1, _ := dataset.Wrap("attr1", []string{"A"})
	a2, _ := dataset.Wrap("attr2", []string{"B"})
	cur, _ := dataset.Wrap("is_current", []bool{true})
	eff, _ := dataset.Wrap("effective_time", []time.Time{t2024})
	end := dataset.NewTimestamp("end_time")
	assert.NoError(t, end.Append(nil))
	ds, err := dataset.New(pk, a1, a2, cur, eff, end)
	assert.NoError(t, err)
	tbl := memengine.NewTable("dim2", ds)

	upk, _ := dataset.Wrap("pkey", []int64{1})
	ua1, _ := dataset.Wrap("attr1", []string{"A"})
	ua2, _ := dataset.Wrap("attr2", []string{"X"})
	ueff, _ := dataset.Wrap("effective_time", []time.Time{t2025})
	updates, err := dataset.New(upk, ua1, ua2, ueff)
	assert.NoError(t, err)

	err = Type2Upsert(tbl, updates, "pkey", []string{"attr1", "attr2"}, "is_current", "effective_time", "end_time")
	assert.NoError(t, err)

	data, _ := tbl.ReadAll()
	assert.Equal(t, 2, data.Len())
	assert.Equal(t, map[string]any{
		"pkey": int64(1), "attr1": "A", "attr2": "B", "is_current": false,
		"effective_time": t2024, "end_time": t2025,
	}, data.Row(0))
	assert.Equal(t, map[string]any{
		"pkey": int64(1), "attr1": "A", "attr2": "X", "is_current": true,
		"effective_time": t2025, "end_time": nil,
	}, data.Row(1))
}

func TestType2UpsertValidation(t *testing.T) {
	t.Run("BaseMissingColumns", func(t *testing.T) {
		pk, _ := dataset.Wrap("pkey", []int64{1})
		ds, err := dataset.New(pk)
		assert.NoError(t, err)
		tbl := memengine.NewTable("bad", ds)
		updates := updatesOf(t, []int64{1}, []string{"A"}, []time.Time{t2025})
		err = Type2Upsert(tbl, updates, "pkey", []string{"attr"}, "is_current", "effective_time", "end_time")
		var mc *delta.MissingColumnError
		assert.ErrorAs(t, err, &mc)
	})

	t.Run("UpdatesMissingColumns", func(t *testing.T) {
		tbl := dimTable(t)
		pk, _ := dataset.Wrap("pkey", []int64{1})
		updates, err := dataset.New(pk)
		assert.NoError(t, err)
		err = Type2Upsert(tbl, updates, "pkey", []string{"attr"}, "is_current", "effective_time", "end_time")
		var mc *delta.MissingColumnError
		assert.ErrorAs(t, err, &mc)

		v, _ := tbl.Version()
		assert.Equal(t, int64(0), v)
	})

	t.Run("NoAttributes", func(t *testing.T) {
		tbl := dimTable(t)
		updates := updatesOf(t, []int64{1}, []string{"A"}, []time.Time{t2025})
		err := Type2Upsert(tbl, updates, "pkey", nil, "is_current", "effective_time", "end_time")
		assert.Error(t, err)
	})
}
