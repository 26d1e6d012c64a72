package duckengine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/metrico/deltamaint/model"
	"github.com/metrico/deltamaint/pred"
)

func TestLoadTableDef(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "events.yaml")
	err := os.WriteFile(file, []byte(`
name: events
location: /data/events
columns:
  - name: id
    type: BIGINT
  - name: payload
    type: VARCHAR
  - name: at
    type: TIMESTAMP
partition_by: [id]
`), 0640)
	assert.NoError(t, err)

	def, err := LoadTableDef(file)
	assert.NoError(t, err)
	assert.Equal(t, "events", def.Name)
	assert.Equal(t, []string{"id", "payload", "at"}, def.ColumnNames())

	ds, err := def.EmptyDataset()
	assert.NoError(t, err)
	assert.Equal(t, []string{"id", "payload", "at"}, ds.Columns())
}

func TestTableDefValidate(t *testing.T) {
	t.Run("UnknownType", func(t *testing.T) {
		def := &TableDef{Name: "t", Columns: []ColumnDef{{Name: "a", Type: "BLOB"}}}
		assert.ErrorContains(t, def.Validate(), "unsupported type")
	})
	t.Run("DuplicateColumn", func(t *testing.T) {
		def := &TableDef{Name: "t", Columns: []ColumnDef{{Name: "a", Type: "BIGINT"}, {Name: "a", Type: "VARCHAR"}}}
		assert.ErrorContains(t, def.Validate(), "duplicate column")
	})
	t.Run("UnknownPartitionColumn", func(t *testing.T) {
		def := &TableDef{Name: "t", Columns: []ColumnDef{{Name: "a", Type: "BIGINT"}}, PartitionBy: []string{"b"}}
		assert.ErrorContains(t, def.Validate(), "unknown column")
	})
	t.Run("NoColumns", func(t *testing.T) {
		def := &TableDef{Name: "t"}
		assert.Error(t, def.Validate())
	})
}

func TestRenderPred(t *testing.T) {
	var args []any
	s, err := renderPred(pred.And{Nodes: []pred.Node{
		pred.Cmp{Col: "min.a", Op: model.OpLe, Value: int64(5)},
		pred.Cmp{Col: "max.a", Op: model.OpGe, Value: int64(5)},
	}}, `"t"`, &args)
	assert.NoError(t, err)
	assert.Equal(t, `("t"."min.a" <= ? AND "t"."max.a" >= ?)`, s)
	assert.Equal(t, []any{int64(5), int64(5)}, args)

	args = nil
	s, err = renderPred(nil, `"t"`, &args)
	assert.NoError(t, err)
	assert.Equal(t, "TRUE", s)
	assert.Empty(t, args)

	s, err = renderPred(pred.True{}, `"t"`, &args)
	assert.NoError(t, err)
	assert.Equal(t, "TRUE", s)
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"plain"`, quoteIdent("plain"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
	assert.Equal(t, "it''s", escapeString("it's"))
}

func TestDiffersCond(t *testing.T) {
	assert.Equal(t, "TRUE", differsCond(nil, `"t"`))
	assert.Equal(t,
		`(s."a" IS DISTINCT FROM "t"."a" OR s."b" IS DISTINCT FROM "t"."b")`,
		differsCond([]string{"a", "b"}, `"t"`))
}

func TestHivePartitionValues(t *testing.T) {
	got := hivePartitionValues("/data/events", "/data/events/date=2024-01-01/region=eu/f.parquet")
	assert.Equal(t, map[string]string{"date": "2024-01-01", "region": "eu"}, got)

	got = hivePartitionValues("/data/events", "/data/events/f.parquet")
	assert.Empty(t, got)
}

func TestS3PartitionValues(t *testing.T) {
	got := s3PartitionValues("tables/events", "tables/events/date=2024-01-01/f.parquet")
	assert.Equal(t, map[string]string{"date": "2024-01-01"}, got)

	got = s3PartitionValues("tables/events", "tables/events/f.parquet")
	assert.Empty(t, got)
}

func TestEncodeStats(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	raw, err := encodeStats(map[string]any{"a": int64(3), "at": ts})
	assert.NoError(t, err)
	assert.Contains(t, raw, `"a":3`)
	assert.Contains(t, raw, `"at":1704067200000000`)
}

func TestDecodeStats(t *testing.T) {
	def := &TableDef{Name: "t", Columns: []ColumnDef{
		{Name: "a", Type: "BIGINT"},
		{Name: "f", Type: "DOUBLE"},
		{Name: "at", Type: "TIMESTAMP"},
	}}
	tbl := &Table{def: def}
	got, err := tbl.decodeStats(`{"a": 3, "f": 1.5, "at": 1704067200000000, "x": null}`)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), got["a"])
	assert.Equal(t, 1.5, got["f"])
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got["at"])
	assert.Nil(t, got["x"])
}
