// Package duckengine is the DuckDB-backed table engine: contents live in a
// DuckDB table, the manifest and version log in companion tables beside it,
// and merges are staged as parquet and applied inside one transaction.
package duckengine

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/marcboeker/go-duckdb/v2" // duckdb driver

	"github.com/metrico/deltamaint/config"
	"github.com/metrico/deltamaint/delta"
	"github.com/metrico/deltamaint/delta/dataset"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Table struct {
	mtx     sync.Mutex
	db      *sql.DB
	def     *TableDef
	tmpPath string
}

// ConnectDuckDB opens the DuckDB database at path and verifies it answers.
func ConnectDuckDB(path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb at %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to duckdb at %q: %w", path, err)
	}
	return db, nil
}

// Open attaches to (or creates) a managed table inside db. tmpPath holds
// staged merge sources; rewritten data files go to the definition's
// location, defaulting to a directory beside tmpPath.
func Open(db *sql.DB, def *TableDef, tmpPath string) (*Table, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if tmpPath == "" {
		tmpPath = filepath.Join(os.TempDir(), "deltamaint")
	}
	if def.Location == "" {
		def.Location = filepath.Join(tmpPath, def.Name, "data")
	}
	t := &Table{db: db, def: def, tmpPath: tmpPath}
	if err := t.createSchema(); err != nil {
		return nil, err
	}
	return t, nil
}

// OpenDefault opens the table on the process-wide configured database.
func OpenDefault(def *TableDef) (*Table, error) {
	db, err := ConnectDuckDB(config.Config.Engine.DBPath)
	if err != nil {
		return nil, err
	}
	t, err := Open(db, def, config.Config.Engine.TmpPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	return t, nil
}

func (t *Table) createSchema() error {
	cols := make([]string, len(t.def.Columns))
	for i, c := range t.def.Columns {
		cols[i] = fmt.Sprintf("%s %s", quoteIdent(c.Name), c.Type)
	}
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (%s)`, quoteIdent(t.def.Name), strings.Join(cols, ", ")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			path VARCHAR PRIMARY KEY,
			size_bytes BIGINT,
			modification_time TIMESTAMP,
			partition_values VARCHAR,
			min_values VARCHAR,
			max_values VARCHAR)`, quoteIdent(t.def.Name+"_manifest")),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (version BIGINT, committed_at TIMESTAMP)`,
			quoteIdent(t.def.Name+"_versions")),
	}
	for _, s := range stmts {
		if _, err := t.db.Exec(s); err != nil {
			return fmt.Errorf("creating schema for table %q: %w", t.def.Name, err)
		}
	}
	return nil
}

func (t *Table) AddFiles() ([]delta.AddFile, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.addFiles()
}

func (t *Table) addFiles() ([]delta.AddFile, error) {
	rows, err := t.db.Query(fmt.Sprintf(
		`SELECT path, size_bytes, modification_time, partition_values, min_values, max_values FROM %s ORDER BY path`,
		quoteIdent(t.def.Name+"_manifest")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []delta.AddFile
	for rows.Next() {
		var (
			f                 delta.AddFile
			partJSON, minJSON string
			maxJSON           string
		)
		if err := rows.Scan(&f.Path, &f.SizeBytes, &f.ModificationTime, &partJSON, &minJSON, &maxJSON); err != nil {
			return nil, err
		}
		f.ModificationTime = f.ModificationTime.UTC()
		if err := json.UnmarshalFromString(partJSON, &f.PartitionValues); err != nil {
			return nil, fmt.Errorf("decoding partition values of %q: %w", f.Path, err)
		}
		if f.Min, err = t.decodeStats(minJSON); err != nil {
			return nil, fmt.Errorf("decoding min stats of %q: %w", f.Path, err)
		}
		if f.Max, err = t.decodeStats(maxJSON); err != nil {
			return nil, fmt.Errorf("decoding max stats of %q: %w", f.Path, err)
		}
		res = append(res, f)
	}
	return res, rows.Err()
}

func (t *Table) Version() (int64, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	var v int64
	err := t.db.QueryRow(fmt.Sprintf(`SELECT coalesce(max(version), 0) FROM %s`,
		quoteIdent(t.def.Name+"_versions"))).Scan(&v)
	return v, err
}

func (t *Table) ReadAll() (*dataset.Dataset, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	ds, err := t.def.EmptyDataset()
	if err != nil {
		return nil, err
	}
	names := t.def.ColumnNames()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	rows, err := t.db.Query(fmt.Sprintf(`SELECT %s FROM %s`,
		strings.Join(quoted, ", "), quoteIdent(t.def.Name)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	vals := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(names))
		for i, n := range names {
			row[n] = normalizeValue(vals[i])
		}
		if err := ds.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return ds, rows.Err()
}

// ReplaceManifest rewrites the manifest wholesale, used by the scanners and
// by fixtures that install file statistics directly.
func (t *Table) ReplaceManifest(files []delta.AddFile) error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.replaceManifest(files)
}

func (t *Table) replaceManifest(files []delta.AddFile) error {
	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	manifest := quoteIdent(t.def.Name + "_manifest")
	if _, err := tx.Exec(`DELETE FROM ` + manifest); err != nil {
		return err
	}
	for _, f := range files {
		partJSON, err := json.MarshalToString(nonNilPartitions(f.PartitionValues))
		if err != nil {
			return err
		}
		minJSON, err := encodeStats(f.Min)
		if err != nil {
			return err
		}
		maxJSON, err := encodeStats(f.Max)
		if err != nil {
			return err
		}
		_, err = tx.Exec(fmt.Sprintf(`INSERT INTO %s VALUES (?, ?, ?, ?, ?, ?)`, manifest),
			f.Path, f.SizeBytes, f.ModificationTime.UTC(), partJSON, minJSON, maxJSON)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// refreshManifest rewrites the whole table to one parquet file under the
// location and replaces the manifest with that single entry. Previous
// rewritten files under the location are removed.
func (t *Table) refreshManifest() error {
	old, err := t.addFiles()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(t.def.Location, 0750); err != nil {
		return err
	}
	path := filepath.Join(t.def.Location, fmt.Sprintf("part-00000-%s.parquet", uuid.New()))
	_, err = t.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM %s) TO '%s' (FORMAT 'parquet')`,
		quoteIdent(t.def.Name), escapeString(path)))
	if err != nil {
		return fmt.Errorf("rewriting table %q: %w", t.def.Name, err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	min, max, err := t.tableStats()
	if err != nil {
		return err
	}
	f := delta.AddFile{
		Path:             path,
		SizeBytes:        fi.Size(),
		ModificationTime: fi.ModTime().UTC(),
		PartitionValues:  map[string]string{},
		Min:              min,
		Max:              max,
	}
	if err := t.replaceManifest([]delta.AddFile{f}); err != nil {
		return err
	}
	for _, o := range old {
		if strings.HasPrefix(o.Path, t.def.Location+string(filepath.Separator)) {
			os.Remove(o.Path)
		}
	}
	return nil
}

// tableStats computes per-column min/max over the current contents.
func (t *Table) tableStats() (map[string]any, map[string]any, error) {
	names := t.def.ColumnNames()
	exprs := make([]string, 0, len(names)*2)
	for _, n := range names {
		exprs = append(exprs, fmt.Sprintf("min(%s)", quoteIdent(n)), fmt.Sprintf("max(%s)", quoteIdent(n)))
	}
	vals := make([]any, len(exprs))
	ptrs := make([]any, len(exprs))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	err := t.db.QueryRow(fmt.Sprintf(`SELECT %s FROM %s`,
		strings.Join(exprs, ", "), quoteIdent(t.def.Name))).Scan(ptrs...)
	if err != nil {
		return nil, nil, err
	}
	min := make(map[string]any, len(names))
	max := make(map[string]any, len(names))
	for i, n := range names {
		min[n] = normalizeValue(vals[i*2])
		max[n] = normalizeValue(vals[i*2+1])
	}
	return min, max, nil
}

func (t *Table) decodeStats(raw string) (map[string]any, error) {
	var generic map[string]any
	if err := json.UnmarshalFromString(raw, &generic); err != nil {
		return nil, err
	}
	res := make(map[string]any, len(generic))
	for col, v := range generic {
		if v == nil {
			res[col] = nil
			continue
		}
		tp, ok := t.def.columnType(col)
		if !ok {
			res[col] = v
			continue
		}
		switch dataset.Builders[tp]("").TypeName() {
		case dataset.TypeNameInt64:
			if f, ok := v.(float64); ok {
				res[col] = int64(f)
				continue
			}
		case dataset.TypeNameTimestamp:
			if f, ok := v.(float64); ok {
				res[col] = time.UnixMicro(int64(f)).UTC()
				continue
			}
		}
		res[col] = v
	}
	return res, nil
}

// encodeStats serializes a stats map; timestamps become epoch micros.
func encodeStats(stats map[string]any) (string, error) {
	enc := make(map[string]any, len(stats))
	for col, v := range stats {
		if ts, ok := v.(time.Time); ok {
			enc[col] = ts.UnixMicro()
			continue
		}
		enc[col] = v
	}
	return json.MarshalToString(enc)
}

func nonNilPartitions(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// normalizeValue maps driver scan values to the dataset value domain.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC()
	}
	return v
}
