package memengine

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/jx"
	jsoniter "github.com/json-iterator/go"

	"github.com/metrico/deltamaint/delta"
	"github.com/metrico/deltamaint/delta/dataset"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type snapshotMeta struct {
	Name    string         `json:"name"`
	Version int64          `json:"version"`
	Schema  [][2]string    `json:"schema"`
	Files   []snapshotFile `json:"files"`
}

type snapshotFile struct {
	Path             string            `json:"path"`
	SizeBytes        int64             `json:"size_bytes"`
	ModificationTime int64             `json:"modification_time"` // epoch micros
	PartitionValues  map[string]string `json:"partition_values"`
	Min              map[string]any    `json:"min"`
	Max              map[string]any    `json:"max"`
}

// Save writes the table as metadata.json plus data.ndjson under dir.
func (t *Table) Save(dir string) error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	meta := snapshotMeta{Name: t.name, Version: t.version}
	for _, n := range t.data.Columns() {
		c, _ := t.data.Column(n)
		meta.Schema = append(meta.Schema, [2]string{n, c.TypeName()})
	}
	for _, f := range t.files {
		meta.Files = append(meta.Files, snapshotFile{
			Path:             f.Path,
			SizeBytes:        f.SizeBytes,
			ModificationTime: f.ModificationTime.UnixMicro(),
			PartitionValues:  f.PartitionValues,
			Min:              encodeStats(f.Min),
			Max:              encodeStats(f.Max),
		})
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), raw, 0640); err != nil {
		return err
	}

	var buf []byte
	e := &jx.Encoder{}
	for i := 0; i < t.data.Len(); i++ {
		e.Reset()
		t.data.EncodeRowJSON(e, i)
		buf = append(buf, e.Bytes()...)
		buf = append(buf, '\n')
	}
	return os.WriteFile(filepath.Join(dir, "data.ndjson"), buf, 0640)
}

// Load restores a table saved with Save.
func Load(dir string) (*Table, error) {
	raw, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta snapshotMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decoding metadata: %w", err)
	}

	cols := make([]dataset.Column, 0, len(meta.Schema))
	for _, s := range meta.Schema {
		b, ok := dataset.Builders[s[1]]
		if !ok {
			return nil, fmt.Errorf("unknown column type %q for column %q", s[1], s[0])
		}
		cols = append(cols, b(s[0]))
	}
	data, err := dataset.New(cols...)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, "data.ndjson"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := data.DecodeRowJSON(jx.DecodeBytes(line)); err != nil {
			return nil, fmt.Errorf("decoding row: %w", err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	types := make(map[string]string, len(meta.Schema))
	for _, s := range meta.Schema {
		types[s[0]] = s[1]
	}
	t := &Table{name: meta.Name, version: meta.Version, data: data}
	for _, sf := range meta.Files {
		t.files = append(t.files, delta.AddFile{
			Path:             sf.Path,
			SizeBytes:        sf.SizeBytes,
			ModificationTime: time.UnixMicro(sf.ModificationTime).UTC(),
			PartitionValues:  sf.PartitionValues,
			Min:              decodeStats(sf.Min, types),
			Max:              decodeStats(sf.Max, types),
		})
	}
	return t, nil
}

// encodeStats prepares a stats map for JSON: timestamps as epoch micros.
func encodeStats(stats map[string]any) map[string]any {
	res := make(map[string]any, len(stats))
	for col, v := range stats {
		if ts, ok := v.(time.Time); ok {
			res[col] = ts.UnixMicro()
			continue
		}
		res[col] = v
	}
	return res
}

// decodeStats restores typed stat values; JSON numbers come back as float64
// and the schema says what they originally were.
func decodeStats(stats map[string]any, types map[string]string) map[string]any {
	res := make(map[string]any, len(stats))
	for col, v := range stats {
		f, ok := v.(float64)
		if !ok {
			res[col] = v
			continue
		}
		switch types[col] {
		case dataset.TypeNameInt64:
			res[col] = int64(f)
		case dataset.TypeNameTimestamp:
			res[col] = time.UnixMicro(int64(f)).UTC()
		default:
			res[col] = f
		}
	}
	return res
}
