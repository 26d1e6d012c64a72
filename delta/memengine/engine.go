// Package memengine is the reference in-memory table engine: full merge
// semantics applied atomically under a mutex, a version bump per commit and
// a synthesized single-file manifest with per-column statistics. The test
// suites of the maintenance operations run against it.
package memengine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/metrico/deltamaint/delta"
	"github.com/metrico/deltamaint/delta/dataset"
)

type Table struct {
	mtx     sync.Mutex
	name    string
	version int64
	data    *dataset.Dataset
	files   []delta.AddFile
}

func NewTable(name string, data *dataset.Dataset) *Table {
	t := &Table{name: name, data: data}
	if data.Len() > 0 {
		t.files = []delta.AddFile{t.synthFile()}
	}
	return t
}

func (t *Table) AddFiles() ([]delta.AddFile, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	res := make([]delta.AddFile, len(t.files))
	copy(res, t.files)
	return res, nil
}

// LoadAddFiles replaces the manifest wholesale, the hook fixtures and
// snapshot loading use to install file statistics.
func (t *Table) LoadAddFiles(files []delta.AddFile) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.files = append([]delta.AddFile(nil), files...)
}

func (t *Table) Version() (int64, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.version, nil
}

func (t *Table) ReadAll() (*dataset.Dataset, error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.data.Clone()
}

func (t *Table) Merge(spec delta.MergeSpec) error {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	next, changed, err := applyMerge(t.data, spec)
	if err != nil {
		return err
	}
	if !changed {
		// nothing mutated, no new version is committed
		return nil
	}
	t.data = next
	t.version++
	t.files = []delta.AddFile{t.synthFile()}
	return nil
}

// synthFile describes the whole current contents as one rewritten file.
func (t *Table) synthFile() delta.AddFile {
	f := delta.AddFile{
		Path:             fmt.Sprintf("part-00000-%s.parquet", uuid.New()),
		SizeBytes:        t.data.ByteSize(),
		ModificationTime: time.Now().UTC().Truncate(time.Microsecond),
		PartitionValues:  map[string]string{},
		Min:              make(map[string]any),
		Max:              make(map[string]any),
	}
	for _, name := range t.data.Columns() {
		c, _ := t.data.Column(name)
		min, max := c.MinMax()
		f.Min[name] = min
		f.Max[name] = max
	}
	return f
}
