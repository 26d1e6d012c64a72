package duckengine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/metrico/deltamaint/config"
	"github.com/metrico/deltamaint/delta"
)

// ScanFiles walks root for parquet data files and builds manifest entries
// for them: size and modification time from the filesystem, per-column
// min/max read from each file, partition values from hive-style k=v path
// segments. Files are inspected with bounded parallelism.
func (t *Table) ScanFiles(ctx context.Context, root string) ([]delta.AddFile, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".parquet") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	workers := int64(config.Config.Engine.ScanWorkers)
	if workers <= 0 {
		workers = 10
	}
	sem := semaphore.NewWeighted(workers)
	g, ctx := errgroup.WithContext(ctx)
	res := make([]delta.AddFile, len(paths))
	for i, p := range paths {
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			f, err := t.statFile(p, root)
			if err != nil {
				return err
			}
			res[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Table) statFile(path, root string) (delta.AddFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return delta.AddFile{}, err
	}
	min, max, err := t.fileStats(path)
	if err != nil {
		return delta.AddFile{}, err
	}
	return delta.AddFile{
		Path:             path,
		SizeBytes:        fi.Size(),
		ModificationTime: fi.ModTime().UTC(),
		PartitionValues:  hivePartitionValues(root, path),
		Min:              min,
		Max:              max,
	}, nil
}

// fileStats reads per-column min/max straight from one parquet file.
func (t *Table) fileStats(path string) (map[string]any, map[string]any, error) {
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
	err := t.db.QueryRow(fmt.Sprintf(`SELECT %s FROM read_parquet('%s')`,
		strings.Join(exprs, ", "), escapeString(path))).Scan(ptrs...)
	if err != nil {
		return nil, nil, fmt.Errorf("reading stats of %q: %w", path, err)
	}
	min := make(map[string]any, len(names))
	max := make(map[string]any, len(names))
	for i, n := range names {
		min[n] = normalizeValue(vals[i*2])
		max[n] = normalizeValue(vals[i*2+1])
	}
	return min, max, nil
}

// hivePartitionValues extracts k=v path segments between root and the file.
func hivePartitionValues(root, path string) map[string]string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return map[string]string{}
	}
	res := make(map[string]string)
	for _, seg := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		k, v, ok := strings.Cut(seg, "=")
		if ok && k != "" {
			res[k] = v
		}
	}
	return res
}
