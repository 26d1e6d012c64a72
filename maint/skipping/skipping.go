// Package skipping estimates how much of a table a filtered scan can skip
// from the manifest's per-file min/max statistics, and summarizes the file
// size distribution of the current snapshot.
package skipping

import (
	"github.com/metrico/deltamaint/delta"
	"github.com/metrico/deltamaint/maint/sizes"
	"github.com/metrico/deltamaint/model"
	"github.com/metrico/deltamaint/pred"
)

// FilterPredicate translates one data filter into a predicate over a file's
// flattened statistics. The file may contain matching rows exactly when the
// predicate holds; a file with NULL statistics for the column never matches
// and is therefore counted as skipped.
func FilterPredicate(f model.Filter) (pred.Node, error) {
	min := "min." + f.Column
	max := "max." + f.Column
	switch f.Operator {
	case model.OpEq:
		return pred.And{Nodes: []pred.Node{
			pred.Cmp{Col: min, Op: model.OpLe, Value: f.Value},
			pred.Cmp{Col: max, Op: model.OpGe, Value: f.Value},
		}}, nil
	case model.OpLt:
		return pred.Cmp{Col: min, Op: model.OpLt, Value: f.Value}, nil
	case model.OpLe:
		return pred.Cmp{Col: min, Op: model.OpLe, Value: f.Value}, nil
	case model.OpGt:
		return pred.Cmp{Col: max, Op: model.OpGt, Value: f.Value}, nil
	case model.OpGe:
		return pred.Cmp{Col: max, Op: model.OpGe, Value: f.Value}, nil
	}
	return nil, &model.InvalidFilterError{Filter: f}
}

// FiltersPredicate conjoins the filter list. An empty list matches every
// file, so nothing is skipped.
func FiltersPredicate(filters []model.Filter) (pred.Node, error) {
	if len(filters) == 0 {
		return pred.True{}, nil
	}
	nodes := make([]pred.Node, 0, len(filters))
	for _, f := range filters {
		n, err := FilterPredicate(f)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return pred.And{Nodes: nodes}, nil
}

// Stats summarizes a file skipping estimate over one snapshot.
type Stats struct {
	NumFiles        int64
	NumFilesSkipped int64
	NumBytesSkipped int64
}

// SkippedStats evaluates the filters against every manifest entry of the
// current snapshot and counts the files (and their bytes) a scan with these
// filters would not read.
func SkippedStats(t delta.Table, filters []model.Filter) (Stats, error) {
	node, err := FiltersPredicate(filters)
	if err != nil {
		return Stats{}, err
	}
	files, err := t.AddFiles()
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, f := range files {
		st.NumFiles++
		flat := f.FlatStats()
		if node.Eval(func(col string) any { return flat[col] }) {
			continue
		}
		st.NumFilesSkipped++
		st.NumBytesSkipped += f.SizeBytes
	}
	return st, nil
}

// DefaultBoundaries is the size histogram used when the caller passes none.
var DefaultBoundaries = []string{"<1mb", "1mb-500mb", "500mb-1gb", "1gb-2gb", ">2gb"}

// SizeBucket is one histogram bucket, labeled after its boundary token.
type SizeBucket struct {
	Label string
	Count int64
}

// FileSizes buckets the current snapshot's files by size. Boundaries are
// validated up front so a malformed token fails the whole call; buckets may
// overlap, in which case a file counts in each one it falls into.
func FileSizes(t delta.Table, boundaries []string) ([]SizeBucket, error) {
	if len(boundaries) == 0 {
		boundaries = DefaultBoundaries
	}
	parsed := make([]sizes.Boundary, 0, len(boundaries))
	res := make([]SizeBucket, 0, len(boundaries))
	for _, token := range boundaries {
		b, err := sizes.ParseBoundary(token)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, b)
		res = append(res, SizeBucket{Label: "num_files_" + token})
	}
	files, err := t.AddFiles()
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		for i, b := range parsed {
			if b.Contains(f.SizeBytes) {
				res[i].Count++
			}
		}
	}
	return res, nil
}
