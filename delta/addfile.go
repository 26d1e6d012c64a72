// Package delta is the boundary to the underlying table engine: add-file
// manifest records, the table handle interface and the structural merge
// specification the maintenance operations hand to an engine.
package delta

import (
	"time"
)

// AddFile is one manifest entry: a live data file of the table's current
// snapshot with its size, modification time, partition identity and
// per-column min/max statistics. Min/Max values are nil for a column that is
// all-NULL in the file.
type AddFile struct {
	Path             string
	SizeBytes        int64
	ModificationTime time.Time
	PartitionValues  map[string]string
	Min              map[string]any
	Max              map[string]any
}

// FlatStats is the flattened statistics view of the record: path, size and
// modification time alongside "min.<col>" / "max.<col>" keys, the shape
// statistics predicates are evaluated against.
func (f AddFile) FlatStats() map[string]any {
	res := make(map[string]any, 3+len(f.Min)+len(f.Max))
	res["path"] = f.Path
	res["size_bytes"] = f.SizeBytes
	res["modification_time"] = f.ModificationTime
	for c, v := range f.Min {
		res["min."+c] = v
	}
	for c, v := range f.Max {
		res["max."+c] = v
	}
	return res
}
