// Package partitions reports which partitions of a table received new files
// inside a time window, read straight from the manifest's modification
// times.
package partitions

import (
	"sort"
	"strings"
	"time"

	"github.com/metrico/deltamaint/delta"
)

// Updated lists the distinct partition value sets of files modified inside
// the window. start is inclusive, end is exclusive; a nil bound leaves that
// side open. Partitions come back in first-seen manifest order, each one
// once.
func Updated(t delta.Table, start, end *time.Time) ([]map[string]string, error) {
	files, err := t.AddFiles()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var res []map[string]string
	for _, f := range files {
		if start != nil && f.ModificationTime.Before(*start) {
			continue
		}
		if end != nil && !f.ModificationTime.Before(*end) {
			continue
		}
		k := partitionKey(f.PartitionValues)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		res = append(res, f.PartitionValues)
	}
	return res, nil
}

func partitionKey(vals map[string]string) string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(vals[k])
		sb.WriteByte('\x00')
	}
	return sb.String()
}
