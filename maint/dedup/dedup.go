// Package dedup removes fully duplicated rows from a table with one
// conditional merge per call.
package dedup

import (
	"fmt"

	"github.com/metrico/deltamaint/delta"
)

// KillDuplicates deletes every row whose values in duplicationColumns are
// shared with at least one other row. All copies go, including the first
// one; rows with a unique key tuple survive. The whole removal commits as
// one merge, or not at all.
func KillDuplicates(t delta.Table, duplicationColumns []string) error {
	if len(duplicationColumns) == 0 {
		return fmt.Errorf("duplication columns are required")
	}
	data, err := t.ReadAll()
	if err != nil {
		return err
	}
	if err := delta.RequireColumns(data.Columns(), duplicationColumns); err != nil {
		return err
	}

	groups, err := data.GroupCounts(duplicationColumns)
	if err != nil {
		return err
	}
	source, err := data.EmptyLike(duplicationColumns...)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if g.Count < 2 {
			continue
		}
		if err := source.AppendRow(data.Row(g.First)); err != nil {
			return err
		}
	}
	if source.Len() == 0 {
		return nil
	}

	on := make([][2]string, len(duplicationColumns))
	for i, c := range duplicationColumns {
		on[i] = [2]string{c, c}
	}
	return t.Merge(delta.MergeSpec{
		Source:  source,
		On:      on,
		Matched: []delta.MatchedAction{{Delete: true}},
	})
}
