// Package scd maintains a slowly changing dimension, Type 2: every change
// to a tracked attribute closes the current row for the key and inserts a
// new current one, so the full history stays queryable.
package scd

import (
	"fmt"

	"github.com/metrico/deltamaint/delta"
	"github.com/metrico/deltamaint/delta/dataset"
	"github.com/metrico/deltamaint/model"
	"github.com/metrico/deltamaint/pred"
)

// mergeKeyCol is the staged join key. Update rows carry their primary key
// here; the extra insert copies carry NULL so they match no target row.
const mergeKeyCol = "__mergekey"

// Type2Upsert applies updates to a Type 2 dimension table in one conditional
// merge. An update whose attributes differ from the key's current row closes
// that row (isCurrentCol false, endCol set to the update's effective time)
// and inserts a new current row; an update for an unknown key just inserts.
// An update identical to the current row changes nothing.
func Type2Upsert(t delta.Table, updates *dataset.Dataset, primaryKey string, attrCols []string, isCurrentCol, effectiveCol, endCol string) error {
	if primaryKey == "" {
		return fmt.Errorf("primary key column is required")
	}
	if len(attrCols) == 0 {
		return fmt.Errorf("attribute columns are required")
	}

	baseRequired := append(append([]string{primaryKey}, attrCols...), isCurrentCol, effectiveCol, endCol)
	updatesRequired := append(append([]string{primaryKey}, attrCols...), effectiveCol)

	current, err := t.ReadAll()
	if err != nil {
		return err
	}
	if err := delta.RequireColumns(current.Columns(), baseRequired); err != nil {
		return err
	}
	if err := delta.RequireColumns(updates.Columns(), updatesRequired); err != nil {
		return err
	}

	source, err := stageSource(current, updates, primaryKey, attrCols, isCurrentCol, effectiveCol)
	if err != nil {
		return err
	}

	set := map[string]delta.Value{
		isCurrentCol: delta.Lit(false),
		endCol:       delta.Src(effectiveCol),
	}
	insert := map[string]delta.Value{
		primaryKey:   delta.Src(primaryKey),
		effectiveCol: delta.Src(effectiveCol),
		isCurrentCol: delta.Lit(true),
		endCol:       delta.Lit(nil),
	}
	for _, a := range attrCols {
		insert[a] = delta.Src(a)
	}

	return t.Merge(delta.MergeSpec{
		Source:     source,
		On:         [][2]string{{mergeKeyCol, primaryKey}},
		TargetCond: pred.Cmp{Col: isCurrentCol, Op: model.OpEq, Value: true},
		Matched:    []delta.MatchedAction{{DiffersOn: attrCols, Set: set}},
		NotMatched: &delta.InsertAction{Values: insert},
	})
}

// stageSource builds the staged update set: every update row keyed by its
// primary key, plus a NULL-keyed copy of each update that supersedes a
// current row. The keyed row closes the old version, the NULL-keyed copy
// falls through the join and inserts the new one.
func stageSource(current, updates *dataset.Dataset, primaryKey string, attrCols []string, isCurrentCol, effectiveCol string) (*dataset.Dataset, error) {
	pkCol, _ := updates.Column(primaryKey)
	cols := []dataset.Column{pkCol.EmptyLike(mergeKeyCol)}
	for _, n := range append(append([]string{primaryKey}, attrCols...), effectiveCol) {
		c, _ := updates.Column(n)
		cols = append(cols, c.EmptyLike(n))
	}
	source, err := dataset.New(cols...)
	if err != nil {
		return nil, err
	}

	for i := 0; i < updates.Len(); i++ {
		row := updates.Row(i)
		row[mergeKeyCol] = row[primaryKey]
		if err := source.AppendRow(row); err != nil {
			return nil, err
		}
		if !supersedesCurrent(current, row, primaryKey, attrCols, isCurrentCol) {
			continue
		}
		row[mergeKeyCol] = nil
		if err := source.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return source, nil
}

// supersedesCurrent reports whether the update row replaces a live row: some
// current row shares its primary key and differs in at least one attribute.
func supersedesCurrent(current *dataset.Dataset, update map[string]any, primaryKey string, attrCols []string, isCurrentCol string) bool {
	for i := 0; i < current.Len(); i++ {
		if !pred.Equal(current.Value(isCurrentCol, i), true) {
			continue
		}
		pk := current.Value(primaryKey, i)
		if pk == nil || !pred.Equal(pk, update[primaryKey]) {
			continue
		}
		for _, a := range attrCols {
			if !pred.Equal(current.Value(a, i), update[a]) {
				return true
			}
		}
	}
	return false
}
