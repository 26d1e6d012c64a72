package delta

import (
	"github.com/metrico/deltamaint/delta/dataset"
	"github.com/metrico/deltamaint/pred"
)

// Value is a literal or a source column reference inside a merge action.
type Value struct {
	Literal    any
	FromSource string
}

func Lit(v any) Value { return Value{Literal: v} }

func Src(col string) Value { return Value{FromSource: col} }

func (v Value) IsSrc() bool { return v.FromSource != "" }

// Resolve evaluates the value against one source row.
func (v Value) Resolve(src map[string]any) any {
	if v.IsSrc() {
		return src[v.FromSource]
	}
	return v.Literal
}

// MatchedAction is applied to a target row matched by a source row. When
// DiffersOn is set the action only fires if at least one of the listed
// columns differs between source and target.
type MatchedAction struct {
	DiffersOn []string
	Delete    bool
	Set       map[string]Value
}

// InsertAction inserts a new target row for every source row that matched
// no target row.
type InsertAction struct {
	Values map[string]Value
}

// MergeSpec is a structural conditional merge: source rows match target rows
// on equality of the On column pairs (a NULL source value matches nothing),
// restricted to target rows satisfying TargetCond. Matched clauses apply in
// order, the first applicable one wins; NotMatched inserts leftovers.
type MergeSpec struct {
	Source     *dataset.Dataset
	On         [][2]string // {source column, target column}
	TargetCond pred.Node
	Matched    []MatchedAction
	NotMatched *InsertAction
}
