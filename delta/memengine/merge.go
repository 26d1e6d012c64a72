package memengine

import (
	"fmt"

	"github.com/metrico/deltamaint/delta"
	"github.com/metrico/deltamaint/delta/dataset"
	"github.com/metrico/deltamaint/pred"
)

// applyMerge evaluates a merge spec against one snapshot and returns the new
// contents plus whether anything actually mutated. Every clause sees the
// pre-merge snapshot only.
func applyMerge(target *dataset.Dataset, spec delta.MergeSpec) (*dataset.Dataset, bool, error) {
	if spec.Source == nil {
		return nil, false, fmt.Errorf("merge source is required")
	}
	for _, on := range spec.On {
		if _, ok := spec.Source.Column(on[0]); !ok {
			return nil, false, fmt.Errorf("merge source has no column %q", on[0])
		}
		if _, ok := target.Column(on[1]); !ok {
			return nil, false, fmt.Errorf("merge target has no column %q", on[1])
		}
	}

	result, err := target.EmptyLike()
	if err != nil {
		return nil, false, err
	}
	matchedSrc := make([]bool, spec.Source.Len())
	changed := false

	for i := 0; i < target.Len(); i++ {
		row := target.Row(i)
		lookup := pred.Row(func(col string) any { return row[col] })

		var matches []int
		if spec.TargetCond == nil || spec.TargetCond.Eval(lookup) {
			for j := 0; j < spec.Source.Len(); j++ {
				if onMatches(spec.Source, j, spec.On, row) {
					matches = append(matches, j)
				}
			}
		}
		if len(matches) == 0 {
			if err := result.AppendRow(row); err != nil {
				return nil, false, err
			}
			continue
		}
		for _, j := range matches {
			matchedSrc[j] = true
		}

		srcRow := spec.Source.Row(matches[0])
		var act *delta.MatchedAction
		for k := range spec.Matched {
			a := &spec.Matched[k]
			if len(a.DiffersOn) > 0 && !anyDiffers(srcRow, row, a.DiffersOn) {
				continue
			}
			act = a
			break
		}
		if act == nil {
			// matched but no clause fired, the row stays untouched
			if err := result.AppendRow(row); err != nil {
				return nil, false, err
			}
			continue
		}
		if len(matches) > 1 && !act.Delete {
			return nil, false, fmt.Errorf("cannot perform merge: multiple source rows matched the same target row")
		}
		if act.Delete {
			changed = true
			continue
		}
		updated := make(map[string]any, len(row))
		for k, v := range row {
			updated[k] = v
		}
		for col, v := range act.Set {
			updated[col] = v.Resolve(srcRow)
		}
		if err := result.AppendRow(updated); err != nil {
			return nil, false, err
		}
		changed = true
	}

	if spec.NotMatched != nil {
		for j := 0; j < spec.Source.Len(); j++ {
			if matchedSrc[j] {
				continue
			}
			srcRow := spec.Source.Row(j)
			ins := make(map[string]any, len(spec.NotMatched.Values))
			for col, v := range spec.NotMatched.Values {
				ins[col] = v.Resolve(srcRow)
			}
			if err := result.AppendRow(ins); err != nil {
				return nil, false, err
			}
			changed = true
		}
	}
	return result, changed, nil
}

// onMatches checks the equi-join pairs; a NULL on either side matches
// nothing.
func onMatches(source *dataset.Dataset, j int, on [][2]string, targetRow map[string]any) bool {
	for _, pair := range on {
		sv := source.Value(pair[0], j)
		tv := targetRow[pair[1]]
		if sv == nil || tv == nil {
			return false
		}
		if !pred.Equal(sv, tv) {
			return false
		}
	}
	return len(on) > 0
}

func anyDiffers(srcRow, targetRow map[string]any, cols []string) bool {
	for _, c := range cols {
		if !pred.Equal(srcRow[c], targetRow[c]) {
			return true
		}
	}
	return false
}
