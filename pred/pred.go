package pred

import (
	"github.com/metrico/deltamaint/model"
)

// Row looks a column value up by name. A missing or NULL value is nil.
type Row func(col string) any

// Node is a predicate over a single row of values. Predicates are built as
// small expression trees and evaluated directly, there is no query text.
type Node interface {
	Eval(row Row) bool
}

// True matches every row. It is the predicate of an empty filter list.
type True struct{}

func (True) Eval(Row) bool { return true }

// And matches when every child matches.
type And struct {
	Nodes []Node
}

func (a And) Eval(row Row) bool {
	for _, n := range a.Nodes {
		if !n.Eval(row) {
			return false
		}
	}
	return true
}

// Cmp compares one column against a literal value. A NULL or missing column
// value never matches, neither does a value of an incomparable type.
type Cmp struct {
	Col   string
	Op    model.Op
	Value any
}

func (c Cmp) Eval(row Row) bool {
	v := row(c.Col)
	if v == nil || c.Value == nil {
		return false
	}
	r, ok := Compare(v, c.Value)
	if !ok {
		return false
	}
	switch c.Op {
	case model.OpEq:
		return r == 0
	case model.OpLt:
		return r < 0
	case model.OpLe:
		return r <= 0
	case model.OpGt:
		return r > 0
	case model.OpGe:
		return r >= 0
	}
	return false
}
