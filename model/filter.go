package model

import "fmt"

// Op is a comparison operator usable in a statistics filter.
type Op string

const (
	OpEq Op = "="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// Filter is a single (column, operator, value) condition over a data column.
// A list of filters always combines with logical AND.
type Filter struct {
	Column   string
	Operator Op
	Value    any
}

func (f Filter) String() string {
	return fmt.Sprintf("(%s %s %v)", f.Column, f.Operator, f.Value)
}

type InvalidFilterError struct {
	Filter Filter
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("%s cannot be parsed, supported operators are =, <, <=, > and >=", e.Filter)
}
