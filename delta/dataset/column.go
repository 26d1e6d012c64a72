// Package dataset is a small in-memory columnar table used to hand row sets
// to and from a table engine: typed nullable columns, grouping, filtering and
// content hashing. It is not a query engine.
package dataset

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/go-faster/jx"
	"golang.org/x/exp/constraints"
)

const (
	TypeNameInt64     = "BIGINT"
	TypeNameFloat64   = "DOUBLE"
	TypeNameString    = "VARCHAR"
	TypeNameBool      = "BOOLEAN"
	TypeNameTimestamp = "TIMESTAMP"
)

// Column is one named, typed, nullable column.
type Column interface {
	Name() string
	TypeName() string
	Len() int
	// Value returns the value at row i, nil for NULL.
	Value(i int) any
	// Append adds one value; nil appends a NULL.
	Append(v any) error
	// MinMax returns the smallest and largest non-NULL values, or nil, nil
	// when the column is empty or all-NULL.
	MinMax() (any, any)
	// EmptyLike returns a fresh empty column of the same type.
	EmptyLike(name string) Column
	ByteSize() int64
	ArrowDataType() arrow.DataType
	WriteToBatch(b array.Builder) error
	AppendJSON(d *jx.Decoder) error
	EncodeJSON(e *jx.Encoder, i int)
}

// Builder creates an empty column of a named type.
type Builder func(name string) Column

var Builders = map[string]Builder{
	"BIGINT":    NewInt64,
	"INT8":      NewInt64,
	"LONG":      NewInt64,
	"Int64":     NewInt64,
	"DOUBLE":    NewFloat64,
	"FLOAT8":    NewFloat64,
	"Float64":   NewFloat64,
	"VARCHAR":   NewString,
	"STRING":    NewString,
	"TEXT":      NewString,
	"String":    NewString,
	"BOOLEAN":   NewBool,
	"BOOL":      NewBool,
	"TIMESTAMP": NewTimestamp,
	"DATETIME":  NewTimestamp,
}

// col is the shared implementation for types with a natural ordering.
type col[T constraints.Ordered] struct {
	name     string
	typeName string
	data     []T
	valids   []bool

	conv      func(any) (T, bool)
	arrowType arrow.DataType
	write     func(b array.Builder, v T)
	decode    func(d *jx.Decoder) (T, error)
	encode    func(e *jx.Encoder, v T)
	width     func(v T) int64
}

func (c *col[T]) Name() string     { return c.name }
func (c *col[T]) TypeName() string { return c.typeName }
func (c *col[T]) Len() int         { return len(c.data) }

func (c *col[T]) Value(i int) any {
	if !c.valids[i] {
		return nil
	}
	return c.data[i]
}

func (c *col[T]) Append(v any) error {
	if v == nil {
		var zero T
		c.data = append(c.data, zero)
		c.valids = append(c.valids, false)
		return nil
	}
	tv, ok := c.conv(v)
	if !ok {
		return fmt.Errorf("invalid data type for column %s: %T is not %s", c.name, v, c.typeName)
	}
	c.data = append(c.data, tv)
	c.valids = append(c.valids, true)
	return nil
}

func (c *col[T]) MinMax() (any, any) {
	var min, max T
	seen := false
	for i, v := range c.data {
		if !c.valids[i] {
			continue
		}
		if !seen || v < min {
			min = v
		}
		if !seen || v > max {
			max = v
		}
		seen = true
	}
	if !seen {
		return nil, nil
	}
	return min, max
}

func (c *col[T]) EmptyLike(name string) Column {
	cc := *c
	cc.name = name
	cc.data = nil
	cc.valids = nil
	return &cc
}

func (c *col[T]) ByteSize() int64 {
	var sz int64
	for _, v := range c.data {
		sz += c.width(v)
	}
	return sz
}

func (c *col[T]) ArrowDataType() arrow.DataType { return c.arrowType }

func (c *col[T]) WriteToBatch(b array.Builder) error {
	for i, v := range c.data {
		if !c.valids[i] {
			b.AppendNull()
			continue
		}
		c.write(b, v)
	}
	return nil
}

func (c *col[T]) AppendJSON(d *jx.Decoder) error {
	if d.Next() == jx.Null {
		if err := d.Null(); err != nil {
			return err
		}
		return c.Append(nil)
	}
	v, err := c.decode(d)
	if err != nil {
		return err
	}
	c.data = append(c.data, v)
	c.valids = append(c.valids, true)
	return nil
}

func (c *col[T]) EncodeJSON(e *jx.Encoder, i int) {
	if !c.valids[i] {
		e.Null()
		return
	}
	c.encode(e, c.data[i])
}
