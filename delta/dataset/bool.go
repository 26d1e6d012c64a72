package dataset

import (
	"fmt"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/go-faster/jx"
)

// boolCol is concrete because bool has no ordering for the generic core.
type boolCol struct {
	name   string
	data   []bool
	valids []bool
}

func NewBool(name string) Column {
	return &boolCol{name: name}
}

func (c *boolCol) Name() string     { return c.name }
func (c *boolCol) TypeName() string { return TypeNameBool }
func (c *boolCol) Len() int         { return len(c.data) }

func (c *boolCol) Value(i int) any {
	if !c.valids[i] {
		return nil
	}
	return c.data[i]
}

func (c *boolCol) Append(v any) error {
	if v == nil {
		c.data = append(c.data, false)
		c.valids = append(c.valids, false)
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("invalid data type for column %s: %T is not %s", c.name, v, TypeNameBool)
	}
	c.data = append(c.data, b)
	c.valids = append(c.valids, true)
	return nil
}

func (c *boolCol) MinMax() (any, any) {
	var min, max, seen bool
	min = true
	for i, v := range c.data {
		if !c.valids[i] {
			continue
		}
		seen = true
		if !v {
			min = false
		} else {
			max = true
		}
	}
	if !seen {
		return nil, nil
	}
	return min, max
}

func (c *boolCol) EmptyLike(name string) Column { return &boolCol{name: name} }

func (c *boolCol) ByteSize() int64 { return int64(len(c.data)) }

func (c *boolCol) ArrowDataType() arrow.DataType { return arrow.FixedWidthTypes.Boolean }

func (c *boolCol) WriteToBatch(b array.Builder) error {
	bb := b.(*array.BooleanBuilder)
	for i, v := range c.data {
		if !c.valids[i] {
			bb.AppendNull()
			continue
		}
		bb.Append(v)
	}
	return nil
}

func (c *boolCol) AppendJSON(d *jx.Decoder) error {
	if d.Next() == jx.Null {
		if err := d.Null(); err != nil {
			return err
		}
		return c.Append(nil)
	}
	v, err := d.Bool()
	if err != nil {
		return err
	}
	return c.Append(v)
}

func (c *boolCol) EncodeJSON(e *jx.Encoder, i int) {
	if !c.valids[i] {
		e.Null()
		return
	}
	e.Bool(c.data[i])
}
