package dataset

import (
	"fmt"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/go-faster/jx"
)

// timeCol stores timestamps as microseconds since epoch, the resolution of
// add-file modification times. Values surface as time.Time in UTC.
type timeCol struct {
	name   string
	micros []int64
	valids []bool
}

func NewTimestamp(name string) Column {
	return &timeCol{name: name}
}

func (c *timeCol) Name() string     { return c.name }
func (c *timeCol) TypeName() string { return TypeNameTimestamp }
func (c *timeCol) Len() int         { return len(c.micros) }

func (c *timeCol) Value(i int) any {
	if !c.valids[i] {
		return nil
	}
	return time.UnixMicro(c.micros[i]).UTC()
}

func (c *timeCol) Append(v any) error {
	if v == nil {
		c.micros = append(c.micros, 0)
		c.valids = append(c.valids, false)
		return nil
	}
	switch x := v.(type) {
	case time.Time:
		c.micros = append(c.micros, x.UnixMicro())
	case int64:
		c.micros = append(c.micros, x)
	default:
		return fmt.Errorf("invalid data type for column %s: %T is not %s", c.name, v, TypeNameTimestamp)
	}
	c.valids = append(c.valids, true)
	return nil
}

func (c *timeCol) MinMax() (any, any) {
	var min, max int64
	seen := false
	for i, v := range c.micros {
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
	return time.UnixMicro(min).UTC(), time.UnixMicro(max).UTC()
}

func (c *timeCol) EmptyLike(name string) Column { return &timeCol{name: name} }

func (c *timeCol) ByteSize() int64 { return int64(len(c.micros)) * 8 }

func (c *timeCol) ArrowDataType() arrow.DataType { return arrow.FixedWidthTypes.Timestamp_us }

func (c *timeCol) WriteToBatch(b array.Builder) error {
	tb := b.(*array.TimestampBuilder)
	for i, v := range c.micros {
		if !c.valids[i] {
			tb.AppendNull()
			continue
		}
		tb.Append(arrow.Timestamp(v))
	}
	return nil
}

func (c *timeCol) AppendJSON(d *jx.Decoder) error {
	if d.Next() == jx.Null {
		if err := d.Null(); err != nil {
			return err
		}
		return c.Append(nil)
	}
	v, err := d.Int64()
	if err != nil {
		return err
	}
	return c.Append(v)
}

func (c *timeCol) EncodeJSON(e *jx.Encoder, i int) {
	if !c.valids[i] {
		e.Null()
		return
	}
	e.Int64(c.micros[i])
}
