package dataset

import (
	"github.com/go-faster/jx"
)

// EncodeRowJSON writes row i as a JSON object with one field per column.
// Timestamps are written as epoch microseconds.
func (d *Dataset) EncodeRowJSON(e *jx.Encoder, i int) {
	e.ObjStart()
	for _, c := range d.cols {
		e.FieldStart(c.Name())
		c.EncodeJSON(e, i)
	}
	e.ObjEnd()
}

// DecodeRowJSON appends one row from a JSON object. Fields missing from the
// object become NULL, unknown fields are skipped.
func (d *Dataset) DecodeRowJSON(dec *jx.Decoder) error {
	before := d.Len()
	err := dec.Obj(func(dec *jx.Decoder, key string) error {
		c, ok := d.Column(key)
		if !ok {
			return dec.Skip()
		}
		return c.AppendJSON(dec)
	})
	if err != nil {
		return err
	}
	for _, c := range d.cols {
		if c.Len() == before {
			if err := c.Append(nil); err != nil {
				return err
			}
		}
	}
	return nil
}
