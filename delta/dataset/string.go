package dataset

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/go-faster/jx"
)

func NewString(name string) Column {
	return &col[string]{
		name:     name,
		typeName: TypeNameString,
		conv: func(v any) (string, bool) {
			s, ok := v.(string)
			return s, ok
		},
		arrowType: arrow.BinaryTypes.String,
		write: func(b array.Builder, v string) {
			b.(*array.StringBuilder).Append(v)
		},
		decode: func(d *jx.Decoder) (string, error) { return d.Str() },
		encode: func(e *jx.Encoder, v string) { e.Str(v) },
		width:  func(v string) int64 { return int64(len(v)) },
	}
}
