package dataset

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/go-faster/jx"
)

func NewInt64(name string) Column {
	return &col[int64]{
		name:     name,
		typeName: TypeNameInt64,
		conv: func(v any) (int64, bool) {
			switch x := v.(type) {
			case int64:
				return x, true
			case int:
				return int64(x), true
			case int32:
				return int64(x), true
			}
			return 0, false
		},
		arrowType: arrow.PrimitiveTypes.Int64,
		write: func(b array.Builder, v int64) {
			b.(*array.Int64Builder).Append(v)
		},
		decode: func(d *jx.Decoder) (int64, error) { return d.Int64() },
		encode: func(e *jx.Encoder, v int64) { e.Int64(v) },
		width:  func(int64) int64 { return 8 },
	}
}
