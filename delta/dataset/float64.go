package dataset

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/go-faster/jx"
)

func NewFloat64(name string) Column {
	return &col[float64]{
		name:     name,
		typeName: TypeNameFloat64,
		conv: func(v any) (float64, bool) {
			switch x := v.(type) {
			case float64:
				return x, true
			case float32:
				return float64(x), true
			case int64:
				return float64(x), true
			case int:
				return float64(x), true
			}
			return 0, false
		},
		arrowType: arrow.PrimitiveTypes.Float64,
		write: func(b array.Builder, v float64) {
			b.(*array.Float64Builder).Append(v)
		},
		decode: func(d *jx.Decoder) (float64, error) { return d.Float64() },
		encode: func(e *jx.Encoder, v float64) { e.Float64(v) },
		width:  func(float64) int64 { return 8 },
	}
}
