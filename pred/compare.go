package pred

import (
	"reflect"
	"time"
)

// Compare orders two dynamically typed values. The second result is false
// when the values are of types that cannot be ordered against each other.
// Integers and floats compare numerically across kinds, matching how
// statistics loaded from JSON (always float64) compare against typed filter
// values.
func Compare(a, b any) (int, bool) {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb), true
		}
		return 0, false
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	ka, kb := va.Kind(), vb.Kind()

	if isNumeric(ka) && isNumeric(kb) {
		if ka == reflect.Float32 || ka == reflect.Float64 ||
			kb == reflect.Float32 || kb == reflect.Float64 {
			return cmpOrdered(toFloat(va), toFloat(vb)), true
		}
		if isUnsigned(ka) && isUnsigned(kb) {
			return cmpOrdered(va.Uint(), vb.Uint()), true
		}
		if isUnsigned(ka) || isUnsigned(kb) {
			// mixed sign kinds, fall back to float to avoid overflow games
			return cmpOrdered(toFloat(va), toFloat(vb)), true
		}
		return cmpOrdered(va.Int(), vb.Int()), true
	}

	switch {
	case ka == reflect.String && kb == reflect.String:
		return cmpOrdered(va.String(), vb.String()), true
	case ka == reflect.Bool && kb == reflect.Bool:
		x, y := va.Bool(), vb.Bool()
		if x == y {
			return 0, true
		}
		if !x {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// Equal reports whether two values are the same for grouping and change
// detection. Two NULLs are equal; a NULL never equals a value.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if r, ok := Compare(a, b); ok {
		return r == 0
	}
	return reflect.DeepEqual(a, b)
}

func cmpOrdered[T interface {
	~int64 | ~uint64 | ~float64 | ~string
}](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch {
	case isUnsigned(v.Kind()):
		return float64(v.Uint())
	case v.Kind() == reflect.Float32 || v.Kind() == reflect.Float64:
		return v.Float()
	}
	return float64(v.Int())
}
