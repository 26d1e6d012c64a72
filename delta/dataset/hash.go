package dataset

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/go-faster/city"
)

// Hash is a content hash of a single dynamically typed value. Integer kinds
// of equal value hash equally; NULL hashes to 0.
func Hash(v any) uint64 {
	if v == nil {
		return 0
	}
	if t, ok := v.(time.Time); ok {
		return city.Hash64(int64ToBytes(t.UnixMicro()))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return city.Hash64([]byte{1})
		}
		return city.Hash64([]byte{0})
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return city.Hash64(int64ToBytes(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return city.Hash64(uint64ToBytes(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return city.Hash64(float64ToBytes(rv.Float()))
	case reflect.String:
		return city.Hash64([]byte(rv.String()))
	}
	return city.Hash64([]byte(fmt.Sprintf("%v", v)))
}

// KeyHash hashes the tuple of the listed column values at row i.
func (d *Dataset) KeyHash(i int, cols []string) uint64 {
	buf := make([]byte, 0, 9*len(cols))
	for _, n := range cols {
		v := d.Value(n, i)
		if v == nil {
			buf = append(buf, 0)
			continue
		}
		buf = append(buf, 1)
		buf = binary.LittleEndian.AppendUint64(buf, Hash(v))
	}
	return city.Hash64(buf)
}

// ContentHash hashes the listed columns of every row, a per-row fingerprint
// usable for change detection.
func (d *Dataset) ContentHash(cols []string) []uint64 {
	res := make([]uint64, d.Len())
	for i := range res {
		res[i] = d.KeyHash(i, cols)
	}
	return res
}

func int64ToBytes(i int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(i))
	return b
}

func uint64ToBytes(i uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, i)
	return b
}

func float64ToBytes(f float64) []byte {
	return uint64ToBytes(math.Float64bits(f))
}
