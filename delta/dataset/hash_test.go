package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHash(t *testing.T) {
	assert.Equal(t, uint64(0), Hash(nil))
	assert.Equal(t, Hash(int64(5)), Hash(5), "integer kinds of equal value hash equally")
	assert.NotEqual(t, Hash(int64(5)), Hash(int64(6)))
	assert.Equal(t, Hash("x"), Hash("x"))
	assert.NotEqual(t, Hash(true), Hash(false))

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, Hash(ts), Hash(ts.In(time.FixedZone("off", 3600))))
}

func TestKeyHash(t *testing.T) {
	a := NewInt64("a")
	b := NewString("b")
	for _, v := range []any{int64(1), int64(1), nil} {
		assert.NoError(t, a.Append(v))
	}
	for _, v := range []any{"x", "x", "x"} {
		assert.NoError(t, b.Append(v))
	}
	ds, err := New(a, b)
	assert.NoError(t, err)

	assert.Equal(t, ds.KeyHash(0, []string{"a", "b"}), ds.KeyHash(1, []string{"a", "b"}))
	assert.NotEqual(t, ds.KeyHash(0, []string{"a", "b"}), ds.KeyHash(2, []string{"a", "b"}),
		"NULL must not collide with a value tuple")

	hashes := ds.ContentHash([]string{"a", "b"})
	assert.Len(t, hashes, 3)
	assert.Equal(t, hashes[0], hashes[1])
}
