package dataset

import (
	"fmt"
	"time"

	"github.com/metrico/deltamaint/pred"
)

// Dataset is an ordered set of equal-length columns.
type Dataset struct {
	cols   []Column
	byName map[string]int
}

func New(cols ...Column) (*Dataset, error) {
	d := &Dataset{byName: make(map[string]int, len(cols))}
	for _, c := range cols {
		if _, ok := d.byName[c.Name()]; ok {
			return nil, fmt.Errorf("duplicate column %q", c.Name())
		}
		if len(d.cols) > 0 && c.Len() != d.cols[0].Len() {
			return nil, fmt.Errorf("columns length and data length mismatch")
		}
		d.byName[c.Name()] = len(d.cols)
		d.cols = append(d.cols, c)
	}
	return d, nil
}

// Wrap builds a column from a typed slice, like the engines hand them over.
func Wrap(name string, data any) (Column, error) {
	var c Column
	switch v := data.(type) {
	case []int64:
		c = NewInt64(name)
		for _, x := range v {
			_ = c.Append(x)
		}
	case []float64:
		c = NewFloat64(name)
		for _, x := range v {
			_ = c.Append(x)
		}
	case []string:
		c = NewString(name)
		for _, x := range v {
			_ = c.Append(x)
		}
	case []bool:
		c = NewBool(name)
		for _, x := range v {
			_ = c.Append(x)
		}
	case []time.Time:
		c = NewTimestamp(name)
		for _, x := range v {
			_ = c.Append(x)
		}
	case []any:
		return nil, fmt.Errorf("unsupported data type: %T, wrap a typed slice", data)
	default:
		return nil, fmt.Errorf("unsupported data type: %T", data)
	}
	return c, nil
}

func (d *Dataset) Columns() []string {
	res := make([]string, len(d.cols))
	for i, c := range d.cols {
		res[i] = c.Name()
	}
	return res
}

func (d *Dataset) Column(name string) (Column, bool) {
	i, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return d.cols[i], true
}

func (d *Dataset) Len() int {
	if len(d.cols) == 0 {
		return 0
	}
	return d.cols[0].Len()
}

func (d *Dataset) Value(col string, i int) any {
	c, ok := d.Column(col)
	if !ok {
		return nil
	}
	return c.Value(i)
}

func (d *Dataset) Row(i int) map[string]any {
	row := make(map[string]any, len(d.cols))
	for _, c := range d.cols {
		row[c.Name()] = c.Value(i)
	}
	return row
}

// AppendRow appends the values of the dataset's own columns from row;
// a missing key appends NULL, extra keys are ignored.
func (d *Dataset) AppendRow(row map[string]any) error {
	for _, c := range d.cols {
		if err := c.Append(row[c.Name()]); err != nil {
			return err
		}
	}
	return nil
}

// EmptyLike returns an empty dataset with fresh columns of the same types,
// restricted to names (all columns when names is empty).
func (d *Dataset) EmptyLike(names ...string) (*Dataset, error) {
	if len(names) == 0 {
		names = d.Columns()
	}
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c, ok := d.Column(n)
		if !ok {
			return nil, fmt.Errorf("no column %q", n)
		}
		cols = append(cols, c.EmptyLike(n))
	}
	return New(cols...)
}

func (d *Dataset) Clone() (*Dataset, error) {
	out, err := d.EmptyLike()
	if err != nil {
		return nil, err
	}
	for i := 0; i < d.Len(); i++ {
		if err := out.AppendRow(d.Row(i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RowsEqual compares the listed columns of row i against row j of other.
// Two NULLs compare equal.
func (d *Dataset) RowsEqual(i int, other *Dataset, j int, cols []string) bool {
	for _, n := range cols {
		if !pred.Equal(d.Value(n, i), other.Value(n, j)) {
			return false
		}
	}
	return true
}

// ByteSize is a rough in-memory payload estimate, used for synthesized
// add-file sizes.
func (d *Dataset) ByteSize() int64 {
	var sz int64
	for _, c := range d.cols {
		sz += c.ByteSize()
	}
	return sz
}

// Group is one distinct key tuple: the first row holding it and how many
// rows share it.
type Group struct {
	First int
	Count int
}

// GroupCounts groups rows by the key columns, first-seen order. Hash
// collisions are resolved by value comparison.
func (d *Dataset) GroupCounts(cols []string) ([]Group, error) {
	for _, n := range cols {
		if _, ok := d.Column(n); !ok {
			return nil, fmt.Errorf("no column %q", n)
		}
	}
	var groups []Group
	buckets := make(map[uint64][]int) // key hash -> group indexes
	for i := 0; i < d.Len(); i++ {
		h := d.KeyHash(i, cols)
		found := false
		for _, gi := range buckets[h] {
			if d.RowsEqual(i, d, groups[gi].First, cols) {
				groups[gi].Count++
				found = true
				break
			}
		}
		if !found {
			buckets[h] = append(buckets[h], len(groups))
			groups = append(groups, Group{First: i, Count: 1})
		}
	}
	return groups, nil
}
