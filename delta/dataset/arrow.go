package dataset

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

func (d *Dataset) ArrowSchema() *arrow.Schema {
	fields := make([]arrow.Field, len(d.cols))
	for i, c := range d.cols {
		fields[i] = arrow.Field{Name: c.Name(), Type: c.ArrowDataType(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// ToRecord materializes the dataset as one arrow record. The caller releases
// the record.
func (d *Dataset) ToRecord(pool memory.Allocator) (arrow.Record, error) {
	if pool == nil {
		pool = memory.NewGoAllocator()
	}
	schema := d.ArrowSchema()
	rb := array.NewRecordBuilder(pool, schema)
	defer rb.Release()
	for i, c := range d.cols {
		if err := c.WriteToBatch(rb.Field(i)); err != nil {
			return nil, err
		}
	}
	return rb.NewRecord(), nil
}
