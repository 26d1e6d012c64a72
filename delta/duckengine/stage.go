package duckengine

import (
	"os"
	"path/filepath"

	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/google/uuid"

	"github.com/metrico/deltamaint/delta/dataset"
)

// stageParquet writes the dataset as a parquet file under dir and returns
// its path. Written to a .tmp name first, renamed when complete.
func stageParquet(ds *dataset.Dataset, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	fileName := uuid.New().String() + ".parquet"
	tmpPath := filepath.Join(dir, fileName+".tmp")
	outPath := filepath.Join(dir, fileName)

	record, err := ds.ToRecord(memory.NewGoAllocator())
	if err != nil {
		return "", err
	}
	defer record.Release()

	file, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	writerProps := parquet.NewWriterProperties()
	arrProps := pqarrow.NewArrowWriterProperties()
	writer, err := pqarrow.NewFileWriter(ds.ArrowSchema(), file, writerProps, arrProps)
	if err != nil {
		file.Close()
		return "", err
	}
	// writer.Close closes the underlying file
	if err := writer.Write(record); err != nil {
		writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return "", err
	}
	return outPath, nil
}
