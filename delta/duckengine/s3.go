package duckengine

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/metrico/deltamaint/config"
	"github.com/metrico/deltamaint/delta"
)

// ListS3Files enumerates parquet objects under the prefix as manifest
// entries. Size and modification time come from the listing, partition
// values from hive-style k=v key segments; min/max stay empty since a
// listing carries no column statistics.
func ListS3Files(ctx context.Context, cfg config.S3Configuration, prefix string) ([]delta.AddFile, error) {
	client, err := minio.New(cfg.URL, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Key, cfg.Secret, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}
	var res []delta.AddFile
	for obj := range client.ListObjects(ctx, cfg.Bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if !strings.HasSuffix(obj.Key, ".parquet") {
			continue
		}
		res = append(res, delta.AddFile{
			Path:             fmt.Sprintf("s3://%s/%s", cfg.Bucket, obj.Key),
			SizeBytes:        obj.Size,
			ModificationTime: obj.LastModified.UTC(),
			PartitionValues:  s3PartitionValues(prefix, obj.Key),
			Min:              map[string]any{},
			Max:              map[string]any{},
		})
	}
	return res, nil
}

func s3PartitionValues(prefix, key string) map[string]string {
	rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
	res := make(map[string]string)
	segs := strings.Split(rel, "/")
	if len(segs) > 0 {
		segs = segs[:len(segs)-1] // last segment is the file name
	}
	for _, seg := range segs {
		k, v, ok := strings.Cut(seg, "=")
		if ok && k != "" {
			res[k] = v
		}
	}
	return res
}
