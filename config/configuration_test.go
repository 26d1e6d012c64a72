package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(file, []byte(`
engine:
  root: /data/tables
  db_path: /data/maint.db
  scan_workers: 4
s3:
  url: minio:9000
  key: ak
  secret: sk
  bucket: tables
  secure: false
`), 0640)
	assert.NoError(t, err)

	assert.NoError(t, InitConfig(file))
	assert.Equal(t, "/data/tables", Config.Engine.Root)
	assert.Equal(t, "/data/maint.db", Config.Engine.DBPath)
	assert.Equal(t, 4, Config.Engine.ScanWorkers)
	assert.Equal(t, "minio:9000", Config.S3.URL)
	assert.Equal(t, "tables", Config.S3.Bucket)
	assert.False(t, Config.S3.Secure)
}

func TestInitConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	assert.NoError(t, os.WriteFile(file, []byte("engine:\n  root: /x\n"), 0640))

	assert.NoError(t, InitConfig(file))
	assert.Equal(t, "/tmp/deltamaint", Config.Engine.DBPath)
	assert.Equal(t, 10, Config.Engine.ScanWorkers)
}

func TestInitConfigMissingFile(t *testing.T) {
	assert.Error(t, InitConfig("/nonexistent/config.yaml"))
}
