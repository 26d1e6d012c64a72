package duckengine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/metrico/deltamaint/delta/dataset"
)

// ColumnDef is one data column of a managed table.
type ColumnDef struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// TableDef describes a managed table: its data columns, where rewritten data
// files go and which columns partition the layout.
type TableDef struct {
	Name        string      `yaml:"name"`
	Location    string      `yaml:"location"`
	Columns     []ColumnDef `yaml:"columns"`
	PartitionBy []string    `yaml:"partition_by"`
}

// LoadTableDef reads a table definition from a YAML file.
func LoadTableDef(filename string) (*TableDef, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var def TableDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *TableDef) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("table name is required")
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", d.Name)
	}
	seen := make(map[string]struct{}, len(d.Columns))
	for _, c := range d.Columns {
		if _, ok := dataset.Builders[c.Type]; !ok {
			return fmt.Errorf("table %q column %q has unsupported type %q", d.Name, c.Name, c.Type)
		}
		if _, ok := seen[c.Name]; ok {
			return fmt.Errorf("table %q has duplicate column %q", d.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	for _, p := range d.PartitionBy {
		if _, ok := seen[p]; !ok {
			return fmt.Errorf("table %q partitions by unknown column %q", d.Name, p)
		}
	}
	return nil
}

// ColumnNames returns the data column names in definition order.
func (d *TableDef) ColumnNames() []string {
	res := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		res[i] = c.Name
	}
	return res
}

func (d *TableDef) columnType(name string) (string, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c.Type, true
		}
	}
	return "", false
}

// EmptyDataset builds an empty dataset with the table's schema.
func (d *TableDef) EmptyDataset() (*dataset.Dataset, error) {
	cols := make([]dataset.Column, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = dataset.Builders[c.Type](c.Name)
	}
	return dataset.New(cols...)
}
