package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// seedColumn is the YAML shape of one column in a seed file.
type seedColumn struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	NotNull bool   `yaml:"not_null"`
}

// seedTable is the YAML shape of one table in a seed file.
type seedTable struct {
	Name    string       `yaml:"name"`
	Columns []seedColumn `yaml:"columns"`
}

// seedFile is the top-level YAML document a seed file must contain.
type seedFile struct {
	Tables []seedTable `yaml:"tables"`
}

// LoadSeed populates cat from a YAML schema document (internal/config's
// catalog.seed_file), so the REPL and EXPLAIN command have tables to bind
// against without a storage engine attached.
func LoadSeed(cat *Catalog, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}

	var doc seedFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}

	for _, st := range doc.Tables {
		cols := make([]Column, 0, len(st.Columns))
		for i, sc := range st.Columns {
			dt := ParseDataType(sc.Type)
			if dt == TypeUnknown {
				return fmt.Errorf("table %q column %q: unknown type %q", st.Name, sc.Name, sc.Type)
			}
			cols = append(cols, Column{
				ID:      i,
				Name:    sc.Name,
				Type:    dt,
				NotNull: sc.NotNull,
			})
		}
		if _, err := cat.CreateTable(st.Name, cols); err != nil {
			return fmt.Errorf("seed table %q: %w", st.Name, err)
		}
	}
	return nil
}
