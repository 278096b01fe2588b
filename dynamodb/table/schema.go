package table

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// SchemaFile is the YAML form of a single table schema.
//
//	table:
//	  name: users
//	  partitionKey: {name: id, kind: S}
//	  sortKey: {name: version, kind: N}
//	  indexes:
//	    - name: by-email
//	      partitionKey: {name: email}
type SchemaFile struct {
	Table TableSchema `yaml:"table"`
}

type TableSchema struct {
	Name         string        `yaml:"name"`
	PartitionKey KeyDefYAML    `yaml:"partitionKey"`
	SortKey      *KeyDefYAML   `yaml:"sortKey,omitempty"`
	Indexes      []IndexSchema `yaml:"indexes,omitempty"`
}

type KeyDefYAML struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind,omitempty"` // "S", "N", or empty for either
}

type IndexSchema struct {
	Name         string      `yaml:"name"`
	PartitionKey KeyDefYAML  `yaml:"partitionKey"`
	SortKey      *KeyDefYAML `yaml:"sortKey,omitempty"`
}

// LoadSchemas loads the schema files matching the glob pattern, sorted by table name.
func LoadSchemas(pattern string) ([]TableDefinition, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob pattern error: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no schema files found matching: %s", pattern)
	}
	return LoadSchemaFiles(matches)
}

// LoadSchemaFiles loads the given schema files, sorted by table name. A table
// defined by more than one file is an error.
func LoadSchemaFiles(paths []string) ([]TableDefinition, error) {
	byName := make(map[string]TableDefinition, len(paths))
	for _, path := range paths {
		def, err := LoadSchemaFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		if _, dup := byName[def.Name]; dup {
			return nil, fmt.Errorf("loading %s: table %q is defined more than once", path, def.Name)
		}
		byName[def.Name] = def
	}

	defs := make([]TableDefinition, 0, len(byName))
	for _, def := range byName {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// LoadSchemaFile reads and validates a single schema file.
func LoadSchemaFile(path string) (TableDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TableDefinition{}, err
	}
	return ParseSchema(data)
}

// ParseSchema decodes a YAML schema document.
func ParseSchema(data []byte) (TableDefinition, error) {
	var sf SchemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return TableDefinition{}, err
	}
	def, err := sf.Table.definition()
	if err != nil {
		return TableDefinition{}, err
	}
	if err := def.Validate(); err != nil {
		return TableDefinition{}, err
	}
	return def, nil
}

func (ts TableSchema) definition() (TableDefinition, error) {
	keys, err := keyDefinitions(ts.PartitionKey, ts.SortKey)
	if err != nil {
		return TableDefinition{}, fmt.Errorf("table %q: %w", ts.Name, err)
	}
	def := TableDefinition{Name: ts.Name, KeyDefinitions: keys}
	for _, idx := range ts.Indexes {
		keys, err := keyDefinitions(idx.PartitionKey, idx.SortKey)
		if err != nil {
			return TableDefinition{}, fmt.Errorf("index %q: %w", idx.Name, err)
		}
		def.Indexes = append(def.Indexes, IndexDefinition{Name: idx.Name, KeyDefinitions: keys})
	}
	return def, nil
}

func keyDefinitions(pk KeyDefYAML, sk *KeyDefYAML) (PrimaryKeyDefinition, error) {
	var keys PrimaryKeyDefinition
	var err error
	if keys.PartitionKey, err = pk.keyDef(); err != nil {
		return keys, err
	}
	if sk != nil {
		if keys.SortKey, err = sk.keyDef(); err != nil {
			return keys, err
		}
	}
	return keys, nil
}

func (k KeyDefYAML) keyDef() (KeyDef, error) {
	switch kind := KeyKind(k.Kind); kind {
	case KeyKindAny, KeyKindS, KeyKindN:
		return KeyDef{Name: k.Name, Kind: kind}, nil
	default:
		return KeyDef{}, fmt.Errorf("%w: key %q has unsupported kind %q", ErrSchema, k.Name, k.Kind)
	}
}
