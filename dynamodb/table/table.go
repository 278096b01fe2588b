// Package table describes the key schema of a table and its secondary indexes.
package table

import (
	"fmt"
	"slices"

	"github.com/acksell/dynamini/dynamodb/val"
)

type TableDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
	Indexes        []IndexDefinition
}

// IndexDefinition is a secondary index. Indexes are derived views of the table:
// an item shows up in an index when it carries the index key attributes.
type IndexDefinition struct {
	Name           string
	KeyDefinitions PrimaryKeyDefinition
}

// Index returns the secondary index with the given name.
func (t TableDefinition) Index(name string) (IndexDefinition, bool) {
	for _, idx := range t.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return IndexDefinition{}, false
}

func (t TableDefinition) ExtractKey(item val.Item) (Key, error) {
	return t.KeyDefinitions.ExtractKey(item)
}

// Validate checks that the definition is usable.
func (t TableDefinition) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: table name is required", ErrSchema)
	}
	if t.KeyDefinitions.PartitionKey.Name == "" {
		return fmt.Errorf("%w: table %q has no partition key", ErrSchema, t.Name)
	}
	seen := make(map[string]struct{}, len(t.Indexes))
	for _, idx := range t.Indexes {
		if idx.Name == "" {
			return fmt.Errorf("%w: table %q has an index without a name", ErrSchema, t.Name)
		}
		if _, dup := seen[idx.Name]; dup {
			return fmt.Errorf("%w: table %q declares index %q twice", ErrSchema, t.Name, idx.Name)
		}
		seen[idx.Name] = struct{}{}
		if idx.KeyDefinitions.PartitionKey.Name == "" {
			return fmt.Errorf("%w: index %q has no partition key", ErrSchema, idx.Name)
		}
	}
	return nil
}

// Equal reports whether both definitions describe the same schema.
func (t TableDefinition) Equal(other TableDefinition) bool {
	if t.Name != other.Name || t.KeyDefinitions != other.KeyDefinitions {
		return false
	}
	return slices.Equal(t.Indexes, other.Indexes)
}

// WithName returns a copy of the definition for another table.
func (t TableDefinition) WithName(name string) TableDefinition {
	cp := t
	cp.Name = name
	cp.Indexes = append([]IndexDefinition(nil), t.Indexes...)
	return cp
}
