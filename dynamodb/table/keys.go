package table

import (
	"errors"
	"fmt"

	"github.com/acksell/dynamini/dynamodb/val"
)

// ErrSchema is returned when a key does not match the key schema it is used with.
var ErrSchema = errors.New("schema mismatch")

type PrimaryKeyDefinition struct {
	PartitionKey KeyDef
	SortKey      KeyDef // Name is empty for tables without a range key.
}

type KeyDef struct {
	Name string
	Kind KeyKind
}

// KeyKind restricts the values a key attribute accepts. The empty kind accepts
// both strings and numbers.
type KeyKind string

const (
	KeyKindAny KeyKind = ""
	KeyKindS   KeyKind = "S"
	KeyKindN   KeyKind = "N"
)

func (k PrimaryKeyDefinition) HasSortKey() bool {
	return k.SortKey.Name != ""
}

// Names returns the key attribute names, partition key first.
func (k PrimaryKeyDefinition) Names() []string {
	if k.HasSortKey() {
		return []string{k.PartitionKey.Name, k.SortKey.Name}
	}
	return []string{k.PartitionKey.Name}
}

// IsKeyAttribute reports whether name is one of the key attributes.
func (k PrimaryKeyDefinition) IsKeyAttribute(name string) bool {
	return name == k.PartitionKey.Name || (k.HasSortKey() && name == k.SortKey.Name)
}

// Key identifies an item: a hash value and, for tables with a range key, a range value.
type Key struct {
	Hash  val.Value
	Range val.Value
}

// HashKey creates a key for a table without a range key.
func HashKey(hash val.Value) Key {
	return Key{Hash: hash}
}

// RangeKey creates a key for a table with a range key.
func RangeKey(hash, rng val.Value) Key {
	return Key{Hash: hash, Range: rng}
}

// ID returns the canonical identity of the key, suitable as a map key.
func (k Key) ID() string {
	if k.Range.IsZero() {
		return k.Hash.Key()
	}
	return k.Hash.Key() + "|" + k.Range.Key()
}

func (k Key) String() string {
	if k.Range.IsZero() {
		return k.Hash.String()
	}
	return k.Hash.String() + "/" + k.Range.String()
}

// Validate checks that the key has the shape and kinds the definition requires.
func (k PrimaryKeyDefinition) Validate(key Key) error {
	if key.Hash.IsZero() {
		return fmt.Errorf("%w: missing value for partition key %q", ErrSchema, k.PartitionKey.Name)
	}
	if err := checkKind(k.PartitionKey, key.Hash); err != nil {
		return err
	}
	if !k.HasSortKey() {
		if !key.Range.IsZero() {
			return fmt.Errorf("%w: range value given but the schema has no sort key", ErrSchema)
		}
		return nil
	}
	if key.Range.IsZero() {
		return fmt.Errorf("%w: missing value for sort key %q", ErrSchema, k.SortKey.Name)
	}
	return checkKind(k.SortKey, key.Range)
}

// Attributes returns the key as item attributes.
func (k PrimaryKeyDefinition) Attributes(key Key) val.Item {
	item := val.Item{k.PartitionKey.Name: key.Hash.Clone()}
	if k.HasSortKey() {
		item[k.SortKey.Name] = key.Range.Clone()
	}
	return item
}

// ExtractKey reads the key attributes out of a full item.
func (k PrimaryKeyDefinition) ExtractKey(item val.Item) (Key, error) {
	hash, ok := item[k.PartitionKey.Name]
	if !ok {
		return Key{}, fmt.Errorf("%w: partition key %q not found", ErrSchema, k.PartitionKey.Name)
	}
	key := Key{Hash: hash}
	if k.HasSortKey() {
		rng, ok := item[k.SortKey.Name]
		if !ok {
			return Key{}, fmt.Errorf("%w: sort key %q not found on item", ErrSchema, k.SortKey.Name)
		}
		key.Range = rng
	}
	if err := k.Validate(key); err != nil {
		return Key{}, err
	}
	return key, nil
}

// Check reports whether v can be stored under this key: a string or number
// matching the declared kind.
func (k KeyDef) Check(v val.Value) error {
	return checkKind(k, v)
}

func checkKind(def KeyDef, v val.Value) error {
	var got KeyKind
	switch v.Kind() {
	case val.KindString:
		got = KeyKindS
	case val.KindNumber:
		got = KeyKindN
	default:
		return fmt.Errorf("%w: key %q must be a string or number, got %s", ErrSchema, def.Name, v.Kind())
	}
	if def.Kind != KeyKindAny && got != def.Kind {
		return fmt.Errorf("%w: key %q got kind %q want %q", ErrSchema, def.Name, got, def.Kind)
	}
	return nil
}
