package ddbstore

import (
	"fmt"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/val"
)

// Get returns a copy of the item stored under key, or ErrNotFound.
func (s *Store) Get(tableName string, key table.Key) (val.Item, error) {
	t, err := s.getTable(tableName)
	if err != nil {
		return nil, err
	}
	if err := t.def.KeyDefinitions.Validate(key); err != nil {
		return nil, fmt.Errorf("table %q: %w", tableName, err)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	item, ok := t.get(key)
	if !ok {
		return nil, fmt.Errorf("%s in table %q: %w", key, tableName, ErrNotFound)
	}
	return item.Clone(), nil
}
