package ddbstore

import (
	"fmt"

	"github.com/acksell/dynamini/dynamodb/table"
)

// Delete removes the item stored under key. Deleting a missing item is not an error.
func (s *Store) Delete(tableName string, key table.Key) error {
	t, err := s.getTable(tableName)
	if err != nil {
		return err
	}
	return t.deleteItem(key)
}

func (t *memTable) deleteItem(key table.Key) error {
	if err := t.def.KeyDefinitions.Validate(key); err != nil {
		return fmt.Errorf("table %q: %w", t.def.Name, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.remove(key)
	return nil
}
