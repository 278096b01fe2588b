package ddbstore

import (
	"fmt"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/update"
	"github.com/acksell/dynamini/dynamodb/val"
	"go.uber.org/zap"
)

// Update applies the actions in order to the item addressed by key and returns
// a copy of the resulting item. A missing item is created first. Readers see
// either none or all of the actions.
func (s *Store) Update(tableName string, key table.Key, actions []update.UpdateAction) (val.Item, error) {
	t, err := s.getTable(tableName)
	if err != nil {
		return nil, err
	}
	keys := t.def.KeyDefinitions
	if err := keys.Validate(key); err != nil {
		return nil, fmt.Errorf("table %q: %w", tableName, err)
	}
	for _, a := range actions {
		if keys.IsKeyAttribute(a.Attribute) {
			return nil, fmt.Errorf("%w: cannot update key attribute %q", ErrSchema, a.Attribute)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current, _ := t.get(key)
	next, err := update.Apply(current, actions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrArgument, err)
	}
	for name, v := range keys.Attributes(key) {
		next[name] = v
	}
	t.put(key, next)
	return next.Clone(), nil
}

// UpdateChunked splits the actions into requests no larger than
// Options.MaxRequestBytes and applies them one after another, the way a client
// has to against the real service. Each chunk is atomic; the whole call is not.
func (s *Store) UpdateChunked(tableName string, key table.Key, actions []update.UpdateAction) (val.Item, error) {
	chunks, err := update.Split(actions, s.opts.MaxRequestBytes, s.opts.Sizer)
	if err != nil {
		return nil, err
	}
	if len(chunks) > 1 {
		s.log.Debug("split update request",
			zap.String("table", tableName),
			zap.Stringer("key", key),
			zap.Int("actions", len(actions)),
			zap.Int("requests", len(chunks)),
		)
	}
	if len(chunks) == 0 {
		return s.Update(tableName, key, nil)
	}
	var item val.Item
	for i, chunk := range chunks {
		item, err = s.Update(tableName, key, chunk)
		if err != nil {
			return nil, fmt.Errorf("request %d of %d: %w", i+1, len(chunks), err)
		}
	}
	return item, nil
}

// Put replaces the item stored under the key held by item's own key attributes.
func (s *Store) Put(tableName string, item val.Item) error {
	t, err := s.getTable(tableName)
	if err != nil {
		return err
	}
	return t.putItem(item)
}

func (t *memTable) putItem(item val.Item) error {
	key, err := t.def.ExtractKey(item)
	if err != nil {
		return fmt.Errorf("table %q: %w", t.def.Name, err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.put(key, item.Clone())
	return nil
}
