package ddbstore

import (
	"fmt"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/val"
	"go.uber.org/zap"
)

type BatchGetOutput struct {
	// Found holds the items that exist, in the order of the requested keys.
	Found []val.Item
	// NotFound holds the requested keys with no item.
	NotFound []table.Key
}

// BatchGet looks up many keys at once. A request naming the same key twice is
// rejected with ErrDuplicateKey before anything is read. Keys are read in chunks
// of Options.MaxBatchGetKeys; the items of one chunk are read together.
func (s *Store) BatchGet(tableName string, keys []table.Key) (*BatchGetOutput, error) {
	t, err := s.getTable(tableName)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if err := t.def.KeyDefinitions.Validate(key); err != nil {
			return nil, fmt.Errorf("table %q: %w", tableName, err)
		}
		id := key.ID()
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		seen[id] = struct{}{}
	}

	out := &BatchGetOutput{}
	chunks := chunk(keys, s.opts.MaxBatchGetKeys)
	if len(chunks) > 1 {
		s.log.Debug("chunked batch get",
			zap.String("table", tableName),
			zap.Int("keys", len(keys)),
			zap.Int("chunks", len(chunks)),
		)
	}
	for _, c := range chunks {
		t.mu.RLock()
		for _, key := range c {
			if item, ok := t.get(key); ok {
				out.Found = append(out.Found, item.Clone())
			} else {
				out.NotFound = append(out.NotFound, key)
			}
		}
		t.mu.RUnlock()
	}
	return out, nil
}

// chunk splits s into consecutive slices of at most size elements.
func chunk[T any](s []T, size int) [][]T {
	var chunks [][]T
	for len(s) > size {
		chunks = append(chunks, s[:size:size])
		s = s[size:]
	}
	if len(s) > 0 {
		chunks = append(chunks, s)
	}
	return chunks
}
