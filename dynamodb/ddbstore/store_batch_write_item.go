package ddbstore

import (
	"fmt"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/val"
	"go.uber.org/zap"
)

// WriteRequest is one write of a batch: either a full item to put, keyed by its
// own key attributes, or the key of an item to delete.
type WriteRequest struct {
	Put    val.Item
	Delete *table.Key
}

func PutRequest(item val.Item) WriteRequest {
	return WriteRequest{Put: item}
}

func DeleteRequest(key table.Key) WriteRequest {
	return WriteRequest{Delete: &key}
}

type resolvedWrite struct {
	key  table.Key
	item val.Item // nil for deletes
}

// BatchWrite applies puts and deletes to one table. The requests are independent
// of each other and are applied in order, in chunks of Options.MaxBatchWriteItems.
// The whole batch is validated before anything is written.
func (s *Store) BatchWrite(tableName string, requests []WriteRequest) error {
	t, err := s.getTable(tableName)
	if err != nil {
		return err
	}
	keys := t.def.KeyDefinitions
	writes := make([]resolvedWrite, 0, len(requests))
	for i, req := range requests {
		switch {
		case req.Put != nil && req.Delete != nil:
			return fmt.Errorf("%w: write request %d has both a put and a delete", ErrArgument, i)
		case req.Put != nil:
			key, err := keys.ExtractKey(req.Put)
			if err != nil {
				return fmt.Errorf("write request %d: %w", i, err)
			}
			writes = append(writes, resolvedWrite{key: key, item: req.Put.Clone()})
		case req.Delete != nil:
			if err := keys.Validate(*req.Delete); err != nil {
				return fmt.Errorf("write request %d: %w", i, err)
			}
			writes = append(writes, resolvedWrite{key: *req.Delete})
		default:
			return fmt.Errorf("%w: empty write request %d, must be put or delete", ErrArgument, i)
		}
	}

	chunks := chunk(writes, s.opts.MaxBatchWriteItems)
	if len(chunks) > 1 {
		s.log.Debug("chunked batch write",
			zap.String("table", tableName),
			zap.Int("requests", len(requests)),
			zap.Int("chunks", len(chunks)),
		)
	}
	for _, c := range chunks {
		t.mu.Lock()
		for _, w := range c {
			if w.item != nil {
				t.put(w.key, w.item)
			} else {
				t.remove(w.key)
			}
		}
		t.mu.Unlock()
	}
	return nil
}
