package ddbstore

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/val"
	"stathat.com/c/consistent"
)

type ScanInput struct {
	TableName string
	// IndexName scans a secondary index instead of the table.
	IndexName string
	// StartKey is the LastEvaluatedKey of the previous page.
	StartKey val.Item
	// Limit caps the number of items returned. Zero means no limit.
	Limit int
	// Segment and TotalSegments split the scan into disjoint parts that can be
	// read in parallel. Either both or neither must be set.
	Segment       *int
	TotalSegments *int
	// ConsistentRead is accepted for compatibility. Reads are always consistent.
	ConsistentRead bool
}

type ScanOutput struct {
	Items []val.Item
	Count int
	// LastEvaluatedKey is set when more items follow the page. Pass it as the
	// StartKey of the next request.
	LastEvaluatedKey val.Item
}

// Scan reads a page of items from a table or index.
//
// Tables are read partition by partition in the order their hash keys were
// first written, ascending by range key within a partition. Index scans are
// ordered by the index hash key and only include items carrying the index keys.
func (s *Store) Scan(in ScanInput) (*ScanOutput, error) {
	if in.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrArgument)
	}
	segment, total, err := scanSegment(in.Segment, in.TotalSegments)
	if err != nil {
		return nil, err
	}
	t, err := s.getTable(in.TableName)
	if err != nil {
		return nil, err
	}
	var index *table.PrimaryKeyDefinition
	if in.IndexName != "" {
		keys, err := t.keysFor(in.IndexName)
		if err != nil {
			return nil, err
		}
		index = &keys
	}
	var ring *consistent.Consistent
	if total > 1 {
		ring = segmentRing(total)
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	tableKeys := t.def.KeyDefinitions
	var items []val.Item
	var segErr error
	t.each(func(item val.Item) bool {
		if index != nil && !hasAttributes(item, index.Names()) {
			return true
		}
		if ring != nil {
			seg, err := segmentOf(ring, item[tableKeys.PartitionKey.Name])
			if err != nil {
				segErr = err
				return false
			}
			if seg != segment {
				return true
			}
		}
		items = append(items, item)
		return true
	})
	if segErr != nil {
		return nil, segErr
	}

	cursorNames := tableKeys.Names()
	if index != nil {
		hashName := index.PartitionKey.Name
		slices.SortStableFunc(items, func(a, b val.Item) int {
			return val.Compare(a[hashName], b[hashName])
		})
		for _, name := range index.Names() {
			if !slices.Contains(cursorNames, name) {
				cursorNames = append(cursorNames, name)
			}
		}
	}

	start := 0
	if in.StartKey != nil {
		for i, item := range items {
			if project(item, cursorNames).Equal(in.StartKey) {
				start = i + 1
				break
			}
		}
	}
	end := len(items)
	if in.Limit > 0 && start+in.Limit < end {
		end = start + in.Limit
	}

	out := &ScanOutput{Items: make([]val.Item, 0, end-start)}
	for _, item := range items[start:end] {
		out.Items = append(out.Items, item.Clone())
	}
	out.Count = len(out.Items)
	if end < len(items) && end > start {
		out.LastEvaluatedKey = project(items[end-1], cursorNames)
	}
	return out, nil
}

func scanSegment(segment, total *int) (int, int, error) {
	if (segment == nil) != (total == nil) {
		return 0, 0, fmt.Errorf("%w: Segment and TotalSegments must be given together", ErrArgument)
	}
	if segment == nil {
		return 0, 1, nil
	}
	if *total < 1 {
		return 0, 0, fmt.Errorf("%w: TotalSegments must be at least 1, got %d", ErrArgument, *total)
	}
	if *segment < 0 || *segment >= *total {
		return 0, 0, fmt.Errorf("%w: Segment must be in [0, %d), got %d", ErrArgument, *total, *segment)
	}
	return *segment, *total, nil
}

// segmentRing places the segments on a consistent hash ring. Items are assigned
// to segments by their hash key, so a partition is never split across segments.
func segmentRing(total int) *consistent.Consistent {
	ring := consistent.New()
	for i := 0; i < total; i++ {
		ring.Add(strconv.Itoa(i))
	}
	return ring
}

func segmentOf(ring *consistent.Consistent, hash val.Value) (int, error) {
	member, err := ring.Get(hash.Key())
	if err != nil {
		return 0, fmt.Errorf("assign scan segment: %w", err)
	}
	return strconv.Atoi(member)
}

func hasAttributes(item val.Item, names []string) bool {
	for _, name := range names {
		if _, ok := item[name]; !ok {
			return false
		}
	}
	return true
}

func project(item val.Item, names []string) val.Item {
	out := make(val.Item, len(names))
	for _, name := range names {
		if v, ok := item[name]; ok {
			out[name] = v.Clone()
		}
	}
	return out
}
