package ddbstore

import (
	"fmt"
	"slices"

	"github.com/acksell/dynamini/dynamodb/val"
)

type RangeOp string

const (
	RangeGE      RangeOp = ">="
	RangeLE      RangeOp = "<="
	RangeBetween RangeOp = "BETWEEN"
)

// RangeCondition restricts the range key of a query. GE uses Lower, LE uses
// Upper and BETWEEN uses both bounds, inclusive.
type RangeCondition struct {
	KeyName string
	Op      RangeOp
	Lower   val.Value
	Upper   val.Value
}

func GreaterOrEqual(keyName string, v val.Value) *RangeCondition {
	return &RangeCondition{KeyName: keyName, Op: RangeGE, Lower: v}
}

func LessOrEqual(keyName string, v val.Value) *RangeCondition {
	return &RangeCondition{KeyName: keyName, Op: RangeLE, Upper: v}
}

func Between(keyName string, lower, upper val.Value) *RangeCondition {
	return &RangeCondition{KeyName: keyName, Op: RangeBetween, Lower: lower, Upper: upper}
}

func (c *RangeCondition) validate() error {
	switch c.Op {
	case RangeGE:
		if c.Lower.IsZero() {
			return fmt.Errorf("%w: %s condition on %q needs a value", ErrArgument, c.Op, c.KeyName)
		}
	case RangeLE:
		if c.Upper.IsZero() {
			return fmt.Errorf("%w: %s condition on %q needs a value", ErrArgument, c.Op, c.KeyName)
		}
	case RangeBetween:
		if c.Lower.IsZero() || c.Upper.IsZero() {
			return fmt.Errorf("%w: BETWEEN condition on %q needs two values", ErrArgument, c.KeyName)
		}
		if val.Compare(c.Lower, c.Upper) > 0 {
			return &ValidationError{Message: "Invalid KeyConditionExpression: The BETWEEN operator requires upper bound to be greater than or equal to lower bound"}
		}
	default:
		return fmt.Errorf("%w: unsupported range operator %q", ErrArgument, c.Op)
	}
	return nil
}

func (c *RangeCondition) aboveLower(v val.Value) bool {
	return c.Op == RangeLE || val.Compare(v, c.Lower) >= 0
}

func (c *RangeCondition) belowUpper(v val.Value) bool {
	return c.Op == RangeGE || val.Compare(v, c.Upper) <= 0
}

func (c *RangeCondition) matches(v val.Value) bool {
	return c.aboveLower(v) && c.belowUpper(v)
}

// KeyCondition selects the items of one partition: the hash key must equal
// HashValue and, if Range is set, the range key must satisfy it.
type KeyCondition struct {
	HashKeyName string
	HashValue   val.Value
	Range       *RangeCondition
}

type QueryInput struct {
	TableName string
	// IndexName queries a secondary index instead of the table.
	IndexName string
	Condition KeyCondition
	// Limit caps the number of items returned. Zero means no limit.
	Limit int
	// Reverse returns items in descending range key order.
	Reverse bool
}

type QueryOutput struct {
	Items []val.Item
	Count int
}

// Query returns the items matching the key condition, ordered by range key.
func (s *Store) Query(in QueryInput) (*QueryOutput, error) {
	if in.Limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrArgument)
	}
	t, err := s.getTable(in.TableName)
	if err != nil {
		return nil, err
	}
	keys, err := t.keysFor(in.IndexName)
	if err != nil {
		return nil, err
	}

	cond := in.Condition
	var missed []string
	if cond.HashKeyName != keys.PartitionKey.Name {
		missed = append(missed, keys.PartitionKey.Name)
	}
	if cond.Range != nil {
		if !keys.HasSortKey() {
			return nil, &ValidationError{Message: "Query key condition not supported"}
		}
		if cond.Range.KeyName != keys.SortKey.Name {
			missed = append(missed, keys.SortKey.Name)
		}
	}
	if len(missed) > 0 {
		return nil, missedKeySchema(missed)
	}
	if cond.HashValue.IsZero() {
		return nil, fmt.Errorf("%w: hash key value is required", ErrArgument)
	}
	if err := keys.PartitionKey.Check(cond.HashValue); err != nil {
		return nil, fmt.Errorf("table %q: %w", in.TableName, err)
	}
	if cond.Range != nil {
		for _, bound := range []val.Value{cond.Range.Lower, cond.Range.Upper} {
			if bound.IsZero() {
				continue
			}
			if err := keys.SortKey.Check(bound); err != nil {
				return nil, fmt.Errorf("table %q: %w", in.TableName, err)
			}
		}
		if err := cond.Range.validate(); err != nil {
			return nil, err
		}
	}

	t.mu.RLock()
	var items []val.Item
	if in.IndexName == "" {
		items = t.queryPartition(cond)
	} else {
		items = t.queryIndex(keys.PartitionKey.Name, keys.SortKey.Name, cond)
	}
	t.mu.RUnlock()

	if in.Reverse {
		slices.Reverse(items)
	}
	if in.Limit > 0 && len(items) > in.Limit {
		items = items[:in.Limit]
	}
	return &QueryOutput{Items: items, Count: len(items)}, nil
}

// queryPartition reads the matching items straight from the hash key's partition.
func (t *memTable) queryPartition(cond KeyCondition) []val.Item {
	p, ok := t.partitions[cond.HashValue.Key()]
	if !ok {
		return nil
	}
	if p.ranged == nil {
		if p.single == nil {
			return nil
		}
		return []val.Item{p.single.Clone()}
	}

	var items []val.Item
	visit := func(e entry) bool {
		if cond.Range != nil && !cond.Range.belowUpper(e.rng) {
			return false
		}
		items = append(items, e.item.Clone())
		return true
	}
	if cond.Range != nil && cond.Range.Op != RangeLE {
		p.ranged.AscendGreaterOrEqual(entry{rng: cond.Range.Lower}, visit)
	} else {
		p.ranged.Ascend(visit)
	}
	return items
}

// queryIndex scans the whole table for items belonging to the index partition.
// Items without the index range key are not part of the index.
func (t *memTable) queryIndex(hashName, rangeName string, cond KeyCondition) []val.Item {
	var items []val.Item
	t.each(func(item val.Item) bool {
		h, ok := item[hashName]
		if !ok || !val.Equal(h, cond.HashValue) {
			return true
		}
		if rangeName != "" {
			r, ok := item[rangeName]
			if !ok {
				return true
			}
			if cond.Range != nil && !cond.Range.matches(r) {
				return true
			}
		}
		items = append(items, item.Clone())
		return true
	})
	if rangeName != "" {
		slices.SortStableFunc(items, func(a, b val.Item) int {
			return val.Compare(a[rangeName], b[rangeName])
		})
	}
	return items
}
