package ddbstore

import (
	"slices"
	"sync"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/val"
	"github.com/google/btree"
)

const btreeDegree = 8

// memTable stores the items of one table, grouped into partitions by hash key.
// Callers hold mu while using any other method.
type memTable struct {
	def table.TableDefinition

	mu         sync.RWMutex
	partitions map[string]*partition
	// order lists partitions by first insertion of their hash key.
	order []*partition
}

// partition holds the items sharing one hash key. Tables without a range key
// have at most one item per partition.
type partition struct {
	hash   val.Value
	single val.Item
	ranged *btree.BTreeG[entry]
}

type entry struct {
	rng  val.Value
	item val.Item
}

func lessEntry(a, b entry) bool {
	return val.Compare(a.rng, b.rng) < 0
}

func newMemTable(def table.TableDefinition) *memTable {
	return &memTable{
		def:        def,
		partitions: make(map[string]*partition),
	}
}

func (t *memTable) hasRange() bool {
	return t.def.KeyDefinitions.HasSortKey()
}

func (t *memTable) clear() {
	t.partitions = make(map[string]*partition)
	t.order = nil
}

func (p *partition) len() int {
	if p.ranged != nil {
		return p.ranged.Len()
	}
	if p.single != nil {
		return 1
	}
	return 0
}

// get returns the stored item for key without copying it.
func (t *memTable) get(key table.Key) (val.Item, bool) {
	p, ok := t.partitions[key.Hash.Key()]
	if !ok {
		return nil, false
	}
	if !t.hasRange() {
		return p.single, p.single != nil
	}
	e, ok := p.ranged.Get(entry{rng: key.Range})
	return e.item, ok
}

// put stores item under key, taking ownership of it.
func (t *memTable) put(key table.Key, item val.Item) {
	hk := key.Hash.Key()
	p, ok := t.partitions[hk]
	if !ok {
		p = &partition{hash: key.Hash.Clone()}
		if t.hasRange() {
			p.ranged = btree.NewG[entry](btreeDegree, lessEntry)
		}
		t.partitions[hk] = p
		t.order = append(t.order, p)
	}
	if t.hasRange() {
		p.ranged.ReplaceOrInsert(entry{rng: key.Range.Clone(), item: item})
		return
	}
	p.single = item
}

func (t *memTable) remove(key table.Key) bool {
	hk := key.Hash.Key()
	p, ok := t.partitions[hk]
	if !ok {
		return false
	}
	removed := false
	if t.hasRange() {
		_, removed = p.ranged.Delete(entry{rng: key.Range})
	} else {
		removed = p.single != nil
		p.single = nil
	}
	if p.len() == 0 {
		delete(t.partitions, hk)
		t.order = slices.DeleteFunc(t.order, func(q *partition) bool { return q == p })
	}
	return removed
}

// each calls fn for every item in table order: partitions by first insertion,
// then ascending range key within a partition. It stops when fn returns false.
func (t *memTable) each(fn func(item val.Item) bool) {
	for _, p := range t.order {
		if !p.each(fn) {
			return
		}
	}
}

func (p *partition) each(fn func(item val.Item) bool) bool {
	if p.ranged == nil {
		if p.single == nil {
			return true
		}
		return fn(p.single)
	}
	cont := true
	p.ranged.Ascend(func(e entry) bool {
		cont = fn(e.item)
		return cont
	})
	return cont
}

func (t *memTable) len() int {
	n := 0
	for _, p := range t.order {
		n += p.len()
	}
	return n
}
