package ddbstore

import (
	"fmt"
	"testing"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/update"
	"github.com/acksell/dynamini/dynamodb/val"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idsOf(t *testing.T, items []val.Item) []string {
	t.Helper()
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item["id"].AsString()
		require.True(t, ok)
		out[i] = s
	}
	return out
}

func TestStore_BatchGet(t *testing.T) {
	t.Run("found and not found", func(t *testing.T) {
		store := newTestStore(t, hashOnlyTable)
		mustUpdate(t, store, hashOnlyTable.Name, hk("a"), update.Put("x", val.Number(1)))
		mustUpdate(t, store, hashOnlyTable.Name, hk("c"), update.Put("x", val.Number(3)))

		out, err := store.BatchGet(hashOnlyTable.Name, []table.Key{hk("a"), hk("b"), hk("c")})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, idsOf(t, out.Found))
		assert.Equal(t, []table.Key{hk("b")}, out.NotFound)
	})

	t.Run("duplicate keys are rejected", func(t *testing.T) {
		store := newTestStore(t, rankedTable)
		_, err := store.BatchGet(rankedTable.Name, []table.Key{rk("g", 1), rk("g", 2), rk("g", 1)})
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("same hash with different ranges is not a duplicate", func(t *testing.T) {
		store := newTestStore(t, rankedTable)
		mustUpdate(t, store, rankedTable.Name, rk("g", 2), update.Put("x", val.Number(1)))
		out, err := store.BatchGet(rankedTable.Name, []table.Key{rk("g", 1), rk("g", 2)})
		require.NoError(t, err)
		assert.Equal(t, []float64{2}, ranks(t, out.Found))
		assert.Equal(t, []table.Key{rk("g", 1)}, out.NotFound)
	})

	t.Run("more keys than one chunk", func(t *testing.T) {
		store := newTestStore(t, hashOnlyTable)
		var keys []table.Key
		var want []string
		for i := 0; i < 250; i++ {
			id := fmt.Sprintf("item-%03d", i)
			keys = append(keys, hk(id))
			if i%2 == 0 {
				mustUpdate(t, store, hashOnlyTable.Name, hk(id), update.Put("x", val.Number(i)))
				want = append(want, id)
			}
		}
		out, err := store.BatchGet(hashOnlyTable.Name, keys)
		require.NoError(t, err)
		assert.Equal(t, want, idsOf(t, out.Found))
		assert.Len(t, out.NotFound, 125)
	})

	t.Run("invalid key", func(t *testing.T) {
		store := newTestStore(t, rankedTable)
		_, err := store.BatchGet(rankedTable.Name, []table.Key{hk("g")})
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("empty request", func(t *testing.T) {
		store := newTestStore(t, hashOnlyTable)
		out, err := store.BatchGet(hashOnlyTable.Name, nil)
		require.NoError(t, err)
		assert.Empty(t, out.Found)
		assert.Empty(t, out.NotFound)
	})
}

func TestChunk(t *testing.T) {
	assert.Nil(t, chunk([]int{}, 3))
	assert.Equal(t, [][]int{{1, 2, 3}}, chunk([]int{1, 2, 3}, 3))
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunk([]int{1, 2, 3, 4, 5}, 2))
}
