package ddbstore

import (
	"testing"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/update"
	"github.com/acksell/dynamini/dynamodb/val"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var hashOnlyTable = table.TableDefinition{
	Name: "hash-only",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "id"},
	},
}

// rankedTable mirrors a leaderboard: groups of items ordered by rank, with a
// sparse index on the owning team.
var rankedTable = table.TableDefinition{
	Name: "ranked",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "group", Kind: table.KeyKindS},
		SortKey:      table.KeyDef{Name: "rank", Kind: table.KeyKindN},
	},
	Indexes: []table.IndexDefinition{
		{
			Name: "by-team",
			KeyDefinitions: table.PrimaryKeyDefinition{
				PartitionKey: table.KeyDef{Name: "team"},
				SortKey:      table.KeyDef{Name: "score"},
			},
		},
		{
			Name: "by-owner",
			KeyDefinitions: table.PrimaryKeyDefinition{
				PartitionKey: table.KeyDef{Name: "owner"},
			},
		},
	},
}

func newTestStore(t *testing.T, defs ...table.TableDefinition) *Store {
	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	store, err := New(opts, defs...)
	require.NoError(t, err)
	return store
}

func hk(s string) table.Key {
	return table.HashKey(val.String(s))
}

func rk(group string, rank int) table.Key {
	return table.RangeKey(val.String(group), val.Number(rank))
}

func mustUpdate(t *testing.T, s *Store, tableName string, key table.Key, actions ...update.UpdateAction) val.Item {
	t.Helper()
	item, err := s.Update(tableName, key, actions)
	require.NoError(t, err)
	return item
}

// ranks returns the rank attribute of each item.
func ranks(t *testing.T, items []val.Item) []float64 {
	t.Helper()
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := item["rank"].Float64()
		require.True(t, ok, "rank is not a number: %s", item["rank"])
		out[i] = f
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
