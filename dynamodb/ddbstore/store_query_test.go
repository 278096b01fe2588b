package ddbstore

import (
	"errors"
	"testing"

	"github.com/acksell/dynamini/dynamodb/update"
	"github.com/acksell/dynamini/dynamodb/val"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedRanks writes ranks 1..4 under group "g" and a single item under group "other".
func seedRanks(t *testing.T, store *Store) {
	t.Helper()
	for _, rank := range []int{3, 1, 4, 2} {
		mustUpdate(t, store, rankedTable.Name, rk("g", rank), update.Put("abc", val.String("abc")))
	}
	mustUpdate(t, store, rankedTable.Name, rk("other", 9), update.Put("abc", val.String("abc")))
}

func rankQuery(rng *RangeCondition) QueryInput {
	return QueryInput{
		TableName: rankedTable.Name,
		Condition: KeyCondition{HashKeyName: "group", HashValue: val.String("g"), Range: rng},
	}
}

func TestStore_Query(t *testing.T) {
	store := newTestStore(t, rankedTable)
	seedRanks(t, store)

	tests := []struct {
		name  string
		input QueryInput
		want  []float64
	}{
		{name: "hash only", input: rankQuery(nil), want: []float64{1, 2, 3, 4}},
		{name: "start", input: rankQuery(GreaterOrEqual("rank", val.Number(2))), want: []float64{2, 3, 4}},
		{name: "end", input: rankQuery(LessOrEqual("rank", val.Number(2))), want: []float64{1, 2}},
		{name: "between", input: rankQuery(Between("rank", val.Number(1), val.Number(3))), want: []float64{1, 2, 3}},
		{name: "between one value", input: rankQuery(Between("rank", val.Number(4), val.Number(4))), want: []float64{4}},
		{name: "start beyond last", input: rankQuery(GreaterOrEqual("rank", val.Number(5))), want: []float64{}},
		{
			name:  "reverse",
			input: func() QueryInput { in := rankQuery(nil); in.Reverse = true; return in }(),
			want:  []float64{4, 3, 2, 1},
		},
		{
			name:  "limit",
			input: func() QueryInput { in := rankQuery(nil); in.Limit = 2; return in }(),
			want:  []float64{1, 2},
		},
		{
			name: "reverse with limit",
			input: func() QueryInput {
				in := rankQuery(GreaterOrEqual("rank", val.Number(2)))
				in.Reverse = true
				in.Limit = 2
				return in
			}(),
			want: []float64{4, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := store.Query(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ranks(t, out.Items))
			assert.Equal(t, len(tt.want), out.Count)
		})
	}

	t.Run("unknown partition", func(t *testing.T) {
		in := rankQuery(nil)
		in.Condition.HashValue = val.String("nope")
		out, err := store.Query(in)
		require.NoError(t, err)
		assert.Empty(t, out.Items)
	})

	t.Run("results are copies", func(t *testing.T) {
		out, err := store.Query(rankQuery(nil))
		require.NoError(t, err)
		out.Items[0]["abc"] = val.String("changed")

		item, err := store.Get(rankedTable.Name, rk("g", 1))
		require.NoError(t, err)
		assert.True(t, val.Equal(val.String("abc"), item["abc"]))
	})
}

func TestStore_QueryNumericOrdering(t *testing.T) {
	store := newTestStore(t, rankedTable)
	values := []int{1000, -100, 10, -1, 0, 1, 100, -10}
	for _, v := range values {
		mustUpdate(t, store, rankedTable.Name, rk("g", v), update.Put("x", val.Number(1)))
	}
	out, err := store.Query(rankQuery(nil))
	require.NoError(t, err)
	assert.Equal(t, []float64{-100, -10, -1, 0, 1, 10, 100, 1000}, ranks(t, out.Items))
}

func TestStore_QueryHashOnlyTable(t *testing.T) {
	store := newTestStore(t, hashOnlyTable)
	mustUpdate(t, store, hashOnlyTable.Name, hk("a"), update.Put("x", val.Number(1)))

	out, err := store.Query(QueryInput{
		TableName: hashOnlyTable.Name,
		Condition: KeyCondition{HashKeyName: "id", HashValue: val.String("a")},
	})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)

	_, err = store.Query(QueryInput{
		TableName: hashOnlyTable.Name,
		Condition: KeyCondition{HashKeyName: "id", HashValue: val.String("a"), Range: GreaterOrEqual("x", val.Number(1))},
	})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func seedTeams(t *testing.T, store *Store) {
	t.Helper()
	rows := []struct {
		rank  int
		team  string
		score int
	}{
		{1, "abc", 10}, {2, "abc", 7}, {3, "xyz", 1}, {4, "abc", 9}, {5, "abc", 8}, {6, "abc", 11},
	}
	for _, r := range rows {
		mustUpdate(t, store, rankedTable.Name, rk("g", r.rank),
			update.Put("team", val.String(r.team)),
			update.Put("score", val.Number(r.score)),
		)
	}
	// Not part of the index: no score.
	mustUpdate(t, store, rankedTable.Name, rk("g", 7), update.Put("team", val.String("abc")))
}

func teamQuery(rng *RangeCondition) QueryInput {
	return QueryInput{
		TableName: rankedTable.Name,
		IndexName: "by-team",
		Condition: KeyCondition{HashKeyName: "team", HashValue: val.String("abc"), Range: rng},
	}
}

func scores(t *testing.T, items []val.Item) []float64 {
	t.Helper()
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := item["score"].Float64()
		require.True(t, ok)
		out[i] = f
	}
	return out
}

func TestStore_QueryIndex(t *testing.T) {
	store := newTestStore(t, rankedTable)
	seedTeams(t, store)

	t.Run("sorted by index range key", func(t *testing.T) {
		out, err := store.Query(teamQuery(nil))
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 8, 9, 10, 11}, scores(t, out.Items))
	})

	t.Run("LE", func(t *testing.T) {
		out, err := store.Query(teamQuery(LessOrEqual("score", val.Number(8))))
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 8}, scores(t, out.Items))
	})

	t.Run("GE", func(t *testing.T) {
		out, err := store.Query(teamQuery(GreaterOrEqual("score", val.Number(8))))
		require.NoError(t, err)
		assert.Equal(t, []float64{8, 9, 10, 11}, scores(t, out.Items))
	})

	t.Run("BETWEEN", func(t *testing.T) {
		out, err := store.Query(teamQuery(Between("score", val.Number(8), val.Number(9))))
		require.NoError(t, err)
		assert.Equal(t, []float64{8, 9}, scores(t, out.Items))
	})

	t.Run("reverse and limit", func(t *testing.T) {
		in := teamQuery(nil)
		in.Reverse = true
		in.Limit = 3
		out, err := store.Query(in)
		require.NoError(t, err)
		assert.Equal(t, []float64{11, 10, 9}, scores(t, out.Items))
	})

	t.Run("index without range key keeps table order", func(t *testing.T) {
		for _, rank := range []int{3, 1} {
			mustUpdate(t, store, rankedTable.Name, rk("h", rank), update.Put("owner", val.String("me")))
		}
		out, err := store.Query(QueryInput{
			TableName: rankedTable.Name,
			IndexName: "by-owner",
			Condition: KeyCondition{HashKeyName: "owner", HashValue: val.String("me")},
		})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 3}, ranks(t, out.Items))
	})
}

func TestStore_QueryValidation(t *testing.T) {
	store := newTestStore(t, rankedTable)

	tests := []struct {
		name    string
		input   QueryInput
		message string
	}{
		{
			name: "wrong hash key",
			input: QueryInput{
				TableName: rankedTable.Name,
				Condition: KeyCondition{HashKeyName: "not_hash_key_field", HashValue: val.String("g")},
			},
			message: "Query condition missed key schema element: group",
		},
		{
			name: "wrong hash and range key",
			input: QueryInput{
				TableName: rankedTable.Name,
				Condition: KeyCondition{
					HashKeyName: "not_hash_key_field",
					HashValue:   val.String("g"),
					Range:       GreaterOrEqual("not_range_key_field", val.Number(30)),
				},
			},
			message: "Query condition missed key schema element: group, rank",
		},
		{
			name: "wrong index hash key",
			input: QueryInput{
				TableName: rankedTable.Name,
				IndexName: "by-team",
				Condition: KeyCondition{HashKeyName: "group", HashValue: val.String("abc")},
			},
			message: "Query condition missed key schema element: team",
		},
		{
			name: "wrong index range key",
			input: QueryInput{
				TableName: rankedTable.Name,
				IndexName: "by-team",
				Condition: KeyCondition{
					HashKeyName: "not_hash_key_field",
					HashValue:   val.String("abc"),
					Range:       GreaterOrEqual("rank", val.Number(3)),
				},
			},
			message: "Query condition missed key schema element: team, score",
		},
		{
			name:    "inverted between",
			input:   rankQuery(Between("rank", val.Number(3), val.Number(1))),
			message: "Invalid KeyConditionExpression: The BETWEEN operator requires upper bound to be greater than or equal to lower bound",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Query(tt.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.EqualError(t, err, tt.message)
		})
	}

	t.Run("unknown index", func(t *testing.T) {
		in := rankQuery(nil)
		in.IndexName = "nope"
		_, err := store.Query(in)
		assert.ErrorIs(t, err, ErrArgument)
	})

	t.Run("key value kinds must match the schema", func(t *testing.T) {
		for name, in := range map[string]QueryInput{
			"number hash value": {
				TableName: rankedTable.Name,
				Condition: KeyCondition{HashKeyName: "group", HashValue: val.Number(1)},
			},
			"string range bound": rankQuery(GreaterOrEqual("rank", val.String("x"))),
			"string upper bound": rankQuery(Between("rank", val.Number(1), val.String("x"))),
			"list index hash value": {
				TableName: rankedTable.Name,
				IndexName: "by-team",
				Condition: KeyCondition{HashKeyName: "team", HashValue: val.List(val.String("a"))},
			},
		} {
			t.Run(name, func(t *testing.T) {
				_, err := store.Query(in)
				assert.ErrorIs(t, err, ErrSchema)
			})
		}
	})

	t.Run("missing hash value", func(t *testing.T) {
		in := rankQuery(nil)
		in.Condition.HashValue = val.Value{}
		_, err := store.Query(in)
		assert.ErrorIs(t, err, ErrArgument)
	})

	t.Run("unknown operator", func(t *testing.T) {
		_, err := store.Query(rankQuery(&RangeCondition{KeyName: "rank", Op: "<", Upper: val.Number(1)}))
		assert.ErrorIs(t, err, ErrArgument)
	})
}
