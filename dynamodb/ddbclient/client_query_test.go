package ddbclient

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyQuery(t *testing.T, indexName string, cond expression.KeyConditionBuilder) *dynamodb.QueryInput {
	t.Helper()
	expr, err := expression.NewBuilder().WithKeyCondition(cond).Build()
	require.NoError(t, err)
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(leaderboardTable.Name),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if indexName != "" {
		in.IndexName = aws.String(indexName)
	}
	return in
}

func TestClient_Query(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	for _, rank := range []int{3, 1, 4, 2} {
		putRank(t, c, "g", rank, nil)
	}
	putRank(t, c, "h", 1, nil)

	group := expression.Key("group").Equal(expression.Value("g"))
	rank := expression.Key("rank")

	tests := []struct {
		name string
		in   *dynamodb.QueryInput
		want []string
	}{
		{"hash only", keyQuery(t, "", group), []string{"1", "2", "3", "4"}},
		{"start", keyQuery(t, "", group.And(rank.GreaterThanEqual(expression.Value(2)))), []string{"2", "3", "4"}},
		{"end", keyQuery(t, "", group.And(rank.LessThanEqual(expression.Value(2)))), []string{"1", "2"}},
		{"between", keyQuery(t, "", group.And(rank.Between(expression.Value(1), expression.Value(3)))), []string{"1", "2", "3"}},
		{
			"reverse",
			func() *dynamodb.QueryInput {
				in := keyQuery(t, "", group)
				in.ScanIndexForward = aws.Bool(false)
				return in
			}(),
			[]string{"4", "3", "2", "1"},
		},
		{
			"reverse with limit",
			func() *dynamodb.QueryInput {
				in := keyQuery(t, "", group)
				in.ScanIndexForward = aws.Bool(false)
				in.Limit = aws.Int32(2)
				return in
			}(),
			[]string{"4", "3"},
		},
		{
			"legacy key conditions",
			&dynamodb.QueryInput{
				TableName: aws.String(leaderboardTable.Name),
				KeyConditions: map[string]types.Condition{
					"group": {ComparisonOperator: types.ComparisonOperatorEq, AttributeValueList: []types.AttributeValue{s("g")}},
					"rank":  {ComparisonOperator: types.ComparisonOperatorGe, AttributeValueList: []types.AttributeValue{n(3)}},
				},
			},
			[]string{"3", "4"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Query(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rankValues(t, out.Items))
			assert.Equal(t, int32(len(tt.want)), out.Count)
			assert.Nil(t, out.LastEvaluatedKey)
		})
	}
}

func TestClient_QueryIndex(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	putRank(t, c, "g", 1, map[string]types.AttributeValue{"team": s("red"), "score": n(30)})
	putRank(t, c, "g", 2, map[string]types.AttributeValue{"team": s("red"), "score": n(10)})
	putRank(t, c, "g", 3, map[string]types.AttributeValue{"team": s("blue"), "score": n(20)})
	putRank(t, c, "g", 4, map[string]types.AttributeValue{"team": s("red")})

	out, err := c.Query(ctx, keyQuery(t, "by-team", expression.Key("team").Equal(expression.Value("red"))))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, rankValues(t, out.Items))

	_, err = c.Query(ctx, keyQuery(t, "missing", expression.Key("team").Equal(expression.Value("red"))))
	msg := requireAPIError(t, err, CodeValidation)
	assert.Equal(t, "The table does not have the specified index: missing", msg)
}

func TestClient_QueryValidation(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	tests := []struct {
		name string
		in   *dynamodb.QueryInput
		msg  string
	}{
		{
			"wrong hash key",
			keyQuery(t, "", expression.Key("not_hash_key_field").Equal(expression.Value("g"))),
			"Query condition missed key schema element: group",
		},
		{
			"wrong hash and range key",
			keyQuery(t, "", expression.Key("not_hash_key_field").Equal(expression.Value("g")).
				And(expression.Key("not_range_key_field").GreaterThanEqual(expression.Value(30)))),
			"Query condition missed key schema element: group, rank",
		},
		{
			"wrong index range key",
			keyQuery(t, "by-team", expression.Key("team").Equal(expression.Value("red")).
				And(expression.Key("rank").GreaterThanEqual(expression.Value(3)))),
			"Query condition missed key schema element: score",
		},
		{
			"unsupported operator",
			keyQuery(t, "", expression.Key("group").Equal(expression.Value("g")).
				And(expression.Key("rank").GreaterThan(expression.Value(3)))),
			"Query key condition not supported",
		},
		{
			"begins_with",
			keyQuery(t, "by-team", expression.Key("team").Equal(expression.Value("red")).
				And(expression.Key("score").BeginsWith("1"))),
			"Query key condition not supported",
		},
		{
			"no condition",
			&dynamodb.QueryInput{TableName: aws.String(leaderboardTable.Name)},
			"Either the KeyConditions or KeyConditionExpression parameter must be specified in the request.",
		},
		{
			"filter expression",
			func() *dynamodb.QueryInput {
				in := keyQuery(t, "", expression.Key("group").Equal(expression.Value("g")))
				in.FilterExpression = aws.String("#x = :x")
				return in
			}(),
			"FilterExpression is not supported",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Query(ctx, tt.in)
			msg := requireAPIError(t, err, CodeValidation)
			assert.Equal(t, tt.msg, msg)
		})
	}
	t.Run("key value of the wrong type", func(t *testing.T) {
		for name, in := range map[string]*dynamodb.QueryInput{
			"number hash value": keyQuery(t, "", expression.Key("group").Equal(expression.Value(1))),
			"string range value": keyQuery(t, "", expression.Key("group").Equal(expression.Value("g")).
				And(expression.Key("rank").GreaterThanEqual(expression.Value("x")))),
		} {
			t.Run(name, func(t *testing.T) {
				_, err := c.Query(ctx, in)
				msg := requireAPIError(t, err, CodeValidation)
				assert.True(t, strings.HasPrefix(msg, "The provided key element does not match the schema"), msg)
			})
		}
	})
}
