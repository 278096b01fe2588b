package ddbclient

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Scan(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)
	for g := 0; g < 4; g++ {
		for r := 1; r <= 3; r++ {
			putRank(t, c, fmt.Sprintf("g%d", g), r, nil)
		}
	}

	t.Run("paginated", func(t *testing.T) {
		in := &dynamodb.ScanInput{TableName: aws.String(leaderboardTable.Name), Limit: aws.Int32(5)}
		var items []map[string]types.AttributeValue
		pages := 0
		for {
			out, err := c.Scan(ctx, in)
			require.NoError(t, err)
			pages++
			items = append(items, out.Items...)
			if out.LastEvaluatedKey == nil {
				break
			}
			assert.Len(t, out.LastEvaluatedKey, 2)
			in.ExclusiveStartKey = out.LastEvaluatedKey
		}
		assert.Equal(t, 3, pages)
		assert.Len(t, items, 12)
	})

	t.Run("segments", func(t *testing.T) {
		seen := map[string]bool{}
		for seg := int32(0); seg < 3; seg++ {
			out, err := c.Scan(ctx, &dynamodb.ScanInput{
				TableName:     aws.String(leaderboardTable.Name),
				Segment:       aws.Int32(seg),
				TotalSegments: aws.Int32(3),
			})
			require.NoError(t, err)
			for _, item := range out.Items {
				id := item["group"].(*types.AttributeValueMemberS).Value + "/" + rankOf(t, item)
				assert.False(t, seen[id], "%s returned by two segments", id)
				seen[id] = true
			}
		}
		assert.Len(t, seen, 12)
	})

	t.Run("segment without total", func(t *testing.T) {
		_, err := c.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(leaderboardTable.Name), Segment: aws.Int32(0)})
		requireAPIError(t, err, CodeValidation)
	})

	t.Run("index", func(t *testing.T) {
		putRank(t, c, "g9", 1, map[string]types.AttributeValue{"team": s("b"), "score": n(1)})
		putRank(t, c, "g9", 2, map[string]types.AttributeValue{"team": s("a"), "score": n(2)})
		out, err := c.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(leaderboardTable.Name), IndexName: aws.String("by-team")})
		require.NoError(t, err)
		assert.Equal(t, []string{"2", "1"}, rankValues(t, out.Items))
	})
}

func TestClient_Batch(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	_, err := c.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			usersTable.Name: {
				{PutRequest: &types.PutRequest{Item: map[string]types.AttributeValue{"id": s("a"), "v": n(1)}}},
				{PutRequest: &types.PutRequest{Item: map[string]types.AttributeValue{"id": s("c"), "v": n(3)}}},
				{PutRequest: &types.PutRequest{Item: map[string]types.AttributeValue{"id": s("d")}}},
				{DeleteRequest: &types.DeleteRequest{Key: userKey("d")}},
			},
			leaderboardTable.Name: {
				{PutRequest: &types.PutRequest{Item: rankKey("g", 1)}},
			},
		},
	})
	require.NoError(t, err)

	t.Run("found and not found", func(t *testing.T) {
		out, err := c.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				usersTable.Name: {Keys: []map[string]types.AttributeValue{userKey("a"), userKey("b"), userKey("c"), userKey("d")}},
				leaderboardTable.Name: {Keys: []map[string]types.AttributeValue{rankKey("g", 1)}},
			},
		})
		require.NoError(t, err)
		users := out.Responses[usersTable.Name]
		require.Len(t, users, 2)
		assert.Equal(t, s("a"), users[0]["id"])
		assert.Equal(t, s("c"), users[1]["id"])
		assert.Len(t, out.Responses[leaderboardTable.Name], 1)
		assert.Empty(t, out.UnprocessedKeys)
	})

	t.Run("duplicates", func(t *testing.T) {
		_, err := c.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				usersTable.Name: {Keys: []map[string]types.AttributeValue{userKey("a"), userKey("a")}},
			},
		})
		msg := requireAPIError(t, err, CodeValidation)
		assert.Equal(t, "Provided list of item keys contains duplicates", msg)
	})

	t.Run("invalid write writes nothing", func(t *testing.T) {
		_, err := c.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				usersTable.Name: {
					{PutRequest: &types.PutRequest{Item: map[string]types.AttributeValue{"id": s("x")}}},
					{},
				},
			},
		})
		requireAPIError(t, err, CodeValidation)

		got, err := c.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String(usersTable.Name), Key: userKey("x")})
		require.NoError(t, err)
		assert.Nil(t, got.Item)
	})

	t.Run("empty request", func(t *testing.T) {
		_, err := c.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{})
		requireAPIError(t, err, CodeValidation)
		_, err = c.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{})
		requireAPIError(t, err, CodeValidation)
	})
}
