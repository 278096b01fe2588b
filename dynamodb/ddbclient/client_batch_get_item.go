package ddbclient

import (
	"context"
	"sort"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// BatchGetItem reads the requested keys of every table. Missing items are left
// out of the responses. UnprocessedKeys is always empty.
func (c *Client) BatchGetItem(ctx context.Context, in *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	if err := begin(ctx, optFns); err != nil {
		return nil, err
	}
	if len(in.RequestItems) == 0 {
		return nil, validationError("1 validation error detected: Value null at 'requestItems' failed to satisfy constraint: Member must not be null")
	}

	out := &dynamodb.BatchGetItemOutput{
		Responses:       make(map[string][]map[string]types.AttributeValue, len(in.RequestItems)),
		UnprocessedKeys: map[string]types.KeysAndAttributes{},
	}
	for _, tableName := range sortedKeys(in.RequestItems) {
		req := in.RequestItems[tableName]
		if err := rejectUnsupported(
			member{"ProjectionExpression", req.ProjectionExpression != nil},
			member{"AttributesToGet", len(req.AttributesToGet) > 0},
		); err != nil {
			return nil, err
		}
		def, keys, err := c.keySchema(&tableName, nil)
		if err != nil {
			return nil, err
		}
		reqKeys := make([]table.Key, len(req.Keys))
		for i, k := range req.Keys {
			if reqKeys[i], err = toKey(keys, k); err != nil {
				return nil, err
			}
		}
		res, err := c.store.BatchGet(def.Name, reqKeys)
		if err != nil {
			return nil, apiError(err)
		}
		items, err := fromItems(res.Found)
		if err != nil {
			return nil, err
		}
		out.Responses[tableName] = items
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
