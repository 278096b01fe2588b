package ddbclient

import (
	"context"
	"fmt"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// BatchWriteItem applies the put and delete requests of every table. Each
// table's requests are validated before any of them is written.
// UnprocessedItems is always empty.
func (c *Client) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	if err := begin(ctx, optFns); err != nil {
		return nil, err
	}
	if len(in.RequestItems) == 0 {
		return nil, validationError("1 validation error detected: Value null at 'requestItems' failed to satisfy constraint: Member must not be null")
	}

	batches := make(map[string][]ddbstore.WriteRequest, len(in.RequestItems))
	for tableName, reqs := range in.RequestItems {
		def, keys, err := c.keySchema(&tableName, nil)
		if err != nil {
			return nil, err
		}
		writes := make([]ddbstore.WriteRequest, 0, len(reqs))
		for i, req := range reqs {
			switch {
			case req.PutRequest != nil && req.DeleteRequest != nil,
				req.PutRequest == nil && req.DeleteRequest == nil:
				return nil, validationError(fmt.Sprintf("Supplied WriteRequest %d of table %s must contain exactly one of PutRequest or DeleteRequest", i, tableName))
			case req.PutRequest != nil:
				item, err := ToItem(req.PutRequest.Item)
				if err != nil {
					return nil, err
				}
				writes = append(writes, ddbstore.PutRequest(item))
			default:
				key, err := toKey(keys, req.DeleteRequest.Key)
				if err != nil {
					return nil, err
				}
				writes = append(writes, ddbstore.DeleteRequest(key))
			}
		}
		batches[def.Name] = writes
	}

	for _, tableName := range sortedKeys(batches) {
		if err := c.store.BatchWrite(tableName, batches[tableName]); err != nil {
			return nil, apiError(err)
		}
	}
	return &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}, nil
}
