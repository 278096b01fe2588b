package ddbclient

import (
	"context"
	"errors"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// GetItem returns the item stored under the key. Like the service, a missing
// item is not an error: the output's Item is nil.
func (c *Client) GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if err := begin(ctx, optFns); err != nil {
		return nil, err
	}
	if err := rejectUnsupported(
		member{"ProjectionExpression", in.ProjectionExpression != nil},
		member{"AttributesToGet", len(in.AttributesToGet) > 0},
	); err != nil {
		return nil, err
	}
	def, keys, err := c.keySchema(in.TableName, nil)
	if err != nil {
		return nil, err
	}
	key, err := toKey(keys, in.Key)
	if err != nil {
		return nil, err
	}
	item, err := c.store.Get(def.Name, key)
	if errors.Is(err, ddbstore.ErrNotFound) {
		return &dynamodb.GetItemOutput{}, nil
	}
	if err != nil {
		return nil, apiError(err)
	}
	out, err := FromItem(item)
	if err != nil {
		return nil, err
	}
	return &dynamodb.GetItemOutput{Item: out}, nil
}
