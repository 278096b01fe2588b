package ddbclient

import (
	"context"
	"errors"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func (c *Client) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if err := begin(ctx, optFns); err != nil {
		return nil, err
	}
	if err := rejectUnsupported(
		member{"ConditionExpression", in.ConditionExpression != nil},
		member{"Expected", len(in.Expected) > 0},
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

	out := &dynamodb.DeleteItemOutput{}
	switch in.ReturnValues {
	case "", types.ReturnValueNone:
	case types.ReturnValueAllOld:
		old, err := c.store.Get(def.Name, key)
		switch {
		case errors.Is(err, ddbstore.ErrNotFound):
		case err != nil:
			return nil, apiError(err)
		default:
			if out.Attributes, err = FromItem(old); err != nil {
				return nil, err
			}
		}
	default:
		return nil, validationError("ReturnValues can only be ALL_OLD or NONE")
	}

	if err := c.store.Delete(def.Name, key); err != nil {
		return nil, apiError(err)
	}
	return out, nil
}
