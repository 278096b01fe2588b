package ddbclient

import (
	"context"
	"errors"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PutItem replaces the item stored under the key held by the item's own key
// attributes. ReturnValues ALL_OLD returns the replaced item.
func (c *Client) PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
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
	item, err := ToItem(in.Item)
	if err != nil {
		return nil, err
	}
	key, err := keys.ExtractKey(item)
	if err != nil {
		return nil, validationError("One or more parameter values were invalid: " + err.Error())
	}

	out := &dynamodb.PutItemOutput{}
	switch in.ReturnValues {
	case types.ReturnValueNone, "":
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

	if err := c.store.Put(def.Name, item); err != nil {
		return nil, apiError(err)
	}
	return out, nil
}
