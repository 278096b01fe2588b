package ddbclient

import (
	"context"
	"fmt"
	"sort"

	"github.com/acksell/dynamini/dynamodb/update"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// UpdateItem applies the legacy AttributeUpdates of the request to the item,
// creating it if it does not exist. Updates are applied in attribute name
// order. ReturnValues ALL_NEW returns the updated item.
func (c *Client) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if err := begin(ctx, optFns); err != nil {
		return nil, err
	}
	if err := rejectUnsupported(
		member{"UpdateExpression", in.UpdateExpression != nil},
		member{"ConditionExpression", in.ConditionExpression != nil},
		member{"Expected", len(in.Expected) > 0},
	); err != nil {
		return nil, err
	}
	switch in.ReturnValues {
	case "", types.ReturnValueNone, types.ReturnValueAllNew:
	default:
		return nil, validationError(fmt.Sprintf("ReturnValues %s is not supported", in.ReturnValues))
	}
	def, keys, err := c.keySchema(in.TableName, nil)
	if err != nil {
		return nil, err
	}
	key, err := toKey(keys, in.Key)
	if err != nil {
		return nil, err
	}
	actions, err := toActions(in.AttributeUpdates)
	if err != nil {
		return nil, err
	}

	item, err := c.store.Update(def.Name, key, actions)
	if err != nil {
		return nil, apiError(err)
	}
	out := &dynamodb.UpdateItemOutput{}
	if in.ReturnValues == types.ReturnValueAllNew {
		if out.Attributes, err = FromItem(item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func toActions(updates map[string]types.AttributeValueUpdate) ([]update.UpdateAction, error) {
	names := make([]string, 0, len(updates))
	for name := range updates {
		names = append(names, name)
	}
	sort.Strings(names)

	actions := make([]update.UpdateAction, 0, len(updates))
	for _, name := range names {
		u := updates[name]
		a := update.UpdateAction{Attribute: name}
		switch u.Action {
		case types.AttributeActionPut, "":
			a.Action = update.ActionPut
		case types.AttributeActionAdd:
			a.Action = update.ActionAdd
		case types.AttributeActionDelete:
			a.Action = update.ActionDelete
		default:
			return nil, validationError(fmt.Sprintf("Unknown AttributeAction %s for attribute %s", u.Action, name))
		}
		if u.Value != nil {
			v, err := ToValue(u.Value)
			if err != nil {
				return nil, err
			}
			a.Value = v
		}
		if a.Value.IsZero() && a.Action != update.ActionDelete {
			return nil, validationError(fmt.Sprintf("One or more parameter values were invalid: Only DELETE action is allowed when no attribute value is specified; attribute: %s", name))
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// toUpdates is the inverse of toActions.
func toUpdates(actions []update.UpdateAction) (map[string]types.AttributeValueUpdate, error) {
	out := make(map[string]types.AttributeValueUpdate, len(actions))
	for _, a := range actions {
		u := types.AttributeValueUpdate{Action: types.AttributeAction(a.Action)}
		if !a.Value.IsZero() {
			av, err := FromValue(a.Value)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", a.Attribute, err)
			}
			u.Value = av
		}
		out[a.Attribute] = u
	}
	return out, nil
}

// SplitUpdate splits an UpdateItem request whose AttributeUpdates are larger
// than maxBytes into requests that each fit. All returned requests target the
// same key and must be sent in order. A maxBytes of zero uses the default.
func SplitUpdate(in *dynamodb.UpdateItemInput, maxBytes int) ([]*dynamodb.UpdateItemInput, error) {
	actions, err := toActions(in.AttributeUpdates)
	if err != nil {
		return nil, err
	}
	chunks, err := update.Split(actions, maxBytes, update.ItemSize)
	if err != nil {
		return nil, err
	}
	out := make([]*dynamodb.UpdateItemInput, 0, len(chunks))
	for _, chunk := range chunks {
		updates, err := toUpdates(chunk)
		if err != nil {
			return nil, err
		}
		req := *in
		req.AttributeUpdates = updates
		out = append(out, &req)
	}
	return out, nil
}
