package ddbclient

import (
	"context"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Query accepts either a KeyConditionExpression or the legacy KeyConditions.
// Results are not paginated: every matching item up to Limit is returned and
// LastEvaluatedKey is never set.
func (c *Client) Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if err := begin(ctx, optFns); err != nil {
		return nil, err
	}
	if err := rejectUnsupported(
		member{"FilterExpression", in.FilterExpression != nil},
		member{"ProjectionExpression", in.ProjectionExpression != nil},
		member{"QueryFilter", len(in.QueryFilter) > 0},
		member{"ExclusiveStartKey", len(in.ExclusiveStartKey) > 0},
	); err != nil {
		return nil, err
	}
	def, _, err := c.keySchema(in.TableName, in.IndexName)
	if err != nil {
		return nil, err
	}

	var comps []comparison
	switch {
	case in.KeyConditionExpression != nil && len(in.KeyConditions) > 0:
		return nil, validationError("Can not use both expression and non-expression parameters in the same request: Non-expression parameters: {KeyConditions} Expression parameters: {KeyConditionExpression}")
	case in.KeyConditionExpression != nil:
		comps, err = parseKeyCondition(*in.KeyConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues)
	case len(in.KeyConditions) > 0:
		comps, err = legacyComparisons(in.KeyConditions)
	default:
		return nil, validationError("Either the KeyConditions or KeyConditionExpression parameter must be specified in the request.")
	}
	if err != nil {
		return nil, err
	}
	cond, err := buildKeyCondition(comps)
	if err != nil {
		return nil, err
	}

	res, err := c.store.Query(ddbstore.QueryInput{
		TableName: def.Name,
		IndexName: aws.ToString(in.IndexName),
		Condition: cond,
		Limit:     int(aws.ToInt32(in.Limit)),
		Reverse:   in.ScanIndexForward != nil && !*in.ScanIndexForward,
	})
	if err != nil {
		return nil, apiError(err)
	}
	items, err := fromItems(res.Items)
	if err != nil {
		return nil, err
	}
	return &dynamodb.QueryOutput{
		Items:        items,
		Count:        int32(res.Count),
		ScannedCount: int32(res.Count),
	}, nil
}

