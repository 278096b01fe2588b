package ddbclient

import (
	"context"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

func (c *Client) Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if err := begin(ctx, optFns); err != nil {
		return nil, err
	}
	if err := rejectUnsupported(
		member{"FilterExpression", in.FilterExpression != nil},
		member{"ProjectionExpression", in.ProjectionExpression != nil},
		member{"ScanFilter", len(in.ScanFilter) > 0},
	); err != nil {
		return nil, err
	}
	def, _, err := c.keySchema(in.TableName, in.IndexName)
	if err != nil {
		return nil, err
	}
	start, err := ToItem(in.ExclusiveStartKey)
	if err != nil {
		return nil, err
	}
	if len(start) == 0 {
		start = nil
	}

	scan := ddbstore.ScanInput{
		TableName:      def.Name,
		IndexName:      aws.ToString(in.IndexName),
		StartKey:       start,
		Limit:          int(aws.ToInt32(in.Limit)),
		ConsistentRead: aws.ToBool(in.ConsistentRead),
	}
	if in.Segment != nil {
		scan.Segment = aws.Int(int(*in.Segment))
	}
	if in.TotalSegments != nil {
		scan.TotalSegments = aws.Int(int(*in.TotalSegments))
	}
	res, err := c.store.Scan(scan)
	if err != nil {
		return nil, apiError(err)
	}

	out := &dynamodb.ScanOutput{
		Count:        int32(res.Count),
		ScannedCount: int32(res.Count),
	}
	if out.Items, err = fromItems(res.Items); err != nil {
		return nil, err
	}
	if res.LastEvaluatedKey != nil {
		if out.LastEvaluatedKey, err = FromItem(res.LastEvaluatedKey); err != nil {
			return nil, err
		}
	}
	return out, nil
}
