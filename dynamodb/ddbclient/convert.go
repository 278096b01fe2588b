package ddbclient

import (
	"fmt"

	"github.com/acksell/dynamini/dynamodb/table"
	"github.com/acksell/dynamini/dynamodb/val"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ToValue converts an attribute value of the SDK into a store value.
// Strings, numbers, lists and string or number sets are supported.
func ToValue(av types.AttributeValue) (val.Value, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return val.String(v.Value), nil
	case *types.AttributeValueMemberN:
		n, err := val.ParseNumber(v.Value)
		if err != nil {
			return val.Value{}, validationError(fmt.Sprintf("The parameter cannot be converted to a numeric value: %s", v.Value))
		}
		return n, nil
	case *types.AttributeValueMemberL:
		elems := make([]val.Value, len(v.Value))
		for i, e := range v.Value {
			ev, err := ToValue(e)
			if err != nil {
				return val.Value{}, err
			}
			elems[i] = ev
		}
		return val.List(elems...), nil
	case *types.AttributeValueMemberSS:
		if len(v.Value) == 0 {
			return val.Value{}, validationError("One or more parameter values were invalid: An string set  may not be empty")
		}
		return val.StringSet(v.Value...), nil
	case *types.AttributeValueMemberNS:
		if len(v.Value) == 0 {
			return val.Value{}, validationError("One or more parameter values were invalid: An number set  may not be empty")
		}
		elems := make([]val.Value, len(v.Value))
		for i, s := range v.Value {
			n, err := val.ParseNumber(s)
			if err != nil {
				return val.Value{}, validationError(fmt.Sprintf("The parameter cannot be converted to a numeric value: %s", s))
			}
			elems[i] = n
		}
		return val.SetOf(elems...), nil
	case nil:
		return val.Value{}, validationError("Supplied AttributeValue is empty, must contain exactly one of the supported datatypes")
	default:
		return val.Value{}, validationError(fmt.Sprintf("Unsupported attribute value type %T", av))
	}
}

// FromValue converts a store value into an SDK attribute value.
func FromValue(v val.Value) (types.AttributeValue, error) {
	switch v.Kind() {
	case val.KindString:
		s, _ := v.AsString()
		return &types.AttributeValueMemberS{Value: s}, nil
	case val.KindNumber:
		n, _ := v.AsNumber()
		return &types.AttributeValueMemberN{Value: n}, nil
	case val.KindList:
		elems := v.Elements()
		out := make([]types.AttributeValue, len(elems))
		for i, e := range elems {
			av, err := FromValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = av
		}
		return &types.AttributeValueMemberL{Value: out}, nil
	case val.KindSet:
		return fromSet(v)
	default:
		return nil, fmt.Errorf("cannot convert value of kind %s", v.Kind())
	}
}

func fromSet(v val.Value) (types.AttributeValue, error) {
	elems := v.Elements()
	if len(elems) == 0 {
		return nil, fmt.Errorf("cannot convert an empty set")
	}
	out := make([]string, len(elems))
	if v.MemberKind() == val.KindString {
		for i, e := range elems {
			out[i], _ = e.AsString()
		}
		return &types.AttributeValueMemberSS{Value: out}, nil
	}
	for i, e := range elems {
		out[i], _ = e.AsNumber()
	}
	return &types.AttributeValueMemberNS{Value: out}, nil
}

// ToItem converts an SDK item into a store item.
func ToItem(m map[string]types.AttributeValue) (val.Item, error) {
	item := make(val.Item, len(m))
	for name, av := range m {
		v, err := ToValue(av)
		if err != nil {
			return nil, err
		}
		item[name] = v
	}
	return item, nil
}

// FromItem converts a store item into an SDK item.
func FromItem(item val.Item) (map[string]types.AttributeValue, error) {
	m := make(map[string]types.AttributeValue, len(item))
	for name, v := range item {
		av, err := FromValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		m[name] = av
	}
	return m, nil
}

func fromItems(items []val.Item) ([]map[string]types.AttributeValue, error) {
	out := make([]map[string]types.AttributeValue, len(items))
	for i, item := range items {
		m, err := FromItem(item)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

// toKey converts a request key. The key must hold exactly the key attributes.
func toKey(keys table.PrimaryKeyDefinition, m map[string]types.AttributeValue) (table.Key, error) {
	if len(m) != len(keys.Names()) {
		return table.Key{}, validationError("The provided key element does not match the schema")
	}
	item, err := ToItem(m)
	if err != nil {
		return table.Key{}, err
	}
	key, err := keys.ExtractKey(item)
	if err != nil {
		return table.Key{}, apiError(err)
	}
	return key, nil
}

func fromKey(keys table.PrimaryKeyDefinition, key table.Key) (map[string]types.AttributeValue, error) {
	return FromItem(keys.Attributes(key))
}

// MarshalItem encodes a Go value into an item using the attributevalue
// conventions (dynamodbav struct tags) and converts it for the store.
func MarshalItem(in any) (val.Item, error) {
	m, err := attributevalue.MarshalMap(in)
	if err != nil {
		return nil, fmt.Errorf("marshal item: %w", err)
	}
	return ToItem(m)
}

// UnmarshalItem decodes a store item into out.
func UnmarshalItem(item val.Item, out any) error {
	m, err := FromItem(item)
	if err != nil {
		return err
	}
	if err := attributevalue.UnmarshalMap(m, out); err != nil {
		return fmt.Errorf("unmarshal item: %w", err)
	}
	return nil
}
