package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/acksell/dynamini/dynamodb/val"
	"gopkg.in/yaml.v3"
)

// Fixtures maps table names to the items to load into them.
//
// Plain YAML strings, numbers and lists become string, number and list values.
// Sets, and numbers that must keep their exact decimal form, are written the
// way DynamoDB JSON writes them: a map with a single S, N, L, SS or NS key.
type Fixtures map[string][]map[string]any

// LoadFixtures reads a YAML or JSON fixture file.
func LoadFixtures(path string) (Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return fx, nil
}

// Seed writes the fixture items into the store, one batch per table.
func (fx Fixtures) Seed(store *ddbstore.Store) (int, error) {
	tables := make([]string, 0, len(fx))
	for name := range fx {
		tables = append(tables, name)
	}
	sort.Strings(tables)

	total := 0
	for _, name := range tables {
		reqs := make([]ddbstore.WriteRequest, 0, len(fx[name]))
		for i, raw := range fx[name] {
			item, err := toItem(raw)
			if err != nil {
				return total, fmt.Errorf("table %s item %d: %w", name, i, err)
			}
			reqs = append(reqs, ddbstore.PutRequest(item))
		}
		if err := store.BatchWrite(name, reqs); err != nil {
			return total, fmt.Errorf("table %s: %w", name, err)
		}
		total += len(reqs)
	}
	return total, nil
}

func toItem(raw map[string]any) (val.Item, error) {
	item := make(val.Item, len(raw))
	for name, v := range raw {
		value, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		item[name] = value
	}
	return item, nil
}

func toValue(v any) (val.Value, error) {
	switch x := v.(type) {
	case string:
		return val.String(x), nil
	case int:
		return val.Number(x), nil
	case int64:
		return val.Number(x), nil
	case uint64:
		return val.Number(x), nil
	case float64:
		return val.Number(x), nil
	case []any:
		elems, err := toValues(x)
		if err != nil {
			return val.Value{}, err
		}
		return val.List(elems...), nil
	case map[string]any:
		return typedValue(x)
	default:
		return val.Value{}, fmt.Errorf("unsupported value %v of type %T", v, v)
	}
}

func toValues(raw []any) ([]val.Value, error) {
	elems := make([]val.Value, len(raw))
	for i, e := range raw {
		v, err := toValue(e)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}
	return elems, nil
}

// typedValue decodes the DynamoDB JSON form, e.g. {NS: ["1", "2"]}.
func typedValue(m map[string]any) (val.Value, error) {
	if len(m) != 1 {
		return val.Value{}, fmt.Errorf("maps are only supported as typed values like {SS: [a, b]}")
	}
	var typ string
	var raw any
	for k, v := range m {
		typ, raw = k, v
	}
	switch typ {
	case "S":
		s, ok := raw.(string)
		if !ok {
			return val.Value{}, fmt.Errorf("S value must be a string")
		}
		return val.String(s), nil
	case "N":
		return val.ParseNumber(fmt.Sprint(raw))
	case "L":
		list, ok := raw.([]any)
		if !ok {
			return val.Value{}, fmt.Errorf("L value must be a list")
		}
		elems, err := toValues(list)
		if err != nil {
			return val.Value{}, err
		}
		return val.List(elems...), nil
	case "SS", "NS":
		list, ok := raw.([]any)
		if !ok || len(list) == 0 {
			return val.Value{}, fmt.Errorf("%s value must be a non-empty list", typ)
		}
		elems := make([]val.Value, len(list))
		for i, e := range list {
			var err error
			if typ == "SS" {
				elems[i] = val.String(fmt.Sprint(e))
			} else if elems[i], err = val.ParseNumber(fmt.Sprint(e)); err != nil {
				return val.Value{}, err
			}
		}
		return val.SetOf(elems...), nil
	default:
		return val.Value{}, fmt.Errorf("unknown value type %q", typ)
	}
}
