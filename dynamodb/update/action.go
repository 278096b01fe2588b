// Package update implements per-attribute update actions and the splitting of
// large update requests into requests that fit a size ceiling.
package update

import (
	"errors"
	"fmt"

	"github.com/acksell/dynamini/dynamodb/val"
)

// ErrInvalidUpdate is returned for actions that cannot be applied to an item,
// e.g. ADD on a string attribute.
var ErrInvalidUpdate = errors.New("invalid update")

type Action string

const (
	ActionPut    Action = "PUT"
	ActionAdd    Action = "ADD"
	ActionDelete Action = "DELETE"
)

func (a Action) Valid() bool {
	switch a {
	case ActionPut, ActionAdd, ActionDelete:
		return true
	}
	return false
}

// UpdateAction changes a single attribute of an item.
type UpdateAction struct {
	Attribute string
	Action    Action
	// Value is absent for a DELETE that removes the whole attribute.
	Value val.Value
}

func Put(attr string, v val.Value) UpdateAction {
	return UpdateAction{Attribute: attr, Action: ActionPut, Value: v}
}

func Add(attr string, v val.Value) UpdateAction {
	return UpdateAction{Attribute: attr, Action: ActionAdd, Value: v}
}

// Delete removes attr from the item. When members are given, only those members
// are removed from the set stored in attr.
func Delete(attr string, members ...val.Value) UpdateAction {
	a := UpdateAction{Attribute: attr, Action: ActionDelete}
	if len(members) > 0 {
		a.Value = val.SetOf(members...)
	}
	return a
}

func (a UpdateAction) String() string {
	if a.Value.IsZero() {
		return fmt.Sprintf("%s %s", a.Action, a.Attribute)
	}
	return fmt.Sprintf("%s %s = %s", a.Action, a.Attribute, a.Value)
}

// Apply applies the actions in order to a copy of item and returns the copy.
// item may be nil, in which case the actions start from an empty item.
func Apply(item val.Item, actions []UpdateAction) (val.Item, error) {
	out := item.Clone()
	if out == nil {
		out = val.Item{}
	}
	for _, a := range actions {
		if err := apply(out, a); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func apply(item val.Item, a UpdateAction) error {
	if a.Attribute == "" {
		return fmt.Errorf("%w: empty attribute name", ErrInvalidUpdate)
	}
	current, exists := item[a.Attribute]
	switch a.Action {
	case ActionPut:
		if a.Value.IsZero() {
			return fmt.Errorf("%w: PUT %s requires a value", ErrInvalidUpdate, a.Attribute)
		}
		item[a.Attribute] = a.Value.Clone()
	case ActionAdd:
		if a.Value.IsZero() {
			return fmt.Errorf("%w: ADD %s requires a value", ErrInvalidUpdate, a.Attribute)
		}
		if !exists {
			item[a.Attribute] = a.Value.Clone()
			return nil
		}
		sum, err := val.Add(current, a.Value)
		if err != nil {
			return fmt.Errorf("%w: ADD %s: %w", ErrInvalidUpdate, a.Attribute, err)
		}
		item[a.Attribute] = sum
	case ActionDelete:
		if a.Value.IsZero() {
			delete(item, a.Attribute)
			return nil
		}
		if !exists {
			return nil
		}
		rest, err := val.Remove(current, a.Value)
		if err != nil {
			return fmt.Errorf("%w: DELETE %s: %w", ErrInvalidUpdate, a.Attribute, err)
		}
		if rest.Len() == 0 {
			delete(item, a.Attribute)
		} else {
			item[a.Attribute] = rest
		}
	default:
		return fmt.Errorf("%w: unknown action %q for %s", ErrInvalidUpdate, a.Action, a.Attribute)
	}
	return nil
}
