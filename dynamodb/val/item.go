package val

import "sort"

// Item is a schema-less mapping from attribute name to value.
type Item map[string]Value

// Clone returns a deep copy of the item. Callers holding the copy cannot change
// the original through it.
func (it Item) Clone() Item {
	if it == nil {
		return nil
	}
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v.Clone()
	}
	return out
}

// Names returns the attribute names of the item, sorted.
func (it Item) Names() []string {
	names := make([]string, 0, len(it))
	for k := range it {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether both items carry the same attributes with equal values.
func (it Item) Equal(other Item) bool {
	if len(it) != len(other) {
		return false
	}
	for k, v := range it {
		o, ok := other[k]
		if !ok || !Equal(v, o) {
			return false
		}
	}
	return true
}
