package val

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrNotAddable is returned when ADD is applied to values that cannot be merged.
var ErrNotAddable = errors.New("values cannot be added")

// Compare orders two values. Numbers compare numerically and strings byte-wise.
// Values of different kinds order by kind: absent < number < string < list < set.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNumber:
		return a.rat().Cmp(b.rat())
	case KindString:
		return strings.Compare(a.str, b.str)
	case KindList:
		return compareElems(a.elems, b.elems)
	case KindSet:
		return compareElems(sortedElems(a), sortedElems(b))
	default:
		return 0
	}
}

func compareElems(a, b []Value) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func sortedElems(v Value) []Value {
	out := make([]Value, len(v.elems))
	copy(out, v.elems)
	sort.SliceStable(out, func(i, j int) bool { return Compare(out[i], out[j]) < 0 })
	return out
}

// Equal reports whether a and b hold the same data. Set equality ignores member order.
func Equal(a, b Value) bool {
	return a.Key() == b.Key()
}

// Key returns a canonical string for v: two values have the same key exactly when
// they are Equal. Numbers are keyed by their numeric value, so 1 and 1.0 share a key,
// while the string "1" does not.
func (v Value) Key() string {
	var sb strings.Builder
	v.writeKey(&sb)
	return sb.String()
}

func (v Value) writeKey(sb *strings.Builder) {
	switch v.kind {
	case KindString:
		sb.WriteString("S")
		sb.WriteString(strconv.Itoa(len(v.str)))
		sb.WriteByte(':')
		sb.WriteString(v.str)
	case KindNumber:
		sb.WriteString("N:")
		sb.WriteString(v.str)
		sb.WriteByte(';')
	case KindList:
		sb.WriteString("L[")
		for _, e := range v.elems {
			e.writeKey(sb)
		}
		sb.WriteByte(']')
	case KindSet:
		sb.WriteString("T{")
		for _, e := range sortedElems(v) {
			e.writeKey(sb)
		}
		sb.WriteByte('}')
	}
}

// Add merges b into a the way an ADD update does: numbers are summed, lists are
// concatenated and sets are unioned. Any other combination is ErrNotAddable.
func Add(a, b Value) (Value, error) {
	if a.kind != b.kind {
		return Value{}, fmt.Errorf("%w: cannot add %s to %s", ErrNotAddable, b.kind, a.kind)
	}
	switch a.kind {
	case KindNumber:
		return addNumbers(a, b), nil
	case KindList:
		elems := make([]Value, 0, len(a.elems)+len(b.elems))
		elems = append(elems, a.elems...)
		elems = append(elems, b.elems...)
		return List(elems...), nil
	case KindSet:
		if err := sameMembers(a, b); err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, len(a.elems)+len(b.elems))
		elems = append(elems, a.elems...)
		elems = append(elems, b.elems...)
		return SetOf(elems...), nil
	default:
		return Value{}, fmt.Errorf("%w: %s values only support replacement", ErrNotAddable, a.kind)
	}
}

// Remove returns set a without the members of set b.
func Remove(a, b Value) (Value, error) {
	if a.kind != KindSet || b.kind != KindSet {
		return Value{}, fmt.Errorf("%w: can only remove set members from a set, got %s and %s", ErrNotAddable, a.kind, b.kind)
	}
	if err := sameMembers(a, b); err != nil {
		return Value{}, err
	}
	drop := make(map[string]struct{}, len(b.elems))
	for _, e := range b.elems {
		drop[e.Key()] = struct{}{}
	}
	out := Value{kind: KindSet}
	for _, e := range a.elems {
		if _, ok := drop[e.Key()]; !ok {
			out.elems = append(out.elems, e.Clone())
		}
	}
	return out, nil
}

// sameMembers fails when two non-empty sets hold members of different kinds.
func sameMembers(a, b Value) error {
	ak, bk := a.MemberKind(), b.MemberKind()
	if ak != KindNone && bk != KindNone && ak != bk {
		return fmt.Errorf("%w: set of %s does not match set of %s", ErrNotAddable, bk, ak)
	}
	return nil
}
