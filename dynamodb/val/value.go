// Package val holds the attribute value model used by the store.
//
// A Value is a tagged union over the four kinds of data an attribute may hold:
// strings, numbers, ordered lists and unordered sets of scalars. The zero Value
// is "absent" and is used wherever a value is optional, e.g. the range part of a key.
package val

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Kind identifies which member of the union a Value holds.
type Kind uint8

const (
	KindNone Kind = iota
	KindNumber
	KindString
	KindList
	KindSet
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NONE"
	case KindNumber:
		return "N"
	case KindString:
		return "S"
	case KindList:
		return "L"
	case KindSet:
		return "SET"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is an attribute value. Values are immutable; every operation that
// produces a different value returns a new one.
type Value struct {
	kind Kind
	// str is the string value, or the canonical decimal form of a number.
	str string
	// elems holds list elements, or set members in first-insertion order.
	elems []Value
}

// Numeric is a constraint for all numeric types.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// String creates a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number creates a number value from any Go numeric type.
// Panics on NaN or infinities, which have no decimal representation.
func Number[T Numeric](n T) Value {
	var s string
	switch v := any(n).(type) {
	case float32:
		s = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	v, err := ParseNumber(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseNumber creates a number value from its decimal string form,
// e.g. "42", "-0.5" or "1e3".
func ParseNumber(s string) (Value, error) {
	r, err := parseRat(s)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindNumber, str: formatRat(r)}, nil
}

// List creates an ordered list value.
func List(elems ...Value) Value {
	return Value{kind: KindList, elems: cloneAll(elems)}
}

// SetOf creates a set value. Duplicate members collapse.
// Panics if any member is not a string or a number, or if strings and numbers
// are mixed.
func SetOf(elems ...Value) Value {
	set := Value{kind: KindSet}
	seen := make(map[string]struct{}, len(elems))
	for _, e := range elems {
		if !e.IsScalar() {
			panic(fmt.Sprintf("val: set members must be strings or numbers, got %s", e.kind))
		}
		if e.kind != elems[0].kind {
			panic(fmt.Sprintf("val: set members must share one kind, got %s and %s", elems[0].kind, e.kind))
		}
		k := e.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		set.elems = append(set.elems, e)
	}
	return set
}

// StringSet creates a set of strings.
func StringSet(ss ...string) Value {
	elems := make([]Value, len(ss))
	for i, s := range ss {
		elems[i] = String(s)
	}
	return SetOf(elems...)
}

// NumberSet creates a set of numbers.
func NumberSet[T Numeric](ns ...T) Value {
	elems := make([]Value, len(ns))
	for i, n := range ns {
		elems[i] = Number(n)
	}
	return SetOf(elems...)
}

func (v Value) Kind() Kind { return v.kind }

// MemberKind returns the kind of the members of a set, or KindNone for an
// empty set and for values that are not sets.
func (v Value) MemberKind() Kind {
	if v.kind != KindSet || len(v.elems) == 0 {
		return KindNone
	}
	return v.elems[0].kind
}

// IsZero reports whether v is the absent value.
func (v Value) IsZero() bool { return v.kind == KindNone }

// IsScalar reports whether v is a string or a number.
func (v Value) IsScalar() bool { return v.kind == KindString || v.kind == KindNumber }

// IsCollection reports whether v is a list or a set.
func (v Value) IsCollection() bool { return v.kind == KindList || v.kind == KindSet }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the canonical decimal form of the number held by v.
func (v Value) AsNumber() (string, bool) {
	return v.str, v.kind == KindNumber
}

// Float64 returns the number held by v as a float64, possibly losing precision.
func (v Value) Float64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.str, 64)
	return f, err == nil
}

// Elements returns a copy of the members of a list or set.
func (v Value) Elements() []Value {
	if !v.IsCollection() {
		return nil
	}
	return cloneAll(v.elems)
}

// Len returns the number of members of a list or set, and 0 otherwise.
func (v Value) Len() int {
	return len(v.elems)
}

// Slice returns the collection holding members [i, j) of v, keeping its kind.
func (v Value) Slice(i, j int) Value {
	return Value{kind: v.kind, elems: cloneAll(v.elems[i:j])}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	if v.elems == nil {
		return v
	}
	return Value{kind: v.kind, str: v.str, elems: cloneAll(v.elems)}
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return strconv.Quote(v.str)
	case KindNumber:
		return v.str
	case KindList, KindSet:
		parts := make([]string, len(v.elems))
		for i, e := range v.elems {
			parts[i] = e.String()
		}
		if v.kind == KindList {
			return "[" + strings.Join(parts, ", ") + "]"
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<none>"
	}
}

func cloneAll(elems []Value) []Value {
	if elems == nil {
		return nil
	}
	out := make([]Value, len(elems))
	for i, e := range elems {
		out[i] = e.Clone()
	}
	return out
}
