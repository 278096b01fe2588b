package update

import (
	"strings"

	"github.com/acksell/dynamini/dynamodb/val"
)

// Sizer measures the serialized size of an action in bytes. Implementations must
// be deterministic and must not shrink when a collection value grows.
type Sizer func(UpdateAction) int

// ItemSize approximates the service's item size accounting: the UTF-8 length of
// the attribute name plus the value, where collections cost 3 bytes plus 1 byte
// per member on top of their members.
func ItemSize(a UpdateAction) int {
	return len(a.Attribute) + ValueSize(a.Value)
}

// ValueSize returns the size of a single value.
func ValueSize(v val.Value) int {
	switch v.Kind() {
	case val.KindString:
		s, _ := v.AsString()
		return len(s)
	case val.KindNumber:
		n, _ := v.AsNumber()
		return (significantDigits(n)+1)/2 + 1
	case val.KindList, val.KindSet:
		size := 3
		for _, e := range v.Elements() {
			size += 1 + ValueSize(e)
		}
		return size
	default:
		return 0
	}
}

func significantDigits(n string) int {
	n = strings.TrimPrefix(n, "-")
	n = strings.Replace(n, ".", "", 1)
	n = strings.Trim(n, "0")
	if n == "" {
		return 1
	}
	return len(n)
}
