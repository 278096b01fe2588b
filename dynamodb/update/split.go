package update

import (
	"fmt"
)

// DefaultMaxBytes is the default ceiling for a single update request, leaving
// headroom under the service's 400KB item limit for keys and request framing.
const DefaultMaxBytes = 380_000

// UnsplittableValueError is returned when a single action is larger than the
// ceiling and its value cannot be divided further.
type UnsplittableValueError struct {
	Attribute string
	Size      int
	MaxBytes  int
	// SingleMember is set when the value is a collection whose only member is too large.
	SingleMember bool
}

func (e *UnsplittableValueError) Error() string {
	if e.SingleMember {
		return fmt.Sprintf("%s is too large to save and is not splittable (single member of %d bytes).", e.Attribute, e.Size)
	}
	return fmt.Sprintf("%s is too large to save and is not splittable (not enumerable).", e.Attribute)
}

// Split partitions the actions of one update request into a sequence of requests
// that each measure at most maxBytes according to sizer.
//
// Actions are accumulated greedily in order. An action that alone exceeds
// maxBytes is halved while it is too large: the first half keeps its action and
// the second half becomes an ADD, so that issuing the requests in order merges the
// halves back together. Halves of a set DELETE stay DELETEs. A request never
// carries two actions for the same attribute.
//
// maxBytes <= 0 selects DefaultMaxBytes and a nil sizer selects ItemSize.
func Split(actions []UpdateAction, maxBytes int, sizer Sizer) ([][]UpdateAction, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if sizer == nil {
		sizer = ItemSize
	}

	pending := make([]UpdateAction, len(actions))
	copy(pending, actions)

	var (
		chunks  [][]UpdateAction
		current []UpdateAction
		size    int
		attrs   = map[string]struct{}{}
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, current)
		current = nil
		size = 0
		attrs = map[string]struct{}{}
	}

	for len(pending) > 0 {
		a := pending[0]
		n := sizer(a)
		if n > maxBytes {
			first, second, err := halve(a, n, maxBytes)
			if err != nil {
				return nil, err
			}
			pending = append([]UpdateAction{first, second}, pending[1:]...)
			continue
		}
		pending = pending[1:]

		_, repeated := attrs[a.Attribute]
		if repeated || size+n > maxBytes {
			flush()
		}
		current = append(current, a)
		size += n
		attrs[a.Attribute] = struct{}{}
	}
	flush()
	return chunks, nil
}

func halve(a UpdateAction, size, maxBytes int) (UpdateAction, UpdateAction, error) {
	if !a.Value.IsCollection() {
		return UpdateAction{}, UpdateAction{}, &UnsplittableValueError{Attribute: a.Attribute, Size: size, MaxBytes: maxBytes}
	}
	n := a.Value.Len()
	if n <= 1 {
		return UpdateAction{}, UpdateAction{}, &UnsplittableValueError{Attribute: a.Attribute, Size: size, MaxBytes: maxBytes, SingleMember: true}
	}
	first := UpdateAction{Attribute: a.Attribute, Action: a.Action, Value: a.Value.Slice(0, n/2)}
	second := UpdateAction{Attribute: a.Attribute, Action: ActionAdd, Value: a.Value.Slice(n/2, n)}
	if a.Action == ActionDelete {
		second.Action = ActionDelete
	}
	return first, second, nil
}
