package val

import (
	"fmt"
	"math/big"
	"strings"
)

// maxFractionDigits matches the 38 digits of precision of the service's number type.
const maxFractionDigits = 38

func parseRat(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	// big.Rat also accepts fractions like "1/3", which are not decimal numbers.
	if s == "" || strings.Contains(s, "/") {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return r, nil
}

func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	s := r.FloatString(maxFractionDigits)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// rat returns the number held by v. Only valid for KindNumber.
func (v Value) rat() *big.Rat {
	r, err := parseRat(v.str)
	if err != nil {
		// Numbers are canonicalised on construction, so this cannot happen.
		panic(err)
	}
	return r
}

func addNumbers(a, b Value) Value {
	sum := new(big.Rat).Add(a.rat(), b.rat())
	return Value{kind: KindNumber, str: formatRat(sum)}
}
