package ddbclient

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/acksell/dynamini/dynamodb/ddbstore"
	"github.com/acksell/dynamini/dynamodb/val"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// comparison is one term of a key condition, e.g. `#pk = :v` or
// `sk BETWEEN :lo AND :hi`, with names and values resolved.
type comparison struct {
	name   string
	op     string
	values []val.Value
}

const notSupported = "Query key condition not supported"

// buildKeyCondition turns the comparisons of a query into a store key
// condition: one equality on the hash key and at most one range condition.
func buildKeyCondition(comps []comparison) (ddbstore.KeyCondition, error) {
	var cond ddbstore.KeyCondition
	if len(comps) == 0 || len(comps) > 2 {
		return cond, validationError(notSupported)
	}
	hashFound := false
	for _, c := range comps {
		if len(c.values) != operandCount(c.op) {
			return cond, validationError(notSupported)
		}
		switch c.op {
		case "=":
			if hashFound {
				return cond, validationError(notSupported)
			}
			hashFound = true
			cond.HashKeyName = c.name
			cond.HashValue = c.values[0]
		case ">=":
			if cond.Range != nil {
				return cond, validationError(notSupported)
			}
			cond.Range = ddbstore.GreaterOrEqual(c.name, c.values[0])
		case "<=":
			if cond.Range != nil {
				return cond, validationError(notSupported)
			}
			cond.Range = ddbstore.LessOrEqual(c.name, c.values[0])
		case "BETWEEN":
			if cond.Range != nil {
				return cond, validationError(notSupported)
			}
			cond.Range = ddbstore.Between(c.name, c.values[0], c.values[1])
		default:
			return cond, validationError(notSupported)
		}
	}
	if !hashFound {
		return cond, validationError(notSupported)
	}
	return cond, nil
}

// operandCount is the number of values a key operator compares against, or
// -1 for operators a key condition cannot use.
func operandCount(op string) int {
	switch op {
	case "=", ">=", "<=":
		return 1
	case "BETWEEN":
		return 2
	}
	return -1
}

// legacyComparisons converts the KeyConditions request member.
func legacyComparisons(conds map[string]types.Condition) ([]comparison, error) {
	names := make([]string, 0, len(conds))
	for name := range conds {
		names = append(names, name)
	}
	sort.Strings(names)

	comps := make([]comparison, 0, len(conds))
	for _, name := range names {
		c := conds[name]
		var op string
		want := 1
		switch c.ComparisonOperator {
		case types.ComparisonOperatorEq:
			op = "="
		case types.ComparisonOperatorGe:
			op = ">="
		case types.ComparisonOperatorLe:
			op = "<="
		case types.ComparisonOperatorBetween:
			op = "BETWEEN"
			want = 2
		default:
			return nil, validationError(fmt.Sprintf("Unsupported operator on KeyConditions: %s", c.ComparisonOperator))
		}
		if len(c.AttributeValueList) != want {
			return nil, validationError(fmt.Sprintf("One or more parameter values were invalid: Invalid number of argument(s) for the %s ComparisonOperator", c.ComparisonOperator))
		}
		values := make([]val.Value, want)
		for i, av := range c.AttributeValueList {
			v, err := ToValue(av)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		comps = append(comps, comparison{name: name, op: op, values: values})
	}
	return comps, nil
}

// parseKeyCondition parses a KeyConditionExpression. It accepts comparisons
// joined by AND with optional parentheses, which covers the output of the
// expression package's KeyConditionBuilder.
func parseKeyCondition(expr string, names map[string]string, values map[string]types.AttributeValue) ([]comparison, error) {
	toks, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, names: names, values: values}
	comps, err := p.condition()
	if err != nil {
		return nil, err
	}
	if !p.at(tokEOF) {
		return nil, p.syntaxError()
	}
	return comps, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokName  // #name
	tokValue // :value
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++
		case c == '=':
			toks = append(toks, token{tokOp, "="})
			i++
		case c == '<' || c == '>':
			op := string(c)
			if i+1 < len(s) && (s[i+1] == '=' || (c == '<' && s[i+1] == '>')) {
				op += string(s[i+1])
			}
			toks = append(toks, token{tokOp, op})
			i += len(op)
		case c == '#' || c == ':':
			j := i + 1
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			if j == i+1 {
				return nil, validationError(fmt.Sprintf("Invalid KeyConditionExpression: Syntax error; token: %q, near: %q", string(c), s[i:]))
			}
			kind := tokName
			if c == ':' {
				kind = tokValue
			}
			toks = append(toks, token{kind, s[i:j]})
			i = j
		case isWordByte(c):
			j := i
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j]})
			i = j
		default:
			return nil, validationError(fmt.Sprintf("Invalid KeyConditionExpression: Syntax error; token: %q, near: %q", string(c), s[i:]))
		}
	}
	return append(toks, token{kind: tokEOF}), nil
}

func isWordByte(c byte) bool {
	return c == '_' || c == '.' || c < 0x80 && (unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c)))
}

type parser struct {
	toks   []token
	pos    int
	names  map[string]string
	values map[string]types.AttributeValue
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) at(kind tokenKind) bool {
	return p.peek().kind == kind
}

func (p *parser) atKeyword(kw string) bool {
	t := p.peek()
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

func (p *parser) expect(kind tokenKind) (token, error) {
	if !p.at(kind) {
		return token{}, p.syntaxError()
	}
	return p.next(), nil
}

func (p *parser) syntaxError() error {
	t := p.peek()
	if t.kind == tokEOF {
		return validationError("Invalid KeyConditionExpression: Syntax error; token: <EOF>")
	}
	return validationError(fmt.Sprintf("Invalid KeyConditionExpression: Syntax error; token: %q", t.text))
}

// condition := operand { AND operand }
func (p *parser) condition() ([]comparison, error) {
	comps, err := p.operand()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("AND") {
		p.next()
		more, err := p.operand()
		if err != nil {
			return nil, err
		}
		comps = append(comps, more...)
	}
	return comps, nil
}

// operand := "(" condition ")" | function | path op value | path BETWEEN value AND value
func (p *parser) operand() ([]comparison, error) {
	if p.at(tokLParen) {
		p.next()
		comps, err := p.condition()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return comps, nil
	}
	if p.at(tokIdent) && p.toks[p.pos+1].kind == tokLParen {
		return p.function()
	}

	name, err := p.path()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("BETWEEN") {
		p.next()
		lower, err := p.value()
		if err != nil {
			return nil, err
		}
		if !p.atKeyword("AND") {
			return nil, p.syntaxError()
		}
		p.next()
		upper, err := p.value()
		if err != nil {
			return nil, err
		}
		return []comparison{{name: name, op: "BETWEEN", values: []val.Value{lower, upper}}}, nil
	}
	op, err := p.expect(tokOp)
	if err != nil {
		return nil, err
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	return []comparison{{name: name, op: op.text, values: []val.Value{v}}}, nil
}

// function parses calls like begins_with(#sk, :prefix). They are recognised so
// that they can be reported as unsupported instead of as syntax errors.
func (p *parser) function() ([]comparison, error) {
	fn := p.next()
	p.next() // (
	name, err := p.path()
	if err != nil {
		return nil, err
	}
	var values []val.Value
	for p.at(tokComma) {
		p.next()
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	// Function names are lowered so a call can never pose as a key operator.
	return []comparison{{name: name, op: strings.ToLower(fn.text), values: values}}, nil
}

func (p *parser) path() (string, error) {
	t := p.peek()
	switch t.kind {
	case tokIdent:
		p.next()
		return t.text, nil
	case tokName:
		p.next()
		name, ok := p.names[t.text]
		if !ok {
			return "", validationError("Invalid KeyConditionExpression: An expression attribute name used in the document path is not defined; attribute name: " + t.text)
		}
		return name, nil
	default:
		return "", p.syntaxError()
	}
}

func (p *parser) value() (val.Value, error) {
	t, err := p.expect(tokValue)
	if err != nil {
		return val.Value{}, err
	}
	av, ok := p.values[t.text]
	if !ok {
		return val.Value{}, validationError("Invalid KeyConditionExpression: An expression attribute value used in expression is not defined; attribute value: " + t.text)
	}
	return ToValue(av)
}
