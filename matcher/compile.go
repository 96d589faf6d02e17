// Package matcher compiles rule expressions into immutable matchers
// and evaluates them against message views.
package matcher

import (
	"errors"
	"sort"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/matchingram/matchingram/ast"
	"github.com/matchingram/matchingram/parser"
	"github.com/matchingram/matchingram/schema"
)

// Matcher is a compiled rule: a flat disjunction of condition groups
// with every condition pre-resolved to a field id, an operator id and
// a normalized payload. A Matcher is immutable after Compile and safe
// to share between concurrent Match calls.
type Matcher struct {
	groups []condGroup
}

type condGroup []cond

type cond struct {
	negated bool
	field   schema.FieldID
	op      schema.Operator // OpNone for a bare condition

	// Normalized payload. Which parts are set depends on the operator:
	// eq/gt/ge/le carry one scalar, in carries sorted lists for binary
	// search, any/all/hd carry the patterns in source order (any with
	// two or more patterns also carries an automaton).
	str      string
	num      float64
	numI     int64
	numIsInt bool
	strs     []string
	ints     []int64
	nums     []float64
	ac       *ahocorasick.AhoCorasick
}

// Compile turns rule text into a Matcher. Every failure is a
// *CompileError carrying the span of the offending input.
func Compile(text string) (*Matcher, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &CompileError{Kind: ErrEmptyRule, Span: ast.Span{Start: 0, End: len(text)}}
	}
	rule, err := parser.Parse(text)
	if err != nil {
		return nil, fromParserError(err)
	}
	return CompileAST(rule)
}

// Validate compiles the rule text and discards the result.
func Validate(text string) error {
	_, err := Compile(text)
	return err
}

// CompileAST runs semantic checking and compilation over an already
// parsed rule. Hosts that build rules programmatically enter here.
func CompileAST(rule *ast.Rule) (*Matcher, error) {
	if rule == nil || len(rule.Groups) == 0 {
		return nil, &CompileError{Kind: ErrEmptyRule}
	}
	m := &Matcher{groups: make([]condGroup, 0, len(rule.Groups))}
	for _, g := range rule.Groups {
		if len(g.Conds) == 0 {
			return nil, &CompileError{Kind: ErrEmptyGroup, Span: g.Span}
		}
		group := make(condGroup, 0, len(g.Conds))
		for _, c := range g.Conds {
			cc, cerr := compileCond(c)
			if cerr != nil {
				return nil, cerr
			}
			group = append(group, cc)
		}
		m.groups = append(m.groups, group)
	}
	return m, nil
}

func fromParserError(err error) error {
	var pe *parser.Error
	if !errors.As(err, &pe) {
		return err
	}
	if pe.Kind == parser.KindLex {
		return &CompileError{Kind: ErrLex, Span: pe.Span, Reason: pe.Reason}
	}
	return &CompileError{Kind: ErrParse, Span: pe.Span, Expected: pe.Expected, Found: pe.Found}
}

func compileCond(c *ast.Cond) (cond, *CompileError) {
	id, ok := schema.Lookup(c.Field)
	if !ok {
		return cond{}, &CompileError{Kind: ErrUnknownField, Span: c.FieldSpan, Field: c.Field}
	}
	field := schema.Get(id)

	cc := cond{negated: c.Negated, field: id}

	if c.Op == "" {
		if !field.Kind.BareTestable() {
			return cond{}, &CompileError{Kind: ErrOperatorRequired, Span: c.FieldSpan, Field: c.Field}
		}
		return cc, nil
	}

	op, known := schema.ParseOperator(c.Op)
	if !known || !schema.Allows(id, op) {
		return cond{}, &CompileError{Kind: ErrOperatorNotSupported, Span: c.OpSpan, Field: c.Field, Op: c.Op}
	}
	cc.op = op

	if cerr := cc.setValue(op, field.Kind, c.Value, c.Field, c.Op); cerr != nil {
		return cond{}, cerr
	}
	return cc, nil
}

// setValue checks the value against the operator's contract and stores
// the normalized payload.
func (cc *cond) setValue(op schema.Operator, fk schema.Kind, v *ast.Value, field, opWord string) *CompileError {
	mismatch := func(sp ast.Span, expected, found string) *CompileError {
		return &CompileError{
			Kind: ErrValueTypeMismatch, Span: sp,
			Field: field, Op: opWord, Expected: expected, Found: found,
		}
	}

	switch op {
	case schema.OpEq:
		if v.List {
			return mismatch(v.Span, "a single value", "a list")
		}
		a := v.Items[0]
		if fk == schema.KindString {
			if a.Kind != ast.AtomStr {
				return mismatch(a.Span, "a string", a.Kind.String())
			}
			cc.str = a.Str
			return nil
		}
		if a.Kind == ast.AtomStr {
			return mismatch(a.Span, "a number", a.Kind.String())
		}
		cc.setScalar(a)
		return nil

	case schema.OpGt, schema.OpGe, schema.OpLe:
		if v.List {
			return mismatch(v.Span, "a single number", "a list")
		}
		a := v.Items[0]
		if a.Kind == ast.AtomStr {
			return mismatch(a.Span, "a number", a.Kind.String())
		}
		cc.setScalar(a)
		return nil

	case schema.OpIn:
		if !v.List {
			return mismatch(v.Span, "a list", "a single value")
		}
		if fk == schema.KindString {
			for _, a := range v.Items {
				if a.Kind != ast.AtomStr {
					return mismatch(a.Span, "a string list", "a "+a.Kind.String()+" element")
				}
				cc.strs = append(cc.strs, a.Str)
			}
			sort.Strings(cc.strs)
			return nil
		}
		for _, a := range v.Items {
			switch a.Kind {
			case ast.AtomInt:
				cc.ints = append(cc.ints, a.Int)
				cc.nums = append(cc.nums, float64(a.Int))
			case ast.AtomFloat:
				cc.nums = append(cc.nums, a.Float)
			default:
				return mismatch(a.Span, "a number list", "a string element")
			}
		}
		sort.Slice(cc.ints, func(i, j int) bool { return cc.ints[i] < cc.ints[j] })
		sort.Float64s(cc.nums)
		return nil

	case schema.OpAny, schema.OpAll:
		if !v.List {
			return mismatch(v.Span, "a string list", "a single value")
		}
		for _, a := range v.Items {
			if a.Kind != ast.AtomStr {
				return mismatch(a.Span, "a string list", "a "+a.Kind.String()+" element")
			}
			cc.strs = append(cc.strs, a.Str)
		}
		if op == schema.OpAny {
			cc.ac = buildAutomaton(cc.strs)
		}
		return nil

	case schema.OpHd:
		for _, a := range v.Items {
			if a.Kind != ast.AtomStr {
				if v.List {
					return mismatch(a.Span, "a string list", "a "+a.Kind.String()+" element")
				}
				return mismatch(a.Span, "a string", a.Kind.String())
			}
			cc.strs = append(cc.strs, a.Str)
		}
		return nil

	default:
		return mismatch(v.Span, "a value", "nothing")
	}
}

func (cc *cond) setScalar(a ast.Atom) {
	if a.Kind == ast.AtomInt {
		cc.numIsInt = true
		cc.numI = a.Int
		cc.num = float64(a.Int)
		return
	}
	cc.num = a.Float
}

// buildAutomaton returns a multi-pattern automaton for any-match
// presence tests, or nil when a plain contains loop is the better (or
// only correct) choice: fewer than two patterns, or an empty pattern,
// which the automaton would never report.
func buildAutomaton(patterns []string) *ahocorasick.AhoCorasick {
	if len(patterns) < 2 {
		return nil
	}
	for _, p := range patterns {
		if p == "" {
			return nil
		}
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		MatchKind: ahocorasick.StandardMatch,
	})
	a := builder.Build(patterns)
	return &a
}
