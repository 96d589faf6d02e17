// Package parser turns rule text into its AST using participle.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matchingram/matchingram/ast"
)

// The lexer is context-free: operator words come out as plain Ident
// tokens and only "and", "or" and "not" are reserved. A dotted run of
// identifiers with no interior whitespace is a single FieldPath token.
var ruleLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:[^"\\\n]|\\.)*"`},
	{Name: "Float", Pattern: `-?[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "FieldPath", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)+`},
	{Name: "Keyword", Pattern: `(?:and|or|not)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

var ruleParser = participle.MustBuild[ruleExpr](
	participle.Lexer(ruleLexer),
	participle.Elide("Whitespace"),
)

// Parse parses rule text into its AST. All failures are *Error values
// carrying the byte span of the offending input.
func Parse(text string) (*ast.Rule, error) {
	if idx := invalidUTF8At(text); idx >= 0 {
		return nil, &Error{
			Kind:   KindLex,
			Span:   ast.Span{Start: idx, End: idx + 1},
			Reason: "input is not valid UTF-8",
		}
	}

	pr, err := ruleParser.ParseString("", text)
	if err != nil {
		return nil, classify(err, text)
	}
	return convert(pr)
}

func invalidUTF8At(text string) int {
	if utf8.ValidString(text) {
		return -1
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}

// classify maps a participle failure onto the Error taxonomy: token
// mismatches are parse errors, everything the lexer could not tokenize
// is a lex error.
func classify(err error, text string) *Error {
	var ute *participle.UnexpectedTokenError
	if errors.As(err, &ute) {
		tok := ute.Unexpected
		found := tok.Value
		if tok.EOF() {
			found = ""
		}
		expected := ute.Expect
		if expected == "" {
			expected = "end of rule"
		}
		return &Error{
			Kind:     KindParse,
			Span:     ast.Span{Start: tok.Pos.Offset, End: tok.Pos.Offset + len(tok.Value)},
			Expected: expected,
			Found:    found,
		}
	}

	var perr participle.Error
	if errors.As(err, &perr) {
		off := perr.Position().Offset
		return &Error{
			Kind:   KindLex,
			Span:   ast.Span{Start: off, End: off + 1},
			Reason: lexReason(text, off),
		}
	}

	return &Error{Kind: KindParse, Expected: "valid rule", Found: err.Error()}
}

func lexReason(text string, off int) string {
	if off >= len(text) {
		return "unexpected end of input"
	}
	switch c := text[off]; {
	case c == '"':
		return "unterminated string literal"
	case c == '-' || (c >= '0' && c <= '9'):
		return "malformed number"
	default:
		r, _ := utf8.DecodeRuneInString(text[off:])
		return fmt.Sprintf("unknown character %q", r)
	}
}

func convert(pr *ruleExpr) (*ast.Rule, error) {
	rule := &ast.Rule{Groups: make([]*ast.Group, 0, len(pr.Groups))}
	for _, g := range pr.Groups {
		group := &ast.Group{Span: spanOf(g.Pos, g.EndPos)}
		for _, c := range g.Conds {
			cond, err := convertCond(c)
			if err != nil {
				return nil, err
			}
			group.Conds = append(group.Conds, cond)
		}
		rule.Groups = append(rule.Groups, group)
	}
	return rule, nil
}

func convertCond(c *condExpr) (*ast.Cond, error) {
	cond := &ast.Cond{
		Negated:   c.Not,
		Field:     c.Field.Name,
		FieldSpan: spanOf(c.Field.Pos, c.Field.EndPos),
	}
	if c.Op == nil {
		return cond, nil
	}
	cond.Op = c.Op.Word
	cond.OpSpan = spanOf(c.Op.Pos, c.Op.EndPos)

	value, err := convertValue(c.Value)
	if err != nil {
		return nil, err
	}
	cond.Value = value
	return cond, nil
}

func convertValue(v *valueExpr) (*ast.Value, error) {
	out := &ast.Value{List: v.Open, Span: spanOf(v.Pos, v.EndPos)}
	if v.Single != nil {
		atom, err := convertAtom(v.Single)
		if err != nil {
			return nil, err
		}
		out.Items = []ast.Atom{atom}
		return out, nil
	}
	out.Items = make([]ast.Atom, 0, len(v.List))
	for _, ae := range v.List {
		atom, err := convertAtom(ae)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, atom)
	}
	return out, nil
}

func convertAtom(a *atomExpr) (ast.Atom, error) {
	sp := spanOf(a.Pos, a.EndPos)
	switch {
	case a.Str != nil:
		s, err := unquote(*a.Str, sp)
		if err != nil {
			return ast.Atom{}, err
		}
		return ast.Atom{Kind: ast.AtomStr, Str: s, Span: sp}, nil

	case a.Float != nil:
		f, err := strconv.ParseFloat(*a.Float, 64)
		if err != nil {
			return ast.Atom{}, &Error{Kind: KindLex, Span: sp, Reason: "malformed number"}
		}
		return ast.Atom{Kind: ast.AtomFloat, Float: f, Span: sp}, nil

	default:
		i, err := strconv.ParseInt(*a.Int, 10, 64)
		if err != nil {
			return ast.Atom{}, &Error{Kind: KindLex, Span: sp, Reason: "integer out of 64-bit range"}
		}
		return ast.Atom{Kind: ast.AtomInt, Int: i, Span: sp}, nil
	}
}

// unquote strips the surrounding quotes and resolves the two escapes
// the surface syntax permits, \" and \\.
func unquote(raw string, sp ast.Span) (string, error) {
	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, `\`) {
		return body, nil
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++ // the lexer guarantees a byte follows every backslash
		switch body[i] {
		case '"', '\\':
			b.WriteByte(body[i])
		default:
			return "", &Error{
				Kind:   KindLex,
				Span:   sp,
				Reason: fmt.Sprintf(`unsupported escape \%c in string`, body[i]),
			}
		}
	}
	return b.String(), nil
}

func spanOf(pos, end lexer.Position) ast.Span {
	return ast.Span{Start: pos.Offset, End: end.Offset}
}
