package parser

import (
	"fmt"

	"github.com/matchingram/matchingram/ast"
)

// ErrorKind separates lexical failures from structural ones.
type ErrorKind uint8

const (
	KindLex ErrorKind = iota
	KindParse
)

// Error is a lexical or grammar failure, carrying the byte span of the
// offending input.
type Error struct {
	Kind     ErrorKind
	Span     ast.Span
	Reason   string // lex errors
	Expected string // parse errors: the expected token set
	Found    string // parse errors: the token actually seen
}

func (e *Error) Error() string {
	if e.Kind == KindLex {
		return fmt.Sprintf("offset %d: %s", e.Span.Start, e.Reason)
	}
	if e.Found == "" {
		return fmt.Sprintf("offset %d: unexpected end of rule, expected %s", e.Span.Start, e.Expected)
	}
	return fmt.Sprintf("offset %d: unexpected %q, expected %s", e.Span.Start, e.Found, e.Expected)
}
