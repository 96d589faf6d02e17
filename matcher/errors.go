package matcher

import (
	"fmt"

	"github.com/matchingram/matchingram/ast"
)

// ErrorKind discriminates the compile-time error taxonomy. Evaluation
// never fails, so these are the only errors the engine produces.
type ErrorKind uint8

const (
	ErrLex ErrorKind = iota
	ErrParse
	ErrUnknownField
	ErrOperatorRequired
	ErrOperatorNotSupported
	ErrValueTypeMismatch
	ErrEmptyGroup
	ErrEmptyRule
)

// CompileError is the single error type returned by Compile and
// Validate. Kind selects which of the context fields are meaningful;
// Span always points into the rule text.
type CompileError struct {
	Kind ErrorKind
	Span ast.Span

	Reason   string // ErrLex: what the lexer choked on
	Expected string // ErrParse: expected token set; ErrValueTypeMismatch: expected value shape
	Found    string // ErrParse: offending token; ErrValueTypeMismatch: value shape seen
	Field    string // the field path involved, when one is
	Op       string // the operator word involved, when one is
}

func (e *CompileError) Error() string {
	switch e.Kind {
	case ErrLex:
		return fmt.Sprintf("offset %d: %s", e.Span.Start, e.Reason)
	case ErrParse:
		if e.Found == "" {
			return fmt.Sprintf("offset %d: unexpected end of rule, expected %s", e.Span.Start, e.Expected)
		}
		return fmt.Sprintf("offset %d: unexpected %q, expected %s", e.Span.Start, e.Found, e.Expected)
	case ErrUnknownField:
		return fmt.Sprintf("offset %d: unknown field `%s`", e.Span.Start, e.Field)
	case ErrOperatorRequired:
		return fmt.Sprintf("offset %d: field `%s` requires an operator", e.Span.Start, e.Field)
	case ErrOperatorNotSupported:
		return fmt.Sprintf("offset %d: field `%s` does not support the `%s` operator", e.Span.Start, e.Field, e.Op)
	case ErrValueTypeMismatch:
		return fmt.Sprintf("offset %d: `%s %s` expects %s, got %s", e.Span.Start, e.Field, e.Op, e.Expected, e.Found)
	case ErrEmptyGroup:
		return fmt.Sprintf("offset %d: empty condition group", e.Span.Start)
	case ErrEmptyRule:
		return "empty rule"
	default:
		return "invalid compile error"
	}
}
