package parser

// Grammar structs for the participle parser. These mirror the surface
// grammar:
//
//	rule    := group ( "or" group )*
//	group   := "(" cond ( "and" cond )* ")"
//	cond    := "not"? field ( op value )?
//	value   := atom | "{" atom* "}"
//	atom    := STRING | NUMBER
//
// The group body is optional at this level so that "()" parses and the
// compiler can reject it with a span instead of a bare syntax error.
// Operator position accepts any identifier; resolution against the
// closed operator set happens in the compiler, which is what turns a
// retired alias into an unsupported-operator diagnostic.

import "github.com/alecthomas/participle/v2/lexer"

type ruleExpr struct {
	Groups []*groupExpr `parser:"@@ ( 'or' @@ )*"`
}

type groupExpr struct {
	Pos    lexer.Position
	Conds  []*condExpr `parser:"'(' ( @@ ( 'and' @@ )* )? ')'"`
	EndPos lexer.Position
}

type condExpr struct {
	Not   bool       `parser:"@'not'?"`
	Field fieldRef   `parser:"@@"`
	Op    *opRef     `parser:"( @@"`
	Value *valueExpr `parser:"  @@ )?"`
}

type fieldRef struct {
	Pos    lexer.Position
	Name   string `parser:"@(FieldPath | Ident)"`
	EndPos lexer.Position
}

type opRef struct {
	Pos    lexer.Position
	Word   string `parser:"@Ident"`
	EndPos lexer.Position
}

type valueExpr struct {
	Pos    lexer.Position
	Single *atomExpr   `parser:"( @@"`
	Open   bool        `parser:"| @'{'"`
	List   []*atomExpr `parser:"  @@* '}' )"`
	EndPos lexer.Position
}

type atomExpr struct {
	Pos    lexer.Position
	Str    *string `parser:"( @String"`
	Float  *string `parser:"| @Float"`
	Int    *string `parser:"| @Int )"`
	EndPos lexer.Position
}
