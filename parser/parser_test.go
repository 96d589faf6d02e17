package parser

import (
	"strings"
	"testing"

	"github.com/matchingram/matchingram/ast"
)

func mustParse(t *testing.T, input string) *ast.Rule {
	t.Helper()
	rule, err := Parse(input)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return rule
}

func parseErr(t *testing.T, input string) *Error {
	t.Helper()
	_, err := Parse(input)
	if err == nil {
		t.Fatalf("expected error for %q", input)
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	return perr
}

func TestParseBareCondition(t *testing.T) {
	rule := mustParse(t, `(message.new_chat_members)`)

	if len(rule.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(rule.Groups))
	}
	conds := rule.Groups[0].Conds
	if len(conds) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(conds))
	}
	c := conds[0]
	if c.Negated {
		t.Error("expected non-negated condition")
	}
	if c.Field != "message.new_chat_members" {
		t.Errorf("field = %q", c.Field)
	}
	if c.Op != "" || c.Value != nil {
		t.Errorf("expected bare condition, got op=%q value=%v", c.Op, c.Value)
	}
}

func TestParseNegation(t *testing.T) {
	rule := mustParse(t, `(not message.from.is_bot)`)
	if !rule.Groups[0].Conds[0].Negated {
		t.Error("expected negated condition")
	}
}

func TestParseOperatedCondition(t *testing.T) {
	rule := mustParse(t, `(message.text.size gt 120)`)
	c := rule.Groups[0].Conds[0]
	if c.Op != "gt" {
		t.Errorf("op = %q, want gt", c.Op)
	}
	if c.Value == nil || c.Value.List || len(c.Value.Items) != 1 {
		t.Fatalf("value = %+v, want single atom", c.Value)
	}
	a := c.Value.Items[0]
	if a.Kind != ast.AtomInt || a.Int != 120 {
		t.Errorf("atom = %+v, want Int 120", a)
	}
}

func TestParseStringValue(t *testing.T) {
	rule := mustParse(t, `(message.text eq "hi there")`)
	a := rule.Groups[0].Conds[0].Value.Items[0]
	if a.Kind != ast.AtomStr || a.Str != "hi there" {
		t.Errorf("atom = %+v, want Str %q", a, "hi there")
	}
}

func TestParseStringEscapes(t *testing.T) {
	rule := mustParse(t, `(message.text eq "say \"hi\" \\ ok")`)
	a := rule.Groups[0].Conds[0].Value.Items[0]
	if a.Str != `say "hi" \ ok` {
		t.Errorf("unescaped = %q", a.Str)
	}
}

func TestParseList(t *testing.T) {
	rule := mustParse(t, `(message.text any {"关键字1" "关键字2"})`)
	v := rule.Groups[0].Conds[0].Value
	if !v.List || len(v.Items) != 2 {
		t.Fatalf("value = %+v, want 2-item list", v)
	}
	if v.Items[0].Str != "关键字1" || v.Items[1].Str != "关键字2" {
		t.Errorf("items = %v %v", v.Items[0].Str, v.Items[1].Str)
	}
}

func TestParseEmptyList(t *testing.T) {
	rule := mustParse(t, `(message.from.id in {})`)
	v := rule.Groups[0].Conds[0].Value
	if !v.List || len(v.Items) != 0 {
		t.Fatalf("value = %+v, want empty list", v)
	}
}

func TestParseNumericKinds(t *testing.T) {
	rule := mustParse(t, `(message.from.id in {-5 10086 3.25})`)
	items := rule.Groups[0].Conds[0].Value.Items
	if items[0].Kind != ast.AtomInt || items[0].Int != -5 {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].Kind != ast.AtomInt || items[1].Int != 10086 {
		t.Errorf("items[1] = %+v", items[1])
	}
	if items[2].Kind != ast.AtomFloat || items[2].Float != 3.25 {
		t.Errorf("items[2] = %+v", items[2])
	}
}

func TestParseGroupsAndConds(t *testing.T) {
	rule := mustParse(t, `(message.text.size gt 120 and message.from.is_bot) or (not message.from.id in {10086 10010} and message.text any {"移动" "联通"})`)

	if len(rule.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(rule.Groups))
	}
	if len(rule.Groups[0].Conds) != 2 || len(rule.Groups[1].Conds) != 2 {
		t.Fatalf("conds per group = %d, %d", len(rule.Groups[0].Conds), len(rule.Groups[1].Conds))
	}
	if !rule.Groups[1].Conds[0].Negated {
		t.Error("expected first condition of second group negated")
	}
}

func TestParseEmptyGroupAllowed(t *testing.T) {
	// "()" parses; the compiler rejects it with a span.
	rule := mustParse(t, `()`)
	if len(rule.Groups) != 1 || len(rule.Groups[0].Conds) != 0 {
		t.Fatalf("groups = %+v", rule.Groups)
	}
}

func TestParseOperatorWordAsIdent(t *testing.T) {
	// Operator words are not reserved; they are resolved semantically.
	rule := mustParse(t, `(message.text contains_all {"a"})`)
	if rule.Groups[0].Conds[0].Op != "contains_all" {
		t.Errorf("op = %q", rule.Groups[0].Conds[0].Op)
	}
}

func TestFieldSpan(t *testing.T) {
	input := `(message.text eq "hi")`
	rule := mustParse(t, input)
	sp := rule.Groups[0].Conds[0].FieldSpan
	if got := input[sp.Start:sp.End]; got != "message.text" {
		t.Errorf("field span covers %q", got)
	}
}

func TestParseWhitespaceForms(t *testing.T) {
	forms := []string{
		`(message.text any {"a" "b"})`,
		"(message.text any {\"a\"\t\"b\"})",
		"(\n  message.text\n  any\n  {\"a\" \"b\"}\n)",
		"  \r\n( message.text any { \"a\" \"b\" } )  ",
	}
	for _, f := range forms {
		mustParse(t, f)
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"unknown character", `(message.text eq "a" @)`, "unknown character"},
		{"unterminated string", `(message.text eq "abc`, "unterminated string"},
		{"int out of range", `(message.from.id eq 99999999999999999999)`, "out of 64-bit range"},
		{"bad escape", `(message.text eq "a\n")`, "unsupported escape"},
		{"comma separator", `(message.text any {"a", "b"})`, "unknown character"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseErr(t, tt.input)
			if perr.Kind != KindLex {
				t.Fatalf("kind = %v, want lex: %v", perr.Kind, perr)
			}
			if !strings.Contains(perr.Reason, tt.reason) {
				t.Errorf("reason = %q, want substring %q", perr.Reason, tt.reason)
			}
		})
	}
}

func TestNonUTF8IsLexError(t *testing.T) {
	perr := parseErr(t, "(message.text eq \"\xff\")")
	if perr.Kind != KindLex {
		t.Fatalf("kind = %v, want lex", perr.Kind)
	}
	if perr.Span.Start != 18 {
		t.Errorf("span start = %d, want 18", perr.Span.Start)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing open paren", `message.text eq "hi"`},
		{"missing close paren", `(message.text eq "hi"`},
		{"operator without value", `(message.text eq)`},
		{"nested group", `((message.text eq "hi"))`},
		{"trailing garbage", `(message.photo) (message.video)`},
		{"dangling or", `(message.photo) or`},
		{"value without operator", `(message.text "hi")`},
		{"unterminated list", `(message.text any {"a" "b")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseErr(t, tt.input)
			if perr.Kind != KindParse {
				t.Fatalf("kind = %v, want parse: %v", perr.Kind, perr)
			}
			if perr.Expected == "" {
				t.Error("expected token set is empty")
			}
		})
	}
}

func TestParseErrorSpan(t *testing.T) {
	input := `(message.photo) (message.video)`
	perr := parseErr(t, input)
	if got := input[perr.Span.Start:perr.Span.End]; got != "(" {
		t.Errorf("error span covers %q, want the stray paren", got)
	}
}
