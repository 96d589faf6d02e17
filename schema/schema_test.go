package schema

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	id, ok := Lookup("message.text")
	if !ok || id != Text {
		t.Fatalf("Lookup(message.text) = %v, %v", id, ok)
	}
	if _, ok := Lookup("message.no_such_field"); ok {
		t.Error("unknown path resolved")
	}
	if _, ok := Lookup("message"); ok {
		t.Error("bare root path resolved")
	}
}

func TestTableClosure(t *testing.T) {
	seen := make(map[string]bool, Count())
	for id := FieldID(0); id < FieldID(Count()); id++ {
		f := Get(id)
		if f.Path == "" {
			t.Fatalf("field %d has no path", id)
		}
		if seen[f.Path] {
			t.Fatalf("duplicate path %q", f.Path)
		}
		seen[f.Path] = true

		back, ok := Lookup(f.Path)
		if !ok || back != id {
			t.Errorf("Lookup(%q) = %v, %v, want %v", f.Path, back, ok, id)
		}

		for _, seg := range strings.Split(f.Path, ".") {
			if seg == "" || strings.ToLower(seg) != seg {
				t.Errorf("path %q has a malformed segment %q", f.Path, seg)
			}
		}
	}
}

func TestOperatorKindsAgree(t *testing.T) {
	for id := FieldID(0); id < FieldID(Count()); id++ {
		f := Get(id)
		ops := Operators(id)

		if f.Kind.BareTestable() && len(ops) > 0 {
			t.Errorf("%s: bare-testable kind %v with operators %v", f.Path, f.Kind, ops)
		}
		if !f.Kind.BareTestable() && len(ops) == 0 {
			t.Errorf("%s: kind %v with no operators is unusable", f.Path, f.Kind)
		}

		for _, op := range ops {
			switch op {
			case OpGt, OpGe, OpLe:
				if !f.Kind.Numeric() {
					t.Errorf("%s: %v on non-numeric kind %v", f.Path, op, f.Kind)
				}
			case OpAny, OpAll, OpHd:
				if f.Kind != KindString {
					t.Errorf("%s: %v on non-string kind %v", f.Path, op, f.Kind)
				}
			}
		}
	}
}

func TestSupportMatrixSpotChecks(t *testing.T) {
	tests := []struct {
		path  string
		op    Operator
		allow bool
	}{
		{"message.text", OpAny, true},
		{"message.text", OpHd, false},
		{"message.caption", OpHd, true},
		{"message.caption", OpIn, false},
		{"message.from.id", OpGt, true},
		{"message.from.id", OpAny, false},
		{"message.from.is_bot", OpEq, false},
		{"message.from.first_name", OpHd, true},
		{"message.forward_from_chat.type", OpIn, true},
		{"message.forward_from_chat.type", OpAny, false},
		{"message.location.latitude", OpGt, true},
		{"message.new_chat_title", OpEq, false},
	}
	for _, tt := range tests {
		id, ok := Lookup(tt.path)
		if !ok {
			if tt.allow {
				t.Errorf("Lookup(%q) failed", tt.path)
			}
			continue
		}
		if got := Allows(id, tt.op); got != tt.allow {
			t.Errorf("Allows(%s, %v) = %v, want %v", tt.path, tt.op, got, tt.allow)
		}
	}
}

func TestParseOperator(t *testing.T) {
	for _, word := range []string{"eq", "gt", "ge", "le", "in", "any", "all", "hd"} {
		op, ok := ParseOperator(word)
		if !ok {
			t.Errorf("ParseOperator(%q) failed", word)
		}
		if op.String() != word {
			t.Errorf("%q round-trips to %q", word, op.String())
		}
	}
	for _, retired := range []string{"contains_one", "contains_all", "starts_with", "lt", "td", "ne"} {
		if _, ok := ParseOperator(retired); ok {
			t.Errorf("retired or unknown word %q accepted", retired)
		}
	}
}
