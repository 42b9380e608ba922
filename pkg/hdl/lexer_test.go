package hdl

import (
	"strings"
	"testing"
)

func lexAll(t *testing.T, input string) []Token {
	t.Helper()
	tz, err := NewTokenizer("test.v", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create tokenizer: %v", err)
	}
	var toks []Token
	for {
		tok, err := tz.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		toks = append(toks, tok)
		if tok.Class == End {
			return toks
		}
	}
}

func TestTokenizerClasses(t *testing.T) {
	toks := lexAll(t, "module m(a,b); input a;")

	want := []struct {
		text  string
		class TokenClass
	}{
		{"module", Keyword},
		{"m", Identifier},
		{"(", Symbol},
		{"a", Identifier},
		{",", Symbol},
		{"b", Identifier},
		{")", Symbol},
		{";", Symbol},
		{"input", Keyword},
		{"a", Identifier},
		{";", Symbol},
		{"", End},
	}

	if len(toks) != len(want) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(want), len(toks), toks)
	}
	for i, w := range want {
		if toks[i].Text != w.text || toks[i].Class != w.class {
			t.Errorf("Token %d: expected %q (%s), got %q (%s)", i, w.text, w.class, toks[i].Text, toks[i].Class)
		}
	}
}

func TestTokenizerSplitsSymbolsFromWords(t *testing.T) {
	toks := lexAll(t, "inv u1(x,y);")
	var texts []string
	for _, tok := range toks[:len(toks)-1] {
		texts = append(texts, tok.Text)
	}
	got := strings.Join(texts, " ")
	if got != "inv u1 ( x , y ) ;" {
		t.Errorf("Unexpected token stream: %s", got)
	}
}

func TestTokenizerLines(t *testing.T) {
	toks := lexAll(t, "module\n  m\n\n(a)\n")

	lines := map[string]int{"module": 1, "m": 2, "(": 4, "a": 4}
	for _, tok := range toks {
		if want, ok := lines[tok.Text]; ok && tok.Line != want {
			t.Errorf("Token %q: expected line %d, got %d", tok.Text, want, tok.Line)
		}
	}
}

func TestTokenizerStringsAndOddWords(t *testing.T) {
	toks := lexAll(t, `include "cells/lib.v"; // note 3state`)

	if toks[1].Class != String || toks[1].Text != "cells/lib.v" {
		t.Errorf("Expected string cells/lib.v, got %q (%s)", toks[1].Text, toks[1].Class)
	}
	if !isComment(toks[3]) {
		t.Errorf("Expected comment marker, got %q (%s)", toks[3].Text, toks[3].Class)
	}
	if toks[5].Text != "3state" || toks[5].Class != Symbol {
		t.Errorf("Expected 3state as symbol, got %q (%s)", toks[5].Text, toks[5].Class)
	}
}

func TestTokenizerUnreadAndEnd(t *testing.T) {
	tz, err := NewTokenizer("test.v", strings.NewReader("endmodule"))
	if err != nil {
		t.Fatalf("Failed to create tokenizer: %v", err)
	}

	tok, _ := tz.Next()
	if !tok.Is(KwEndmodule) {
		t.Fatalf("Expected endmodule, got %v", tok)
	}
	tz.Unread(tok)
	again, _ := tz.Next()
	if again != tok {
		t.Errorf("Unread token not returned: %v", again)
	}

	for i := 0; i < 2; i++ {
		end, err := tz.Next()
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if end.Class != End {
			t.Errorf("Expected End token, got %v", end)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a", true},
		{"_tmp1", true},
		{"Net_42", true},
		{"1net", false},
		{"a.b", false},
		{"//", false},
	}
	for _, tt := range tests {
		if got := IsIdentifier(tt.in); got != tt.want {
			t.Errorf("IsIdentifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
