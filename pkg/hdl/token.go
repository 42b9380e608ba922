package hdl

import (
	"fmt"
	"regexp"
	"strings"
)

// TokenClass is the lexical class of a token.
type TokenClass int

const (
	Keyword TokenClass = iota
	Identifier
	Symbol
	String
	End
)

func (c TokenClass) String() string {
	switch c {
	case Keyword:
		return "keyword"
	case Identifier:
		return "identifier"
	case Symbol:
		return "symbol"
	case String:
		return "string"
	default:
		return "end of input"
	}
}

// Token is a classified lexeme. For String tokens Text excludes the quotes.
type Token struct {
	Text  string
	Class TokenClass
	Line  int
}

func (t Token) String() string {
	if t.Class == End {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Text)
}

// Is reports whether the token has the given lexeme and is not a string literal.
func (t Token) Is(text string) bool {
	return t.Class != String && t.Class != End && t.Text == text
}

// Keywords of the language.
const (
	KwModule    = "module"
	KwInput     = "input"
	KwOutput    = "output"
	KwWire      = "wire"
	KwPmos      = "pmos"
	KwNmos      = "nmos"
	KwEndmodule = "endmodule"
	KwInclude   = "include"
)

var keywords = map[string]bool{
	KwModule:    true,
	KwInput:     true,
	KwOutput:    true,
	KwWire:      true,
	KwPmos:      true,
	KwNmos:      true,
	KwEndmodule: true,
	KwInclude:   true,
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsKeyword reports whether s is a reserved word.
func IsKeyword(s string) bool {
	return keywords[s]
}

// IsIdentifier reports whether s is a valid identifier. Keywords also match.
func IsIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}

// commentMarker starts a comment that runs to the next terminator.
const commentMarker = "//"

func isComment(t Token) bool {
	return t.Class == Symbol && strings.HasPrefix(t.Text, commentMarker)
}

// classify assigns the class of a bare word.
func classify(word string) TokenClass {
	switch {
	case IsKeyword(word):
		return Keyword
	case IsIdentifier(word):
		return Identifier
	default:
		return Symbol
	}
}
