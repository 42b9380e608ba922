package hdl

import (
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// HDLLexer defines the lexical structure of the netlist language.
// Punctuation is always split from words, so "a,b)" lexes as a , b ).
var HDLLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Include file names, single line only
	{Name: "String", Pattern: `"[^"\n]*"`},
	// An unterminated quote is passed through and rejected by the parser
	{Name: "Quote", Pattern: `"`},

	{Name: "Punct", Pattern: `[,();]`},
	{Name: "Whitespace", Pattern: `[ \t\n\r\v\f]+`},

	// Keywords, identifiers, comment markers and anything else up to a separator
	{Name: "Word", Pattern: `[^ \t\n\r\v\f,();"]+`},
})

var (
	stringType     = HDLLexer.Symbols()["String"]
	whitespaceType = HDLLexer.Symbols()["Whitespace"]
	wordType       = HDLLexer.Symbols()["Word"]
)

// Tokenizer turns source text into classified tokens. It supports pushing a
// single token back with Unread.
type Tokenizer struct {
	lex     lexer.Lexer
	file    string
	pending *Token
	line    int
	done    bool
}

// NewTokenizer creates a tokenizer over r. The file name is only used in
// diagnostics.
func NewTokenizer(filename string, r io.Reader) (*Tokenizer, error) {
	lex, err := HDLLexer.Lex(filename, r)
	if err != nil {
		return nil, ioError(filename, err, "reading source")
	}
	return &Tokenizer{lex: lex, file: filename, line: 1}, nil
}

// Next returns the next token. Once the input is exhausted it keeps
// returning an End token.
func (t *Tokenizer) Next() (Token, error) {
	if t.pending != nil {
		tok := *t.pending
		t.pending = nil
		t.line = tok.Line
		return tok, nil
	}
	if t.done {
		return Token{Class: End, Line: t.line}, nil
	}

	for {
		raw, err := t.lex.Next()
		if err != nil {
			return Token{}, syntaxError(t.file, t.line, "%v", err)
		}
		if raw.EOF() {
			t.done = true
			if raw.Pos.Line > 0 {
				t.line = raw.Pos.Line
			}
			return Token{Class: End, Line: t.line}, nil
		}

		t.line = raw.Pos.Line
		switch raw.Type {
		case whitespaceType:
			continue
		case stringType:
			return Token{Text: raw.Value[1 : len(raw.Value)-1], Class: String, Line: t.line}, nil
		case wordType:
			return Token{Text: raw.Value, Class: classify(raw.Value), Line: t.line}, nil
		default:
			return Token{Text: raw.Value, Class: Symbol, Line: t.line}, nil
		}
	}
}

// Unread pushes tok back so the next call to Next returns it. Only one token
// can be pending at a time.
func (t *Tokenizer) Unread(tok Token) {
	t.pending = &tok
}

// Line returns the 1-based source line of the last token returned.
func (t *Tokenizer) Line() int {
	return t.line
}

// File returns the file name given to NewTokenizer.
func (t *Tokenizer) File() string {
	return t.file
}
