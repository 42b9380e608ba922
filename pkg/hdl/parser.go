package hdl

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/OpenTraceLab/v2j/pkg/circuit"
)

// parser is a single-pass recursive-descent parser. Declarations are
// validated and the connectivity graph is built while tokens are consumed.
type parser struct {
	c   *Compiler
	tok *Tokenizer
	dir string
	reg *circuit.Registry
	mod *circuit.Module
	log *slog.Logger
}

func (p *parser) next() (Token, error) {
	return p.tok.Next()
}

func (p *parser) file() string {
	return p.tok.File()
}

func (p *parser) syntax(line int, format string, args ...interface{}) error {
	return syntaxError(p.file(), line, format, args...)
}

func (p *parser) semantic(line int, format string, args ...interface{}) error {
	return semanticError(p.file(), line, format, args...)
}

// expect consumes one token and requires it to be text.
func (p *parser) expect(text string) (Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if !tok.Is(text) {
		return tok, p.syntax(tok.Line, "expected %q, got %s", text, tok)
	}
	return tok, nil
}

// expectName consumes one token and requires it to be an identifier.
func (p *parser) expectName(what string) (Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Class != Identifier {
		return tok, p.syntax(tok.Line, "expected %s, got %s", what, tok)
	}
	return tok, nil
}

// parse is the top-level loop: includes and module definitions until the
// token stream is exhausted.
func (p *parser) parse() error {
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch {
		case tok.Class == End:
			return nil
		case tok.Is(KwInclude):
			err = p.parseInclude(tok)
		case tok.Is(KwModule):
			err = p.parseModule(tok)
		case tok.Is(KwEndmodule):
			p.log.Warn("endmodule without an open module, ignored", "line", tok.Line)
		case tok.Is(";"):
			// empty statement
		case isComment(tok):
			err = p.skipComment(tok)
		default:
			err = p.syntax(tok.Line, "unexpected %s at top level", tok)
		}
		if err != nil {
			return err
		}
	}
}

// parseInclude handles: include "file" ;
func (p *parser) parseInclude(kw Token) error {
	name, err := p.next()
	if err != nil {
		return err
	}
	if name.Class != String {
		return p.syntax(name.Line, "expected quoted file name after include, got %s", name)
	}
	if _, err := p.expect(";"); err != nil {
		return err
	}

	sub, err := p.c.include(p.file(), kw.Line, p.dir, name.Text)
	if err != nil {
		return err
	}
	if err := p.reg.Merge(sub); err != nil {
		return p.semantic(kw.Line, "include %q: %v", name.Text, err)
	}
	return nil
}

// parseModule handles a module definition up to and including endmodule.
func (p *parser) parseModule(kw Token) error {
	name, err := p.expectName("module name")
	if err != nil {
		return err
	}
	if _, ok := p.reg.Lookup(name.Text); ok {
		return p.semantic(name.Line, "module %s is already defined", name.Text)
	}

	p.mod = circuit.NewModule(name.Text, p.c.IsAtom(name.Text))
	defer func() { p.mod = nil }()

	if err := p.parseParams(); err != nil {
		return err
	}

	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch {
		case tok.Is(KwEndmodule):
			return p.closeModule(tok)
		case tok.Is(KwInput):
			err = p.parsePortDecl(tok, circuit.Input)
		case tok.Is(KwOutput):
			err = p.parsePortDecl(tok, circuit.Output)
		case tok.Is(KwWire):
			err = p.parsePortDecl(tok, circuit.Wire)
		case tok.Is(KwPmos):
			err = p.parseMos(tok, circuit.PMOS)
		case tok.Is(KwNmos):
			err = p.parseMos(tok, circuit.NMOS)
		case isComment(tok):
			err = p.skipComment(tok)
		case tok.Is(";"):
			// empty statement
		case tok.Class == Identifier:
			err = p.parseInstance(tok)
		case tok.Class == End:
			err = p.syntax(tok.Line, "missing endmodule for module %s (opened on line %d)", p.mod.Name, kw.Line)
		default:
			err = p.syntax(tok.Line, "unexpected %s in module %s", tok, p.mod.Name)
		}
		if err != nil {
			return err
		}
	}
}

// parseParams reads the header port list: ( a , b , ... )
func (p *parser) parseParams() error {
	if _, err := p.expect("("); err != nil {
		return err
	}
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch {
		case tok.Is(")"):
			return nil
		case tok.Is(","):
			continue
		case tok.Class == Identifier:
			if _, err := p.mod.AddPort(tok.Text, circuit.Undeclared); err != nil {
				if isPower(tok.Text) {
					return p.semantic(tok.Line, "%s is a reserved power port name", tok.Text)
				}
				return p.semantic(tok.Line, "port %s listed twice in module %s", tok.Text, p.mod.Name)
			}
		case tok.Class == End:
			return p.syntax(tok.Line, "unterminated port list of module %s", p.mod.Name)
		default:
			return p.syntax(tok.Line, "unexpected %s in port list of module %s", tok, p.mod.Name)
		}
	}
}

// closeModule drops unused ports and registers the finished module.
func (p *parser) closeModule(end Token) error {
	for _, name := range p.mod.Close() {
		p.log.Warn("port is never connected, removed",
			"line", end.Line, "module", p.mod.Name, "port", name)
	}
	if err := p.reg.Add(p.mod); err != nil {
		return p.semantic(end.Line, "module %s is already defined", p.mod.Name)
	}
	return nil
}

// parsePortDecl handles input, output and wire statements.
func (p *parser) parsePortDecl(kw Token, kind circuit.PortKind) error {
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch {
		case tok.Is(";"):
			return nil
		case tok.Is(","):
			continue
		case tok.Class == Identifier:
			if kind == circuit.Wire {
				err = p.declareWire(tok)
			} else {
				err = p.declareIO(tok, kind)
			}
			if err != nil {
				return err
			}
		case tok.Class == Keyword:
			return p.semantic(tok.Line, "keyword %s cannot be used as a port name", tok.Text)
		case tok.Class == End:
			return p.syntax(tok.Line, "unterminated %s declaration", kw.Text)
		default:
			return p.syntax(tok.Line, "unexpected %s in %s declaration", tok, kw.Text)
		}
	}
}

func (p *parser) declareWire(tok Token) error {
	port, ok := p.mod.Port(tok.Text)
	if !ok {
		_, err := p.mod.AddPort(tok.Text, circuit.Wire)
		return err
	}

	switch port.Kind {
	case circuit.Wire:
		p.log.Warn("duplicate wire declaration, skipped",
			"line", tok.Line, "module", p.mod.Name, "port", tok.Text)
		return nil
	case circuit.Power:
		return p.semantic(tok.Line, "%s is a reserved power port name", tok.Text)
	case circuit.Input, circuit.Output:
		return p.semantic(tok.Line, "%s port %s cannot be redeclared as wire", port.Kind, tok.Text)
	default:
		// A header port without a direction becomes an internal wire.
		return p.mod.SetKind(tok.Text, circuit.Wire)
	}
}

func (p *parser) declareIO(tok Token, kind circuit.PortKind) error {
	port, ok := p.mod.Port(tok.Text)
	if !ok {
		return p.semantic(tok.Line, "%s port %s is not in the port list of module %s", kind, tok.Text, p.mod.Name)
	}

	switch port.Kind {
	case circuit.Power:
		return p.semantic(tok.Line, "%s is a reserved power port name", tok.Text)
	case circuit.Undeclared:
		return p.mod.SetKind(tok.Text, kind)
	default:
		return p.semantic(tok.Line, "duplicate type declaration for port %s (already %s)", tok.Text, port.Kind)
	}
}

// parseMos handles: pmos|nmos ( drain , source , gate ) ;
func (p *parser) parseMos(kw Token, typ circuit.MosType) error {
	if _, err := p.expect("("); err != nil {
		return err
	}
	var nets [3]string
	for i, role := range []string{"drain", "source", "gate"} {
		if i > 0 {
			if _, err := p.expect(","); err != nil {
				return err
			}
		}
		tok, err := p.expectName(role + " port name")
		if err != nil {
			return err
		}
		nets[i] = tok.Text
	}
	if _, err := p.expect(")"); err != nil {
		return err
	}
	if _, err := p.expect(";"); err != nil {
		return err
	}

	for _, net := range nets {
		if _, ok := p.mod.Port(net); !ok {
			return p.semantic(kw.Line, "%s references undefined port %s", kw.Text, net)
		}
	}
	_, err := p.mod.AddTransistor(typ, nets[0], nets[1], nets[2])
	if errors.Is(err, circuit.ErrDuplicateComponent) {
		return p.semantic(kw.Line, "%s: generated name collides with an instance: %v", kw.Text, err)
	}
	if err != nil {
		return p.semantic(kw.Line, "%s: %v", kw.Text, err)
	}
	return nil
}

// parseInstance handles: module instance ( net , ... ) ;
// The callee must already be in the registry. Nets bind positionally to the
// callee's input and output ports in declaration order.
func (p *parser) parseInstance(typeTok Token) error {
	inst, err := p.next()
	if err != nil {
		return err
	}
	if inst.Class != Identifier {
		return p.syntax(inst.Line, "expected instance name after %s, got %s", typeTok.Text, inst)
	}

	callee, ok := p.reg.Lookup(typeTok.Text)
	if !ok {
		if p.c.IsAtom(typeTok.Text) {
			return p.semantic(typeTok.Line, "atom module %s cannot be instantiated without a definition: black-box atoms are not supported", typeTok.Text)
		}
		return p.semantic(typeTok.Line, "instantiation of undefined module %s", typeTok.Text)
	}

	nets, err := p.parseArgs(typeTok)
	if err != nil {
		return err
	}

	ports := callee.IOPorts()
	if len(nets) != len(ports) {
		return p.semantic(typeTok.Line, "wrong number of connections for %s %s: expected %d, got %d",
			typeTok.Text, inst.Text, len(ports), len(nets))
	}
	for _, net := range nets {
		if _, ok := p.mod.Port(net.Text); !ok {
			return p.semantic(net.Line, "undefined port %s in instance %s", net.Text, inst.Text)
		}
	}

	comp, err := p.mod.AddInstance(inst.Text, callee.Name)
	if err != nil {
		return p.semantic(inst.Line, "instance name %s already used in module %s", inst.Text, p.mod.Name)
	}
	for i, port := range ports {
		if err := p.mod.Bind(comp, port, nets[i].Text); err != nil {
			return p.semantic(nets[i].Line, "%v", err)
		}
	}
	return nil
}

// parseArgs reads ( net , net , ... ) ;
func (p *parser) parseArgs(typeTok Token) ([]Token, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var nets []Token
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.Is(")"):
			if _, err := p.expect(";"); err != nil {
				return nil, err
			}
			return nets, nil
		case tok.Is(","):
			continue
		case tok.Class == Identifier:
			nets = append(nets, tok)
		case tok.Class == End:
			return nil, p.syntax(tok.Line, "unterminated argument list of %s", typeTok.Text)
		default:
			return nil, p.syntax(tok.Line, "unexpected %s in argument list of %s", tok, typeTok.Text)
		}
	}
}

// skipComment consumes tokens up to the next ";" or ")". A comment that runs
// into endmodule leaves it for the caller.
func (p *parser) skipComment(start Token) error {
	for {
		tok, err := p.next()
		if err != nil {
			return err
		}

		switch {
		case tok.Is(";"), tok.Is(")"):
			return nil
		case tok.Is(KwEndmodule):
			p.tok.Unread(tok)
			return nil
		case tok.Class == End:
			return p.syntax(start.Line, "unterminated comment, comments must end with ';'")
		}
	}
}

func isPower(name string) bool {
	for _, pw := range circuit.PowerPorts {
		if pw == name {
			return true
		}
	}
	return false
}
