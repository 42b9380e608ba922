package hdl

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/OpenTraceLab/v2j/pkg/circuit"
)

// Compiler turns source files into a registry of modules. It carries the
// atom allow-list and the logger for one compilation run and keeps track of
// the files being compiled so include cycles can be reported.
//
// A Compiler is not safe for concurrent use.
type Compiler struct {
	atoms  map[string]bool
	logger *slog.Logger

	stack []string                     // absolute paths of files being compiled
	done  map[string]*circuit.Registry // finished files by absolute path
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger that receives warnings. The default discards them.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// NewCompiler creates a compiler. Names listed in atoms are primitive leaf
// modules: a module defined under such a name is flagged isAtom.
func NewCompiler(atoms []string, opts ...Option) *Compiler {
	c := &Compiler{
		atoms:  make(map[string]bool, len(atoms)),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		done:   make(map[string]*circuit.Registry),
	}
	for _, a := range atoms {
		c.atoms[a] = true
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsAtom reports whether name is in the atom allow-list.
func (c *Compiler) IsAtom(name string) bool {
	return c.atoms[name]
}

// CompileFile compiles path and every file it includes. On error no
// registry is returned.
func (c *Compiler) CompileFile(path string) (*circuit.Registry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ioError(path, err, "resolving source path")
	}
	if cached, ok := c.done[abs]; ok {
		return cached, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ioError(path, err, "cannot open source file")
	}
	defer f.Close()

	c.stack = append(c.stack, abs)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	reg, err := c.compile(path, filepath.Dir(path), f)
	if err != nil {
		return nil, err
	}
	c.done[abs] = reg
	return reg, nil
}

// Compile compiles source read from r. Includes are resolved relative to the
// directory of name, then the working directory.
func (c *Compiler) Compile(name string, r io.Reader) (*circuit.Registry, error) {
	return c.compile(name, filepath.Dir(name), r)
}

func (c *Compiler) compile(name, dir string, r io.Reader) (*circuit.Registry, error) {
	tok, err := NewTokenizer(name, r)
	if err != nil {
		return nil, err
	}
	p := &parser{
		c:   c,
		tok: tok,
		dir: dir,
		reg: circuit.NewRegistry(),
		log: c.logger.With("file", name),
	}
	if err := p.parse(); err != nil {
		return nil, err
	}
	c.logger.Debug("compiled source", "file", name, "modules", p.reg.Len())
	return p.reg, nil
}

// include compiles an included file as an independent compilation unit.
func (c *Compiler) include(from string, line int, dir, name string) (*circuit.Registry, error) {
	path := resolveInclude(dir, name)
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &Error{Kind: IOError, File: from, Line: line, Msg: "resolving include " + name, Err: err}
	}

	for i, open := range c.stack {
		if open == abs {
			chain := append(append([]string{}, c.stack[i:]...), abs)
			return nil, &Error{
				Kind: IOError,
				File: from,
				Line: line,
				Msg:  "cannot include " + name,
				Err:  errors.Wrapf(ErrCircularInclude, "%s", strings.Join(chain, " -> ")),
			}
		}
	}

	c.logger.Debug("including file", "from", from, "line", line, "path", path)
	reg, err := c.CompileFile(path)
	if err != nil {
		var e *Error
		if errors.As(err, &e) && e.Kind == IOError && e.File == path && e.Line == 0 {
			return nil, &Error{
				Kind: IOError,
				File: from,
				Line: line,
				Msg:  "cannot open include file " + name,
				Err:  errors.Cause(e.Err),
			}
		}
		return nil, err
	}
	return reg, nil
}

// resolveInclude looks for name next to the including file first, then
// relative to the working directory.
func resolveInclude(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	local := filepath.Join(dir, name)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return local
}
