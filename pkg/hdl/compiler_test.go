package hdl

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

const invSrc = `
module inv(a, y);
    input a; output y;
    pmos(y, VCC, a);
    nmos(y, GND, a);
endmodule
`

func moduleNames(t *testing.T, path string) []string {
	t.Helper()
	reg, err := NewCompiler(nil).CompileFile(path)
	if err != nil {
		t.Fatalf("CompileFile failed: %v", err)
	}
	var names []string
	for _, m := range reg.Modules() {
		names = append(names, m.Name)
	}
	return names
}

func TestCompileFileNestedIncludes(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"lib/prims.v": invSrc,
		"lib/cells.v": `include "prims.v";
module buf(a, y);
    input a; output y;
    wire t;
    inv i1(a, t);
    inv i2(t, y);
endmodule
`,
		"top.v": `include "lib/cells.v";
module top(x, z);
    input x; output z;
    buf b1(x, z);
endmodule
`,
	})

	got := strings.Join(moduleNames(t, filepath.Join(dir, "top.v")), ",")
	if got != "inv,buf,top" {
		t.Errorf("Expected modules inv,buf,top, got %s", got)
	}
}

func TestCompileFileDiamondInclude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"common.v": invSrc,
		"left.v": `include "common.v";
module left(a, y); input a; output y; inv u(a, y); endmodule
`,
		"right.v": `include "common.v";
module right(a, y); input a; output y; inv u(a, y); endmodule
`,
		"top.v": `include "left.v";
include "right.v";
module top(a, y); input a; output y; wire t; left l(a, t); right r(t, y); endmodule
`,
	})

	got := strings.Join(moduleNames(t, filepath.Join(dir, "top.v")), ",")
	if got != "inv,left,right,top" {
		t.Errorf("Expected modules inv,left,right,top, got %s", got)
	}
}

func TestCompileFileIncludeIsIndependent(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"user.v": `module user(a, y); input a; output y; inv u(a, y); endmodule
`,
		"top.v": invSrc + `include "user.v";
`,
	})

	_, err := NewCompiler(nil).CompileFile(filepath.Join(dir, "top.v"))
	if err == nil {
		t.Fatal("Included file should not see modules of the including file")
	}
	var e *Error
	if !errors.As(err, &e) || e.Kind != SemanticError || !strings.HasSuffix(e.File, "user.v") {
		t.Errorf("Expected semantic error in user.v, got %v", err)
	}
}

func TestCompileFileMissingInclude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"top.v": "\ninclude \"nope.v\";\n",
	})

	_, err := NewCompiler(nil).CompileFile(filepath.Join(dir, "top.v"))
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if e.Kind != IOError {
		t.Errorf("Expected I/O error, got %s", e.Kind)
	}
	if e.Line != 2 || !strings.HasSuffix(e.File, "top.v") {
		t.Errorf("Expected error at top.v:2, got %s:%d", e.File, e.Line)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Expected fs.ErrNotExist in chain, got %v", err)
	}
}

func TestCompileFileCircularInclude(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.v": `include "b.v";` + invSrc,
		"b.v": `include "a.v";`,
	})

	_, err := NewCompiler(nil).CompileFile(filepath.Join(dir, "a.v"))
	if !errors.Is(err, ErrCircularInclude) {
		t.Fatalf("Expected ErrCircularInclude, got %v", err)
	}
	if kind, _ := KindOf(err); kind != IOError {
		t.Errorf("Expected I/O error, got %v", err)
	}
	if !strings.Contains(err.Error(), "a.v -> ") {
		t.Errorf("Expected include chain in message, got %v", err)
	}
}

func TestCompileFileMissingSource(t *testing.T) {
	_, err := NewCompiler(nil).CompileFile(filepath.Join(t.TempDir(), "missing.v"))
	if kind, ok := KindOf(err); !ok || kind != IOError {
		t.Fatalf("Expected I/O error, got %v", err)
	}
}
