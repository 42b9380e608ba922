package circuit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/sexp"
)

// ExportKiCad renders the registry as a KiCad-style netlist. Every transistor
// and instance becomes a component referenced as "<module>/<component>", and
// every connected port becomes a net whose nodes are the component terminals
// attached to it. Power ports without connections are skipped.
func ExportKiCad(r *Registry) (string, error) {
	var b strings.Builder
	b.WriteString("(export (version D)\n")
	b.WriteString("  (design\n")
	b.WriteString("    (source \"v2j transistor netlist\")\n")
	b.WriteString("    (tool \"v2j\")\n")
	b.WriteString("  )\n")

	b.WriteString("  (components\n")
	for _, m := range r.Modules() {
		for _, c := range m.Components() {
			fmt.Fprintf(&b, "    (comp (ref %s) (value %s))\n",
				strconv.Quote(m.Name+"/"+c.Name), strconv.Quote(c.Type()))
		}
	}
	b.WriteString("  )\n")

	b.WriteString("  (nets\n")
	code := 1
	for _, m := range r.Modules() {
		for _, p := range m.Ports() {
			if !p.Connected() {
				continue
			}
			fmt.Fprintf(&b, "    (net (code %d) (name %s) (class %s)\n",
				code, strconv.Quote(m.Name+"/"+p.Name), p.Kind)
			for _, conn := range p.Connections {
				fmt.Fprintf(&b, "      (node (ref %s) (pin %s) (dir %s))\n",
					strconv.Quote(m.Name+"/"+m.Component(conn.Component).Name),
					strconv.Quote(conn.Terminal), conn.Direction)
			}
			b.WriteString("    )\n")
			code++
		}
	}
	b.WriteString("  )\n")
	b.WriteString(")\n")

	out := b.String()
	if err := checkSexp(out); err != nil {
		return "", err
	}
	return out, nil
}

// checkSexp makes sure the netlist reads back as a single s-expression.
func checkSexp(s string) error {
	exprs, err := sexp.ParseString(s)
	if err != nil {
		return fmt.Errorf("circuit: malformed netlist: %w", err)
	}
	if len(exprs) != 1 || exprs[0].IsLeaf() {
		return fmt.Errorf("circuit: malformed netlist: expected one list, got %d expressions", len(exprs))
	}
	return nil
}
