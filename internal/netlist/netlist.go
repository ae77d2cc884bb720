// Package netlist holds the pieces shared by the clock and reset controller
// compilers: port records, the name-deduplication set, and Verilog text
// emission helpers. Output is produced as ordered fragments against an
// io.Writer; there is no in-memory tree.
package netlist

import (
	"fmt"
	"io"
	"strings"
)

// Direction of a module port.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// Port is one synthesized module port. Width 0 or 1 means a scalar.
type Port struct {
	Dir     Direction
	Width   int
	Name    string
	Comment string
}

// NameSet is the added-signals set used during port synthesis. It enforces
// the two precedence rules: output-wins (pre-seed with all output names
// before walking inputs) and first-wins within each walked category.
type NameSet map[string]bool

// Add records name and reports whether it was new.
func (s NameSet) Add(name string) bool {
	if s[name] {
		return false
	}
	s[name] = true
	return true
}

// Has reports membership.
func (s NameSet) Has(name string) bool { return s[name] }

// WritePorts emits a module header with one port per line. Every line
// except the last is followed by a comma; comments sit after the comma.
func WritePorts(w io.Writer, module string, ports []Port) error {
	if _, err := fmt.Fprintf(w, "module %s (\n", module); err != nil {
		return err
	}
	for i, p := range ports {
		comma := ","
		if i == len(ports)-1 {
			comma = ""
		}
		decl := fmt.Sprintf("%-6s wire %s%s%s", p.Dir, rangeSpec(p.Width), p.Name, comma)
		if p.Comment != "" {
			fmt.Fprintf(w, "    %-48s // %s\n", decl, p.Comment)
		} else {
			fmt.Fprintf(w, "    %s\n", decl)
		}
	}
	_, err := fmt.Fprintf(w, ");\n")
	return err
}

func rangeSpec(width int) string {
	if width <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0] ", width-1)
}

// Wire declares a wire, scalar or vector.
func Wire(w io.Writer, name string, width int) {
	fmt.Fprintf(w, "wire %s%s;\n", rangeSpec(width), name)
}

// VecWire declares a wire with an explicit range even at width 1. Nets that
// are bit-selected downstream must use this: a bit-select of a scalar net is
// illegal Verilog.
func VecWire(w io.Writer, name string, width int) {
	if width < 1 {
		width = 1
	}
	fmt.Fprintf(w, "wire [%d:0] %s;\n", width-1, name)
}

// Assign emits a continuous assignment.
func Assign(w io.Writer, lhs, rhs string) {
	fmt.Fprintf(w, "assign %s = %s;\n", lhs, rhs)
}

// Comment emits a single-line section comment.
func Comment(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "// "+format+"\n", args...)
}

// Param is one parameter override on an instance.
type Param struct {
	Name  string
	Value string
}

// Conn is one port connection on an instance. An empty Expr leaves the
// port open.
type Conn struct {
	Port string
	Expr string
}

// Instance emits a primitive instantiation with aligned connections.
func Instance(w io.Writer, cell, inst string, params []Param, conns []Conn) {
	if len(params) == 0 {
		fmt.Fprintf(w, "%s %s (\n", cell, inst)
	} else {
		fmt.Fprintf(w, "%s #(\n", cell)
		for i, p := range params {
			comma := ","
			if i == len(params)-1 {
				comma = ""
			}
			fmt.Fprintf(w, "    .%-20s (%s)%s\n", p.Name, p.Value, comma)
		}
		fmt.Fprintf(w, ") %s (\n", inst)
	}
	for i, c := range conns {
		comma := ","
		if i == len(conns)-1 {
			comma = ""
		}
		fmt.Fprintf(w, "    .%-10s (%s)%s\n", c.Port, c.Expr, comma)
	}
	fmt.Fprintf(w, ");\n")
}

// Concat builds an MSB-first concatenation: the last element of elems ends
// up in the most significant position, matching mux input numbering where
// input i sits at bit i.
func Concat(elems []string) string {
	rev := make([]string, len(elems))
	for i, e := range elems {
		rev[len(elems)-1-i] = e
	}
	return "{" + strings.Join(rev, ", ") + "}"
}

// Header emits the generated-file banner shared by all netlist outputs.
func Header(w io.Writer, title string) {
	bar := strings.Repeat("-", 66)
	fmt.Fprintf(w, "// %s\n", bar)
	fmt.Fprintf(w, "// %s\n", title)
	fmt.Fprintf(w, "// Generated by chipgen. Do not edit.\n")
	fmt.Fprintf(w, "// %s\n", bar)
}

// BinConst renders an unsized binary constant of the given width.
func BinConst(width, value int) string {
	return fmt.Sprintf("%d'b%0*b", width, width, value)
}

// DecConst renders a sized decimal constant.
func DecConst(width, value int) string {
	return fmt.Sprintf("%d'd%d", width, value)
}
