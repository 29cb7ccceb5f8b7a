// Package asmgen implements the append-only assembly builder of spec.md
// §4.7: two ordered segments (data, text) plus a per-function scratch
// buffer that is later spliced into text between a function's prologue and
// epilogue, and the operand formatting rules shared by every instruction
// the code generator emits.
package asmgen

import (
	"fmt"
	"strings"

	"cc32/pkg/regalloc"
	"cc32/pkg/token"
	"cc32/pkg/value"
)

// Generator accumulates the textual FASM listing. It is mutated exclusively
// by the code generator for the lifetime of a single compilation
// (spec.md §5); there is no re-entry.
type Generator struct {
	data strings.Builder
	text strings.Builder
	code strings.Builder // per-function scratch buffer
}

// New returns an empty Generator.
func New() *Generator {
	return &Generator{}
}

// DataLine appends one `<label> <directive> <value>` line to the data
// segment, e.g. for a global variable's storage.
func (g *Generator) DataLine(label, directive, text string) {
	fmt.Fprintf(&g.data, "  %s %s %s\n", label, directive, text)
}

// Code appends a formatted line to the current function's scratch buffer.
func (g *Generator) Code(format string, args ...any) {
	fmt.Fprintf(&g.code, "  "+format+"\n", args...)
}

// CodeComment appends a `;`-prefixed comment line to the scratch buffer, in
// the teacher's terse inline-comment style.
func (g *Generator) CodeComment(format string, args ...any) {
	g.Code("; "+format, args...)
}

// Text appends a formatted line directly to the text segment, bypassing the
// per-function scratch buffer. Used for function labels, prologues,
// epilogues, and anything emitted outside of a function body (the entry
// stub, the intrinsic bodies).
func (g *Generator) Text(format string, args ...any) {
	fmt.Fprintf(&g.text, format+"\n", args...)
}

// ResetCode clears the per-function scratch buffer. Called at the start of
// each function's code generation.
func (g *Generator) ResetCode() {
	g.code.Reset()
}

// InsertFunctionCode splices the accumulated scratch buffer into the text
// segment and clears it, so it is safe to call at most once per function
// without an explicit ResetCode first.
func (g *Generator) InsertFunctionCode() {
	g.text.WriteString(g.code.String())
	g.code.Reset()
}

// CodeText returns the scratch buffer's current contents without splicing
// them into the text segment.
func (g *Generator) CodeText() string {
	return g.code.String()
}

// FormatOperand renders v as a FASM operand: an Integer as decimal, a
// Register as its name at the value's current width, and a Symbol as
// `<width> [<name>(±offset)?]` — except a Symbol naming a function, which
// renders as the bare label (spec.md §4.7).
func FormatOperand(v value.Value, loc token.Location) (string, error) {
	switch val := v.(type) {
	case value.Integer:
		return fmt.Sprintf("%d", val.Literal), nil

	case value.Register:
		name, err := regalloc.Name(val.Alloc.Id(), val.RegType.SizeBytes, loc)
		if err != nil {
			return "", err
		}
		return name, nil

	case value.Symbol:
		if _, ok := val.FunctionPointer(); ok {
			return val.Name, nil
		}
		width := val.IntegerType().AsmWidth()
		return width + " " + formatMemOperand(val.Name, val.Offset), nil

	default:
		return "", fmt.Errorf("asmgen: unknown value kind %T", v)
	}
}

func formatMemOperand(name string, offset int) string {
	switch {
	case offset == 0:
		return fmt.Sprintf("[%s]", name)
	case offset > 0:
		return fmt.Sprintf("[%s+%d]", name, offset)
	default:
		return fmt.Sprintf("[%s%d]", name, offset)
	}
}

// Link assembles the final FASM listing: the fixed header boilerplate, the
// data segment (globals plus the two fixed scanf/printf format strings),
// the text segment as built by the driver, and the fixed import footer
// (spec.md §6). Only the `.data` layout and function labels inside `text`
// are contractual; the surrounding boilerplate is this generator's own
// implementation detail.
func (g *Generator) Link() string {
	var out strings.Builder

	out.WriteString("format PE console\n")
	out.WriteString("entry start\n\n")
	out.WriteString("include 'win32a.inc'\n\n")

	out.WriteString("section '.data' data readable writeable\n")
	out.WriteString(g.data.String())
	out.WriteString("  scanf_format  db \"%d\", 0\n")
	out.WriteString("  printf_format db \"%d\", 10, 0\n\n")

	out.WriteString("section '.text' code readable executable\n")
	out.WriteString(g.text.String())
	out.WriteString("\n")

	out.WriteString("section '.idata' import data readable\n")
	out.WriteString("  library kernel32,'KERNEL32.DLL', msvcrt,'MSVCRT.DLL'\n")
	out.WriteString("  import kernel32, ExitProcess,'ExitProcess'\n")
	out.WriteString("  import msvcrt, scanf,'scanf', printf,'printf'\n")

	return out.String()
}
