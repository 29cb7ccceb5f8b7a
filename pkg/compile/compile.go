// Package compile wires the pipeline stages together (spec.md §2, §6): it is
// the single entry point external callers use, taking a source unit and
// returning a linked FASM listing or the first diagnostic encountered.
package compile

import (
	"cc32/pkg/codegen"
	"cc32/pkg/lexer"
	"cc32/pkg/parser"
)

// Source compiles a single textual source unit named fileName and returns
// the linked FASM assembly listing. It does not invoke an external
// assembler: FASM itself is out of scope (spec.md §1).
func Source(sourceText, fileName string) (string, error) {
	lex := lexer.New(sourceText, fileName)
	decls, err := parser.ParseFile(lex)
	if err != nil {
		return "", err
	}

	driver := codegen.NewDriver()
	return driver.Compile(decls)
}
