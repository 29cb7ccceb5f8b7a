// Package diag holds the compiler's single error taxonomy (spec.md §7).
// Every failure in the pipeline funnels through CompileError so that callers
// get a consistent (Kind, Location, Message) shape, with at most one cause.
package diag

import (
	"fmt"

	"cc32/pkg/token"
)

// Kind discriminates the fixed set of ways compilation can fail.
type Kind int

const (
	UnexpectedCharacter Kind = iota
	UnexpectedToken
	UnexpectedSyntaxNode
	UnknownIdentifier
	InvalidTypeCast
	UnsignedType
	NotLValue
	NotCallableType
	NoReturnValue
	MismatchingReturn
	DivisionByZero
	DuplicateSymbol
	OutOfRegisters
	NotImplemented
)

var kindNames = [...]string{
	UnexpectedCharacter:  "UnexpectedCharacter",
	UnexpectedToken:      "UnexpectedToken",
	UnexpectedSyntaxNode: "UnexpectedSyntaxNode",
	UnknownIdentifier:    "UnknownIdentifier",
	InvalidTypeCast:      "InvalidTypeCast",
	UnsignedType:         "UnsignedType",
	NotLValue:            "NotLValue",
	NotCallableType:      "NotCallableType",
	NoReturnValue:        "NoReturnValue",
	MismatchingReturn:    "MismatchingReturn",
	DivisionByZero:       "DivisionByZero",
	DuplicateSymbol:      "DuplicateSymbol",
	OutOfRegisters:       "OutOfRegisters",
	NotImplemented:       "NotImplemented",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// CompileError is the only error type the compiler core raises. It carries
// at most one cause: there is no local recovery, so the first error aborts
// the compilation and propagates as-is to the caller.
type CompileError struct {
	Kind     Kind
	Location token.Location
	Message  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Location, e.Kind, e.Message)
}

// New builds a CompileError with a formatted message.
func New(kind Kind, loc token.Location, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Location: loc, Message: fmt.Sprintf(format, args...)}
}
