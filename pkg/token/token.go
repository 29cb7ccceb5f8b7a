// Package token defines the lexical vocabulary of the source language: the
// kinds of token the lexer produces and the source locations attached to
// them and to every syntax node built on top of them.
package token

import "fmt"

// Kind identifies the category of a lexed token.
type Kind int

const (
	EndOfFile Kind = iota

	Identifier     // variable, function, or type name
	IntegerLiteral // decimal integer literal

	Equals    // =
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Semicolon // ;
	Colon     // :
	Comma     // ,
	LeftParen
	RightParen
	LeftBrace
	RightBrace

	Return // the one reserved word
)

var kindNames = [...]string{
	EndOfFile:      "EndOfFile",
	Identifier:     "Identifier",
	IntegerLiteral: "IntegerLiteral",
	Equals:         "Equals",
	Plus:           "Plus",
	Minus:          "Minus",
	Star:           "Star",
	Slash:          "Slash",
	Semicolon:      "Semicolon",
	Colon:          "Colon",
	Comma:          "Comma",
	LeftParen:      "LeftParen",
	RightParen:     "RightParen",
	LeftBrace:      "LeftBrace",
	RightBrace:     "RightBrace",
	Return:         "Return",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Location is a 0-based (file, line, column) triple attached to every token
// and every syntax node, used for diagnostics only.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line+1, l.Column+1)
}

// Token is a single lexical unit. Only Identifier and IntegerLiteral carry a
// meaningful payload (Lexeme / IntValue respectively); the rest are fully
// determined by Kind.
type Token struct {
	Kind     Kind
	Location Location
	Lexeme   string // set for Identifier
	IntValue int64  // set for IntegerLiteral
}

func (t Token) String() string {
	switch t.Kind {
	case Identifier:
		return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Lexeme, t.Location)
	case IntegerLiteral:
		return fmt.Sprintf("%s(%d)@%s", t.Kind, t.IntValue, t.Location)
	default:
		return fmt.Sprintf("%s@%s", t.Kind, t.Location)
	}
}
