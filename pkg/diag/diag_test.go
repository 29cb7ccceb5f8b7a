package diag

import (
	"testing"

	"github.com/nalgeon/be"
	"cc32/pkg/token"
)

func TestNewFormatsMessage(t *testing.T) {
	loc := token.Location{File: "a.cc", Line: 0, Column: 0}
	err := New(UnknownIdentifier, loc, "unknown identifier %q", "foo")
	be.Equal(t, err.Kind, UnknownIdentifier)
	be.Equal(t, err.Message, `unknown identifier "foo"`)
}

func TestErrorStringIncludesLocationAndKind(t *testing.T) {
	loc := token.Location{File: "a.cc", Line: 4, Column: 1}
	err := New(DivisionByZero, loc, "division by zero")
	be.Equal(t, err.Error(), "a.cc:5:2: DivisionByZero: division by zero")
}

func TestKindStringOutOfRange(t *testing.T) {
	be.Equal(t, Kind(999).String(), "Kind(999)")
}
