package compile

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"cc32/pkg/diag"
)

// inOrder asserts each of substrs appears in haystack, each one starting
// strictly after the previous match ends.
func inOrder(t *testing.T, haystack string, substrs ...string) {
	t.Helper()
	pos := 0
	for _, s := range substrs {
		idx := strings.Index(haystack[pos:], s)
		if idx < 0 {
			t.Fatalf("expected to find %q after position %d in:\n%s", s, pos, haystack)
		}
		pos += idx + len(s)
	}
}

func TestGlobalConstantDataLine(t *testing.T) {
	out, err := Source("i32 a = 42;", "t.cc")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "_a dd 42"))
}

func TestAssignmentToGlobal(t *testing.T) {
	src := "i32 a = 1; i32 main() { a = a + 2; return 0; }"
	out, err := Source(src, "t.cc")
	be.Err(t, err, nil)
	inOrder(t, out,
		"mov eax, dword [_a]",
		"add eax, 2",
		"mov dword [_a], eax",
		"mov eax, 0",
		"leave",
		"ret",
	)
}

func TestLocalDeclarationWithConstantFolding(t *testing.T) {
	src := "i32 main() { i32 x = 5 + 3 * 2; return x; }"
	out, err := Source(src, "t.cc")
	be.Err(t, err, nil)
	inOrder(t, out,
		"sub esp, 4",
		"mov dword [ebp-4], 11",
		"mov eax, dword [ebp-4]",
	)
}

func TestUnsignedNarrowArithmeticUsesByteRegister(t *testing.T) {
	src := "u8 a = 0; u8 bump() { a = a + 1; return a; }"
	out, err := Source(src, "t.cc")
	be.Err(t, err, nil)
	inOrder(t, out,
		"mov al, byte [_a]",
		"add al, 1",
		"mov byte [_a], al",
	)
}

func TestSignedNegativeGlobalSucceeds(t *testing.T) {
	out, err := Source("i32 a = -1;", "t.cc")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "_a dd -1"))
}

func TestUnsignedNegativeGlobalFails(t *testing.T) {
	_, err := Source("u8 a = -1;", "t.cc")
	cerr, ok := err.(*diag.CompileError)
	be.True(t, ok)
	be.Equal(t, cerr.Kind, diag.InvalidTypeCast)
}

func TestFunctionCallPassesArgsAndElidesReturnMov(t *testing.T) {
	src := "i32 sum(i32 a, i32 b) { return a + b; } i32 main() { return sum(2, 3); }"
	out, err := Source(src, "t.cc")
	be.Err(t, err, nil)

	inOrder(t, out,
		"_main:",
		"sub esp, 8",
		"mov dword [esp], 2",
		"mov dword [esp+4], 3",
		"call _sum",
		"add esp, 8",
		"leave",
		"ret",
	)
	inOrder(t, out,
		"_sum:",
		"mov eax, dword [ebp+8]",
		"add eax, dword [ebp+12]",
		"leave",
		"ret",
	)
	// No spurious displacement mov: the call's result already lives in eax
	// and is returned directly from main without a redundant move.
	be.True(t, !strings.Contains(out, "mov ecx, eax"))
}
