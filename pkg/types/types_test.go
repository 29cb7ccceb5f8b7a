package types

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestBoundsAlgebra(t *testing.T) {
	for _, tc := range []Integer{I8, I16, I32, U8, U16, U32} {
		wantMask := (int64(1) << uint(8*tc.SizeBytes)) - 1
		be.Equal(t, tc.Mask(), wantMask)

		var wantMin, wantMax int64
		if tc.IsSigned {
			wantMin = -(int64(1) << uint(8*tc.SizeBytes-1))
			wantMax = (int64(1) << uint(8*tc.SizeBytes-1)) - 1
		} else {
			wantMin = 0
			wantMax = wantMask
		}
		be.Equal(t, tc.Min(), wantMin)
		be.Equal(t, tc.Max(), wantMax)
	}
}

func TestAsmWidthAndDirective(t *testing.T) {
	be.Equal(t, I8.AsmWidth(), "byte")
	be.Equal(t, I16.AsmWidth(), "word")
	be.Equal(t, I32.AsmWidth(), "dword")
	be.Equal(t, U8.DataDirective(), "db")
	be.Equal(t, U16.DataDirective(), "dw")
	be.Equal(t, U32.DataDirective(), "dd")
}

func TestLookup(t *testing.T) {
	got, ok := Lookup("u8")
	be.True(t, ok)
	be.Equal(t, got, U8)

	_, ok = Lookup("i128")
	be.True(t, !ok)
}

func TestLarger(t *testing.T) {
	be.Equal(t, Larger(I8, I32), I32)
	be.Equal(t, Larger(I32, I8), I32)
	be.Equal(t, Larger(I16, I16), I16)
}
