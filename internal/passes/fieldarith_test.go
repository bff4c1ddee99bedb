package passes

import (
	"math/big"
	"testing"

	"github.com/circomspect-lang/circomspect-go/internal/astmodel"
	"github.com/circomspect-lang/circomspect-go/internal/facade"
	"github.com/circomspect-lang/circomspect-go/internal/field"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

func parseFileForFieldArith(t *testing.T, text string) (*source.Library, *astmodel.File) {
	t.Helper()
	lib := source.NewLibrary()
	id := lib.Add("test.circom", text)
	p := astmodel.NewParser(id, text)
	f := p.ParseFile()
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors)
	}
	return lib, f
}

func TestFieldArith_FlagsFieldDivision(t *testing.T) {
	lib, f := parseFileForFieldArith(t, `
		function f(a, b) {
			return a \ b;
		}
	`)
	ctx := facade.New(lib, field.BN128, f)
	ctx.RegisterPass(FieldArith)
	reports := ctx.Run()

	if len(reports) != 1 || reports[0].ID != "circom-field-arithmetic" {
		t.Fatalf("expected exactly one field-arithmetic report, got %v", reports)
	}
}

func TestFieldArith_FlagsNonPowerOfTwoShift(t *testing.T) {
	lib, f := parseFileForFieldArith(t, `
		function f(a) {
			return a << 3;
		}
	`)
	ctx := facade.New(lib, field.BN128, f)
	ctx.RegisterPass(FieldArith)
	reports := ctx.Run()

	if len(reports) != 1 || reports[0].ID != "circom-field-arithmetic" {
		t.Fatalf("expected exactly one field-arithmetic report for a non-power-of-two shift, got %v", reports)
	}
}

func TestFieldArith_SilentOnPowerOfTwoShift(t *testing.T) {
	lib, f := parseFileForFieldArith(t, `
		function f(a) {
			return a << 4;
		}
	`)
	ctx := facade.New(lib, field.BN128, f)
	ctx.RegisterPass(FieldArith)
	reports := ctx.Run()

	if len(reports) != 0 {
		t.Fatalf("expected no reports for a power-of-two shift amount, got %v", reports)
	}
}

// TestFieldArith_FlagsNonPowerOfTwoShiftWithNestedAmount uses a shift amount
// that is itself an arithmetic expression rather than a bare literal, so the
// constant the pass reads from x.R.Metadata().Value (3) comes from value
// propagation folding 1 + 2 through evalInfix, not from the *ir.Number case
// in evalExprValue.
func TestFieldArith_FlagsNonPowerOfTwoShiftWithNestedAmount(t *testing.T) {
	lib, f := parseFileForFieldArith(t, `
		function f(a) {
			return a << (1 + 2);
		}
	`)
	ctx := facade.New(lib, field.BN128, f)
	ctx.RegisterPass(FieldArith)
	reports := ctx.Run()

	if len(reports) != 1 || reports[0].ID != "circom-field-arithmetic" {
		t.Fatalf("expected exactly one field-arithmetic report for a nested non-power-of-two shift amount, got %v", reports)
	}
}

func TestFieldArith_SilentOnPlainArithmetic(t *testing.T) {
	lib, f := parseFileForFieldArith(t, `
		function f(a, b) {
			return a + b * 2;
		}
	`)
	ctx := facade.New(lib, field.BN128, f)
	ctx.RegisterPass(FieldArith)
	reports := ctx.Run()

	if len(reports) != 0 {
		t.Fatalf("expected no reports for plain +/* arithmetic, got %v", reports)
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	cases := map[int64]bool{
		0: false, 1: true, 2: true, 3: false, 4: true, 5: false, 8: true, 15: false, 16: true,
	}
	for n, want := range cases {
		if got := isPowerOfTwo(big.NewInt(n)); got != want {
			t.Errorf("isPowerOfTwo(%d) = %v, want %v", n, got, want)
		}
	}
}
