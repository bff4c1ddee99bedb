package facade

import (
	"errors"
	"strings"
	"testing"

	"github.com/circomspect-lang/circomspect-go/internal/astmodel"
	"github.com/circomspect-lang/circomspect-go/internal/field"
	"github.com/circomspect-lang/circomspect-go/internal/passes"
	"github.com/circomspect-lang/circomspect-go/internal/report"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

func parseFile(t *testing.T, text string) (*source.Library, *astmodel.File) {
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

// TestContext_Run_ShadowingAndDeadAssignment is end-to-end scenario S-ish:
// a function whose inner "var x" shadows the outer one, and whose shadowed
// write is never read afterward, should surface both a shadowing report and
// a dead-assignment report once every registered pass runs.
func TestContext_Run_ShadowingAndDeadAssignment(t *testing.T) {
	lib, f := parseFile(t, `
		function f(a) {
			var x;
			x = a;
			if (a > 0) {
				var x;
				x = 1;
			}
			return x;
		}
	`)

	ctx := New(lib, field.BN128, f)
	ctx.RegisterPass(passes.Shadowing)
	ctx.RegisterPass(passes.DeadAssign)

	reports := ctx.Run()

	var sawShadow, sawDead bool
	for _, r := range reports {
		if r.ID == "circom-shadowing-variable" {
			sawShadow = true
		}
		if r.ID == "circom-dead-assignment" {
			sawDead = true
		}
	}
	if !sawShadow {
		t.Error("expected a shadowing report")
	}
	if !sawDead {
		t.Error("expected a dead-assignment report for the shadowed inner write")
	}
}

// TestContext_Run_ConstantConditional exercises spec §8.4 scenario S4: an
// if-condition that value propagation resolves to a known boolean constant.
func TestContext_Run_ConstantConditional(t *testing.T) {
	lib, f := parseFile(t, `
		function g() {
			var x;
			x = 1;
			if (x == 1) {
				x = 2;
			}
			return x;
		}
	`)

	ctx := New(lib, field.BN128, f)
	ctx.RegisterPass(passes.ConstCond)

	reports := ctx.Run()
	var found bool
	for _, r := range reports {
		if r.ID == "circom-constant-conditional" {
			found = true
		}
	}
	if !found {
		t.Error("expected a constant-conditional report")
	}
}

// TestContext_Function_UnknownNameIsWrapped checks that a request for an
// unknown function returns an error wrapping ErrUnknownFunction, and that a
// second request for the same name returns the same error message. Unknown
// names are not cached; each request repeats the map lookup.
func TestContext_Function_UnknownNameIsWrapped(t *testing.T) {
	lib, f := parseFile(t, `
		function f() {
			return 0;
		}
	`)
	ctx := New(lib, field.BN128, f)

	_, _, err := ctx.Function("nope")
	if err == nil {
		t.Fatal("expected an error for an unknown function")
	}
	if !errors.Is(err, ErrUnknownFunction) {
		t.Errorf("error %v does not wrap ErrUnknownFunction", err)
	}
	if _, _, err2 := ctx.Function("nope"); err2 == nil || err2.Error() != err.Error() {
		t.Errorf("second call returned a different error: %v vs %v", err2, err)
	}
}

func TestContext_Run_ReportsAreDeterministicOrder(t *testing.T) {
	lib, f := parseFile(t, `
		function f(a) {
			var x;
			x = a;
			return a;
		}
		function g(b) {
			var y;
			y = b;
			return b;
		}
	`)
	ctx := New(lib, field.BN128, f)
	ctx.RegisterPass(passes.DeadAssign)

	reports := ctx.Run()
	if len(reports) == 0 {
		t.Fatal("expected dead-assignment reports for both functions")
	}
	countFor := func(msg string) int {
		n := 0
		for _, r := range reports {
			if r.Category == report.CategoryDeadAssignment {
				n++
			}
		}
		return n
	}
	if got := countFor("dead"); got != 2 {
		t.Errorf("expected 2 dead-assignment reports, got %d", got)
	}
	if len(reports) == 2 && (!strings.Contains(reports[0].Message, `"x"`) || !strings.Contains(reports[1].Message, `"y"`)) {
		t.Errorf("expected f's report before g's, got %q then %q", reports[0].Message, reports[1].Message)
	}
}
