package ssa

import (
	"testing"

	"github.com/circomspect-lang/circomspect-go/internal/astmodel"
	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/domtree"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
	"github.com/circomspect-lang/circomspect-go/internal/lift"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

func buildCFG(t *testing.T, text, name string) *cfgbuild.CFG {
	t.Helper()
	lib := source.NewLibrary()
	id := lib.Add("test.circom", text)
	p := astmodel.NewParser(id, text)
	f := p.ParseFile()
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors)
	}
	def, ok := f.Functions[name]
	if !ok {
		t.Fatalf("no function named %q", name)
	}
	lifted, err := lift.LiftOne(def)
	if err != nil {
		t.Fatalf("LiftOne: %v", err)
	}
	return cfgbuild.Build(lifted)
}

// countVersions walks cfg and returns the set of distinct SSA versions seen
// for local writes to base.
func countVersions(cfg *cfgbuild.CFG, base string) map[int]bool {
	out := map[int]bool{}
	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			if sub, ok := s.(*ir.Substitution); ok && sub.Target.Base == base && sub.Target.HasVersion {
				out[sub.Target.Version] = true
			}
		}
	}
	return out
}

// TestTransform_DiamondInsertsPhiAtMerge exercises the canonical phi-insertion
// shape: two branches each assign x, and the merge block must receive a phi
// joining both.
func TestTransform_DiamondInsertsPhiAtMerge(t *testing.T) {
	cfg := buildCFG(t, `
		function f(a) {
			var x;
			if (a > 0) {
				x = 1;
			} else {
				x = 2;
			}
			return x;
		}
	`, "f")

	tree := domtree.Build(cfg)
	if _, err := Transform(cfg, tree); err != nil {
		t.Fatalf("Transform: %v", err)
	}

	versions := countVersions(cfg, "x")
	if len(versions) < 2 {
		t.Fatalf("expected at least 2 distinct SSA versions of x from the two branches, got %v", versions)
	}

	var sawPhi bool
	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			sub, ok := s.(*ir.Substitution)
			if !ok || sub.Target.Base != "x" {
				continue
			}
			if phi, ok := sub.RHS.(*ir.Phi); ok {
				sawPhi = true
				if len(phi.Args) != 2 {
					t.Errorf("merge phi for x should have 2 args, got %d: %v", len(phi.Args), phi.Args)
				}
			}
		}
	}
	if !sawPhi {
		t.Fatal("expected a phi-statement for x at the merge block")
	}
}

// TestTransform_ShadowedLocalsKeepDistinctSSAIdentities is the regression
// test for the Unversioned-vs-Bare bug: an inner "var x" that the unique-name
// pass already disambiguated with a suffix must never be merged with the
// outer x during SSA renaming, even though both share the same Base.
func TestTransform_ShadowedLocalsKeepDistinctSSAIdentities(t *testing.T) {
	cfg := buildCFG(t, `
		function f(a) {
			var x;
			x = a;
			if (a > 0) {
				var x;
				x = 1;
				return x;
			}
			return x;
		}
	`, "f")

	tree := domtree.Build(cfg)
	if _, err := Transform(cfg, tree); err != nil {
		t.Fatalf("Transform: %v", err)
	}

	var outerVersion, innerVersion ir.Name
	var sawOuter, sawInner bool
	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			sub, ok := s.(*ir.Substitution)
			if !ok || sub.Target.Base != "x" {
				continue
			}
			if sub.Target.HasSuffix {
				innerVersion = sub.Target
				sawInner = true
			} else {
				outerVersion = sub.Target
				sawOuter = true
			}
		}
	}
	if !sawOuter || !sawInner {
		t.Fatal("expected both an outer (bare) and inner (suffixed) write to x")
	}
	if outerVersion.Unversioned().Key() == innerVersion.Unversioned().Key() {
		t.Fatal("outer and inner x must not share an SSA key despite sharing Base")
	}
}

// TestTransform_LinearChainVersionsEachWrite checks straight-line
// reassignment without any merge: three sequential writes to x must each get
// a distinct SSA version, and the final read must resolve to the last one.
func TestTransform_LinearChainVersionsEachWrite(t *testing.T) {
	cfg := buildCFG(t, `
		function f(a) {
			var x;
			x = a;
			x = x + 1;
			x = x + 1;
			return x;
		}
	`, "f")

	tree := domtree.Build(cfg)
	if _, err := Transform(cfg, tree); err != nil {
		t.Fatalf("Transform: %v", err)
	}

	versions := countVersions(cfg, "x")
	if len(versions) != 3 {
		t.Fatalf("expected 3 distinct SSA versions, got %d: %v", len(versions), versions)
	}
}

// TestTransform_IndexedWritesChainUpdateBase exercises spec §3.3's "array
// update" invariant: two sequential indexed writes to the same array must
// each lift to an *ir.Update whose Base reads the version reaching that
// write, so the second write's Update.Base resolves to the first write's
// fresh version rather than some disconnected or undefined one.
func TestTransform_IndexedWritesChainUpdateBase(t *testing.T) {
	cfg := buildCFG(t, `
		function f(a) {
			var arr[2];
			arr[0] = a;
			arr[1] = 2;
			return arr[1];
		}
	`, "f")

	tree := domtree.Build(cfg)
	if _, err := Transform(cfg, tree); err != nil {
		t.Fatalf("Transform: %v", err)
	}

	var updates []*ir.Update
	var targetVersions []int
	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			sub, ok := s.(*ir.Substitution)
			if !ok || sub.Target.Base != "arr" {
				continue
			}
			upd, ok := sub.RHS.(*ir.Update)
			if !ok {
				t.Fatalf("expected indexed write's RHS to be *ir.Update, got %T", sub.RHS)
			}
			updates = append(updates, upd)
			targetVersions = append(targetVersions, sub.Target.Version)
		}
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 indexed writes to arr, got %d", len(updates))
	}
	if !updates[1].Base.HasVersion {
		t.Fatal("second write's Update.Base must carry a resolved version")
	}
	if updates[1].Base.Version != targetVersions[0] {
		t.Errorf("second write's Update.Base version = %d, want the first write's fresh version %d",
			updates[1].Base.Version, targetVersions[0])
	}
}

// TestTransform_UndefinedReadFails checks phase 2 step 1: reading a local
// with no reaching definition on every path is a hard SSA error, not a
// silently-tolerated gap.
func TestTransform_UndefinedReadFails(t *testing.T) {
	cfg := &cfgbuild.CFG{
		Blocks: []*cfgbuild.Block{
			{Index: 0, Stmts: []ir.Stmt{
				&ir.Return{Value: &ir.VariableRead{Name: ir.NewName("never_declared")}},
			}},
		},
	}
	tree := domtree.Build(cfg)
	if _, err := Transform(cfg, tree); err == nil {
		t.Fatal("expected an undefined-variable error")
	}
}
