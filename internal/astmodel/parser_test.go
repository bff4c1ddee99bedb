package astmodel

import (
	"testing"

	"github.com/circomspect-lang/circomspect-go/internal/source"
)

func parse(t *testing.T, text string) *File {
	t.Helper()
	lib := source.NewLibrary()
	id := lib.Add("test.circom", text)
	p := NewParser(id, text)
	f := p.ParseFile()
	if len(p.Errors) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors)
	}
	return f
}

func TestParseFile_TemplateWithSignalsAndConstraint(t *testing.T) {
	f := parse(t, `
		template Multiply() {
			signal input a;
			signal input b;
			signal output c;
			c <== a * b;
		}
	`)

	def, ok := f.Templates["Multiply"]
	if !ok {
		t.Fatal("expected template Multiply")
	}
	if len(def.Body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(def.Body))
	}
	sub, ok := def.Body[3].(*SubstStmt)
	if !ok {
		t.Fatalf("expected last statement to be a SubstStmt, got %T", def.Body[3])
	}
	if sub.Op != "<==" {
		t.Errorf("Op = %q, want %q", sub.Op, "<==")
	}
	rhs, ok := sub.RHS.(*InfixExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("RHS = %#v, want an InfixExpr with op *", sub.RHS)
	}
}

func TestParseFile_IfElseAndWhile(t *testing.T) {
	f := parse(t, `
		function f(a) {
			var x;
			x = 0;
			if (a > 0) {
				x = 1;
			} else {
				x = 2;
			}
			while (x < 10) {
				x = x + 1;
			}
			return x;
		}
	`)

	def := f.Functions["f"]
	if def == nil {
		t.Fatal("expected function f")
	}
	ifStmt, ok := def.Body[2].(*IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", def.Body[2])
	}
	if len(ifStmt.Then) != 1 || len(ifStmt.Else) != 1 {
		t.Errorf("expected one statement in each arm, got then=%d else=%d", len(ifStmt.Then), len(ifStmt.Else))
	}
	if _, ok := def.Body[3].(*WhileStmt); !ok {
		t.Fatalf("expected WhileStmt, got %T", def.Body[3])
	}
}

func TestParseFile_ShiftAndFieldDivisionOperators(t *testing.T) {
	f := parse(t, `
		function g(a, b) {
			var x;
			var y;
			var z;
			x = a << b;
			y = a >> 1;
			z = a \ b;
			return x + y + z;
		}
	`)

	def := f.Functions["g"]
	checkOp := func(idx int, want string) {
		t.Helper()
		sub, ok := def.Body[idx].(*SubstStmt)
		if !ok {
			t.Fatalf("statement %d: got %T, want SubstStmt", idx, def.Body[idx])
		}
		infix, ok := sub.RHS.(*InfixExpr)
		if !ok {
			t.Fatalf("statement %d: RHS = %#v, want InfixExpr", idx, sub.RHS)
		}
		if infix.Op != want {
			t.Errorf("statement %d: Op = %q, want %q", idx, infix.Op, want)
		}
	}
	checkOp(3, "<<")
	checkOp(4, ">>")
	checkOp(5, "\\")
}

func TestParseFile_ParamList(t *testing.T) {
	f := parse(t, `
		template T(n, m) {
			signal input x[n];
		}
	`)
	def := f.Templates["T"]
	if len(def.Params) != 2 || def.Params[0].Name != "n" || def.Params[1].Name != "m" {
		t.Fatalf("unexpected params: %#v", def.Params)
	}
	decl, ok := def.Body[0].(*DeclStmt)
	if !ok {
		t.Fatalf("expected DeclStmt, got %T", def.Body[0])
	}
	if len(decl.Dims) != 1 {
		t.Fatalf("expected one dimension, got %d", len(decl.Dims))
	}
}
