package passes

import (
	"math/big"

	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/facade"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
	"github.com/circomspect-lang/circomspect-go/internal/report"
)

// FieldArith flags two shapes of field-element arithmetic that behave
// unexpectedly modulo the curve's prime: the "\" field-division operator
// (grounded on field_arithmetic.rs's IntDiv case, which the original always
// treats as worth a report), and a "<<"/">>" whose shift amount is a known
// constant that isn't a power of two, since the original's ShiftL/ShiftR
// handling only warns about overflow in general but this field's generalized
// shift has no well-defined bit width to begin with.
func FieldArith(ctx *facade.Context, cfg *cfgbuild.CFG) report.Collection {
	var out report.Collection
	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			walkStmtFieldArith(s, &out)
		}
	}
	return out
}

func walkStmtFieldArith(s ir.Stmt, out *report.Collection) {
	switch st := s.(type) {
	case *ir.IfHeader:
		walkExprFieldArith(st.Cond, out)
	case *ir.Substitution:
		walkExprFieldArith(st.RHS, out)
	case *ir.Return:
		walkExprFieldArith(st.Value, out)
	case *ir.LogCall:
		walkExprFieldArith(st.Arg, out)
	case *ir.Assert:
		walkExprFieldArith(st.Arg, out)
	case *ir.ConstraintEquality:
		walkExprFieldArith(st.LHS, out)
		walkExprFieldArith(st.RHS, out)
	}
}

func walkExprFieldArith(e ir.Expr, out *report.Collection) {
	if e == nil {
		return
	}
	switch x := e.(type) {
	case *ir.InfixOp:
		flagged := false
		switch x.Op {
		case "\\":
			*out = append(*out, fieldArithReport(x, "field division (\"\\\") does not behave like integer division modulo the field's prime"))
			flagged = true
		case "<<", ">>":
			if amt := x.R.Metadata().Value; amt != nil && amt.Kind == ir.ValueField && !isPowerOfTwo(amt.Field.BigInt()) {
				*out = append(*out, fieldArithReport(x, "shift by a non-power-of-two amount behaves unexpectedly modulo the field's prime"))
				flagged = true
			}
		}
		if !flagged {
			walkExprFieldArith(x.L, out)
			walkExprFieldArith(x.R, out)
		}
	case *ir.PrefixOp:
		walkExprFieldArith(x.X, out)
	case *ir.Switch:
		walkExprFieldArith(x.Cond, out)
		walkExprFieldArith(x.IfTrue, out)
		walkExprFieldArith(x.IfFalse, out)
	case *ir.Call:
		for _, a := range x.Args {
			walkExprFieldArith(a, out)
		}
	case *ir.ArrayInline:
		for _, v := range x.Elems {
			walkExprFieldArith(v, out)
		}
	case *ir.Access:
		walkAccessFieldArith(x.Path, out)
	case *ir.Update:
		walkAccessFieldArith(x.Path, out)
		walkExprFieldArith(x.RHS, out)
	}
}

func walkAccessFieldArith(path []ir.AccessStep, out *report.Collection) {
	for _, step := range path {
		if step.Kind == ir.AccessIndex {
			walkExprFieldArith(step.Index, out)
		}
	}
}

func isPowerOfTwo(n *big.Int) bool {
	if n.Sign() <= 0 {
		return false
	}
	one := big.NewInt(1)
	var t big.Int
	t.Sub(n, one)
	t.And(&t, n)
	return t.Sign() == 0
}

func fieldArithReport(x *ir.InfixOp, msg string) *report.Report {
	span := x.Meta.Span
	return report.New(
		report.SeverityWarning,
		"circom-field-arithmetic",
		report.CategoryFieldArithmetic,
		msg,
	).WithPrimary(span.File, span, "field arithmetic here")
}
