package propagate

import (
	"math/big"

	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/field"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
)

// PropagateValues implements spec §4.8: abstract interpretation over the
// unknown/boolean-const/field-element-const lattice, iterated to a fixed
// point over cfg's blocks. curve selects the field every constant folds
// into (spec §6.1's curve selector affects arithmetic, not control flow).
func PropagateValues(cfg *cfgbuild.CFG, curve field.Curve) {
	env := map[string]ir.Value{}
	for changed := true; changed; {
		changed = false
		for _, b := range cfg.Blocks {
			for _, s := range b.Stmts {
				if stmtValue(s, env, curve) {
					changed = true
				}
			}
		}
	}
}

func setValue(m *ir.Meta, v ir.Value) bool {
	if m.Value != nil && m.Value.Equal(v) {
		return false
	}
	cp := v
	m.Value = &cp
	return true
}

func stmtValue(s ir.Stmt, env map[string]ir.Value, curve field.Curve) bool {
	changed := false
	switch st := s.(type) {
	case *ir.Declaration:
		for _, d := range st.Dims {
			evalExprValue(d, env, curve, &changed)
		}
	case *ir.Substitution:
		val := evalExprValue(st.RHS, env, curve, &changed)
		if st.Kind == ir.AssignLocalOrComponent && st.Target.HasVersion {
			isLocal := st.Meta.VarKind == nil || st.Meta.VarKind.Kind == ir.KindLocal
			if isLocal {
				if old, ok := env[st.Target.Key()]; !ok || !old.Equal(val) {
					env[st.Target.Key()] = val
					changed = true
				}
			}
		}
	case *ir.IfHeader:
		evalExprValue(st.Cond, env, curve, &changed)
	case *ir.Return:
		if st.Value != nil {
			evalExprValue(st.Value, env, curve, &changed)
		}
	case *ir.ConstraintEquality:
		evalExprValue(st.LHS, env, curve, &changed)
		evalExprValue(st.RHS, env, curve, &changed)
	case *ir.LogCall:
		evalExprValue(st.Arg, env, curve, &changed)
	case *ir.Assert:
		evalExprValue(st.Arg, env, curve, &changed)
	}
	return changed
}

func unknown() ir.Value { return ir.Value{Kind: ir.ValueUnknown} }

// evalExprValue computes e's abstract value, stores it on e's metadata (and
// reports via *changed whether that stored value moved), and returns it so
// callers composing larger expressions can use it directly.
func evalExprValue(e ir.Expr, env map[string]ir.Value, curve field.Curve, changed *bool) ir.Value {
	var v ir.Value
	switch ex := e.(type) {
	case *ir.Number:
		v = ir.Value{Kind: ir.ValueField, Field: field.New(curve, ex.Value)}
	case *ir.VariableRead:
		if val, ok := env[ex.Name.Key()]; ok {
			v = val
		} else {
			v = unknown()
		}
	case *ir.InfixOp:
		l := evalExprValue(ex.L, env, curve, changed)
		r := evalExprValue(ex.R, env, curve, changed)
		v = evalInfix(ex.Op, l, r, curve)
	case *ir.PrefixOp:
		x := evalExprValue(ex.X, env, curve, changed)
		v = evalPrefix(ex.Op, x, curve)
	case *ir.Switch:
		cond := evalExprValue(ex.Cond, env, curve, changed)
		t := evalExprValue(ex.IfTrue, env, curve, changed)
		f := evalExprValue(ex.IfFalse, env, curve, changed)
		switch {
		case cond.Kind == ir.ValueBool && cond.Bool:
			v = t
		case cond.Kind == ir.ValueBool && !cond.Bool:
			v = f
		case t.Kind != ir.ValueUnknown && t.Equal(f):
			v = t
		default:
			v = unknown()
		}
	case *ir.Call:
		for _, a := range ex.Args {
			evalExprValue(a, env, curve, changed)
		}
		v = unknown()
	case *ir.ArrayInline:
		for _, el := range ex.Elems {
			evalExprValue(el, env, curve, changed)
		}
		v = unknown()
	case *ir.Access:
		for _, step := range ex.Path {
			if step.Kind == ir.AccessIndex {
				evalExprValue(step.Index, env, curve, changed)
			}
		}
		v = unknown()
	case *ir.Update:
		for _, step := range ex.Path {
			if step.Kind == ir.AccessIndex {
				evalExprValue(step.Index, env, curve, changed)
			}
		}
		evalExprValue(ex.RHS, env, curve, changed)
		v = unknown()
	case *ir.Phi:
		v = evalPhi(ex.Args, env)
	default:
		v = unknown()
	}
	if setValue(e.Metadata(), v) {
		*changed = true
	}
	return v
}

func evalPhi(args []ir.Name, env map[string]ir.Value) ir.Value {
	if len(args) == 0 {
		return unknown()
	}
	first, ok := env[args[0].Key()]
	if !ok || first.Kind == ir.ValueUnknown {
		return unknown()
	}
	for _, a := range args[1:] {
		v, ok := env[a.Key()]
		if !ok || !v.Equal(first) {
			return unknown()
		}
	}
	return first
}

func evalInfix(op string, l, r ir.Value, curve field.Curve) ir.Value {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		if l.Kind == ir.ValueUnknown || r.Kind == ir.ValueUnknown {
			return unknown()
		}
		return ir.Value{Kind: ir.ValueBool, Bool: compare(op, l, r)}
	case "&&", "||":
		if l.Kind != ir.ValueBool || r.Kind != ir.ValueBool {
			return unknown()
		}
		if op == "&&" {
			return ir.Value{Kind: ir.ValueBool, Bool: l.Bool && r.Bool}
		}
		return ir.Value{Kind: ir.ValueBool, Bool: l.Bool || r.Bool}
	case "+", "-", "*", "/", "%", "**", "<<", ">>":
		if l.Kind != ir.ValueField || r.Kind != ir.ValueField {
			return unknown()
		}
		return ir.Value{Kind: ir.ValueField, Field: arith(op, l.Field, r.Field, curve)}
	default:
		return unknown()
	}
}

func arith(op string, l, r field.Element, curve field.Curve) field.Element {
	switch op {
	case "+":
		return l.Add(r)
	case "-":
		return l.Sub(r)
	case "*":
		return l.Mul(r)
	case "/":
		return l.Div(r)
	case "%":
		lb, rb := l.BigInt(), r.BigInt()
		if rb.Sign() == 0 {
			return field.New(curve, big.NewInt(0))
		}
		m := new(big.Int).Mod(lb, rb)
		return field.New(curve, m)
	case "**":
		lb, rb := l.BigInt(), r.BigInt()
		m := new(big.Int).Exp(lb, rb, nil)
		return field.New(curve, m)
	case "<<":
		lb, rb := l.BigInt(), r.BigInt()
		m := new(big.Int).Lsh(lb, uint(rb.Uint64()))
		return field.New(curve, m)
	case ">>":
		lb, rb := l.BigInt(), r.BigInt()
		m := new(big.Int).Rsh(lb, uint(rb.Uint64()))
		return field.New(curve, m)
	default:
		return l
	}
}

func compare(op string, l, r ir.Value) bool {
	if l.Kind == ir.ValueBool && r.Kind == ir.ValueBool {
		switch op {
		case "==":
			return l.Bool == r.Bool
		case "!=":
			return l.Bool != r.Bool
		default:
			return false
		}
	}
	c := l.Field.Cmp(r.Field)
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	default:
		return false
	}
}

func evalPrefix(op string, x ir.Value, curve field.Curve) ir.Value {
	switch op {
	case "-":
		if x.Kind != ir.ValueField {
			return unknown()
		}
		zero := field.New(curve, big.NewInt(0))
		return ir.Value{Kind: ir.ValueField, Field: zero.Sub(x.Field)}
	case "!":
		if x.Kind != ir.ValueBool {
			return unknown()
		}
		return ir.Value{Kind: ir.ValueBool, Bool: !x.Bool}
	default:
		return unknown()
	}
}
