package lift

import (
	"fmt"
	"strconv"

	"github.com/circomspect-lang/circomspect-go/internal/astmodel"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

// binding pairs a resolved ir.Name with the span of the declaration that
// introduced it, so a later shadowing declaration can report both sites
// (spec §4.3: "every shadowing event produces a warning report with both
// declaration sites").
type binding struct {
	name ir.Name
	span source.Span
}

// ShadowEvent records one inner declaration shadowing an outer one.
type ShadowEvent struct {
	Base       string
	InnerSpan  source.Span
	OuterSpan  source.Span
	InnerName  ir.Name
}

// scope is one lexical frame of the unique-name pass (spec §4.3): a mapping
// from a variable's surface (base) name to the binding currently active for
// it, chained to its enclosing frame so a lookup walks outward exactly like
// the source language's own scoping rules.
type scope struct {
	vars   map[string]binding
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]binding{}, parent: parent}
}

func (s *scope) lookup(base string) (ir.Name, bool) {
	b, ok := s.lookupBinding(base)
	return b.name, ok
}

func (s *scope) lookupBinding(base string) (binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[base]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// renamer carries the per-definition state a unique-name pass needs beyond
// the scope chain: a monotonic counter per base name used only when a
// declaration actually shadows an enclosing binding, so the generated
// suffix is unique across the whole definition (spec §4.3: "the suffix
// chosen for a shadowing variable is unique across the whole definition").
// A declaration that does not shadow anything keeps a bare display name,
// even if a sibling (never-simultaneously-live) scope reuses the same base.
type renamer struct {
	counts  map[string]int
	shadows []ShadowEvent
}

// renameUnique runs the unique-name pass over a lifted definition in place,
// then returns it plus any shadowing events observed. def supplies the
// original AST parameter spans so duplicate-parameter detection can report a
// precise location (spec §4.3: "two parameters sharing a name is a fatal
// lift error, not a shadow").
func renameUnique(d *Definition, def *astmodel.Def) (*Definition, error) {
	seen := map[string]bool{}
	for _, p := range def.Params {
		if seen[p.Name] {
			return nil, &Error{Span: p.Span, Message: fmt.Sprintf("duplicate parameter name %q", p.Name)}
		}
		seen[p.Name] = true
	}

	r := &renamer{counts: map[string]int{}}
	root := newScope(nil)
	for i, p := range d.Params {
		span := def.Params[i].Span
		name := r.declare(root, p.Base, span)
		d.Params[i] = name
	}
	body, err := r.renameStmts(d.Body, root)
	if err != nil {
		return nil, err
	}
	d.Body = body
	d.Shadows = r.shadows
	return d, nil
}

// declare binds a fresh occurrence of base in s at span, returning the
// ir.Name new references to it should use. If base already resolves to an
// enclosing-scope binding, that is a shadowing event (spec §4.3: "when a
// declaration var x is encountered and x is already declared in an
// enclosing scope, the inner declaration is versioned with a suffix").
func (r *renamer) declare(s *scope, base string, span source.Span) ir.Name {
	if outer, ok := s.lookupBinding(base); ok {
		n := r.counts[base]
		r.counts[base]++
		name := ir.NewName(base).WithSuffix(strconv.Itoa(n + 1))
		s.vars[base] = binding{name: name, span: span}
		r.shadows = append(r.shadows, ShadowEvent{Base: base, InnerSpan: span, OuterSpan: outer.span, InnerName: name})
		return name
	}
	name := ir.NewName(base)
	s.vars[base] = binding{name: name, span: span}
	return name
}

// resolve looks up a reference's current binding. An unresolved name (used
// before any declaration reached it) is left as-is: detecting that is a
// separate well-formedness check, not this pass's job.
func (r *renamer) resolve(s *scope, base string) ir.Name {
	if n, ok := s.lookup(base); ok {
		return n
	}
	return ir.NewName(base)
}

func (r *renamer) renameStmts(stmts []ir.Stmt, s *scope) ([]ir.Stmt, error) {
	out := make([]ir.Stmt, len(stmts))
	for i, st := range stmts {
		renamed, err := r.renameStmt(st, s)
		if err != nil {
			return nil, err
		}
		out[i] = renamed
	}
	return out, nil
}

func (r *renamer) renameStmt(st ir.Stmt, s *scope) (ir.Stmt, error) {
	switch v := st.(type) {
	case *ir.Declaration:
		for i, n := range v.Names {
			v.Names[i] = r.declare(s, n.Base, v.Meta.Span)
		}
		for i, d := range v.Dims {
			renamed, err := r.renameExpr(d, s)
			if err != nil {
				return nil, err
			}
			v.Dims[i] = renamed
		}
		return v, nil
	case *ir.Substitution:
		v.Target = r.resolve(s, v.Target.Base)
		rhs, err := r.renameExpr(v.RHS, s)
		if err != nil {
			return nil, err
		}
		v.RHS = rhs
		return v, nil
	case *ir.Return:
		if v.Value != nil {
			val, err := r.renameExpr(v.Value, s)
			if err != nil {
				return nil, err
			}
			v.Value = val
		}
		return v, nil
	case *ir.ConstraintEquality:
		lhs, err := r.renameExpr(v.LHS, s)
		if err != nil {
			return nil, err
		}
		rhs, err := r.renameExpr(v.RHS, s)
		if err != nil {
			return nil, err
		}
		v.LHS, v.RHS = lhs, rhs
		return v, nil
	case *ir.LogCall:
		arg, err := r.renameExpr(v.Arg, s)
		if err != nil {
			return nil, err
		}
		v.Arg = arg
		return v, nil
	case *ir.Assert:
		arg, err := r.renameExpr(v.Arg, s)
		if err != nil {
			return nil, err
		}
		v.Arg = arg
		return v, nil
	case *rawIf:
		cond, err := r.renameExpr(v.cond, s)
		if err != nil {
			return nil, err
		}
		v.cond = cond
		thenScope := newScope(s)
		thenBody, err := r.renameStmts(v.thenBody, thenScope)
		if err != nil {
			return nil, err
		}
		v.thenBody = thenBody
		if v.hasElse {
			elseScope := newScope(s)
			elseBody, err := r.renameStmts(v.elseBody, elseScope)
			if err != nil {
				return nil, err
			}
			v.elseBody = elseBody
		}
		return v, nil
	case *rawWhile:
		cond, err := r.renameExpr(v.cond, s)
		if err != nil {
			return nil, err
		}
		v.cond = cond
		bodyScope := newScope(s)
		body, err := r.renameStmts(v.body, bodyScope)
		if err != nil {
			return nil, err
		}
		v.body = body
		return v, nil
	default:
		return nil, &Error{Span: st.Metadata().Span, Message: fmt.Sprintf("unique-name pass: unhandled statement type %T", st)}
	}
}

func (r *renamer) renameExpr(e ir.Expr, s *scope) (ir.Expr, error) {
	switch v := e.(type) {
	case *ir.Number:
		return v, nil
	case *ir.VariableRead:
		v.Name = r.resolve(s, v.Name.Base)
		return v, nil
	case *ir.InfixOp:
		l, err := r.renameExpr(v.L, s)
		if err != nil {
			return nil, err
		}
		rr, err := r.renameExpr(v.R, s)
		if err != nil {
			return nil, err
		}
		v.L, v.R = l, rr
		return v, nil
	case *ir.PrefixOp:
		x, err := r.renameExpr(v.X, s)
		if err != nil {
			return nil, err
		}
		v.X = x
		return v, nil
	case *ir.Switch:
		cond, err := r.renameExpr(v.Cond, s)
		if err != nil {
			return nil, err
		}
		t, err := r.renameExpr(v.IfTrue, s)
		if err != nil {
			return nil, err
		}
		f, err := r.renameExpr(v.IfFalse, s)
		if err != nil {
			return nil, err
		}
		v.Cond, v.IfTrue, v.IfFalse = cond, t, f
		return v, nil
	case *ir.Call:
		for i, a := range v.Args {
			renamed, err := r.renameExpr(a, s)
			if err != nil {
				return nil, err
			}
			v.Args[i] = renamed
		}
		return v, nil
	case *ir.ArrayInline:
		for i, el := range v.Elems {
			renamed, err := r.renameExpr(el, s)
			if err != nil {
				return nil, err
			}
			v.Elems[i] = renamed
		}
		return v, nil
	case *ir.Access:
		v.Base = r.resolve(s, v.Base.Base)
		for i, step := range v.Path {
			if step.Kind == ir.AccessIndex {
				renamed, err := r.renameExpr(step.Index, s)
				if err != nil {
					return nil, err
				}
				v.Path[i].Index = renamed
			}
		}
		return v, nil
	case *ir.Update:
		v.Base = r.resolve(s, v.Base.Base)
		for i, step := range v.Path {
			if step.Kind == ir.AccessIndex {
				renamed, err := r.renameExpr(step.Index, s)
				if err != nil {
					return nil, err
				}
				v.Path[i].Index = renamed
			}
		}
		rhs, err := r.renameExpr(v.RHS, s)
		if err != nil {
			return nil, err
		}
		v.RHS = rhs
		return v, nil
	default:
		return nil, &Error{Span: e.Metadata().Span, Message: fmt.Sprintf("unique-name pass: unhandled expression type %T", e)}
	}
}
