// Package lift implements spec §4.2 (AST-to-IR lifting) and §4.3 (the
// unique-name pass), grounded on the two-pass lower/lower_stmt/lower_expr
// split of the teacher's internal/haruspex/liveir package: a thin
// syntax-directed translation from internal/astmodel into internal/ir,
// followed by a separate scope-tracking rename pass so that lifting itself
// stays a pure structural mapping.
package lift

import (
	"fmt"
	"math/big"

	"github.com/circomspect-lang/circomspect-go/internal/astmodel"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

// Error is returned by Lift when a definition cannot be translated into IR.
// It carries the offending span so callers can render a diagnostic (spec
// §4.2: "try_lift returns an error rather than panicking on a definition the
// lifter cannot express").
type Error struct {
	Span    source.Span
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lift: %s", e.Message)
}

// Definition is the lifted form of one astmodel.Def: a flat statement list
// (pre-CFG) plus the declaration table the unique-name pass produced.
type Definition struct {
	Name       string
	IsTemplate bool
	Params     []ir.Name
	Body       []ir.Stmt
	// Shadows is filled by the unique-name pass (spec §4.3): one entry per
	// inner declaration that shadowed an outer one, each wanting a warning
	// report with both declaration sites.
	Shadows []ShadowEvent
}

// Lift translates every definition in f into IR, running the unique-name
// pass (§4.3) on each in turn. Lift never partially succeeds for a given
// definition: either the whole definition lifts or Lift returns its Error.
func Lift(f *astmodel.File) ([]*Definition, error) {
	var out []*Definition
	for _, def := range f.Order {
		d, err := LiftOne(def)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// LiftOne lifts and uniquely renames a single definition, letting callers
// such as the façade (spec §4.10) build one CFG at a time on demand instead
// of lifting a whole file up front.
func LiftOne(def *astmodel.Def) (*Definition, error) {
	d, err := liftDef(def)
	if err != nil {
		return nil, err
	}
	return renameUnique(d, def)
}

func liftDef(def *astmodel.Def) (*Definition, error) {
	params := make([]ir.Name, 0, len(def.Params))
	for _, p := range def.Params {
		params = append(params, ir.NewName(p.Name))
	}
	body, err := liftStmts(def.Body)
	if err != nil {
		return nil, err
	}
	return &Definition{
		Name:       def.Name,
		IsTemplate: def.Kind == astmodel.DefTemplate,
		Params:     params,
		Body:       body,
	}, nil
}

func liftStmts(stmts []astmodel.Stmt) ([]ir.Stmt, error) {
	var out []ir.Stmt
	for _, s := range stmts {
		lowered, err := liftStmt(s)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered...)
	}
	return out, nil
}

// liftStmt returns a slice because If/While desugar into multiple IR
// statements once block structure is introduced (spec §4.4); lifting itself
// keeps them as single structured statements and lets cfgbuild do the
// flattening, except for BlockStmt, which has no IR representative and is
// spliced away here.
func liftStmt(s astmodel.Stmt) ([]ir.Stmt, error) {
	meta := ir.Meta{Span: s.Span()}
	switch st := s.(type) {
	case *astmodel.DeclStmt:
		names := make([]ir.Name, 0, len(st.Names))
		for _, n := range st.Names {
			names = append(names, ir.NewName(n))
		}
		dims, err := liftExprs(st.Dims)
		if err != nil {
			return nil, err
		}
		kind, sigKind := liftDeclKind(st.Kind)
		return []ir.Stmt{&ir.Declaration{
			Meta:       meta,
			Names:      names,
			Kind:       kind,
			SignalKind: sigKind,
			Tags:       append([]string(nil), st.Tags...),
			Dims:       dims,
		}}, nil
	case *astmodel.SubstStmt:
		rhs, err := liftExpr(st.RHS)
		if err != nil {
			return nil, err
		}
		steps, err := liftAccessPath(st.Target.Path)
		if err != nil {
			return nil, err
		}
		target := ir.NewName(st.Target.Name)
		// A non-empty access path means this write reaches into an
		// aggregate, not the bare name (spec §4.2): the RHS becomes an
		// Update carrying the path, so the base's prior value is read
		// before the new SSA version is written (spec §3.3/§4.1).
		if len(steps) > 0 {
			rhs = &ir.Update{Meta: meta, Base: target, Path: steps, RHS: rhs}
		}
		return []ir.Stmt{&ir.Substitution{
			Meta:   meta,
			Target: target,
			Kind:   liftAssignKind(st.Op),
			RHS:    rhs,
		}}, nil
	case *astmodel.IfStmt:
		cond, err := liftExpr(st.Cond)
		if err != nil {
			return nil, err
		}
		thenBody, err := liftStmts(st.Then)
		if err != nil {
			return nil, err
		}
		var elseBody []ir.Stmt
		hasElse := st.Else != nil
		if hasElse {
			elseBody, err = liftStmts(st.Else)
			if err != nil {
				return nil, err
			}
		}
		// cfgbuild consumes rawIf markers to build the real block graph
		// (spec §4.4); here the header simply carries its lifted arms.
		return []ir.Stmt{&rawIf{meta: meta, cond: cond, thenBody: thenBody, elseBody: elseBody, hasElse: hasElse}}, nil
	case *astmodel.WhileStmt:
		cond, err := liftExpr(st.Cond)
		if err != nil {
			return nil, err
		}
		body, err := liftStmts(st.Body)
		if err != nil {
			return nil, err
		}
		return []ir.Stmt{&rawWhile{meta: meta, cond: cond, body: body}}, nil
	case *astmodel.ReturnStmt:
		var val ir.Expr
		if st.Value != nil {
			v, err := liftExpr(st.Value)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return []ir.Stmt{&ir.Return{Meta: meta, Value: val}}, nil
	case *astmodel.ConstraintEqStmt:
		lhs, err := liftExpr(st.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := liftExpr(st.RHS)
		if err != nil {
			return nil, err
		}
		return []ir.Stmt{&ir.ConstraintEquality{Meta: meta, LHS: lhs, RHS: rhs}}, nil
	case *astmodel.LogStmt:
		arg, err := liftExpr(st.Arg)
		if err != nil {
			return nil, err
		}
		return []ir.Stmt{&ir.LogCall{Meta: meta, Arg: arg}}, nil
	case *astmodel.AssertStmt:
		arg, err := liftExpr(st.Arg)
		if err != nil {
			return nil, err
		}
		return []ir.Stmt{&ir.Assert{Meta: meta, Arg: arg}}, nil
	case *astmodel.BlockStmt:
		return liftStmts(st.Stmts)
	default:
		return nil, &Error{Span: s.Span(), Message: fmt.Sprintf("cannot lift statement of type %T", s)}
	}
}

func liftDeclKind(k astmodel.VarKind) (ir.Kind, ir.SignalKind) {
	switch k {
	case astmodel.KindComponent:
		return ir.KindComponent, 0
	case astmodel.KindSignalInput:
		return ir.KindSignal, ir.SignalInput
	case astmodel.KindSignalOutput:
		return ir.KindSignal, ir.SignalOutput
	case astmodel.KindSignalIntermediate:
		return ir.KindSignal, ir.SignalIntermediate
	default:
		return ir.KindLocal, 0
	}
}

func liftAssignKind(op string) ir.AssignKind {
	switch op {
	case "<--":
		return ir.AssignSignal
	case "<==":
		return ir.AssignConstraintSignal
	default:
		return ir.AssignLocalOrComponent
	}
}

func liftExprs(exprs []astmodel.Expr) ([]ir.Expr, error) {
	var out []ir.Expr
	for _, e := range exprs {
		lowered, err := liftExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered)
	}
	return out, nil
}

func liftAccessPath(path []astmodel.AccessStep) ([]ir.AccessStep, error) {
	var out []ir.AccessStep
	for _, step := range path {
		switch step.Kind {
		case astmodel.StepIndex:
			idx, err := liftExpr(step.Index)
			if err != nil {
				return nil, err
			}
			out = append(out, ir.AccessStep{Kind: ir.AccessIndex, Index: idx})
		case astmodel.StepMember:
			out = append(out, ir.AccessStep{Kind: ir.AccessMember, Member: step.Member})
		}
	}
	return out, nil
}

// liftExpr implements spec §4.2's expression translation table, including
// the two redesign points called out there: an access expression with an
// empty path becomes ir.VariableRead rather than a degenerate ir.Access, and
// a `parallel` marker is stripped (its presence is not modeled in IR).
func liftExpr(e astmodel.Expr) (ir.Expr, error) {
	meta := ir.Meta{Span: e.Span()}
	switch ex := e.(type) {
	case *astmodel.NumberLit:
		n := new(big.Int)
		if _, ok := n.SetString(ex.Text, 10); !ok {
			return nil, &Error{Span: e.Span(), Message: fmt.Sprintf("invalid integer literal %q", ex.Text)}
		}
		return &ir.Number{Meta: meta, Value: n}, nil
	case *astmodel.InfixExpr:
		l, err := liftExpr(ex.L)
		if err != nil {
			return nil, err
		}
		r, err := liftExpr(ex.R)
		if err != nil {
			return nil, err
		}
		return &ir.InfixOp{Meta: meta, Op: ex.Op, L: l, R: r}, nil
	case *astmodel.PrefixExpr:
		x, err := liftExpr(ex.X)
		if err != nil {
			return nil, err
		}
		return &ir.PrefixOp{Meta: meta, Op: ex.Op, X: x}, nil
	case *astmodel.TernaryExpr:
		cond, err := liftExpr(ex.Cond)
		if err != nil {
			return nil, err
		}
		ifTrue, err := liftExpr(ex.IfTrue)
		if err != nil {
			return nil, err
		}
		ifFalse, err := liftExpr(ex.IfFalse)
		if err != nil {
			return nil, err
		}
		return &ir.Switch{Meta: meta, Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}, nil
	case *astmodel.CallExpr:
		args, err := liftExprs(ex.Args)
		if err != nil {
			return nil, err
		}
		return &ir.Call{Meta: meta, Callee: ex.Callee, Args: args}, nil
	case *astmodel.ArrayExpr:
		elems, err := liftExprs(ex.Elems)
		if err != nil {
			return nil, err
		}
		return &ir.ArrayInline{Meta: meta, Elems: elems}, nil
	case *astmodel.ParallelExpr:
		return liftExpr(ex.Child)
	case *astmodel.AccessExpr:
		if len(ex.Path) == 0 {
			return &ir.VariableRead{Meta: meta, Name: ir.NewName(ex.Name)}, nil
		}
		steps, err := liftAccessPath(ex.Path)
		if err != nil {
			return nil, err
		}
		return &ir.Access{Meta: meta, Base: ir.NewName(ex.Name), Path: steps}, nil
	default:
		return nil, &Error{Span: e.Span(), Message: fmt.Sprintf("cannot lift expression of type %T", e)}
	}
}

// rawIf and rawWhile are the lifter's intermediate structured-control-flow
// markers; cfgbuild.Build consumes them directly (and they never survive
// past CFG construction, so they implement ir.Stmt only so liftStmts can
// return a homogeneous slice).
type rawIf struct {
	meta                ir.Meta
	cond                ir.Expr
	thenBody, elseBody []ir.Stmt
	hasElse             bool
}

func (s *rawIf) isStmt()         {}
func (s *rawIf) Metadata() *ir.Meta { return &s.meta }

type rawWhile struct {
	meta ir.Meta
	cond ir.Expr
	body []ir.Stmt
}

func (s *rawWhile) isStmt()         {}
func (s *rawWhile) Metadata() *ir.Meta { return &s.meta }

// RawIf and RawWhile expose the markers to internal/cfgbuild without
// re-exporting the concrete types, keeping cfgbuild's type switch exhaustive
// against what lift actually produces.
func RawIf(s ir.Stmt) (cond ir.Expr, thenBody, elseBody []ir.Stmt, hasElse bool, ok bool) {
	r, ok := s.(*rawIf)
	if !ok {
		return nil, nil, nil, false, false
	}
	return r.cond, r.thenBody, r.elseBody, r.hasElse, true
}

func RawWhile(s ir.Stmt) (cond ir.Expr, body []ir.Stmt, ok bool) {
	r, ok := s.(*rawWhile)
	if !ok {
		return nil, nil, false
	}
	return r.cond, r.body, true
}
