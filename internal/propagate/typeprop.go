// Package propagate implements spec §4.7 (type/kind propagation), §4.8
// (value propagation) and wires §4.9 (variable-use caching, whose
// classification logic itself lives in ir.CacheStmtUse/CacheExprUse) into a
// per-CFG driver, grounded on the teacher's internal/haruspex/analysis
// engine/state/transfer split: a pure top-down kind pass, then a
// fixed-point lattice pass over the same block list, mirroring how the
// teacher's transfer.go separates its monotone dataflow step from the
// engine.go driver that iterates it to a fixed point.
package propagate

import (
	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
)

// PropagateKinds fills every node's Meta.VarKind field from cfg's
// declaration table (spec §4.7). It is a pure top-down walk and must run
// before both value propagation and variable-use caching, which may branch
// on a node's kind.
func PropagateKinds(cfg *cfgbuild.CFG) {
	lookup := func(n ir.Name) *ir.VarKindInfo {
		if entry, ok := cfg.Decls[n.Unversioned().Key()]; ok {
			return &ir.VarKindInfo{Kind: entry.Kind, SignalKind: entry.SignalKind, Tags: entry.Tags}
		}
		return &ir.VarKindInfo{Kind: ir.KindLocal}
	}
	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			propagateStmtKind(s, lookup)
		}
	}
}

func propagateStmtKind(s ir.Stmt, lookup func(ir.Name) *ir.VarKindInfo) {
	switch st := s.(type) {
	case *ir.Declaration:
		st.Meta.VarKind = &ir.VarKindInfo{Kind: st.Kind, SignalKind: st.SignalKind, Tags: st.Tags}
		for _, d := range st.Dims {
			propagateExprKind(d, lookup)
		}
	case *ir.Substitution:
		st.Meta.VarKind = lookup(st.Target)
		propagateExprKind(st.RHS, lookup)
	case *ir.IfHeader:
		propagateExprKind(st.Cond, lookup)
	case *ir.Return:
		if st.Value != nil {
			propagateExprKind(st.Value, lookup)
		}
	case *ir.ConstraintEquality:
		propagateExprKind(st.LHS, lookup)
		propagateExprKind(st.RHS, lookup)
	case *ir.LogCall:
		propagateExprKind(st.Arg, lookup)
	case *ir.Assert:
		propagateExprKind(st.Arg, lookup)
	}
}

func propagateExprKind(e ir.Expr, lookup func(ir.Name) *ir.VarKindInfo) {
	switch ex := e.(type) {
	case *ir.Number:
	case *ir.VariableRead:
		ex.Meta.VarKind = lookup(ex.Name)
	case *ir.InfixOp:
		propagateExprKind(ex.L, lookup)
		propagateExprKind(ex.R, lookup)
	case *ir.PrefixOp:
		propagateExprKind(ex.X, lookup)
	case *ir.Switch:
		propagateExprKind(ex.Cond, lookup)
		propagateExprKind(ex.IfTrue, lookup)
		propagateExprKind(ex.IfFalse, lookup)
	case *ir.Call:
		for _, a := range ex.Args {
			propagateExprKind(a, lookup)
		}
	case *ir.ArrayInline:
		for _, el := range ex.Elems {
			propagateExprKind(el, lookup)
		}
	case *ir.Access:
		ex.Meta.VarKind = lookup(ex.Base)
		for _, step := range ex.Path {
			if step.Kind == ir.AccessIndex {
				propagateExprKind(step.Index, lookup)
			}
		}
	case *ir.Update:
		ex.Meta.VarKind = lookup(ex.Base)
		for _, step := range ex.Path {
			if step.Kind == ir.AccessIndex {
				propagateExprKind(step.Index, lookup)
			}
		}
		propagateExprKind(ex.RHS, lookup)
	case *ir.Phi:
		if len(ex.Args) > 0 {
			ex.Meta.VarKind = lookup(ex.Args[0])
		}
	}
}
