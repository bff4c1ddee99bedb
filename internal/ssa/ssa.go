// Package ssa implements spec §4.6: the two-phase SSA transformer
// (worklist phi-insertion over dominance frontiers, then dominator-tree
// pre-order renaming), grounded on internal/mir/ssa/ssa.go's split between
// an insertion pass and a renaming pass driven by the same dominator tree,
// and resolved against circomspect's own control_flow_graph/ssa.rs
// (_examples/original_source) wherever spec.md left an algorithmic detail
// implicit, in particular the per-branch environment cloning in phase 2.
package ssa

import (
	"fmt"

	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/domtree"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
)

// Error reports an SSA-construction failure: an undefined-variable read
// that phase 2 could not resolve to any reaching definition (spec §4.6
// phase 2 step 1: "fail with undefined-variable if unseen").
type Error struct {
	Name ir.Name
	Span ir.Node
}

func (e *Error) Error() string {
	return fmt.Sprintf("ssa: undefined variable %q", e.Name.Base)
}

// Transform rewrites cfg's local-variable names into SSA form in place,
// using tree (already built over cfg by internal/domtree) to drive both
// phases, and returns the same *cfgbuild.CFG for convenience chaining.
func Transform(cfg *cfgbuild.CFG, tree *domtree.Tree) (*cfgbuild.CFG, error) {
	insertPhis(cfg, tree)
	if err := rename(cfg, tree); err != nil {
		return nil, err
	}
	finalizeDecls(cfg)
	return cfg, nil
}

// insertPhis is phase 1: a worklist over blocks, inserting an empty
// phi-statement for every local name written by a block at every block in
// that block's dominance frontier, re-queuing newly-touched blocks because
// inserting a phi is itself a write.
func insertPhis(cfg *cfgbuild.CFG, tree *domtree.Tree) {
	hasPhi := make([]map[string]bool, cfg.NumBlocks())
	for i := range hasPhi {
		hasPhi[i] = map[string]bool{}
	}

	worklist := make([]int, cfg.NumBlocks())
	queued := make([]bool, cfg.NumBlocks())
	for i := range worklist {
		worklist[i] = i
		queued[i] = true
	}

	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]
		queued[b] = false

		for _, name := range localsWrittenIn(cfg.Block(b)) {
			base := name.Unversioned()
			for _, f := range tree.DominanceFrontier(b) {
				if hasPhi[f][base.Key()] {
					continue
				}
				prependPhi(cfg.Block(f), base)
				hasPhi[f][base.Key()] = true
				if !queued[f] {
					queued[f] = true
					worklist = append(worklist, f)
				}
			}
		}
	}
}

// localsWrittenIn scans a block's statements directly (rather than relying
// on the variable-use cache, which has not run yet at this point in the
// pipeline — spec §4.9 explicitly runs after SSA and propagation).
func localsWrittenIn(b *cfgbuild.Block) []ir.Name {
	var out []ir.Name
	seen := map[string]bool{}
	add := func(n ir.Name) {
		k := n.Unversioned().Key()
		if !seen[k] {
			seen[k] = true
			out = append(out, n)
		}
	}
	for _, s := range b.Stmts {
		if sub, ok := s.(*ir.Substitution); ok && sub.Kind == ir.AssignLocalOrComponent {
			if sub.Meta.VarKind == nil || sub.Meta.VarKind.Kind == ir.KindLocal {
				add(sub.Target)
			}
		}
	}
	return out
}

func prependPhi(b *cfgbuild.Block, name ir.Name) {
	phiStmt := &ir.Substitution{
		Target: name,
		Kind:   ir.AssignLocalOrComponent,
		RHS:    &ir.Phi{},
	}
	b.Stmts = append([]ir.Stmt{phiStmt}, b.Stmts...)
}

// env is phase 2's scoped renaming environment: current per-base-name SSA
// version, chained to the enclosing dominator-tree scope so sibling
// branches never observe each other's versions (spec §4.6 phase 2 step 3).
type env struct {
	versions map[string]int
	parent   *env
}

func newEnv(parent *env) *env {
	return &env{versions: map[string]int{}, parent: parent}
}

func (e *env) get(base string) (int, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.versions[base]; ok {
			return v, true
		}
	}
	return 0, false
}

func (e *env) set(base string, v int) {
	e.versions[base] = v
}

// rename is phase 2: a pre-order dominator-tree walk with a global version
// counter per base name, recording at each join block's phi-statements the
// version reaching it along each CFG predecessor edge.
func rename(cfg *cfgbuild.CFG, tree *domtree.Tree) error {
	counter := map[string]int{}
	nextVersion := func(base string) int {
		v := counter[base]
		counter[base]++
		return v
	}

	root := newEnv(nil)
	for _, p := range cfg.Params {
		root.set(p.Unversioned().Key(), 0)
		// Parameters hold version 0, so the first write to one gets version 1.
		counter[p.Unversioned().Key()] = 1
	}

	// phiArgDone tracks, per (block, predecessor) pair, whether that
	// predecessor already contributed an argument to this block's phis —
	// a block can be visited with its predecessors walked in any order
	// since the dominator-tree walk does not follow CFG edges directly.
	phiArgDone := map[[2]int]bool{}

	var walk func(b int, e *env) error
	walk = func(b int, e *env) error {
		block := cfg.Block(b)
		for _, s := range block.Stmts {
			if sub, phi, ok := ir.IsPhiStatement(s); ok {
				key := sub.Target.Unversioned().Key()
				v := nextVersion(key)
				sub.Target = sub.Target.WithVersion(v)
				e.set(key, v)
				_ = phi
				continue
			}
			if err := renameStmt(s, e, nextVersion); err != nil {
				return err
			}
		}

		for _, succ := range block.Succs {
			key := [2]int{succ, b}
			if phiArgDone[key] {
				continue
			}
			phiArgDone[key] = true
			for _, s := range cfg.Block(succ).Stmts {
				sub, phi, ok := ir.IsPhiStatement(s)
				if !ok {
					continue
				}
				unver := sub.Target.Unversioned()
				v, found := e.get(unver.Key())
				if !found {
					continue
				}
				phi.Args = append(phi.Args, unver.WithVersion(v))
			}
		}

		for _, child := range tree.DominatorSuccessors(b) {
			if err := walk(child, newEnv(e)); err != nil {
				return err
			}
		}
		return nil
	}

	return walk(0, root)
}

func renameStmt(s ir.Stmt, e *env, nextVersion func(string) int) error {
	switch st := s.(type) {
	case *ir.Declaration:
		return nil
	case *ir.Substitution:
		// An indexed write lifts to an *ir.Update RHS (spec §4.2), whose own
		// case below renames the path's index expressions and reads the
		// base's pre-write version; a plain write has a plain RHS.
		if err := renameExpr(st.RHS, e); err != nil {
			return err
		}
		if st.Kind == ir.AssignLocalOrComponent && (st.Meta.VarKind == nil || st.Meta.VarKind.Kind == ir.KindLocal) {
			key := st.Target.Unversioned().Key()
			v := nextVersion(key)
			st.Target = st.Target.WithVersion(v)
			e.set(key, v)
		}
		return nil
	case *ir.IfHeader:
		return renameExpr(st.Cond, e)
	case *ir.Return:
		if st.Value != nil {
			return renameExpr(st.Value, e)
		}
		return nil
	case *ir.ConstraintEquality:
		if err := renameExpr(st.LHS, e); err != nil {
			return err
		}
		return renameExpr(st.RHS, e)
	case *ir.LogCall:
		return renameExpr(st.Arg, e)
	case *ir.Assert:
		return renameExpr(st.Arg, e)
	default:
		return fmt.Errorf("ssa: unhandled statement type %T", s)
	}
}

func renameExpr(ex ir.Expr, e *env) error {
	switch v := ex.(type) {
	case *ir.Number:
		return nil
	case *ir.VariableRead:
		ver, ok := e.get(v.Name.Unversioned().Key())
		if !ok {
			return &Error{Name: v.Name}
		}
		v.Name = v.Name.WithVersion(ver)
		return nil
	case *ir.InfixOp:
		if err := renameExpr(v.L, e); err != nil {
			return err
		}
		return renameExpr(v.R, e)
	case *ir.PrefixOp:
		return renameExpr(v.X, e)
	case *ir.Switch:
		if err := renameExpr(v.Cond, e); err != nil {
			return err
		}
		if err := renameExpr(v.IfTrue, e); err != nil {
			return err
		}
		return renameExpr(v.IfFalse, e)
	case *ir.Call:
		for _, a := range v.Args {
			if err := renameExpr(a, e); err != nil {
				return err
			}
		}
		return nil
	case *ir.ArrayInline:
		for _, el := range v.Elems {
			if err := renameExpr(el, e); err != nil {
				return err
			}
		}
		return nil
	case *ir.Access:
		for _, step := range v.Path {
			if step.Kind == ir.AccessIndex {
				if err := renameExpr(step.Index, e); err != nil {
					return err
				}
			}
		}
		// Component/signal bases are not versioned; only a Kind check would
		// tell them apart from locals, and type propagation has not run yet,
		// so conservatively only rewrite when a binding exists.
		if ver, ok := e.get(v.Base.Unversioned().Key()); ok {
			v.Base = v.Base.WithVersion(ver)
		}
		return nil
	case *ir.Update:
		for _, step := range v.Path {
			if step.Kind == ir.AccessIndex {
				if err := renameExpr(step.Index, e); err != nil {
					return err
				}
			}
		}
		if err := renameExpr(v.RHS, e); err != nil {
			return err
		}
		// Base names the aggregate's value just before this write (spec
		// §3.3: "the new value of the aggregate"); it must resolve to the
		// version reaching here, not the fresh version the enclosing
		// Substitution's Target is about to receive. Same conservative
		// not-found handling as Access above.
		if ver, ok := e.get(v.Base.Unversioned().Key()); ok {
			v.Base = v.Base.WithVersion(ver)
		}
		return nil
	default:
		return fmt.Errorf("ssa: unhandled expression type %T", ex)
	}
}

// finalizeDecls implements spec §4.6's finalization: one declaration per
// local version actually used, signals/components keep a single entry, and
// parameters are promoted to version 0.
func finalizeDecls(cfg *cfgbuild.CFG) {
	newDecls := map[string]*cfgbuild.DeclEntry{}
	for _, entry := range cfg.Decls {
		if entry.Kind != ir.KindLocal {
			newDecls[entry.Name.Key()] = entry
		}
	}
	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			if sub, ok := s.(*ir.Substitution); ok && sub.Kind == ir.AssignLocalOrComponent {
				if old, ok := cfg.Decls[sub.Target.Unversioned().Key()]; ok && old.Kind == ir.KindLocal {
					cp := *old
					cp.Name = sub.Target
					newDecls[sub.Target.Key()] = &cp
				}
			}
		}
	}
	for i, p := range cfg.Params {
		unver := p.Unversioned()
		cfg.Params[i] = p.WithVersion(0)
		if old, ok := cfg.Decls[unver.Key()]; ok {
			cp := *old
			cp.Name = cfg.Params[i]
			newDecls[cfg.Params[i].Key()] = &cp
		}
	}
	cfg.Decls = newDecls
}
