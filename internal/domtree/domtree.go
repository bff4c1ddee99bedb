// Package domtree implements spec §4.5: the dominator engine and its two
// derived true/false-branch region queries, grounded on the bitset-driven
// iterative data-flow style of the pack's godoctor analysis/dataflow
// package (internal/cfgbuild plays the same role there as its own CFG/AST
// walker) and on the teacher's internal/mir/ssa/dominance.go, which runs the
// same fixed-point algorithm over its own block-index CFG.
package domtree

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
)

// Tree is a finalized dominator tree plus the per-block dominance frontier,
// computed once for a CFG and then queried repeatedly by SSA construction
// and by passes.
type Tree struct {
	cfg *cfgbuild.CFG

	// dom[i] is the bitset of all dominators of block i, including i itself.
	dom []*bitset.BitSet
	// idom[i] is the index of i's immediate dominator, or -1 for the entry
	// block.
	idom []int
	// children[i] lists i's children in the dominator tree.
	children [][]int
	// frontier[i] is the dominance frontier of block i.
	frontier []*bitset.BitSet
}

// Build computes the dominator tree and dominance frontiers of cfg using
// iterative data-flow to a fixed point, which spec §4.5 explicitly permits
// ("sufficient for the expected sizes: ≤ a few hundred blocks").
func Build(cfg *cfgbuild.CFG) *Tree {
	n := cfg.NumBlocks()
	t := &Tree{cfg: cfg, idom: make([]int, n), children: make([][]int, n)}

	all := bitset.New(uint(n))
	for i := 0; i < n; i++ {
		all.Set(uint(i))
	}

	t.dom = make([]*bitset.BitSet, n)
	t.dom[0] = bitset.New(uint(n)).Set(0)
	for i := 1; i < n; i++ {
		t.dom[i] = all.Clone()
	}

	for changed := true; changed; {
		changed = false
		for i := 1; i < n; i++ {
			b := cfg.Block(i)
			var newDom *bitset.BitSet
			for _, p := range b.Preds {
				if t.dom[p] == nil {
					continue
				}
				if newDom == nil {
					newDom = t.dom[p].Clone()
				} else {
					newDom = newDom.Intersection(t.dom[p])
				}
			}
			if newDom == nil {
				newDom = bitset.New(uint(n))
			}
			newDom.Set(uint(i))
			if !newDom.Equal(t.dom[i]) {
				t.dom[i] = newDom
				changed = true
			}
		}
	}

	t.idom[0] = -1
	for i := 1; i < n; i++ {
		t.idom[i] = t.computeImmediateDominator(i)
	}
	for i := 1; i < n; i++ {
		p := t.idom[i]
		if p >= 0 {
			t.children[p] = append(t.children[p], i)
		}
	}

	t.frontier = make([]*bitset.BitSet, n)
	for i := 0; i < n; i++ {
		t.frontier[i] = bitset.New(uint(n))
	}
	for i := 0; i < n; i++ {
		b := cfg.Block(i)
		if len(b.Preds) < 2 {
			continue
		}
		for _, p := range b.Preds {
			runner := p
			for runner != t.idom[i] && runner != -1 {
				t.frontier[runner].Set(uint(i))
				runner = t.idom[runner]
			}
		}
	}

	return t
}

// computeImmediateDominator finds i's closest strict dominator: the
// dominator of i (other than i) that is dominated by every other strict
// dominator of i.
func (t *Tree) computeImmediateDominator(i int) int {
	strict := t.dom[i].Clone()
	strict.Clear(uint(i))
	best := -1
	for cand, ok := strict.NextSet(0); ok; cand, ok = strict.NextSet(cand + 1) {
		isImmediate := true
		for other, ok2 := strict.NextSet(0); ok2; other, ok2 = strict.NextSet(other + 1) {
			if other != cand && !t.dom[cand].Test(other) {
				isImmediate = false
				break
			}
		}
		if isImmediate {
			best = int(cand)
		}
	}
	return best
}

// Dominators returns the set of all blocks dominating i, including i.
func (t *Tree) Dominators(i int) []int {
	return toSlice(t.dom[i])
}

// ImmediateDominator returns i's closest strict dominator, or -1 for the
// entry block.
func (t *Tree) ImmediateDominator(i int) int {
	return t.idom[i]
}

// DominatorSuccessors returns i's children in the dominator tree.
func (t *Tree) DominatorSuccessors(i int) []int {
	return append([]int(nil), t.children[i]...)
}

// DominanceFrontier returns the dominance frontier of block i: the set of
// blocks j such that i dominates an immediate predecessor of j but does not
// strictly dominate j.
func (t *Tree) DominanceFrontier(i int) []int {
	return toSlice(t.frontier[i])
}

// Dominates reports whether i dominates j (i may equal j).
func (t *Tree) Dominates(i, j int) bool {
	return t.dom[j].Test(uint(i))
}

// StrictlyDominates reports whether i dominates j and i != j.
func (t *Tree) StrictlyDominates(i, j int) bool {
	return i != j && t.Dominates(i, j)
}

// BranchRegion computes the true-branch or false-branch region of an
// if-then-else header, per spec §4.5: the set of blocks strictly between
// successor and the meet point given by successor's dominance frontier; if
// that frontier is empty, the region is successor plus its transitive
// successors (there is no merge point reachable, e.g. every arm returns).
func (t *Tree) BranchRegion(successor int) []int {
	frontier := t.frontier[successor]
	if frontier.None() {
		return t.transitiveSuccessors(successor)
	}
	region := map[int]bool{}
	t.collectRegion(successor, frontier, region)
	out := make([]int, 0, len(region))
	for b := range region {
		out = append(out, b)
	}
	return out
}

func (t *Tree) collectRegion(b int, frontier *bitset.BitSet, region map[int]bool) {
	if frontier.Test(uint(b)) || region[b] {
		return
	}
	region[b] = true
	for _, s := range t.cfg.Block(b).Succs {
		t.collectRegion(s, frontier, region)
	}
}

func (t *Tree) transitiveSuccessors(from int) []int {
	visited := map[int]bool{}
	var walk func(int)
	walk = func(b int) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s := range t.cfg.Block(b).Succs {
			walk(s)
		}
	}
	walk(from)
	delete(visited, from)
	visited[from] = true
	out := make([]int, 0, len(visited))
	for b := range visited {
		out = append(out, b)
	}
	return out
}

func toSlice(bs *bitset.BitSet) []int {
	out := make([]int, 0, bs.Count())
	for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}
