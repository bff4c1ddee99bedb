// Package cfgbuild implements spec §4.4: walking a lifted definition's
// statement tree into a vector of basic blocks with explicit predecessor
// and successor edges, grounded on the block/edge-index style of the
// teacher's internal/mir/ssa package (which represents a function body the
// same way: a flat block slice plus int-indexed edges, not a pointer graph).
package cfgbuild

import (
	"github.com/circomspect-lang/circomspect-go/internal/ir"
	"github.com/circomspect-lang/circomspect-go/internal/lift"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

// Block is one basic block: a straight-line statement sequence plus the
// indices of its predecessor and successor blocks. Index is the block's
// permanent, creation-order identity (spec §4.4's ordering guarantee).
type Block struct {
	Index   int
	Stmts   []ir.Stmt
	Preds   []int
	Succs   []int
}

func (b *Block) addPred(i int) {
	for _, p := range b.Preds {
		if p == i {
			return
		}
	}
	b.Preds = append(b.Preds, i)
}

func (b *Block) addSucc(i int) {
	for _, s := range b.Succs {
		if s == i {
			return
		}
	}
	b.Succs = append(b.Succs, i)
}

// DeclEntry is one row of the declaration table: a name, its declaration
// site, and its kind.
type DeclEntry struct {
	Name       ir.Name
	Span       source.Span
	Kind       ir.Kind
	SignalKind ir.SignalKind
	Tags       []string
}

// CFG is a finalized control-flow graph for one definition (template or
// function), spec §3.2. Entry is always block 0.
type CFG struct {
	DefName    string
	IsTemplate bool
	Params     []ir.Name
	Blocks     []*Block
	// Decls is the declaration table of spec §4.4 rule 5 and §4.6's
	// finalization step, keyed by ir.Name.Key() so that post-SSA versioned
	// names each get their own entry.
	Decls map[string]*DeclEntry
	// Shadows carries forward the unique-name pass's shadowing events
	// (spec §4.3) so a registered pass (passes/shadowing) can surface them
	// as reports without re-running the rename pass.
	Shadows []lift.ShadowEvent
}

func newCFG(defName string, isTemplate bool, params []ir.Name) *CFG {
	return &CFG{DefName: defName, IsTemplate: isTemplate, Params: params, Decls: map[string]*DeclEntry{}}
}

func (c *CFG) newBlock() *Block {
	b := &Block{Index: len(c.Blocks)}
	c.Blocks = append(c.Blocks, b)
	return b
}

func (c *CFG) recordDecl(n ir.Name, span source.Span, kind ir.Kind, sigKind ir.SignalKind, tags []string) {
	c.Decls[n.Key()] = &DeclEntry{Name: n, Span: span, Kind: kind, SignalKind: sigKind, Tags: tags}
}

// Block returns the block at index i, or nil if out of range.
func (c *CFG) Block(i int) *Block {
	if i < 0 || i >= len(c.Blocks) {
		return nil
	}
	return c.Blocks[i]
}

// NumBlocks reports the number of blocks in the graph.
func (c *CFG) NumBlocks() int { return len(c.Blocks) }
