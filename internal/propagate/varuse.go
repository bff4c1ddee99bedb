package propagate

import (
	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
)

// BlockUse is the per-block union of its statements' variable-use sets
// (spec §4.9: "also computed per-block as the unions of its statements'
// sets").
type BlockUse struct {
	Index int
	Use   *ir.VarUse
}

// CacheVariableUse runs spec §4.9's final pass: it fills every statement's
// and expression's Meta.Use (via ir.CacheStmtUse/CacheExprUse, which carry
// the §4.1 classification rules) and returns the per-block unions. It must
// run after PropagateKinds, since classifying a write as local vs.
// component depends on Meta.VarKind.
func CacheVariableUse(cfg *cfgbuild.CFG) []BlockUse {
	out := make([]BlockUse, 0, len(cfg.Blocks))
	for _, b := range cfg.Blocks {
		blockUse := ir.NewVarUse()
		for _, s := range b.Stmts {
			blockUse.Merge(ir.CacheStmtUse(s))
		}
		out = append(out, BlockUse{Index: b.Index, Use: blockUse})
	}
	return out
}
