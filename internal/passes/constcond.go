package passes

import (
	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/facade"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
	"github.com/circomspect-lang/circomspect-go/internal/report"
)

// ConstCond flags an if-header or while-header whose condition resolves to
// a known-constant boolean under value propagation (spec §4.8), grounded on
// constant_conditional.rs. This is exactly end-to-end scenario S4: a
// condition that can never take one of its two branches is almost always a
// mistake, not a deliberate pattern, in a circuit language with no runtime
// branch-folding optimizer to rely on.
func ConstCond(ctx *facade.Context, cfg *cfgbuild.CFG) report.Collection {
	var out report.Collection
	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			header, ok := s.(*ir.IfHeader)
			if !ok {
				continue
			}
			val := header.Cond.Metadata().Value
			if val == nil || val.Kind != ir.ValueBool {
				continue
			}
			span := header.Meta.Span
			branch := "false"
			if val.Bool {
				branch = "true"
			}
			out = append(out, report.New(
				report.SeverityWarning,
				"circom-constant-conditional",
				report.CategoryConstantBranch,
				"condition always evaluates to "+branch,
			).WithPrimary(span.File, span, "constant condition"))
		}
	}
	return out
}
