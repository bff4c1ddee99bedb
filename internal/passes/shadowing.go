// Package passes holds the four illustrative analysis passes SPEC_FULL.md
// §C.1 supplements onto the bare pass interface of spec.md §4.10, each
// ported from one file of _examples/original_source/program_analysis/src/.
package passes

import (
	"fmt"

	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/facade"
	"github.com/circomspect-lang/circomspect-go/internal/report"
)

// Shadowing re-surfaces the unique-name pass's shadowing events (spec
// §4.3) as warning reports, one per shadowing declaration, each carrying
// both the inner and outer declaration sites as labels. Grounded on
// shadowing_analysis.rs, which is itself a thin wrapper that asks the CFG
// for shadowing info already computed during construction — the same
// relationship this pass has to lift's unique-name pass.
func Shadowing(ctx *facade.Context, cfg *cfgbuild.CFG) report.Collection {
	var out report.Collection
	for _, ev := range cfg.Shadows {
		r := report.New(
			report.SeverityWarning,
			"circom-shadowing-variable",
			report.CategoryShadowing,
			fmt.Sprintf("declaration of %q shadows an outer declaration", ev.Base),
		).WithPrimary(ev.InnerSpan.File, ev.InnerSpan, "inner declaration").
			WithSecondary(ev.OuterSpan.File, ev.OuterSpan, "outer declaration")
		out = append(out, r)
	}
	return out
}
