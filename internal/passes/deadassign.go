package passes

import (
	"fmt"

	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/facade"
	"github.com/circomspect-lang/circomspect-go/internal/ir"
	"github.com/circomspect-lang/circomspect-go/internal/report"
)

// DeadAssign flags a local SSA version that is written but never read
// anywhere in the definition, grounded on dead_assignments.rs. It relies
// entirely on the variable-use cache (spec §4.9): a local's read set
// already folds in phi-argument reads via AllLocalsRead, matching the
// original's "look through phis" treatment of liveness.
func DeadAssign(ctx *facade.Context, cfg *cfgbuild.CFG) report.Collection {
	type write struct {
		name ir.Name
		span ir.Node
	}
	var writes []write
	read := ir.NewNameSet()

	for _, b := range cfg.Blocks {
		for _, s := range b.Stmts {
			if sub, ok := s.(*ir.Substitution); ok {
				isLocal := sub.Meta.VarKind == nil || sub.Meta.VarKind.Kind == ir.KindLocal
				if isLocal && sub.Kind == ir.AssignLocalOrComponent {
					writes = append(writes, write{name: sub.Target, span: s})
				}
			}
			if s.Metadata().Use != nil {
				for _, n := range s.Metadata().Use.AllLocalsRead() {
					read.Add(n)
				}
			}
		}
	}

	var out report.Collection
	for _, w := range writes {
		if read.Has(w.name) {
			continue
		}
		span := w.span.Metadata().Span
		out = append(out, report.New(
			report.SeverityWarning,
			"circom-dead-assignment",
			report.CategoryDeadAssignment,
			fmt.Sprintf("value assigned to %q is never read", w.name.Base),
		).WithPrimary(span.File, span, "dead assignment"))
	}
	return out
}
