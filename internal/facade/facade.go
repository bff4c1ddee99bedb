// Package facade implements spec §4.10: the analysis-context façade that
// pass implementations are actually written against. It is grounded on the
// teacher's internal/haruspex/analysis Engine, which plays the identical
// role of owning an on-demand, cached construction of per-definition
// analysis state and driving a registered list of passes over it; here the
// cached artifact is a CFG (spec's own term) rather than the teacher's
// dataflow facts.
package facade

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/circomspect-lang/circomspect-go/internal/astmodel"
	"github.com/circomspect-lang/circomspect-go/internal/cfgbuild"
	"github.com/circomspect-lang/circomspect-go/internal/domtree"
	"github.com/circomspect-lang/circomspect-go/internal/field"
	"github.com/circomspect-lang/circomspect-go/internal/lift"
	"github.com/circomspect-lang/circomspect-go/internal/propagate"
	"github.com/circomspect-lang/circomspect-go/internal/report"
	"github.com/circomspect-lang/circomspect-go/internal/source"
	"github.com/circomspect-lang/circomspect-go/internal/ssa"
)

// Error taxonomy (spec §7): exported sentinel values for unknown names,
// matched with errors.Is, plus the FailedToLiftError type below, matched with
// errors.As, so callers never match message text.
var (
	ErrUnknownTemplate = errors.New("unknown template")
	ErrUnknownFunction = errors.New("unknown function")
)

// FailedToLiftError wraps the underlying lift/SSA failure that caused CFG
// construction for a template or function to fail; it is cached so repeated
// requests do not re-attempt the failed build (spec §4.10, §7).
type FailedToLiftError struct {
	Name       string
	IsTemplate bool
	Err        error
}

func (e *FailedToLiftError) Error() string {
	kind := "function"
	if e.IsTemplate {
		kind = "template"
	}
	return fmt.Sprintf("failed to lift %s %q: %v", kind, e.Name, e.Err)
}

func (e *FailedToLiftError) Unwrap() error { return e.Err }

// Pass is one registered analysis pass (spec §4.10): it borrows the context
// and a finalized CFG and returns whatever reports it produced.
type Pass func(ctx *Context, cfg *cfgbuild.CFG) report.Collection

type cacheEntry struct {
	cfg      *cfgbuild.CFG
	reports  report.Collection
	buildErr error
}

// defRef names one definition in parse order, used to replay a
// deterministic (if arbitrary) iteration order across definitions (spec §5).
type defRef struct {
	name       string
	isTemplate bool
}

// Context is the façade of spec §4.10.
type Context struct {
	Lib       *source.Library
	Curve     field.Curve
	templates map[string]*astmodel.Def
	functions map[string]*astmodel.Def
	order     []defRef
	cache     map[string]*cacheEntry
	passes    []Pass
	Log       *logrus.Logger
}

// New builds a façade over a parsed file's templates and functions.
func New(lib *source.Library, curve field.Curve, file *astmodel.File) *Context {
	ctx := &Context{
		Lib:       lib,
		Curve:     curve,
		templates: file.Templates,
		functions: file.Functions,
		cache:     map[string]*cacheEntry{},
		Log:       logrus.New(),
	}
	for _, d := range file.Order {
		ctx.order = append(ctx.order, defRef{name: d.Name, isTemplate: d.Kind == astmodel.DefTemplate})
	}
	return ctx
}

// RegisterPass appends p to the driver's ordered pass list (spec §4.10:
// "the core ships an ordered list of pass functions").
func (c *Context) RegisterPass(p Pass) {
	c.passes = append(c.passes, p)
}

// IsTemplate reports whether name names a known template.
func (c *Context) IsTemplate(name string) bool {
	_, ok := c.templates[name]
	return ok
}

// IsFunction reports whether name names a known function.
func (c *Context) IsFunction(name string) bool {
	_, ok := c.functions[name]
	return ok
}

func cacheKey(isTemplate bool, name string) string {
	if isTemplate {
		return "template:" + name
	}
	return "function:" + name
}

// Template returns name's finalized CFG, building (and caching, success or
// failure) it on first access.
func (c *Context) Template(name string) (*cfgbuild.CFG, report.Collection, error) {
	return c.definition(name, true)
}

// Function returns name's finalized CFG, building (and caching, success or
// failure) it on first access.
func (c *Context) Function(name string) (*cfgbuild.CFG, report.Collection, error) {
	return c.definition(name, false)
}

func (c *Context) definition(name string, isTemplate bool) (*cfgbuild.CFG, report.Collection, error) {
	key := cacheKey(isTemplate, name)
	if entry, ok := c.cache[key]; ok {
		c.Log.WithField("definition", key).Debug("cfg cache hit")
		return entry.cfg, entry.reports, entry.buildErr
	}
	c.Log.WithField("definition", key).Debug("cfg cache miss, constructing")

	var def *astmodel.Def
	var ok bool
	if isTemplate {
		def, ok = c.templates[name]
	} else {
		def, ok = c.functions[name]
	}
	if !ok {
		if isTemplate {
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
		}
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
	}

	cfg, reports, err := c.build(def, isTemplate)
	entry := &cacheEntry{cfg: cfg, reports: reports, buildErr: err}
	c.cache[key] = entry
	if err != nil {
		c.Log.WithFields(logrus.Fields{"definition": key, "error": err}).Warn("cfg construction failed; caching failure")
	}
	return cfg, reports, err
}

// build runs the full construction pipeline (lift → cfgbuild → domtree →
// ssa → propagate) for one definition, matching the package ordering
// SPEC_FULL.md's module layout lists.
func (c *Context) build(def *astmodel.Def, isTemplate bool) (*cfgbuild.CFG, report.Collection, error) {
	var reports report.Collection

	lifted, err := lift.LiftOne(def)
	if err != nil {
		wrapped := &FailedToLiftError{Name: def.Name, IsTemplate: isTemplate, Err: err}
		reports = append(reports, report.New(report.SeverityError, "circom-lift-failed", report.CategoryLifting, wrapped.Error()))
		return nil, reports, wrapped
	}

	cfg := cfgbuild.Build(lifted)
	tree := domtree.Build(cfg)
	if _, err := ssa.Transform(cfg, tree); err != nil {
		wrapped := &FailedToLiftError{Name: def.Name, IsTemplate: isTemplate, Err: err}
		reports = append(reports, report.New(report.SeverityError, "circom-lift-failed", report.CategoryLifting, wrapped.Error()))
		return nil, reports, wrapped
	}

	propagate.PropagateKinds(cfg)
	propagate.PropagateValues(cfg, c.Curve)
	propagate.CacheVariableUse(cfg)

	return cfg, reports, nil
}

// UnderlyingStr implements spec §4.10's underlying_str: source-text
// extraction for diagnostic rendering.
func (c *Context) UnderlyingStr(span source.Span) (string, error) {
	return c.Lib.Slice(span)
}

// Run is the top-level driver of spec §5: for every known function and
// template (in parse order), take its CFG from the cache, run every
// registered pass over it, and collect reports — construction reports
// first, then pass reports in registration order.
func (c *Context) Run() report.Collection {
	var all report.Collection
	for _, ref := range c.order {
		cfg, buildReports, err := c.definition(ref.name, ref.isTemplate)
		all = append(all, buildReports...)
		if err != nil {
			continue
		}
		for _, p := range c.passes {
			all = append(all, p(c, cfg)...)
		}
	}
	return all
}
