// Package astmodel is the external collaborator of spec §1: "the concrete
// grammar, tokenizer, and file-include resolution" are out of scope for the
// analyzer core, so this package is a minimal, un-optimized AST plus a
// recursive-descent parser for just enough of the circuit language to
// produce real test fixtures (including the end-to-end scenarios of spec
// §8.4) for the core pipeline in internal/lift, internal/cfgbuild,
// internal/domtree, internal/ssa and internal/propagate.
package astmodel

import "github.com/circomspect-lang/circomspect-go/internal/source"

// VarKind mirrors ir.Kind at the syntax level, before any pass has run.
type VarKind int

const (
	KindVar VarKind = iota
	KindComponent
	KindSignalInput
	KindSignalOutput
	KindSignalIntermediate
)

// Expr is the AST expression sum type.
type Expr interface {
	Span() source.Span
	isExpr()
}

type baseExpr struct{ span source.Span }

func (b baseExpr) Span() source.Span { return b.span }

type NumberLit struct {
	baseExpr
	Text string
}

func (NumberLit) isExpr() {}

type Ident struct {
	baseExpr
	Name string
}

func (Ident) isExpr() {}

type InfixExpr struct {
	baseExpr
	Op   string
	L, R Expr
}

func (InfixExpr) isExpr() {}

type PrefixExpr struct {
	baseExpr
	Op string
	X  Expr
}

func (PrefixExpr) isExpr() {}

type TernaryExpr struct {
	baseExpr
	Cond, IfTrue, IfFalse Expr
}

func (TernaryExpr) isExpr() {}

type CallExpr struct {
	baseExpr
	Callee string
	Args   []Expr
}

func (CallExpr) isExpr() {}

type ArrayExpr struct {
	baseExpr
	Elems []Expr
}

func (ArrayExpr) isExpr() {}

// AccessStepKind distinguishes array-index from component-member steps.
type AccessStepKind int

const (
	StepIndex AccessStepKind = iota
	StepMember
)

type AccessStep struct {
	Kind   AccessStepKind
	Index  Expr
	Member string
}

// AccessExpr is a variable name plus a (possibly empty) access path. An empty
// Path is lifted to ir.VariableRead; a non-empty Path is lifted to ir.Access
// (spec §4.2).
type AccessExpr struct {
	baseExpr
	Name string
	Path []AccessStep
}

func (AccessExpr) isExpr() {}

// ParallelExpr marks a component instantiation as `parallel`. The lifter
// strips the marker and lifts Child transparently (spec §4.2).
type ParallelExpr struct {
	baseExpr
	Child Expr
}

func (ParallelExpr) isExpr() {}

// Stmt is the AST statement sum type.
type Stmt interface {
	Span() source.Span
	isStmt()
}

type baseStmt struct{ span source.Span }

func (b baseStmt) Span() source.Span { return b.span }

// DeclStmt declares one or more names of a common kind with shared array
// dimensions, e.g. `signal input a, b[4];`.
type DeclStmt struct {
	baseStmt
	Kind  VarKind
	Names []string
	Tags  []string
	Dims  []Expr
}

func (DeclStmt) isStmt() {}

// SubstStmt is `target op rhs;` where op is one of `=`, `<--`, `<==`.
type SubstStmt struct {
	baseStmt
	Target AccessExpr
	Op     string
	RHS    Expr
}

func (SubstStmt) isStmt() {}

type IfStmt struct {
	baseStmt
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if no else-arm
}

func (IfStmt) isStmt() {}

type WhileStmt struct {
	baseStmt
	Cond Expr
	Body []Stmt
}

func (WhileStmt) isStmt() {}

type ReturnStmt struct {
	baseStmt
	Value Expr // nil for a bare `return;`
}

func (ReturnStmt) isStmt() {}

type ConstraintEqStmt struct {
	baseStmt
	LHS, RHS Expr
}

func (ConstraintEqStmt) isStmt() {}

type LogStmt struct {
	baseStmt
	Arg Expr
}

func (LogStmt) isStmt() {}

type AssertStmt struct {
	baseStmt
	Arg Expr
}

func (AssertStmt) isStmt() {}

// BlockStmt groups statements under one nested lexical scope (if/while
// bodies, else arms). It exists only in the AST: IR has no block statement,
// since block structure is the basic-block vector (spec §3.2).
type BlockStmt struct {
	baseStmt
	Stmts []Stmt
}

func (BlockStmt) isStmt() {}

// Param is a definition's parameter: a name plus its declaration location.
type Param struct {
	Name string
	Span source.Span
}

// DefKind distinguishes a template from a function (spec §3.6).
type DefKind int

const (
	DefFunction DefKind = iota
	DefTemplate
)

// Def is one function or template definition.
type Def struct {
	Name   string
	Kind   DefKind
	Params []Param
	Body   []Stmt
	span   source.Span
}

func (d *Def) Span() source.Span { return d.span }

// File is a parsed source file's set of definitions.
type File struct {
	Templates map[string]*Def
	Functions map[string]*Def
	// Order preserves source order, matching spec §5's "insertion order from parsing".
	Order []*Def
}

func NewFile() *File {
	return &File{Templates: map[string]*Def{}, Functions: map[string]*Def{}}
}

func (f *File) AddDef(d *Def) {
	f.Order = append(f.Order, d)
	if d.Kind == DefTemplate {
		f.Templates[d.Name] = d
	} else {
		f.Functions[d.Name] = d
	}
}
