package ir

import "math/big"

// Expr is the recursive expression sum type of spec §3.3.
type Expr interface {
	Node
	isExpr()
}

// AccessKind distinguishes the two step forms of an access path.
type AccessKind int

const (
	AccessIndex AccessKind = iota
	AccessMember
)

// AccessStep is one step of a non-empty access path: an array index
// expression or a component-member name.
type AccessStep struct {
	Kind   AccessKind
	Index  Expr
	Member string
}

// InfixOp is a binary operator expression, e.g. `a + b`.
type InfixOp struct {
	Meta Meta
	Op   string
	L, R Expr
}

func (e *InfixOp) isExpr()            {}
func (e *InfixOp) Metadata() *Meta    { return &e.Meta }

// PrefixOp is a unary operator expression, e.g. `-a`, `!a`.
type PrefixOp struct {
	Meta Meta
	Op   string
	X    Expr
}

func (e *PrefixOp) isExpr()         {}
func (e *PrefixOp) Metadata() *Meta { return &e.Meta }

// Switch is the ternary inline switch `cond ? ifTrue : ifFalse`.
type Switch struct {
	Meta                    Meta
	Cond, IfTrue, IfFalse Expr
}

func (e *Switch) isExpr()         {}
func (e *Switch) Metadata() *Meta { return &e.Meta }

// VariableRead is a bare variable reference with no access path (spec §4.2:
// an AST access expression with an empty path becomes this, not Access).
type VariableRead struct {
	Meta Meta
	Name Name
}

func (e *VariableRead) isExpr()         {}
func (e *VariableRead) Metadata() *Meta { return &e.Meta }

// Number is an arbitrary-precision integer literal.
type Number struct {
	Meta  Meta
	Value *big.Int
}

func (e *Number) isExpr()         {}
func (e *Number) Metadata() *Meta { return &e.Meta }

// Call is a by-name function/template call.
type Call struct {
	Meta   Meta
	Callee string
	Args   []Expr
}

func (e *Call) isExpr()         {}
func (e *Call) Metadata() *Meta { return &e.Meta }

// ArrayInline is an inline array literal `[a, b, c]`.
type ArrayInline struct {
	Meta  Meta
	Elems []Expr
}

func (e *ArrayInline) isExpr()         {}
func (e *ArrayInline) Metadata() *Meta { return &e.Meta }

// Access is an array/component access with a non-empty path.
type Access struct {
	Meta Meta
	Base Name
	Path []AccessStep
}

func (e *Access) isExpr()         {}
func (e *Access) Metadata() *Meta { return &e.Meta }

// Update expresses "the new value of the aggregate Base after writing RHS at
// Path" (spec §3.3); the lifter builds one as the RHS of a substitution whose
// target has a non-empty access path, turning it into a whole-aggregate
// assignment.
type Update struct {
	Meta Meta
	Base Name
	Path []AccessStep
	RHS  Expr
}

func (e *Update) isExpr()         {}
func (e *Update) Metadata() *Meta { return &e.Meta }

// Phi is a phi-expression: the list of versioned names merged at a join
// point (spec §4.6). Arguments start empty and are closed during SSA's
// renaming phase.
type Phi struct {
	Meta Meta
	Args []Name
}

func (e *Phi) isExpr()         {}
func (e *Phi) Metadata() *Meta { return &e.Meta }
