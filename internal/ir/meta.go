package ir

import (
	"github.com/circomspect-lang/circomspect-go/internal/field"
	"github.com/circomspect-lang/circomspect-go/internal/source"
)

// ValueKind is the abstract-interpretation lattice of spec §4.8: unknown
// below either a boolean constant or a field-element constant.
type ValueKind int

const (
	ValueUnknown ValueKind = iota
	ValueBool
	ValueField
)

// Value is one point in the constant-propagation lattice.
type Value struct {
	Kind  ValueKind
	Bool  bool
	Field field.Element
}

// Equal reports whether two lattice values are the same point, used by the
// fixed-point propagator (spec §4.8) to detect "no node's value meta changed".
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueBool:
		return v.Bool == o.Bool
	case ValueField:
		return v.Field.Equal(o.Field)
	default:
		return true
	}
}

// VarUse is the six-set classification of spec §4.1, cached on every node
// (and unioned per-block) by the variable-use pass (spec §4.9). Phi-argument
// reads are kept separate from direct reads so that a pass like
// dead-assignment can "look through" them, per spec §4.1's read/write rules.
type VarUse struct {
	LocalsRead        NameSet
	LocalsReadViaPhi  NameSet
	LocalsWritten     NameSet
	SignalsRead       NameSet
	SignalsWritten    NameSet
	ComponentsRead    NameSet
	ComponentsWritten NameSet
}

// NewVarUse returns an empty (but non-nil) set of uses.
func NewVarUse() *VarUse {
	return &VarUse{
		LocalsRead:        NewNameSet(),
		LocalsReadViaPhi:  NewNameSet(),
		LocalsWritten:     NewNameSet(),
		SignalsRead:       NewNameSet(),
		SignalsWritten:    NewNameSet(),
		ComponentsRead:    NewNameSet(),
		ComponentsWritten: NewNameSet(),
	}
}

// AllLocalsRead is the union of direct and phi-argument local reads: the set
// relevant to liveness, which is the view dead-assignment analysis uses.
func (u *VarUse) AllLocalsRead() NameSet {
	return u.LocalsRead.Union(u.LocalsReadViaPhi)
}

// Merge folds other's sets into u in place, used to build per-block unions
// from per-statement/per-expression caches.
func (u *VarUse) Merge(other *VarUse) {
	for k, v := range other.LocalsRead {
		u.LocalsRead[k] = v
	}
	for k, v := range other.LocalsReadViaPhi {
		u.LocalsReadViaPhi[k] = v
	}
	for k, v := range other.LocalsWritten {
		u.LocalsWritten[k] = v
	}
	for k, v := range other.SignalsRead {
		u.SignalsRead[k] = v
	}
	for k, v := range other.SignalsWritten {
		u.SignalsWritten[k] = v
	}
	for k, v := range other.ComponentsRead {
		u.ComponentsRead[k] = v
	}
	for k, v := range other.ComponentsWritten {
		u.ComponentsWritten[k] = v
	}
}

// Meta is the mutable metadata block attached to every statement and
// expression node (spec §4.1). Propagation passes fill VarKind, Value and Use
// in place after construction; no node type needs its own ad hoc metadata
// fields.
type Meta struct {
	Span    source.Span
	VarKind *VarKindInfo
	Value   *Value
	Use     *VarUse
}

// Node is implemented by every statement and expression so that propagation
// passes can reach a node's metadata uniformly.
type Node interface {
	Metadata() *Meta
}
