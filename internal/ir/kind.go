package ir

// Kind is the variable kind of spec §3.4.
type Kind int

const (
	KindLocal Kind = iota
	KindComponent
	KindAnonComponent
	KindSignal
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindComponent:
		return "component"
	case KindAnonComponent:
		return "anonymous component"
	case KindSignal:
		return "signal"
	default:
		return "unknown"
	}
}

// SignalKind is the sub-kind of a KindSignal variable.
type SignalKind int

const (
	SignalInput SignalKind = iota
	SignalOutput
	SignalIntermediate
)

func (k SignalKind) String() string {
	switch k {
	case SignalInput:
		return "input"
	case SignalOutput:
		return "output"
	case SignalIntermediate:
		return "intermediate"
	default:
		return "unknown"
	}
}

// AssignKind distinguishes the three substitution forms of spec §3.2/§3.4.
type AssignKind int

const (
	// AssignLocalOrComponent is plain `=`; the target must be local or component.
	AssignLocalOrComponent AssignKind = iota
	// AssignSignal is `<--`; the target must be a signal.
	AssignSignal
	// AssignConstraintSignal is `<==`; the target must be a signal, and also
	// imposes a constraint equality.
	AssignConstraintSignal
)

func (k AssignKind) String() string {
	switch k {
	case AssignLocalOrComponent:
		return "="
	case AssignSignal:
		return "<--"
	case AssignConstraintSignal:
		return "<=="
	default:
		return "?"
	}
}

// VarKindInfo is the "kind knowledge" metadata populated by type propagation
// (spec §4.7) on every node that refers to a variable.
type VarKindInfo struct {
	Kind       Kind
	SignalKind SignalKind
	Tags       []string
}
