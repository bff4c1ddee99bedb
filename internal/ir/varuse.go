package ir

// CacheStmtUse fills s's Meta.Use (and recursively every subexpression's
// Meta.Use) per the classification rules of spec §4.1. It must run after
// type propagation (spec §4.7) has populated VarKind on every variable
// reference, since distinguishing a local write from a component write
// requires the declared kind.
func CacheStmtUse(s Stmt) *VarUse {
	use := NewVarUse()
	switch st := s.(type) {
	case *Declaration:
		// A declaration introduces names but is not itself a read or write.
	case *Substitution:
		use.Merge(CacheExprUse(st.RHS))
		switch st.Kind {
		case AssignLocalOrComponent:
			kind := KindLocal
			if st.Meta.VarKind != nil {
				kind = st.Meta.VarKind.Kind
			}
			if kind == KindComponent || kind == KindAnonComponent {
				use.ComponentsWritten.Add(st.Target)
			} else {
				use.LocalsWritten.Add(st.Target)
			}
		case AssignSignal, AssignConstraintSignal:
			use.SignalsWritten.Add(st.Target)
		}
	case *IfHeader:
		use.Merge(CacheExprUse(st.Cond))
	case *Return:
		if st.Value != nil {
			use.Merge(CacheExprUse(st.Value))
		}
	case *ConstraintEquality:
		use.Merge(CacheExprUse(st.LHS))
		use.Merge(CacheExprUse(st.RHS))
	case *LogCall:
		use.Merge(CacheExprUse(st.Arg))
	case *Assert:
		use.Merge(CacheExprUse(st.Arg))
	}
	s.Metadata().Use = use
	return use
}

// CacheExprUse fills e's Meta.Use and returns it.
func CacheExprUse(e Expr) *VarUse {
	use := NewVarUse()
	switch ex := e.(type) {
	case *InfixOp:
		use.Merge(CacheExprUse(ex.L))
		use.Merge(CacheExprUse(ex.R))
	case *PrefixOp:
		use.Merge(CacheExprUse(ex.X))
	case *Switch:
		use.Merge(CacheExprUse(ex.Cond))
		use.Merge(CacheExprUse(ex.IfTrue))
		use.Merge(CacheExprUse(ex.IfFalse))
	case *VariableRead:
		addRead(use, ex.Name, kindOf(ex.Meta.VarKind))
	case *Number:
		// no references
	case *Call:
		for _, arg := range ex.Args {
			use.Merge(CacheExprUse(arg))
		}
	case *ArrayInline:
		for _, el := range ex.Elems {
			use.Merge(CacheExprUse(el))
		}
	case *Access:
		for _, step := range ex.Path {
			if step.Kind == AccessIndex {
				use.Merge(CacheExprUse(step.Index))
			}
		}
		addRead(use, ex.Base, kindOf(ex.Meta.VarKind))
	case *Update:
		for _, step := range ex.Path {
			if step.Kind == AccessIndex {
				use.Merge(CacheExprUse(step.Index))
			}
		}
		use.Merge(CacheExprUse(ex.RHS))
		kind := kindOf(ex.Meta.VarKind)
		addRead(use, ex.Base, kind)
		addWrite(use, ex.Base, kind)
	case *Phi:
		for _, arg := range ex.Args {
			use.LocalsReadViaPhi.Add(arg)
		}
	}
	e.Metadata().Use = use
	return use
}

func kindOf(info *VarKindInfo) Kind {
	if info == nil {
		return KindLocal
	}
	return info.Kind
}

func addRead(use *VarUse, n Name, kind Kind) {
	switch kind {
	case KindSignal:
		use.SignalsRead.Add(n)
	case KindComponent, KindAnonComponent:
		use.ComponentsRead.Add(n)
	default:
		use.LocalsRead.Add(n)
	}
}

func addWrite(use *VarUse, n Name, kind Kind) {
	switch kind {
	case KindSignal:
		use.SignalsWritten.Add(n)
	case KindComponent, KindAnonComponent:
		use.ComponentsWritten.Add(n)
	default:
		use.LocalsWritten.Add(n)
	}
}
