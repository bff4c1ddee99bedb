package ir

import "strconv"

// Name is the variable-name triple of spec §3.1: a lexical base, an optional
// disambiguation suffix added by the unique-name pass (spec §4.3), and an
// optional SSA version added by the SSA transformer (spec §4.6). Two names
// are semantically equal iff all three components match.
type Name struct {
	Base       string
	Suffix     string
	HasSuffix  bool
	Version    int
	HasVersion bool
}

// NewName builds a bare name with no suffix or version.
func NewName(base string) Name {
	return Name{Base: base}
}

// WithSuffix returns a copy of n carrying the given disambiguation suffix.
func (n Name) WithSuffix(suffix string) Name {
	n.Suffix = suffix
	n.HasSuffix = true
	return n
}

// WithVersion returns a copy of n carrying the given SSA version.
func (n Name) WithVersion(v int) Name {
	n.Version = v
	n.HasVersion = true
	return n
}

// Bare drops both the suffix and the version, leaving only the base.
func (n Name) Bare() Name {
	return Name{Base: n.Base}
}

// Unversioned drops only the version, keeping base and suffix.
func (n Name) Unversioned() Name {
	n.Version = 0
	n.HasVersion = false
	return n
}

// Equal compares all three components.
func (n Name) Equal(o Name) bool {
	return n.Base == o.Base &&
		n.HasSuffix == o.HasSuffix && n.Suffix == o.Suffix &&
		n.HasVersion == o.HasVersion && n.Version == o.Version
}

// String is the display form: the base only, regardless of suffix/version.
// This is what end users see in diagnostics.
func (n Name) String() string {
	return n.Base
}

// Debug is the full serialization form showing all three components, used in
// tests and pretty-printers that must distinguish shadowed/versioned names.
func (n Name) Debug() string {
	s := n.Base
	if n.HasSuffix {
		s += "." + n.Suffix
	}
	if n.HasVersion {
		s += "." + strconv.Itoa(n.Version)
	}
	return s
}

// Key returns a value suitable for use as a map key uniquely identifying this
// exact (base, suffix, version) triple.
func (n Name) Key() string {
	return n.Debug()
}

// NameSet is a deterministic (insertion-order-independent) set of Names keyed
// by their full triple.
type NameSet map[string]Name

// NewNameSet builds an empty set.
func NewNameSet() NameSet {
	return make(NameSet)
}

// Add inserts n into the set.
func (s NameSet) Add(n Name) {
	s[n.Key()] = n
}

// Has reports whether n is a member.
func (s NameSet) Has(n Name) bool {
	_, ok := s[n.Key()]
	return ok
}

// Union returns a new set containing every name in s and other.
func (s NameSet) Union(other NameSet) NameSet {
	out := make(NameSet, len(s)+len(other))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Slice returns the set's members in no particular order.
func (s NameSet) Slice() []Name {
	out := make([]Name, 0, len(s))
	for _, v := range s {
		out = append(out, v)
	}
	return out
}
