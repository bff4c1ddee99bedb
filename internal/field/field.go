// Package field models the prime-field curve selector of spec §6.1 and
// performs the modular constant folding that value propagation (spec §4.8)
// needs. Two of the three curves reduce through gnark-crypto's field-element
// types, the same library consensys/go-corset uses for its constraint system;
// Goldilocks has no public gnark-crypto field type, so it reduces through
// math/big against an explicit modulus (see DESIGN.md).
package field

import (
	"fmt"
	"math/big"

	bls12381fr "github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	bn254fr "github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Curve is one of the three prime fields the analyzer understands.
type Curve int

const (
	BN128 Curve = iota
	BLS12_381
	Goldilocks
)

func (c Curve) String() string {
	switch c {
	case BN128:
		return "BN128"
	case BLS12_381:
		return "BLS12_381"
	case Goldilocks:
		return "GOLDILOCKS"
	default:
		return "UNKNOWN"
	}
}

// ParseCurve accepts the three case-sensitive names of §6.3's -c/--curve flag.
func ParseCurve(name string) (Curve, error) {
	switch name {
	case "BN128":
		return BN128, nil
	case "BLS12_381":
		return BLS12_381, nil
	case "GOLDILOCKS":
		return Goldilocks, nil
	default:
		return 0, fmt.Errorf("field: unknown curve %q", name)
	}
}

// goldilocksModulus is 2^64 - 2^32 + 1.
var goldilocksModulus = new(big.Int).SetUint64(0xFFFFFFFF00000001)

// Element is a constant value reduced modulo the selected curve's prime. It is
// the concrete representation behind the "field-element(const)" lattice value
// of spec §4.8.
type Element struct {
	curve Curve
	bn    bn254fr.Element
	bls   bls12381fr.Element
	gold  big.Int
}

// New reduces v modulo curve's prime.
func New(curve Curve, v *big.Int) Element {
	e := Element{curve: curve}
	switch curve {
	case BN128:
		e.bn.SetBigInt(v)
	case BLS12_381:
		e.bls.SetBigInt(v)
	case Goldilocks:
		e.gold.Mod(v, goldilocksModulus)
	}
	return e
}

// Curve reports which field the element belongs to.
func (e Element) Curve() Curve { return e.curve }

// BigInt returns the element's canonical representative in [0, prime).
func (e Element) BigInt() *big.Int {
	switch e.curve {
	case BN128:
		var out big.Int
		e.bn.BigInt(&out)
		return &out
	case BLS12_381:
		var out big.Int
		e.bls.BigInt(&out)
		return &out
	default:
		out := e.gold
		return &out
	}
}

func (e Element) binop(o Element, bnOp func(z, x, y *bn254fr.Element) *bn254fr.Element, blsOp func(z, x, y *bls12381fr.Element) *bls12381fr.Element, goldOp func(z, x, y *big.Int) *big.Int) Element {
	out := Element{curve: e.curve}
	switch e.curve {
	case BN128:
		bnOp(&out.bn, &e.bn, &o.bn)
	case BLS12_381:
		blsOp(&out.bls, &e.bls, &o.bls)
	case Goldilocks:
		goldOp(&out.gold, &e.gold, &o.gold)
		out.gold.Mod(&out.gold, goldilocksModulus)
	}
	return out
}

// Add returns e+o mod the field's prime.
func (e Element) Add(o Element) Element {
	return e.binop(o,
		func(z, x, y *bn254fr.Element) *bn254fr.Element { return z.Add(x, y) },
		func(z, x, y *bls12381fr.Element) *bls12381fr.Element { return z.Add(x, y) },
		func(z, x, y *big.Int) *big.Int { return z.Add(x, y) },
	)
}

// Sub returns e-o mod the field's prime.
func (e Element) Sub(o Element) Element {
	return e.binop(o,
		func(z, x, y *bn254fr.Element) *bn254fr.Element { return z.Sub(x, y) },
		func(z, x, y *bls12381fr.Element) *bls12381fr.Element { return z.Sub(x, y) },
		func(z, x, y *big.Int) *big.Int { return z.Sub(x, y) },
	)
}

// Mul returns e*o mod the field's prime.
func (e Element) Mul(o Element) Element {
	return e.binop(o,
		func(z, x, y *bn254fr.Element) *bn254fr.Element { return z.Mul(x, y) },
		func(z, x, y *bls12381fr.Element) *bls12381fr.Element { return z.Mul(x, y) },
		func(z, x, y *big.Int) *big.Int { return z.Mul(x, y) },
	)
}

// Div returns e/o mod the field's prime. Division by zero returns the zero
// element; callers that must tell that case apart check o.IsZero() first.
func (e Element) Div(o Element) Element {
	if o.IsZero() {
		return Element{curve: e.curve}
	}
	switch e.curve {
	case BN128:
		var out Element
		out.curve = BN128
		var inv bn254fr.Element
		inv.Inverse(&o.bn)
		out.bn.Mul(&e.bn, &inv)
		return out
	case BLS12_381:
		var out Element
		out.curve = BLS12_381
		var inv bls12381fr.Element
		inv.Inverse(&o.bls)
		out.bls.Mul(&e.bls, &inv)
		return out
	default:
		inv := new(big.Int).ModInverse(&o.gold, goldilocksModulus)
		out := Element{curve: Goldilocks}
		out.gold.Mul(&e.gold, inv)
		out.gold.Mod(&out.gold, goldilocksModulus)
		return out
	}
}

// IsZero reports whether e is the field's additive identity.
func (e Element) IsZero() bool {
	switch e.curve {
	case BN128:
		return e.bn.IsZero()
	case BLS12_381:
		return e.bls.IsZero()
	default:
		return e.gold.Sign() == 0
	}
}

// Equal compares two elements of the same curve for equality.
func (e Element) Equal(o Element) bool {
	if e.curve != o.curve {
		return false
	}
	switch e.curve {
	case BN128:
		return e.bn.Equal(&o.bn)
	case BLS12_381:
		return e.bls.Equal(&o.bls)
	default:
		return e.gold.Cmp(&o.gold) == 0
	}
}

// Cmp compares the canonical big.Int representatives of e and o (used by
// value propagation to fold the ordering and equality operators).
func (e Element) Cmp(o Element) int {
	return e.BigInt().Cmp(o.BigInt())
}

func (e Element) String() string {
	return e.BigInt().String()
}
