// Package field implements arithmetic over the 64-bit Goldilocks prime
// field p = 2^64 - 2^32 + 1 and its quadratic extension.
//
// Felt values are kept canonical (strictly less than P) at all times so
// equality is plain ==, and encoding is always little-endian over exactly
// eight bytes.
package field

import (
	"errors"
	"math/bits"
)

// P is the Goldilocks prime 2^64 - 2^32 + 1.
const P uint64 = 0xFFFFFFFF00000001

// Epsilon is 2^64 mod P, i.e. 2^32 - 1. It recurs throughout reduction
// because every carry out of a 64-bit add/mul is worth exactly Epsilon.
const Epsilon uint64 = 0xFFFFFFFF

// Felt is a single element of GF(P), always held in canonical form.
type Felt uint64

// New reduces v into canonical form.
func New(v uint64) Felt {
	if v >= P {
		v -= P
	}
	return Felt(v)
}

// ErrOutOfRange is returned by NewChecked when v >= P.
var ErrOutOfRange = errors.New("field: value is not a canonical field element (>= P)")

// NewChecked is the fallible counterpart to New: it rejects any v >= P
// instead of silently reducing it, for boundaries where the input must
// already be canonical (e.g. decoding values supplied over the wire).
func NewChecked(v uint64) (Felt, error) {
	if v >= P {
		return 0, ErrOutOfRange
	}
	return Felt(v), nil
}

// NewFromInt64 reduces a signed value, wrapping negatives around P.
func NewFromInt64(v int64) Felt {
	if v >= 0 {
		return New(uint64(v))
	}
	return Zero().Sub(New(uint64(-v)))
}

// Zero is the additive identity.
func Zero() Felt { return Felt(0) }

// One is the multiplicative identity.
func One() Felt { return Felt(1) }

// Uint64 returns the canonical representative in [0, P).
func (a Felt) Uint64() uint64 { return uint64(a) }

// IsZero reports whether a is the additive identity.
func (a Felt) IsZero() bool { return a == 0 }

// Equal reports field equality.
func (a Felt) Equal(b Felt) bool { return a == b }

// Add returns a+b mod P.
func (a Felt) Add(b Felt) Felt {
	sum, carry := bits.Add64(uint64(a), uint64(b), 0)
	if carry != 0 {
		sum, carry = bits.Add64(sum, Epsilon, 0)
		if carry != 0 {
			sum += Epsilon
		}
	}
	if sum >= P {
		sum -= P
	}
	return Felt(sum)
}

// Sub returns a-b mod P.
func (a Felt) Sub(b Felt) Felt {
	diff, borrow := bits.Sub64(uint64(a), uint64(b), 0)
	if borrow != 0 {
		diff -= Epsilon
	}
	return Felt(diff)
}

// Neg returns -a mod P.
func (a Felt) Neg() Felt {
	return Zero().Sub(a)
}

// Mul returns a*b mod P via a 128-bit product and Goldilocks-specific
// reduction: every bit above position 64 is worth Epsilon (= 2^64 mod P),
// so the high word folds back in two small corrections instead of a
// general long division.
func (a Felt) Mul(b Felt) Felt {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return reduce128(hi, lo)
}

func reduce128(xHi, xLo uint64) Felt {
	xHiHi := xHi >> 32
	xHiLo := xHi & Epsilon

	t0, borrow := bits.Sub64(xLo, xHiHi, 0)
	if borrow != 0 {
		t0 -= Epsilon
	}

	t1 := xHiLo * Epsilon

	t2, carry := bits.Add64(t0, t1, 0)
	if carry != 0 {
		t2 += Epsilon
	}
	if t2 >= P {
		t2 -= P
	}
	return Felt(t2)
}

// Square returns a*a mod P.
func (a Felt) Square() Felt { return a.Mul(a) }

// Exp returns a^e mod P by square-and-multiply. It never panics, including
// for a == 0 (0^0 is defined as 1, matching the usual convention; 0^e for
// e > 0 is 0).
func (a Felt) Exp(e uint64) Felt {
	result := One()
	base := a
	for e > 0 {
		if e&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Square()
		e >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of a via Fermat's little theorem
// (a^(P-2)). It never panics: Inv(0) == 0, matching the "inversion of zero
// leaves zero unchanged" requirement used by batch inversion.
func (a Felt) Inv() Felt {
	if a.IsZero() {
		return Zero()
	}
	return a.Exp(P - 2)
}

// Div returns a/b mod P. Div(a, 0) returns 0, consistently with Inv(0) == 0.
func (a Felt) Div(b Felt) Felt {
	return a.Mul(b.Inv())
}

// Bytes encodes a in canonical little-endian form, 8 bytes wide.
func (a Felt) Bytes() [8]byte {
	v := uint64(a)
	var out [8]byte
	for i := 0; i < 8; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out
}

// FromBytes decodes 8 little-endian bytes into a canonical Felt. Values at
// or above P are reduced rather than rejected, so any 8-byte pattern
// round-trips to some field element.
func FromBytes(b [8]byte) Felt {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return New(v)
}

// String renders the canonical decimal representative.
func (a Felt) String() string {
	return uintToString(uint64(a))
}

func uintToString(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
