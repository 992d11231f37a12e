package field

// NonResidue is the quadratic non-residue used to build GF(P^2) = GF(P)[X]/(X^2 - NonResidue).
const NonResidue uint64 = 7

// Felt2 is an element a + b*X of the quadratic extension field.
type Felt2 struct {
	A0, A1 Felt
}

// NewFelt2 builds a + b*X.
func NewFelt2(a0, a1 Felt) Felt2 { return Felt2{A0: a0, A1: a1} }

// Zero2 is the additive identity of the extension field.
func Zero2() Felt2 { return Felt2{} }

// One2 is the multiplicative identity of the extension field.
func One2() Felt2 { return Felt2{A0: One()} }

// FromBase embeds a base-field element into the extension field.
func FromBase(a Felt) Felt2 { return Felt2{A0: a} }

// IsZero reports whether both coordinates are zero.
func (z Felt2) IsZero() bool { return z.A0.IsZero() && z.A1.IsZero() }

// Equal reports coordinate-wise equality.
func (z Felt2) Equal(w Felt2) bool { return z.A0 == w.A0 && z.A1 == w.A1 }

// Add returns z+w.
func (z Felt2) Add(w Felt2) Felt2 {
	return Felt2{A0: z.A0.Add(w.A0), A1: z.A1.Add(w.A1)}
}

// Sub returns z-w.
func (z Felt2) Sub(w Felt2) Felt2 {
	return Felt2{A0: z.A0.Sub(w.A0), A1: z.A1.Sub(w.A1)}
}

// Neg returns -z.
func (z Felt2) Neg() Felt2 {
	return Felt2{A0: z.A0.Neg(), A1: z.A1.Neg()}
}

// Mul returns z*w using the non-residue reduction X^2 = NonResidue.
func (z Felt2) Mul(w Felt2) Felt2 {
	nonRes := New(NonResidue)
	a0 := z.A0.Mul(w.A0).Add(nonRes.Mul(z.A1.Mul(w.A1)))
	a1 := z.A0.Mul(w.A1).Add(z.A1.Mul(w.A0))
	return Felt2{A0: a0, A1: a1}
}

// MulBase scales z by a base-field element.
func (z Felt2) MulBase(c Felt) Felt2 {
	return Felt2{A0: z.A0.Mul(c), A1: z.A1.Mul(c)}
}

// Conjugate returns a0 - a1*X.
func (z Felt2) Conjugate() Felt2 {
	return Felt2{A0: z.A0, A1: z.A1.Neg()}
}

// norm returns a0^2 - NonResidue*a1^2, the base-field norm of z.
func (z Felt2) norm() Felt {
	nonRes := New(NonResidue)
	return z.A0.Square().Sub(nonRes.Mul(z.A1.Square()))
}

// Inv returns the multiplicative inverse of z. Inv of the zero element
// returns the zero element, consistent with Felt.Inv.
func (z Felt2) Inv() Felt2 {
	if z.IsZero() {
		return Zero2()
	}
	nInv := z.norm().Inv()
	conj := z.Conjugate()
	return Felt2{A0: conj.A0.Mul(nInv), A1: conj.A1.Mul(nInv)}
}

// Square returns z*z.
func (z Felt2) Square() Felt2 { return z.Mul(z) }
