// Package rpo implements the RPO-256 permutation (Rescue-Prime Optimized)
// over the Goldilocks field: a width-12, rate-8, capacity-4 sponge used
// both to compute 4-element digests and to absorb/squeeze arbitrary
// streams (memory hashing, the precompile transcript).
package rpo

import "github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"

const (
	// Width is the number of field elements in the permutation's state.
	Width = 12
	// Rate is the number of state elements exposed to absorb/squeeze.
	Rate = 8
	// Capacity is the number of state elements reserved for security
	// margin and domain separation; never written directly by callers.
	Capacity = 4
	// Rounds is the number of forward/inverse round pairs applied per
	// permutation call.
	Rounds = 7

	// alpha is the S-box exponent.
	alpha = 7
	// alphaInv is the exponent d with 7*d = 1 mod (P-1), used for the
	// algebraic inverse S-box half of each round (Rescue-style).
	alphaInv = 10540996611094048183
)

// State is the permutation's working state: elements [0,Rate) are the
// rate portion, [Rate,Width) the capacity portion.
type State [Width]field.Felt

var (
	fwdConstants, invConstants = generateRoundConstants(Width, Rate, Capacity, Rounds)
	mds                        = generateMDSMatrix(Width)
)

func applySbox(s *State) {
	for i := range s {
		s[i] = s[i].Exp(alpha)
	}
}

func applyInverseSbox(s *State) {
	for i := range s {
		s[i] = s[i].Exp(alphaInv)
	}
}

func applyMDS(s *State) State {
	var out State
	for i := 0; i < Width; i++ {
		acc := field.Zero()
		for j := 0; j < Width; j++ {
			acc = acc.Add(mds[i][j].Mul(s[j]))
		}
		out[i] = acc
	}
	return out
}

func addConstants(s *State, c []field.Felt) {
	for i := range s {
		s[i] = s[i].Add(c[i])
	}
}

// Permute applies the full RPO-256 permutation in place: Rounds rounds,
// each consisting of a forward (x^7) half-round followed by an inverse
// (x^alphaInv) half-round, each half-round being add-constants, S-box,
// then the MDS linear layer.
func Permute(s *State) {
	for r := 0; r < Rounds; r++ {
		addConstants(s, fwdConstants[r])
		applySbox(s)
		*s = applyMDS(s)

		addConstants(s, invConstants[r])
		applyInverseSbox(s)
		*s = applyMDS(s)
	}
}
