package rpo

import "github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"

// grainLFSR is a deterministic constant generator: rather than ship a
// large precomputed constant table, round constants and MDS entries are
// derived from the permutation's shape (width, rate, capacity, round
// count) at package init time. Despite its name it is not a Grain LFSR:
// each step is a 64-bit xorshift (shifts 13, 7, 17).
type grainLFSR struct {
	state uint64 // xorshift state, seeded from the permutation's shape
}

func newGrainLFSR(width, rate, capacity, rounds int) *grainLFSR {
	seed := uint64(1)
	seed = seed<<16 | uint64(width)
	seed = seed<<16 | uint64(rate)
	seed = seed<<16 | uint64(capacity)
	seed = seed<<16 | uint64(rounds)
	g := &grainLFSR{state: seed ^ 0x5254_4F5F_3235_36}
	for i := 0; i < 160; i++ {
		g.step()
	}
	return g
}

func (g *grainLFSR) step() uint64 {
	x := g.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.state = x
	return x
}

// nextFieldElement draws field elements via rejection sampling until it
// finds one below the modulus, matching the real Grain-LFSR generator's
// approach to staying within the field.
func (g *grainLFSR) nextFieldElement() field.Felt {
	for {
		v := g.step()
		if v < field.P {
			return field.Felt(v)
		}
	}
}

func (g *grainLFSR) nextVector(n int) []field.Felt {
	out := make([]field.Felt, n)
	for i := range out {
		out[i] = g.nextFieldElement()
	}
	return out
}

// generateRoundConstants produces, for each of the given number of rounds,
// one width-sized vector of constants for the forward (S-box) half-round
// and one for the inverse half-round.
func generateRoundConstants(width, rate, capacity, rounds int) (fwd, inv [][]field.Felt) {
	g := newGrainLFSR(width, rate, capacity, rounds)
	fwd = make([][]field.Felt, rounds)
	inv = make([][]field.Felt, rounds)
	for r := 0; r < rounds; r++ {
		fwd[r] = g.nextVector(width)
		inv[r] = g.nextVector(width)
	}
	return fwd, inv
}

// generateMDSMatrix builds a width x width Cauchy matrix M[i][j] =
// 1/(x_i - y_j) over distinct x_i, y_j, the construction the teacher's
// generateMDSMatrix uses to get the maximum-distance-separable branch
// number guarantee needed for a secure linear layer.
func generateMDSMatrix(width int) [][]field.Felt {
	xs := make([]field.Felt, width)
	ys := make([]field.Felt, width)
	for i := 0; i < width; i++ {
		xs[i] = field.New(uint64(i))
		ys[i] = field.New(uint64(width + i))
	}
	m := make([][]field.Felt, width)
	for i := 0; i < width; i++ {
		m[i] = make([]field.Felt, width)
		for j := 0; j < width; j++ {
			diff := xs[i].Sub(ys[j])
			m[i][j] = diff.Inv()
		}
	}
	return m
}
