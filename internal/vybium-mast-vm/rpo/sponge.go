package rpo

import "github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"

// Domain tags occupy the first capacity element, keeping the two hashing
// modes from ever colliding on the same permutation input.
const (
	domainMerge       = 0 // merging exactly two words (rate-filling, no padding)
	domainVariableLen = 1 // hashing a variable-length, padded element stream
)

// MergeWords hashes two 4-element words into one, the primitive the Merkle
// store uses to combine a node's two children. The two words exactly fill
// the rate, so no padding is needed.
func MergeWords(a, b field.Word) field.Word {
	var s State
	s[Rate] = field.New(domainMerge)
	copy(s[0:4], a[:])
	copy(s[4:8], b[:])
	Permute(&s)
	return field.Word{s[0], s[1], s[2], s[3]}
}

// HashElements hashes an arbitrary-length stream of field elements into a
// single digest word, padding with a single 1 followed by zeros up to the
// next multiple of Rate (so the empty input and inputs that already land on
// a rate boundary are still unambiguous).
func HashElements(input []field.Felt) field.Word {
	padded := padToRate(input)

	var s State
	s[Rate] = field.New(domainVariableLen)
	for i := 0; i < len(padded); i += Rate {
		for j := 0; j < Rate; j++ {
			s[j] = s[j].Add(padded[i+j])
		}
		Permute(&s)
	}
	return field.Word{s[0], s[1], s[2], s[3]}
}

func padToRate(input []field.Felt) []field.Felt {
	out := make([]field.Felt, len(input), len(input)+Rate)
	copy(out, input)
	out = append(out, field.One())
	for len(out)%Rate != 0 {
		out = append(out, field.Zero())
	}
	return out
}

// StreamHasher is the stream-mode sponge used to hash a contiguous memory
// region word-by-word without materializing the whole region as one slice.
type StreamHasher struct {
	state      State
	buf        []field.Felt
	squeezePos int
	squeezing  bool
}

// NewStreamHasher starts a fresh streaming sponge in variable-length mode.
func NewStreamHasher() *StreamHasher {
	h := &StreamHasher{}
	h.state[Rate] = field.New(domainVariableLen)
	return h
}

// Absorb feeds more field elements into the sponge. It must not be called
// after Squeeze has begun.
func (h *StreamHasher) Absorb(elements []field.Felt) {
	if h.squeezing {
		panic("rpo: Absorb called after Squeeze has begun")
	}
	h.buf = append(h.buf, elements...)
	for len(h.buf) >= Rate {
		for j := 0; j < Rate; j++ {
			h.state[j] = h.state[j].Add(h.buf[j])
		}
		Permute(&h.state)
		h.buf = h.buf[Rate:]
	}
}

// Finalize pads any remaining buffered elements and applies the final
// permutation, after which Squeeze may be called.
func (h *StreamHasher) Finalize() {
	padded := padToRate(h.buf)
	for i := 0; i < len(padded); i += Rate {
		for j := 0; j < Rate; j++ {
			h.state[j] = h.state[j].Add(padded[i+j])
		}
		Permute(&h.state)
	}
	h.buf = nil
	h.squeezing = true
	h.squeezePos = 0
}

// Squeeze returns the next n field elements of output, permuting again once
// the current rate portion is exhausted.
func (h *StreamHasher) Squeeze(n int) []field.Felt {
	if !h.squeezing {
		h.Finalize()
	}
	out := make([]field.Felt, 0, n)
	for len(out) < n {
		if h.squeezePos == Rate {
			Permute(&h.state)
			h.squeezePos = 0
		}
		out = append(out, h.state[h.squeezePos])
		h.squeezePos++
	}
	return out
}

// Digest squeezes exactly one word (4 elements) of output.
func (h *StreamHasher) Digest() field.Word {
	out := h.Squeeze(4)
	return field.Word{out[0], out[1], out[2], out[3]}
}
