package exec

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/rpo"
)

// PrecompileTranscript is a running RPO sponge over every log_precompile
// call made during a run: each call absorbs [previous commitment, tag,
// new commitment] so the final digest binds the whole ordered sequence of
// precompile requests, not just their individual commitments.
type PrecompileTranscript struct {
	state      rpo.State
	commitment field.Word
	finalized  bool
}

// NewPrecompileTranscript starts an empty transcript (previous commitment
// implicitly the zero word).
func NewPrecompileTranscript() *PrecompileTranscript {
	return &PrecompileTranscript{}
}

func (t *PrecompileTranscript) absorb(elems []field.Felt) {
	for i := 0; i < len(elems); i += rpo.Rate {
		end := i + rpo.Rate
		if end > len(elems) {
			end = len(elems)
		}
		for j := i; j < end; j++ {
			t.state[j-i] = t.state[j-i].Add(elems[j])
		}
		rpo.Permute(&t.state)
	}
}

// Log absorbs one precompile request's tag and commitment, chained after
// the previously absorbed commitment, and returns the new running
// commitment.
func (t *PrecompileTranscript) Log(tag field.Felt, commitment field.Word) field.Word {
	elems := make([]field.Felt, 0, 9)
	elems = append(elems, t.commitment.Slice()...)
	elems = append(elems, tag)
	elems = append(elems, commitment.Slice()...)
	t.absorb(elems)
	t.commitment = field.Word{t.state[rpo.Rate], t.state[rpo.Rate+1], t.state[rpo.Rate+2], t.state[rpo.Rate+3]}
	return t.commitment
}

// Finalize absorbs two zero words and fixes the transcript's final digest.
// Calling Log after Finalize is a programming error.
func (t *PrecompileTranscript) Finalize() field.Word {
	var zeros [2 * 4]field.Felt
	t.absorb(zeros[:])
	t.commitment = field.Word{t.state[rpo.Rate], t.state[rpo.Rate+1], t.state[rpo.Rate+2], t.state[rpo.Rate+3]}
	t.finalized = true
	return t.commitment
}

// Commitment returns the current running (or, after Finalize, final)
// commitment.
func (t *PrecompileTranscript) Commitment() field.Word {
	return t.commitment
}
