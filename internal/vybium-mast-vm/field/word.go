package field

// Word is a 4-element digest/value group, the native unit the Merkle
// store, memory double-word view, and RPO digest all traffic in.
type Word [4]Felt

// ZeroWord is the all-zero word.
func ZeroWord() Word { return Word{} }

// Equal reports element-wise equality.
func (w Word) Equal(other Word) bool {
	return w[0] == other[0] && w[1] == other[1] && w[2] == other[2] && w[3] == other[3]
}

// IsZero reports whether every element is zero.
func (w Word) IsZero() bool {
	return w[0].IsZero() && w[1].IsZero() && w[2].IsZero() && w[3].IsZero()
}

// Bytes encodes the word as 32 little-endian bytes, element 0 first.
func (w Word) Bytes() [32]byte {
	var out [32]byte
	for i, e := range w {
		b := e.Bytes()
		copy(out[i*8:(i+1)*8], b[:])
	}
	return out
}

// WordFromBytes decodes 32 little-endian bytes into a Word.
func WordFromBytes(b [32]byte) Word {
	var w Word
	for i := range w {
		var eb [8]byte
		copy(eb[:], b[i*8:(i+1)*8])
		w[i] = FromBytes(eb)
	}
	return w
}

// WordFromSlice copies 4 elements from a slice into a Word. Panics if the
// slice is not exactly length 4; callers operate on fixed-size stack/memory
// chunks so this is a programmer error, not a runtime data condition.
func WordFromSlice(s []Felt) Word {
	if len(s) != 4 {
		panic("field: WordFromSlice requires exactly 4 elements")
	}
	return Word{s[0], s[1], s[2], s[3]}
}

// Slice returns the word's elements as a freshly allocated slice.
func (w Word) Slice() []Felt {
	return []Felt{w[0], w[1], w[2], w[3]}
}
