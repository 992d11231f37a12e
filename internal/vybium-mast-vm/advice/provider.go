package advice

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
)

// Provider is the non-deterministic input side of a run: a LIFO element
// stack the program can pop from, a key-value map for bulk data (e.g.
// Merkle leaf pre-images), and the Merkle store every mtree_* operation
// shares.
type Provider struct {
	stack  []field.Felt
	values map[field.Word][]field.Felt
	Merkle *MerkleStore
}

// New returns an empty Provider, ready to be seeded via PushStack/
// InsertMapEntry before a run begins, and further mutated during the run
// by AdviceMutations the host returns from OnEvent.
func New() *Provider {
	return &Provider{
		values: make(map[field.Word][]field.Felt),
		Merkle: NewMerkleStore(),
	}
}

// PushStack pushes v onto the advice stack. Used both to seed inputs and
// to apply AdviceMutations during a run.
func (p *Provider) PushStack(v field.Felt) {
	p.stack = append(p.stack, v)
}

// PopStack pops the top element, failing if the stack is empty.
func (p *Provider) PopStack() (field.Felt, error) {
	if len(p.stack) == 0 {
		return field.Zero(), errsite.NewOperationError(errsite.KindAdviceStackEmpty, "pop from empty advice stack")
	}
	n := len(p.stack)
	v := p.stack[n-1]
	p.stack = p.stack[:n-1]
	return v, nil
}

// PopStackWord pops 4 elements, in the order PopStack would return them
// (so the first element popped becomes the word's first element).
func (p *Provider) PopStackWord() (field.Word, error) {
	var w field.Word
	for i := 0; i < 4; i++ {
		v, err := p.PopStack()
		if err != nil {
			return field.Word{}, err
		}
		w[i] = v
	}
	return w, nil
}

// InsertMapEntry records values under key. Re-inserting an existing key
// with the same values is a no-op, since keys are content addresses and a
// re-derivation of the same pre-image is expected; re-inserting with
// different values is an error, since that signals a genuine collision.
func (p *Provider) InsertMapEntry(key field.Word, values []field.Felt) error {
	if existing, exists := p.values[key]; exists {
		if !equalFelts(existing, values) {
			return errsite.NewOperationError(errsite.KindAdviceMapKeyExists, "advice map key %x already present with different values", key.Bytes())
		}
		return nil
	}
	p.values[key] = values
	return nil
}

func equalFelts(a, b []field.Felt) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GetMapEntry returns the values stored under key.
func (p *Provider) GetMapEntry(key field.Word) ([]field.Felt, error) {
	v, ok := p.values[key]
	if !ok {
		return nil, errsite.NewOperationError(errsite.KindAdviceMapKeyMissing, "advice map key %x not present", key.Bytes())
	}
	return v, nil
}

// PushStackWord pushes a word's four elements so that w[0] ends up on top
// after a matching PopStackWord — the word-granularity counterpart to
// PushStack.
func (p *Provider) PushStackWord(w field.Word) {
	for i := 3; i >= 0; i-- {
		p.PushStack(w[i])
	}
}

// StackLen reports how many elements remain on the advice stack.
func (p *Provider) StackLen() int {
	return len(p.stack)
}
