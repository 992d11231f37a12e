// Package advice implements the advice provider: a LIFO element stack, a
// unique-key value map, and a content-addressed Merkle store shared across
// whatever trees the running program touches.
package advice

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/rpo"
)

type merkleChildren struct {
	left, right field.Word
}

// MerkleStore is a content-addressed table of internal nodes, keyed by
// digest. Because a node's key is always the hash of its children, two
// trees that share a subtree automatically share storage for it: merging
// two stores is just a union of their node tables.
type MerkleStore struct {
	nodes map[field.Word]merkleChildren
}

// NewMerkleStore returns an empty store.
func NewMerkleStore() *MerkleStore {
	return &MerkleStore{nodes: make(map[field.Word]merkleChildren)}
}

// InsertNode records an internal node's children and returns its digest,
// recomputing the same digest (and being a no-op) if the pair was already
// present.
func (s *MerkleStore) InsertNode(left, right field.Word) field.Word {
	parent := rpo.MergeWords(left, right)
	s.nodes[parent] = merkleChildren{left: left, right: right}
	return parent
}

// Merge folds other's nodes into s, giving the two trees shared storage
// for any common subtree.
func (s *MerkleStore) Merge(other *MerkleStore) {
	for k, v := range other.nodes {
		s.nodes[k] = v
	}
}

// Len reports the number of internal nodes currently recorded.
func (s *MerkleStore) Len() int {
	return len(s.nodes)
}

func bitsMSBFirst(index uint64, depth uint8) []int {
	bits := make([]int, depth)
	for i := 0; i < int(depth); i++ {
		shift := int(depth) - 1 - i
		bits[i] = int((index >> uint(shift)) & 1)
	}
	return bits
}

func errNodeNotFound(digest field.Word) *errsite.OperationError {
	return errsite.NewOperationError(errsite.KindInvalidMerklePath, "no node found for digest %x", digest.Bytes())
}

func errPathLengthMismatch(got, want int) *errsite.OperationError {
	return errsite.NewOperationError(errsite.KindInvalidMerklePath, "path has %d siblings, want %d", got, want)
}

// GetPath descends from root using index's bits (most significant first,
// depth bits wide), returning the leaf digest reached and the sibling
// digest collected at every level along the way.
func (s *MerkleStore) GetPath(root field.Word, index uint64, depth uint8) (leaf field.Word, siblings []field.Word, err error) {
	bits := bitsMSBFirst(index, depth)
	cur := root
	siblings = make([]field.Word, depth)
	for i, b := range bits {
		ch, ok := s.nodes[cur]
		if !ok {
			return field.Word{}, nil, errNodeNotFound(cur)
		}
		if b == 0 {
			siblings[i] = ch.right
			cur = ch.left
		} else {
			siblings[i] = ch.left
			cur = ch.right
		}
	}
	return cur, siblings, nil
}

// SetPath replaces the leaf at index under root with newLeaf, given the
// sibling path GetPath would have returned for the old leaf, and returns
// the new root. It inserts every recomputed ancestor node, so the store
// grows to contain the updated tree without disturbing the old one (old
// ancestors sharing unaffected subtrees with the new tree remain valid).
func (s *MerkleStore) SetPath(index uint64, depth uint8, newLeaf field.Word, siblings []field.Word) (field.Word, error) {
	if len(siblings) != int(depth) {
		return field.Word{}, errPathLengthMismatch(len(siblings), int(depth))
	}
	bits := bitsMSBFirst(index, depth)
	cur := newLeaf
	for i := int(depth) - 1; i >= 0; i-- {
		b := bits[i]
		sib := siblings[i]
		var left, right field.Word
		if b == 0 {
			left, right = cur, sib
		} else {
			left, right = sib, cur
		}
		cur = s.InsertNode(left, right)
	}
	return cur, nil
}

// VerifyPath reports whether replaying siblings from leaf reproduces root.
func (s *MerkleStore) VerifyPath(root field.Word, index uint64, depth uint8, leaf field.Word, siblings []field.Word) bool {
	if len(siblings) != int(depth) {
		return false
	}
	bits := bitsMSBFirst(index, depth)
	cur := leaf
	for i := int(depth) - 1; i >= 0; i-- {
		b := bits[i]
		sib := siblings[i]
		if b == 0 {
			cur = rpo.MergeWords(cur, sib)
		} else {
			cur = rpo.MergeWords(sib, cur)
		}
	}
	return cur.Equal(root)
}
