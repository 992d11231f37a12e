// Package mast implements the Merkleized Abstract Syntax Tree: an arena of
// control-flow nodes addressed by small integer ids, each carrying a
// precomputed digest so two structurally identical subtrees always hash
// identically regardless of which forest built them.
package mast

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/ops"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/rpo"
)

// NodeId indexes into a Forest's arena.
type NodeId uint32

// NilNodeId marks the absence of a node (e.g. Dyn/DynCall have no static
// children to point at).
const NilNodeId NodeId = 1<<32 - 1

// Kind tags which variant a Node is.
type Kind uint8

const (
	KindBasicBlock Kind = iota
	KindJoin
	KindSplit
	KindLoop
	KindCall
	KindSysCall
	KindDyn
	KindDynCall
	KindExternal
)

// domain tags separate otherwise-identical digest inputs across node kinds.
var kindTag = map[Kind]field.Felt{
	KindBasicBlock: field.New(1),
	KindJoin:       field.New(2),
	KindSplit:      field.New(3),
	KindLoop:       field.New(4),
	KindCall:       field.New(5),
	KindSysCall:    field.New(6),
	KindDyn:        field.New(7),
	KindDynCall:    field.New(8),
	KindExternal:   field.New(9),
}

// Node is one MAST node. Only the fields relevant to Kind are meaningful;
// this mirrors the teacher's flat-struct-plus-enum style rather than an
// interface per variant, keeping dispatch a single switch instead of a
// type switch over N concrete types.
type Node struct {
	Kind Kind

	// KindBasicBlock
	Ops []ops.Instr

	// KindJoin: Left/Right are the two branches executed in sequence.
	// KindSplit: Left is the "if" branch, Right the "else" branch.
	// KindLoop: Left is the loop body; Right is unused.
	// KindCall, KindSysCall: Left is the callee.
	Left, Right NodeId

	// KindExternal: the digest of the node this one stands in for, to be
	// resolved against a forest the host supplies.
	ExternalDigest field.Word

	// Label is an optional human-readable name. The driver does not read
	// it; error-context labels come from the host's GetLabelAndSourceFile.
	Label string

	digest field.Word
}

// Digest returns the node's precomputed MAST digest.
func (n *Node) Digest() field.Word {
	return n.digest
}

func basicBlockDigest(operations []ops.Instr) field.Word {
	elems := make([]field.Felt, 0, len(operations)*2+1)
	elems = append(elems, kindTag[KindBasicBlock])
	for _, instr := range operations {
		elems = append(elems, field.New(uint64(instr.Op)), instr.Imm)
	}
	return rpo.HashElements(elems)
}

func unaryDigest(kind Kind, child field.Word) field.Word {
	elems := make([]field.Felt, 0, 5)
	elems = append(elems, kindTag[kind])
	elems = append(elems, child.Slice()...)
	return rpo.HashElements(elems)
}

func binaryDigest(kind Kind, left, right field.Word) field.Word {
	elems := make([]field.Felt, 0, 9)
	elems = append(elems, kindTag[kind])
	elems = append(elems, left.Slice()...)
	elems = append(elems, right.Slice()...)
	return rpo.HashElements(elems)
}

func nullaryDigest(kind Kind) field.Word {
	return rpo.HashElements([]field.Felt{kindTag[kind]})
}
