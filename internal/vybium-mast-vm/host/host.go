// Package host defines the capability set the execution driver calls out
// to: resolving External/Dyn/DynCall targets, looking up debug labels, and
// handling events by returning a declarative list of advice mutations
// instead of mutating the advice provider directly.
package host

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/mast"
)

// Host is the capability set an execution driver requires from its
// embedder. A minimal embedder that never uses External nodes, never needs
// debug labels, and never raises events can implement every method as a
// one-line "not supported" stub.
type Host interface {
	// GetMastForest resolves the forest containing the node with the
	// given digest, for External/Dyn/DynCall dispatch across forest
	// boundaries. ok is false if no such forest is known to the host.
	GetMastForest(digest field.Word) (forest *mast.Forest, ok bool)

	// GetLabelAndSourceFile returns debug information for a node, used
	// only to enrich ExecutionSiteContext on failure.
	GetLabelAndSourceFile(id mast.NodeId) (label, sourceFile string)

	// OnEvent handles a sys_event raised by the running program and
	// returns the advice-provider mutations it should apply as a result.
	OnEvent(eventID uint32, stackTop []field.Felt) ([]AdviceMutation, error)

	// GetPrecompileCommitment returns the commitment a log_precompile
	// call should absorb into the precompile transcript for the given
	// request tag and arguments digest.
	GetPrecompileCommitment(tag field.Felt, argsDigest field.Word) (field.Word, error)
}

// MutationKind tags which kind of advice-provider change a mutation
// describes.
type MutationKind uint8

const (
	MutationPushStack MutationKind = iota
	MutationInsertMapEntry
	MutationMerkleMerge
	// MutationPushStackWord pushes a whole word at once (PushWordValue).
	MutationPushStackWord
	// MutationExtendStack pushes a run of elements at once (ExtendValues),
	// in listed order (ExtendValues[0] ends up deepest).
	MutationExtendStack
	// MutationMerkleUpdate replaces a leaf and inserts every recomputed
	// ancestor, mirroring advice.MerkleStore.SetPath.
	MutationMerkleUpdate
)

// AdviceMutation is a declarative record of one change to apply to the
// advice provider, returned by Host.OnEvent rather than applied by the
// host directly — keeping the provider's invariants (unique map keys,
// LIFO stack ordering) enforced in one place.
type AdviceMutation struct {
	Kind MutationKind

	// MutationPushStack
	PushValue field.Felt

	// MutationPushStackWord
	PushWordValue field.Word

	// MutationExtendStack
	ExtendValues []field.Felt

	// MutationInsertMapEntry
	MapKey    field.Word
	MapValues []field.Felt

	// MutationMerkleMerge: the host supplies an already-built store's
	// nodes as parallel left/right/parent slices instead of a *advice.MerkleStore
	// to avoid a host->advice package dependency; the driver reconstructs
	// entries from these.
	MerkleLefts, MerkleRights, MerkleParents []field.Word

	// MutationMerkleUpdate: replace the leaf at MerkleUpdateIndex (depth
	// MerkleUpdateDepth) under MerkleUpdateRoot with MerkleUpdateNewLeaf,
	// given the sibling path MerkleUpdateSiblings.
	MerkleUpdateRoot     field.Word
	MerkleUpdateIndex    uint64
	MerkleUpdateDepth    uint8
	MerkleUpdateNewLeaf  field.Word
	MerkleUpdateSiblings []field.Word
}
