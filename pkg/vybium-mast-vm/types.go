package vybiummastvm

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/mast"
)

// Felt and Word are re-exported so callers never need to import the
// internal field package directly.
type Felt = field.Felt
type Word = field.Word

// Program is a MAST forest plus the node a run should start from.
type Program struct {
	Forest    *mast.Forest
	EntryRoot mast.NodeId
}

// NewProgram returns an empty program backed by a fresh forest.
func NewProgram() *Program {
	f := mast.NewForest()
	return &Program{Forest: f}
}

// DeclareKernelProcedure marks the node at id as a callable kernel
// procedure, reachable via sys_call.
func (p *Program) DeclareKernelProcedure(id mast.NodeId) {
	p.Forest.DeclareKernelProcedure(id)
}

// StackInputs seeds the operand stack's visible window before execution
// begins, top element first.
type StackInputs struct {
	Values []Felt
}

// MerkleNodeInput seeds one internal node of the advice provider's Merkle
// store: Left and Right are the children's digests, and the node's own
// digest (its key in the store) is their RPO merge, recomputed on seeding.
type MerkleNodeInput struct {
	Left, Right Word
}

// AdviceInputs seeds the advice provider before execution begins.
type AdviceInputs struct {
	StackValues []Felt // pushed in order, so StackValues[0] is popped last
	MapEntries  map[Word][]Felt
	MerkleNodes []MerkleNodeInput
}

// ExecutionOptions configures a run. Zero value means "no cycle limit,
// structured tracing off."
type ExecutionOptions struct {
	maxCycles uint64
	trace     bool
}

// DefaultExecutionOptions returns options with no cycle limit and tracing
// disabled.
func DefaultExecutionOptions() ExecutionOptions {
	return ExecutionOptions{}
}

// WithMaxCycles bounds the number of node-dispatch steps a run may take.
func (o ExecutionOptions) WithMaxCycles(n uint64) ExecutionOptions {
	o.maxCycles = n
	return o
}

// WithTracing enables the debug TraceSink hook on the execution driver.
func (o ExecutionOptions) WithTracing(enabled bool) ExecutionOptions {
	o.trace = enabled
	return o
}

// Validate reports whether the options are internally consistent. Present
// for symmetry with the rest of the ecosystem's config types even though,
// today, every field of ExecutionOptions is valid in every combination.
func (o ExecutionOptions) Validate() error {
	return nil
}

// StackOutputs is the operand stack's visible window after a run
// completes.
type StackOutputs struct {
	Values []Felt
}

// MemorySnapshot captures one execution context's memory at the end of a
// run, for inspection or debugging.
type MemorySnapshot struct {
	ContextID uint32
	Cells     map[uint64]Felt
}

// AdviceProviderSnapshot captures the advice provider's remaining stack
// depth and Merkle-store size at the end of a run.
type AdviceProviderSnapshot struct {
	RemainingStackLen int
	MerkleNodeCount   int
}

// PrecompileRequest records one log_precompile call made during a run.
type PrecompileRequest struct {
	Tag        Felt
	Commitment Word
}

// ExecutionResult bundles everything a caller needs after a run: the
// final operand stack, the advice-provider and memory snapshots, every
// precompile request made (in order) plus the finalized transcript
// commitment, and the number of cycles consumed.
type ExecutionResult struct {
	Stack                StackOutputs
	Advice               AdviceProviderSnapshot
	Memory               MemorySnapshot
	PrecompileRequests   []PrecompileRequest
	PrecompileCommitment Word
	CycleCount           uint64
}
