package vybiummastvm

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/advice"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/exec"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/host"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/mast"
)

// NopHost is a Host that never resolves cross-forest targets, never
// supplies debug labels, accepts every event without returning any advice
// mutation, and answers every precompile commitment request with the zero
// word. Suitable for programs that stay within a single forest.
type NopHost struct{}

func (NopHost) GetMastForest(field.Word) (*mast.Forest, bool) { return nil, false }
func (NopHost) GetLabelAndSourceFile(mast.NodeId) (string, string) { return "", "" }
func (NopHost) OnEvent(uint32, []field.Felt) ([]host.AdviceMutation, error) {
	return nil, nil
}
func (NopHost) GetPrecompileCommitment(field.Felt, field.Word) (field.Word, error) {
	return field.Word{}, nil
}

// VM is a configured, reusable entry point for executing programs. A
// single VM may run many programs; each Execute call gets its own driver,
// operand stack, and advice provider.
type VM struct {
	opts ExecutionOptions
}

// New returns a VM configured with opts.
func New(opts ExecutionOptions) *VM {
	return &VM{opts: opts}
}

// Execute runs prog from its EntryRoot against h, seeding the operand
// stack and advice provider from stackIn/adviceIn. On success it returns
// the final visible stack window and the finalized precompile-transcript
// commitment; on failure it returns an *ExecutionError.
func (vm *VM) Execute(prog *Program, stackIn StackInputs, adviceIn AdviceInputs, h host.Host) (ExecutionResult, error) {
	adv := advice.New()
	for _, v := range adviceIn.StackValues {
		adv.PushStack(v)
	}
	for k, vs := range adviceIn.MapEntries {
		if err := adv.InsertMapEntry(k, vs); err != nil {
			return ExecutionResult{}, wrapExecutionError(err)
		}
	}
	for _, n := range adviceIn.MerkleNodes {
		adv.Merkle.InsertNode(n.Left, n.Right)
	}

	d := exec.New(prog.Forest, adv, h, vm.opts.maxCycles)
	if vm.opts.trace {
		d.SetTraceSink(func(clk uint64, kind mast.Kind, id mast.NodeId) {})
	}

	if len(stackIn.Values) > 0 {
		seedStack(d, stackIn.Values)
	}

	if err := d.Run(prog.EntryRoot); err != nil {
		return ExecutionResult{}, wrapExecutionError(err)
	}

	top, depth := d.StackTop16()
	out := make([]field.Felt, depth)
	copy(out, top[:depth])

	reqs := d.PrecompileRequests()
	requests := make([]PrecompileRequest, len(reqs))
	for i, r := range reqs {
		requests[i] = PrecompileRequest{Tag: r.Tag, Commitment: r.Commitment}
	}

	return ExecutionResult{
		Stack: StackOutputs{Values: out},
		Advice: AdviceProviderSnapshot{
			RemainingStackLen: d.AdviceStackLen(),
			MerkleNodeCount:   d.AdviceMerkleLen(),
		},
		Memory:               MemorySnapshot{Cells: d.MemorySnapshot()},
		PrecompileRequests:   requests,
		PrecompileCommitment: d.PrecompileCommitment(),
		CycleCount:           d.Clk(),
	}, nil
}

// seedStack pushes values onto the driver's operand stack in reverse
// order, so the last value ends up deepest and values[0] ends up on top —
// matching StackInputs, which lists the top element first.
func seedStack(d *exec.Driver, values []field.Felt) {
	for i := len(values) - 1; i >= 0; i-- {
		d.PushInitialStackValue(values[i])
	}
}
