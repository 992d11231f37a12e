// Package exec implements the execution driver: it walks a MAST forest
// starting from an entry node, dispatching each node kind to the right
// handler, threading the clock and the context stack through, and
// collapsing every failure into a two-tier OperationError/ExecutionError.
package exec

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/advice"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/host"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/mast"
)

// TraceSink receives a one-line progress note per node entered, purely for
// debugging; it is never required for correctness and is not part of any
// STARK-trace concept.
type TraceSink func(clk uint64, kind mast.Kind, id mast.NodeId)

// Driver executes a MAST forest against a host and an advice provider.
type Driver struct {
	forest    *mast.Forest
	advice    *advice.Provider
	host      host.Host
	maxCycles uint64

	clk      uint64
	contexts []*execContext
	nextCtx  uint32
	nodePath []uint32

	transcript *PrecompileTranscript
	requests   []PrecompileRequest
	trace      TraceSink
}

// PrecompileRequest records one log_precompile call's tag and authorized
// commitment, in the order the calls were made.
type PrecompileRequest struct {
	Tag        field.Felt
	Commitment field.Word
}

// New builds a driver ready to run forest's EntryRoot (or any node id the
// caller passes to Run) against host and advice.
func New(forest *mast.Forest, adviceProvider *advice.Provider, h host.Host, maxCycles uint64) *Driver {
	d := &Driver{
		forest:     forest,
		advice:     adviceProvider,
		host:       h,
		maxCycles:  maxCycles,
		transcript: NewPrecompileTranscript(),
	}
	d.contexts = []*execContext{newRootContext()}
	d.nextCtx = 1
	return d
}

// SetTraceSink installs an optional debug hook invoked on every node entry.
func (d *Driver) SetTraceSink(sink TraceSink) {
	d.trace = sink
}

// Clk returns the current cycle count.
func (d *Driver) Clk() uint64 {
	return d.clk
}

// PrecompileCommitment returns the finalized precompile-transcript digest.
// Call only after Run has returned successfully.
func (d *Driver) PrecompileCommitment() field.Word {
	return d.transcript.Finalize()
}

// PrecompileRequests returns every log_precompile call made during the run,
// in call order.
func (d *Driver) PrecompileRequests() []PrecompileRequest {
	return d.requests
}

func (d *Driver) recordPrecompileRequest(tag field.Felt, commitment field.Word) {
	d.requests = append(d.requests, PrecompileRequest{Tag: tag, Commitment: commitment})
}

func (d *Driver) current() *execContext {
	return d.contexts[len(d.contexts)-1]
}

// AdviceStackLen and AdviceMerkleLen report the advice provider's remaining
// stack depth and recorded Merkle-node count, for an end-of-run snapshot.
func (d *Driver) AdviceStackLen() int {
	return d.advice.StackLen()
}

func (d *Driver) AdviceMerkleLen() int {
	return d.advice.Merkle.Len()
}

// StackTop16 returns the running stack's current visible window and depth,
// for reading outputs after a run completes.
func (d *Driver) StackTop16() ([16]field.Felt, int) {
	return d.current().stack.Top16()
}

// PushInitialStackValue seeds the root context's operand stack before a
// run begins. Callers push in listed order, so the last call's value ends
// up on top.
func (d *Driver) PushInitialStackValue(v field.Felt) {
	d.current().stack.Push(d.clk, v)
}

// MemorySnapshot returns a copy of the current execution context's
// memory, for inspection after a run completes.
func (d *Driver) MemorySnapshot() map[uint64]field.Felt {
	return d.current().memory.Snapshot()
}

// Run executes starting from entry and returns an *errsite.ExecutionError
// on failure (never a bare *errsite.OperationError — the site context is
// always attached at this boundary).
func (d *Driver) Run(entry mast.NodeId) error {
	if err := d.execNode(entry); err != nil {
		path := append([]uint32(nil), d.nodePath...)
		clkAtFailure := d.clk
		return errsite.NewExecutionError(err, func() errsite.ExecutionSiteContext {
			return d.resolveSiteContext(clkAtFailure, path)
		})
	}
	return nil
}

func (d *Driver) resolveSiteContext(clk uint64, path []uint32) errsite.ExecutionSiteContext {
	ctx := errsite.ExecutionSiteContext{Clk: clk}
	ctx.SetNodePath(path)
	if len(path) > 0 {
		label, source := d.host.GetLabelAndSourceFile(mast.NodeId(path[len(path)-1]))
		ctx.SetLabel(label, source)
	}
	return ctx
}

func (d *Driver) tick() *errsite.OperationError {
	d.clk++
	if d.maxCycles > 0 && d.clk > d.maxCycles {
		return errsite.NewOperationError(errsite.KindMaxCyclesExceeded, "exceeded max_cycles=%d at clk=%d", d.maxCycles, d.clk)
	}
	return nil
}

func (d *Driver) execNode(id mast.NodeId) *errsite.OperationError {
	if err := d.tick(); err != nil {
		return err
	}
	d.nodePath = append(d.nodePath, uint32(id))
	defer func() { d.nodePath = d.nodePath[:len(d.nodePath)-1] }()

	n := d.forest.Node(id)
	if d.trace != nil {
		d.trace(d.clk, n.Kind, id)
	}

	switch n.Kind {
	case mast.KindBasicBlock:
		return d.execBasicBlock(n)
	case mast.KindJoin:
		if err := d.execNode(n.Left); err != nil {
			return err
		}
		return d.execNode(n.Right)
	case mast.KindSplit:
		cond, err := d.current().stack.Pop()
		if err != nil {
			return err.(*errsite.OperationError)
		}
		switch cond {
		case field.One():
			return d.execNode(n.Left)
		case field.Zero():
			return d.execNode(n.Right)
		default:
			return errsite.NewNotBinaryValueError(cond)
		}
	case mast.KindLoop:
		return d.execLoop(n)
	case mast.KindCall:
		return d.execCall(n.Left, false)
	case mast.KindSysCall:
		return d.execSysCall(n.Left)
	case mast.KindDyn:
		return d.execDyn(false)
	case mast.KindDynCall:
		return d.execDyn(true)
	case mast.KindExternal:
		return d.execExternal(n)
	default:
		return errsite.NewOperationError(errsite.KindCallStackMismatch, "unknown node kind %d", n.Kind)
	}
}

func (d *Driver) execBasicBlock(n *mast.Node) *errsite.OperationError {
	for _, instr := range n.Ops {
		if err := d.execOp(instr); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) execLoop(n *mast.Node) *errsite.OperationError {
	cond, err := d.current().stack.Pop()
	if err != nil {
		return err.(*errsite.OperationError)
	}
	for cond == field.One() {
		if err := d.execNode(n.Left); err != nil {
			return err
		}
		cond, err = d.current().stack.Pop()
		if err != nil {
			return err.(*errsite.OperationError)
		}
	}
	if cond != field.Zero() {
		return errsite.NewNotBinaryValueError(cond)
	}
	return nil
}

func (d *Driver) execCall(callee mast.NodeId, isSyscall bool) *errsite.OperationError {
	caller := d.current()
	_, expectedDepth := caller.stack.Top16()
	callee2 := caller.fork(d.nextCtx, isSyscall)
	d.nextCtx++
	d.contexts = append(d.contexts, callee2)

	err := d.execNode(callee)

	d.contexts = d.contexts[:len(d.contexts)-1]
	if err != nil {
		return err
	}
	return caller.mergeReturnValues(callee2, expectedDepth)
}

// execSysCall enters callee in the current context's kernel: re-entrant
// sys_calls are rejected outright, and the callee must be a node this
// forest has explicitly declared a kernel procedure (by digest), or the
// call never happens.
func (d *Driver) execSysCall(callee mast.NodeId) *errsite.OperationError {
	if d.current().isSyscall {
		return errsite.NewOperationError(errsite.KindReentrantSyscall, "cannot enter sys_call from within a sys_call")
	}
	digest := d.forest.Node(callee).Digest()
	if !d.forest.IsKernelProcedure(digest) {
		return errsite.NewOperationError(errsite.KindNotKernelProcedure, "sys_call target %x is not a declared kernel procedure", digest.Bytes())
	}
	return d.execCall(callee, true)
}

// execDyn resolves the call target from the digest on top of the operand
// stack: a Dyn executes it in the current context, a DynCall in a fresh
// one. The Open Question on classification is resolved uniformly here and
// in execExternal: MastForestNotFound when the host cannot resolve a
// forest for the digest at all, MastNodeNotFound when the resolved forest
// doesn't itself contain a node with that digest.
func (d *Driver) execDyn(isCall bool) *errsite.OperationError {
	digestWord, perr := popWord(d.current().stack)
	if perr != nil {
		return perr
	}

	targetID, ok := d.forest.FindRoot(digestWord)
	targetForest := d.forest
	if !ok {
		resolved, hok := d.host.GetMastForest(digestWord)
		if !hok {
			return errsite.NewOperationError(errsite.KindMastForestNotFound, "no forest known for digest %x", digestWord.Bytes())
		}
		targetForest = resolved
		var ferr *errsite.OperationError
		targetID, ferr = targetForest.FindRootOrErr(digestWord)
		if ferr != nil {
			return ferr
		}
	}

	prevForest := d.forest
	d.forest = targetForest
	defer func() { d.forest = prevForest }()

	if isCall {
		return d.execCall(targetID, false)
	}
	return d.execNode(targetID)
}

func (d *Driver) execExternal(n *mast.Node) *errsite.OperationError {
	resolved, ok := d.host.GetMastForest(n.ExternalDigest)
	if !ok {
		return errsite.NewOperationError(errsite.KindMastForestNotFound, "no forest known for external digest %x", n.ExternalDigest.Bytes())
	}
	targetID, ferr := resolved.FindRootOrErr(n.ExternalDigest)
	if ferr != nil {
		return ferr
	}

	prevForest := d.forest
	d.forest = resolved
	defer func() { d.forest = prevForest }()

	return d.execNode(targetID)
}
