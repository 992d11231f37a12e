package mast

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/ops"
)

// Forest is an arena of Nodes addressed by NodeId. Nodes are append-only:
// a child must exist before a parent referencing it can be added, which
// keeps digest computation a single forward pass with no fixups.
type Forest struct {
	nodes []Node
	// byDigest lets FindRoot and External-node resolution look a node up
	// by its precomputed digest instead of scanning the arena.
	byDigest map[field.Word]NodeId
	// EntryRoot is the node a caller should start executing from; it is
	// set explicitly by whoever builds the forest (often the last node
	// added), not inferred.
	EntryRoot NodeId
	// kernel holds the digests of nodes explicitly declared callable via
	// sys_call. Keyed by digest rather than NodeId so membership survives
	// Merge without remapping.
	kernel map[field.Word]bool
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{byDigest: make(map[field.Word]NodeId), kernel: make(map[field.Word]bool)}
}

// DeclareKernelProcedure marks the node at id as a kernel procedure,
// reachable via sys_call.
func (f *Forest) DeclareKernelProcedure(id NodeId) {
	f.kernel[f.nodes[id].digest] = true
}

// IsKernelProcedure reports whether digest names a node this forest has
// declared a kernel procedure.
func (f *Forest) IsKernelProcedure(digest field.Word) bool {
	return f.kernel[digest]
}

func (f *Forest) append(n Node) NodeId {
	id := NodeId(len(f.nodes))
	f.nodes = append(f.nodes, n)
	f.byDigest[n.digest] = id
	return id
}

// AddBasicBlock appends a leaf node wrapping a flat sequence of stack
// operations.
func (f *Forest) AddBasicBlock(operations []ops.Instr) NodeId {
	n := Node{Kind: KindBasicBlock, Ops: append([]ops.Instr(nil), operations...)}
	n.digest = basicBlockDigest(n.Ops)
	return f.append(n)
}

// AddJoin appends a node that executes left then right in sequence.
func (f *Forest) AddJoin(left, right NodeId) NodeId {
	n := Node{Kind: KindJoin, Left: left, Right: right}
	n.digest = binaryDigest(KindJoin, f.nodes[left].digest, f.nodes[right].digest)
	return f.append(n)
}

// AddSplit appends a node that executes left if the top-of-stack condition
// is true, right otherwise.
func (f *Forest) AddSplit(onTrue, onFalse NodeId) NodeId {
	n := Node{Kind: KindSplit, Left: onTrue, Right: onFalse}
	n.digest = binaryDigest(KindSplit, f.nodes[onTrue].digest, f.nodes[onFalse].digest)
	return f.append(n)
}

// AddLoop appends a node that repeats body while the top-of-stack
// condition is true.
func (f *Forest) AddLoop(body NodeId) NodeId {
	n := Node{Kind: KindLoop, Left: body}
	n.digest = unaryDigest(KindLoop, f.nodes[body].digest)
	return f.append(n)
}

// AddCall appends a node that invokes callee in a fresh non-kernel
// execution context.
func (f *Forest) AddCall(callee NodeId) NodeId {
	n := Node{Kind: KindCall, Left: callee}
	n.digest = unaryDigest(KindCall, f.nodes[callee].digest)
	return f.append(n)
}

// AddSysCall appends a node that invokes callee in the kernel context.
func (f *Forest) AddSysCall(callee NodeId) NodeId {
	n := Node{Kind: KindSysCall, Left: callee}
	n.digest = unaryDigest(KindSysCall, f.nodes[callee].digest)
	return f.append(n)
}

// AddDyn appends a node whose target is resolved at runtime from the
// operand stack, executed in the current context.
func (f *Forest) AddDyn() NodeId {
	n := Node{Kind: KindDyn}
	n.digest = nullaryDigest(KindDyn)
	return f.append(n)
}

// AddDynCall appends a node whose target is resolved at runtime from the
// operand stack, executed in a fresh context.
func (f *Forest) AddDynCall() NodeId {
	n := Node{Kind: KindDynCall}
	n.digest = nullaryDigest(KindDynCall)
	return f.append(n)
}

// AddExternal appends a placeholder node standing in for a root digest
// that must be resolved against another forest via the host interface.
func (f *Forest) AddExternal(digest field.Word) NodeId {
	n := Node{Kind: KindExternal, ExternalDigest: digest}
	n.digest = digest
	return f.append(n)
}

// Node returns the node at id.
func (f *Forest) Node(id NodeId) *Node {
	return &f.nodes[id]
}

// Len returns the number of nodes in the arena.
func (f *Forest) Len() int {
	return len(f.nodes)
}

// FindRoot looks up the node whose digest is digest.
func (f *Forest) FindRoot(digest field.Word) (NodeId, bool) {
	id, ok := f.byDigest[digest]
	return id, ok
}

// FindRootOrErr is FindRoot with the miss case turned into the
// MastNodeNotFound error callers otherwise build by hand at each resolution
// site (execDyn, execExternal).
func (f *Forest) FindRootOrErr(digest field.Word) (NodeId, *errsite.OperationError) {
	id, ok := f.byDigest[digest]
	if !ok {
		return 0, errNodeNotFoundInForest(digest)
	}
	return id, nil
}

func errNodeNotFoundInForest(digest field.Word) *errsite.OperationError {
	return errsite.NewOperationError(errsite.KindMastNodeNotFound, "no node with digest %x in forest", digest.Bytes())
}

// Merge combines a and b into a new forest, remapping b's node ids
// to fresh ids appended after a's own. Nodes that are digest-identical
// across both forests are only needed once in the combined node list, but
// callers still address them through the id each forest originally used —
// the returned remap tables translate either side's old ids into the
// merged forest's ids.
func Merge(a, b *Forest) (merged *Forest, remapA, remapB map[NodeId]NodeId) {
	merged = NewForest()
	remapA = make(map[NodeId]NodeId, a.Len())
	remapB = make(map[NodeId]NodeId, b.Len())

	copyInto := func(src *Forest, remap map[NodeId]NodeId) {
		for oldID := 0; oldID < src.Len(); oldID++ {
			n := src.nodes[oldID]
			if existing, ok := merged.byDigest[n.digest]; ok {
				remap[NodeId(oldID)] = existing
				continue
			}
			remapped := n
			switch n.Kind {
			case KindJoin, KindSplit:
				remapped.Left = remap[n.Left]
				remapped.Right = remap[n.Right]
			case KindLoop, KindCall, KindSysCall:
				remapped.Left = remap[n.Left]
			}
			newID := merged.append(remapped)
			remap[NodeId(oldID)] = newID
		}
	}

	copyInto(a, remapA)
	copyInto(b, remapB)

	if a.EntryRoot != 0 || a.Len() > 0 {
		merged.EntryRoot = remapA[a.EntryRoot]
	}

	for digest := range a.kernel {
		merged.kernel[digest] = true
	}
	for digest := range b.kernel {
		merged.kernel[digest] = true
	}

	return merged, remapA, remapB
}
