package mast

import (
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/ops"
)

func instrs(operations ...ops.Operation) []ops.Instr {
	out := make([]ops.Instr, len(operations))
	for i, op := range operations {
		out[i] = ops.Instr{Op: op, Imm: field.Zero()}
	}
	return out
}

func TestIdenticalBasicBlocksHaveSameDigest(t *testing.T) {
	f1 := NewForest()
	f2 := NewForest()
	id1 := f1.AddBasicBlock(instrs(ops.OpAdd, ops.OpMul))
	id2 := f2.AddBasicBlock(instrs(ops.OpAdd, ops.OpMul))
	if f1.Node(id1).Digest() != f2.Node(id2).Digest() {
		t.Fatalf("identical basic blocks produced different digests")
	}
}

func TestDifferentKindsDoNotCollide(t *testing.T) {
	f := NewForest()
	bb := f.AddBasicBlock(instrs(ops.OpAdd))
	loop := f.AddLoop(bb)
	call := f.AddCall(bb)
	if f.Node(loop).Digest() == f.Node(call).Digest() {
		t.Fatalf("Loop and Call over the same child collided in digest")
	}
}

func TestFindRoot(t *testing.T) {
	f := NewForest()
	bb := f.AddBasicBlock(instrs(ops.OpAdd))
	digest := f.Node(bb).Digest()
	got, ok := f.FindRoot(digest)
	if !ok || got != bb {
		t.Fatalf("FindRoot = (%v, %v), want (%v, true)", got, ok, bb)
	}
}

func TestKernelProcedureMembership(t *testing.T) {
	f := NewForest()
	kernelProc := f.AddBasicBlock(instrs(ops.OpAdd))
	ordinary := f.AddBasicBlock(instrs(ops.OpSub))
	f.DeclareKernelProcedure(kernelProc)

	if !f.IsKernelProcedure(f.Node(kernelProc).Digest()) {
		t.Fatalf("declared kernel procedure not recognized")
	}
	if f.IsKernelProcedure(f.Node(ordinary).Digest()) {
		t.Fatalf("undeclared node reported as a kernel procedure")
	}
}

func TestMergePreservesKernelMembership(t *testing.T) {
	a := NewForest()
	kernelProc := a.AddBasicBlock(instrs(ops.OpAdd))
	a.DeclareKernelProcedure(kernelProc)
	a.EntryRoot = kernelProc

	b := NewForest()
	b.EntryRoot = b.AddBasicBlock(instrs(ops.OpSub))

	merged, remapA, _ := Merge(a, b)
	if !merged.IsKernelProcedure(merged.Node(remapA[kernelProc]).Digest()) {
		t.Fatalf("merge dropped kernel-procedure membership")
	}
}

func TestMergeDedupesSharedSubtree(t *testing.T) {
	a := NewForest()
	sharedA := a.AddBasicBlock(instrs(ops.OpAdd, ops.OpSub))
	a.EntryRoot = a.AddLoop(sharedA)

	b := NewForest()
	sharedB := b.AddBasicBlock(instrs(ops.OpAdd, ops.OpSub))
	b.EntryRoot = b.AddCall(sharedB)

	merged, remapA, remapB := Merge(a, b)

	mergedSharedA := remapA[sharedA]
	mergedSharedB := remapB[sharedB]
	if mergedSharedA != mergedSharedB {
		t.Fatalf("shared subtree was duplicated: %v != %v", mergedSharedA, mergedSharedB)
	}
	if merged.Len() != 3 {
		t.Fatalf("merged forest has %d nodes, want 3 (shared block + loop + call)", merged.Len())
	}
}
