package exec

import (
	"errors"
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/advice"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/mast"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/ops"
)

func imm(o ops.Operation, n uint64) ops.Instr { return ops.Instr{Op: o, Imm: field.New(n)} }

func run(t *testing.T, instrs []ops.Instr) *Driver {
	t.Helper()
	f := mast.NewForest()
	f.EntryRoot = f.AddBasicBlock(instrs)
	d := New(f, advice.New(), stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func TestDupNDuplicatesIndexedElement(t *testing.T) {
	d := run(t, []ops.Instr{push(10), push(20), push(30), imm(ops.OpDupN, 2)})
	top, depth := d.StackTop16()
	if depth != 4 || top[0] != field.New(10) {
		t.Fatalf("top = %v (depth %d), want dup.2 to duplicate the deepest pushed value", top, depth)
	}
}

func TestSwapWSwapsWords(t *testing.T) {
	instrs := []ops.Instr{
		push(1), push(2), push(3), push(4), // word 1: [4,3,2,1]
		push(5), push(6), push(7), push(8), // word 0: [8,7,6,5]
		imm(ops.OpSwapW, 1),
	}
	d := run(t, instrs)
	top, _ := d.StackTop16()
	want := [8]uint64{4, 3, 2, 1, 8, 7, 6, 5}
	for i, w := range want {
		if top[i] != field.New(w) {
			t.Fatalf("top[%d] = %s, want %d after swapw.1", i, top[i], w)
		}
	}
}

func TestMovUpMovesElementToTop(t *testing.T) {
	d := run(t, []ops.Instr{push(1), push(2), push(3), imm(ops.OpMovUp, 2)})
	top, _ := d.StackTop16()
	if top[0] != field.New(1) || top[1] != field.New(3) || top[2] != field.New(2) {
		t.Fatalf("top = %v, want movup.2 to bring the deepest value up", top)
	}
}

func TestMovDnMovesTopElementDown(t *testing.T) {
	d := run(t, []ops.Instr{push(1), push(2), push(3), imm(ops.OpMovDn, 2)})
	top, _ := d.StackTop16()
	if top[0] != field.New(2) || top[1] != field.New(1) || top[2] != field.New(3) {
		t.Fatalf("top = %v, want movdn.2 to sink the top value two places", top)
	}
}

func TestReverseWReversesTopWord(t *testing.T) {
	d := run(t, []ops.Instr{push(1), push(2), push(3), push(4), op(ops.OpReverseW)})
	top, _ := d.StackTop16()
	want := [4]uint64{1, 2, 3, 4}
	for i, w := range want {
		if top[i] != field.New(w) {
			t.Fatalf("top[%d] = %s, want %d after reversew", i, top[i], w)
		}
	}
}

func TestIncrAddsOne(t *testing.T) {
	d := run(t, []ops.Instr{push(41), op(ops.OpIncr)})
	top, _ := d.StackTop16()
	if top[0] != field.New(42) {
		t.Fatalf("top = %s, want 42", top[0])
	}
}

func TestExpaccAccumulatesOneBit(t *testing.T) {
	// acc=1, base=3, bit=1 -> next = acc*base = 3, base' = base^2 = 9.
	d := run(t, []ops.Instr{push(1), push(3), push(1), op(ops.OpExpacc)})
	top, depth := d.StackTop16()
	if depth != 2 || top[0] != field.New(3) || top[1] != field.New(9) {
		t.Fatalf("top = %v (depth %d), want [3, 9]", top, depth)
	}
}

func TestU32MaddComputesSplitProduct(t *testing.T) {
	// a=0xFFFFFFFF, b=2, c=1 -> v = 2*0xFFFFFFFF+1 = 0x1FFFFFFFF
	d := run(t, []ops.Instr{push(0xFFFFFFFF), push(2), push(1), op(ops.OpU32Madd)})
	top, _ := d.StackTop16()
	if top[0] != field.New(0xFFFFFFFF) || top[1] != field.New(1) {
		t.Fatalf("top = %v, want [lo=0xFFFFFFFF, hi=1]", top)
	}
}

func TestU32AndXor(t *testing.T) {
	d := run(t, []ops.Instr{push(0b1100), push(0b1010), op(ops.OpU32And)})
	top, _ := d.StackTop16()
	if top[0] != field.New(0b1000) {
		t.Fatalf("u32and = %s, want 0b1000", top[0])
	}

	d = run(t, []ops.Instr{push(0b1100), push(0b1010), op(ops.OpU32Xor)})
	top, _ = d.StackTop16()
	if top[0] != field.New(0b0110) {
		t.Fatalf("u32xor = %s, want 0b0110", top[0])
	}
}

func TestU32Assert2FaultsOnOutOfRange(t *testing.T) {
	f := mast.NewForest()
	f.EntryRoot = f.AddBasicBlock([]ops.Instr{push(1 << 40), push(1), op(ops.OpU32Assert2)})
	d := New(f, advice.New(), stubHost{}, 0)
	err := d.Run(f.EntryRoot)
	if err == nil {
		t.Fatalf("expected u32 range error")
	}
	var execErr *errsite.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *errsite.ExecutionError, got %T", err)
	}
	if execErr.Op.Kind != errsite.KindU32OutOfRange {
		t.Fatalf("Kind = %s, want %s", execErr.Op.Kind, errsite.KindU32OutOfRange)
	}
}

func TestMemLoadStoreWBERoundTrips(t *testing.T) {
	instrs := []ops.Instr{
		push(1), push(2), push(3), push(4), push(0), // word, addr
		op(ops.OpMemStoreWBE),
		push(0),
		op(ops.OpMemLoadWBE),
	}
	d := run(t, instrs)
	top, _ := d.StackTop16()
	want := [4]uint64{4, 3, 2, 1}
	for i, w := range want {
		if top[i] != field.New(w) {
			t.Fatalf("top[%d] = %s, want %d after a big-endian store/load round trip", i, top[i], w)
		}
	}
}

func TestMStreamAdvancesAddress(t *testing.T) {
	instrs := []ops.Instr{
		push(1), push(2), push(3), push(4), push(0), op(ops.OpMemStoreW),
		push(5), push(6), push(7), push(8), push(4), op(ops.OpMemStoreW),
		push(0), op(ops.OpMStream),
	}
	d := run(t, instrs)
	top, _ := d.StackTop16()
	if top[0] != field.New(8) {
		t.Fatalf("top after mstream = %s, want advanced address 8", top[0])
	}
}

func TestAssertFailsWithErrCode(t *testing.T) {
	f := mast.NewForest()
	f.EntryRoot = f.AddBasicBlock([]ops.Instr{push(0), {Op: ops.OpAssert, Imm: field.New(7)}})
	d := New(f, advice.New(), stubHost{}, 0)
	err := d.Run(f.EntryRoot)
	if err == nil {
		t.Fatalf("expected assertion failure")
	}
	var execErr *errsite.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *errsite.ExecutionError, got %T", err)
	}
	if execErr.Op.Kind != errsite.KindAssertionFailed {
		t.Fatalf("Kind = %s, want %s", execErr.Op.Kind, errsite.KindAssertionFailed)
	}
	if execErr.Op.ErrCode != 7 {
		t.Fatalf("ErrCode = %d, want 7", execErr.Op.ErrCode)
	}
}

// mpVerifyStack lays out the stack the way execMpVerify expects it: pushes
// are issued bottom-to-top, so the last push ends up at Peek(0).
func mpVerifyStack(value, root field.Word, index uint64, depth uint8, errCode uint64) []ops.Instr {
	return []ops.Instr{
		push(root[3].Uint64()), push(root[2].Uint64()), push(root[1].Uint64()), push(root[0].Uint64()),
		push(index),
		push(uint64(depth)),
		push(value[3].Uint64()), push(value[2].Uint64()), push(value[1].Uint64()), push(value[0].Uint64()),
		{Op: ops.OpMpVerify, Imm: field.New(errCode)},
	}
}

func TestMpVerifySucceedsNonDestructively(t *testing.T) {
	adv := advice.New()
	leaf := field.Word{field.New(42)}
	sibling := field.Word{field.New(99)}
	root := adv.Merkle.InsertNode(leaf, sibling)

	f := mast.NewForest()
	f.EntryRoot = f.AddBasicBlock(mpVerifyStack(leaf, root, 0, 1, 3))
	d := New(f, adv, stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, depth := d.StackTop16()
	if depth != 10 {
		t.Fatalf("depth after mpverify = %d, want 10 (non-destructive)", depth)
	}
}

func TestMpVerifyFaultsOnClaimMismatch(t *testing.T) {
	adv := advice.New()
	leaf := field.Word{field.New(42)}
	sibling := field.Word{field.New(99)}
	root := adv.Merkle.InsertNode(leaf, sibling)

	f := mast.NewForest()
	wrongValue := field.Word{field.New(7)}
	instrs := mpVerifyStack(wrongValue, root, 0, 1, 3)
	f.EntryRoot = f.AddBasicBlock(instrs)
	d := New(f, adv, stubHost{}, 0)
	err := d.Run(f.EntryRoot)
	if err == nil {
		t.Fatalf("expected MerklePathVerificationFailed error")
	}
	var execErr *errsite.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *errsite.ExecutionError, got %T", err)
	}
	if execErr.Op.Kind != errsite.KindMerklePathVerificationFailed {
		t.Fatalf("Kind = %s, want %s", execErr.Op.Kind, errsite.KindMerklePathVerificationFailed)
	}
	if execErr.Op.ErrCode != 3 {
		t.Fatalf("ErrCode = %d, want 3", execErr.Op.ErrCode)
	}
}
