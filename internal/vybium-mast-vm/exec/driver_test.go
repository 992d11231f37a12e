package exec

import (
	"errors"
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/advice"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/host"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/mast"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/ops"
)

type stubHost struct{}

func (stubHost) GetMastForest(field.Word) (*mast.Forest, bool)        { return nil, false }
func (stubHost) GetLabelAndSourceFile(mast.NodeId) (string, string)   { return "", "" }
func (stubHost) OnEvent(uint32, []field.Felt) ([]host.AdviceMutation, error) {
	return nil, nil
}
func (stubHost) GetPrecompileCommitment(field.Felt, field.Word) (field.Word, error) {
	return field.Word{}, nil
}

func push(v uint64) ops.Instr { return ops.Instr{Op: ops.OpPush, Imm: field.New(v)} }
func op(o ops.Operation) ops.Instr { return ops.Instr{Op: o} }

func TestAddTwoNumbers(t *testing.T) {
	f := mast.NewForest()
	bb := f.AddBasicBlock([]ops.Instr{push(2), push(3), op(ops.OpAdd)})
	f.EntryRoot = bb

	d := New(f, advice.New(), stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top, _ := d.StackTop16()
	if top[0] != field.New(5) {
		t.Fatalf("top of stack = %s, want 5", top[0])
	}
}

func TestDivideByZeroFails(t *testing.T) {
	f := mast.NewForest()
	bb := f.AddBasicBlock([]ops.Instr{push(7), push(0), op(ops.OpDiv)})
	f.EntryRoot = bb

	d := New(f, advice.New(), stubHost{}, 0)
	err := d.Run(f.EntryRoot)
	if err == nil {
		t.Fatalf("expected division-by-zero error")
	}
	var execErr *errsite.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *errsite.ExecutionError, got %T", err)
	}
	if execErr.Op.Kind != errsite.KindDivideByZero {
		t.Fatalf("Kind = %s, want %s", execErr.Op.Kind, errsite.KindDivideByZero)
	}
}

func TestU32OverflowFails(t *testing.T) {
	f := mast.NewForest()
	bb := f.AddBasicBlock([]ops.Instr{push(1 << 40), push(1), op(ops.OpU32Add)})
	f.EntryRoot = bb

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

func TestFailingAssertion(t *testing.T) {
	f := mast.NewForest()
	bb := f.AddBasicBlock([]ops.Instr{push(0), op(ops.OpAssert)})
	f.EntryRoot = bb

	d := New(f, advice.New(), stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err == nil {
		t.Fatalf("expected assertion failure")
	}
}

func TestJoinExecutesBothBranches(t *testing.T) {
	f := mast.NewForest()
	left := f.AddBasicBlock([]ops.Instr{push(1)})
	right := f.AddBasicBlock([]ops.Instr{push(2)})
	f.EntryRoot = f.AddJoin(left, right)

	d := New(f, advice.New(), stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top, depth := d.StackTop16()
	if depth != 2 || top[0] != field.New(2) || top[1] != field.New(1) {
		t.Fatalf("stack after join = %v (depth %d), want [2,1]", top, depth)
	}
}

func TestSplitTakesTrueBranch(t *testing.T) {
	f := mast.NewForest()
	onTrue := f.AddBasicBlock([]ops.Instr{push(111)})
	onFalse := f.AddBasicBlock([]ops.Instr{push(222)})
	split := f.AddSplit(onTrue, onFalse)
	cond := f.AddBasicBlock([]ops.Instr{push(1)})
	f.EntryRoot = f.AddJoin(cond, split)

	d := New(f, advice.New(), stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top, _ := d.StackTop16()
	if top[0] != field.New(111) {
		t.Fatalf("top = %s, want 111 (true branch)", top[0])
	}
}

func TestCallIsolatesMemory(t *testing.T) {
	f := mast.NewForest()
	// The caller stores 7 at address 100, then calls a callee that stores
	// 42 at address 100 of its own memory, drops its one input and pushes
	// 999 in its place: net-zero visible depth, satisfying the
	// stack-depth-conservation invariant a Call/SysCall/DynCall boundary
	// enforces. Reading address 100 after the call must still give 7.
	pushArg := f.AddBasicBlock([]ops.Instr{push(7), push(100), op(ops.OpMemStore), push(1)})
	callee := f.AddBasicBlock([]ops.Instr{push(42), push(100), op(ops.OpMemStore), op(ops.OpDrop), push(999)})
	call := f.AddCall(callee)
	readBack := f.AddBasicBlock([]ops.Instr{push(100), op(ops.OpMemLoad)})
	f.EntryRoot = f.AddJoin(f.AddJoin(pushArg, call), readBack)

	d := New(f, advice.New(), stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top, _ := d.StackTop16()
	if top[0] != field.New(7) {
		t.Fatalf("caller memory after call = %s, want 7", top[0])
	}
	if top[1] != field.New(999) {
		t.Fatalf("callee return value = %s, want 999", top[1])
	}
}

func TestCallRestoresCallerOverflow(t *testing.T) {
	f := mast.NewForest()
	var pushes []ops.Instr
	for i := uint64(1); i <= 20; i++ {
		pushes = append(pushes, push(i))
	}
	setup := f.AddBasicBlock(pushes)
	callee := f.AddBasicBlock([]ops.Instr{op(ops.OpDrop), push(20)})
	call := f.AddCall(callee)
	f.EntryRoot = f.AddJoin(setup, call)

	d := New(f, advice.New(), stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if depth := d.current().stack.Depth(); depth != 20 {
		t.Fatalf("depth after call = %d, want 20 (overflow restored)", depth)
	}
}

func TestCallFaultsOnStackDepthMismatch(t *testing.T) {
	f := mast.NewForest()
	callee := f.AddBasicBlock([]ops.Instr{push(999)})
	call := f.AddCall(callee)
	f.EntryRoot = call

	d := New(f, advice.New(), stubHost{}, 0)
	err := d.Run(f.EntryRoot)
	if err == nil {
		t.Fatalf("expected InvalidStackDepthOnReturn error")
	}
	var execErr *errsite.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *errsite.ExecutionError, got %T", err)
	}
	if execErr.Op.Kind != errsite.KindInvalidStackDepthOnReturn {
		t.Fatalf("Kind = %s, want %s", execErr.Op.Kind, errsite.KindInvalidStackDepthOnReturn)
	}
}

func TestSplitFaultsOnNonBinaryCondition(t *testing.T) {
	f := mast.NewForest()
	onTrue := f.AddBasicBlock([]ops.Instr{push(111)})
	onFalse := f.AddBasicBlock([]ops.Instr{push(222)})
	split := f.AddSplit(onTrue, onFalse)
	cond := f.AddBasicBlock([]ops.Instr{push(7)})
	f.EntryRoot = f.AddJoin(cond, split)

	d := New(f, advice.New(), stubHost{}, 0)
	err := d.Run(f.EntryRoot)
	if err == nil {
		t.Fatalf("expected NotBinaryValue error")
	}
	var execErr *errsite.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *errsite.ExecutionError, got %T", err)
	}
	if execErr.Op.Kind != errsite.KindNotBinaryValue {
		t.Fatalf("Kind = %s, want %s", execErr.Op.Kind, errsite.KindNotBinaryValue)
	}
}

func TestSysCallRejectsNonKernelTarget(t *testing.T) {
	f := mast.NewForest()
	callee := f.AddBasicBlock([]ops.Instr{op(ops.OpDrop), push(1)})
	sc := f.AddSysCall(callee)
	pushArg := f.AddBasicBlock([]ops.Instr{push(1)})
	f.EntryRoot = f.AddJoin(pushArg, sc)

	d := New(f, advice.New(), stubHost{}, 0)
	err := d.Run(f.EntryRoot)
	if err == nil {
		t.Fatalf("expected NotKernelProcedure error")
	}
	var execErr *errsite.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *errsite.ExecutionError, got %T", err)
	}
	if execErr.Op.Kind != errsite.KindNotKernelProcedure {
		t.Fatalf("Kind = %s, want %s", execErr.Op.Kind, errsite.KindNotKernelProcedure)
	}
}

func TestSysCallIntoDeclaredKernelProcedureSucceeds(t *testing.T) {
	f := mast.NewForest()
	callee := f.AddBasicBlock([]ops.Instr{op(ops.OpDrop), push(1)})
	f.DeclareKernelProcedure(callee)
	sc := f.AddSysCall(callee)
	pushArg := f.AddBasicBlock([]ops.Instr{push(1)})
	f.EntryRoot = f.AddJoin(pushArg, sc)

	d := New(f, advice.New(), stubHost{}, 0)
	if err := d.Run(f.EntryRoot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	top, _ := d.StackTop16()
	if top[0] != field.One() {
		t.Fatalf("top after sys_call = %s, want 1", top[0])
	}
}

func TestMaxCyclesExceeded(t *testing.T) {
	f := mast.NewForest()
	body := f.AddBasicBlock([]ops.Instr{push(1)}) // leaves nonzero, loops forever
	f.EntryRoot = f.AddLoop(body)

	// Seed a nonzero loop condition via a preceding push, joined before
	// the loop.
	cond := f.AddBasicBlock([]ops.Instr{push(1)})
	f.EntryRoot = f.AddJoin(cond, f.EntryRoot)

	d := New(f, advice.New(), stubHost{}, 50)
	err := d.Run(f.EntryRoot)
	if err == nil {
		t.Fatalf("expected max_cycles error")
	}
	var execErr *errsite.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *errsite.ExecutionError, got %T", err)
	}
	if execErr.Op.Kind != errsite.KindMaxCyclesExceeded {
		t.Fatalf("Kind = %s, want %s", execErr.Op.Kind, errsite.KindMaxCyclesExceeded)
	}
}
