package integration_test

import (
	"testing"

	vybiummastvm "github.com/vybium/vybium-mast-vm/pkg/vybium-mast-vm"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/ops"
)

// Test02_SecretInputNotInStackInputs tests that a value pulled from the
// advice provider can satisfy an assertion without ever appearing in
// StackInputs.
func Test02_SecretInputNotInStackInputs(t *testing.T) {
	t.Log("=== Test 02: Secret Input via Advice Provider ===")

	t.Log("Step 1: Creating program asserting x*x = 25...")
	prog := vybiummastvm.NewProgram()
	bb := prog.Forest.AddBasicBlock([]ops.Instr{
		{Op: ops.OpAdvPush},
		{Op: ops.OpDup0},
		{Op: ops.OpMul},
		{Op: ops.OpPush, Imm: field.New(25)},
		{Op: ops.OpEq},
		{Op: ops.OpAssert},
	})
	prog.EntryRoot = bb

	secretX := field.New(5)
	t.Log("Step 2: Executing with secret input on the advice stack only...")
	vm := vybiummastvm.New(vybiummastvm.DefaultExecutionOptions())
	result, err := vm.Execute(
		prog,
		vybiummastvm.StackInputs{}, // no public stack inputs at all
		vybiummastvm.AdviceInputs{StackValues: []field.Felt{secretX}},
		vybiummastvm.NopHost{},
	)
	if err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	t.Logf("  ✓ assertion passed in %d cycles", result.CycleCount)

	t.Log("Step 3: Confirming the secret never had to be a stack input...")
	// The program above never reads from the visible stack at all except
	// via adv_push — there is nothing in StackInputs for the secret to
	// leak through.
}

// Test02b_WrongSecretFailsAssertion confirms the same program fails its
// assertion when given a secret input that doesn't satisfy the claim.
func Test02b_WrongSecretFailsAssertion(t *testing.T) {
	prog := vybiummastvm.NewProgram()
	bb := prog.Forest.AddBasicBlock([]ops.Instr{
		{Op: ops.OpAdvPush},
		{Op: ops.OpDup0},
		{Op: ops.OpMul},
		{Op: ops.OpPush, Imm: field.New(25)},
		{Op: ops.OpEq},
		{Op: ops.OpAssert},
	})
	prog.EntryRoot = bb

	vm := vybiummastvm.New(vybiummastvm.DefaultExecutionOptions())
	_, err := vm.Execute(
		prog,
		vybiummastvm.StackInputs{},
		vybiummastvm.AdviceInputs{StackValues: []field.Felt{field.New(6)}},
		vybiummastvm.NopHost{},
	)
	if err == nil {
		t.Fatal("expected assertion failure for x=6 (6² != 25)")
	}
}
