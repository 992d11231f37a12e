// Package vybiummastvm provides the execution core of a zero-knowledge
// virtual machine over the 64-bit Goldilocks prime field, interpreting
// Merkleized Abstract Syntax Tree (MAST) programs.
//
// # Features
//
// - Goldilocks field arithmetic (p = 2^64 - 2^32 + 1) and its quadratic
//   extension, with non-panicking batch inversion
// - RPO-256 permutation (width 12, rate 8, capacity 4) in both digest and
//   streaming modes
// - A MAST forest: an arena of control-flow nodes (BasicBlock, Join,
//   Split, Loop, Call, SysCall, Dyn, DynCall, External), each carrying a
//   precomputed digest
// - A 16-visible-element operand stack with an unbounded overflow table,
//   isolated per execution context
// - An advice provider (LIFO stack, unique-key map, content-addressed
//   Merkle store) for non-deterministic inputs
// - A host capability interface for cross-forest dispatch, debug labels,
//   declarative advice mutations, and precompile commitments
// - A two-tier error taxonomy: context-free OperationErrors wrapped, only
//   on failure, in a lazily-resolved ExecutionError
//
// # Quick Start
//
//	prog := vybiummastvm.NewProgram()
//	bb := prog.Forest.AddBasicBlock([]ops.Instr{...})
//	prog.EntryRoot = bb
//
//	vm := vybiummastvm.New(vybiummastvm.DefaultExecutionOptions())
//	outputs, err := vm.Execute(prog, vybiummastvm.StackInputs{}, vybiummastvm.AdviceInputs{}, vybiummastvm.NopHost{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
// - pkg/vybium-mast-vm/: public API (this package)
// - internal/vybium-mast-vm/: private implementation
//
// This module implements only the execution core described above. It does
// not implement a STARK prover/verifier, an AIR constraint system, trace
// column layout, a MASM assembler/parser, or on-disk MAST serialization —
// those remain separate concerns built on top of this core.
package vybiummastvm
