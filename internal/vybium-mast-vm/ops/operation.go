// Package ops defines the operand-stack operation set: the tagged-sum
// Operation enum and its metadata table. The handlers that execute each
// operation live in package exec.
package ops

import "github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"

// Operation identifies one operand-stack instruction inside a BasicBlock.
type Operation uint16

const (
	OpNoop Operation = iota

	// Stack manipulation.
	OpPush // immediate push of one Felt
	OpDrop
	OpDup0
	OpDup1
	OpSwap
	OpPadW
	OpDropW
	OpDupN      // dup.n: duplicates the n-th element (Imm), n in [0,15]
	OpSwapW     // swapw.n: swaps the top word with the word n words down (Imm)
	OpMovUp     // movup.n: moves the n-th element (Imm) to the top
	OpMovDn     // movdn.n: moves the top element down to position n (Imm)
	OpReverseW  // reverses the top word in place
	OpReverseDW // reverses the top double-word (two words) in place
	OpIncr      // adds 1 to the top element

	// Field arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv // division by zero is an OperationError
	OpNeg
	OpInv
	OpEq
	OpEqz
	OpNot
	OpAnd
	OpOr
	OpExpacc // one step of square-and-multiply exponentiation accumulation

	// U32 operations (check-then-allocate range validation).
	OpU32Add
	OpU32Sub
	OpU32Mul
	OpU32Div
	OpU32Split  // splits a Felt into two u32 limbs
	OpU32Assert
	OpU32Madd   // a*b+c, split into two u32 limbs
	OpU32And
	OpU32Xor
	OpU32Assert2 // asserts both of the top two elements are valid u32s

	// Memory.
	OpMemLoad
	OpMemStore
	OpMemLoadW
	OpMemStoreW
	OpMemLoadWBE  // big-endian word variant of mem_loadw
	OpMemStoreWBE // big-endian word variant of mem_storew
	OpMStream     // reads two consecutive words from memory, advancing the address

	// Crypto.
	OpHPerm   // apply the RPO permutation to the top 12 stack elements
	OpMTreeGet
	OpMTreeSet
	OpMTreeMerge
	OpMpVerify // non-destructive Merkle path verification against a claimed leaf
	OpFriE2F4
	OpHornerBase
	OpHornerExt

	// Control / assertions.
	OpAssert
	OpAssertEq
	OpHalt

	// Advice & host.
	OpAdvPush
	OpAdvPopW
	OpAdvInsertMapEntry
	OpSysEvent
	OpLogPrecompile
)

// Info describes one operation's static shape.
type Info struct {
	Name         string
	StackEffect  int // net change in visible-stack depth
	HasImmediate bool
}

// Catalog is the metadata table for every operation, keyed by Operation,
// mirroring the teacher's AllInstructions map.
var Catalog = map[Operation]Info{
	OpNoop:  {"noop", 0, false},
	OpPush:  {"push", 1, true},
	OpDrop:  {"drop", -1, false},
	OpDup0:  {"dup.0", 1, false},
	OpDup1:  {"dup.1", 1, false},
	OpSwap:  {"swap", 0, false},
	OpPadW:  {"padw", 4, false},
	OpDropW: {"dropw", -4, false},

	OpDupN:      {"dup.n", 1, true},
	OpSwapW:     {"swapw.n", 0, true},
	OpMovUp:     {"movup.n", 0, true},
	OpMovDn:     {"movdn.n", 0, true},
	OpReverseW:  {"reversew", 0, false},
	OpReverseDW: {"reversedw", 0, false},
	OpIncr:      {"incr", 0, false},

	OpAdd:    {"add", -1, false},
	OpSub:    {"sub", -1, false},
	OpMul:    {"mul", -1, false},
	OpDiv:    {"div", -1, false},
	OpNeg:    {"neg", 0, false},
	OpInv:    {"inv", 0, false},
	OpEq:     {"eq", -1, false},
	OpEqz:    {"eqz", 0, false},
	OpNot:    {"not", 0, false},
	OpAnd:    {"and", -1, false},
	OpOr:     {"or", -1, false},
	OpExpacc: {"expacc", -1, false},

	OpU32Add:     {"u32add", -1, false},
	OpU32Sub:     {"u32sub", -1, false},
	OpU32Mul:     {"u32mul", -1, false},
	OpU32Div:     {"u32div", -1, false},
	OpU32Split:   {"u32split", 1, false},
	OpU32Assert:  {"u32assert", 0, false},
	OpU32Madd:    {"u32madd", -1, false},
	OpU32And:     {"u32and", -1, false},
	OpU32Xor:     {"u32xor", -1, false},
	OpU32Assert2: {"u32assert2", 0, false},

	OpMemLoad:     {"mem_load", 0, false},
	OpMemStore:    {"mem_store", -2, false},
	OpMemLoadW:    {"mem_loadw", 3, false},
	OpMemStoreW:   {"mem_storew", -5, false},
	OpMemLoadWBE:  {"mem_loadw_be", 3, false},
	OpMemStoreWBE: {"mem_storew_be", -5, false},
	OpMStream:     {"mstream", 8, false},

	OpHPerm:      {"hperm", 0, false},
	OpMTreeGet:   {"mtree_get", -2, false},
	OpMTreeSet:   {"mtree_set", -6, false},
	OpMTreeMerge: {"mtree_merge", -4, false},
	OpMpVerify:   {"mpverify", 0, true},
	OpFriE2F4:    {"fri_ext2fold4", -4, false},
	OpHornerBase: {"horner_eval_base", -2, false},
	OpHornerExt:  {"horner_eval_ext", -4, false},

	OpAssert:   {"assert", -1, true},
	OpAssertEq: {"assert_eq", -2, false},
	OpHalt:     {"halt", 0, false},

	OpAdvPush:           {"adv_push", 1, false},
	OpAdvPopW:           {"adv_popw", 4, false},
	OpAdvInsertMapEntry: {"adv_insert_map", -8, false},
	OpSysEvent:          {"sys_event", 0, true},
	OpLogPrecompile:     {"log_precompile", -4, true},
}

// String implements fmt.Stringer using the catalog name.
func (o Operation) String() string {
	if info, ok := Catalog[o]; ok {
		return info.Name
	}
	return "unknown"
}

// Instr pairs an Operation with its immediate operand, when it has one.
// Operations without an immediate simply leave Imm at its zero value.
type Instr struct {
	Op  Operation
	Imm field.Felt
}
