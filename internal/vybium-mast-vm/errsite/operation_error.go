// Package errsite implements the two-tier error taxonomy: a context-free
// OperationError raised deep inside a single operation handler, and the
// user-visible ExecutionError that wraps it with a lazily-resolved
// execution-site context only once a run actually fails.
package errsite

import (
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
)

// OperationErrorKind classifies an operation failure without attaching any
// positional information, so it is cheap to construct on every hot path
// (e.g. a division handler can always build one, even though almost every
// call has a nonzero divisor and discards it immediately).
type OperationErrorKind string

const (
	KindDivideByZero        OperationErrorKind = "divide_by_zero"
	KindAssertionFailed     OperationErrorKind = "assertion_failed"
	KindU32OutOfRange       OperationErrorKind = "u32_out_of_range"
	KindStackUnderflow      OperationErrorKind = "stack_underflow"
	KindMemoryOutOfBounds   OperationErrorKind = "memory_out_of_bounds"
	KindMemoryUnaligned     OperationErrorKind = "memory_unaligned"
	KindInvalidMerklePath   OperationErrorKind = "invalid_merkle_path"
	KindAdviceStackEmpty    OperationErrorKind = "advice_stack_empty"
	KindAdviceMapKeyExists  OperationErrorKind = "advice_map_key_exists"
	KindAdviceMapKeyMissing OperationErrorKind = "advice_map_key_missing"
	KindMastForestNotFound  OperationErrorKind = "mast_forest_not_found"
	KindMastNodeNotFound    OperationErrorKind = "mast_node_not_found_in_forest"
	KindMaxCyclesExceeded   OperationErrorKind = "max_cycles_exceeded"
	KindCallStackMismatch   OperationErrorKind = "call_stack_mismatch"

	KindNotBinaryValue               OperationErrorKind = "not_binary_value"
	KindInvalidStackDepthOnReturn    OperationErrorKind = "invalid_stack_depth_on_return"
	KindMerklePathVerificationFailed OperationErrorKind = "merkle_path_verification_failed"
	KindEventError                   OperationErrorKind = "event_error"
	KindNotKernelProcedure OperationErrorKind = "sys_call_target_not_kernel"
	KindReentrantSyscall   OperationErrorKind = "reentrant_syscall"
)

// OperationError is raised by a single operation or node handler. It never
// carries clock or node-path information: that is layered on only when (and
// if) the error escapes to the caller, by ExecutionError. Beyond Kind and a
// human-readable Message, it carries whichever structured fields its Kind
// actually populates (see the New*Error constructors below) so a caller
// that cares can compare failures structurally instead of string-matching
// a formatted message.
type OperationError struct {
	Kind    OperationErrorKind
	Message string

	// Values holds the offending operand(s) for NotU32Values and similar
	// value-carrying faults.
	Values []field.Felt
	// ErrCode and ErrMsg are the caller-supplied diagnostic immediate and,
	// where one exists, a human-readable companion — used by
	// FailedAssertion and MerklePathVerificationFailed.
	ErrCode uint64
	ErrMsg  string
	// Expected and Actual back InvalidStackDepthOnReturn.
	Expected int
	Actual   int
	// EventID backs EventError.
	EventID uint32

	// MerkleValue/MerkleIndex/MerkleRoot back MerklePathVerificationFailed.
	MerkleValue field.Word
	MerkleIndex uint64
	MerkleRoot  field.Word
}

func (e *OperationError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewOperationError builds an OperationError with a formatted message and
// no structured fields, for faults whose Kind alone is the whole story.
func NewOperationError(kind OperationErrorKind, format string, args ...any) *OperationError {
	return &OperationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewNotBinaryValueError reports a Split/Loop condition that was neither 0
// nor 1.
func NewNotBinaryValueError(v field.Felt) *OperationError {
	return &OperationError{
		Kind:    KindNotBinaryValue,
		Message: fmt.Sprintf("condition value %s is neither 0 nor 1", v),
		Values:  []field.Felt{v},
	}
}

// NewInvalidStackDepthOnReturnError reports a Call/SysCall/DynCall whose
// visible stack depth at return did not match the depth observed when the
// call was entered.
func NewInvalidStackDepthOnReturnError(expected, actual int) *OperationError {
	return &OperationError{
		Kind:     KindInvalidStackDepthOnReturn,
		Message:  fmt.Sprintf("expected visible stack depth %d on return, got %d", expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

// NewFailedAssertionError reports an Assert whose top-of-stack value was
// not 1, carrying the caller-supplied diagnostic code.
func NewFailedAssertionError(errCode uint64) *OperationError {
	return &OperationError{
		Kind:    KindAssertionFailed,
		Message: fmt.Sprintf("assertion failed, err_code=%#x", errCode),
		ErrCode: errCode,
	}
}

// NewNotU32ValuesError reports that one or more operands of a u32 operation
// fell outside [0, 2^32), carrying the offending values.
func NewNotU32ValuesError(errCode uint64, vals ...field.Felt) *OperationError {
	return &OperationError{
		Kind:    KindU32OutOfRange,
		Message: fmt.Sprintf("value(s) out of u32 range: %v", vals),
		Values:  vals,
		ErrCode: errCode,
	}
}

// NewMerklePathVerificationFailedError reports an MpVerify whose claimed
// leaf value did not match the path recorded for root/index/depth. Boxed
// behind a pointer like every other OperationError variant, keeping the
// two-tier error sum type's size independent of this, its largest member.
func NewMerklePathVerificationFailedError(value field.Word, index uint64, root field.Word, errCode uint64, errMsg string) *OperationError {
	return &OperationError{
		Kind:        KindMerklePathVerificationFailed,
		Message:     fmt.Sprintf("merkle path verification failed at index %d: %s", index, errMsg),
		MerkleValue: value,
		MerkleIndex: index,
		MerkleRoot:  root,
		ErrCode:     errCode,
		ErrMsg:      errMsg,
	}
}

// NewEventError reports a sys_event whose host handler failed.
func NewEventError(eventID uint32, format string, args ...any) *OperationError {
	return &OperationError{
		Kind:    KindEventError,
		Message: fmt.Sprintf(format, args...),
		EventID: eventID,
	}
}
