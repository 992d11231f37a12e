package vybiummastvm

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
)

// ErrorKind re-exports the internal operation-failure taxonomy so callers
// can switch on it without importing the internal errsite package.
type ErrorKind = errsite.OperationErrorKind

const (
	ErrDivideByZero        = errsite.KindDivideByZero
	ErrAssertionFailed     = errsite.KindAssertionFailed
	ErrU32OutOfRange       = errsite.KindU32OutOfRange
	ErrStackUnderflow      = errsite.KindStackUnderflow
	ErrMemoryOutOfBounds   = errsite.KindMemoryOutOfBounds
	ErrMemoryUnaligned     = errsite.KindMemoryUnaligned
	ErrInvalidMerklePath   = errsite.KindInvalidMerklePath
	ErrAdviceStackEmpty    = errsite.KindAdviceStackEmpty
	ErrAdviceMapKeyExists  = errsite.KindAdviceMapKeyExists
	ErrAdviceMapKeyMissing = errsite.KindAdviceMapKeyMissing
	ErrMastForestNotFound  = errsite.KindMastForestNotFound
	ErrMastNodeNotFound    = errsite.KindMastNodeNotFound
	ErrMaxCyclesExceeded   = errsite.KindMaxCyclesExceeded
	ErrCallStackMismatch   = errsite.KindCallStackMismatch

	ErrNotBinaryValue               = errsite.KindNotBinaryValue
	ErrInvalidStackDepthOnReturn    = errsite.KindInvalidStackDepthOnReturn
	ErrMerklePathVerificationFailed = errsite.KindMerklePathVerificationFailed
	ErrEventError                   = errsite.KindEventError
	ErrNotKernelProcedure           = errsite.KindNotKernelProcedure
	ErrReentrantSyscall             = errsite.KindReentrantSyscall
)

// ExecutionError is returned by (*VM).Execute on a failed run. It carries
// the failing operation's kind and message plus, once Site is called, the
// clock and (in a non-nocontext build) node path/label where the failure
// occurred.
type ExecutionError struct {
	Kind    ErrorKind
	Message string

	inner *errsite.ExecutionError
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.inner.Context())
}

// Unwrap exposes the wrapped internal error for errors.As/errors.Is against
// ErrorKind-bearing sentinels in callers that need it.
func (e *ExecutionError) Unwrap() error {
	return e.inner
}

// Site returns the execution-site context the failure occurred at. Its
// fields depend on build tags: a nocontext build reports only the clock.
func (e *ExecutionError) Site() errsite.ExecutionSiteContext {
	return e.inner.Context()
}

func wrapExecutionError(err error) error {
	if err == nil {
		return nil
	}
	var inner *errsite.ExecutionError
	if !errors.As(err, &inner) {
		return err
	}
	return &ExecutionError{
		Kind:    inner.Op.Kind,
		Message: inner.Op.Message,
		inner:   inner,
	}
}
