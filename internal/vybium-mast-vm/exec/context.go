package exec

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/memory"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/opstack"
)

// execContext is one isolated execution context: its own operand-stack
// overflow table and its own memory, both of which Call/SysCall/DynCall
// must not let leak across context boundaries.
type execContext struct {
	id         uint32
	stack      *opstack.Stack
	memory     *memory.Memory
	isSyscall  bool
	returnNode uint32 // not set or read by the driver; error-site paths come from Driver.nodePath
}

func newRootContext() *execContext {
	return &execContext{id: 0, stack: opstack.New(), memory: memory.New()}
}

// fork starts a fresh context whose visible stack window is seeded from
// the caller's (Call/SysCall/DynCall share the caller's 16 visible
// elements) but whose overflow table and memory both start empty.
func (c *execContext) fork(newID uint32, isSyscall bool) *execContext {
	top, depth := c.stack.Top16()
	return &execContext{
		id:        newID,
		stack:     opstack.NewFromVisible(top, depth),
		memory:    memory.New(),
		isSyscall: isSyscall,
	}
}

// mergeReturnValues copies the callee's 16 visible stack elements back into
// the caller's window in place, preserving the caller's own overflow table
// and clock bookkeeping untouched (they were never given to the callee, so
// they need no restoration beyond simply not being clobbered). The callee's
// visible depth must equal expectedDepth — the caller's own visible depth
// at the moment the call was entered — or the call faults instead of
// returning: every Call/SysCall/DynCall conserves visible stack depth
// across its boundary.
func (c *execContext) mergeReturnValues(callee *execContext, expectedDepth int) *errsite.OperationError {
	top, depth := callee.stack.Top16()
	if depth != expectedDepth {
		return errsite.NewInvalidStackDepthOnReturnError(expectedDepth, depth)
	}
	c.stack.SetVisible(top, depth)
	return nil
}
