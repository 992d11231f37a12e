package opstack

import "github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"

func errStackUnderflow() *errsite.OperationError {
	return errsite.NewOperationError(errsite.KindStackUnderflow, "pop from empty operand stack")
}
