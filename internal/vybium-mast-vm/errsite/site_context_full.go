//go:build !nocontext

package errsite

import "fmt"

// ExecutionSiteContext pins down where in a run an OperationError
// surfaced. It is only ever constructed lazily, on the failure path, by
// the driver's resolveSiteContext in package exec — never eagerly on every
// operation call.
type ExecutionSiteContext struct {
	Clk        uint64
	NodePath   []uint32 // node ids from the root to the failing node, root first
	OpIndex    int      // always -1: the index of the failing operation within its basic block is not recorded
	Label      string   // host-provided label for the failing node, if any
	SourceFile string   // host-provided source file for the failing node, if any
}

func (c ExecutionSiteContext) String() string {
	if c.Label != "" {
		return fmt.Sprintf("clk=%d label=%q path=%v op=%d", c.Clk, c.Label, c.NodePath, c.OpIndex)
	}
	return fmt.Sprintf("clk=%d path=%v op=%d", c.Clk, c.NodePath, c.OpIndex)
}

// SetNodePath records the path of node ids (root first) leading to the
// failing node. It is a no-op under the nocontext build tag.
func (c *ExecutionSiteContext) SetNodePath(path []uint32) {
	c.NodePath = path
	c.OpIndex = -1
}

// SetLabel records the host-provided label/source file for the failing
// node. It is a no-op under the nocontext build tag.
func (c *ExecutionSiteContext) SetLabel(label, sourceFile string) {
	c.Label = label
	c.SourceFile = sourceFile
}
