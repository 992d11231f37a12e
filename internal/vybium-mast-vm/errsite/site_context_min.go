//go:build nocontext

package errsite

import "fmt"

// ExecutionSiteContext, built with the nocontext tag, collapses to just the
// clock value: callers that don't want label/source-file lookups kept alive
// (and the bookkeeping that resolves them) can build with -tags nocontext.
type ExecutionSiteContext struct {
	Clk uint64
}

func (c ExecutionSiteContext) String() string {
	return fmt.Sprintf("clk=%d", c.Clk)
}

// SetNodePath is a no-op: the nocontext build collapses site context to
// just the clock value.
func (c *ExecutionSiteContext) SetNodePath(path []uint32) {}

// SetLabel is a no-op: the nocontext build collapses site context to just
// the clock value.
func (c *ExecutionSiteContext) SetLabel(label, sourceFile string) {}
