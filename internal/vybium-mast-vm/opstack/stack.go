// Package opstack implements the operand stack: 16 directly addressable
// visible elements plus an unbounded overflow table recording every
// element that has been pushed past the visible window, linked by clock
// value so the chain can be walked in either direction.
package opstack

import "github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"

// VisibleDepth is the number of stack elements directly addressable by
// index at any time; anything pushed beyond this spills into the overflow
// table.
const VisibleDepth = 16

// overflowEntry is one link in the overflow chain: the value that spilled,
// the clock at which it spilled, and the clock of the entry it displaced
// (0 with hasPrev=false if it was the first spill in this context).
type overflowEntry struct {
	clk     uint64
	value   field.Felt
	prevClk uint64
	hasPrev bool
}

// Stack is one execution context's operand stack. A fresh context always
// starts with an empty overflow table, even if its visible elements were
// seeded from a caller's stack (Call/SysCall/DynCall isolate overflow, not
// the visible window).
type Stack struct {
	visible [VisibleDepth]field.Felt
	depth   int // number of visible elements holding a real (non-zero-padding) value, 0..VisibleDepth

	overflow   []overflowEntry
	lastClk    uint64
	lastClkSet bool
}

// New returns an empty stack (all visible elements zero, no overflow).
func New() *Stack {
	return &Stack{}
}

// NewFromVisible seeds a new context's visible window from a caller's top
// 16 elements, with an empty overflow table — the isolation behavior
// Call/SysCall/DynCall require.
func NewFromVisible(top [VisibleDepth]field.Felt, depth int) *Stack {
	s := &Stack{visible: top, depth: depth}
	return s
}

// Depth returns the number of elements logically on the stack, including
// anything spilled into the overflow table.
func (s *Stack) Depth() int {
	return s.depth + len(s.overflow)
}

// Peek returns the i-th element from the top (0 = top of stack) without
// removing it. i must be < VisibleDepth; spec operations never address
// into the overflow table directly.
func (s *Stack) Peek(i int) field.Felt {
	if i < 0 || i >= VisibleDepth {
		panic("opstack: Peek index out of visible range")
	}
	return s.visible[i]
}

// Set overwrites the i-th visible element from the top.
func (s *Stack) Set(i int, v field.Felt) {
	if i < 0 || i >= VisibleDepth {
		panic("opstack: Set index out of visible range")
	}
	s.visible[i] = v
}

// Push places v on top, shifting everything down; the element that falls
// off the bottom of the visible window spills into the overflow table at
// clock clk.
func (s *Stack) Push(clk uint64, v field.Felt) {
	spilled := s.visible[VisibleDepth-1]
	copy(s.visible[1:], s.visible[:VisibleDepth-1])
	s.visible[0] = v

	if s.depth < VisibleDepth {
		s.depth++
		return
	}

	entry := overflowEntry{clk: clk, value: spilled}
	if s.lastClkSet {
		entry.prevClk = s.lastClk
		entry.hasPrev = true
	}
	s.overflow = append(s.overflow, entry)
	s.lastClk = clk
	s.lastClkSet = true
}

// Pop removes and returns the top element, pulling the next value down
// from the overflow table if one is pending.
func (s *Stack) Pop() (field.Felt, error) {
	if s.Depth() == 0 {
		return field.Zero(), errStackUnderflow()
	}
	top := s.visible[0]
	copy(s.visible[:VisibleDepth-1], s.visible[1:])

	if n := len(s.overflow); n > 0 {
		entry := s.overflow[n-1]
		s.overflow = s.overflow[:n-1]
		s.visible[VisibleDepth-1] = entry.value
		if entry.hasPrev {
			s.lastClk = entry.prevClk
			s.lastClkSet = true
		} else {
			s.lastClkSet = false
		}
	} else {
		s.visible[VisibleDepth-1] = field.Zero()
		if s.depth > 0 {
			s.depth--
		}
	}
	return top, nil
}

// Top16 returns a copy of the current visible window, for seeding a
// callee's fresh context stack.
func (s *Stack) Top16() ([VisibleDepth]field.Felt, int) {
	return s.visible, s.depth
}

// SetVisible overwrites only the visible window and its occupied depth,
// leaving the overflow table and clock bookkeeping untouched. This is the
// restoration step a Call/SysCall/DynCall return needs — unlike
// NewFromVisible, which builds a fresh context with an empty overflow
// table, SetVisible is applied to the caller's own stack, whose overflow
// must survive the call unchanged.
func (s *Stack) SetVisible(top [VisibleDepth]field.Felt, depth int) {
	s.visible = top
	s.depth = depth
}
