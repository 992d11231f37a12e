package opstack

import (
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
)

func TestPushPopRoundTrip(t *testing.T) {
	s := New()
	s.Push(1, field.New(10))
	s.Push(2, field.New(20))
	got, err := s.Pop()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != field.New(20) {
		t.Fatalf("Pop = %s, want 20", got)
	}
	got, err = s.Pop()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != field.New(10) {
		t.Fatalf("Pop = %s, want 10", got)
	}
}

func TestPopEmptyUnderflows(t *testing.T) {
	s := New()
	if _, err := s.Pop(); err == nil {
		t.Fatalf("expected underflow error popping empty stack")
	}
}

func TestOverflowSpillAndRecover(t *testing.T) {
	s := New()
	for i := 0; i < VisibleDepth+5; i++ {
		s.Push(uint64(i+1), field.New(uint64(i)))
	}
	if got, want := s.Depth(), VisibleDepth+5; got != want {
		t.Fatalf("Depth = %d, want %d", got, want)
	}
	// Pop everything back off in reverse order of push.
	for i := VisibleDepth + 4; i >= 0; i-- {
		got, err := s.Pop()
		if err != nil {
			t.Fatalf("unexpected error at i=%d: %v", i, err)
		}
		if got != field.New(uint64(i)) {
			t.Fatalf("Pop at i=%d = %s, want %d", i, got, i)
		}
	}
	if s.Depth() != 0 {
		t.Fatalf("Depth after draining = %d, want 0", s.Depth())
	}
}

func TestNewFromVisibleIsolatesOverflow(t *testing.T) {
	s := New()
	for i := 0; i < VisibleDepth+3; i++ {
		s.Push(uint64(i+1), field.New(uint64(i)))
	}
	top, depth := s.Top16()
	callee := NewFromVisible(top, depth)
	if callee.Depth() != VisibleDepth {
		t.Fatalf("callee Depth = %d, want %d (overflow must not carry over)", callee.Depth(), VisibleDepth)
	}
}
