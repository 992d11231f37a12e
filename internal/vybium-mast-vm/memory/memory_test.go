package memory

import (
	"testing"

	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
)

func TestReadUnwrittenIsZero(t *testing.T) {
	m := New()
	v, err := m.ReadElement(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsZero() {
		t.Fatalf("unwritten cell = %s, want 0", v)
	}
}

func TestWriteReadElement(t *testing.T) {
	m := New()
	if err := m.WriteElement(7, field.New(99)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := m.ReadElement(7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != field.New(99) {
		t.Fatalf("ReadElement = %s, want 99", v)
	}
}

func TestWordAlignment(t *testing.T) {
	m := New()
	w := field.Word{field.New(1), field.New(2), field.New(3), field.New(4)}
	if err := m.WriteWord(8, w); err != nil {
		t.Fatalf("unexpected error writing aligned word: %v", err)
	}
	if err := m.WriteWord(9, w); err == nil {
		t.Fatalf("expected alignment error writing to unaligned address")
	}
	got, err := m.ReadWord(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(w) {
		t.Fatalf("ReadWord = %+v, want %+v", got, w)
	}
}

func TestDoubleWordAlignment(t *testing.T) {
	m := New()
	a := field.Word{field.New(1), field.New(2), field.New(3), field.New(4)}
	b := field.Word{field.New(5), field.New(6), field.New(7), field.New(8)}
	if err := m.WriteDoubleWord(16, a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := m.ReadDoubleWord(12); err == nil {
		t.Fatalf("expected alignment error reading unaligned double word")
	}
	gotA, gotB, err := m.ReadDoubleWord(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !gotA.Equal(a) || !gotB.Equal(b) {
		t.Fatalf("ReadDoubleWord = %+v, %+v, want %+v, %+v", gotA, gotB, a, b)
	}
}

func TestOutOfBounds(t *testing.T) {
	m := New()
	if _, err := m.ReadElement(MaxAddress); err == nil {
		t.Fatalf("expected out-of-bounds error")
	}
}
