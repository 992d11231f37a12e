// Package memory implements the per-execution-context, word-addressable
// memory region: sparse storage indexed by element address, with aligned
// word (4-element) and double-word (8-element) views layered on top.
package memory

import (
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/errsite"
	"github.com/vybium/vybium-mast-vm/internal/vybium-mast-vm/field"
)

// MaxAddress bounds the addressable element range; addresses at or above
// it are rejected rather than silently wrapping.
const MaxAddress = 1 << 32

// Memory is one execution context's address space. The zero value is a
// ready-to-use, all-zero memory.
type Memory struct {
	cells map[uint64]field.Felt
}

// New returns an empty memory.
func New() *Memory {
	return &Memory{cells: make(map[uint64]field.Felt)}
}

func checkBounds(addr uint64) error {
	if addr >= MaxAddress {
		return errsite.NewOperationError(errsite.KindMemoryOutOfBounds, "address %d is out of bounds (max %d)", addr, MaxAddress)
	}
	return nil
}

// ReadElement returns the value at addr, zero if never written.
func (m *Memory) ReadElement(addr uint64) (field.Felt, error) {
	if err := checkBounds(addr); err != nil {
		return field.Zero(), err
	}
	if v, ok := m.cells[addr]; ok {
		return v, nil
	}
	return field.Zero(), nil
}

// WriteElement stores v at addr.
func (m *Memory) WriteElement(addr uint64, v field.Felt) error {
	if err := checkBounds(addr); err != nil {
		return err
	}
	if v.IsZero() {
		delete(m.cells, addr) // keep the sparse map from growing on zero-writes
		return nil
	}
	m.cells[addr] = v
	return nil
}

func checkAligned(addr uint64, modulus uint64) error {
	if addr%modulus != 0 {
		return errsite.NewOperationError(errsite.KindMemoryUnaligned, "address %d is not aligned to %d", addr, modulus)
	}
	return nil
}

// ReadWord reads the 4-element word starting at addr, which must be
// 4-aligned.
func (m *Memory) ReadWord(addr uint64) (field.Word, error) {
	if err := checkAligned(addr, 4); err != nil {
		return field.Word{}, err
	}
	var w field.Word
	for i := 0; i < 4; i++ {
		v, err := m.ReadElement(addr + uint64(i))
		if err != nil {
			return field.Word{}, err
		}
		w[i] = v
	}
	return w, nil
}

// WriteWord writes a 4-element word starting at addr, which must be
// 4-aligned.
func (m *Memory) WriteWord(addr uint64, w field.Word) error {
	if err := checkAligned(addr, 4); err != nil {
		return err
	}
	for i := 0; i < 4; i++ {
		if err := m.WriteElement(addr+uint64(i), w[i]); err != nil {
			return err
		}
	}
	return nil
}

// ReadDoubleWord reads two consecutive words starting at addr, which must
// be 8-aligned.
func (m *Memory) ReadDoubleWord(addr uint64) (field.Word, field.Word, error) {
	if err := checkAligned(addr, 8); err != nil {
		return field.Word{}, field.Word{}, err
	}
	a, err := m.ReadWord(addr)
	if err != nil {
		return field.Word{}, field.Word{}, err
	}
	b, err := m.ReadWord(addr + 4)
	if err != nil {
		return field.Word{}, field.Word{}, err
	}
	return a, b, nil
}

// WriteDoubleWord writes two consecutive words starting at addr, which
// must be 8-aligned.
func (m *Memory) WriteDoubleWord(addr uint64, a, b field.Word) error {
	if err := checkAligned(addr, 8); err != nil {
		return err
	}
	if err := m.WriteWord(addr, a); err != nil {
		return err
	}
	return m.WriteWord(addr+4, b)
}

// Snapshot returns a copy of every non-zero cell currently written, for
// debugging and inspection after a run completes.
func (m *Memory) Snapshot() map[uint64]field.Felt {
	out := make(map[uint64]field.Felt, len(m.cells))
	for k, v := range m.cells {
		out[k] = v
	}
	return out
}
