package rv32

import (
	"encoding/binary"
	"fmt"
)

// DefaultMemorySize is spec.md §3's default N: 1 MiB of simulated RAM.
const DefaultMemorySize = 1 << 20

// BusError is the fatal error raised by an out-of-range memory access
// (spec §3's invariant: a memory access at address A of width w succeeds
// iff 0 <= A and A+w <= N).
type BusError struct {
	Addr  uint32
	Width uint32
	Op    string // "read" or "write"
}

func (e *BusError) Error() string {
	return fmt.Sprintf("bus error: %s of width %d at 0x%08x is out of bounds", e.Op, e.Width, e.Addr)
}

// Memory is the flat, byte-addressable, little-endian memory described in
// spec §4.1. Unlike the teacher's paged and merkleized memory (grounded on
// rvgo/fast/memory.go), this simulator has no fault-proof witness to
// generate, so a single contiguous byte slice is enough.
type Memory struct {
	data        []byte
	programSize uint32
}

// NewMemory allocates a zero-initialised memory of the given size.
func NewMemory(size uint32) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns N, the memory's fixed byte capacity.
func (m *Memory) Size() uint32 { return uint32(len(m.data)) }

// ProgramSize returns the length of the most recently loaded program, in
// bytes. A fetch at or beyond this address is a clean PC-out-of-bounds
// halt (spec §4.4), distinct from a bus error against the full memory.
func (m *Memory) ProgramSize() uint32 { return m.programSize }

func (m *Memory) bounds(addr, width uint32, op string) error {
	if uint64(addr)+uint64(width) > uint64(len(m.data)) {
		return &BusError{Addr: addr, Width: width, Op: op}
	}
	return nil
}

// ReadByte reads one byte. The caller decides whether to sign- or
// zero-extend it (LB vs LBU).
func (m *Memory) ReadByte(addr uint32) (uint8, error) {
	if err := m.bounds(addr, 1, "read"); err != nil {
		return 0, err
	}
	return m.data[addr], nil
}

// ReadHalf reads a little-endian 16-bit halfword.
func (m *Memory) ReadHalf(addr uint32) (uint16, error) {
	if err := m.bounds(addr, 2, "read"); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(m.data[addr:]), nil
}

// ReadWord reads a little-endian 32-bit word.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if err := m.bounds(addr, 4, "read"); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr:]), nil
}

// WriteByte writes the low 8 bits of v.
func (m *Memory) WriteByte(addr uint32, v uint8) error {
	if err := m.bounds(addr, 1, "write"); err != nil {
		return err
	}
	m.data[addr] = v
	return nil
}

// WriteHalf writes the low 16 bits of v, little-endian.
func (m *Memory) WriteHalf(addr uint32, v uint16) error {
	if err := m.bounds(addr, 2, "write"); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(m.data[addr:], v)
	return nil
}

// WriteWord writes v, little-endian.
func (m *Memory) WriteWord(addr uint32, v uint32) error {
	if err := m.bounds(addr, 4, "write"); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:], v)
	return nil
}

// LoadProgram zero-fills the memory and copies prog in starting at address
// 0 (spec §4.5's Driver responsibility b/c). It refuses images that don't
// fit within the configured size.
func (m *Memory) LoadProgram(prog []byte) error {
	if len(prog) > len(m.data) {
		return fmt.Errorf("program of %d bytes exceeds memory size of %d bytes", len(prog), len(m.data))
	}
	clear(m.data)
	copy(m.data, prog)
	m.programSize = uint32(len(prog))
	return nil
}
