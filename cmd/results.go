package cmd

import (
	"encoding/binary"
	"fmt"
	"os"
)

// ExpectedRegisterCount is the width of a .res golden file: one uint32
// per architectural register, x0 through x31 (spec §6).
const ExpectedRegisterCount = 32

// expectedFileSize is the exact byte length a well-formed .res file must
// have: 32 little-endian uint32s.
const expectedFileSize = ExpectedRegisterCount * 4

// LoadExpectedRegisters reads a .res golden file and returns its 32
// register values. The format is little-endian despite some historical
// documentation claiming big-endian (spec §6's explicit correction,
// confirmed against original_source/ResultsLoader.java's actual byte
// assembly order).
func LoadExpectedRegisters(path string) ([32]uint32, error) {
	var out [32]uint32

	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("reading expected-results file %s: %w", path, err)
	}
	if len(data) != expectedFileSize {
		return out, fmt.Errorf("expected-results file %s has %d bytes, want %d", path, len(data), expectedFileSize)
	}

	for i := 0; i < ExpectedRegisterCount; i++ {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out, nil
}

// RegisterMismatch describes one register whose final value disagreed
// with the golden file.
type RegisterMismatch struct {
	Index    int
	Got      uint32
	Expected uint32
}

// CompareRegisters diffs a machine's final register snapshot against a
// golden file's expected values, returning every mismatching register
// (spec §6's pass/fail criterion: all 32 registers must match exactly).
func CompareRegisters(got, expected [32]uint32) []RegisterMismatch {
	var mismatches []RegisterMismatch
	for i := 0; i < ExpectedRegisterCount; i++ {
		if got[i] != expected[i] {
			mismatches = append(mismatches, RegisterMismatch{Index: i, Got: got[i], Expected: expected[i]})
		}
	}
	return mismatches
}
