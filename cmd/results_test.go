package cmd

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeResFile(t *testing.T, dir string, regs [32]uint32) string {
	t.Helper()
	buf := make([]byte, 32*4)
	for i, v := range regs {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	path := filepath.Join(dir, "test.res")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestLoadExpectedRegistersRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var want [32]uint32
	want[0] = 0
	want[3] = 0xDEADBEEF
	path := writeResFile(t, dir, want)

	got, err := LoadExpectedRegisters(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadExpectedRegistersRejectsWrongSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.res")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))

	_, err := LoadExpectedRegisters(path)
	require.Error(t, err)
}

func TestCompareRegistersReportsEveryMismatch(t *testing.T) {
	var got, want [32]uint32
	got[1] = 5
	want[1] = 6
	got[2] = 9
	want[2] = 9

	mismatches := CompareRegisters(got, want)
	require.Len(t, mismatches, 1)
	require.Equal(t, 1, mismatches[0].Index)
	require.EqualValues(t, 5, mismatches[0].Got)
	require.EqualValues(t, 6, mismatches[0].Expected)
}

func TestCompareRegistersAllMatch(t *testing.T) {
	var regs [32]uint32
	regs[4] = 123
	require.Empty(t, CompareRegisters(regs, regs))
}
