package rv32

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryReadWriteWordRoundTrip(t *testing.T) {
	m := NewMemory(64)
	require.NoError(t, m.WriteWord(4, 0xDEADBEEF))

	v, err := m.ReadWord(4)
	require.NoError(t, err)
	require.EqualValues(t, 0xDEADBEEF, v)
}

func TestMemoryLittleEndianByteOrder(t *testing.T) {
	m := NewMemory(64)
	require.NoError(t, m.WriteWord(0, 0x01020304))

	b0, err := m.ReadByte(0)
	require.NoError(t, err)
	require.EqualValues(t, 0x04, b0)

	b3, err := m.ReadByte(3)
	require.NoError(t, err)
	require.EqualValues(t, 0x01, b3)
}

func TestMemoryOutOfBoundsIsBusError(t *testing.T) {
	m := NewMemory(4)

	_, err := m.ReadWord(1)
	require.Error(t, err)

	var busErr *BusError
	require.True(t, errors.As(err, &busErr))
	require.Equal(t, "read", busErr.Op)
}

func TestMemoryAccessExactlyAtBoundarySucceeds(t *testing.T) {
	m := NewMemory(4)

	_, err := m.ReadWord(0)
	require.NoError(t, err)

	_, err = m.ReadByte(3)
	require.NoError(t, err)

	_, err = m.ReadByte(4)
	require.Error(t, err)
}

func TestLoadProgramRejectsOversizedImage(t *testing.T) {
	m := NewMemory(4)
	err := m.LoadProgram([]byte{1, 2, 3, 4, 5})
	require.Error(t, err)
}

func TestLoadProgramZeroFillsRemainder(t *testing.T) {
	m := NewMemory(8)
	require.NoError(t, m.WriteWord(4, 0xFFFFFFFF))
	require.NoError(t, m.LoadProgram([]byte{1, 2}))

	v, err := m.ReadWord(4)
	require.NoError(t, err)
	require.EqualValues(t, 0, v)
}
