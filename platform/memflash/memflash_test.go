package memflash

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indicator-go/errcode"
	"indicator-go/platform"
)

func word(t *testing.T, p *Page, off uint32) uint32 {
	t.Helper()
	v, err := p.ReadWord(off)
	require.NoError(t, err)
	return v
}

func TestNORSemantics(t *testing.T) {
	p := New(64)
	assert.Equal(t, platform.Erased, word(t, p, 0))

	require.NoError(t, p.WriteWord(0, 0x0000FF0F))
	require.NoError(t, p.WriteWord(0, 0xF0F0F0F0))
	assert.Equal(t, uint32(0x0000F000), word(t, p, 0), "writes can only clear bits")

	require.NoError(t, p.ErasePage())
	assert.Equal(t, platform.Erased, word(t, p, 0))
	assert.Equal(t, Stats{Erases: 1, Writes: 2}, p.Stats())
}

func TestRejectsUnalignedAndOutOfRange(t *testing.T) {
	p := New(16)
	assert.ErrorIs(t, p.WriteWord(2, 0), errcode.InvalidParams)
	assert.ErrorIs(t, p.WriteWord(16, 0), errcode.InvalidParams)
	_, err := p.ReadWord(16)
	assert.ErrorIs(t, err, errcode.InvalidParams)
}

func TestFailRead(t *testing.T) {
	p := New(16)
	p.SetFaults(Faults{FailRead: true})
	_, err := p.ReadWord(0)
	assert.ErrorIs(t, err, errcode.ReadFailed)
}

func TestBusyPolls(t *testing.T) {
	p := New(16)
	p.SetFaults(Faults{BusyPolls: 2})
	require.NoError(t, p.WriteWord(0, 1))
	assert.False(t, p.WriteDone())
	assert.False(t, p.WriteDone())
	assert.True(t, p.WriteDone())
}

func TestFileBacking(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.bin")

	p, err := Open(path, 32)
	require.NoError(t, err)
	require.NoError(t, p.WriteWord(8, 0xA5A5A5A5))

	again, err := Open(path, 32)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xA5A5A5A5), word(t, again, 8))
	assert.Equal(t, platform.Erased, word(t, again, 0))

	_, err = Open(path, 64)
	assert.ErrorIs(t, err, errcode.InvalidParams)
}
