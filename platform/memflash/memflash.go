// Package memflash emulates one NOR flash page in RAM: erase sets every bit,
// a word write can only clear bits. An optional file keeps the page across
// simulator restarts.
package memflash

import (
	"encoding/binary"
	"errors"
	"os"
	"sync"

	"indicator-go/errcode"
	"indicator-go/platform"
)

var _ platform.FlashRegion = (*Page)(nil)

// Faults injects hardware misbehaviour for tests.
type Faults struct {
	FailErase  bool // ErasePage returns an error and leaves the page untouched
	FailWrite  bool // WriteWord returns an error
	FailRead   bool // ReadWord returns an error
	StuckBusy  bool // WriteDone never reports completion
	BusyPolls  int  // WriteDone reports false this many times after each operation
	FlipOnRead bool // ReadWord returns the stored word with bit 0 inverted
}

type Stats struct {
	Erases uint32
	Writes uint32
}

type Page struct {
	mu     sync.Mutex
	buf    []byte
	path   string
	busy   int
	faults Faults
	stats  Stats
}

// New returns an erased page of size bytes (rounded down to whole words).
func New(size uint32) *Page {
	size -= size % platform.WordSize
	p := &Page{buf: make([]byte, size)}
	p.fill()
	return p
}

// Open returns a page backed by path. A missing file yields an erased page;
// a file of the wrong size is rejected.
func Open(path string, size uint32) (*Page, error) {
	p := New(size)
	p.path = path
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return p, nil
	case err != nil:
		return nil, err
	case uint32(len(b)) != uint32(len(p.buf)):
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "memflash.Open", Msg: "backing file size differs from page size"}
	}
	copy(p.buf, b)
	return p, nil
}

func (p *Page) Size() uint32 { return uint32(len(p.buf)) }

func (p *Page) ReadWord(off uint32) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.faults.FailRead {
		return 0, errcode.ReadFailed
	}
	if off%platform.WordSize != 0 || off+platform.WordSize > uint32(len(p.buf)) {
		return 0, errcode.InvalidParams
	}
	v := binary.LittleEndian.Uint32(p.buf[off:])
	if p.faults.FlipOnRead {
		v ^= 1
	}
	return v, nil
}

func (p *Page) WriteWord(off uint32, v uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.faults.FailWrite {
		return errcode.WriteFailed
	}
	if off%platform.WordSize != 0 || off+platform.WordSize > uint32(len(p.buf)) {
		return errcode.InvalidParams
	}
	old := binary.LittleEndian.Uint32(p.buf[off:])
	binary.LittleEndian.PutUint32(p.buf[off:], old&v)
	p.stats.Writes++
	p.busy = p.faults.BusyPolls
	return p.persist()
}

func (p *Page) ErasePage() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.faults.FailErase {
		return errcode.WriteFailed
	}
	p.fill()
	p.stats.Erases++
	p.busy = p.faults.BusyPolls
	return p.persist()
}

func (p *Page) WriteDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.faults.StuckBusy {
		return false
	}
	if p.busy > 0 {
		p.busy--
		return false
	}
	return true
}

// SetFaults replaces the injected faults.
func (p *Page) SetFaults(f Faults) {
	p.mu.Lock()
	p.faults = f
	p.mu.Unlock()
}

func (p *Page) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Bytes returns a copy of the page contents.
func (p *Page) Bytes() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.buf...)
}

// Poke overwrites a word without NOR semantics (corruption tests).
func (p *Page) Poke(off uint32, v uint32) {
	p.mu.Lock()
	binary.LittleEndian.PutUint32(p.buf[off:], v)
	p.mu.Unlock()
}

func (p *Page) fill() {
	for i := range p.buf {
		p.buf[i] = 0xFF
	}
}

// caller holds lock
func (p *Page) persist() error {
	if p.path == "" {
		return nil
	}
	return os.WriteFile(p.path, p.buf, 0o644)
}
