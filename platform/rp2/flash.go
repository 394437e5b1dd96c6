//go:build rp2040

package rp2

import (
	"encoding/binary"
	"machine"

	"indicator-go/errcode"
	"indicator-go/platform"
)

var _ platform.FlashRegion = (*FlashPage)(nil)

// FlashPage is the last erase block of the TinyGo flash data region.
//
// The RP2040 programs whole 256-byte pages. A word write programs a page
// that is all ones except for the target word; programming ones leaves
// flash bits untouched, so neighbouring words keep their values.
// machine.Flash operations return only once complete.
type FlashPage struct {
	base  int64
	size  uint32
	wblk  int64
	block []byte
}

func NewFlashPage() (*FlashPage, error) {
	ebs := machine.Flash.EraseBlockSize()
	total := machine.Flash.Size()
	if total < ebs {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "rp2.flash", Msg: "no flash data region"}
	}
	wbs := machine.Flash.WriteBlockSize()
	return &FlashPage{
		base:  total - ebs,
		size:  uint32(ebs),
		wblk:  wbs,
		block: make([]byte, wbs),
	}, nil
}

func (f *FlashPage) Size() uint32 { return f.size }

func (f *FlashPage) ReadWord(off uint32) (uint32, error) {
	if off%platform.WordSize != 0 || off >= f.size {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "rp2.flash.read", Msg: "offset out of page or unaligned"}
	}
	var b [platform.WordSize]byte
	if _, err := machine.Flash.ReadAt(b[:], f.base+int64(off)); err != nil {
		return 0, errcode.Wrap(errcode.ReadFailed, "rp2.flash.read", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (f *FlashPage) WriteWord(off uint32, v uint32) error {
	if off%platform.WordSize != 0 || off >= f.size {
		return &errcode.E{C: errcode.InvalidParams, Op: "rp2.flash.write", Msg: "offset out of page or unaligned"}
	}
	for i := range f.block {
		f.block[i] = 0xFF
	}
	aligned := int64(off) / f.wblk * f.wblk
	binary.LittleEndian.PutUint32(f.block[int64(off)-aligned:], v)
	if _, err := machine.Flash.WriteAt(f.block, f.base+aligned); err != nil {
		return err
	}
	return nil
}

func (f *FlashPage) ErasePage() error {
	return machine.Flash.EraseBlocks(f.base/int64(f.size), 1)
}

func (f *FlashPage) WriteDone() bool { return true }
