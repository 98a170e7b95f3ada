// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma

import (
	"runtime"
	"unsafe"

	"github.com/d1hal/tamago/soc/d1/ccu"
)

// Descriptor is a single DMA linked-list descriptor, laid out to match the
// hardware's own walk order (config, source, destination, byte count,
// parameter, link-to-next). A channel is started by pointing its StartAddr
// register at the physical address of the head descriptor; the controller
// reads each descriptor in turn and, on completion, either halts (LinkEnd)
// or loads the next one from Link.
type Descriptor struct {
	Config          uint32
	SourceAddr      uint32
	DestinationAddr uint32
	ByteCounter     uint32
	Parameter       uint32
	Link            uint32
	_pad            [2]uint32
}

// LinkEnd terminates a descriptor chain.
const LinkEnd = 0xfffff800

// Addr returns the physical address of d, for writing into a channel's
// StartAddr register.
func (d *Descriptor) Addr() uint32 {
	return uint32(uintptr(unsafe.Pointer(d)))
}

// DMA represents the DMA controller instance.
type DMA struct {
	// Base is the controller's base address.
	Base uint32

	regs *RegisterBlock
}

// Init ungates and deasserts reset on the DMA controller.
func (hw *DMA) Init(c *ccu.RegisterBlock) {
	if hw.Base == 0 {
		panic("dma: invalid controller instance")
	}

	hw.regs = New(hw.Base)

	p := ccu.DMA{}
	p.AssertResetOnly(c)
	p.MaskGateOnly(c)
	p.DeassertResetOnly(c)
	p.UnmaskGateOnly(c)
}

// Free gates off the DMA controller's bus clock and returns the register
// block to the caller, the inverse of Init. DMA channels own no pads, so
// unlike the other drivers in this tree Free returns only the register
// block.
func (hw *DMA) Free(c *ccu.RegisterBlock) *RegisterBlock {
	ccu.Free(c, ccu.DMA{})

	regs := hw.regs
	hw.regs = nil

	return regs
}

// Channel returns the register handle for channel n (0..15).
func (hw *DMA) Channel(n int) *ChannelRegisterBlock {
	if n < 0 || n >= NumChannels {
		panic("dma: invalid channel index")
	}
	return &hw.regs.Channels[n]
}

// Start points channel n at desc and enables it.
func (hw *DMA) Start(n int, desc *Descriptor) {
	ch := hw.Channel(n)
	ch.StartAddr.Write(desc.Addr())
	ch.Enable.Write(1)
}

// Stop disables channel n, halting any in-progress transfer.
func (hw *DMA) Stop(n int) {
	hw.Channel(n).Enable.Write(0)
}

// Busy reports whether channel n is currently enabled.
func (hw *DMA) Busy(n int) bool {
	return hw.Channel(n).Enable.Read() != 0
}

// Wait blocks until channel n's Enable register self-clears, which the
// controller does once the descriptor chain reaches LinkEnd.
func (hw *DMA) Wait(n int) {
	for hw.Busy(n) {
		runtime.Gosched()
	}
}

// Transfer runs a single-descriptor, blocking memory-to-memory or
// memory-to-peripheral copy on channel n and waits for completion.
func (hw *DMA) Transfer(n int, config uint32, src uint32, dst uint32, length uint32) {
	desc := &Descriptor{
		Config:          config,
		SourceAddr:      src,
		DestinationAddr: dst,
		ByteCounter:     length,
		Link:            LinkEnd,
	}

	hw.Start(n, desc)
	hw.Wait(n)
}
