// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spi

import (
	"runtime"

	"github.com/d1hal/tamago/soc/d1/ccu"
	"github.com/d1hal/tamago/soc/d1/gpio"
)

// Pads holds the alternate-function pad handles an SPI instance borrows for
// the duration between Init and Free.
type Pads struct {
	Clk  gpio.Pad[gpio.Function]
	Mosi gpio.Pad[gpio.Function]
	Miso gpio.Pad[gpio.Function]
	Cs   gpio.Pad[gpio.Function]
}

// SPI represents a master-mode serial peripheral interface instance.
type SPI struct {
	// Index is the controller instance number.
	Index int
	// Base is the peripheral base address.
	Base uint32
	// Mode is the clock polarity/phase pair.
	Mode Mode

	regs *RegisterBlock
	pads Pads
}

// Init resets, clocks and configures the SPI controller in master mode at
// the divider closest to freq, derived from psi through the clock-control
// unit. It takes ownership of pads until Free returns them.
func (hw *SPI) Init(c *ccu.RegisterBlock, pads Pads, psi uint32, freq uint32) {
	if hw.Base == 0 {
		panic("spi: invalid controller instance")
	}

	hw.regs = New(hw.Base)
	hw.pads = pads

	n, m := ccu.BestFactors(psi, freq)

	switch hw.Index {
	case 0:
		p := ccu.SPI[ccu.I0]{}
		ccu.ReconfigureWith(c, p, p, uint8(ccu.SpiPllPeri1x), n, m)
	case 1:
		p := ccu.SPI[ccu.I1]{}
		ccu.ReconfigureWith(c, p, p, uint8(ccu.SpiPllPeri1x), n, m)
	default:
		panic("spi: unsupported controller instance")
	}

	hw.regs.Gcr.Write(GlobalControl(0).
		SetEnabled(true).
		SetMasterMode().
		SetTransmitPauseEnable(true).
		SoftwareReset())

	for hw.regs.Gcr.Read().IsSoftwareResetPending() {
		runtime.Gosched()
	}

	hw.regs.Tcr.Write(TransferControl(0).SetWorkMode(hw.Mode))
}

// Free gates off the SPI controller's bus clock and returns the register
// block and pads to the caller, the inverse of Init.
func (hw *SPI) Free(c *ccu.RegisterBlock) (*RegisterBlock, Pads) {
	switch hw.Index {
	case 0:
		ccu.Free(c, ccu.SPI[ccu.I0]{})
	case 1:
		ccu.Free(c, ccu.SPI[ccu.I1]{})
	default:
		panic("spi: unsupported controller instance")
	}

	regs, pads := hw.regs, hw.pads
	hw.regs, hw.pads = nil, Pads{}

	return regs, pads
}

func (hw *SPI) startBurst(total, writeLen int) {
	hw.regs.Mbc.Write(uint32(total))
	hw.regs.Mtc.Write(uint32(writeLen))

	bcc := hw.regs.Bcc.Read().
		SetMasterDummyBurstCounter(0).
		SetMasterSingleModeTransmitCounter(uint32(writeLen))
	hw.regs.Bcc.Write(bcc)

	hw.regs.Tcr.Modify(func(v TransferControl) TransferControl {
		return v.StartBurstExchange()
	})
}

func (hw *SPI) drainWrite(write []byte) {
	for _, b := range write {
		for hw.regs.Fsr.Read().TransmitFifoCounter() > 63 {
			runtime.Gosched()
		}
		hw.regs.WriteByte(b)
	}
}

func (hw *SPI) fillRead(read []byte) {
	for i := range read {
		for hw.regs.Fsr.Read().ReceiveFifoCounter() == 0 {
			runtime.Gosched()
		}
		read[i] = hw.regs.ReadByte()
	}
}

// Transfer writes the write buffer while filling read with the bytes
// received during that same burst.
func (hw *SPI) Transfer(read []byte, write []byte) {
	hw.startBurst(len(read)+len(write), len(write))
	hw.drainWrite(write)
	hw.fillRead(read)
}

// TransferInPlace writes words out while overwriting it in place with the
// bytes received during the same burst.
func (hw *SPI) TransferInPlace(words []byte) {
	hw.startBurst(len(words)*2, len(words))
	hw.drainWrite(words)
	hw.fillRead(words)
}

// Read fills words by clocking out dummy bytes.
func (hw *SPI) Read(words []byte) {
	hw.startBurst(len(words), 0)
	hw.fillRead(words)
}

// Write transmits words, discarding whatever is clocked in.
func (hw *SPI) Write(words []byte) {
	hw.startBurst(len(words), len(words))
	hw.drainWrite(words)
}

// Flush blocks until the current burst exchange has completed.
func (hw *SPI) Flush() {
	for !hw.regs.Tcr.Read().BurstFinished() {
		runtime.Gosched()
	}
}
