// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ledc

import (
	"runtime"

	"github.com/d1hal/tamago/soc/d1/gpio"
)

// Pads holds the alternate-function pad handle an LEDC instance borrows
// for the duration between Init and Free.
type Pads struct {
	Data gpio.Pad[gpio.Function]
}

// LEDC represents a one-wire addressable LED controller instance.
type LEDC struct {
	// Base is the peripheral base address.
	Base uint32
	// Mode selects the wire byte order for each pixel.
	Mode RgbMode
	// LEDCount is the number of LEDs chained on the bus.
	LEDCount uint32

	regs *RegisterBlock
	pads Pads
}

// Default bit-timing constants, matching common WS2812 strip datasheets:
// T0H 336ns, T0L 336ns, T1H 882ns, T1L 294ns, reset pulse 300us.
const (
	defaultT0H       = 336
	defaultT0L       = 336
	defaultT1H       = 882
	defaultT1L       = 294
	defaultResetTime = 300_000
)

// Init resets the controller and programs bit timing for WS2812-compatible
// strips. It takes ownership of pads until Free returns them.
func (hw *LEDC) Init(pads Pads) {
	if hw.Base == 0 {
		panic("ledc: invalid controller instance")
	}

	hw.regs = New(hw.Base)
	hw.pads = pads

	hw.regs.Control.Modify(func(v Control) Control {
		return v.ClearSoftReset()
	})
	for hw.regs.Control.Read().SoftReset() {
		runtime.Gosched()
	}

	hw.regs.T01Timing.Write(T01Timing(0).
		SetT0H(Cycles(defaultT0H)).
		SetT0L(Cycles(defaultT0L)).
		SetT1H(Cycles(defaultT1H)).
		SetT1L(Cycles(defaultT1L)))

	hw.regs.ResetTiming.Write(ResetTiming(0).
		SetResetTime(Cycles(defaultResetTime)).
		SetLedCount(hw.LEDCount - 1))

	hw.regs.Control.Modify(func(v Control) Control {
		return v.SetTotalDataLength(hw.LEDCount * 3).SetRGBMode(hw.Mode)
	})

	hw.regs.Control.Modify(func(v Control) Control {
		return v.Enable()
	})
}

// Free returns the register block and pads to the caller, the inverse of
// Init. LEDC has no bus-gating register of its own in the clock-control
// unit, so unlike the other drivers in this tree Free touches no ccu
// state.
func (hw *LEDC) Free() (*RegisterBlock, Pads) {
	regs, pads := hw.regs, hw.pads
	hw.regs, hw.pads = nil, Pads{}

	return regs, pads
}

// Send pushes pixels (one uint32 RGB value per LED, 0x00RRGGBB) to the
// FIFO, blocking while the FIFO is full.
func (hw *LEDC) Send(pixels []uint32) {
	for _, p := range pixels {
		for hw.regs.IntStatus.Read().FifoFull() {
			runtime.Gosched()
		}
		hw.regs.Data.Write(p)
	}
}

// Wait blocks until the last Send's transfer-finished interrupt bit sets,
// clearing it before returning.
func (hw *LEDC) Wait() {
	for !hw.regs.IntStatus.Read().TransferFinished() {
		runtime.Gosched()
	}

	hw.regs.IntStatus.Modify(func(v InterruptStatus) InterruptStatus {
		return v.ClearTransferFinished()
	})
}
