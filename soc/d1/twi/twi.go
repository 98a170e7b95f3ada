// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package twi

import (
	"errors"
	"runtime"

	"github.com/d1hal/tamago/soc/d1/ccu"
	"github.com/d1hal/tamago/soc/d1/gpio"
)

// Pads holds the alternate-function pad handles a TWI instance borrows for
// the duration between Init and Free.
type Pads struct {
	Sck gpio.Pad[gpio.Function]
	Sda gpio.Pad[gpio.Function]
}

// ErrNack is returned when a transaction's address or data byte is not
// acknowledged by the target device.
var ErrNack = errors.New("twi: byte not acknowledged")

// ErrArbitrationLost is returned when the controller loses bus arbitration
// mid-transaction.
var ErrArbitrationLost = errors.New("twi: arbitration lost")

// ErrUnexpectedStatus is returned when the status register reports a code
// the transaction state machine doesn't expect at that point.
var ErrUnexpectedStatus = errors.New("twi: unexpected bus status")

// TWI represents a two-wire (I2C) master controller instance.
type TWI struct {
	// Index is the controller instance number (0, 1, 2 or 3).
	Index int
	// Base is the peripheral base address.
	Base uint32

	regs *RegisterBlock
	pads Pads
}

// Init resets and clocks the controller, programming its bus clock divider
// for the closest rate to target (Hz) derived from the APB clock apb. It
// takes ownership of pads until Free returns them.
func (hw *TWI) Init(c *ccu.RegisterBlock, pads Pads, apb uint32, target uint32) {
	if hw.Base == 0 {
		panic("twi: invalid controller instance")
	}

	hw.regs = New(hw.Base)
	hw.pads = pads

	switch hw.Index {
	case 0:
		p := ccu.TWI[ccu.I0]{}
		p.AssertResetOnly(c)
		p.MaskGateOnly(c)
		p.DeassertResetOnly(c)
		p.UnmaskGateOnly(c)
	case 1:
		p := ccu.TWI[ccu.I1]{}
		p.AssertResetOnly(c)
		p.MaskGateOnly(c)
		p.DeassertResetOnly(c)
		p.UnmaskGateOnly(c)
	case 2:
		p := ccu.TWI[ccu.I2]{}
		p.AssertResetOnly(c)
		p.MaskGateOnly(c)
		p.DeassertResetOnly(c)
		p.UnmaskGateOnly(c)
	case 3:
		p := ccu.TWI[ccu.I3]{}
		p.AssertResetOnly(c)
		p.MaskGateOnly(c)
		p.DeassertResetOnly(c)
		p.UnmaskGateOnly(c)
	default:
		panic("twi: unsupported controller instance")
	}

	hw.regs.Srst.Write(SoftReset(0).SetSoftReset())
	for hw.regs.Srst.Read().SoftReset_() {
		runtime.Gosched()
	}

	n, m := clockFactors(apb, target)

	hw.regs.Ccr.Write(ClockControl(0).SetN(n).SetM(m))

	hw.regs.Cntr.Write(Control(0).EnableBus())
}

// Free gates off the TWI controller's bus clock and returns the register
// block and pads to the caller, the inverse of Init.
func (hw *TWI) Free(c *ccu.RegisterBlock) (*RegisterBlock, Pads) {
	switch hw.Index {
	case 0:
		ccu.Free(c, ccu.TWI[ccu.I0]{})
	case 1:
		ccu.Free(c, ccu.TWI[ccu.I1]{})
	case 2:
		ccu.Free(c, ccu.TWI[ccu.I2]{})
	case 3:
		ccu.Free(c, ccu.TWI[ccu.I3]{})
	default:
		panic("twi: unsupported controller instance")
	}

	regs, pads := hw.regs, hw.pads
	hw.regs, hw.pads = nil, Pads{}

	return regs, pads
}

// clockFactors searches CLK_N (0..7) and CLK_M (0..15) for the divider pair
// closest to target, per F_scl = apb / (2^n * (m+1) * 10).
func clockFactors(apb uint32, target uint32) (n uint8, m uint8) {
	if target == 0 {
		target = 1
	}

	bestErr := ^uint32(0)

	for ni := uint8(0); ni < 8; ni++ {
		for mi := uint8(0); mi < 16; mi++ {
			divisor := (uint32(1) << ni) * (uint32(mi) + 1) * 10
			if divisor == 0 {
				continue
			}
			f := apb / divisor
			var e uint32
			if f > target {
				e = f - target
			} else {
				e = target - f
			}
			if e < bestErr {
				bestErr = e
				n, m = ni, mi
			}
		}
	}

	return n, m
}

func (hw *TWI) waitInt() Status {
	for !hw.regs.Cntr.Read().InterruptFlag() {
		runtime.Gosched()
	}
	return hw.regs.Stat.Read()
}

func (hw *TWI) clearInt() {
	hw.regs.Cntr.Modify(func(v Control) Control {
		return v.ClearInterruptFlag()
	})
}

func (hw *TWI) start() error {
	hw.regs.Cntr.Modify(func(v Control) Control {
		return v.SetStartBit().ClearInterruptFlag()
	})

	switch code := hw.waitInt().Code(); code {
	case StatusStartTransmitted, StatusRepeatedStartTransmitted:
		return nil
	case StatusArbitrationLost:
		return ErrArbitrationLost
	default:
		return ErrUnexpectedStatus
	}
}

func (hw *TWI) stop() {
	hw.regs.Cntr.Modify(func(v Control) Control {
		return v.SetStopBit().ClearInterruptFlag()
	})
	for hw.regs.Cntr.Read().StopBit() {
		runtime.Gosched()
	}
}

func (hw *TWI) writeAddress(addr uint8, read bool) error {
	a := addr << 1
	if read {
		a |= 1
	}

	hw.regs.Data.Write(uint32(a))
	hw.regs.Cntr.Modify(func(v Control) Control {
		return v.ClearInterruptFlag()
	})

	switch code := hw.waitInt().Code(); code {
	case StatusAddressWriteAck, StatusAddressReadAck:
		return nil
	case StatusAddressWriteNack, StatusAddressReadNack:
		return ErrNack
	case StatusArbitrationLost:
		return ErrArbitrationLost
	default:
		return ErrUnexpectedStatus
	}
}

func (hw *TWI) writeByte(b byte) error {
	hw.regs.Data.Write(uint32(b))
	hw.regs.Cntr.Modify(func(v Control) Control {
		return v.ClearInterruptFlag()
	})

	switch code := hw.waitInt().Code(); code {
	case StatusDataWriteAck:
		return nil
	case StatusDataWriteNack:
		return ErrNack
	case StatusArbitrationLost:
		return ErrArbitrationLost
	default:
		return ErrUnexpectedStatus
	}
}

func (hw *TWI) readByte(ack bool) (byte, error) {
	hw.regs.Cntr.Modify(func(v Control) Control {
		return v.SetAck(ack).ClearInterruptFlag()
	})

	code := hw.waitInt().Code()
	if code != StatusDataReadAck && code != StatusDataReadNack {
		return 0, ErrUnexpectedStatus
	}

	return byte(hw.regs.Data.Read()), nil
}

// Write sends data to the device at addr in a single START..STOP
// transaction.
func (hw *TWI) Write(addr uint8, data []byte) error {
	if err := hw.start(); err != nil {
		return err
	}
	defer hw.stop()

	if err := hw.writeAddress(addr, false); err != nil {
		return err
	}

	for _, b := range data {
		if err := hw.writeByte(b); err != nil {
			return err
		}
	}

	return nil
}

// Read fills buf with bytes clocked out by the device at addr, NACKing the
// final byte as required by the protocol.
func (hw *TWI) Read(addr uint8, buf []byte) error {
	if err := hw.start(); err != nil {
		return err
	}
	defer hw.stop()

	if err := hw.writeAddress(addr, true); err != nil {
		return err
	}

	for i := range buf {
		b, err := hw.readByte(i < len(buf)-1)
		if err != nil {
			return err
		}
		buf[i] = b
	}

	return nil
}

// WriteRead performs a write immediately followed by a repeated-start read,
// the usual register-pointer-then-read idiom most I2C peripherals use.
func (hw *TWI) WriteRead(addr uint8, write []byte, read []byte) error {
	if err := hw.start(); err != nil {
		return err
	}
	defer hw.stop()

	if err := hw.writeAddress(addr, false); err != nil {
		return err
	}
	for _, b := range write {
		if err := hw.writeByte(b); err != nil {
			return err
		}
	}

	if err := hw.start(); err != nil {
		return err
	}
	if err := hw.writeAddress(addr, true); err != nil {
		return err
	}
	for i := range read {
		b, err := hw.readByte(i < len(read)-1)
		if err != nil {
			return err
		}
		read[i] = b
	}

	return nil
}
