// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uart

import (
	"runtime"

	"github.com/d1hal/tamago/soc/d1/ccu"
	"github.com/d1hal/tamago/soc/d1/gpio"
)

// DefaultBaudrate is used by Init when Baudrate is left unset.
const DefaultBaudrate = 115200

// Pads holds the alternate-function pad handles a UART instance borrows for
// the duration between Init and Free.
type Pads struct {
	Tx gpio.Pad[gpio.Function]
	Rx gpio.Pad[gpio.Function]
}

// UART represents a serial port instance.
type UART struct {
	// Index is the controller instance number.
	Index int
	// Base is the peripheral base address.
	Base uint32
	// Clock is the APB1 clock feeding the 16550 baud rate generator, in Hz.
	Clock uint32
	// Baudrate is the configured port speed; DefaultBaudrate if zero.
	Baudrate uint32

	regs *RegisterBlock
	pads Pads
}

// Init initializes the UART for 8N1 operation at Baudrate, taking ownership
// of pads until Free returns them.
func (hw *UART) Init(pads Pads) {
	if hw.Base == 0 || hw.Clock == 0 {
		panic("uart: invalid controller instance")
	}

	if hw.Baudrate == 0 {
		hw.Baudrate = DefaultBaudrate
	}

	hw.regs = New(hw.Base)
	hw.pads = pads

	divisor := (hw.Clock + 8*hw.Baudrate) / (16 * hw.Baudrate)

	// enter divisor-latch access mode, program DLL/DLH, then leave it
	hw.regs.Lcr.Write(lcrDlab)
	hw.regs.RbrThrDll.Write(divisor & 0xff)
	hw.regs.IerDlh.Write((divisor >> 8) & 0xff)

	// 8 data bits, no parity, 1 stop bit
	hw.regs.Lcr.Write(lcrWls0 | lcrWls1)

	// enable and reset FIFOs
	hw.regs.IirFcr.Write(fcrFifoEnable | fcrRxFifoReset | fcrTxFifoReset)
}

// Free gates off the UART's bus clock and returns the register block and
// pads to the caller, the inverse of Init.
func (hw *UART) Free(c *ccu.RegisterBlock) (*RegisterBlock, Pads) {
	switch hw.Index {
	case 0:
		ccu.Free(c, ccu.UART[ccu.I0]{})
	case 1:
		ccu.Free(c, ccu.UART[ccu.I1]{})
	case 2:
		ccu.Free(c, ccu.UART[ccu.I2]{})
	case 3:
		ccu.Free(c, ccu.UART[ccu.I3]{})
	case 4:
		ccu.Free(c, ccu.UART[ccu.I4]{})
	case 5:
		ccu.Free(c, ccu.UART[ccu.I5]{})
	default:
		panic("uart: unsupported controller instance")
	}

	regs, pads := hw.regs, hw.pads
	hw.regs, hw.pads = nil, Pads{}

	return regs, pads
}

// txReady reports whether USR shows the UART as not busy.
//
// This checks UartStatus.Busy rather than TransmitFifoNotFull, which is the
// more conservative condition: a transmit waits for the whole UART to go
// idle, not only for one free FIFO slot.
func txReady(regs *RegisterBlock) bool {
	return !regs.Usr.Read().Busy()
}

func rxReady(regs *RegisterBlock) bool {
	return regs.Usr.Read().ReceiveFifoNotEmpty()
}

func tx(regs *RegisterBlock, c byte) {
	for !txReady(regs) {
		runtime.Gosched()
	}

	regs.RbrThrDll.Write(uint32(c))
}

func rx(regs *RegisterBlock) (c byte, valid bool) {
	if !rxReady(regs) {
		return
	}

	return byte(regs.RbrThrDll.Read()), true
}

func write(regs *RegisterBlock, buf []byte) (n int, _ error) {
	for n = 0; n < len(buf); n++ {
		tx(regs, buf[n])
	}

	return
}

func read(regs *RegisterBlock) func([]byte) (int, error) {
	return func(buf []byte) (n int, _ error) {
		var valid bool

		for n = 0; n < len(buf); n++ {
			buf[n], valid = rx(regs)

			if !valid {
				if n == 0 {
					runtime.Gosched()
				}

				break
			}
		}

		return
	}
}

// Tx transmits a single byte, blocking until USR reports the UART not busy.
func (hw *UART) Tx(c byte) { tx(hw.regs, c) }

// Rx receives a single byte if one is available.
func (hw *UART) Rx() (c byte, valid bool) { return rx(hw.regs) }

// Write transmits buf in full, blocking as needed.
func (hw *UART) Write(buf []byte) (n int, _ error) { return write(hw.regs, buf) }

// Read fills buf with any bytes immediately available, without blocking
// past the first empty read.
func (hw *UART) Read(buf []byte) (n int, _ error) { return read(hw.regs)(buf) }

// TransmitHalf is the write side of a UART obtained through Split; it
// borrows the same register block as the ReceiveHalf it was split from.
type TransmitHalf struct {
	regs *RegisterBlock
}

// Tx transmits a single byte, blocking until USR reports the UART not busy.
func (h TransmitHalf) Tx(c byte) { tx(h.regs, c) }

// Write transmits buf in full, blocking as needed.
func (h TransmitHalf) Write(buf []byte) (n int, _ error) { return write(h.regs, buf) }

// ReceiveHalf is the read side of a UART obtained through Split; it borrows
// the same register block as the TransmitHalf it was split from.
type ReceiveHalf struct {
	regs *RegisterBlock
}

// Rx receives a single byte if one is available.
func (h ReceiveHalf) Rx() (c byte, valid bool) { return rx(h.regs) }

// Read fills buf with any bytes immediately available, without blocking
// past the first empty read.
func (h ReceiveHalf) Read(buf []byte) (n int, _ error) { return read(h.regs)(buf) }

// Split returns independent transmit and receive halves that borrow the
// same register block as hw (hw itself is left unchanged and still usable), so one side can be handed to a
// writer goroutine and the other to a reader without sharing the full UART
// value.
func (hw *UART) Split() (TransmitHalf, ReceiveHalf) {
	return TransmitHalf{regs: hw.regs}, ReceiveHalf{regs: hw.regs}
}
