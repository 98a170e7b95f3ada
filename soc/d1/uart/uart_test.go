// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uart

import (
	"testing"

	"github.com/d1hal/tamago/soc/d1/ccu"
)

const testBase = 0x0250_0000
const testCcuBase = 0x0200_1000

func TestRegisterOffsets(t *testing.T) {
	r := New(testBase)

	cases := []struct {
		name string
		addr uint32
		want uint32
	}{
		{"RbrThrDll", r.RbrThrDll.Addr(), testBase + 0x00},
		{"IerDlh", r.IerDlh.Addr(), testBase + 0x04},
		{"IirFcr", r.IirFcr.Addr(), testBase + 0x08},
		{"Lcr", r.Lcr.Addr(), testBase + 0x0c},
		{"Mcr", r.Mcr.Addr(), testBase + 0x10},
		{"Lsr", r.Lsr.Addr(), testBase + 0x14},
		{"Msr", r.Msr.Addr(), testBase + 0x18},
		{"Scr", r.Scr.Addr(), testBase + 0x1c},
		{"Usr", r.Usr.Addr(), testBase + 0x7c},
	}

	for _, c := range cases {
		if c.addr != c.want {
			t.Errorf("%s offset = %#x, want %#x", c.name, c.addr, c.want)
		}
	}
}

// divisorWritten reconstructs the DLL/DLH pair Init actually programmed by
// reading the registers back, so these tests exercise Init's real rounding
// rather than re-deriving the expected value with the same expression
// under test.
func divisorWritten(hw *UART) uint32 {
	return hw.regs.RbrThrDll.Read() | (hw.regs.IerDlh.Read() << 8)
}

func TestDivisorAt9600Baud24MHz(t *testing.T) {
	hw := &UART{Base: testBase, Clock: 24_000_000, Baudrate: 9600}
	hw.Init(Pads{})

	if got := divisorWritten(hw); got != 156 {
		t.Errorf("divisor = %d, want 156", got)
	}
}

func TestDivisorAt115200Baud24MHz(t *testing.T) {
	hw := &UART{Base: testBase, Clock: 24_000_000, Baudrate: 115200}
	hw.Init(Pads{})

	if got := divisorWritten(hw); got != 13 {
		t.Errorf("divisor = %d, want 13", got)
	}
}

// TestDivisorRoundsToNearest picks a baud rate whose ideal divisor has a
// fractional remainder >= 0.5 (24_000_000/(16*57600) = 26.0416..., so this
// uses a clock/baud pair landing at x.5 exactly: 16*57600*26 + 8*57600 =
// 23961600 + 460800 = 24422400), where a plain floor and a round-to-nearest
// divisor disagree.
func TestDivisorRoundsToNearest(t *testing.T) {
	hw := &UART{Base: testBase, Clock: 24_422_400, Baudrate: 57600}
	hw.Init(Pads{})

	// ideal = 24_422_400 / (16*57600) = 26.5 -> rounds to 27, floors to 26
	if got := divisorWritten(hw); got != 27 {
		t.Errorf("divisor = %d, want 27 (rounded, not floored to 26)", got)
	}
}

func TestUartStatusBitsAllSet(t *testing.T) {
	s := UartStatus(0b11111)

	if !s.ReceiveFifoFull() || !s.ReceiveFifoNotEmpty() || !s.TransmitFifoEmpty() ||
		!s.TransmitFifoNotFull() || !s.Busy() {
		t.Error("all status bits set should report true for every predicate")
	}
}

func TestUartStatusBitsAllClear(t *testing.T) {
	s := UartStatus(0)

	if s.ReceiveFifoFull() || s.ReceiveFifoNotEmpty() || s.TransmitFifoEmpty() ||
		s.TransmitFifoNotFull() || s.Busy() {
		t.Error("all status bits clear should report false for every predicate")
	}
}

func TestInitPanicsOnZeroClock(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Init should panic with Clock unset")
		}
	}()

	hw := &UART{Base: testBase}
	hw.Init(Pads{})
}

func TestInitDefaultsBaudrate(t *testing.T) {
	hw := &UART{Base: testBase, Clock: 24_000_000}
	hw.Init(Pads{})

	if hw.Baudrate != DefaultBaudrate {
		t.Errorf("Baudrate = %d, want %d", hw.Baudrate, DefaultBaudrate)
	}
}

func TestTxWaitsForFifoSpaceThenWrites(t *testing.T) {
	hw := &UART{Base: testBase, Clock: 24_000_000}
	hw.Init(Pads{})

	// USR is a RO cell that nothing writes, so the register test double
	// reads it as 0 (not busy) and Tx should return promptly rather than
	// spin forever.
	hw.Tx('A')

	got := hw.regs.RbrThrDll.Read()
	if byte(got) != 'A' {
		t.Errorf("RbrThrDll = %q, want 'A'", byte(got))
	}
}

func TestSplitHalvesShareRegisterBlock(t *testing.T) {
	hw := &UART{Base: testBase, Clock: 24_000_000}
	hw.Init(Pads{})

	txh, rxh := hw.Split()
	txh.Tx('B')

	got := hw.regs.RbrThrDll.Read()
	if byte(got) != 'B' {
		t.Errorf("RbrThrDll = %q, want 'B'", byte(got))
	}

	// The receive half borrows the same register block the transmit half
	// just wrote through, rather than a private copy.
	if _, valid := rxh.Rx(); valid {
		t.Error("ReceiveHalf.Rx should report no data: the sim register's RX-not-empty bit was never set")
	}
}

func TestFreeGatesClockAndReturnsPads(t *testing.T) {
	c := ccu.New(testCcuBase)

	want := Pads{}
	hw := &UART{Index: 0, Base: testBase, Clock: 24_000_000}
	hw.Init(want)

	regs, pads := hw.Free(c)
	if regs == nil {
		t.Fatal("Free should return the bound register block")
	}
	if pads != want {
		t.Error("Free should return the pads Init was given")
	}
	if hw.regs != nil {
		t.Error("Free should clear the driver's internal register handle")
	}

	gated := c.UartBgr.Read()
	if gated.GatePass(0) == gated {
		t.Error("Free should leave UART0's clock gate masked")
	}
}
