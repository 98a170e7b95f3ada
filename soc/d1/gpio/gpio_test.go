// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gpio

import "testing"

const testBase uint32 = 0x0200_0000

func TestRegisterOffsets(t *testing.T) {
	r := New(testBase, 6)

	if got, want := r.Port[0].Cfg[0].Addr(), testBase+0x030; got != want {
		t.Errorf("Port[0].Cfg[0] = %#x, want %#x", got, want)
	}
	if got, want := r.Port[0].Dat.Addr(), testBase+0x030+0x10; got != want {
		t.Errorf("Port[0].Dat = %#x, want %#x", got, want)
	}
	if got, want := r.Port[0].Drv[0].Addr(), testBase+0x030+0x14; got != want {
		t.Errorf("Port[0].Drv[0] = %#x, want %#x", got, want)
	}
	if got, want := r.Port[0].Pull[0].Addr(), testBase+0x030+0x24; got != want {
		t.Errorf("Port[0].Pull[0] = %#x, want %#x", got, want)
	}
	if got, want := r.Eint[0].Cfg[0].Addr(), testBase+0x220; got != want {
		t.Errorf("Eint[0].Cfg[0] = %#x, want %#x", got, want)
	}
	if got, want := r.PioPow.ModSel.Addr(), testBase+0x340; got != want {
		t.Errorf("PioPow.ModSel = %#x, want %#x", got, want)
	}
}

func TestCfgIndexPin7Pin8Boundary(t *testing.T) {
	// Pin 7 is the last field of cfg register 0, shifted to bit 28.
	reg, field := cfgIndex(7)
	if reg != 0 || field != 28 {
		t.Errorf("cfgIndex(7) = (%d, %d), want (0, 28)", reg, field)
	}

	// Pin 8 is the first field of cfg register 1, shifted to bit 0.
	reg, field = cfgIndex(8)
	if reg != 1 || field != 0 {
		t.Errorf("cfgIndex(8) = (%d, %d), want (1, 0)", reg, field)
	}
}

func TestPadModeRoundtrip(t *testing.T) {
	r := New(testBase, 6)

	disabled := NewDisabledPad(r, 0, 5)
	input := IntoInput(disabled)
	output := IntoOutput(input)

	SetHigh(output)
	if !IsSetHigh(output) {
		t.Error("SetHigh did not take effect")
	}

	back := IntoInput(output)
	if !IsHigh(back) {
		t.Error("input read should observe the data bit set by the prior output mode")
	}

	disabledAgain := IntoDisabled(back)
	_ = disabledAgain
}

func TestPadFunctionModePreservesPin(t *testing.T) {
	r := New(testBase, 6)

	disabled := NewDisabledPad(r, 2, 12)
	_ = IntoFunction(disabled, 3)

	got := r.Port[2].Cfg[1].Read() // pin 12 -> reg 1, field (12&7)<<2=16
	want := uint32(3) << 16
	if got != want {
		t.Errorf("cfg register = %#x, want %#x", got, want)
	}
}

func TestWithOutputRestoresInputMode(t *testing.T) {
	r := New(testBase, 6)

	disabled := NewDisabledPad(r, 1, 3)
	in := IntoInput(disabled)

	WithOutput(&in, func(out *Pad[Output]) {
		SetHigh(*out)
	})

	cfg := r.Port[1].Cfg[0].Read()
	field := uint8(3) << 2
	mode := uint8((cfg >> field) & 0xf)
	wantMode := (Input{}).modeValue()
	if mode != wantMode {
		t.Errorf("pad mode after WithOutput returns = %d, want Input(%d)", mode, wantMode)
	}

	if !IsHigh(in) {
		t.Error("data bit set during the output excursion should persist")
	}
}

func TestEintListenAndInterruptControl(t *testing.T) {
	r := New(testBase, 6)

	disabled := NewDisabledPad(r, 0, 9)
	eint := IntoEint(disabled)

	Listen(eint, BothEdges)
	reg, field := cfgIndex(9)
	got := (r.Eint[0].Cfg[reg].Read() >> field) & 0xf
	if got != uint32(BothEdges) {
		t.Errorf("eint cfg field = %d, want %d", got, BothEdges)
	}

	EnableInterrupt(eint)
	if !CheckInterruptEnabled(r, 0, 9) {
		t.Error("EnableInterrupt did not set the control bit")
	}

	if CheckInterrupt(eint) {
		t.Error("CheckInterrupt should read false for a register test double with no latched bit")
	}

	// The status register is write-1-to-clear; the test double keeps the
	// written value, so check that the pin's bit was the one written.
	ClearInterruptPending(eint)
	if got := r.Eint[0].Status.Read(); got != 1<<9 {
		t.Errorf("eint status write = %#x, want %#x", got, uint32(1<<9))
	}

	DisableInterrupt(eint)
	if CheckInterruptEnabled(r, 0, 9) {
		t.Error("DisableInterrupt did not clear the control bit")
	}
}

func CheckInterruptEnabled(r *RegisterBlock, portIdx int, pin uint8) bool {
	return r.Eint[portIdx].Ctl.Read()&(1<<pin) != 0
}
