// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package spi

import (
	"testing"

	"github.com/d1hal/tamago/soc/d1/ccu"
)

const testBase = 0x0400_0000
const testCcuBase = 0x0200_1000

func TestRegisterOffsets(t *testing.T) {
	r := New(testBase)

	cases := []struct {
		name string
		addr uint32
		want uint32
	}{
		{"Gcr", r.Gcr.Addr(), testBase + 0x04},
		{"Tcr", r.Tcr.Addr(), testBase + 0x08},
		{"Fsr", r.Fsr.Addr(), testBase + 0x1c},
		{"Mbc", r.Mbc.Addr(), testBase + 0x30},
		{"Mtc", r.Mtc.Addr(), testBase + 0x34},
		{"Bcc", r.Bcc.Addr(), testBase + 0x38},
	}

	for _, c := range cases {
		if c.addr != c.want {
			t.Errorf("%s offset = %#x, want %#x", c.name, c.addr, c.want)
		}
	}
}

func TestGlobalControlRoundtrip(t *testing.T) {
	var v GlobalControl

	v = v.SetEnabled(true).SetMasterMode().SetTransmitPauseEnable(true)
	if !v.IsEnabled() || !v.IsMasterMode() || !v.TransmitPauseEnabled() {
		t.Error("setters did not take effect")
	}

	v = v.SoftwareReset()
	if !v.IsSoftwareResetPending() {
		t.Error("SoftwareReset should set the pending bit")
	}
}

func TestTransferControlWorkModeRoundtrip(t *testing.T) {
	var v TransferControl

	v = v.SetWorkMode(Mode3)
	if v&tcrCpol == 0 || v&tcrCpha == 0 {
		t.Error("Mode3 should set both CPOL and CPHA")
	}

	v = v.SetWorkMode(Mode0)
	if v&tcrCpol != 0 || v&tcrCpha != 0 {
		t.Error("Mode0 should clear both CPOL and CPHA")
	}
}

func TestTransferControlBurstFinished(t *testing.T) {
	var v TransferControl

	if !v.BurstFinished() {
		t.Error("zero value should report burst finished")
	}

	v = v.StartBurstExchange()
	if v.BurstFinished() {
		t.Error("StartBurstExchange should clear burst-finished")
	}
}

func TestFifoStatusFields(t *testing.T) {
	// TF_CNT occupies bits 16..23; set it to 5 and confirm isolation from
	// the neighboring RB_WR bit (15) and RF_CNT field (0..7).
	v := FifoStatus(5 << 16)

	if v.TransmitFifoCounter() != 5 {
		t.Errorf("TransmitFifoCounter = %d, want 5", v.TransmitFifoCounter())
	}
	if v.ReceiveFifoCounter() != 0 {
		t.Errorf("ReceiveFifoCounter = %d, want 0", v.ReceiveFifoCounter())
	}
	if v.ReceiveBufferWriteEnable() {
		t.Error("ReceiveBufferWriteEnable should be false")
	}
}

func TestBurstControlRoundtrip(t *testing.T) {
	var v BurstControl

	v = v.SetMasterDummyBurstCounter(9).SetMasterSingleModeTransmitCounter(200)

	if v.MasterDummyBurstCounter() != 9 {
		t.Errorf("MasterDummyBurstCounter = %d, want 9", v.MasterDummyBurstCounter())
	}
	if v.MasterSingleModeTransmitCounter() != 200 {
		t.Errorf("MasterSingleModeTransmitCounter = %d, want 200", v.MasterSingleModeTransmitCounter())
	}

	v = v.QuadModeEnable()
	if !v.IsQuadModeEnabled() {
		t.Error("QuadModeEnable did not take effect")
	}
}

// TestFreeGatesClockAndReturnsPads binds a register block directly (rather
// than through Init, which polls a software-reset bit no simulated store
// ever self-clears) and confirms Free gates the instance's clock back off
// and hands back the pads Init would have taken ownership of.
func TestFreeGatesClockAndReturnsPads(t *testing.T) {
	c := ccu.New(testCcuBase)

	want := Pads{}
	hw := &SPI{Index: 0, Base: testBase}
	hw.regs = New(testBase)
	hw.pads = want

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

	gated := c.SpiBgr.Read()
	if gated.GatePass(0) == gated {
		t.Error("Free should leave SPI0's clock gate masked")
	}
}
