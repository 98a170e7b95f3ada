// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma

import (
	"testing"

	"github.com/d1hal/tamago/soc/d1/ccu"
)

const testBase = 0x0300_2000
const testCcuBase = 0x0200_1000

func TestRegisterOffsets(t *testing.T) {
	r := New(testBase)

	cases := []struct {
		name string
		addr uint32
		want uint32
	}{
		{"IrqEnable0", r.IrqEnable0.Addr(), testBase + 0x00},
		{"IrqEnable1", r.IrqEnable1.Addr(), testBase + 0x04},
		{"IrqPending0", r.IrqPending0.Addr(), testBase + 0x10},
		{"IrqPending1", r.IrqPending1.Addr(), testBase + 0x14},
		{"AutoGating", r.AutoGating.Addr(), testBase + 0x28},
		{"Status", r.Status.Addr(), testBase + 0x30},
		{"Channels[0].Enable", r.Channels[0].Enable.Addr(), testBase + 0x100},
		{"Channels[0].Mode", r.Channels[0].Mode.Addr(), testBase + 0x100 + 0x28},
		{"Channels[1].Enable", r.Channels[1].Enable.Addr(), testBase + 0x100 + 0x40},
		{"Channels[15].PackageNum", r.Channels[15].PackageNum.Addr(), testBase + 0x100 + 15*0x40 + 0x30},
	}

	for _, c := range cases {
		if c.addr != c.want {
			t.Errorf("%s offset = %#x, want %#x", c.name, c.addr, c.want)
		}
	}
}

func TestChannelRegisterBlockOffsets(t *testing.T) {
	r := New(testBase)
	base := r.Channels[3].Enable.Addr()

	cases := []struct {
		name string
		addr uint32
		want uint32
	}{
		{"Pause", r.Channels[3].Pause.Addr(), base + 0x04},
		{"StartAddr", r.Channels[3].StartAddr.Addr(), base + 0x08},
		{"Config", r.Channels[3].Config.Addr(), base + 0x0c},
		{"CurrentSrcAddr", r.Channels[3].CurrentSrcAddr.Addr(), base + 0x10},
		{"CurrentDestination", r.Channels[3].CurrentDestination.Addr(), base + 0x14},
		{"ByteCounterLeft", r.Channels[3].ByteCounterLeft.Addr(), base + 0x18},
		{"Parameter", r.Channels[3].Parameter.Addr(), base + 0x1c},
		{"Mode", r.Channels[3].Mode.Addr(), base + 0x28},
		{"FormerDescAddr", r.Channels[3].FormerDescAddr.Addr(), base + 0x2c},
		{"PackageNum", r.Channels[3].PackageNum.Addr(), base + 0x30},
	}

	for _, c := range cases {
		if c.addr != c.want {
			t.Errorf("%s offset = %#x, want %#x", c.name, c.addr, c.want)
		}
	}
}

func TestEncodeConfigPacksAllFields(t *testing.T) {
	v := EncodeConfig(
		DrqUart0, AddrModeIO, DataWidth8, Burst1,
		DrqSDRAM, AddrModeLinear, DataWidth32, Burst4,
	)

	if v&0x1f != uint32(DrqUart0) {
		t.Errorf("src drq = %#x, want %#x", v&0x1f, DrqUart0)
	}
	if (v>>6)&1 != uint32(AddrModeIO) {
		t.Error("src addr mode bit not set")
	}
	if (v>>16)&0x1f != uint32(DrqSDRAM) {
		t.Errorf("dst drq = %#x, want %#x", (v>>16)&0x1f, DrqSDRAM)
	}
	if (v>>25)&0x3 != uint32(DataWidth32) {
		t.Errorf("dst width = %#x, want %#x", (v>>25)&0x3, DataWidth32)
	}
}

func TestDescriptorAddrNonZero(t *testing.T) {
	d := &Descriptor{Link: LinkEnd}
	if d.Addr() == 0 {
		t.Error("Descriptor.Addr() should reflect the struct's real address")
	}
}

func TestInitPanicsOnZeroBase(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Init should panic with Base unset")
		}
	}()

	hw := &DMA{}
	hw.Init(nil)
}

func TestChannelPanicsOnInvalidIndex(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Channel should panic on an out-of-range index")
		}
	}()

	hw := &DMA{Base: testBase}
	hw.regs = New(testBase)
	hw.Channel(16)
}

func TestFreeGatesClockAndClearsRegs(t *testing.T) {
	c := ccu.New(testCcuBase)

	hw := &DMA{Base: testBase}
	hw.Init(c)

	regs := hw.Free(c)
	if regs == nil {
		t.Fatal("Free should return the register block Init bound")
	}
	if hw.regs != nil {
		t.Error("Free should clear the driver's internal register handle")
	}

	gated := c.DmaBgr.Read()
	if gated.GatePass(0) == gated {
		t.Error("Free should leave the DMA clock gate masked")
	}
}
