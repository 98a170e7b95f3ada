// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ccu

import "testing"

const testBase = 0x0200_1000

func TestRegisterOffsets(t *testing.T) {
	r := New(testBase)

	cases := []struct {
		name string
		addr uint32
		want uint32
	}{
		{"PllCpuControl", r.PllCpuControl.Addr(), testBase + 0x000},
		{"PllDdrControl", r.PllDdrControl.Addr(), testBase + 0x010},
		{"PllPeri0Ctrl", r.PllPeri0Ctrl.Addr(), testBase + 0x020},
		{"CpuAxiConfig", r.CpuAxiConfig.Addr(), testBase + 0x500},
		{"MbusClock", r.MbusClock.Addr(), testBase + 0x540},
		{"DramClock", r.DramClock.Addr(), testBase + 0x800},
		{"DramBgr", r.DramBgr.Addr(), testBase + 0x80c},
		{"SmhcClk[0]", r.SmhcClk[0].Addr(), testBase + 0x830},
		{"SmhcClk[1]", r.SmhcClk[1].Addr(), testBase + 0x834},
		{"SmhcClk[2]", r.SmhcClk[2].Addr(), testBase + 0x838},
		{"SmhcBgr", r.SmhcBgr.Addr(), testBase + 0x84c},
		{"UartBgr", r.UartBgr.Addr(), testBase + 0x90c},
		{"SpiClk[0]", r.SpiClk[0].Addr(), testBase + 0x940},
		{"SpiClk[1]", r.SpiClk[1].Addr(), testBase + 0x944},
		{"SpiBgr", r.SpiBgr.Addr(), testBase + 0x96c},
	}

	for _, c := range cases {
		if c.addr != c.want {
			t.Errorf("%s offset = %#x, want %#x", c.name, c.addr, c.want)
		}
	}
}

func TestBestFactorsExact(t *testing.T) {
	cases := []struct {
		src, target uint32
		wantN       PeriFactorN
		wantM       uint8
	}{
		// 600MHz / N1 / (M+1=25) = 24MHz exactly.
		{600_000_000, 24_000_000, N1, 24},
		// 600MHz / N1 / (M+1=30) = 20MHz exactly.
		{600_000_000, 20_000_000, N1, 29},
		// 24MHz source divided down to itself needs no division.
		{24_000_000, 24_000_000, N1, 0},
	}

	for _, c := range cases {
		gotN, gotM := BestFactors(c.src, c.target)
		if gotN != c.wantN || gotM != c.wantM {
			t.Errorf("BestFactors(%d, %d) = (%v, %d), want (%v, %d)",
				c.src, c.target, gotN, gotM, c.wantN, c.wantM)
		}
	}
}

func TestBestFactorsTiesPreferSmallerN(t *testing.T) {
	// 800MHz/N1/(M+1=8) = 100MHz exactly; N2/(M+1=4) also hits 100MHz
	// exactly. The search must return the smaller N on an exact tie.
	gotN, gotM := BestFactors(800_000_000, 100_000_000)
	if gotN != N1 || gotM != 7 {
		t.Errorf("BestFactors tie-break = (%v, %d), want (N1, 7)", gotN, gotM)
	}
}

func TestBestFactorsMRangeCoversSpecScenarios(t *testing.T) {
	// Both targets require an M value beyond the single-register 4-bit
	// (0..15) field width; BestFactors searches a wider range since it
	// models clock math independent of where the result is stored.
	if _, m := BestFactors(600_000_000, 24_000_000); m != 24 {
		t.Fatalf("M = %d, want 24", m)
	}
	if _, m := BestFactors(600_000_000, 20_000_000); m != 29 {
		t.Fatalf("M = %d, want 29", m)
	}
}

func TestPllCpuControlRoundtrip(t *testing.T) {
	v := DefaultPllCpuControl
	v = v.SetFactorN(41).SetFactorM(0)

	if v.FactorN() != 41 {
		t.Errorf("FactorN = %d, want 41", v.FactorN())
	}
	if v.FactorM() != 0 {
		t.Errorf("FactorM = %d, want 0", v.FactorM())
	}

	if v.IsLocked() {
		t.Error("fresh default-derived value should not read as locked")
	}

	v = v.EnablePll().EnableLdo().EnableLock()
	if !v.IsPllEnabled() || !v.IsLdoEnabled() || !v.IsLockEnabled() {
		t.Error("enable setters did not take effect")
	}

	v = v.DisablePll()
	if v.IsPllEnabled() {
		t.Error("DisablePll did not clear the enable bit")
	}
}

func TestPllDdrControlFactorMRoundtrip(t *testing.T) {
	var v PllDdrControl

	for m := uint8(0); m < 4; m++ {
		got := v.SetFactorM(m).FactorM()
		if got != m {
			t.Errorf("FactorM roundtrip: set %d, got %d", m, got)
		}
	}
}

func TestPllPeri0ControlFactorsRoundtrip(t *testing.T) {
	var v PllPeri0Control

	v = v.SetFactorP1(5).SetFactorP0(3).SetFactorN(100).SetFactorM(1)

	if v.FactorP1() != 5 {
		t.Errorf("FactorP1 = %d, want 5", v.FactorP1())
	}
	if v.FactorP0() != 3 {
		t.Errorf("FactorP0 = %d, want 3", v.FactorP0())
	}
	if v.FactorN() != 100 {
		t.Errorf("FactorN = %d, want 100", v.FactorN())
	}
	if v.FactorM() != 1 {
		t.Errorf("FactorM = %d, want 1", v.FactorM())
	}
}

func TestBusGatingIndependentBits(t *testing.T) {
	var r SpiBusGating

	r = r.GatePass(0).AssertReset(1)

	// Instance 1's reset-assert must not disturb instance 0's gate bit:
	// re-passing instance 0's gate is a no-op once it is already passed.
	if r.GatePass(0) != r {
		t.Error("GatePass(0) should be idempotent once already passed")
	}

	// Re-asserting instance 1's reset, already asserted, is also a no-op.
	if r.AssertReset(1) != r {
		t.Error("AssertReset(1) should be idempotent once already asserted")
	}
}

func TestUartClockGateMarkerTargetsCorrectBit(t *testing.T) {
	r := New(testBase)

	var u0 UART[I0]
	var u1 UART[I1]

	u0.DeassertResetOnly(r)
	u0.UnmaskGateOnly(r)

	before := r.UartBgr.Read()

	u1.AssertResetOnly(r)

	after := r.UartBgr.Read()

	if before.GatePass(0) != after.GatePass(0) {
		t.Error("UART1 reset assert must not disturb UART0's gate bit")
	}
}

func TestSpiReconfigureWithSequencesDependency(t *testing.T) {
	r := New(testBase)

	var spi0 SPI[I0]
	var dep UART[I0] // stand-in ClockReset dependency for the sequencing test

	ReconfigureWith[SPI[I0], UART[I0]](r, spi0, dep, uint8(SpiHosc), N1, 3)

	got := r.SpiClk[0].Read()
	if got.ClockSource() != SpiHosc {
		t.Errorf("ClockSource = %v, want SpiHosc", got.ClockSource())
	}
	if got.FactorM() != 3 {
		t.Errorf("FactorM = %d, want 3", got.FactorM())
	}

	reset := uint32(r.SpiBgr.Read())
	if reset&(1<<16) == 0 {
		t.Error("SPI0 reset bit should be set (deasserted) once ReconfigureWith returns")
	}
	if reset&(1<<0) == 0 {
		t.Error("SPI0 gate bit should be set (passed) once ReconfigureWith returns")
	}
}

// TestSpiReconfigureWithSelfDependency exercises the shape soc/d1/spi and
// soc/d1/smhc actually call: p and dep are the same marker, since SPI/SMHC
// are their own bus-gating-reset dependency (no separate upstream block).
func TestSpiReconfigureWithSelfDependency(t *testing.T) {
	r := New(testBase)

	p := SPI[I1]{}
	ReconfigureWith(r, p, p, uint8(SpiHosc), N2, 7)

	got := r.SpiClk[1].Read()
	if got.ClockSource() != SpiHosc {
		t.Errorf("ClockSource = %v, want SpiHosc", got.ClockSource())
	}
	if got.FactorN() != N2 {
		t.Errorf("FactorN = %v, want N2", got.FactorN())
	}
	if got.FactorM() != 7 {
		t.Errorf("FactorM = %d, want 7", got.FactorM())
	}

	reset := uint32(r.SpiBgr.Read())
	if reset&(1<<17) == 0 {
		t.Error("SPI1 reset bit should be set (deasserted) once ReconfigureWith returns")
	}
	if reset&(1<<1) == 0 {
		t.Error("SPI1 gate bit should be set (passed) once ReconfigureWith returns")
	}
}

func TestDramConfigureAndGate(t *testing.T) {
	r := New(testBase)

	Reconfigure[DRAM](r, DRAM{}, uint8(DramPllDdr), N2, 3)

	got := r.DramClock.Read()
	if got.ClockSource() != DramPllDdr {
		t.Errorf("ClockSource = %v, want DramPllDdr", got.ClockSource())
	}
	if got.FactorN() != N2 {
		t.Errorf("FactorN = %v, want N2", got.FactorN())
	}
	if got.FactorM() != 3 {
		t.Errorf("FactorM = %d, want 3", got.FactorM())
	}

	var gated DramBusGating
	if gated.GatePass() == gated.GateMask() {
		t.Fatal("GatePass and GateMask must produce distinct values")
	}
}
