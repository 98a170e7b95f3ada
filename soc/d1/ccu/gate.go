// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ccu

// Index identifies which instance of a multi-instance peripheral (UART,
// SPI, SMHC, TWI) a clock-gating operation targets. It stands in for the
// const-generic instance index the HAL this driver is modeled on encodes
// at the type level; Go has no const generics, so the index is carried by
// a marker type instead, resolved to a plain int via Idx().
type Index interface {
	Idx() int
}

type (
	I0 struct{}
	I1 struct{}
	I2 struct{}
	I3 struct{}
	I4 struct{}
	I5 struct{}
)

func (I0) Idx() int { return 0 }
func (I1) Idx() int { return 1 }
func (I2) Idx() int { return 2 }
func (I3) Idx() int { return 3 }
func (I4) Idx() int { return 4 }
func (I5) Idx() int { return 5 }

// ClockReset is satisfied by any peripheral marker that can be held in, or
// released from, reset independent of its clock gate.
type ClockReset interface {
	AssertResetOnly(ccu *RegisterBlock)
	DeassertResetOnly(ccu *RegisterBlock)
}

// ClockGate is satisfied by any peripheral marker whose bus clock can be
// gated on and off, and which as a consequence can also be reset (gating a
// peripheral's clock while it is out of reset corrupts its state, so every
// ClockGate implementation is also a ClockReset).
type ClockGate interface {
	ClockReset
	MaskGateOnly(ccu *RegisterBlock)
	UnmaskGateOnly(ccu *RegisterBlock)
}

// ClockConfig is satisfied by any peripheral marker whose clock divider can
// be reconfigured, in addition to being gated and reset.
type ClockConfig interface {
	ClockGate
	Configure(ccu *RegisterBlock, src uint8, n PeriFactorN, m uint8)
}

// Reset asserts, then immediately deasserts, a peripheral's reset line.
func Reset[T ClockReset](ccu *RegisterBlock, p T) {
	p.AssertResetOnly(ccu)
	p.DeassertResetOnly(ccu)
}

// Free gates off a peripheral's clock and holds it in reset, the inverse of
// the assert-then-gate-then-deassert bring-up sequence a driver's Init
// performs.
func Free[T ClockGate](ccu *RegisterBlock, p T) {
	p.MaskGateOnly(ccu)
	p.AssertResetOnly(ccu)
}

// Reconfigure gates off, reconfigures, then gates on a peripheral's clock.
// Use this when the peripheral has no reset dependency on another block
// (DRAM); peripherals with an upstream reset dependency use
// ReconfigureWith instead.
func Reconfigure[T ClockConfig](ccu *RegisterBlock, p T, src uint8, n PeriFactorN, m uint8) {
	p.MaskGateOnly(ccu)
	p.Configure(ccu, src, n, m)
	p.UnmaskGateOnly(ccu)
}

// ReconfigureWith runs the same sequence as Reconfigure but additionally
// holds dep in reset for the duration of the reconfiguration, for
// peripherals (SPI, SMHC) whose divider must not change while their own
// bus-gating-reset dependency is live. dep is typically p itself (SPI and
// SMHC are their own reset dependency); a distinct dep exists for
// peripherals that sit behind another block's reset line.
func ReconfigureWith[T ClockConfig, D ClockReset](ccu *RegisterBlock, p T, dep D, src uint8, n PeriFactorN, m uint8) {
	dep.AssertResetOnly(ccu)
	p.MaskGateOnly(ccu)
	p.Configure(ccu, src, n, m)
	p.DeassertResetOnly(ccu)
	dep.DeassertResetOnly(ccu)
	p.UnmaskGateOnly(ccu)
}

// DRAM is the DRAM controller's clock-gate marker. It has no sibling
// instances, so it carries no Index.
type DRAM struct{}

func (DRAM) AssertResetOnly(ccu *RegisterBlock) {
	ccu.DramBgr.Modify(func(v DramBusGating) DramBusGating { return v.AssertReset() })
}
func (DRAM) DeassertResetOnly(ccu *RegisterBlock) {
	ccu.DramBgr.Modify(func(v DramBusGating) DramBusGating { return v.DeassertReset() })
}
func (DRAM) MaskGateOnly(ccu *RegisterBlock) {
	ccu.DramBgr.Modify(func(v DramBusGating) DramBusGating { return v.GateMask() })
}
func (DRAM) UnmaskGateOnly(ccu *RegisterBlock) {
	ccu.DramBgr.Modify(func(v DramBusGating) DramBusGating { return v.GatePass() })
}
func (DRAM) Configure(ccu *RegisterBlock, src uint8, n PeriFactorN, m uint8) {
	ccu.DramClock.Modify(func(v DramClock) DramClock {
		return v.SetClockSource(DramClockSource(src)).SetFactorN(n).SetFactorM(m)
	})
}

// MBUS is the memory-bus clock-gate marker; it has a reset line but no
// divider and no clock gate of its own, so it implements only ClockReset.
type MBUS struct{}

func (MBUS) AssertResetOnly(ccu *RegisterBlock) {
	ccu.MbusClock.Modify(func(v MbusClock) MbusClock { return v.AssertReset() })
}
func (MBUS) DeassertResetOnly(ccu *RegisterBlock) {
	ccu.MbusClock.Modify(func(v MbusClock) MbusClock { return v.DeassertReset() })
}

// UART is the clock-gate marker for UART instance I. UART has no divider of
// its own (its baud rate comes from the fixed APB1 clock divided in the
// 16550 core itself), so it implements only ClockGate, not ClockConfig.
type UART[I Index] struct{}

func (UART[I]) AssertResetOnly(ccu *RegisterBlock) {
	var idx I
	ccu.UartBgr.Modify(func(v UartBusGating) UartBusGating { return v.AssertReset(idx.Idx()) })
}
func (UART[I]) DeassertResetOnly(ccu *RegisterBlock) {
	var idx I
	ccu.UartBgr.Modify(func(v UartBusGating) UartBusGating { return v.DeassertReset(idx.Idx()) })
}
func (UART[I]) MaskGateOnly(ccu *RegisterBlock) {
	var idx I
	ccu.UartBgr.Modify(func(v UartBusGating) UartBusGating { return v.GateMask(idx.Idx()) })
}
func (UART[I]) UnmaskGateOnly(ccu *RegisterBlock) {
	var idx I
	ccu.UartBgr.Modify(func(v UartBusGating) UartBusGating { return v.GatePass(idx.Idx()) })
}

// SPI is the clock-gate and clock-config marker for SPI instance I.
type SPI[I Index] struct{}

func (SPI[I]) idx() int { var i I; return i.Idx() }

func (p SPI[I]) AssertResetOnly(ccu *RegisterBlock) {
	ccu.SpiBgr.Modify(func(v SpiBusGating) SpiBusGating { return v.AssertReset(p.idx()) })
}
func (p SPI[I]) DeassertResetOnly(ccu *RegisterBlock) {
	ccu.SpiBgr.Modify(func(v SpiBusGating) SpiBusGating { return v.DeassertReset(p.idx()) })
}
func (p SPI[I]) MaskGateOnly(ccu *RegisterBlock) {
	ccu.SpiBgr.Modify(func(v SpiBusGating) SpiBusGating { return v.GateMask(p.idx()) })
}
func (p SPI[I]) UnmaskGateOnly(ccu *RegisterBlock) {
	ccu.SpiBgr.Modify(func(v SpiBusGating) SpiBusGating { return v.GatePass(p.idx()) })
}
func (p SPI[I]) Configure(ccu *RegisterBlock, src uint8, n PeriFactorN, m uint8) {
	i := p.idx()
	ccu.SpiClk[i].Modify(func(v SpiClock) SpiClock {
		return v.SetClockSource(SpiClockSource(src)).SetFactorN(n).SetFactorM(m)
	})
}

// SMHC is the clock-gate and clock-config marker for SMHC instance I.
type SMHC[I Index] struct{}

func (SMHC[I]) idx() int { var i I; return i.Idx() }

func (p SMHC[I]) AssertResetOnly(ccu *RegisterBlock) {
	ccu.SmhcBgr.Modify(func(v SmhcBusGating) SmhcBusGating { return v.AssertReset(p.idx()) })
}
func (p SMHC[I]) DeassertResetOnly(ccu *RegisterBlock) {
	ccu.SmhcBgr.Modify(func(v SmhcBusGating) SmhcBusGating { return v.DeassertReset(p.idx()) })
}
func (p SMHC[I]) MaskGateOnly(ccu *RegisterBlock) {
	ccu.SmhcBgr.Modify(func(v SmhcBusGating) SmhcBusGating { return v.GateMask(p.idx()) })
}
func (p SMHC[I]) UnmaskGateOnly(ccu *RegisterBlock) {
	ccu.SmhcBgr.Modify(func(v SmhcBusGating) SmhcBusGating { return v.GatePass(p.idx()) })
}
func (p SMHC[I]) Configure(ccu *RegisterBlock, src uint8, n PeriFactorN, m uint8) {
	i := p.idx()
	ccu.SmhcClk[i].Modify(func(v SmhcClock) SmhcClock {
		return v.EnableClockGating().SetClockSource(SmhcClockSource(src)).SetFactorN(n).SetFactorM(m)
	})
}

// TWI is the clock-gate marker for TWI instance I. TWI's bit-rate divider
// lives in the controller's own CCR register, not in the CCU, so TWI
// implements only ClockGate.
type TWI[I Index] struct{}

func (TWI[I]) AssertResetOnly(ccu *RegisterBlock) {
	var idx I
	ccu.TwiBgr.Modify(func(v TwiBusGating) TwiBusGating { return v.AssertReset(idx.Idx()) })
}
func (TWI[I]) DeassertResetOnly(ccu *RegisterBlock) {
	var idx I
	ccu.TwiBgr.Modify(func(v TwiBusGating) TwiBusGating { return v.DeassertReset(idx.Idx()) })
}
func (TWI[I]) MaskGateOnly(ccu *RegisterBlock) {
	var idx I
	ccu.TwiBgr.Modify(func(v TwiBusGating) TwiBusGating { return v.GateMask(idx.Idx()) })
}
func (TWI[I]) UnmaskGateOnly(ccu *RegisterBlock) {
	var idx I
	ccu.TwiBgr.Modify(func(v TwiBusGating) TwiBusGating { return v.GatePass(idx.Idx()) })
}

// DMA is the clock-gate marker for the single DMA controller instance.
type DMA struct{}

func (DMA) AssertResetOnly(ccu *RegisterBlock) {
	ccu.DmaBgr.Modify(func(v DmaBusGating) DmaBusGating { return v.AssertReset(0) })
}
func (DMA) DeassertResetOnly(ccu *RegisterBlock) {
	ccu.DmaBgr.Modify(func(v DmaBusGating) DmaBusGating { return v.DeassertReset(0) })
}
func (DMA) MaskGateOnly(ccu *RegisterBlock) {
	ccu.DmaBgr.Modify(func(v DmaBusGating) DmaBusGating { return v.GateMask(0) })
}
func (DMA) UnmaskGateOnly(ccu *RegisterBlock) {
	ccu.DmaBgr.Modify(func(v DmaBusGating) DmaBusGating { return v.GatePass(0) })
}
