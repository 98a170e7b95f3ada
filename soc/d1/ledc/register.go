// Allwinner D1 LEDC (WS2812-style addressable LED) driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ledc implements a driver for the Allwinner D1 LEDC peripheral, a
// hardware shift-register for one-wire addressable LED strips (WS2812 and
// compatible).
//
// This package is only meant to be used with `GOOS=tamago GOARCH=riscv64`
// as supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package ledc

import (
	"github.com/d1hal/tamago/internal/mmio"
)

const (
	offControl     = 0x00
	offT01Timing   = 0x04
	offDataFinish  = 0x08
	offResetTiming = 0x0c
	offWaitTime0   = 0x10
	offData        = 0x14
	offDmaControl  = 0x18
	offIntControl  = 0x1c
	offIntStatus   = 0x20
	offWaitTime1   = 0x28
	offFifo        = 0x2c
)

// RegisterBlock is the LEDC memory-mapped register map, base-relative.
type RegisterBlock struct {
	Control     mmio.RW[Control]
	T01Timing   mmio.RW[T01Timing]
	DataFinish  mmio.RW[DataFinishCount]
	ResetTiming mmio.RW[ResetTiming]
	WaitTime0   mmio.RW[WaitTime0]
	Data        mmio.WO[uint32]
	DmaControl  mmio.RW[DmaControl]
	IntControl  mmio.RW[InterruptControl]
	IntStatus   mmio.RW[InterruptStatus]
	WaitTime1   mmio.RW[WaitTime1]
	Fifo        [32]mmio.RO[uint32]
}

// New binds a RegisterBlock to the LEDC instance located at base.
func New(base uint32) *RegisterBlock {
	r := &RegisterBlock{
		Control:     mmio.NewRW[Control](base + offControl),
		T01Timing:   mmio.NewRW[T01Timing](base + offT01Timing),
		DataFinish:  mmio.NewRW[DataFinishCount](base + offDataFinish),
		ResetTiming: mmio.NewRW[ResetTiming](base + offResetTiming),
		WaitTime0:   mmio.NewRW[WaitTime0](base + offWaitTime0),
		Data:        mmio.NewWO[uint32](base + offData),
		DmaControl:  mmio.NewRW[DmaControl](base + offDmaControl),
		IntControl:  mmio.NewRW[InterruptControl](base + offIntControl),
		IntStatus:   mmio.NewRW[InterruptStatus](base + offIntStatus),
		WaitTime1:   mmio.NewRW[WaitTime1](base + offWaitTime1),
	}

	for i := range r.Fifo {
		r.Fifo[i] = mmio.NewRO[uint32](base + offFifo + uint32(i)*4)
	}

	return r
}

// RgbMode selects the byte order LEDC combines three color channels into
// on the wire.
type RgbMode uint32

const (
	GRB RgbMode = 0b000
	GBR RgbMode = 0b001
	RGB RgbMode = 0b010
	RBG RgbMode = 0b011
	BGR RgbMode = 0b100
	BRG RgbMode = 0b101
)

// Control is the LEDC control register.
type Control uint32

const (
	ctrlLedEn      = 1 << 0
	ctrlSoftRst    = 1 << 1
	ctrlMsbB       = 1 << 2
	ctrlMsbR       = 1 << 3
	ctrlMsbG       = 1 << 4
	ctrlMsbTop     = 1 << 5
	ctrlRgbMode    = 0x7 << 6
	ctrlResetLedEn = 1 << 10
	ctrlDataLen    = 0xfff << 16
)

func (r Control) IsEnabled() bool   { return r&ctrlLedEn != 0 }
func (r Control) Enable() Control   { return r | ctrlLedEn }
func (r Control) Disable() Control  { return r &^ ctrlLedEn }

// SoftReset reports whether the soft-reset bit is still set; it
// self-clears once the reset completes.
func (r Control) SoftReset() bool { return r&ctrlSoftRst != 0 }

// ClearSoftReset writes 1 to the soft-reset bit, which both triggers and
// (once complete) clears the reset per the hardware's write-1 semantics.
func (r Control) ClearSoftReset() Control { return r | ctrlSoftRst }

func (r Control) IsRedMSB() bool   { return r&ctrlMsbR != 0 }
func (r Control) IsGreenMSB() bool { return r&ctrlMsbG != 0 }
func (r Control) IsBlueMSB() bool  { return r&ctrlMsbB != 0 }

func (r Control) SetRedMSB(v bool) Control {
	if v {
		return r | ctrlMsbR
	}
	return r &^ ctrlMsbR
}

func (r Control) SetGreenMSB(v bool) Control {
	if v {
		return r | ctrlMsbG
	}
	return r &^ ctrlMsbG
}

func (r Control) SetBlueMSB(v bool) Control {
	if v {
		return r | ctrlMsbB
	}
	return r &^ ctrlMsbB
}

func (r Control) IsMSBTop() bool { return r&ctrlMsbTop != 0 }
func (r Control) SetMSBTop(v bool) Control {
	if v {
		return r | ctrlMsbTop
	}
	return r &^ ctrlMsbTop
}

func (r Control) SetResetLEDEnable() Control { return r | ctrlResetLedEn }
func (r Control) IsResetDone() bool          { return r&ctrlResetLedEn == 0 }

func (r Control) RGBMode() RgbMode {
	return RgbMode((r & ctrlRgbMode) >> 6)
}

func (r Control) SetRGBMode(m RgbMode) Control {
	return (r &^ ctrlRgbMode) | Control(m)<<6
}

func (r Control) TotalDataLength() uint32 { return uint32(r&ctrlDataLen) >> 16 }
func (r Control) SetTotalDataLength(n uint32) Control {
	return (r &^ ctrlDataLen) | Control(n&0xfff)<<16
}

// T01Timing is the T0/T1 bit-timing control register. All four fields are
// expressed in units of 42ns cycles (24MHz) as (N+1).
type T01Timing uint32

const (
	t01T1hShift = 21
	t01T1hMask  = 0x3f
	t01T1lShift = 16
	t01T1lMask  = 0x1f
	t01T0hShift = 6
	t01T0hMask  = 0xf
	t01T0lShift = 0
	t01T0lMask  = 0x1f
)

func (r T01Timing) T1H() uint32 { return uint32(r>>t01T1hShift) & t01T1hMask }
func (r T01Timing) SetT1H(n uint32) T01Timing {
	return (r &^ (t01T1hMask << t01T1hShift)) | T01Timing(n&t01T1hMask)<<t01T1hShift
}

func (r T01Timing) T1L() uint32 { return uint32(r>>t01T1lShift) & t01T1lMask }
func (r T01Timing) SetT1L(n uint32) T01Timing {
	return (r &^ (t01T1lMask << t01T1lShift)) | T01Timing(n&t01T1lMask)<<t01T1lShift
}

func (r T01Timing) T0H() uint32 { return uint32(r>>t01T0hShift) & t01T0hMask }
func (r T01Timing) SetT0H(n uint32) T01Timing {
	return (r &^ (t01T0hMask << t01T0hShift)) | T01Timing(n&t01T0hMask)<<t01T0hShift
}

func (r T01Timing) T0L() uint32 { return uint32(r>>t01T0lShift) & t01T0lMask }
func (r T01Timing) SetT0L(n uint32) T01Timing {
	return (r &^ (t01T0lMask << t01T0lShift)) | T01Timing(n&t01T0lMask)<<t01T0lShift
}

// CycleNS is the fixed 42ns clock period (24MHz) every LEDC timing field is
// quantized to.
const CycleNS = 42

// Cycles converts a duration in nanoseconds to the field value N that the
// timing registers expect (the duration is 42ns * (N+1)), rounding to the
// nearest cycle; durations below half a cycle give 0.
func Cycles(ns uint32) uint32 {
	n := (ns + CycleNS/2) / CycleNS
	if n == 0 {
		return 0
	}
	return n - 1
}

// DataFinishCount is the data-finish-counter register.
type DataFinishCount uint32

func (r DataFinishCount) WaitDataTime() uint32 { return uint32(r>>16) & 0x1fff }
func (r DataFinishCount) SetWaitDataTime(n uint32) DataFinishCount {
	return (r &^ (0x1fff << 16)) | DataFinishCount(n&0x1fff)<<16
}
func (r DataFinishCount) FinishCount() uint32 { return uint32(r) & 0xfff }

// ResetTiming is the LED-bus reset-pulse timing control register.
type ResetTiming uint32

func (r ResetTiming) ResetTime() uint32 { return uint32(r>>16) & 0x1fff }
func (r ResetTiming) SetResetTime(n uint32) ResetTiming {
	return (r &^ (0x1fff << 16)) | ResetTiming(n&0x1fff)<<16
}
func (r ResetTiming) LedCount() uint32 { return uint32(r) & 0x1ff }
func (r ResetTiming) SetLedCount(n uint32) ResetTiming {
	return (r &^ 0x1ff) | ResetTiming(n&0x1ff)
}

// WaitTime0 is the inter-LED wait-time control register.
type WaitTime0 uint32

const wt0Enable = 1 << 8

func (r WaitTime0) IsEnabled() bool    { return r&wt0Enable != 0 }
func (r WaitTime0) Enable() WaitTime0  { return r | wt0Enable }
func (r WaitTime0) Disable() WaitTime0 { return r &^ wt0Enable }

func (r WaitTime0) Time() uint32 { return uint32(r) & 0xff }
func (r WaitTime0) SetTime(n uint32) WaitTime0 {
	return (r &^ 0xff) | WaitTime0(n&0xff)
}

// DmaControl is the LEDC DMA control register.
type DmaControl uint32

const (
	dmaEnable    = 1 << 5
	dmaTrigLevel = 0x1f << 0
)

func (r DmaControl) IsEnabled() bool   { return r&dmaEnable != 0 }
func (r DmaControl) Enable() DmaControl  { return r | dmaEnable }
func (r DmaControl) Disable() DmaControl { return r &^ dmaEnable }

func (r DmaControl) FifoTriggerLevel() uint32 { return uint32(r) & dmaTrigLevel }
func (r DmaControl) SetFifoTriggerLevel(n uint32) DmaControl {
	return (r &^ dmaTrigLevel) | DmaControl(n&dmaTrigLevel)
}

// InterruptControl is the LEDC interrupt enable register.
type InterruptControl uint32

const (
	intGlobal       = 1 << 5
	intFifoOverflow = 1 << 4
	intWaitData     = 1 << 3
	intCpuReq       = 1 << 1
	intTransferDone = 1 << 0
)

func (r InterruptControl) EnableGlobal() InterruptControl  { return r | intGlobal }
func (r InterruptControl) DisableGlobal() InterruptControl { return r &^ intGlobal }

func (r InterruptControl) EnableFifoOverflow() InterruptControl  { return r | intFifoOverflow }
func (r InterruptControl) EnableWaitData() InterruptControl      { return r | intWaitData }
func (r InterruptControl) EnableCpuRequest() InterruptControl    { return r | intCpuReq }
func (r InterruptControl) EnableTransferDone() InterruptControl  { return r | intTransferDone }

// InterruptStatus is the LEDC interrupt status register.
type InterruptStatus uint32

const (
	statFifoEmpty        = 1 << 17
	statFifoFull          = 1 << 16
	statFifoDepth         = 0x3f << 10
	statFifoOverflow      = 1 << 4
	statWaitDataTimeout   = 1 << 3
	statFifoCpuReq        = 1 << 1
	statTransferFinish    = 1 << 0
)

func (r InterruptStatus) FifoEmpty() bool { return r&statFifoEmpty != 0 }
func (r InterruptStatus) FifoFull() bool  { return r&statFifoFull != 0 }

func (r InterruptStatus) FifoDepth() uint32 { return uint32(r>>10) & 0x3f }

func (r InterruptStatus) FifoOverflow() bool             { return r&statFifoOverflow != 0 }
func (r InterruptStatus) ClearFifoOverflow() InterruptStatus { return r | statFifoOverflow }

func (r InterruptStatus) WaitDataTimeout() bool                { return r&statWaitDataTimeout != 0 }
func (r InterruptStatus) ClearWaitDataTimeout() InterruptStatus { return r | statWaitDataTimeout }

func (r InterruptStatus) TransferFinished() bool                { return r&statTransferFinish != 0 }
func (r InterruptStatus) ClearTransferFinished() InterruptStatus { return r | statTransferFinish }

// WaitTime1 is the inter-frame wait-time control register.
type WaitTime1 uint32

const wt1Enable = 1 << 31

func (r WaitTime1) IsEnabled() bool    { return r&wt1Enable != 0 }
func (r WaitTime1) Enable() WaitTime1  { return r | wt1Enable }
func (r WaitTime1) Disable() WaitTime1 { return r &^ wt1Enable }

func (r WaitTime1) Time() uint32 { return uint32(r) & 0x7fffffff }
func (r WaitTime1) SetTime(n uint32) WaitTime1 {
	return (r &^ 0x7fffffff) | WaitTime1(n&0x7fffffff)
}
