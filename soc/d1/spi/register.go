// Allwinner D1/V821 SPI driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package spi implements a blocking, master-mode driver for the Allwinner
// D1/V821 SPI controllers.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=riscv64`
// as supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package spi

import (
	"github.com/d1hal/tamago/internal/mmio"
	"github.com/d1hal/tamago/internal/reg"
)

const (
	offGcr    = 0x04
	offTcr    = 0x08
	offIer    = 0x10
	offIsr    = 0x14
	offFcr    = 0x18
	offFsr    = 0x1c
	offWcr    = 0x20
	offSampDl = 0x28
	offMbc    = 0x30
	offMtc    = 0x34
	offBcc    = 0x38
	offTxd    = 0x200
	offRxd    = 0x300
)

// RegisterBlock is the SPI memory-mapped register map, base-relative.
type RegisterBlock struct {
	Gcr    mmio.RW[GlobalControl]
	Tcr    mmio.RW[TransferControl]
	Ier    mmio.RW[uint32]
	Isr    mmio.RW[uint32]
	Fcr    mmio.RW[uint32]
	Fsr    mmio.RO[FifoStatus]
	Wcr    mmio.RW[uint32]
	SampDl mmio.RW[uint32]
	Mbc    mmio.RW[uint32]
	Mtc    mmio.RW[uint32]
	Bcc    mmio.RW[BurstControl]

	base uint32
}

// New binds a RegisterBlock to the SPI instance located at base.
func New(base uint32) *RegisterBlock {
	return &RegisterBlock{
		base:   base,
		Gcr:    mmio.NewRW[GlobalControl](base + offGcr),
		Tcr:    mmio.NewRW[TransferControl](base + offTcr),
		Ier:    mmio.NewRW[uint32](base + offIer),
		Isr:    mmio.NewRW[uint32](base + offIsr),
		Fcr:    mmio.NewRW[uint32](base + offFcr),
		Fsr:    mmio.NewRO[FifoStatus](base + offFsr),
		Wcr:    mmio.NewRW[uint32](base + offWcr),
		SampDl: mmio.NewRW[uint32](base + offSampDl),
		Mbc:    mmio.NewRW[uint32](base + offMbc),
		Mtc:    mmio.NewRW[uint32](base + offMtc),
		Bcc:    mmio.NewRW[BurstControl](base + offBcc),
	}
}

// WriteByte pushes a single byte onto the transmit FIFO (TXD).
func (r *RegisterBlock) WriteByte(b byte) {
	reg.Write(r.base+offTxd, uint32(b))
}

// ReadByte pops a single byte off the receive FIFO (RXD).
func (r *RegisterBlock) ReadByte() byte {
	return byte(reg.Read(r.base + offRxd))
}

// GlobalControl is the SPI global control register.
type GlobalControl uint32

const (
	gcrSrst  = 1 << 31
	gcrTpEn  = 1 << 7
	gcrMode  = 1 << 1
	gcrEn    = 1 << 0
)

func (r GlobalControl) SoftwareReset() GlobalControl { return r | gcrSrst }

// IsSoftwareResetPending reports whether the SRST bit is still set. The
// controller clears it once reset completes, so a caller spins while this
// returns true.
func (r GlobalControl) IsSoftwareResetPending() bool { return r&gcrSrst != 0 }

func (r GlobalControl) SetTransmitPauseEnable(v bool) GlobalControl {
	if v {
		return r | gcrTpEn
	}
	return r &^ gcrTpEn
}
func (r GlobalControl) TransmitPauseEnabled() bool { return r&gcrTpEn != 0 }

func (r GlobalControl) SetMasterMode() GlobalControl { return r | gcrMode }
func (r GlobalControl) SetSlaveMode() GlobalControl  { return r &^ gcrMode }
func (r GlobalControl) IsMasterMode() bool           { return r&gcrMode != 0 }

func (r GlobalControl) SetEnabled(v bool) GlobalControl {
	if v {
		return r | gcrEn
	}
	return r &^ gcrEn
}
func (r GlobalControl) IsEnabled() bool { return r&gcrEn != 0 }

// TransferControl is the SPI transfer control register.
type TransferControl uint32

const (
	tcrXch  = 1 << 31
	tcrCpol = 1 << 1
	tcrCpha = 1 << 0
)

// BurstFinished reports whether the last burst exchange has completed.
func (r TransferControl) BurstFinished() bool { return r&tcrXch == 0 }

// StartBurstExchange triggers a new burst exchange.
func (r TransferControl) StartBurstExchange() TransferControl { return r | tcrXch }

// Mode is an SPI clock polarity/phase pair, matching embedded_hal's Mode.
type Mode struct {
	// CPOL selects idle-high clock polarity when true.
	CPOL bool
	// CPHA selects capture-on-second-transition when true.
	CPHA bool
}

var (
	Mode0 = Mode{CPOL: false, CPHA: false}
	Mode1 = Mode{CPOL: false, CPHA: true}
	Mode2 = Mode{CPOL: true, CPHA: false}
	Mode3 = Mode{CPOL: true, CPHA: true}
)

func (r TransferControl) SetWorkMode(m Mode) TransferControl {
	if m.CPOL {
		r |= tcrCpol
	} else {
		r &^= tcrCpol
	}
	if m.CPHA {
		r |= tcrCpha
	} else {
		r &^= tcrCpha
	}
	return r
}

// FifoStatus is the SPI FIFO status register.
type FifoStatus uint32

const (
	fsrTbWr  = 0x1 << 31
	fsrTbCnt = 0x7 << 28
	fsrTfCnt = 0xff << 16
	fsrRbWr  = 0x1 << 15
	fsrRbCnt = 0x7 << 12
	fsrRfCnt = 0xff << 0
)

func (r FifoStatus) TransmitBufferWriteEnable() bool { return r&fsrTbWr != 0 }
func (r FifoStatus) TransmitBufferCounter() uint8     { return uint8((r & fsrTbCnt) >> 28) }
func (r FifoStatus) TransmitFifoCounter() uint8       { return uint8((r & fsrTfCnt) >> 16) }
func (r FifoStatus) ReceiveBufferWriteEnable() bool   { return r&fsrRbWr != 0 }
func (r FifoStatus) ReceiveBufferCounter() uint8       { return uint8((r & fsrRbCnt) >> 12) }
func (r FifoStatus) ReceiveFifoCounter() uint8        { return uint8(r & fsrRfCnt) }

// BurstControl is the SPI burst counter control register.
type BurstControl uint32

const (
	bccQuadEn = 0x1 << 29
	bccDbc    = 0xf << 24
	bccStc    = 0xfff << 0
)

func (r BurstControl) QuadModeEnable() BurstControl  { return r | bccQuadEn }
func (r BurstControl) QuadModeDisable() BurstControl { return r &^ bccQuadEn }
func (r BurstControl) IsQuadModeEnabled() bool       { return r&bccQuadEn != 0 }

func (r BurstControl) MasterDummyBurstCounter() uint8 { return uint8((r & bccDbc) >> 24) }
func (r BurstControl) SetMasterDummyBurstCounter(v uint8) BurstControl {
	return (r &^ bccDbc) | BurstControl(v&0xf)<<24
}

func (r BurstControl) MasterSingleModeTransmitCounter() uint32 { return uint32(r & bccStc) }
func (r BurstControl) SetMasterSingleModeTransmitCounter(v uint32) BurstControl {
	return (r &^ bccStc) | BurstControl(v&0xfff)
}
