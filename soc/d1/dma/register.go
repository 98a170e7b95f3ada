// Allwinner D1/V821 DMA controller driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dma implements a descriptor-based driver for the Allwinner
// D1/V821 DMA controller's 16 channels.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=riscv64`
// as supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package dma

import (
	"github.com/d1hal/tamago/internal/mmio"
)

const (
	offIrqEnable0  = 0x00
	offIrqEnable1  = 0x04
	offIrqPending0 = 0x10
	offIrqPending1 = 0x14
	offAutoGating  = 0x28
	offStatus      = 0x30
	offChannels    = 0x100

	channelStride = 0x40
	NumChannels   = 16
)

const (
	chOffEnable          = 0x00
	chOffPause           = 0x04
	chOffStartAddr       = 0x08
	chOffConfig          = 0x0c
	chOffCurrentSrcAddr  = 0x10
	chOffCurrentDst      = 0x14
	chOffByteCounterLeft = 0x18
	chOffParameter       = 0x1c
	chOffMode            = 0x28
	chOffFormerDescAddr  = 0x2c
	chOffPackageNum      = 0x30
)

// RegisterBlock is the DMA controller's global and per-channel register
// map, base-relative.
type RegisterBlock struct {
	IrqEnable0  mmio.RW[uint32]
	IrqEnable1  mmio.RW[uint32]
	IrqPending0 mmio.RW[uint32]
	IrqPending1 mmio.RW[uint32]
	AutoGating  mmio.RW[uint32]
	Status      mmio.RO[uint32]

	Channels [NumChannels]ChannelRegisterBlock
}

// ChannelRegisterBlock is a single DMA channel's register map.
type ChannelRegisterBlock struct {
	// Enable starts (1) or stops (0) the channel.
	Enable mmio.RW[uint32]
	// Pause freezes (1) or resumes (0) an active transfer.
	Pause mmio.RW[uint32]
	// StartAddr holds the physical address of the first descriptor in
	// the channel's linked list.
	StartAddr mmio.RW[uint32]

	// Config, CurrentSrcAddr, CurrentDestination, ByteCounterLeft and
	// Parameter mirror the fields of the descriptor currently loaded by
	// the channel; they are maintained by hardware as it walks the
	// descriptor chain and are not itself written by software.
	Config             mmio.RO[uint32]
	CurrentSrcAddr     mmio.RO[uint32]
	CurrentDestination mmio.RO[uint32]
	ByteCounterLeft    mmio.RO[uint32]
	Parameter          mmio.RO[uint32]

	Mode           mmio.RW[uint32]
	FormerDescAddr mmio.RO[uint32]
	PackageNum     mmio.RO[uint32]
}

// New binds a RegisterBlock to the DMA controller located at base.
func New(base uint32) *RegisterBlock {
	r := &RegisterBlock{
		IrqEnable0:  mmio.NewRW[uint32](base + offIrqEnable0),
		IrqEnable1:  mmio.NewRW[uint32](base + offIrqEnable1),
		IrqPending0: mmio.NewRW[uint32](base + offIrqPending0),
		IrqPending1: mmio.NewRW[uint32](base + offIrqPending1),
		AutoGating:  mmio.NewRW[uint32](base + offAutoGating),
		Status:      mmio.NewRO[uint32](base + offStatus),
	}

	for i := range r.Channels {
		cb := base + offChannels + uint32(i)*channelStride
		r.Channels[i] = ChannelRegisterBlock{
			Enable:             mmio.NewRW[uint32](cb + chOffEnable),
			Pause:              mmio.NewRW[uint32](cb + chOffPause),
			StartAddr:          mmio.NewRW[uint32](cb + chOffStartAddr),
			Config:             mmio.NewRO[uint32](cb + chOffConfig),
			CurrentSrcAddr:     mmio.NewRO[uint32](cb + chOffCurrentSrcAddr),
			CurrentDestination: mmio.NewRO[uint32](cb + chOffCurrentDst),
			ByteCounterLeft:    mmio.NewRO[uint32](cb + chOffByteCounterLeft),
			Parameter:          mmio.NewRO[uint32](cb + chOffParameter),
			Mode:               mmio.NewRW[uint32](cb + chOffMode),
			FormerDescAddr:     mmio.NewRO[uint32](cb + chOffFormerDescAddr),
			PackageNum:         mmio.NewRO[uint32](cb + chOffPackageNum),
		}
	}

	return r
}

// DrqType identifies a DMA request source/sink (an AHB peripheral's FIFO, or
// SDRAM for memory-to-memory transfers), placed in a Descriptor's Config
// source/destination DRQ fields.
type DrqType uint32

const (
	DrqSDRAM DrqType = 0
	DrqSPI0  DrqType = 0x4
	DrqSPI1  DrqType = 0x5
	DrqUart0 DrqType = 0x10
	DrqUart1 DrqType = 0x11
	DrqUart2 DrqType = 0x12
	DrqUart3 DrqType = 0x13
	DrqTWI0  DrqType = 0x16
	DrqTWI1  DrqType = 0x17
	DrqTWI2  DrqType = 0x18
	DrqTWI3  DrqType = 0x19
)

// AddrMode controls whether a descriptor's side of the transfer increments
// through memory or stays fixed at one FIFO address.
type AddrMode uint32

const (
	AddrModeLinear AddrMode = 0
	AddrModeIO     AddrMode = 1
)

// DataWidth is a transfer's per-beat data width.
type DataWidth uint32

const (
	DataWidth8  DataWidth = 0
	DataWidth16 DataWidth = 1
	DataWidth32 DataWidth = 2
	DataWidth64 DataWidth = 3
)

// BurstLength is a transfer's AHB burst length.
type BurstLength uint32

const (
	Burst1 BurstLength = 0
	Burst4 BurstLength = 1
	Burst8 BurstLength = 2
	Burst16 BurstLength = 3
)

const (
	cfgDstWidth = 0x3 << 25
	cfgDstBurst = 0x3 << 23
	cfgDstAddr  = 1 << 22
	cfgDstDrq   = 0x1f << 16
	cfgSrcWidth = 0x3 << 9
	cfgSrcBurst = 0x3 << 7
	cfgSrcAddr  = 1 << 6
	cfgSrcDrq   = 0x1f << 0
)

// EncodeConfig packs the source/destination DRQ, addressing mode, data
// width and burst length fields used by both Descriptor.Config and, for
// inspection, ChannelRegisterBlock.Config.
func EncodeConfig(
	srcDrq DrqType, srcAddr AddrMode, srcWidth DataWidth, srcBurst BurstLength,
	dstDrq DrqType, dstAddr AddrMode, dstWidth DataWidth, dstBurst BurstLength,
) uint32 {
	v := uint32(srcDrq) & 0x1f
	v |= uint32(srcAddr) << 6
	v |= (uint32(srcBurst) & 0x3) << 7
	v |= (uint32(srcWidth) & 0x3) << 9
	v |= (uint32(dstDrq) & 0x1f) << 16
	v |= uint32(dstAddr) << 22
	v |= (uint32(dstBurst) & 0x3) << 23
	v |= (uint32(dstWidth) & 0x3) << 25
	return v
}
