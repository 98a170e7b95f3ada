// Allwinner D1/V821 SD/MMC Host Controller driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package smhc implements a polled SD card driver for the Allwinner D1/V821
// SD/MMC Host Controllers (SMHC0..SMHC2).
//
// This package is only meant to be used with `GOOS=tamago GOARCH=riscv64`
// as supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package smhc

import (
	"github.com/d1hal/tamago/internal/mmio"
)

const (
	offGlobalControl  = 0x00
	offClockControl   = 0x04
	offTimeout        = 0x08
	offCardType       = 0x0c
	offBlockSize      = 0x10
	offByteCount      = 0x14
	offCommand        = 0x18
	offArgument       = 0x1c
	offResponses      = 0x20
	offInterruptMask  = 0x30
	offIntStateMasked = 0x34
	offIntStateRaw    = 0x38
	offStatus         = 0x3c
	offFifoWaterLevel = 0x40
	offFifoFunction   = 0x44
	offSampleDelay    = 0x144
	offFifo           = 0x200
)

// RegisterBlock is the SMHC memory-mapped register map, base-relative. Only
// the registers exercised by the polled SD initialization/transfer sequence
// are given named accessors; the remainder of the 0x204-byte map (DMA
// descriptor chaining, HS400/DDR timing, boot-ack handshaking) is out of
// scope for this driver.
type RegisterBlock struct {
	GlobalControl  mmio.RW[GlobalControl]
	ClockControl   mmio.RW[ClockControl]
	Timeout        mmio.RW[uint32]
	CardType       mmio.RW[CardType]
	BlockSize      mmio.RW[BlockSize]
	ByteCount      mmio.RW[uint32]
	Command        mmio.RW[Command]
	Argument       mmio.RW[uint32]
	Responses      [4]mmio.RO[uint32]
	InterruptMask  mmio.RW[uint32]
	IntStateMasked mmio.RO[uint32]
	IntStateRaw    mmio.RW[InterruptState]
	Status         mmio.RO[Status]
	FifoWaterLevel mmio.RW[FifoWaterLevel]
	FifoFunction   mmio.RW[uint32]
	SampleDelay    mmio.RW[SampleDelayControl]
	Fifo           mmio.RW[uint32]
}

// New binds a RegisterBlock to the SMHC instance located at base.
func New(base uint32) *RegisterBlock {
	r := &RegisterBlock{
		GlobalControl:  mmio.NewRW[GlobalControl](base + offGlobalControl),
		ClockControl:   mmio.NewRW[ClockControl](base + offClockControl),
		Timeout:        mmio.NewRW[uint32](base + offTimeout),
		CardType:       mmio.NewRW[CardType](base + offCardType),
		BlockSize:      mmio.NewRW[BlockSize](base + offBlockSize),
		ByteCount:      mmio.NewRW[uint32](base + offByteCount),
		Command:        mmio.NewRW[Command](base + offCommand),
		Argument:       mmio.NewRW[uint32](base + offArgument),
		InterruptMask:  mmio.NewRW[uint32](base + offInterruptMask),
		IntStateMasked: mmio.NewRO[uint32](base + offIntStateMasked),
		IntStateRaw:    mmio.NewRW[InterruptState](base + offIntStateRaw),
		Status:         mmio.NewRO[Status](base + offStatus),
		FifoWaterLevel: mmio.NewRW[FifoWaterLevel](base + offFifoWaterLevel),
		FifoFunction:   mmio.NewRW[uint32](base + offFifoFunction),
		SampleDelay:    mmio.NewRW[SampleDelayControl](base + offSampleDelay),
		Fifo:           mmio.NewRW[uint32](base + offFifo),
	}

	for i := range r.Responses {
		r.Responses[i] = mmio.NewRO[uint32](base + offResponses + uint32(i)*4)
	}

	return r
}

// GlobalControl is the SMC global control register.
type GlobalControl uint32

const (
	gcrFifoAcMod    = 1 << 31
	gcrDdrMod       = 1 << 10
	gcrDmaEnb       = 1 << 5
	gcrIntEnb       = 1 << 4
	gcrDmaRst       = 1 << 2
	gcrFifoRst      = 1 << 1
	gcrSoftRst      = 1 << 0
)

// AccessMode selects how the FIFO is drained: by the CPU (Ahb) or by the
// IDMAC (Dma).
type AccessMode bool

const (
	AccessModeDMA AccessMode = false
	AccessModeAHB AccessMode = true
)

func (r GlobalControl) SetAccessMode(m AccessMode) GlobalControl {
	if m == AccessModeAHB {
		return r | gcrFifoAcMod
	}
	return r &^ gcrFifoAcMod
}

func (r GlobalControl) DisableInterrupt() GlobalControl { return r &^ gcrIntEnb }
func (r GlobalControl) EnableInterrupt() GlobalControl  { return r | gcrIntEnb }

func (r GlobalControl) SetSoftwareReset() GlobalControl     { return r | gcrSoftRst }
func (r GlobalControl) IsSoftwareResetCleared() bool        { return r&gcrSoftRst == 0 }
func (r GlobalControl) SetFifoReset() GlobalControl         { return r | gcrFifoRst }
func (r GlobalControl) IsFifoResetCleared() bool            { return r&gcrFifoRst == 0 }
func (r GlobalControl) SetDmaReset() GlobalControl          { return r | gcrDmaRst }
func (r GlobalControl) IsDmaResetCleared() bool             { return r&gcrDmaRst == 0 }

// ClockControl is the SMC clock control register.
type ClockControl uint32

const (
	cclkCardClkOn  = 1 << 16
	cclkDivider    = 0xff << 0
)

func (r ClockControl) EnableCardClock() ClockControl  { return r | cclkCardClkOn }
func (r ClockControl) DisableCardClock() ClockControl { return r &^ cclkCardClkOn }
func (r ClockControl) IsCardClockEnabled() bool       { return r&cclkCardClkOn != 0 }

func (r ClockControl) CardClockDivider() uint8 { return uint8(r & cclkDivider) }
func (r ClockControl) SetCardClockDivider(div uint8) ClockControl {
	return (r &^ cclkDivider) | ClockControl(div)
}

// BusWidth selects the data bus width used for a transfer.
type BusWidth uint32

const (
	BusWidthOneBit   BusWidth = 0x0
	BusWidthFourBit  BusWidth = 0x1
	BusWidthEightBit BusWidth = 0x2
)

// CardType is the SMC card type (bus width) register.
type CardType uint32

func (r CardType) BusWidth() BusWidth { return BusWidth(r) }
func (r CardType) SetBusWidth(w BusWidth) CardType {
	return CardType(w)
}

// BlockSize is the SMC block size register.
type BlockSize uint32

func (r BlockSize) Size() uint16 { return uint16(r) }
func (r BlockSize) SetSize(size uint16) BlockSize {
	return BlockSize(size)
}

// DefaultBlockSize matches the 512-byte sector size used throughout this
// driver.
const DefaultBlockSize = 512

// TransferMode selects whether a command carries a data phase, and in which
// direction.
type TransferMode int

const (
	TransferDisable TransferMode = iota
	TransferRead
	TransferWrite
)

// ResponseMode selects the expected response length for a command.
type ResponseMode int

const (
	ResponseDisable ResponseMode = iota
	ResponseShort
	ResponseLong
)

// Command is the SMC command register.
type Command uint32

const (
	cmdStart          = 1 << 31
	cmdChangeClock     = 1 << 21
	cmdWaitPreOver     = 1 << 13
	cmdTransDir        = 1 << 10
	cmdDataTrans       = 1 << 9
	cmdCheckRespCrc    = 1 << 8
	cmdLongResp        = 1 << 7
	cmdRespRcv         = 1 << 6
	cmdAutoStop        = 1 << 12
	cmdIdx             = 0x3f << 0
)

func (r Command) SetCommandStart() Command { return r | cmdStart }
func (r Command) IsCommandStartCleared() bool { return r&cmdStart == 0 }

func (r Command) EnableChangeCardClock() Command  { return r | cmdChangeClock }
func (r Command) DisableChangeCardClock() Command { return r &^ cmdChangeClock }

func (r Command) EnableWaitForComplete() Command { return r | cmdWaitPreOver }

func (r Command) SetTransferDirection(dir TransferMode) Command {
	if dir == TransferWrite {
		return r | cmdTransDir
	}
	return r &^ cmdTransDir
}

func (r Command) EnableDataTransfer() Command { return r | cmdDataTrans }

func (r Command) EnableCheckResponseCrc() Command { return r | cmdCheckRespCrc }

func (r Command) EnableLongResponse() Command { return r | cmdLongResp }

func (r Command) EnableResponseReceive() Command { return r | cmdRespRcv }

// EnableAutoStop sets the auto-stop-after-transfer bit, matching this
// driver's unconditional use of it for every command.
func (r Command) EnableAutoStop() Command { return r | cmdAutoStop }

func (r Command) CommandIndex() uint8 { return uint8(r & cmdIdx) }
func (r Command) SetCommandIndex(idx uint8) Command {
	return (r &^ cmdIdx) | Command(idx&0x3f)
}

// Interrupt identifies one bit in the raw/masked interrupt state registers.
type Interrupt int

const (
	InterruptCommandComplete Interrupt = iota
	InterruptDataTransferComplete
	InterruptResponseError
	InterruptDataCrcError
	InterruptResponseCrcError
	InterruptResponseTimeout
	InterruptDataTimeout
)

var interruptBit = map[Interrupt]uint32{
	InterruptCommandComplete:      1 << 2,
	InterruptDataTransferComplete: 1 << 3,
	InterruptResponseError:        1 << 1,
	InterruptDataCrcError:         1 << 7,
	InterruptResponseCrcError:     1 << 6,
	InterruptResponseTimeout:      1 << 8,
	InterruptDataTimeout:          1 << 9,
}

// InterruptState is the SMC raw interrupt status register.
type InterruptState uint32

func (r InterruptState) HasInterrupt(i Interrupt) bool {
	return uint32(r)&interruptBit[i] != 0
}

func (r InterruptState) ClearInterrupt(i Interrupt) InterruptState {
	return r | InterruptState(interruptBit[i])
}

func (r InterruptState) ClearAll() InterruptState { return 0 }

// Status is the SMC status register.
type Status uint32

const statusFifoEmpty = 1 << 2

func (r Status) FifoEmpty() bool { return r&statusFifoEmpty != 0 }

// BurstSize selects the AHB burst length used when draining the FIFO.
type BurstSize uint8

const (
	BurstSizeOneByte    BurstSize = 0
	BurstSizeFourByte   BurstSize = 1
	BurstSizeEightByte  BurstSize = 2
	BurstSizeSixteenByte BurstSize = 3
)

// FifoWaterLevel is the SMC FIFO water level register.
type FifoWaterLevel uint32

const (
	fwlBurstSize = 0x7 << 28
	fwlRxTl      = 0xff << 16
	fwlTxTl      = 0xff << 0
)

func (r FifoWaterLevel) SetBurstSize(b BurstSize) FifoWaterLevel {
	return (r &^ fwlBurstSize) | FifoWaterLevel(b)<<28
}

func (r FifoWaterLevel) SetReceiveTriggerLevel(level uint8) FifoWaterLevel {
	return (r &^ fwlRxTl) | FifoWaterLevel(level)<<16
}

func (r FifoWaterLevel) SetTransmitTriggerLevel(level uint8) FifoWaterLevel {
	return (r &^ fwlTxTl) | FifoWaterLevel(level)
}

// SampleDelayControl is the SMC sample delay control register.
type SampleDelayControl uint32

const (
	sdcSampDlSwEn = 0x1 << 7
	sdcSampDlSw   = 0x3f << 0
)

func (r SampleDelayControl) EnableSampleDelaySoftware() SampleDelayControl {
	return r | sdcSampDlSwEn
}

func (r SampleDelayControl) SetSampleDelaySoftware(v uint8) SampleDelayControl {
	return (r &^ sdcSampDlSw) | SampleDelayControl(v&0x3f)
}
