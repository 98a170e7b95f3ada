// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package smhc

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/d1hal/tamago/soc/d1/ccu"
	"github.com/d1hal/tamago/soc/d1/gpio"
)

// Pads holds the alternate-function pad handles an SMHC instance borrows
// for the duration between Init and Free.
type Pads struct {
	Clk gpio.Pad[gpio.Function]
	Cmd gpio.Pad[gpio.Function]
	D0  gpio.Pad[gpio.Function]
	D1  gpio.Pad[gpio.Function]
	D2  gpio.Pad[gpio.Function]
	D3  gpio.Pad[gpio.Function]
}

// BlockSize512 is the fixed sector size used by every transfer in this
// driver.
const BlockSize512 = 512

// UnexpectedResponseError is returned when a card's reply to a command
// during initialization doesn't match what the sequence requires. CmdIdx
// and Raw identify which command failed and what the card actually
// returned, so a caller can distinguish e.g. a CMD8 voltage-check mismatch
// from a CMD9 CSD-structure mismatch.
type UnexpectedResponseError struct {
	CmdIdx uint8
	Raw    uint32
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("smhc: unexpected response to CMD%d: %#x", e.CmdIdx, e.Raw)
}

// ErrWriteUnsupported is returned by WriteBlock: the block write path was never
// completed upstream, and this port carries that gap forward rather than
// fake a write that would silently corrupt a card.
var ErrWriteUnsupported = errors.New("smhc: block write not implemented")

// SMHC represents an SD/MMC host controller instance.
type SMHC struct {
	// Index is the controller instance number (0, 1 or 2).
	Index int
	// Base is the peripheral base address.
	Base uint32

	regs *RegisterBlock
	pads Pads
}

// Init resets and clocks the controller, then brings the card bus clock up
// at the divider closest to 20MHz, derived from psi through the
// clock-control unit. It does not probe or initialize a card; call
// InitCard for that once the bus clock is stable. It takes ownership of
// pads until Free returns them.
func (hw *SMHC) Init(c *ccu.RegisterBlock, pads Pads, psi uint32) {
	if hw.Base == 0 {
		panic("smhc: invalid controller instance")
	}

	hw.regs = New(hw.Base)
	hw.pads = pads

	n, m := ccu.BestFactors(psi, 20_000_000)

	hw.regs.ClockControl.Modify(func(v ClockControl) ClockControl {
		return v.DisableCardClock()
	})

	switch hw.Index {
	case 0:
		p := ccu.SMHC[ccu.I0]{}
		ccu.ReconfigureWith(c, p, p, uint8(ccu.SmhcPllPeri1x), n, m)
	case 1:
		p := ccu.SMHC[ccu.I1]{}
		ccu.ReconfigureWith(c, p, p, uint8(ccu.SmhcPllPeri1x), n, m)
	case 2:
		p := ccu.SMHC[ccu.I2]{}
		ccu.ReconfigureWith(c, p, p, uint8(ccu.SmhcPllPeri1x), n, m)
	default:
		panic("smhc: unsupported controller instance")
	}

	hw.regs.GlobalControl.Modify(func(v GlobalControl) GlobalControl {
		return v.SetSoftwareReset()
	})
	for !hw.regs.GlobalControl.Read().IsSoftwareResetCleared() {
		runtime.Gosched()
	}

	hw.regs.GlobalControl.Modify(func(v GlobalControl) GlobalControl {
		return v.SetFifoReset()
	})
	for !hw.regs.GlobalControl.Read().IsFifoResetCleared() {
		runtime.Gosched()
	}

	hw.regs.GlobalControl.Modify(func(v GlobalControl) GlobalControl {
		return v.DisableInterrupt()
	})

	hw.updateClockTiming()

	const cardClockDivider = 1 // divide-by-2: divider field holds (n - 1)
	hw.regs.ClockControl.Modify(func(v ClockControl) ClockControl {
		return v.SetCardClockDivider(cardClockDivider)
	})
	hw.regs.SampleDelay.Modify(func(v SampleDelayControl) SampleDelayControl {
		return v.SetSampleDelaySoftware(0).EnableSampleDelaySoftware()
	})
	hw.regs.ClockControl.Modify(func(v ClockControl) ClockControl {
		return v.EnableCardClock()
	})

	hw.updateClockTiming()

	hw.regs.CardType.Write(CardType(0).SetBusWidth(BusWidthOneBit))
	hw.regs.BlockSize.Write(BlockSize(0).SetSize(BlockSize512))
}

// Free gates off the SMHC controller's bus clock and returns the register
// block and pads to the caller, the inverse of Init.
func (hw *SMHC) Free(c *ccu.RegisterBlock) (*RegisterBlock, Pads) {
	switch hw.Index {
	case 0:
		ccu.Free(c, ccu.SMHC[ccu.I0]{})
	case 1:
		ccu.Free(c, ccu.SMHC[ccu.I1]{})
	case 2:
		ccu.Free(c, ccu.SMHC[ccu.I2]{})
	default:
		panic("smhc: unsupported controller instance")
	}

	regs, pads := hw.regs, hw.pads
	hw.regs, hw.pads = nil, Pads{}

	return regs, pads
}

// updateClockTiming pulses the command register's change-card-clock bit,
// which the controller requires after any clock_control write before the
// new divider takes effect.
func (hw *SMHC) updateClockTiming() {
	hw.regs.Command.Modify(func(v Command) Command {
		return v.EnableWaitForComplete().EnableChangeCardClock().SetCommandStart()
	})
	for !hw.regs.Command.Read().IsCommandStartCleared() {
		runtime.Gosched()
	}
}

// sendCommand issues cmd/arg to the card by writing the argument and command
// registers. It does not wait for the command to complete; callers observe
// completion through the response and interrupt-state registers.
func (hw *SMHC) sendCommand(cmd uint8, arg uint32, transfer TransferMode, response ResponseMode, crcCheck bool) {
	dataTrans := transfer != TransferDisable

	if dataTrans {
		hw.regs.ByteCount.Write(BlockSize512)
		hw.regs.GlobalControl.Modify(func(v GlobalControl) GlobalControl {
			return v.SetAccessMode(AccessModeAHB)
		})
	}

	hw.regs.Argument.Write(arg)

	v := Command(0).
		SetCommandStart().
		SetCommandIndex(cmd).
		SetTransferDirection(transfer).
		EnableWaitForComplete().
		EnableAutoStop()

	if dataTrans {
		v = v.EnableDataTransfer()
	}
	if crcCheck {
		v = v.EnableCheckResponseCrc()
	}
	if response != ResponseDisable {
		v = v.EnableResponseReceive()
	}
	if response == ResponseLong {
		v = v.EnableLongResponse()
	}

	hw.regs.Command.Write(v)
}

// readResponse assembles the 128-bit response from the four response
// registers, low word first.
func (hw *SMHC) readResponse() (r [4]uint32) {
	for i := range r {
		r[i] = hw.regs.Responses[i].Read()
	}
	return
}

// readResponse32 returns the low word of the response, for the common case
// of a short (32-bit) response.
func (hw *SMHC) readResponse32() uint32 {
	return hw.regs.Responses[0].Read()
}

// readData drains len(buf)/4 words from the FIFO into buf, little-endian.
func (hw *SMHC) readData(buf []byte) {
	for i := 0; i < len(buf)/4; i++ {
		for hw.regs.Status.Read().FifoEmpty() {
			runtime.Gosched()
		}

		data := hw.regs.Fifo.Read()
		buf[i*4+0] = byte(data)
		buf[i*4+1] = byte(data >> 8)
		buf[i*4+2] = byte(data >> 16)
		buf[i*4+3] = byte(data >> 24)
	}
}

// Card is an initialized SD card attached to an SMHC instance.
type Card struct {
	hw         *SMHC
	blockCount uint32
}

// ocrHighCapacitySupport requests SDHC/SDXC addressing during ACMD41.
const ocrHighCapacitySupport = 0x40000000

// ocrCardPowerUpBusy is set once the card has completed its power-up
// sequence and OCR reflects the negotiated voltage window.
const ocrCardPowerUpBusy = 0x80000000

// ocrVoltageWindowMask is the 2.7V-3.6V request window used during ACMD41.
const ocrVoltageWindowMask = 0x007FFF80

// InitCard runs the standard SD card identification and selection sequence
// (CMD0, CMD8, CMD55/ACMD41, CMD2, CMD3, CMD9, CMD7, CMD55/ACMD6) and
// returns a Card ready for block reads.
func InitCard(hw *SMHC) (*Card, error) {
	hw.sendCommand(0, 0, TransferDisable, ResponseDisable, false)
	delay()

	hw.sendCommand(8, 0x1AA, TransferDisable, ResponseShort, true)
	delay()
	if r := hw.readResponse32(); r != 0x1AA {
		return nil, &UnexpectedResponseError{CmdIdx: 8, Raw: r}
	}

	for {
		hw.sendCommand(55, 0, TransferDisable, ResponseShort, true)
		delay()

		hw.sendCommand(41, ocrVoltageWindowMask&0x00ff8000|ocrHighCapacitySupport, TransferDisable, ResponseShort, false)
		delay()

		if ocr := hw.readResponse32(); ocr&ocrCardPowerUpBusy == ocrCardPowerUpBusy {
			break
		}
	}

	hw.sendCommand(2, 0, TransferDisable, ResponseLong, true)
	delay()
	_ = hw.readResponse()

	hw.sendCommand(3, 0, TransferDisable, ResponseShort, true)
	delay()
	rca := hw.readResponse32()

	hw.sendCommand(9, rca, TransferDisable, ResponseLong, true)
	delay()
	csd := hw.readResponse()

	// The controller left-shifts a long response by 8 bits relative to the
	// card's wire format; undo that before interpreting CSD fields.
	fixed := shiftRight8(csd)
	structure, cSize := parseCSDv2(fixed)
	if structure != 1 {
		return nil, &UnexpectedResponseError{CmdIdx: 9, Raw: structure}
	}

	hw.sendCommand(7, rca, TransferDisable, ResponseShort, true)
	delay()

	hw.sendCommand(55, rca, TransferDisable, ResponseShort, true)
	delay()
	hw.sendCommand(6, 0, TransferDisable, ResponseShort, true)
	delay()

	return &Card{hw: hw, blockCount: (cSize + 1) * 1024}, nil
}

// SizeKB reports the card's capacity in kilobytes.
func (c *Card) SizeKB() float64 {
	return float64(c.blockCount) * BlockSize512 / 1024.0
}

// BlockCount reports the card's capacity in 512-byte blocks.
func (c *Card) BlockCount() uint32 {
	return c.blockCount
}

// ReadBlock reads one 512-byte block at blockIdx into block, retrying the
// whole command until the controller reports data-transfer-complete.
func (c *Card) ReadBlock(block []byte, blockIdx uint32) {
	if len(block) != BlockSize512 {
		panic("smhc: block buffer must be 512 bytes")
	}

	hw := c.hw

	for {
		hw.regs.GlobalControl.Modify(func(v GlobalControl) GlobalControl {
			return v.SetFifoReset()
		})
		for !hw.regs.GlobalControl.Read().IsFifoResetCleared() {
			runtime.Gosched()
		}

		hw.regs.GlobalControl.Modify(func(v GlobalControl) GlobalControl {
			return v.SetAccessMode(AccessModeAHB)
		})
		hw.regs.FifoWaterLevel.Modify(func(v FifoWaterLevel) FifoWaterLevel {
			return v.SetBurstSize(BurstSizeSixteenByte).
				SetReceiveTriggerLevel(15).
				SetTransmitTriggerLevel(240)
		})

		hw.sendCommand(17, blockIdx, TransferRead, ResponseShort, true)
		hw.readData(block)

		for !hw.regs.IntStateRaw.Read().HasInterrupt(InterruptCommandComplete) {
			delay()
		}

		if hw.regs.IntStateRaw.Read().HasInterrupt(InterruptDataTransferComplete) {
			break
		}
	}
}

// WriteBlock is not implemented: block writes were never completed in the
// driver this package is ported from.
func (c *Card) WriteBlock(block []byte, blockIdx uint32) error {
	return ErrWriteUnsupported
}

// parseCSDv2 extracts the CSD structure version and C_SIZE field from a
// version-2 (SDHC/SDXC) Card Specific Data register.
func parseCSDv2(csd [4]uint32) (structure uint32, cSize uint32) {
	// word[3] holds bits 127:96 of the 128-bit CSD.
	structure = (csd[3] & 0xC00000) >> 22
	// C_SIZE is read from bits 61:40 of the value, i.e. bits 29:8 of
	// word[1] (bits 63:32).
	cSize = (csd[1] & 0x3FFFFF00) >> 8
	return
}

// shiftRight8 shifts a 128-bit value (stored as four little-endian words)
// right by 8 bits, carrying bits across word boundaries.
func shiftRight8(v [4]uint32) (out [4]uint32) {
	for i := 0; i < 4; i++ {
		out[i] = v[i] >> 8
		if i < 3 {
			out[i] |= v[i+1] << 24
		}
	}
	return
}

// delay busy-waits for a short, fixed interval. The upstream driver this
// sequence is ported from polls on a hardware timer interrupt instead;
// absent one here, spinning with Gosched is the same compromise every
// other polled driver in this tree makes.
func delay() {
	for i := 0; i < 1000; i++ {
		runtime.Gosched()
	}
}
