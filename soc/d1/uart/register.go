// Allwinner D1/V821 UART driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package uart implements a driver for the Allwinner D1/V821 UART
// controllers, a standard 16550 core plus a vendor status register (USR)
// at offset 0x7c.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=riscv64`
// as supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package uart

import (
	"github.com/d1hal/tamago/internal/mmio"
)

const (
	offRbrThrDll = 0x00
	offIerDlh    = 0x04
	offIirFcr    = 0x08
	offLcr       = 0x0c
	offMcr       = 0x10
	offLsr       = 0x14
	offMsr       = 0x18
	offScr       = 0x1c
	offUsr       = 0x7c
)

// RegisterBlock is the UART memory-mapped register map, base-relative.
type RegisterBlock struct {
	// RbrThrDll aliases the receive buffer, transmit holding, and low
	// divisor latch registers; which one a read/write hits depends on
	// Lcr's DLAB bit and transfer direction.
	RbrThrDll mmio.RW[uint32]
	// IerDlh aliases the interrupt enable and high divisor latch
	// registers, gated the same way as RbrThrDll.
	IerDlh mmio.RW[uint32]
	// IirFcr aliases the (read-only) interrupt identification and
	// (write-only) FIFO control registers.
	IirFcr mmio.RW[uint32]
	Lcr    mmio.RW[uint32]
	Mcr    mmio.RW[uint32]
	Lsr    mmio.RO[uint32]
	Msr    mmio.RO[uint32]
	Scr    mmio.RW[uint32]
	Usr    mmio.RO[UartStatus]
}

// New binds a RegisterBlock to the UART instance located at base.
func New(base uint32) *RegisterBlock {
	return &RegisterBlock{
		RbrThrDll: mmio.NewRW[uint32](base + offRbrThrDll),
		IerDlh:    mmio.NewRW[uint32](base + offIerDlh),
		IirFcr:    mmio.NewRW[uint32](base + offIirFcr),
		Lcr:       mmio.NewRW[uint32](base + offLcr),
		Mcr:       mmio.NewRW[uint32](base + offMcr),
		Lsr:       mmio.NewRO[uint32](base + offLsr),
		Msr:       mmio.NewRO[uint32](base + offMsr),
		Scr:       mmio.NewRW[uint32](base + offScr),
		Usr:       mmio.NewRO[UartStatus](base + offUsr),
	}
}

// Line control bits.
const (
	lcrWls0 = 1 << 0
	lcrWls1 = 1 << 1
	lcrStb  = 1 << 2
	lcrPen  = 1 << 3
	lcrDlab = 1 << 7
)

// FIFO control bits.
const (
	fcrFifoEnable   = 1 << 0
	fcrRxFifoReset  = 1 << 1
	fcrTxFifoReset  = 1 << 2
)

// UartStatus is the vendor USR register, a status summary the plain 16550
// LSR does not expose in a form convenient for polling loops. Only the low
// 5 bits are defined; the type is uint32 (not uint8) so it satisfies the
// mmio.Word register-cell constraint.
type UartStatus uint32

const (
	usrReceiveFifoFull       = 1 << 4
	usrReceiveFifoNotEmpty   = 1 << 3
	usrTransmitFifoEmpty     = 1 << 2
	usrTransmitFifoNotFull   = 1 << 1
	usrBusy                  = 1 << 0
)

func (s UartStatus) ReceiveFifoFull() bool     { return s&usrReceiveFifoFull != 0 }
func (s UartStatus) ReceiveFifoNotEmpty() bool { return s&usrReceiveFifoNotEmpty != 0 }
func (s UartStatus) TransmitFifoEmpty() bool   { return s&usrTransmitFifoEmpty != 0 }
func (s UartStatus) TransmitFifoNotFull() bool { return s&usrTransmitFifoNotFull != 0 }
func (s UartStatus) Busy() bool                { return s&usrBusy != 0 }
