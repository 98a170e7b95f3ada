// Allwinner V821 configuration and support
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package v821 provides support to Go bare metal unikernels written using
// the TamaGo framework.
//
// The package implements initialization and drivers for the Allwinner V821
// application processor, a variant of the D1 family exposing a reduced pad
// set (ports A, C and D, plus a separate always-on GPIO_R block for port L)
// and four UARTs.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=riscv64` as
// supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package v821

import (
	"github.com/d1hal/tamago/riscv"
	"github.com/d1hal/tamago/soc/d1/gpio"
	"github.com/d1hal/tamago/soc/d1/uart"
)

// Peripheral registers
const (
	GPIO_BASE   = 0x42000000
	GPIO_R_BASE = 0x42000540
	// NumPorts spans indices 0..3 (A, B, C, D) even though this chip
	// only bonds out A, C and D; the gap at B keeps per-port offset
	// arithmetic identical to the D1 register layout this reuses.
	NumPorts = 4
	// NumPortsR covers the single always-on pad bank (L).
	NumPortsR = 1

	UART0_BASE = 0x42500000
	UART1_BASE = 0x42500400
	UART2_BASE = 0x42500800
	UART3_BASE = 0x42500c00
)

// DefaultClocks matches this board's ROM-configured clock tree: PSI at
// 600MHz, APB1 at 24MHz.
var DefaultClocks = struct {
	PSI  uint32
	APB1 uint32
}{
	PSI:  600_000_000,
	APB1: 24_000_000,
}

// PortIndex converts a V821 port letter (A, C or D) to the zero-based index
// used by the GPIO register block's Port/Eint arrays.
func PortIndex(port byte) int {
	switch port {
	case 'A', 'C', 'D':
		return int(port - 'A')
	default:
		panic("v821: invalid port letter")
	}
}

// Peripherals is the set of register blocks and pads owned by a running
// unikernel. It is constructed once via NewPeripherals; a second call
// panics, since Go has no move semantics to statically forbid two live
// handles to the same hardware the way the source HAL's ownership types do.
type Peripherals struct {
	// CPU is the RV64 core in machine mode.
	CPU *riscv.CPU

	// GPIO is the main pad controller (ports A, C, D).
	GPIO *gpio.RegisterBlock
	// GPIOR is the always-on pad controller (port L).
	GPIOR *gpio.RegisterBlock

	UART0, UART1, UART2, UART3 *uart.UART

	taken  [NumPorts][32]bool
	takenR [NumPortsR][32]bool
}

var peripheralsTaken bool

// NewPeripherals constructs the singleton Peripherals aggregate, wiring
// every register block at its fixed base address. It panics if called more
// than once.
func NewPeripherals() *Peripherals {
	if peripheralsTaken {
		panic("v821: peripherals already taken")
	}
	peripheralsTaken = true

	return &Peripherals{
		CPU: &riscv.CPU{},

		GPIO:  gpio.New(GPIO_BASE, NumPorts),
		GPIOR: gpio.New(GPIO_R_BASE, NumPortsR),

		UART0: &uart.UART{Index: 0, Base: UART0_BASE},
		UART1: &uart.UART{Index: 1, Base: UART1_BASE},
		UART2: &uart.UART{Index: 2, Base: UART2_BASE},
		UART3: &uart.UART{Index: 3, Base: UART3_BASE},
	}
}

// Pad returns the Disabled-mode handle for pad (port, pin) on the main GPIO
// controller, where port is 'A', 'C' or 'D'. It panics if that pad has
// already been taken.
func (p *Peripherals) Pad(port byte, pin uint8) gpio.Pad[gpio.Disabled] {
	idx := PortIndex(port)
	if pin >= 32 {
		panic("v821: invalid pin number")
	}
	if p.taken[idx][pin] {
		panic("v821: pad already taken")
	}
	p.taken[idx][pin] = true

	return gpio.NewDisabledPad(p.GPIO, idx, pin)
}

// PadR returns the Disabled-mode handle for pin on the always-on port L
// GPIO_R controller. It panics if that pad has already been taken.
func (p *Peripherals) PadR(pin uint8) gpio.Pad[gpio.Disabled] {
	if pin >= 32 {
		panic("v821: invalid pin number")
	}
	if p.takenR[0][pin] {
		panic("v821: pad already taken")
	}
	p.takenR[0][pin] = true

	return gpio.NewDisabledPad(p.GPIOR, 0, pin)
}

// Model returns the SoC model name.
func Model() string {
	return "V821"
}
