// Allwinner D1 configuration and support
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package d1 provides support to Go bare metal unikernels written using the
// TamaGo framework.
//
// The package implements initialization and drivers for the Allwinner D1
// RISC-V application processor (XuanTie C906 core), adopting the peripheral
// register layouts published for the T-Head/Allwinner D1-H SoC.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=riscv64` as
// supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package d1

import (
	"github.com/d1hal/tamago/riscv"
	"github.com/d1hal/tamago/soc/d1/ccu"
	"github.com/d1hal/tamago/soc/d1/dma"
	"github.com/d1hal/tamago/soc/d1/gpio"
	"github.com/d1hal/tamago/soc/d1/ledc"
	"github.com/d1hal/tamago/soc/d1/smhc"
	"github.com/d1hal/tamago/soc/d1/spi"
	"github.com/d1hal/tamago/soc/d1/twi"
	"github.com/d1hal/tamago/soc/d1/uart"
)

// Peripheral registers
const (
	CCU_BASE = 0x02001000

	GPIO_BASE = 0x02000000
	// NumPorts spans ports B through G, following the board letter-to-
	// index convention below.
	NumPorts = 6

	UART0_BASE = 0x02500000
	UART1_BASE = 0x02500400
	UART2_BASE = 0x02500800
	UART3_BASE = 0x02500c00
	UART4_BASE = 0x02501000
	UART5_BASE = 0x02501400

	TWI0_BASE = 0x02502000
	TWI1_BASE = 0x02502400
	TWI2_BASE = 0x02502800
	TWI3_BASE = 0x02502c00

	SPI0_BASE = 0x04025000
	SPI1_BASE = 0x04026000

	SMHC0_BASE = 0x04020000
	SMHC1_BASE = 0x04021000
	SMHC2_BASE = 0x04022000

	DMA_BASE  = 0x03002000
	LEDC_BASE = 0x02800000
)

// Clocks holds the bus clock rates this package's peripherals derive their
// dividers from; NewPeripherals programs no PLL itself and simply carries
// whatever the boot ROM already configured.
type Clocks struct {
	// PSI is the peripheral-bus clock (feeds SPI/SMHC dividers).
	PSI uint32
	// APB1 is the APB1 bus clock (feeds the UART baud-rate generator).
	APB1 uint32
}

// DefaultClocks matches the D1 boot ROM's default PLL configuration: PSI at
// 600MHz, APB1 at 24MHz.
var DefaultClocks = Clocks{
	PSI:  600_000_000,
	APB1: 24_000_000,
}

// PortIndex converts a D1 port letter (B through G) to the zero-based index
// used by the GPIO register block's Port/Eint arrays.
func PortIndex(port byte) int {
	if port < 'B' || port > 'G' {
		panic("d1: invalid port letter")
	}
	return int(port - 'B')
}

// Peripherals is the set of register blocks and pads owned by a running
// unikernel. It is constructed once via NewPeripherals; a second call
// panics, since Go has no move semantics to statically forbid two live
// handles to the same hardware the way the source HAL's ownership types do.
type Peripherals struct {
	Clocks Clocks

	// CPU is the XuanTie C906 RV64 core in machine mode.
	CPU *riscv.CPU

	CCU  *ccu.RegisterBlock
	GPIO *gpio.RegisterBlock

	UART0, UART1, UART2, UART3, UART4, UART5 *uart.UART
	TWI0, TWI1, TWI2, TWI3                   *twi.TWI
	SPI0, SPI1                               *spi.SPI
	SMHC0, SMHC1, SMHC2                      *smhc.SMHC
	DMA                                      *dma.DMA
	LEDC                                     *ledc.LEDC

	taken [NumPorts][32]bool
}

var peripheralsTaken bool

// NewPeripherals constructs the singleton Peripherals aggregate, wiring
// every register block at its fixed base address. It panics if called more
// than once.
func NewPeripherals() *Peripherals {
	if peripheralsTaken {
		panic("d1: peripherals already taken")
	}
	peripheralsTaken = true

	return &Peripherals{
		Clocks: DefaultClocks,

		CPU: &riscv.CPU{},

		CCU:  ccu.New(CCU_BASE),
		GPIO: gpio.New(GPIO_BASE, NumPorts),

		UART0: &uart.UART{Index: 0, Base: UART0_BASE},
		UART1: &uart.UART{Index: 1, Base: UART1_BASE},
		UART2: &uart.UART{Index: 2, Base: UART2_BASE},
		UART3: &uart.UART{Index: 3, Base: UART3_BASE},
		UART4: &uart.UART{Index: 4, Base: UART4_BASE},
		UART5: &uart.UART{Index: 5, Base: UART5_BASE},

		TWI0: &twi.TWI{Index: 0, Base: TWI0_BASE},
		TWI1: &twi.TWI{Index: 1, Base: TWI1_BASE},
		TWI2: &twi.TWI{Index: 2, Base: TWI2_BASE},
		TWI3: &twi.TWI{Index: 3, Base: TWI3_BASE},

		SPI0: &spi.SPI{Index: 0, Base: SPI0_BASE},
		SPI1: &spi.SPI{Index: 1, Base: SPI1_BASE},

		SMHC0: &smhc.SMHC{Index: 0, Base: SMHC0_BASE},
		SMHC1: &smhc.SMHC{Index: 1, Base: SMHC1_BASE},
		SMHC2: &smhc.SMHC{Index: 2, Base: SMHC2_BASE},

		DMA:  &dma.DMA{Base: DMA_BASE},
		LEDC: &ledc.LEDC{Base: LEDC_BASE},
	}
}

// Pad returns the Disabled-mode handle for pad (port, pin), where port is a
// letter in 'B'..'G'. It panics if that pad has already been taken, the
// runtime equivalent of the source HAL's compile-time single-ownership
// guarantee.
func (p *Peripherals) Pad(port byte, pin uint8) gpio.Pad[gpio.Disabled] {
	idx := PortIndex(port)
	if pin >= 32 {
		panic("d1: invalid pin number")
	}
	if p.taken[idx][pin] {
		panic("d1: pad already taken")
	}
	p.taken[idx][pin] = true

	return gpio.NewDisabledPad(p.GPIO, idx, pin)
}

// Model returns the SoC model name.
func Model() string {
	return "D1"
}
