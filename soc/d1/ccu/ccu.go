// Allwinner D1/V821 Clock Control Unit driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ccu implements the Clock Control Unit for Allwinner D1/D1s/V821
// application processors: PLL bring-up, clock-source selection, N/M divider
// search, and the ordered reset/gate/configure protocol every other
// peripheral driver in this tree depends on.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=riscv64` as
// supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package ccu

import (
	"github.com/d1hal/tamago/internal/mmio"
)

// Register offsets, reproduced from the Allwinner D1 user manual CCU
// chapter (ccu.rs RegisterBlock in the HAL this driver is modeled on).
const (
	offPllCpuControl  = 0x000
	offPllDdrControl  = 0x010
	offPllPeri0Ctrl   = 0x020
	offCpuAxiConfig   = 0x500
	offMbusClock      = 0x540
	offDramClock      = 0x800
	offDramBgr        = 0x80c
	offSmhcClk0       = 0x830
	offSmhcBgr        = 0x84c
	offUartBgr        = 0x90c
	offTwiBgr         = 0x91c
	offSpiClk0        = 0x940
	offSpiBgr         = 0x96c
	offDmaBgr         = 0x70c
)

// RegisterBlock is the CCU memory-mapped register map, base-relative.
type RegisterBlock struct {
	PllCpuControl mmio.RW[PllCpuControl]
	PllDdrControl mmio.RW[PllDdrControl]
	PllPeri0Ctrl  mmio.RW[PllPeri0Control]
	CpuAxiConfig  mmio.RW[CpuAxiConfig]
	MbusClock     mmio.RW[MbusClock]
	DramClock     mmio.RW[DramClock]
	DramBgr       mmio.RW[DramBusGating]
	SmhcClk       [3]mmio.RW[SmhcClock]
	SmhcBgr       mmio.RW[SmhcBusGating]
	UartBgr       mmio.RW[UartBusGating]
	TwiBgr        mmio.RW[TwiBusGating]
	SpiClk        [2]mmio.RW[SpiClock]
	SpiBgr        mmio.RW[SpiBusGating]
	DmaBgr        mmio.RW[DmaBusGating]
}

// New binds a RegisterBlock to the CCU instance located at base.
func New(base uint32) *RegisterBlock {
	r := &RegisterBlock{
		PllCpuControl: mmio.NewRW[PllCpuControl](base + offPllCpuControl),
		PllDdrControl: mmio.NewRW[PllDdrControl](base + offPllDdrControl),
		PllPeri0Ctrl:  mmio.NewRW[PllPeri0Control](base + offPllPeri0Ctrl),
		CpuAxiConfig:  mmio.NewRW[CpuAxiConfig](base + offCpuAxiConfig),
		MbusClock:     mmio.NewRW[MbusClock](base + offMbusClock),
		DramClock:     mmio.NewRW[DramClock](base + offDramClock),
		DramBgr:       mmio.NewRW[DramBusGating](base + offDramBgr),
		SmhcBgr:       mmio.NewRW[SmhcBusGating](base + offSmhcBgr),
		UartBgr:       mmio.NewRW[UartBusGating](base + offUartBgr),
		TwiBgr:        mmio.NewRW[TwiBusGating](base + offTwiBgr),
		SpiBgr:        mmio.NewRW[SpiBusGating](base + offSpiBgr),
		DmaBgr:        mmio.NewRW[DmaBusGating](base + offDmaBgr),
	}

	for i := range r.SmhcClk {
		r.SmhcClk[i] = mmio.NewRW[SmhcClock](base + offSmhcClk0 + uint32(i)*4)
	}

	for i := range r.SpiClk {
		r.SpiClk[i] = mmio.NewRW[SpiClock](base + offSpiClk0 + uint32(i)*4)
	}

	return r
}

// Clocks holds the realized frequencies of the stable reference domains a
// peripheral driver needs to compute its own divider against.
type Clocks struct {
	// PSI clock frequency in Hz.
	PSI uint32
	// APB1 clock frequency in Hz.
	APB1 uint32
}
