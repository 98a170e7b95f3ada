// Allwinner D1/V821 GPIO controller driver
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package gpio implements the Allwinner D1/V821 General Purpose
// Input/Output controller: per-pad mode configuration, data read/write,
// drive strength, pull direction and external interrupt configuration.
//
// Pad mode is tracked at the type level through Pad[M Mode]: an operation
// only valid in one mode (IsHigh on an input, SetHigh on an output,
// Listen on an external-interrupt pad) is a free function over the
// concrete instantiation rather than a method, since Go forbids methods
// restricted to one type argument of a generic receiver.
package gpio

import (
	"github.com/d1hal/tamago/internal/mmio"
)

const (
	offPort   = 0x030
	offEint   = 0x220
	offPioPow = 0x340

	portStride = 0x30
	eintStride = 0x20
)

// Port is one port's register group (cfg/dat/drv/pull).
type Port struct {
	Cfg  [4]mmio.RW[uint32]
	Dat  mmio.RW[uint32]
	Drv  [4]mmio.RW[uint32]
	Pull [2]mmio.RW[uint32]
}

// Eint is one port's external-interrupt register group.
type Eint struct {
	Cfg    [4]mmio.RW[uint32]
	Ctl    mmio.RW[uint32]
	Status mmio.RW[uint32]
	Deb    mmio.RW[uint32]
}

// PioPow is the input/output power register group.
type PioPow struct {
	ModSel    mmio.RW[uint32]
	MsCtl     mmio.RW[uint32]
	Val       mmio.RW[uint32]
	VolSelCtl mmio.RW[uint32]
}

// RegisterBlock is the GPIO memory-mapped register map, base-relative. It
// holds nPorts port/eint groups, sized to the caller's variant: D1 wires 6
// (ports B..G), V821 wires 3 (ports A, C, D).
type RegisterBlock struct {
	base   uint32
	Port   []Port
	Eint   []Eint
	PioPow PioPow
}

// New binds a RegisterBlock with nPorts port/eint groups to the GPIO
// instance located at base.
func New(base uint32, nPorts int) *RegisterBlock {
	r := &RegisterBlock{
		base: base,
		Port: make([]Port, nPorts),
		Eint: make([]Eint, nPorts),
	}

	for i := 0; i < nPorts; i++ {
		portBase := base + offPort + uint32(i)*portStride
		for j := range r.Port[i].Cfg {
			r.Port[i].Cfg[j] = mmio.NewRW[uint32](portBase + uint32(j)*4)
		}
		r.Port[i].Dat = mmio.NewRW[uint32](portBase + 0x10)
		for j := range r.Port[i].Drv {
			r.Port[i].Drv[j] = mmio.NewRW[uint32](portBase + 0x14 + uint32(j)*4)
		}
		for j := range r.Port[i].Pull {
			r.Port[i].Pull[j] = mmio.NewRW[uint32](portBase + 0x24 + uint32(j)*4)
		}

		eintBase := base + offEint + uint32(i)*eintStride
		for j := range r.Eint[i].Cfg {
			r.Eint[i].Cfg[j] = mmio.NewRW[uint32](eintBase + uint32(j)*4)
		}
		r.Eint[i].Ctl = mmio.NewRW[uint32](eintBase + 0x10)
		r.Eint[i].Status = mmio.NewRW[uint32](eintBase + 0x14)
		r.Eint[i].Deb = mmio.NewRW[uint32](eintBase + 0x18)
	}

	r.PioPow = PioPow{
		ModSel:    mmio.NewRW[uint32](base + offPioPow + 0x00),
		MsCtl:     mmio.NewRW[uint32](base + offPioPow + 0x04),
		Val:       mmio.NewRW[uint32](base + offPioPow + 0x08),
		VolSelCtl: mmio.NewRW[uint32](base + offPioPow + 0x10),
	}

	return r
}

// Event is an external interrupt trigger condition.
type Event uint8

const (
	PositiveEdge Event = 0
	NegativeEdge Event = 1
	HighLevel    Event = 2
	LowLevel     Event = 3
	BothEdges    Event = 4
)

func cfgIndex(n uint8) (reg int, field uint8) {
	return int(n >> 3), (n & 0b111) << 2
}
