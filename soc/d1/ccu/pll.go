// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ccu

import "runtime"

// Bit positions shared across every PLL control register.
const (
	pllEnable     = 31
	pllLdoEnable  = 30
	pllLockEnable = 29
	pllLock       = 28
	pllOutputGate = 27
)

// PllCpuControl is the CPU PLL control register.
type PllCpuControl uint32

const (
	cpuPllN = 0xff << 8
	cpuPllM = 0x3 << 0
)

// DefaultPllCpuControl matches the reset value documented for the CPU PLL.
const DefaultPllCpuControl PllCpuControl = 0x4a00_1000

func (r PllCpuControl) IsPllEnabled() bool    { return r&(1<<pllEnable) != 0 }
func (r PllCpuControl) EnablePll() PllCpuControl  { return r | 1<<pllEnable }
func (r PllCpuControl) DisablePll() PllCpuControl { return r &^ (1 << pllEnable) }

func (r PllCpuControl) IsLdoEnabled() bool        { return r&(1<<pllLdoEnable) != 0 }
func (r PllCpuControl) EnableLdo() PllCpuControl  { return r | 1<<pllLdoEnable }
func (r PllCpuControl) DisableLdo() PllCpuControl { return r &^ (1 << pllLdoEnable) }

func (r PllCpuControl) IsLockEnabled() bool { return r&(1<<pllLockEnable) != 0 }
func (r PllCpuControl) EnableLock() PllCpuControl {
	return r | 1<<pllLockEnable
}
func (r PllCpuControl) DisableLock() PllCpuControl {
	return r &^ (1 << pllLockEnable)
}

func (r PllCpuControl) IsLocked() bool { return r&(1<<pllLock) != 0 }

func (r PllCpuControl) IsOutputGated() bool { return r&(1<<pllOutputGate) == 0 }
func (r PllCpuControl) MaskOutput() PllCpuControl {
	return r &^ (1 << pllOutputGate)
}
func (r PllCpuControl) UnmaskOutput() PllCpuControl {
	return r | 1<<pllOutputGate
}

func (r PllCpuControl) FactorN() uint8 { return uint8((r & cpuPllN) >> 8) }
func (r PllCpuControl) SetFactorN(n uint8) PllCpuControl {
	return (r &^ cpuPllN) | PllCpuControl(n)<<8
}

func (r PllCpuControl) FactorM() uint8 { return uint8(r & cpuPllM) }
func (r PllCpuControl) SetFactorM(m uint8) PllCpuControl {
	return (r &^ cpuPllM) | PllCpuControl(m)
}

// PllDdrControl is the DDR PLL control register.
type PllDdrControl uint32

const (
	ddrPllN  = 0xff << 8
	ddrPllM1 = 1 << 1
	ddrPllM0 = 1 << 0
)

func (r PllDdrControl) IsPllEnabled() bool       { return r&(1<<pllEnable) != 0 }
func (r PllDdrControl) EnablePll() PllDdrControl { return r | 1<<pllEnable }
func (r PllDdrControl) DisablePll() PllDdrControl {
	return r &^ (1 << pllEnable)
}

func (r PllDdrControl) IsLocked() bool { return r&(1<<pllLock) != 0 }

func (r PllDdrControl) FactorN() uint8 { return uint8((r & ddrPllN) >> 8) }
func (r PllDdrControl) SetFactorN(n uint8) PllDdrControl {
	return (r &^ ddrPllN) | PllDdrControl(n)<<8
}

func (r PllDdrControl) FactorM() uint8 {
	m0 := (r & ddrPllM0)
	m1 := (r & ddrPllM1) >> 1
	return uint8(m1<<1 | m0)
}
func (r PllDdrControl) SetFactorM(m uint8) PllDdrControl {
	r = (r &^ (ddrPllM0 | ddrPllM1))
	if m&1 != 0 {
		r |= ddrPllM0
	}
	if m&2 != 0 {
		r |= ddrPllM1
	}
	return r
}

// PllPeri0Control is the Peripheral PLL 0 control register, the reference
// PllPeri1x/PllPeri2x/PllAudio1Div* clock sources derive from.
type PllPeri0Control uint32

const (
	peri0P1 = 0x7 << 20
	peri0P0 = 0x7 << 16
	peri0N  = 0xff << 8
	peri0M  = 1 << 1
)

func (r PllPeri0Control) IsPllEnabled() bool { return r&(1<<pllEnable) != 0 }
func (r PllPeri0Control) EnablePll() PllPeri0Control {
	return r | 1<<pllEnable
}
func (r PllPeri0Control) DisablePll() PllPeri0Control {
	return r &^ (1 << pllEnable)
}

func (r PllPeri0Control) IsLocked() bool { return r&(1<<pllLock) != 0 }

func (r PllPeri0Control) FactorP1() uint8 { return uint8((r & peri0P1) >> 20) }
func (r PllPeri0Control) SetFactorP1(p uint8) PllPeri0Control {
	return (r &^ peri0P1) | PllPeri0Control(p)<<20
}

func (r PllPeri0Control) FactorP0() uint8 { return uint8((r & peri0P0) >> 16) }
func (r PllPeri0Control) SetFactorP0(p uint8) PllPeri0Control {
	return (r &^ peri0P0) | PllPeri0Control(p)<<16
}

func (r PllPeri0Control) FactorN() uint8 { return uint8((r & peri0N) >> 8) }
func (r PllPeri0Control) SetFactorN(n uint8) PllPeri0Control {
	return (r &^ peri0N) | PllPeri0Control(n)<<8
}

func (r PllPeri0Control) FactorM() uint8 {
	if r&peri0M != 0 {
		return 1
	}
	return 0
}
func (r PllPeri0Control) SetFactorM(m uint8) PllPeri0Control {
	if m != 0 {
		return r | peri0M
	}
	return r &^ peri0M
}

// BringUpCpuPll carries out the four-step PLL startup sequence named in §4.4.3:
// set dividers while disabled, enable the LDO and wait, enable the PLL and
// spin for lock, then unmask the output. wait is the datasheet-specified
// settle delay, left to the caller since it is a runtime-layer concern, not
// a primitive one.
func (c *RegisterBlock) BringUpCpuPll(n, m uint8, wait func()) {
	c.PllCpuControl.Modify(func(v PllCpuControl) PllCpuControl {
		return v.DisablePll().SetFactorN(n).SetFactorM(m)
	})
	c.PllCpuControl.Modify(func(v PllCpuControl) PllCpuControl {
		return v.EnableLdo()
	})

	if wait != nil {
		wait()
	}

	c.PllCpuControl.Modify(func(v PllCpuControl) PllCpuControl {
		return v.EnableLock().EnablePll()
	})

	for !c.PllCpuControl.Read().IsLocked() {
		runtime.Gosched()
	}

	c.PllCpuControl.Modify(func(v PllCpuControl) PllCpuControl {
		return v.UnmaskOutput()
	})
}
