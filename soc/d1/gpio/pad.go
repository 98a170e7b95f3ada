// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gpio

// Mode is a pad operating mode: Input, Output, a numbered Function, an
// external-interrupt pad (Eint), or Disabled. Pad[M Mode] carries its mode
// at the type level; transition functions consume one Pad and produce
// another, the same ownership-transfer shape the mode type-state follows
// upstream.
type Mode interface {
	modeValue() uint8
}

type Input struct{}

func (Input) modeValue() uint8 { return 0 }

type Output struct{}

func (Output) modeValue() uint8 { return 1 }

// Function is an alternate function pad. F should be in 2..=8; it is a
// runtime field rather than a type parameter since Go has no const
// generics to pin it at the type level the way the crate this is modeled
// on does.
type Function struct{ F uint8 }

func (f Function) modeValue() uint8 { return f.F }

type EintMode struct{}

func (EintMode) modeValue() uint8 { return 14 }

type Disabled struct{}

func (Disabled) modeValue() uint8 { return 15 }

// Pad is a single GPIO pad bound to portIdx/pin on gpio, restricted by the
// compiler to the operations valid in mode M.
type Pad[M Mode] struct {
	gpio    *RegisterBlock
	portIdx int
	pin     uint8
}

// NewDisabledPad constructs a pad in the Disabled mode, the safe starting
// point every board's pin table builds from.
func NewDisabledPad(gpio *RegisterBlock, portIdx int, pin uint8) Pad[Disabled] {
	return Pad[Disabled]{gpio: gpio, portIdx: portIdx, pin: pin}
}

func writeMode(gpio *RegisterBlock, portIdx int, pin uint8, value uint8) {
	reg, field := cfgIndex(pin)
	mask := ^(uint32(0xf) << field)
	v := uint32(value) << field

	gpio.Port[portIdx].Cfg[reg].Modify(func(cfg uint32) uint32 {
		return (cfg & mask) | v
	})
}

func transition[M, N Mode](p Pad[M], next N) Pad[N] {
	writeMode(p.gpio, p.portIdx, p.pin, next.modeValue())
	return Pad[N]{gpio: p.gpio, portIdx: p.portIdx, pin: p.pin}
}

// IntoInput configures the pad to operate as an input pad.
func IntoInput[M Mode](p Pad[M]) Pad[Input] { return transition[M, Input](p, Input{}) }

// IntoOutput configures the pad to operate as an output pad.
func IntoOutput[M Mode](p Pad[M]) Pad[Output] { return transition[M, Output](p, Output{}) }

// IntoFunction configures the pad to operate as alternate function f.
func IntoFunction[M Mode](p Pad[M], f uint8) Pad[Function] {
	return transition[M, Function](p, Function{F: f})
}

// IntoEint configures the pad to operate as an external interrupt pad.
func IntoEint[M Mode](p Pad[M]) Pad[EintMode] { return transition[M, EintMode](p, EintMode{}) }

// IntoDisabled configures the pad to operate as a disabled pad.
func IntoDisabled[M Mode](p Pad[M]) Pad[Disabled] { return transition[M, Disabled](p, Disabled{}) }

// WithOutput temporarily reconfigures an input pad as an output, runs f,
// then restores the input mode. The restore is deferred so it still runs if
// f panics.
func WithOutput(p *Pad[Input], f func(*Pad[Output])) {
	out := transition[Input, Output](*p, Output{})
	defer writeMode(p.gpio, p.portIdx, p.pin, Input{}.modeValue())
	f(&out)
}

// WithInput temporarily reconfigures an output pad as an input, runs f,
// then restores the output mode. The restore is deferred so it still runs if
// f panics.
func WithInput(p *Pad[Output], f func(*Pad[Input])) {
	in := transition[Output, Input](*p, Input{})
	defer writeMode(p.gpio, p.portIdx, p.pin, Output{}.modeValue())
	f(&in)
}

// IsHigh reports whether an input pad currently reads high.
func IsHigh(p Pad[Input]) bool {
	return p.gpio.Port[p.portIdx].Dat.Read()&(1<<p.pin) != 0
}

// IsLow reports whether an input pad currently reads low.
func IsLow(p Pad[Input]) bool { return !IsHigh(p) }

// SetHigh drives an output pad high.
func SetHigh(p Pad[Output]) {
	p.gpio.Port[p.portIdx].Dat.Modify(func(v uint32) uint32 { return v | (1 << p.pin) })
}

// SetLow drives an output pad low.
func SetLow(p Pad[Output]) {
	p.gpio.Port[p.portIdx].Dat.Modify(func(v uint32) uint32 { return v &^ (1 << p.pin) })
}

// IsSetHigh reports whether an output pad is currently driven high.
func IsSetHigh(p Pad[Output]) bool {
	return p.gpio.Port[p.portIdx].Dat.Read()&(1<<p.pin) != 0
}

// IsSetLow reports whether an output pad is currently driven low.
func IsSetLow(p Pad[Output]) bool { return !IsSetHigh(p) }

// Listen configures the trigger condition an external-interrupt pad reacts
// to.
func Listen(p Pad[EintMode], event Event) {
	reg, field := cfgIndex(p.pin)
	mask := ^(uint32(0xf) << field)
	v := uint32(event) << field

	p.gpio.Eint[p.portIdx].Cfg[reg].Modify(func(cfg uint32) uint32 {
		return (cfg & mask) | v
	})
}

// EnableInterrupt unmasks an external-interrupt pad's interrupt line.
func EnableInterrupt(p Pad[EintMode]) {
	p.gpio.Eint[p.portIdx].Ctl.Modify(func(v uint32) uint32 { return v | (1 << p.pin) })
}

// DisableInterrupt masks an external-interrupt pad's interrupt line.
func DisableInterrupt(p Pad[EintMode]) {
	p.gpio.Eint[p.portIdx].Ctl.Modify(func(v uint32) uint32 { return v &^ (1 << p.pin) })
}

// ClearInterruptPending clears a pending interrupt on an external-interrupt
// pad. The status register is write-one-to-clear.
func ClearInterruptPending(p Pad[EintMode]) {
	p.gpio.Eint[p.portIdx].Status.Write(1 << p.pin)
}

// CheckInterrupt reports whether an external-interrupt pad has a pending
// interrupt.
func CheckInterrupt(p Pad[EintMode]) bool {
	return p.gpio.Eint[p.portIdx].Status.Read()&(1<<p.pin) != 0
}
