// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mmio provides typed, value-semantic register cells layered on top
// of the volatile primitives in internal/reg.
//
// A cell is a single 32-bit register at a fixed address. Every access is one
// aligned volatile load or store, matching the discipline internal/reg
// already enforces for the untyped bit/field helpers used elsewhere in this
// tree; this package only adds the named-value-type surface that lets a
// register block express its fields as Go types instead of raw uint32s.
package mmio

import (
	"github.com/d1hal/tamago/internal/reg"
)

// Word is any register value newtype. Register value types are plain
// `type Foo uint32` declarations with getter/setter methods attached; the
// underlying representation is always exactly one 32-bit word so that the
// cell types below can round-trip through reg.Read/reg.Write without any
// conversion beyond the Go type system's own representation change.
type Word interface {
	~uint32
}

// RO is a read-only register cell.
type RO[T Word] struct {
	addr uint32
}

// NewRO binds a read-only cell to addr.
func NewRO[T Word](addr uint32) RO[T] {
	return RO[T]{addr: addr}
}

// Read performs a single volatile 32-bit load.
func (c RO[T]) Read() T {
	return T(reg.Read(c.addr))
}

// WO is a write-only register cell.
type WO[T Word] struct {
	addr uint32
}

// NewWO binds a write-only cell to addr.
func NewWO[T Word](addr uint32) WO[T] {
	return WO[T]{addr: addr}
}

// Write performs a single volatile 32-bit store.
func (c WO[T]) Write(v T) {
	reg.Write(c.addr, uint32(v))
}

// RW is a read-write register cell.
type RW[T Word] struct {
	addr uint32
}

// NewRW binds a read-write cell to addr.
func NewRW[T Word](addr uint32) RW[T] {
	return RW[T]{addr: addr}
}

// Read performs a single volatile 32-bit load.
func (c RW[T]) Read() T {
	return T(reg.Read(c.addr))
}

// Write performs a single volatile 32-bit store. Registers that latch
// write-only fields on every store (the datasheet calls these out
// explicitly) must be driven through Write starting from a zero or
// default value, never through Modify.
func (c RW[T]) Write(v T) {
	reg.Write(c.addr, uint32(v))
}

// Modify performs write(f(read())): a read-modify-write built from the two
// primitives above. It is not safe against concurrent modification of the
// same cell from another goroutine; callers touching shared peripheral
// state serialize through the driver that owns the register block.
func (c RW[T]) Modify(f func(T) T) {
	c.Write(f(c.Read()))
}

// Addr returns the cell's backing address, for tests and offset assertions.
func (c RW[T]) Addr() uint32 { return c.addr }

// Addr returns the cell's backing address, for tests and offset assertions.
func (c RO[T]) Addr() uint32 { return c.addr }

// Addr returns the cell's backing address, for tests and offset assertions.
func (c WO[T]) Addr() uint32 { return c.addr }
