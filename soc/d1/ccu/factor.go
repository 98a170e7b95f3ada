// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ccu

// PeriFactorN is the N divider factor used by peripheral clock registers
// (UART, SPI, SMHC, DRAM): one of {1, 2, 4, 8}.
type PeriFactorN uint8

const (
	N1 PeriFactorN = 0
	N2 PeriFactorN = 1
	N4 PeriFactorN = 2
	N8 PeriFactorN = 3
)

// Divisor returns the N divider this factor encodes.
func (n PeriFactorN) Divisor() uint32 {
	switch n {
	case N1:
		return 1
	case N2:
		return 2
	case N4:
		return 4
	case N8:
		return 8
	default:
		panic("ccu: impossible PeriFactorN encoding")
	}
}

// AxiFactorN is the N divider factor used by the CPU AXI configuration
// register: one of {2, 3, 4}.
type AxiFactorN uint8

const (
	AxiN2 AxiFactorN = 1
	AxiN3 AxiFactorN = 2
	AxiN4 AxiFactorN = 3
)

// FactorP is the P divider factor used by the CPU AXI configuration
// register: one of {1, 2, 4}.
type FactorP uint8

const (
	P1 FactorP = 0
	P2 FactorP = 1
	P4 FactorP = 2
)

var periFactorNs = [4]PeriFactorN{N1, N2, N4, N8}

// BestFactors finds the (N, M) pair minimizing |src/N/(M+1) - target| for
// N in {1,2,4,8} and M in 0..=63, breaking ties toward the smaller N. It is
// pure and side-effect free: the only place in the CCU model that does not
// touch a register.
//
// The search range for M is wider than any single register's M field (SPI's
// factor_m is 4 bits, DRAM's is 2): this function models the clock-domain
// math independent of where its result is eventually stored, the same way
// the divider search spec calls out is "const-eligible" independent of any
// one register's bit width.
func BestFactors(src, target uint32) (PeriFactorN, uint8) {
	var (
		bestN    PeriFactorN
		bestM    uint8
		bestDiff int64 = -1
	)

	for _, n := range periFactorNs {
		div := n.Divisor()

		for m := 0; m <= 63; m++ {
			got := src / div / uint32(m+1)

			diff := int64(got) - int64(target)
			if diff < 0 {
				diff = -diff
			}

			if bestDiff == -1 || diff < bestDiff {
				bestDiff = diff
				bestN = n
				bestM = uint8(m)
			}
		}
	}

	return bestN, bestM
}
