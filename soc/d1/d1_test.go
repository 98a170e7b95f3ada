// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package d1

import (
	"testing"

	"github.com/d1hal/tamago/soc/d1/gpio"
)

func TestPortIndex(t *testing.T) {
	cases := map[byte]int{'B': 0, 'C': 1, 'G': 5}
	for port, want := range cases {
		if got := PortIndex(port); got != want {
			t.Errorf("PortIndex(%c) = %d, want %d", port, got, want)
		}
	}
}

func TestPortIndexPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("PortIndex should panic for a letter outside B..G")
		}
	}()
	PortIndex('A')
}

func TestPeripheralsSecondPadTakeFails(t *testing.T) {
	p := &Peripherals{GPIO: gpio.New(GPIO_BASE, NumPorts)}

	_ = p.Pad('B', 0)

	defer func() {
		if recover() == nil {
			t.Error("taking the same pad twice should panic")
		}
	}()
	p.Pad('B', 0)
}
