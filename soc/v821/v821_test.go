// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package v821

import (
	"testing"

	"github.com/d1hal/tamago/soc/d1/gpio"
)

func TestPortIndex(t *testing.T) {
	cases := map[byte]int{'A': 0, 'C': 2, 'D': 3}
	for port, want := range cases {
		if got := PortIndex(port); got != want {
			t.Errorf("PortIndex(%c) = %d, want %d", port, got, want)
		}
	}
}

func TestPortIndexRejectsPortB(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("PortIndex should panic for port B, which this chip doesn't bond out")
		}
	}()
	PortIndex('B')
}

func TestPeripheralsSecondPadTakeFails(t *testing.T) {
	p := &Peripherals{GPIO: gpio.New(GPIO_BASE, NumPorts)}

	_ = p.Pad('A', 0)

	defer func() {
		if recover() == nil {
			t.Error("taking the same pad twice should panic")
		}
	}()
	p.Pad('A', 0)
}

func TestPeripheralsPadR(t *testing.T) {
	p := &Peripherals{GPIOR: gpio.New(GPIO_R_BASE, NumPortsR)}

	_ = p.PadR(5)

	defer func() {
		if recover() == nil {
			t.Error("taking the same PL pad twice should panic")
		}
	}()
	p.PadR(5)
}
