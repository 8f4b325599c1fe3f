// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

type periphBus struct {
	bus i2c.BusCloser
}

// OpenPeriph initializes the periph host drivers and opens an I2C bus by
// name. An empty name selects the first available bus.
func OpenPeriph(name string, speed physic.Frequency) (Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("bus: periph host init: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("bus: i2c open %q: %w", name, err)
	}
	if speed > 0 {
		if err := b.SetSpeed(speed); err != nil {
			b.Close()
			return nil, fmt.Errorf("bus: set speed %s: %w", speed, err)
		}
	}
	return &periphBus{bus: b}, nil
}

func (p *periphBus) Conn(addr uint16) (Conn, error) {
	if err := checkAddr(addr); err != nil {
		return nil, err
	}
	return &periphConn{dev: i2c.Dev{Bus: p.bus, Addr: addr}}, nil
}

func (p *periphBus) Close() error {
	return p.bus.Close()
}

type periphConn struct {
	dev i2c.Dev
}

func (c *periphConn) ReadBytes(reg byte, n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.New("bus: read of zero bytes")
	}
	buf := make([]byte, n)
	if err := c.dev.Tx([]byte{reg}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *periphConn) ReadRegU8(reg byte) (byte, error) {
	b, err := c.ReadBytes(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *periphConn) WriteBytes(reg byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	return c.dev.Tx(w, nil)
}
