// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bus provides register-oriented access to I2C endpoints.
//
// Two backends are available: "periph" uses periph.io host drivers and
// "dev" talks to /dev/i2c-N directly with the I2C_RDWR ioctl.
package bus

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Conn is a register transport to a single I2C endpoint.
type Conn interface {
	// ReadBytes reads n sequential bytes starting at reg in one transaction.
	ReadBytes(reg byte, n int) ([]byte, error)
	ReadRegU8(reg byte) (byte, error)
	WriteBytes(reg byte, data []byte) error
}

// Bus is an opened I2C bus from which endpoint transports are derived.
type Bus interface {
	Conn(addr uint16) (Conn, error)
	Close() error
}

const (
	BackendPeriph = "periph"
	BackendDev    = "dev"
)

// Open opens bus name with the given backend. For "periph" name is a
// periph bus name or number ("1", "I2C1"); for "dev" it is a device node
// path or a bus number mapped to /dev/i2c-N. A zero speed keeps the bus
// default.
func Open(backend, name string, speed physic.Frequency) (Bus, error) {
	switch backend {
	case BackendPeriph, "":
		return OpenPeriph(name, speed)
	case BackendDev:
		return OpenDev(devPath(name))
	default:
		return nil, fmt.Errorf("bus: unknown backend %q", backend)
	}
}

func devPath(name string) string {
	if name == "" {
		return "/dev/i2c-1"
	}
	if name[0] == '/' {
		return name
	}
	return "/dev/i2c-" + name
}

func checkAddr(addr uint16) error {
	if addr == 0 || addr > 0x7F {
		return fmt.Errorf("bus: invalid i2c addr 0x%X", addr)
	}
	return nil
}
