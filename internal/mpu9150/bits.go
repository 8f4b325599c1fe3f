// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"fmt"

	"github.com/relabs-tech/mpu9150/internal/bus"
	"github.com/relabs-tech/mpu9150/internal/register"
)

// readField reads the register holding f and returns the unsigned field value.
func readField(c bus.Conn, f register.Field) (byte, error) {
	if !f.Valid() {
		return 0, fmt.Errorf("%w: %+v", ErrInvalidField, f)
	}
	b, err := c.ReadRegU8(f.Reg)
	if err != nil {
		return 0, fmt.Errorf("mpu9150: read 0x%02X: %w", f.Reg, err)
	}
	return (b & f.Mask()) >> f.Shift(), nil
}

// writeField replaces f with value using read-modify-write. Bits of value
// beyond the field width are dropped. The caller serializes access.
func writeField(c bus.Conn, f register.Field, value byte) error {
	if !f.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidField, f)
	}
	b, err := c.ReadRegU8(f.Reg)
	if err != nil {
		return fmt.Errorf("mpu9150: read 0x%02X: %w", f.Reg, err)
	}
	mask := f.Mask()
	b = b&^mask | (value<<f.Shift())&mask
	if err := c.WriteBytes(f.Reg, []byte{b}); err != nil {
		return fmt.Errorf("mpu9150: write 0x%02X: %w", f.Reg, err)
	}
	return nil
}

func readFlag(c bus.Conn, reg, bit byte) (bool, error) {
	v, err := readField(c, register.Field{Reg: reg, Bit: bit, Len: 1})
	return v != 0, err
}

func writeFlag(c bus.Conn, reg, bit byte, on bool) error {
	var v byte
	if on {
		v = 1
	}
	return writeField(c, register.Field{Reg: reg, Bit: bit, Len: 1}, v)
}

// MakeSignedInteger combines a high and a low byte into a 16-bit two's
// complement value sign-extended to int.
func MakeSignedInteger(high, low byte) int {
	v := int(high)<<8 | int(low)
	if v&0x8000 != 0 {
		v |= ^0xFFFF
	}
	return v
}

func bigEndian(b []byte) int16    { return int16(MakeSignedInteger(b[0], b[1])) }
func littleEndian(b []byte) int16 { return int16(MakeSignedInteger(b[1], b[0])) }

func bigEndianTriple(b []byte) [3]int16 {
	return [3]int16{bigEndian(b[0:2]), bigEndian(b[2:4]), bigEndian(b[4:6])}
}

func littleEndianTriple(b []byte) [3]int16 {
	return [3]int16{littleEndian(b[0:2]), littleEndian(b[2:4]), littleEndian(b[4:6])}
}
