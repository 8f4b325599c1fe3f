// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"errors"
	"testing"

	"github.com/relabs-tech/mpu9150/internal/bus/bustest"
	"github.com/relabs-tech/mpu9150/internal/register"
)

func TestMakeSignedInteger_Examples(t *testing.T) {
	cases := []struct {
		h, l byte
		want int
	}{
		{0xFF, 0xFF, -1},
		{0x7F, 0xFF, 32767},
		{0x80, 0x00, -32768},
		{0x00, 0x01, 1},
		{0x00, 0x00, 0},
		{0xFF, 0x00, -256},
	}
	for _, c := range cases {
		if got := MakeSignedInteger(c.h, c.l); got != c.want {
			t.Fatalf("MakeSignedInteger(0x%02X, 0x%02X)=%d want %d", c.h, c.l, got, c.want)
		}
	}
}

func TestMakeSignedInteger_AllBytes(t *testing.T) {
	for h := 0; h < 256; h++ {
		for l := 0; l < 256; l++ {
			want := int(int16(uint16(h)<<8 | uint16(l)))
			if got := MakeSignedInteger(byte(h), byte(l)); got != want {
				t.Fatalf("MakeSignedInteger(0x%02X, 0x%02X)=%d want %d", h, l, got, want)
			}
		}
	}
}

func TestWriteField_RoundTripKeepsOtherBits(t *testing.T) {
	const reg = 0x20
	for bit := byte(0); bit <= 7; bit++ {
		for n := byte(1); n <= bit+1; n++ {
			f := register.Field{Reg: reg, Bit: bit, Len: n}
			for _, before := range []byte{0x00, 0xFF, 0xA5, 0x5A} {
				for v := 0; v < 1<<n; v++ {
					dev := bustest.NewDevice(map[byte]byte{reg: before})
					if err := writeField(dev, f, byte(v)); err != nil {
						t.Fatalf("writeField(%+v, %d): %v", f, v, err)
					}
					got, err := readField(dev, f)
					if err != nil {
						t.Fatalf("readField(%+v): %v", f, err)
					}
					if got != byte(v) {
						t.Fatalf("%+v before=0x%02X wrote %d read %d", f, before, v, got)
					}
					after := dev.Get(reg)
					if after&^f.Mask() != before&^f.Mask() {
						t.Fatalf("%+v before=0x%02X after=0x%02X: bits outside field changed", f, before, after)
					}
				}
			}
		}
	}
}

func TestWriteField_DropsBitsBeyondWidth(t *testing.T) {
	dev := bustest.NewDevice(map[byte]byte{register.GyroConfig: 0xE0})
	if err := writeField(dev, register.GyroFSSel, 0xFF); err != nil {
		t.Fatalf("writeField: %v", err)
	}
	if got := dev.Get(register.GyroConfig); got != 0xF8 {
		t.Fatalf("GYRO_CONFIG=0x%02X want 0xF8", got)
	}
}

func TestWriteField_IsReadModifyWrite(t *testing.T) {
	dev := bustest.NewDevice(nil)
	if err := writeField(dev, register.ClkSel, 1); err != nil {
		t.Fatalf("writeField: %v", err)
	}
	if len(dev.Ops) != 2 || dev.Ops[0].Write || !dev.Ops[1].Write {
		t.Fatalf("ops=%+v want read then write", dev.Ops)
	}
}

func TestInvalidField(t *testing.T) {
	dev := bustest.NewDevice(nil)
	for _, f := range []register.Field{{Reg: 1, Bit: 8, Len: 1}, {Reg: 1, Bit: 2, Len: 4}, {Reg: 1, Bit: 3, Len: 0}} {
		if _, err := readField(dev, f); !errors.Is(err, ErrInvalidField) {
			t.Fatalf("readField(%+v) err=%v want ErrInvalidField", f, err)
		}
		if err := writeField(dev, f, 0); !errors.Is(err, ErrInvalidField) {
			t.Fatalf("writeField(%+v) err=%v want ErrInvalidField", f, err)
		}
	}
	if dev.Transactions() != 0 {
		t.Fatalf("invalid fields must not touch the bus, got %d ops", dev.Transactions())
	}
}

func TestFlags(t *testing.T) {
	dev := bustest.NewDevice(map[byte]byte{register.PwrMgmt1: 0x41})
	on, err := readFlag(dev, register.PwrMgmt1, 6)
	if err != nil || !on {
		t.Fatalf("readFlag SLEEP=%v,%v want true", on, err)
	}
	if err := writeFlag(dev, register.PwrMgmt1, 6, false); err != nil {
		t.Fatalf("writeFlag: %v", err)
	}
	if got := dev.Get(register.PwrMgmt1); got != 0x01 {
		t.Fatalf("PWR_MGMT_1=0x%02X want 0x01", got)
	}
}

func TestReadField_PropagatesTransportError(t *testing.T) {
	errBus := errors.New("nack")
	dev := bustest.NewDevice(nil)
	dev.FailReads(register.PwrMgmt1, errBus)
	if _, err := readField(dev, register.ClkSel); !errors.Is(err, errBus) {
		t.Fatalf("err=%v want %v", err, errBus)
	}
	if err := writeField(dev, register.ClkSel, 1); !errors.Is(err, errBus) {
		t.Fatalf("err=%v want %v", err, errBus)
	}
	if dev.Writes() != 0 {
		t.Fatalf("failed read must not be followed by a write")
	}
}
