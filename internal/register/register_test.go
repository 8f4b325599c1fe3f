// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package register

import "testing"

func TestFieldMask(t *testing.T) {
	cases := []struct {
		f    Field
		mask byte
	}{
		{ClkSel, 0x07},
		{Sleep, 0x40},
		{GyroFSSel, 0x18},
		{AccelAFSSel, 0x18},
		{I2CBypassEn, 0x02},
		{WhoAmIField, 0x7E},
		{DLPFCfg, 0x07},
		{Field{0, 7, 8}, 0xFF},
	}
	for _, c := range cases {
		if got := c.f.Mask(); got != c.mask {
			t.Fatalf("%+v mask=0x%02X want 0x%02X", c.f, got, c.mask)
		}
	}
}

func TestFieldValid(t *testing.T) {
	for bit := byte(0); bit <= 9; bit++ {
		for n := byte(0); n <= 9; n++ {
			f := Field{Bit: bit, Len: n}
			want := bit <= 7 && n >= 1 && n <= bit+1
			if f.Valid() != want {
				t.Fatalf("Field{Bit:%d Len:%d}.Valid()=%v want %v", bit, n, f.Valid(), want)
			}
		}
	}
}

func TestCatalogFieldsValid(t *testing.T) {
	for _, f := range []Field{DLPFCfg, ExtSyncSet, GyroFSSel, AccelAFSSel, I2CBypassEn, I2CMstEn,
		DeviceReset, Sleep, Cycle, TempDis, ClkSel, WhoAmIField, MagModeField, MagDRDY, MagHOFL, MagDERR, MagSelfTestEn} {
		if !f.Valid() {
			t.Fatalf("invalid catalog field %+v", f)
		}
	}
}

func TestSensitivity(t *testing.T) {
	accel := map[AccelRange]float64{Accel2G: 8192, Accel4G: 4096, Accel8G: 2048, Accel16G: 1024}
	for r, want := range accel {
		if got := r.Sensitivity(); got != want {
			t.Fatalf("%v sensitivity=%v want %v", r, got, want)
		}
	}
	gyro := map[GyroRange]float64{Gyro250: 131, Gyro500: 65.5, Gyro1000: 32.8, Gyro2000: 16.4}
	for r, want := range gyro {
		if got := r.Sensitivity(); got != want {
			t.Fatalf("%v sensitivity=%v want %v", r, got, want)
		}
	}
	if AccelRange(4).Sensitivity() != 0 || GyroRange(9).Sensitivity() != 0 {
		t.Fatalf("undefined ranges must report zero sensitivity")
	}
}

func TestStrings(t *testing.T) {
	if s := Accel16G.String(); s != "±16g" {
		t.Fatalf("Accel16G=%q", s)
	}
	if s := Gyro500.String(); s != "±500°/s" {
		t.Fatalf("Gyro500=%q", s)
	}
	if s := ClockPLLXGyro.String(); s != "PLL X gyro" {
		t.Fatalf("ClockPLLXGyro=%q", s)
	}
	if s := ClockSource(9).String(); s != "ClockSource(9)" {
		t.Fatalf("ClockSource(9)=%q", s)
	}
	if s := MagSingle.String(); s != "single" {
		t.Fatalf("MagSingle=%q", s)
	}
}

func TestRegisterMapsUnique(t *testing.T) {
	for name, m := range map[string][]Info{"primary": Primary(), "magnetometer": Magnetometer()} {
		seen := map[byte]string{}
		for _, r := range m {
			if prev, ok := seen[r.Address]; ok {
				t.Fatalf("%s: 0x%02X used by %s and %s", name, r.Address, prev, r.Name)
			}
			seen[r.Address] = r.Name
		}
	}
	if r, ok := Lookup(Primary(), WhoAmI); !ok || r.Name != "WHO_AM_I" {
		t.Fatalf("Lookup(WHO_AM_I)=%+v,%v", r, ok)
	}
	if _, ok := Lookup(Magnetometer(), 0x7F); ok {
		t.Fatalf("Lookup(0x7F) should miss")
	}
}
