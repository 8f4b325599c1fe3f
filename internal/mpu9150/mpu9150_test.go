// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"errors"
	"testing"
	"time"

	"github.com/relabs-tech/mpu9150/internal/bus/bustest"
	"github.com/relabs-tech/mpu9150/internal/register"
)

type rig struct {
	bus *bustest.Bus
	imu *bustest.Device
	mag *bustest.Device
	dev *Dev
}

func newRig(t *testing.T, opts *Opts) *rig {
	t.Helper()
	oldSleep := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = oldSleep })

	b := bustest.NewBus()
	r := &rig{
		bus: b,
		imu: b.Attach(register.AddrLow, bustest.NewDevice(map[byte]byte{
			register.WhoAmI:   0x68,
			register.PwrMgmt1: 0x40, // power-on: asleep, internal clock
		})),
		mag: b.Attach(register.MagAddr, bustest.NewDevice(map[byte]byte{
			register.MagWIA: register.MagWIAValue,
			register.MagST1: register.MagDataReady,
		})),
	}
	d, err := New(b, register.AddrLow, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.dev = d
	return r
}

func TestNew_NoBusTraffic(t *testing.T) {
	r := newRig(t, nil)
	if r.imu.Transactions() != 0 || r.mag.Transactions() != 0 {
		t.Fatalf("New must not talk to the device")
	}
	if _, err := New(r.bus, register.AddrHigh, nil); err == nil {
		t.Fatalf("expected error for missing device at 0x69")
	}
	if _, err := New(nil, register.AddrLow, nil); err == nil {
		t.Fatalf("expected error for nil bus")
	}
}

func TestInitialize_Scenario(t *testing.T) {
	r := newRig(t, nil)
	if err := r.dev.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ar, err := r.dev.GetFullScaleAccelRange()
	if err != nil || ar != register.Accel2G {
		t.Fatalf("accel range=%v,%v want 0", ar, err)
	}
	gr, err := r.dev.GetFullScaleGyroRange()
	if err != nil || gr != register.Gyro250 {
		t.Fatalf("gyro range=%v,%v want 0", gr, err)
	}
	cs, err := r.dev.GetClockSource()
	if err != nil || cs != register.ClockPLLXGyro {
		t.Fatalf("clock source=%v,%v want 1", cs, err)
	}
	sl, err := r.dev.GetSleepEnabled()
	if err != nil || sl {
		t.Fatalf("sleep=%v,%v want false", sl, err)
	}
	by, err := r.dev.GetI2CBypassEnabled()
	if err != nil || !by {
		t.Fatalf("bypass=%v,%v want true", by, err)
	}
	if !r.dev.MagAvailable() {
		t.Fatalf("magnetometer should be available")
	}
	if got := r.imu.Get(register.PwrMgmt1); got != 0x01 {
		t.Fatalf("PWR_MGMT_1=0x%02X want 0x01", got)
	}
}

func TestInitialize_KeepsUnrelatedBits(t *testing.T) {
	r := newRig(t, nil)
	r.imu.Set(register.PwrMgmt1, 0x48)    // SLEEP | TEMP_DIS
	r.imu.Set(register.GyroConfig, 0xF8)  // self-test bits + FS_SEL=3
	r.imu.Set(register.AccelConfig, 0x18) // AFS_SEL=3
	r.imu.Set(register.IntPinCfg, 0x80)
	if err := r.dev.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	want := map[byte]byte{
		register.PwrMgmt1:    0x09,
		register.GyroConfig:  0xE0,
		register.AccelConfig: 0x00,
		register.IntPinCfg:   0x82,
	}
	for reg, v := range want {
		if got := r.imu.Get(reg); got != v {
			t.Fatalf("reg 0x%02X=0x%02X want 0x%02X", reg, got, v)
		}
	}
}

func TestInitialize_PropagatesTransportError(t *testing.T) {
	r := newRig(t, nil)
	errBus := errors.New("i2c: nack")
	r.imu.FailReads(register.GyroConfig, errBus)
	if err := r.dev.Initialize(); !errors.Is(err, errBus) {
		t.Fatalf("err=%v want %v", err, errBus)
	}
}

func TestTestConnection(t *testing.T) {
	r := newRig(t, nil)
	cases := []struct {
		reg  byte
		want bool
	}{
		{0x68, true},
		{0x69, true}, // bit 0 is outside the identity field
		{0xE8, true}, // so is bit 7
		{0x70, false},
		{0x00, false},
		{0x34, false}, // the value is the field, not the raw byte
	}
	for _, c := range cases {
		r.imu.Set(register.WhoAmI, c.reg)
		ok, err := r.dev.TestConnection()
		if err != nil {
			t.Fatalf("WHO_AM_I=0x%02X: %v", c.reg, err)
		}
		if ok != c.want {
			t.Fatalf("WHO_AM_I=0x%02X ok=%v want %v", c.reg, ok, c.want)
		}
	}
}

func TestTestConnection_TransportError(t *testing.T) {
	r := newRig(t, nil)
	errBus := errors.New("i2c: nack")
	r.imu.FailReads(register.WhoAmI, errBus)
	ok, err := r.dev.TestConnection()
	if ok || !errors.Is(err, errBus) {
		t.Fatalf("ok=%v err=%v want false,%v", ok, err, errBus)
	}
}

func TestDeviceID(t *testing.T) {
	r := newRig(t, nil)
	id, err := r.dev.GetDeviceID()
	if err != nil || id != register.WhoAmIValue {
		t.Fatalf("id=0x%02X,%v", id, err)
	}
	if err := r.dev.SetDeviceID(0x01); err != nil {
		t.Fatalf("SetDeviceID: %v", err)
	}
	if got := r.imu.Get(register.WhoAmI); got != 0x02 {
		t.Fatalf("WHO_AM_I=0x%02X want 0x02", got)
	}
}

func TestSettersDoNotValidate(t *testing.T) {
	r := newRig(t, nil)
	if err := r.dev.SetClockSource(register.ClockReserved); err != nil {
		t.Fatalf("SetClockSource: %v", err)
	}
	cs, _ := r.dev.GetClockSource()
	if cs != register.ClockReserved {
		t.Fatalf("clock=%v want reserved", cs)
	}
	if err := r.dev.SetFullScaleGyroRange(register.Gyro2000); err != nil {
		t.Fatalf("SetFullScaleGyroRange: %v", err)
	}
	gr, _ := r.dev.GetFullScaleGyroRange()
	if gr != register.Gyro2000 {
		t.Fatalf("gyro=%v", gr)
	}
	if err := r.dev.SetFullScaleAccelRange(register.Accel8G); err != nil {
		t.Fatalf("SetFullScaleAccelRange: %v", err)
	}
	if got := r.imu.Get(register.AccelConfig); got != 0x10 {
		t.Fatalf("ACCEL_CONFIG=0x%02X want 0x10", got)
	}
}

func TestGettersReadTheBus(t *testing.T) {
	r := newRig(t, nil)
	if err := r.dev.SetFullScaleAccelRange(register.Accel4G); err != nil {
		t.Fatalf("SetFullScaleAccelRange: %v", err)
	}
	r.imu.Set(register.AccelConfig, 0x18) // changed behind the driver's back
	ar, err := r.dev.GetFullScaleAccelRange()
	if err != nil || ar != register.Accel16G {
		t.Fatalf("accel range=%v,%v want ±16g", ar, err)
	}
}

func TestGetMotion6_SingleTransaction(t *testing.T) {
	r := newRig(t, nil)
	r.imu.Set(register.AccelXoutH,
		0x00, 0x01, // ax
		0xFF, 0xFF, // ay
		0x40, 0x00, // az
		0x12, 0x34, // temp, skipped
		0x80, 0x00, // gx
		0x7F, 0xFF, // gy
		0xFF, 0x38, // gz
	)
	r.imu.Reset()

	m, err := r.dev.GetMotion6()
	if err != nil {
		t.Fatalf("GetMotion6: %v", err)
	}
	want := [6]int16{1, -1, 16384, -32768, 32767, -200}
	if m != want {
		t.Fatalf("motion6=%v want %v", m, want)
	}
	if r.imu.Transactions() != 1 {
		t.Fatalf("transactions=%d want 1", r.imu.Transactions())
	}
	if op := r.imu.Ops[0]; op.Write || op.Reg != register.AccelXoutH || op.N != register.Motion6Bytes {
		t.Fatalf("op=%+v want 14-byte read at 0x3B", op)
	}
}

func TestAccelGyroAreBigEndian(t *testing.T) {
	r := newRig(t, nil)
	raw := []byte{0x01, 0x02, 0xFF, 0xFE, 0x80, 0x00}
	r.imu.Set(register.AccelXoutH, raw...)
	r.imu.Set(register.GyroXoutH, raw...)
	want := [3]int16{258, -2, -32768}

	a, err := r.dev.GetAcceleration()
	if err != nil || a != want {
		t.Fatalf("accel=%v,%v want %v", a, err, want)
	}
	g, err := r.dev.GetRotation()
	if err != nil || g != want {
		t.Fatalf("gyro=%v,%v want %v", g, err, want)
	}
}

func TestPerAxisReads(t *testing.T) {
	r := newRig(t, nil)
	r.imu.Set(register.AccelXoutH, 0x00, 0x0A, 0x00, 0x0B, 0x00, 0x0C)
	r.imu.Set(register.GyroXoutH, 0xFF, 0xF6, 0xFF, 0xF5, 0xFF, 0xF4)
	r.imu.Reset()

	checks := []struct {
		name string
		fn   func() (int16, error)
		reg  byte
		want int16
	}{
		{"ax", r.dev.GetAccelerationX, register.AccelXoutH, 10},
		{"ay", r.dev.GetAccelerationY, register.AccelYoutH, 11},
		{"az", r.dev.GetAccelerationZ, register.AccelZoutH, 12},
		{"gx", r.dev.GetRotationX, register.GyroXoutH, -10},
		{"gy", r.dev.GetRotationY, register.GyroYoutH, -11},
		{"gz", r.dev.GetRotationZ, register.GyroZoutH, -12},
	}
	for _, c := range checks {
		v, err := c.fn()
		if err != nil || v != c.want {
			t.Fatalf("%s=%d,%v want %d", c.name, v, err, c.want)
		}
		if r.imu.Reads(c.reg) != 1 {
			t.Fatalf("%s: expected one read at 0x%02X", c.name, c.reg)
		}
		last := r.imu.Ops[len(r.imu.Ops)-1]
		if last.N != register.AxisBytes {
			t.Fatalf("%s: read %d bytes want 2", c.name, last.N)
		}
	}
}

func TestTemperature(t *testing.T) {
	r := newRig(t, nil)
	r.imu.Set(register.TempOutH, 0x01, 0x54) // 340
	raw, err := r.dev.GetTemperature()
	if err != nil || raw != 340 {
		t.Fatalf("temp=%d,%v want 340", raw, err)
	}
	if c := Celsius(raw); c != 36 {
		t.Fatalf("Celsius(340)=%v want 36", c)
	}
	if c := Celsius(0); c != 35 {
		t.Fatalf("Celsius(0)=%v want 35", c)
	}
}

func TestRateAndDLPF(t *testing.T) {
	r := newRig(t, nil)
	r.imu.Set(register.Config, 0x38)
	if err := r.dev.SetRate(9); err != nil {
		t.Fatalf("SetRate: %v", err)
	}
	if v, err := r.dev.GetRate(); err != nil || v != 9 {
		t.Fatalf("rate=%d,%v", v, err)
	}
	if err := r.dev.SetDLPFMode(3); err != nil {
		t.Fatalf("SetDLPFMode: %v", err)
	}
	if v, err := r.dev.GetDLPFMode(); err != nil || v != 3 {
		t.Fatalf("dlpf=%d,%v", v, err)
	}
	if got := r.imu.Get(register.Config); got != 0x3B {
		t.Fatalf("CONFIG=0x%02X want 0x3B", got)
	}
}

func TestReset(t *testing.T) {
	r := newRig(t, nil)
	var slept time.Duration
	sleep = func(d time.Duration) { slept += d }
	if err := r.dev.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := r.imu.Get(register.PwrMgmt1); got != 0xC0 {
		t.Fatalf("PWR_MGMT_1=0x%02X want 0xC0", got)
	}
	if slept != 100*time.Millisecond {
		t.Fatalf("slept %s want 100ms", slept)
	}
}

func TestRawRegisterAccess(t *testing.T) {
	r := newRig(t, nil)
	if err := r.dev.WriteRegister(register.IntEnable, 0x01); err != nil {
		t.Fatalf("WriteRegister: %v", err)
	}
	if v, err := r.dev.ReadRegister(register.IntEnable); err != nil || v != 0x01 {
		t.Fatalf("ReadRegister=0x%02X,%v", v, err)
	}
	if s := r.dev.String(); s != "MPU9150{addr:0x68, mag:0x0C}" {
		t.Fatalf("String()=%q", s)
	}
}
