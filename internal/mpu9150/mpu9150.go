// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package mpu9150 drives an MPU-9150: the MPU-6050 accelerometer/gyroscope
// die plus the AK8975 magnetometer reached through the I2C bypass.
//
// Readings are raw signed LSB counts. Accelerometer and gyroscope axes are
// big-endian on the wire, magnetometer axes are little-endian. Every getter
// reads the bus; configuration is never cached.
//
// All bus transactions of a Dev are serialized by one mutex, so
// read-modify-write field updates cannot interleave. The magnetometer has
// its own lock covering its heading cache.
package mpu9150

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/relabs-tech/mpu9150/internal/bus"
	"github.com/relabs-tech/mpu9150/internal/register"
)

// DefaultUpdatePeriod is the heading cache refresh interval.
const DefaultUpdatePeriod = 100 * time.Millisecond

var (
	// ErrDataReadyTimeout is returned when the magnetometer does not report
	// a ready sample within Opts.ReadyTimeout.
	ErrDataReadyTimeout = errors.New("mpu9150: magnetometer data ready timeout")
	ErrMagDisabled      = errors.New("mpu9150: magnetometer not enabled")
	ErrInvalidField     = errors.New("mpu9150: invalid register field")
)

var (
	now   = time.Now
	sleep = time.Sleep
)

// Opts holds driver options.
//
// ReadyTimeout bounds the magnetometer data-ready poll. Zero blocks until
// the sample is ready, which hangs forever on a dead magnetometer unless
// the context passed to the *Context methods is cancelled.
// PollInterval is the pause between ST1 polls; zero polls back to back.
type Opts struct {
	MagAddr      uint16
	UpdatePeriod time.Duration
	ReadyTimeout time.Duration
	PollInterval time.Duration
}

// DefaultOpts matches the original blocking behavior.
var DefaultOpts = Opts{
	MagAddr:      register.MagAddr,
	UpdatePeriod: DefaultUpdatePeriod,
}

// Dev is a handle to one MPU-9150.
type Dev struct {
	mu   sync.Mutex
	bus  bus.Bus
	c    bus.Conn
	addr uint16
	opts Opts
	mag  *Mag
}

// New opens the primary endpoint at addr. No bus transaction happens
// until Initialize or another operation is called.
func New(b bus.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if b == nil {
		return nil, errors.New("mpu9150: bus is nil")
	}
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.MagAddr == 0 {
		o.MagAddr = register.MagAddr
	}
	if o.UpdatePeriod <= 0 {
		o.UpdatePeriod = DefaultUpdatePeriod
	}
	c, err := b.Conn(addr)
	if err != nil {
		return nil, fmt.Errorf("mpu9150: open 0x%02X: %w", addr, err)
	}
	return &Dev{bus: b, c: c, addr: addr, opts: o}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("MPU9150{addr:0x%02X, mag:0x%02X}", d.addr, d.opts.MagAddr)
}

// Addr returns the primary I2C address.
func (d *Dev) Addr() uint16 { return d.addr }

// Initialize selects the X gyro PLL clock, ±250°/s and ±2g full scale,
// wakes the device and brings up the magnetometer.
func (d *Dev) Initialize() error {
	if err := d.SetClockSource(register.ClockPLLXGyro); err != nil {
		return err
	}
	if err := d.SetFullScaleGyroRange(register.Gyro250); err != nil {
		return err
	}
	if err := d.SetFullScaleAccelRange(register.Accel2G); err != nil {
		return err
	}
	if err := d.SetSleepEnabled(false); err != nil {
		return err
	}
	return d.EnableMag()
}

// TestConnection reports whether the WHO_AM_I field reads 0x34. A mismatch
// is not an error.
func (d *Dev) TestConnection() (bool, error) {
	id, err := d.GetDeviceID()
	if err != nil {
		return false, err
	}
	return id == register.WhoAmIValue, nil
}

func (d *Dev) GetDeviceID() (byte, error) {
	return d.getField(register.WhoAmIField)
}

// SetDeviceID writes the WHO_AM_I field. There is no legitimate use for it.
func (d *Dev) SetDeviceID(id byte) error {
	return d.setField(register.WhoAmIField, id)
}

func (d *Dev) GetFullScaleGyroRange() (register.GyroRange, error) {
	v, err := d.getField(register.GyroFSSel)
	return register.GyroRange(v), err
}

// SetFullScaleGyroRange writes FS_SEL. The value is not validated.
func (d *Dev) SetFullScaleGyroRange(r register.GyroRange) error {
	return d.setField(register.GyroFSSel, byte(r))
}

func (d *Dev) GetFullScaleAccelRange() (register.AccelRange, error) {
	v, err := d.getField(register.AccelAFSSel)
	return register.AccelRange(v), err
}

// SetFullScaleAccelRange writes AFS_SEL. The value is not validated.
func (d *Dev) SetFullScaleAccelRange(r register.AccelRange) error {
	return d.setField(register.AccelAFSSel, byte(r))
}

func (d *Dev) GetClockSource() (register.ClockSource, error) {
	v, err := d.getField(register.ClkSel)
	return register.ClockSource(v), err
}

// SetClockSource writes CLKSEL. The value is not validated.
func (d *Dev) SetClockSource(src register.ClockSource) error {
	return d.setField(register.ClkSel, byte(src))
}

func (d *Dev) GetSleepEnabled() (bool, error) {
	return d.getFlag(register.Sleep)
}

// SetSleepEnabled true stops all measurement to save power.
func (d *Dev) SetSleepEnabled(on bool) error {
	return d.setFlag(register.Sleep, on)
}

func (d *Dev) GetI2CBypassEnabled() (bool, error) {
	return d.getFlag(register.I2CBypassEn)
}

// SetI2CBypassEnabled connects the auxiliary bus to the host bus so the
// magnetometer answers at its own address.
func (d *Dev) SetI2CBypassEnabled(on bool) error {
	return d.setFlag(register.I2CBypassEn, on)
}

// GetRate returns SMPLRT_DIV.
func (d *Dev) GetRate() (byte, error) {
	return d.ReadRegister(register.SmplrtDiv)
}

// SetRate writes SMPLRT_DIV: sample rate = gyro output rate / (1 + div).
func (d *Dev) SetRate(div byte) error {
	return d.WriteRegister(register.SmplrtDiv, div)
}

func (d *Dev) GetDLPFMode() (byte, error) {
	return d.getField(register.DLPFCfg)
}

func (d *Dev) SetDLPFMode(mode byte) error {
	return d.setField(register.DLPFCfg, mode)
}

// Reset sets DEVICE_RESET and waits for the registers to return to their
// power-on values. The device comes back asleep.
func (d *Dev) Reset() error {
	if err := d.setFlag(register.DeviceReset, true); err != nil {
		return err
	}
	sleep(100 * time.Millisecond)
	return nil
}

// ReadRegister reads one primary register.
func (d *Dev) ReadRegister(reg byte) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, err := d.c.ReadRegU8(reg)
	if err != nil {
		return 0, fmt.Errorf("mpu9150: read 0x%02X: %w", reg, err)
	}
	return v, nil
}

// WriteRegister writes one primary register.
func (d *Dev) WriteRegister(reg, value byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.c.WriteBytes(reg, []byte{value}); err != nil {
		return fmt.Errorf("mpu9150: write 0x%02X: %w", reg, err)
	}
	return nil
}

func (d *Dev) getField(f register.Field) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return readField(d.c, f)
}

func (d *Dev) setField(f register.Field, v byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return writeField(d.c, f, v)
}

func (d *Dev) getFlag(f register.Field) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return readFlag(d.c, f.Reg, f.Bit)
}

func (d *Dev) setFlag(f register.Field, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return writeFlag(d.c, f.Reg, f.Bit, on)
}
