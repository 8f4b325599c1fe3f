// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu9150/internal/bus"
	"github.com/relabs-tech/mpu9150/internal/register"
)

// Mag is the AK8975 endpoint with its heading cache.
type Mag struct {
	mu        sync.Mutex
	c         bus.Conn
	addr      uint16
	available bool

	period  time.Duration
	timeout time.Duration
	poll    time.Duration

	heading [3]int16
	updated time.Time
}

// EnableMag turns on the I2C bypass, opens the magnetometer endpoint and
// checks its identity. A failed identity check is logged and the
// magnetometer stays in place: reads still go to the bus and return
// whatever it answers. Check MagAvailable before trusting headings.
func (d *Dev) EnableMag() error {
	if err := d.SetI2CBypassEnabled(true); err != nil {
		return err
	}
	m := &Mag{
		addr:    d.opts.MagAddr,
		timeout: d.opts.ReadyTimeout,
		poll:    d.opts.PollInterval,
	}
	m.SetUpdatePeriod(d.opts.UpdatePeriod)

	c, err := d.bus.Conn(m.addr)
	if err != nil {
		return fmt.Errorf("mpu9150: open magnetometer 0x%02X: %w", m.addr, err)
	}
	m.c = c

	ok, err := m.TestMag()
	if err != nil {
		return err
	}
	m.available = ok
	if !ok {
		log.WithField("addr", fmt.Sprintf("0x%02X", m.addr)).
			Warn("mpu9150: magnetometer identity check failed, heading readings are not trustworthy")
	}

	d.mu.Lock()
	d.mag = m
	d.mu.Unlock()
	return nil
}

// Mag returns the magnetometer handle, or ErrMagDisabled before EnableMag.
func (d *Dev) Mag() (*Mag, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mag == nil {
		return nil, ErrMagDisabled
	}
	return d.mag, nil
}

// MagAvailable reports whether the magnetometer passed its identity check.
func (d *Dev) MagAvailable() bool {
	m, err := d.Mag()
	return err == nil && m.Available()
}

func (d *Dev) TestMag() (bool, error) {
	m, err := d.Mag()
	if err != nil {
		return false, err
	}
	return m.TestMag()
}

func (d *Dev) GetDataReady() (byte, error) {
	m, err := d.Mag()
	if err != nil {
		return 0, err
	}
	return m.GetDataReady()
}

// LoadHeading triggers a single measurement and waits for it. With a zero
// ReadyTimeout it blocks until the magnetometer reports ready.
func (d *Dev) LoadHeading() error {
	return d.LoadHeadingContext(context.Background())
}

func (d *Dev) LoadHeadingContext(ctx context.Context) error {
	m, err := d.Mag()
	if err != nil {
		return err
	}
	return m.LoadHeading(ctx)
}

// GetHeading returns the cached heading, reloading it when older than the
// update period or when force is set.
func (d *Dev) GetHeading(force bool) ([3]int16, error) {
	return d.GetHeadingContext(context.Background(), force)
}

func (d *Dev) GetHeadingContext(ctx context.Context, force bool) ([3]int16, error) {
	m, err := d.Mag()
	if err != nil {
		return [3]int16{}, err
	}
	return m.Heading(ctx, force)
}

// GetHeadingX, GetHeadingY and GetHeadingZ each make their own cache
// decision. Call GetHeading once for a coherent triple.
func (d *Dev) GetHeadingX() (int16, error) { return d.headingAxis(0) }
func (d *Dev) GetHeadingY() (int16, error) { return d.headingAxis(1) }
func (d *Dev) GetHeadingZ() (int16, error) { return d.headingAxis(2) }

func (d *Dev) headingAxis(i int) (int16, error) {
	h, err := d.GetHeading(false)
	if err != nil {
		return 0, err
	}
	return h[i], nil
}

// SetUpdatePeriod sets the heading cache refresh interval.
func (d *Dev) SetUpdatePeriod(p time.Duration) error {
	m, err := d.Mag()
	if err != nil {
		return err
	}
	m.SetUpdatePeriod(p)
	return nil
}

// GetMagSensitivityAdjustment returns the factory ASA bytes.
func (d *Dev) GetMagSensitivityAdjustment() ([3]byte, error) {
	m, err := d.Mag()
	if err != nil {
		return [3]byte{}, err
	}
	return m.SensitivityAdjustment()
}

// ReadMagRegister reads one magnetometer register.
func (d *Dev) ReadMagRegister(reg byte) (byte, error) {
	m, err := d.Mag()
	if err != nil {
		return 0, err
	}
	return m.ReadRegister(reg)
}

// WriteMagRegister writes one magnetometer register.
func (d *Dev) WriteMagRegister(reg, value byte) error {
	m, err := d.Mag()
	if err != nil {
		return err
	}
	return m.WriteRegister(reg, value)
}

// Addr returns the magnetometer I2C address.
func (m *Mag) Addr() uint16 { return m.addr }

func (m *Mag) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// TestMag reports whether WIA reads 0x48.
func (m *Mag) TestMag() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.c.ReadRegU8(register.MagWIA)
	if err != nil {
		return false, fmt.Errorf("mpu9150: magnetometer WIA: %w", err)
	}
	return v == register.MagWIAValue, nil
}

// GetDataReady returns ST1. register.MagDataReady means a sample is latched.
func (m *Mag) GetDataReady() (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dataReady()
}

func (m *Mag) dataReady() (byte, error) {
	v, err := m.c.ReadRegU8(register.MagST1)
	if err != nil {
		return 0, fmt.Errorf("mpu9150: magnetometer ST1: %w", err)
	}
	return v, nil
}

func (m *Mag) SetUpdatePeriod(p time.Duration) {
	if p <= 0 {
		p = DefaultUpdatePeriod
	}
	m.mu.Lock()
	m.period = p
	m.mu.Unlock()
}

func (m *Mag) UpdatePeriod() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.period
}

// LoadHeading writes a single-measurement command, polls ST1 until ready
// and reads the little-endian output registers into the cache.
func (m *Mag) LoadHeading(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Heading returns the cached triple unless it is stale or force is set.
// The lock is held across a reload so concurrent callers share one.
func (m *Mag) Heading(ctx context.Context, force bool) ([3]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if force || m.updated.IsZero() || now().Sub(m.updated) >= m.period {
		if err := m.load(ctx); err != nil {
			return [3]int16{}, err
		}
	}
	return m.heading, nil
}

func (m *Mag) load(ctx context.Context) error {
	if err := m.c.WriteBytes(register.MagCNTL, []byte{byte(register.MagSingle)}); err != nil {
		return fmt.Errorf("mpu9150: magnetometer single measurement: %w", err)
	}
	if err := m.waitReady(ctx); err != nil {
		return err
	}
	b, err := m.c.ReadBytes(register.MagHXL, register.TripleBytes)
	if err != nil {
		return fmt.Errorf("mpu9150: magnetometer read: %w", err)
	}
	if len(b) < register.TripleBytes {
		return fmt.Errorf("mpu9150: magnetometer read: short read %d/%d", len(b), register.TripleBytes)
	}
	m.heading = littleEndianTriple(b)
	m.updated = now()
	return nil
}

func (m *Mag) waitReady(ctx context.Context) error {
	start := now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, err := m.dataReady()
		if err != nil {
			return err
		}
		if st == register.MagDataReady {
			return nil
		}
		if m.timeout > 0 && now().Sub(start) >= m.timeout {
			return fmt.Errorf("%w after %s (ST1=0x%02X)", ErrDataReadyTimeout, m.timeout, st)
		}
		if m.poll > 0 {
			t := time.NewTimer(m.poll)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
	}
}

// SensitivityAdjustment reads ASAX, ASAY and ASAZ from fuse ROM and puts
// the magnetometer back in power-down.
func (m *Mag) SensitivityAdjustment() ([3]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.c.WriteBytes(register.MagCNTL, []byte{byte(register.MagFuseROM)}); err != nil {
		return [3]byte{}, fmt.Errorf("mpu9150: magnetometer fuse ROM mode: %w", err)
	}
	b, err := m.c.ReadBytes(register.MagASAX, 3)
	if err != nil {
		return [3]byte{}, fmt.Errorf("mpu9150: magnetometer ASA: %w", err)
	}
	if err := m.c.WriteBytes(register.MagCNTL, []byte{byte(register.MagPowerDown)}); err != nil {
		return [3]byte{}, fmt.Errorf("mpu9150: magnetometer power-down: %w", err)
	}
	return [3]byte{b[0], b[1], b[2]}, nil
}

// AdjustHeading applies a sensitivity adjustment value to a raw axis.
func AdjustHeading(raw int16, asa byte) float64 {
	return float64(raw) * ((float64(asa)-128)/256 + 1)
}

func (m *Mag) ReadRegister(reg byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.c.ReadRegU8(reg)
	if err != nil {
		return 0, fmt.Errorf("mpu9150: magnetometer read 0x%02X: %w", reg, err)
	}
	return v, nil
}

func (m *Mag) WriteRegister(reg, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.c.WriteBytes(reg, []byte{value}); err != nil {
		return fmt.Errorf("mpu9150: magnetometer write 0x%02X: %w", reg, err)
	}
	return nil
}
