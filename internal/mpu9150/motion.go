// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package mpu9150

import (
	"context"
	"fmt"

	"github.com/relabs-tech/mpu9150/internal/register"
)

func (d *Dev) burst(reg byte, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, err := d.c.ReadBytes(reg, n)
	if err != nil {
		return nil, fmt.Errorf("mpu9150: burst read 0x%02X+%d: %w", reg, n, err)
	}
	if len(b) < n {
		return nil, fmt.Errorf("mpu9150: burst read 0x%02X: short read %d/%d", reg, len(b), n)
	}
	return b, nil
}

func (d *Dev) axis(reg byte) (int16, error) {
	b, err := d.burst(reg, register.AxisBytes)
	if err != nil {
		return 0, err
	}
	return bigEndian(b), nil
}

func (d *Dev) triple(reg byte) ([3]int16, error) {
	b, err := d.burst(reg, register.TripleBytes)
	if err != nil {
		return [3]int16{}, err
	}
	return bigEndianTriple(b), nil
}

// GetAcceleration returns raw X, Y, Z accelerometer counts. Divide by
// the current AccelRange sensitivity for g.
func (d *Dev) GetAcceleration() ([3]int16, error) {
	return d.triple(register.AccelXoutH)
}

func (d *Dev) GetAccelerationX() (int16, error) { return d.axis(register.AccelXoutH) }
func (d *Dev) GetAccelerationY() (int16, error) { return d.axis(register.AccelYoutH) }
func (d *Dev) GetAccelerationZ() (int16, error) { return d.axis(register.AccelZoutH) }

// GetRotation returns raw X, Y, Z gyroscope counts. Divide by the current
// GyroRange sensitivity for °/s.
func (d *Dev) GetRotation() ([3]int16, error) {
	return d.triple(register.GyroXoutH)
}

func (d *Dev) GetRotationX() (int16, error) { return d.axis(register.GyroXoutH) }
func (d *Dev) GetRotationY() (int16, error) { return d.axis(register.GyroYoutH) }
func (d *Dev) GetRotationZ() (int16, error) { return d.axis(register.GyroZoutH) }

// GetTemperature returns the raw TEMP_OUT value.
func (d *Dev) GetTemperature() (int16, error) {
	return d.axis(register.TempOutH)
}

// Celsius converts a raw TEMP_OUT value.
func Celsius(raw int16) float64 {
	return float64(raw)/340 + 35
}

// GetMotion6 returns ax, ay, az, gx, gy, gz from a single 14-byte burst so
// that all six values come from the same sampling instant.
func (d *Dev) GetMotion6() ([6]int16, error) {
	b, err := d.burst(register.AccelXoutH, register.Motion6Bytes)
	if err != nil {
		return [6]int16{}, err
	}
	a := bigEndianTriple(b[0:6])
	g := bigEndianTriple(b[8:14]) // b[6:8] is TEMP_OUT
	return [6]int16{a[0], a[1], a[2], g[0], g[1], g[2]}, nil
}

// GetMotion9 returns GetMotion6 followed by the cached heading. The
// heading may be up to one update period older than the inertial sample.
func (d *Dev) GetMotion9() ([9]int16, error) {
	return d.GetMotion9Context(context.Background())
}

// GetMotion9Context is GetMotion9 with a cancellable heading reload.
func (d *Dev) GetMotion9Context(ctx context.Context) ([9]int16, error) {
	m6, err := d.GetMotion6()
	if err != nil {
		return [9]int16{}, err
	}
	h, err := d.GetHeadingContext(ctx, false)
	if err != nil {
		return [9]int16{}, err
	}
	return [9]int16{m6[0], m6[1], m6[2], m6[3], m6[4], m6[5], h[0], h[1], h[2]}, nil
}
