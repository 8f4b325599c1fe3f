// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"

	"github.com/relabs-tech/mpu9150/internal/register"
)

// IMURaw represents a single raw IMU+mag sample.
type IMURaw struct {
	Source string `json:"source"` // I2C address of the sensor, e.g. "0x68"

	Ax int16 `json:"ax"` // accel
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"` // gyro
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`

	Mx int16 `json:"mx"` // magnetometer
	My int16 `json:"my"`
	Mz int16 `json:"mz"`

	Temp  int16 `json:"temp"`
	MagOK bool  `json:"mag_ok"`
}

// FromMotion9 unpacks ax, ay, az, gx, gy, gz, mx, my, mz.
func FromMotion9(source string, m [9]int16) IMURaw {
	return IMURaw{
		Source: source,
		Ax:     m[0], Ay: m[1], Az: m[2],
		Gx: m[3], Gy: m[4], Gz: m[5],
		Mx: m[6], My: m[7], Mz: m[8],
	}
}

// IMUScaled is a sample in physical units.
type IMUScaled struct {
	Source string  `json:"source"`
	Ax     float64 `json:"ax_g"`
	Ay     float64 `json:"ay_g"`
	Az     float64 `json:"az_g"`
	Gx     float64 `json:"gx_dps"`
	Gy     float64 `json:"gy_dps"`
	Gz     float64 `json:"gz_dps"`
	Mx     float64 `json:"mx"`
	My     float64 `json:"my"`
	Mz     float64 `json:"mz"`
	TempC  float64 `json:"temp_c"`
}

// Scale converts counts using the sensitivities of the given ranges. An
// undefined range leaves the corresponding axes at zero.
func (r IMURaw) Scale(ar register.AccelRange, gr register.GyroRange) IMUScaled {
	s := IMUScaled{
		Source: r.Source,
		Mx:     float64(r.Mx),
		My:     float64(r.My),
		Mz:     float64(r.Mz),
		TempC:  float64(r.Temp)/340 + 35,
	}
	if a := ar.Sensitivity(); a != 0 {
		s.Ax, s.Ay, s.Az = float64(r.Ax)/a, float64(r.Ay)/a, float64(r.Az)/a
	}
	if g := gr.Sensitivity(); g != 0 {
		s.Gx, s.Gy, s.Gz = float64(r.Gx)/g, float64(r.Gy)/g, float64(r.Gz)/g
	}
	return s
}

// MagNorm is the magnitude of the magnetic field vector in counts.
func (r IMURaw) MagNorm() float64 {
	x, y, z := float64(r.Mx), float64(r.My), float64(r.Mz)
	return math.Sqrt(x*x + y*y + z*z)
}

type IMURawSource interface {
	ReadRaw() (IMURaw, error)
}
