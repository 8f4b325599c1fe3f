// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
)

// Pose is the canonical representation of orientation, in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is set to 0.
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
	}
}

// AlignMag maps magnetometer axes into the accelerometer frame. On the
// MPU-9150 die the AK8975 X and Y axes are swapped and Z points down.
func AlignMag(mx, my, mz float64) (x, y, z float64) {
	return my, mx, -mz
}

// ComputePose adds a tilt-compensated magnetic heading to the accelerometer
// tilt. The magnetometer vector must already be in the accelerometer frame
// (see AlignMag). Units of both vectors are irrelevant. Yaw is in [0, 360).
func ComputePose(ax, ay, az, mx, my, mz float64) Pose {
	p := ComputePoseFromAccel(ax, ay, az)
	roll := p.Roll * math.Pi / 180
	pitch := p.Pitch * math.Pi / 180

	sr, cr := math.Sincos(roll)
	sp, cp := math.Sincos(pitch)
	xh := mx*cp + my*sr*sp + mz*cr*sp
	yh := my*cr - mz*sr

	yaw := math.Atan2(-yh, xh) * 180 / math.Pi
	if yaw < 0 {
		yaw += 360
	}
	p.Yaw = yaw
	return p
}
