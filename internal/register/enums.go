// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package register

import "fmt"

// GyroRange is the FS_SEL field value.
type GyroRange byte

const (
	Gyro250  GyroRange = 0 // ±250 °/s
	Gyro500  GyroRange = 1 // ±500 °/s
	Gyro1000 GyroRange = 2 // ±1000 °/s
	Gyro2000 GyroRange = 3 // ±2000 °/s
)

var gyroDPS = [...]int{250, 500, 1000, 2000}
var gyroLSB = [...]float64{131, 65.5, 32.8, 16.4}

// DPS returns the full-scale value in °/s, or 0 for an undefined setting.
func (r GyroRange) DPS() int {
	if int(r) >= len(gyroDPS) {
		return 0
	}
	return gyroDPS[r]
}

// Sensitivity returns LSB per °/s, or 0 for an undefined setting.
func (r GyroRange) Sensitivity() float64 {
	if int(r) >= len(gyroLSB) {
		return 0
	}
	return gyroLSB[r]
}

func (r GyroRange) String() string {
	if d := r.DPS(); d != 0 {
		return fmt.Sprintf("±%d°/s", d)
	}
	return fmt.Sprintf("GyroRange(%d)", byte(r))
}

// AccelRange is the AFS_SEL field value.
type AccelRange byte

const (
	Accel2G  AccelRange = 0
	Accel4G  AccelRange = 1
	Accel8G  AccelRange = 2
	Accel16G AccelRange = 3
)

var accelG = [...]int{2, 4, 8, 16}
var accelLSB = [...]float64{8192, 4096, 2048, 1024}

// G returns the full-scale value in g, or 0 for an undefined setting.
func (r AccelRange) G() int {
	if int(r) >= len(accelG) {
		return 0
	}
	return accelG[r]
}

// Sensitivity returns LSB per g, or 0 for an undefined setting.
func (r AccelRange) Sensitivity() float64 {
	if int(r) >= len(accelLSB) {
		return 0
	}
	return accelLSB[r]
}

func (r AccelRange) String() string {
	if g := r.G(); g != 0 {
		return fmt.Sprintf("±%dg", g)
	}
	return fmt.Sprintf("AccelRange(%d)", byte(r))
}

// ClockSource is the CLKSEL field value.
type ClockSource byte

const (
	ClockInternal  ClockSource = 0 // internal 8MHz oscillator
	ClockPLLXGyro  ClockSource = 1
	ClockPLLYGyro  ClockSource = 2
	ClockPLLZGyro  ClockSource = 3
	ClockPLLExt32K ClockSource = 4 // external 32.768kHz reference
	ClockPLLExt19M ClockSource = 5 // external 19.2MHz reference
	ClockReserved  ClockSource = 6
	ClockStop      ClockSource = 7 // stops the clock, keeps timing generator in reset
)

var clockNames = [...]string{
	"internal 8MHz",
	"PLL X gyro",
	"PLL Y gyro",
	"PLL Z gyro",
	"PLL ext 32.768kHz",
	"PLL ext 19.2MHz",
	"reserved",
	"stop",
}

func (c ClockSource) String() string {
	if int(c) < len(clockNames) {
		return clockNames[c]
	}
	return fmt.Sprintf("ClockSource(%d)", byte(c))
}

// MagMode is the magnetometer CNTL MODE value.
type MagMode byte

const (
	MagPowerDown MagMode = 0x00
	MagSingle    MagMode = 0x01
	MagSelfTest  MagMode = 0x08
	MagFuseROM   MagMode = 0x0F
)

func (m MagMode) String() string {
	switch m {
	case MagPowerDown:
		return "power-down"
	case MagSingle:
		return "single"
	case MagSelfTest:
		return "self-test"
	case MagFuseROM:
		return "fuse ROM"
	}
	return fmt.Sprintf("MagMode(0x%02X)", byte(m))
}
