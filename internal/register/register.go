// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package register is the MPU-9150 register catalog: addresses, bit fields
// and enumerated field values of the MPU-6050 die and of the AK8975
// magnetometer reached through the I2C bypass.
package register

// I2C addresses.
const (
	AddrLow  = 0x68 // AD0 low (default)
	AddrHigh = 0x69 // AD0 high

	MagAddr   = 0x0C // CAD1=0, CAD0=0 (default)
	MagAddr01 = 0x0D
	MagAddr10 = 0x0E
	MagAddr11 = 0x0F
)

// Primary device registers.
const (
	SmplrtDiv   = 0x19
	Config      = 0x1A
	GyroConfig  = 0x1B
	AccelConfig = 0x1C
	IntPinCfg   = 0x37
	IntEnable   = 0x38
	IntStatus   = 0x3A
	AccelXoutH  = 0x3B
	AccelXoutL  = 0x3C
	AccelYoutH  = 0x3D
	AccelYoutL  = 0x3E
	AccelZoutH  = 0x3F
	AccelZoutL  = 0x40
	TempOutH    = 0x41
	TempOutL    = 0x42
	GyroXoutH   = 0x43
	GyroXoutL   = 0x44
	GyroYoutH   = 0x45
	GyroYoutL   = 0x46
	GyroZoutH   = 0x47
	GyroZoutL   = 0x48
	UserCtrl    = 0x6A
	PwrMgmt1    = 0x6B
	PwrMgmt2    = 0x6C
	WhoAmI      = 0x75
)

// Magnetometer registers (on the magnetometer endpoint).
const (
	MagWIA  = 0x00
	MagInfo = 0x01
	MagST1  = 0x02
	MagHXL  = 0x03
	MagHXH  = 0x04
	MagHYL  = 0x05
	MagHYH  = 0x06
	MagHZL  = 0x07
	MagHZH  = 0x08
	MagST2  = 0x09
	MagCNTL = 0x0A
	MagASTC = 0x0C
	MagASAX = 0x10
	MagASAY = 0x11
	MagASAZ = 0x12
)

// Identity and status values.
const (
	WhoAmIValue  = 0x34 // 6-bit WHO_AM_I field, not the bus address
	MagWIAValue  = 0x48
	MagDataReady = 0x01
)

// Burst lengths.
const (
	AxisBytes    = 2
	TripleBytes  = 6
	Motion6Bytes = 14 // accel(6) + temp(2) + gyro(6)
)

// Field identifies a bit field inside one 8-bit register. Bit is the index
// of the field's most significant bit, 0 (LSB) to 7 (MSB).
type Field struct {
	Reg byte
	Bit byte
	Len byte
}

// Valid reports whether f satisfies Bit <= 7 and 1 <= Len <= Bit+1.
func (f Field) Valid() bool {
	return f.Bit <= 7 && f.Len >= 1 && f.Len <= f.Bit+1
}

// Mask returns the in-register mask of f.
func (f Field) Mask() byte {
	return byte(((1 << f.Len) - 1) << f.Shift())
}

// Shift returns the position of the field's least significant bit.
func (f Field) Shift() byte {
	return 1 + f.Bit - f.Len
}

var (
	DLPFCfg       = Field{Config, 2, 3}
	ExtSyncSet    = Field{Config, 5, 3}
	GyroFSSel     = Field{GyroConfig, 4, 2}
	AccelAFSSel   = Field{AccelConfig, 4, 2}
	I2CBypassEn   = Field{IntPinCfg, 1, 1}
	I2CMstEn      = Field{UserCtrl, 5, 1}
	DeviceReset   = Field{PwrMgmt1, 7, 1}
	Sleep         = Field{PwrMgmt1, 6, 1}
	Cycle         = Field{PwrMgmt1, 5, 1}
	TempDis       = Field{PwrMgmt1, 3, 1}
	ClkSel        = Field{PwrMgmt1, 2, 3}
	WhoAmIField   = Field{WhoAmI, 6, 6}
	MagModeField  = Field{MagCNTL, 3, 4}
	MagDRDY       = Field{MagST1, 0, 1}
	MagHOFL       = Field{MagST2, 3, 1}
	MagDERR       = Field{MagST2, 2, 1}
	MagSelfTestEn = Field{MagASTC, 6, 1}
)
