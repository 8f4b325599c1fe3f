// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package register

// BitField describes one field of a register for display purposes.
type BitField struct {
	Bits        string `json:"bits" yaml:"bits"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Values      string `json:"values,omitempty" yaml:"values,omitempty"`
}

// Info is the metadata of a single register.
type Info struct {
	Address     byte       `json:"address" yaml:"address"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Access      string     `json:"access" yaml:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty" yaml:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty" yaml:"bit_fields,omitempty"`
}

// Readable reports whether the register may be read.
func (i Info) Readable() bool { return i.Access != "W" }

// Lookup returns the entry for addr in m.
func Lookup(m []Info, addr byte) (Info, bool) {
	for _, r := range m {
		if r.Address == addr {
			return r, true
		}
	}
	return Info{}, false
}

// Primary returns metadata for the MPU-6050 die registers used by the driver.
func Primary() []Info {
	return []Info{
		// Configuration
		{Address: SmplrtDiv, Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro_Output_Rate / (1 + SMPLRT_DIV)", Values: "0-255"},
			}},
		{Address: Config, Name: "CONFIG", Description: "Configuration (FSYNC, DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter", Values: "0=260Hz, 1=184Hz, 2=94Hz, 3=44Hz, 4=21Hz, 5=10Hz, 6=5Hz"},
			}},
		{Address: GyroConfig, Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XG_ST", Description: "X gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YG_ST", Description: "Y gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZG_ST", Description: "Z gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro full scale range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: AccelConfig, Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XA_ST", Description: "X accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YA_ST", Description: "Y accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZA_ST", Description: "Z accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel full scale range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},

		// Interrupts
		{Address: IntPinCfg, Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "INT_LEVEL", Description: "INT pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "6", Name: "INT_OPEN", Description: "INT pin open drain", Values: "0=Push-pull, 1=Open drain"},
				{Bits: "5", Name: "LATCH_INT_EN", Description: "Latch INT pin", Values: "0=50us pulse, 1=Latch until cleared"},
				{Bits: "4", Name: "INT_RD_CLEAR", Description: "Clear INT on any read", Values: "0=Status read only, 1=Any read"},
				{Bits: "3", Name: "FSYNC_INT_LEVEL", Description: "FSYNC pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "2", Name: "FSYNC_INT_EN", Description: "Enable FSYNC as interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1", Name: "I2C_BYPASS_EN", Description: "Auxiliary I2C bypass", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: IntEnable, Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "I2C_MST_INT_EN", Description: "I2C master interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: IntStatus, Name: "INT_STATUS", Description: "Interrupt Status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflow interrupt status"},
				{Bits: "3", Name: "I2C_MST_INT", Description: "I2C master interrupt status"},
				{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready interrupt status"},
			}},

		// Sensor data
		{Address: AccelXoutH, Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: AccelXoutL, Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: AccelYoutH, Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: AccelYoutL, Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: AccelZoutH, Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: AccelZoutL, Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: TempOutH, Name: "TEMP_OUT_H", Description: "Temperature High Byte", Access: "R"},
		{Address: TempOutL, Name: "TEMP_OUT_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: GyroXoutH, Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: GyroXoutL, Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: GyroYoutH, Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: GyroYoutL, Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: GyroZoutH, Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: GyroZoutL, Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},

		// Control
		{Address: UserCtrl, Name: "USER_CTRL", Description: "User Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_EN", Description: "Enable FIFO", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "I2C_MST_EN", Description: "Enable I2C master", Values: "0=Disabled, 1=Enabled"},
				{Bits: "2", Name: "FIFO_RESET", Description: "Reset FIFO", Values: "1=Reset"},
				{Bits: "1", Name: "I2C_MST_RESET", Description: "Reset I2C master", Values: "1=Reset"},
				{Bits: "0", Name: "SIG_COND_RESET", Description: "Reset signal paths", Values: "1=Reset"},
			}},
		{Address: PwrMgmt1, Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Device reset", Values: "1=Reset device"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Disabled, 1=Sleep"},
				{Bits: "5", Name: "CYCLE", Description: "Cycle mode", Values: "0=Disabled, 1=Cycle"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Temperature sensor", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL X gyro, 2=PLL Y gyro, 3=PLL Z gyro, 4=PLL ext 32.768kHz, 5=PLL ext 19.2MHz, 7=Stop"},
			}},
		{Address: PwrMgmt2, Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "LP_WAKE_CTRL", Description: "Low power wake-up frequency", Values: "0=1.25Hz, 1=5Hz, 2=20Hz, 3=40Hz"},
				{Bits: "5", Name: "STBY_XA", Description: "X accel standby", Values: "0=Active, 1=Standby"},
				{Bits: "4", Name: "STBY_YA", Description: "Y accel standby", Values: "0=Active, 1=Standby"},
				{Bits: "3", Name: "STBY_ZA", Description: "Z accel standby", Values: "0=Active, 1=Standby"},
				{Bits: "2", Name: "STBY_XG", Description: "X gyro standby", Values: "0=Active, 1=Standby"},
				{Bits: "1", Name: "STBY_YG", Description: "Y gyro standby", Values: "0=Active, 1=Standby"},
				{Bits: "0", Name: "STBY_ZG", Description: "Z gyro standby", Values: "0=Active, 1=Standby"},
			}},

		// Identification
		{Address: WhoAmI, Name: "WHO_AM_I", Description: "Device identity (bits 6:1 read 0x34)", Access: "R", Default: "0x68",
			BitFields: []BitField{
				{Bits: "6:1", Name: "WHO_AM_I", Description: "Upper 6 bits of the 7-bit I2C address", Values: "0x34"},
			}},
	}
}

// Magnetometer returns metadata for the AK8975 registers, accessed
// directly at its own I2C address once bypass is enabled.
func Magnetometer() []Info {
	return []Info{
		{Address: MagWIA, Name: "WIA", Description: "Device ID (should be 0x48)", Access: "R", Default: "0x48"},
		{Address: MagInfo, Name: "INFO", Description: "Device information", Access: "R"},
		{Address: MagST1, Name: "ST1", Description: "Status 1", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "0", Name: "DRDY", Description: "Data ready", Values: "0=Normal, 1=Data ready"},
			}},
		{Address: MagHXL, Name: "HXL", Description: "X-axis data low byte", Access: "R"},
		{Address: MagHXH, Name: "HXH", Description: "X-axis data high byte", Access: "R"},
		{Address: MagHYL, Name: "HYL", Description: "Y-axis data low byte", Access: "R"},
		{Address: MagHYH, Name: "HYH", Description: "Y-axis data high byte", Access: "R"},
		{Address: MagHZL, Name: "HZL", Description: "Z-axis data low byte", Access: "R"},
		{Address: MagHZH, Name: "HZH", Description: "Z-axis data high byte", Access: "R"},
		{Address: MagST2, Name: "ST2", Description: "Status 2", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3", Name: "HOFL", Description: "Magnetic sensor overflow", Values: "0=Normal, 1=Overflow"},
				{Bits: "2", Name: "DERR", Description: "Data error", Values: "0=Normal, 1=Data read error"},
			}},
		{Address: MagCNTL, Name: "CNTL", Description: "Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3:0", Name: "MODE", Description: "Operation mode", Values: "0=Power-down, 1=Single measurement, 8=Self-test, 15=Fuse ROM access"},
			}},
		{Address: MagASTC, Name: "ASTC", Description: "Self-test control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "SELF", Description: "Generate magnetic field for self-test", Values: "0=Normal, 1=Self-test"},
			}},
		{Address: MagASAX, Name: "ASAX", Description: "X-axis sensitivity adjustment (fuse ROM)", Access: "R"},
		{Address: MagASAY, Name: "ASAY", Description: "Y-axis sensitivity adjustment (fuse ROM)", Access: "R"},
		{Address: MagASAZ, Name: "ASAZ", Description: "Z-axis sensitivity adjustment (fuse ROM)", Access: "R"},
	}
}
