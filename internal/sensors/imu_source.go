// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"

	"github.com/relabs-tech/mpu9150/internal/bus"
	"github.com/relabs-tech/mpu9150/internal/config"
	imu_raw "github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/mpu9150"
	"github.com/relabs-tech/mpu9150/internal/register"
)

// IMURawReader defines the interface for reading raw IMU data.
type IMURawReader interface {
	ReadRaw() (imu_raw.IMURaw, error)
}

// IMUSource is one configured MPU-9150.
type IMUSource struct {
	name  string // primary address, for logging and the sample Source field
	dev   *mpu9150.Dev
	accel register.AccelRange
	gyro  register.GyroRange
	asa   [3]byte
}

// OpenBus opens the I2C bus named in cfg.
func OpenBus(cfg *config.Config) (bus.Bus, error) {
	speed := physic.Frequency(cfg.I2CSpeedKHz) * physic.KiloHertz
	b, err := bus.Open(cfg.I2CBackend, cfg.I2CBus, speed)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q (%s): %w", cfg.I2CBus, cfg.I2CBackend, err)
	}
	return b, nil
}

// DriverOpts maps the magnetometer settings of cfg onto driver options.
func DriverOpts(cfg *config.Config) *mpu9150.Opts {
	return &mpu9150.Opts{
		MagAddr:      cfg.MagAddr,
		UpdatePeriod: time.Duration(cfg.MagUpdatePeriodMS) * time.Millisecond,
		ReadyTimeout: time.Duration(cfg.MagReadyTimeoutMS) * time.Millisecond,
		PollInterval: time.Duration(cfg.MagPollIntervalUS) * time.Microsecond,
	}
}

// NewIMUSource brings up the MPU-9150 at cfg.IMUAddr on b and applies the
// configured ranges, clock and sample rate. A failed identity check is
// logged, not fatal.
func NewIMUSource(b bus.Bus, cfg *config.Config) (*IMUSource, error) {
	name := fmt.Sprintf("0x%02X", cfg.IMUAddr)
	l := log.WithField("imu", name)

	dev, err := mpu9150.New(b, cfg.IMUAddr, DriverOpts(cfg))
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}

	ok, err := dev.TestConnection()
	if err != nil {
		return nil, fmt.Errorf("%s IMU: WHO_AM_I: %w", name, err)
	}
	if !ok {
		id, _ := dev.GetDeviceID()
		l.Warnf("WHO_AM_I field is 0x%02X, expected 0x%02X; continuing", id, register.WhoAmIValue)
	}

	if err := dev.Initialize(); err != nil {
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	s := &IMUSource{
		name:  name,
		dev:   dev,
		accel: register.AccelRange(cfg.IMUAccelRange),
		gyro:  register.GyroRange(cfg.IMUGyroRange),
	}
	if err := s.apply(cfg); err != nil {
		return nil, err
	}

	if dev.MagAvailable() {
		asa, err := dev.GetMagSensitivityAdjustment()
		if err != nil {
			l.Warnf("magnetometer sensitivity adjustment: %v", err)
		} else {
			s.asa = asa
			l.Infof("magnetometer sensitivity adj: X=0x%02X Y=0x%02X Z=0x%02X", asa[0], asa[1], asa[2])
		}
	} else {
		l.Warn("magnetometer not available, headings are untrusted")
	}
	return s, nil
}

func (s *IMUSource) apply(cfg *config.Config) error {
	l := log.WithField("imu", s.name)
	d := s.dev

	if err := d.SetClockSource(register.ClockSource(cfg.IMUClockSource)); err != nil {
		return fmt.Errorf("%s IMU: set clock source: %w", s.name, err)
	}
	l.Infof("clock source set to %s", register.ClockSource(cfg.IMUClockSource))

	if err := d.SetFullScaleAccelRange(s.accel); err != nil {
		return fmt.Errorf("%s IMU: set accel range: %w", s.name, err)
	}
	l.Infof("accelerometer range set to %d (%s)", cfg.IMUAccelRange, s.accel)

	if err := d.SetFullScaleGyroRange(s.gyro); err != nil {
		return fmt.Errorf("%s IMU: set gyro range: %w", s.name, err)
	}
	l.Infof("gyroscope range set to %d (%s)", cfg.IMUGyroRange, s.gyro)

	if err := d.SetDLPFMode(cfg.IMUDLPFConfig); err != nil {
		return fmt.Errorf("%s IMU: set DLPF config: %w", s.name, err)
	}
	if err := d.SetRate(cfg.IMUSampleRateDiv); err != nil {
		return fmt.Errorf("%s IMU: set sample rate divider: %w", s.name, err)
	}
	l.Infof("DLPF %d, sample rate divider %d (output rate: %d Hz)",
		cfg.IMUDLPFConfig, cfg.IMUSampleRateDiv, OutputRate(cfg.IMUDLPFConfig, cfg.IMUSampleRateDiv))
	return nil
}

// OutputRate is the sample rate in Hz for a DLPF setting and divider.
func OutputRate(dlpf, div byte) int {
	internal := 1000 // 1kHz for DLPF modes 1-6
	if dlpf == 0 || dlpf == 7 {
		internal = 8000 // 8kHz with the DLPF off
	}
	return internal / (1 + int(div))
}

// Name returns the primary address as a string.
func (s *IMUSource) Name() string { return s.name }

// Dev returns the underlying driver.
func (s *IMUSource) Dev() *mpu9150.Dev { return s.dev }

// Ranges returns the configured full-scale ranges.
func (s *IMUSource) Ranges() (register.AccelRange, register.GyroRange) { return s.accel, s.gyro }

// SensitivityAdjustment returns the magnetometer ASA bytes read at bring-up.
func (s *IMUSource) SensitivityAdjustment() [3]byte { return s.asa }

// ReadRaw reads a coherent accel/gyro sample, the temperature and the
// cached magnetometer heading.
func (s *IMUSource) ReadRaw() (imu_raw.IMURaw, error) {
	m, err := s.dev.GetMotion9()
	if err != nil {
		return imu_raw.IMURaw{}, fmt.Errorf("%s IMU motion: %w", s.name, err)
	}
	raw := imu_raw.FromMotion9(s.name, m)
	raw.MagOK = s.dev.MagAvailable()

	t, err := s.dev.GetTemperature()
	if err != nil {
		return imu_raw.IMURaw{}, fmt.Errorf("%s IMU temperature: %w", s.name, err)
	}
	raw.Temp = t
	return raw, nil
}

// Scale converts raw counts with the configured ranges.
func (s *IMUSource) Scale(raw imu_raw.IMURaw) imu_raw.IMUScaled {
	return raw.Scale(s.accel, s.gyro)
}
