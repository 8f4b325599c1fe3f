// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/relabs-tech/mpu9150/internal/bus"
	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/mpu9150"
	"github.com/relabs-tech/mpu9150/internal/register"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// ProbeResult holds the identity registers of both endpoints.
type ProbeResult struct {
	IMUAddr  uint16
	DeviceID byte
	IMUOK    bool
	MagAddr  uint16
	MagWIA   byte
	MagOK    bool
}

// Probe checks the identity of the primary endpoint and of the
// magnetometer behind the bypass. Only transport errors fail the probe.
func Probe(b bus.Bus, cfg *config.Config) (ProbeResult, error) {
	res := ProbeResult{IMUAddr: cfg.IMUAddr, MagAddr: cfg.MagAddr}

	dev, err := mpu9150.New(b, cfg.IMUAddr, sensors.DriverOpts(cfg))
	if err != nil {
		return res, err
	}
	if res.DeviceID, err = dev.GetDeviceID(); err != nil {
		return res, fmt.Errorf("WHO_AM_I: %w", err)
	}
	res.IMUOK = res.DeviceID == register.WhoAmIValue

	if err := dev.EnableMag(); err != nil {
		return res, fmt.Errorf("magnetometer: %w", err)
	}
	if res.MagWIA, err = dev.ReadMagRegister(register.MagWIA); err != nil {
		return res, fmt.Errorf("magnetometer WIA: %w", err)
	}
	res.MagOK = dev.MagAvailable()
	return res, nil
}

func (r ProbeResult) String() string {
	mark := func(ok bool) string {
		if ok {
			return "ok"
		}
		return "MISMATCH"
	}
	return fmt.Sprintf("mpu6050 @0x%02X WHO_AM_I=0x%02X (want 0x%02X) %s\nak8975  @0x%02X WIA=0x%02X (want 0x%02X) %s",
		r.IMUAddr, r.DeviceID, register.WhoAmIValue, mark(r.IMUOK),
		r.MagAddr, r.MagWIA, register.MagWIAValue, mark(r.MagOK))
}

// RunProbe opens the configured bus, probes the device and prints the result.
func RunProbe(w io.Writer) error {
	cfg := config.Get()
	b, err := sensors.OpenBus(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	res, err := Probe(b, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, res)
	if !res.IMUOK || !res.MagOK {
		return errors.New("identity check failed")
	}
	return nil
}
