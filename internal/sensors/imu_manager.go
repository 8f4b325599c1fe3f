// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu9150/internal/bus"
	"github.com/relabs-tech/mpu9150/internal/config"
	imu_raw "github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/register"
)

// Device names accepted by the register access methods.
const (
	DevicePrimary = "mpu6050"
	DeviceMag     = "ak8975"
)

// ErrIMUUnavailable is returned by IMUManager methods before a successful Init.
var ErrIMUUnavailable = errors.New("IMU not available")

// IMUManager owns the bus and the IMU for long-running tools that need
// register access alongside sampling.
type IMUManager struct {
	mu     sync.Mutex
	cfg    *config.Config
	open   func(*config.Config) (bus.Bus, error)
	bus    bus.Bus
	source *IMUSource
}

var (
	managerOnce sync.Once
	manager     *IMUManager
)

// GetIMUManager returns the process-wide manager built on config.Get().
func GetIMUManager() *IMUManager {
	managerOnce.Do(func() {
		manager = NewIMUManager(config.Get(), OpenBus)
	})
	return manager
}

// NewIMUManager returns a manager that opens its bus with open.
func NewIMUManager(cfg *config.Config, open func(*config.Config) (bus.Bus, error)) *IMUManager {
	return &IMUManager{cfg: cfg, open: open}
}

// Init opens the bus and brings up the IMU.
func (m *IMUManager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked()
}

func (m *IMUManager) initLocked() error {
	if m.cfg == nil {
		return errors.New("IMU manager: config not loaded")
	}
	if m.bus == nil {
		b, err := m.open(m.cfg)
		if err != nil {
			return err
		}
		m.bus = b
	}
	src, err := NewIMUSource(m.bus, m.cfg)
	if err != nil {
		m.source = nil
		return err
	}
	m.source = src
	log.WithField("imu", src.Name()).Info("IMU manager: IMU initialized")
	return nil
}

// IsIMUAvailable reports whether Init succeeded.
func (m *IMUManager) IsIMUAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source != nil
}

// Source returns the initialized IMU.
func (m *IMUManager) Source() (*IMUSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.source == nil {
		return nil, ErrIMUUnavailable
	}
	return m.source, nil
}

// ReadIMU reads one raw sample.
func (m *IMUManager) ReadIMU() (imu_raw.IMURaw, error) {
	s, err := m.Source()
	if err != nil {
		return imu_raw.IMURaw{}, err
	}
	return s.ReadRaw()
}

// ReinitializeIMU runs the bring-up sequence again on the open bus.
func (m *IMUManager) ReinitializeIMU() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initLocked()
}

// ReadRegister reads one register of device.
func (m *IMUManager) ReadRegister(device string, addr byte) (byte, error) {
	s, err := m.Source()
	if err != nil {
		return 0, err
	}
	switch device {
	case DevicePrimary, "":
		return s.dev.ReadRegister(addr)
	case DeviceMag:
		return s.dev.ReadMagRegister(addr)
	}
	return 0, fmt.Errorf("unknown device %q", device)
}

// WriteRegister writes one register of device.
func (m *IMUManager) WriteRegister(device string, addr, value byte) error {
	s, err := m.Source()
	if err != nil {
		return err
	}
	switch device {
	case DevicePrimary, "":
		return s.dev.WriteRegister(addr, value)
	case DeviceMag:
		return s.dev.WriteMagRegister(addr, value)
	}
	return fmt.Errorf("unknown device %q", device)
}

// ReadAllRegisters reads every readable register in the map of device.
func (m *IMUManager) ReadAllRegisters(device string) (map[byte]byte, error) {
	regs, err := RegisterMap(device)
	if err != nil {
		return nil, err
	}
	out := make(map[byte]byte, len(regs))
	for _, r := range regs {
		if !r.Readable() {
			continue
		}
		v, err := m.ReadRegister(device, r.Address)
		if err != nil {
			return nil, fmt.Errorf("%s 0x%02X: %w", r.Name, r.Address, err)
		}
		out[r.Address] = v
	}
	return out, nil
}

// RegisterMap returns the register metadata of device.
func RegisterMap(device string) ([]register.Info, error) {
	switch device {
	case DevicePrimary, "":
		return register.Primary(), nil
	case DeviceMag:
		return register.Magnetometer(), nil
	}
	return nil, fmt.Errorf("unknown device %q", device)
}

// Close releases the bus.
func (m *IMUManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.source = nil
	if m.bus == nil {
		return nil
	}
	err := m.bus.Close()
	m.bus = nil
	return err
}
