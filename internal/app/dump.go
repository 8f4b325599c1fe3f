// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// RegisterReader reads every catalogued register of a device.
type RegisterReader interface {
	ReadAllRegisters(device string) (map[byte]byte, error)
}

// RegisterValue is one register in a snapshot.
type RegisterValue struct {
	Addr  string `json:"addr" yaml:"addr"`
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// DeviceSnapshot holds the registers of one endpoint in map order.
type DeviceSnapshot struct {
	Device    string          `json:"device" yaml:"device"`
	Registers []RegisterValue `json:"registers" yaml:"registers"`
	Error     string          `json:"error,omitempty" yaml:"error,omitempty"`
}

// RegisterSnapshot is the output of the dump tool.
type RegisterSnapshot struct {
	Version   int              `json:"version" yaml:"version"`
	Timestamp string           `json:"timestamp" yaml:"timestamp"`
	Devices   []DeviceSnapshot `json:"devices" yaml:"devices"`
}

// TakeSnapshot reads both endpoints. A device that fails to read is
// recorded with its error and the other one is still dumped.
func TakeSnapshot(r RegisterReader, t time.Time) RegisterSnapshot {
	snap := RegisterSnapshot{Version: 1, Timestamp: t.Format(time.RFC3339)}
	for _, device := range []string{sensors.DevicePrimary, sensors.DeviceMag} {
		ds := DeviceSnapshot{Device: device}
		regs, err := r.ReadAllRegisters(device)
		if err != nil {
			ds.Error = err.Error()
			snap.Devices = append(snap.Devices, ds)
			continue
		}
		infos, _ := sensors.RegisterMap(device)
		for _, info := range infos {
			v, ok := regs[info.Address]
			if !ok {
				continue
			}
			ds.Registers = append(ds.Registers, RegisterValue{
				Addr:  fmt.Sprintf("0x%02X", info.Address),
				Name:  info.Name,
				Value: fmt.Sprintf("0x%02X", v),
			})
		}
		snap.Devices = append(snap.Devices, ds)
	}
	return snap
}

// Encode writes the snapshot as "yaml" or "json".
func (s RegisterSnapshot) Encode(w io.Writer, format string) error {
	switch format {
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	return fmt.Errorf("unknown format %q (want yaml or json)", format)
}

// RunDump snapshots the configured device and writes it to w.
func RunDump(w io.Writer, format string) error {
	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize IMU: %w", err)
	}
	defer imuManager.Close()
	return TakeSnapshot(imuManager, time.Now()).Encode(w, format)
}
