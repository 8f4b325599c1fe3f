// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "mpu9150_config.txt")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.IMUAddr != 0x68 || cfg.MagAddr != 0x0C {
		t.Fatalf("addrs=0x%02X/0x%02X", cfg.IMUAddr, cfg.MagAddr)
	}
	if cfg.I2CBackend != "periph" || cfg.I2CBus != "1" {
		t.Fatalf("bus=%q/%q", cfg.I2CBackend, cfg.I2CBus)
	}
	if cfg.IMUClockSource != 1 || cfg.MagUpdatePeriodMS != 100 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if err := cfg.validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	p := writeConfig(t, `
# comment
I2C_BUS=/dev/i2c-3
I2C_BACKEND=dev
IMU_ADDR=0x69
MAG_ADDR=0x0D
IMU_ACCEL_RANGE=2
IMU_GYRO_RANGE=3
MAG_READY_TIMEOUT_MS=0
REGISTER_DEBUG_ALLOWED_RANGES=0x1B-0x1D,0x6B
`)
	cfg, err := Load(p, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.I2CBus != "/dev/i2c-3" || cfg.I2CBackend != "dev" {
		t.Fatalf("bus=%q backend=%q", cfg.I2CBus, cfg.I2CBackend)
	}
	if cfg.IMUAddr != 0x69 || cfg.MagAddr != 0x0D {
		t.Fatalf("addrs=0x%02X/0x%02X", cfg.IMUAddr, cfg.MagAddr)
	}
	if cfg.IMUAccelRange != 2 || cfg.IMUGyroRange != 3 {
		t.Fatalf("ranges=%d/%d", cfg.IMUAccelRange, cfg.IMUGyroRange)
	}
	if cfg.MagReadyTimeoutMS != 0 {
		t.Fatalf("ready timeout=%d", cfg.MagReadyTimeoutMS)
	}
	if cfg.RegisterDebugAllowedRanges != "0x1B-0x1D,0x6B" {
		t.Fatalf("ranges=%q", cfg.RegisterDebugAllowedRanges)
	}
	if cfg.TopicIMU != "mpu9150/imu" {
		t.Fatalf("unset keys should keep defaults, TOPIC_IMU=%q", cfg.TopicIMU)
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "NOT_A_KEY=1\n",
		"accel range":    "IMU_ACCEL_RANGE=4\n",
		"gyro range":     "IMU_GYRO_RANGE=x\n",
		"address width":  "IMU_ADDR=0x80\n",
		"backend":        "I2C_BACKEND=spi\n",
		"negative":       "IMU_SAMPLE_INTERVAL=-1\n",
		"zero interval":  "IMU_SAMPLE_INTERVAL=0\n",
		"log level":      "LOG_LEVEL=loud\n",
		"display choice": "DISPLAY_CONTENT=gps\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body), nil); err == nil {
			t.Fatalf("%s: expected error for %q", name, strings.TrimSpace(body))
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.txt"), nil); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	p := writeConfig(t, "IMU_ADDR=0x68\n")
	t.Setenv("MPU9150_IMU_ADDR", "0x69")
	t.Setenv("MPU9150_TOPIC_POSE", "bench/pose")
	cfg, err := Load(p, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IMUAddr != 0x69 {
		t.Fatalf("IMU_ADDR=0x%02X want env value 0x69", cfg.IMUAddr)
	}
	if cfg.TopicPose != "bench/pose" {
		t.Fatalf("TOPIC_POSE=%q", cfg.TopicPose)
	}
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	p := writeConfig(t, "I2C_BUS=2\nLOG_LEVEL=warn\n")
	t.Setenv("MPU9150_I2C_BUS", "3")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("bus", "", "")
	fs.String("log-level", "", "")
	if err := fs.Parse([]string{"--bus", "4"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p, fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.I2CBus != "4" {
		t.Fatalf("I2C_BUS=%q want flag value", cfg.I2CBus)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("unchanged flag must not override the file, LOG_LEVEL=%q", cfg.LogLevel)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *Default() {
		t.Fatalf("Load(\"\") differs from Default()")
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	cfg, err := Load(writeConfig(t, Template()), nil)
	if err != nil {
		t.Fatalf("Load(Template()): %v", err)
	}
	if *cfg != *Default() {
		t.Fatalf("template does not reproduce the defaults:\n%+v\n%+v", cfg, Default())
	}
	for _, k := range Keys() {
		if !strings.Contains(Template(), k+"=") {
			t.Fatalf("template is missing %s", k)
		}
	}
}
