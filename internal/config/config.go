// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every key when read from the environment,
// e.g. MPU9150_IMU_ADDR.
const EnvPrefix = "MPU9150"

// DefaultPath is the configuration file looked up when --config is not set.
const DefaultPath = "./mpu9150_config.txt"

// Config holds all application configuration values.
type Config struct {
	// I2C
	I2CBus      string
	I2CBackend  string // "periph" or "dev"
	I2CSpeedKHz int    // 0 keeps the bus default
	IMUAddr     uint16
	MagAddr     uint16

	// IMU Sensor Ranges
	// Accelerometer: 0=±2g, 1=±4g, 2=±8g, 3=±16g
	IMUAccelRange byte
	// Gyroscope: 0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s
	IMUGyroRange   byte
	IMUClockSource byte

	// IMU Sample Rate Configuration
	IMUDLPFConfig    byte // Digital Low Pass Filter configuration (0-7)
	IMUSampleRateDiv byte // Sample rate divider (output rate = internal rate / (1 + div))

	// Magnetometer timing
	MagUpdatePeriodMS int
	MagReadyTimeoutMS int // 0 waits forever
	MagPollIntervalUS int

	// Timing
	IMUSampleInterval int // milliseconds

	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDDisplay  string

	// Topics
	TopicIMU  string
	TopicPose string
	TopicMag  string

	// Register debug web tool
	WebServerPort              int
	RegisterDebugAllowedRanges string // e.g. "0x19-0x1C,0x37,0x6B"; empty disables writes

	// Display (SSD1306 at 0x3C on I2C_BUS)
	DisplayUpdateInterval int    // milliseconds
	DisplayContent        string // "imu_raw", "imu_scaled" or "orientation"

	LogLevel string
}

// defaults holds every known key. A key missing here cannot be set from
// the environment or a flag.
var defaults = map[string]string{
	"I2C_BUS":                       "1",
	"I2C_BACKEND":                   "periph",
	"I2C_SPEED_KHZ":                 "400",
	"IMU_ADDR":                      "0x68",
	"MAG_ADDR":                      "0x0C",
	"IMU_ACCEL_RANGE":               "0",
	"IMU_GYRO_RANGE":                "0",
	"IMU_CLOCK_SOURCE":              "1",
	"IMU_DLPF_CFG":                  "3",
	"IMU_SMPLRT_DIV":                "9",
	"MAG_UPDATE_PERIOD_MS":          "100",
	"MAG_READY_TIMEOUT_MS":          "50",
	"MAG_POLL_INTERVAL_US":          "500",
	"IMU_SAMPLE_INTERVAL":           "100",
	"MQTT_BROKER":                   "tcp://localhost:1883",
	"MQTT_CLIENT_ID_PRODUCER":       "mpu9150-producer",
	"MQTT_CLIENT_ID_CONSOLE":        "mpu9150-console",
	"MQTT_CLIENT_ID_DISPLAY":        "mpu9150-display",
	"TOPIC_IMU":                     "mpu9150/imu",
	"TOPIC_POSE":                    "mpu9150/pose",
	"TOPIC_MAG":                     "mpu9150/mag",
	"WEB_SERVER_PORT":               "8081",
	"REGISTER_DEBUG_ALLOWED_RANGES": "0x19-0x1C,0x37,0x6B",
	"DISPLAY_UPDATE_INTERVAL":       "250",
	"DISPLAY_CONTENT":               "orientation",
	"LOG_LEVEL":                     "info",
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"bus":       "I2C_BUS",
	"backend":   "I2C_BACKEND",
	"addr":      "IMU_ADDR",
	"mag-addr":  "MAG_ADDR",
	"log-level": "LOG_LEVEL",
	"broker":    "MQTT_BROKER",
	"port":      "WEB_SERVER_PORT",
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: set once by InitGlobal, read through Get.
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Keys returns every known key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the configuration with no file, environment or flags.
func Default() *Config {
	cfg := &Config{}
	for _, k := range Keys() {
		if err := cfg.setValue(k, defaults[k]); err != nil {
			panic(fmt.Sprintf("config: bad default for %s: %v", k, err))
		}
	}
	return cfg
}

// Load reads the KEY=VALUE configuration file at configPath and layers
// MPU9150_* environment variables and the flags in fs over it. An empty
// configPath skips the file. fs may be nil.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag --%s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.WithField("path", v.ConfigFileUsed()).Debug("config: loaded file")
	}

	cfg := &Config{}
	keys := v.AllKeys()
	sort.Strings(keys)
	for _, k := range keys {
		key := strings.ToUpper(k)
		if err := cfg.setValue(key, strings.TrimSpace(v.GetString(k))); err != nil {
			return nil, fmt.Errorf("config %s: %w", key, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseByte(key, value string, max int) (byte, error) {
	n, err := strconv.ParseUint(value, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if int(n) > max {
		return 0, fmt.Errorf("%s must be 0-%d, got %d", key, max, n)
	}
	return byte(n), nil
}

func parseAddr(key, value string) (uint16, error) {
	n, err := strconv.ParseUint(value, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n > 0x7F {
		return 0, fmt.Errorf("%s must be a 7-bit address, got 0x%X", key, n)
	}
	return uint16(n), nil
}

func parseNonNegative(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %d", key, n)
	}
	return n, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	var err error
	switch key {
	// I2C
	case "I2C_BUS":
		c.I2CBus = value
	case "I2C_BACKEND":
		c.I2CBackend = strings.ToLower(value)
	case "I2C_SPEED_KHZ":
		c.I2CSpeedKHz, err = parseNonNegative(key, value)
	case "IMU_ADDR":
		c.IMUAddr, err = parseAddr(key, value)
	case "MAG_ADDR":
		c.MagAddr, err = parseAddr(key, value)

	// IMU Sensor Ranges
	case "IMU_ACCEL_RANGE":
		c.IMUAccelRange, err = parseByte(key, value, 3)
		if err != nil {
			return fmt.Errorf("%w (0=±2g, 1=±4g, 2=±8g, 3=±16g)", err)
		}
	case "IMU_GYRO_RANGE":
		c.IMUGyroRange, err = parseByte(key, value, 3)
		if err != nil {
			return fmt.Errorf("%w (0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s)", err)
		}
	case "IMU_CLOCK_SOURCE":
		c.IMUClockSource, err = parseByte(key, value, 7)

	// IMU Sample Rate Configuration
	case "IMU_DLPF_CFG":
		c.IMUDLPFConfig, err = parseByte(key, value, 7)
	case "IMU_SMPLRT_DIV":
		c.IMUSampleRateDiv, err = parseByte(key, value, 255)

	// Magnetometer timing
	case "MAG_UPDATE_PERIOD_MS":
		c.MagUpdatePeriodMS, err = parseNonNegative(key, value)
	case "MAG_READY_TIMEOUT_MS":
		c.MagReadyTimeoutMS, err = parseNonNegative(key, value)
	case "MAG_POLL_INTERVAL_US":
		c.MagPollIntervalUS, err = parseNonNegative(key, value)

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		c.IMUSampleInterval, err = parseNonNegative(key, value)

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_MAG":
		c.TopicMag = value

	// Register debug
	case "WEB_SERVER_PORT":
		c.WebServerPort, err = parseNonNegative(key, value)
		if err == nil && c.WebServerPort > 65535 {
			err = fmt.Errorf("WEB_SERVER_PORT must be 0-65535, got %d", c.WebServerPort)
		}
	case "REGISTER_DEBUG_ALLOWED_RANGES":
		c.RegisterDebugAllowedRanges = value

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		c.DisplayUpdateInterval, err = parseNonNegative(key, value)
	case "DISPLAY_CONTENT":
		c.DisplayContent = value

	case "LOG_LEVEL":
		if _, perr := log.ParseLevel(value); perr != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", value, perr)
		}
		c.LogLevel = value

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}
	return err
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.I2CBus == "" {
		return fmt.Errorf("I2C_BUS is required")
	}
	switch c.I2CBackend {
	case "periph", "dev":
	default:
		return fmt.Errorf("I2C_BACKEND must be periph or dev, got %q", c.I2CBackend)
	}
	if c.IMUAddr == 0 {
		return fmt.Errorf("IMU_ADDR is required")
	}
	if c.IMUSampleInterval == 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL is required")
	}
	switch c.DisplayContent {
	case "imu_raw", "imu_scaled", "orientation":
	default:
		return fmt.Errorf("DISPLAY_CONTENT must be imu_raw, imu_scaled or orientation, got %q", c.DisplayContent)
	}
	return nil
}

// Template renders the defaults as a KEY=VALUE file that Load accepts.
func Template() string {
	var b strings.Builder
	b.WriteString("# mpu9150 configuration\n")
	b.WriteString("# Every key may be overridden by " + EnvPrefix + "_<KEY> in the environment.\n\n")
	for _, k := range Keys() {
		fmt.Fprintf(&b, "%s=%s\n", k, defaults[k])
	}
	return b.String()
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string, fs *pflag.FlagSet) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath, fs)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
