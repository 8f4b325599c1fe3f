// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/mpu9150/internal/app"
	"github.com/relabs-tech/mpu9150/internal/config"
)

var RootCmd = &cobra.Command{
	Use:   "mpu9150",
	Short: "bench tools for the MPU-9150 accelerometer, gyroscope and magnetometer",
	Long: `mpu9150 drives an MPU-9150 over I2C.
Configuration is read from the file given by --config (default ./mpu9150_config.txt
when present), then MPU9150_<KEY> environment variables, then command line flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func rootFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "configuration file path")
	f.String("bus", "", "I2C bus name or /dev/i2c-N path")
	f.String("backend", "", "I2C backend: periph or dev")
	f.String("addr", "", "MPU-9150 address (0x68 or 0x69)")
	f.String("mag-addr", "", "magnetometer address")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("broker", "", "MQTT broker URL")
	f.String("port", "", "register debug web server port")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "init-config" {
		return nil
	}
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if _, err := os.Stat(config.DefaultPath); err == nil {
			path = config.DefaultPath
		}
	}
	if err := config.InitGlobal(path, cmd.Flags()); err != nil {
		return err
	}
	lvl, err := log.ParseLevel(config.Get().LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

var ProbeCmd = &cobra.Command{
	Use:        "probe",
	SuggestFor: []string{"pro", "prob"},
	Short:      "check the identity of the MPU-9150 and its magnetometer",
	Example:    `  mpu9150 probe --bus 1 --addr 0x69`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.RunProbe(cmd.OutOrStdout())
	},
}

func readCmdFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("count", "n", 0, "number of samples, 0 streams until interrupted")
}

var ReadCmd = &cobra.Command{
	Use:     "read",
	Short:   "stream accel, gyro, temperature, heading and pose",
	Example: `  mpu9150 read -n 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		n, _ := cmd.Flags().GetInt("count")
		return app.RunRead(ctx, cmd.OutOrStdout(), n)
	},
}

var ProduceCmd = &cobra.Command{
	Use:   "produce",
	Short: "publish IMU samples, pose and magnetometer readings to MQTT",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		return app.RunProducer(ctx)
	},
}

var ConsoleCmd = &cobra.Command{
	Use:   "console",
	Short: "print the MQTT feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		return app.RunConsoleMQTT(ctx, cmd.OutOrStdout())
	},
}

var DisplayCmd = &cobra.Command{
	Use:   "display",
	Short: "render the MQTT feed on an SSD1306 OLED",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		return app.RunDisplay(ctx)
	},
}

var RegDebugCmd = &cobra.Command{
	Use:   "regdebug",
	Short: "serve register peek/poke over a websocket",
	Long: `regdebug serves /ws, /api/imu and /api/map on WEB_SERVER_PORT.
Writes to the MPU-9150 are limited to REGISTER_DEBUG_ALLOWED_RANGES, e.g. 0x1B-0x1D,0x6B.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		return app.RunRegisterDebug(ctx)
	},
}

func dumpCmdFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "yaml", "output format: yaml or json")
}

var DumpCmd = &cobra.Command{
	Use:     "dump",
	Short:   "snapshot every catalogued register of both endpoints",
	Example: `  mpu9150 dump --format json > registers.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return app.RunDump(cmd.OutOrStdout(), format)
	},
}

func calibrateCmdFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "output file, default <addr>_<unix>_mpu9150_calibration.json")
}

var CalibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "measure gyro bias and magnetometer hard/soft-iron correction",
	Long: `calibrate first samples the gyroscope with the device held still, then the
magnetometer while the device is rotated through all orientations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()
		out, _ := cmd.Flags().GetString("output")
		return app.RunCalibrate(ctx, out)
	},
}

func initCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("print", false, "print config to stdout")
	cmd.Flags().BoolP("yes", "y", false, "overwrite")
	cmd.Flags().StringP("output", "o", config.DefaultPath, "output path")
}

var InitCmd = &cobra.Command{
	Use:        "init-config",
	SuggestFor: []string{"init", "ini"},
	Short:      "create a configuration template",
	Example: `  mpu9150 init-config --print
  mpu9150 init-config -o /etc/mpu9150_config.txt -y`,
	RunE: initConfig,
}

func initConfig(cmd *cobra.Command, args []string) error {
	if p, _ := cmd.Flags().GetBool("print"); p {
		_, err := fmt.Fprint(cmd.OutOrStdout(), config.Template())
		return err
	}
	out, _ := cmd.Flags().GetString("output")
	yes, _ := cmd.Flags().GetBool("yes")
	if _, err := os.Stat(out); err == nil && !yes {
		return fmt.Errorf("%s already exists, use -y to overwrite", out)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(out, []byte(config.Template()), 0o644); err != nil {
		return err
	}
	log.Infof("configuration written to %s", out)
	return nil
}

func getRootCmd() *cobra.Command {
	rootFlags(RootCmd)

	RootCmd.AddCommand(ProbeCmd)

	readCmdFlags(ReadCmd)
	RootCmd.AddCommand(ReadCmd)

	RootCmd.AddCommand(ProduceCmd, ConsoleCmd, DisplayCmd, RegDebugCmd)

	dumpCmdFlags(DumpCmd)
	RootCmd.AddCommand(DumpCmd)

	calibrateCmdFlags(CalibrateCmd)
	RootCmd.AddCommand(CalibrateCmd)

	initCmdFlags(InitCmd)
	RootCmd.AddCommand(InitCmd)

	return RootCmd
}

func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
