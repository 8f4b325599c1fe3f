// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu9150/internal/config"
	imu_raw "github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// ScaledSource is a raw sample source that also knows its full-scale ranges.
type ScaledSource interface {
	imu_raw.IMURawSource
	Scale(imu_raw.IMURaw) imu_raw.IMUScaled
}

func formatScaled(s imu_raw.IMUScaled) string {
	return fmt.Sprintf("[SCALED] a=(%+6.3f %+6.3f %+6.3f) g  w=(%+8.2f %+8.2f %+8.2f) dps  T=%5.1fC",
		s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.TempC)
}

// StreamReadings prints count samples from src, one every interval. A
// count of zero streams until ctx is done.
func StreamReadings(ctx context.Context, w io.Writer, src ScaledSource, count int, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 0; count == 0 || n < count; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		raw, err := src.ReadRaw()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, formatIMU(raw))
		fmt.Fprintln(w, formatScaled(src.Scale(raw)))
		fmt.Fprintln(w, formatPose(PoseFromRaw(raw)))
	}
	return nil
}

// RunRead brings up the configured IMU and streams readings to w.
func RunRead(ctx context.Context, w io.Writer, count int) error {
	cfg := config.Get()
	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize IMU: %w", err)
	}
	defer imuManager.Close()

	src, err := imuManager.Source()
	if err != nil {
		return err
	}
	log.WithField("imu", src.Name()).Info("streaming readings")
	return StreamReadings(ctx, w, src, count, time.Duration(cfg.IMUSampleInterval)*time.Millisecond)
}
