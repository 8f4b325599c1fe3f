// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu9150/internal/config"
	imu_raw "github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/orientation"
)

func formatPose(p orientation.Pose) string {
	return fmt.Sprintf("[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f", p.Roll, p.Pitch, p.Yaw)
}

func formatIMU(s imu_raw.IMURaw) string {
	return fmt.Sprintf("[IMU %s] ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d  mx=%6d my=%6d mz=%6d",
		s.Source, s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz, s.Mx, s.My, s.Mz)
}

func formatMag(m MagSample) string {
	state := "ok"
	if !m.Available {
		state = "untrusted"
	}
	return fmt.Sprintf("[MAG ]  mx=%6d my=%6d mz=%6d  |B|=%8.1f  %s", m.Mx, m.My, m.Mz, m.Norm, state)
}

// RunConsoleMQTT prints every pose, IMU and magnetometer message to w
// until ctx is done.
func RunConsoleMQTT(ctx context.Context, w io.Writer) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicPose, func(p orientation.Pose) {
		fmt.Fprintln(w, formatPose(p))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicIMU, func(s imu_raw.IMURaw) {
		fmt.Fprintln(w, formatIMU(s))
	}); err != nil {
		return err
	}
	if err := subscribeJSON(client, cfg.TopicMag, func(m MagSample) {
		fmt.Fprintln(w, formatMag(m))
	}); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("console: shutting down")
	return nil
}
