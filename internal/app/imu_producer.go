// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu9150/internal/config"
	imu_raw "github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/orientation"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// MagSample is the payload of the magnetometer topic.
type MagSample struct {
	Mx        int16   `json:"mx"`
	My        int16   `json:"my"`
	Mz        int16   `json:"mz"`
	Norm      float64 `json:"norm"`
	Available bool    `json:"available"`
	Time      string  `json:"time"`
}

// PoseFromRaw computes roll and pitch from the accelerometer and, when the
// magnetometer passed its identity check, a tilt-compensated yaw.
func PoseFromRaw(raw imu_raw.IMURaw) orientation.Pose {
	ax, ay, az := float64(raw.Ax), float64(raw.Ay), float64(raw.Az)
	if !raw.MagOK {
		return orientation.ComputePoseFromAccel(ax, ay, az)
	}
	mx, my, mz := orientation.AlignMag(float64(raw.Mx), float64(raw.My), float64(raw.Mz))
	return orientation.ComputePose(ax, ay, az, mx, my, mz)
}

// NewMagSample builds the magnetometer payload of raw.
func NewMagSample(raw imu_raw.IMURaw, t time.Time) MagSample {
	return MagSample{
		Mx:        raw.Mx,
		My:        raw.My,
		Mz:        raw.Mz,
		Norm:      raw.MagNorm(),
		Available: raw.MagOK,
		Time:      t.Format(time.RFC3339Nano),
	}
}

// RunProducer samples the IMU every IMU_SAMPLE_INTERVAL and publishes the
// raw sample, the pose and the magnetometer reading until ctx is done.
func RunProducer(ctx context.Context) error {
	log.Info("starting mpu9150 producer (IMU → MQTT)")
	cfg := config.Get()

	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize IMU: %w", err)
	}
	defer imuManager.Close()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	log.Info("connected to MQTT, starting publish loop")

	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		var t time.Time
		select {
		case <-ctx.Done():
			log.Info("producer: shutting down")
			return nil
		case t = <-ticker.C:
		}

		raw, err := imuManager.ReadIMU()
		if err != nil {
			log.Errorf("error reading IMU: %v", err)
			continue
		}
		pose := PoseFromRaw(raw)

		if err := publishJSON(client, cfg.TopicIMU, raw); err != nil {
			log.Error(err)
			continue
		}
		if err := publishJSON(client, cfg.TopicPose, pose); err != nil {
			log.Error(err)
			continue
		}
		mag := NewMagSample(raw, t)
		if err := publishJSON(client, cfg.TopicMag, mag); err != nil {
			log.Error(err)
		}

		log.Debugf("tick: pose R=%.2f P=%.2f Y=%.2f | accel ax=%d ay=%d az=%d | gyro gx=%d gy=%d gz=%d | mag mx=%d my=%d mz=%d | |B|=%.1f",
			pose.Roll, pose.Pitch, pose.Yaw,
			raw.Ax, raw.Ay, raw.Az,
			raw.Gx, raw.Gy, raw.Gz,
			raw.Mx, raw.My, raw.Mz,
			mag.Norm,
		)
	}
}
