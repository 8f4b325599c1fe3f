// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	imu_raw "github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// CalibrationResult is written as JSON at the end of a calibration run.
type CalibrationResult struct {
	Version   int       `json:"version"`
	IMU       string    `json:"imu"`
	Timestamp time.Time `json:"timestamp"`

	// Gyroscope, in raw counts
	GyroBiasX        float64 `json:"gyro_bias_x"`
	GyroBiasY        float64 `json:"gyro_bias_y"`
	GyroBiasZ        float64 `json:"gyro_bias_z"`
	GyroStaticStdDev float64 `json:"gyro_static_stddev"`

	// Magnetometer hard-iron offsets and diagonal soft-iron scale
	MagOffsetX     float64 `json:"mag_offset_x"`
	MagOffsetY     float64 `json:"mag_offset_y"`
	MagOffsetZ     float64 `json:"mag_offset_z"`
	MagScaleX      float64 `json:"mag_scale_x"`
	MagScaleY      float64 `json:"mag_scale_y"`
	MagScaleZ      float64 `json:"mag_scale_z"`
	MagConfidence  float64 `json:"mag_confidence"`
	MagSampleCount int     `json:"mag_sample_count"`

	TotalSamples int `json:"total_samples"`
}

// CalibrationPlan sets how many samples each phase takes and how far apart.
type CalibrationPlan struct {
	GyroSamples int
	MagSamples  int
	Interval    time.Duration
}

// DefaultCalibrationPlan takes 10s of still gyro data and 20s of mag data.
var DefaultCalibrationPlan = CalibrationPlan{GyroSamples: 100, MagSamples: 200, Interval: 100 * time.Millisecond}

// Calibrate collects the gyro phase (device still) then the magnetometer
// phase (device rotated through all orientations) from src.
func Calibrate(ctx context.Context, src imu_raw.IMURawSource, plan CalibrationPlan) (*CalibrationResult, error) {
	res := &CalibrationResult{Version: 1, Timestamp: time.Now()}

	log.Info("calibration: gyro phase, keep the device still")
	gyro, err := collect(ctx, src, plan.GyroSamples, plan.Interval, func(r imu_raw.IMURaw) [3]float64 {
		return [3]float64{float64(r.Gx), float64(r.Gy), float64(r.Gz)}
	})
	if err != nil {
		return nil, fmt.Errorf("gyro phase: %w", err)
	}
	res.GyroBiasX, res.GyroBiasY, res.GyroBiasZ = mean(gyro, 0), mean(gyro, 1), mean(gyro, 2)
	res.GyroStaticStdDev = (stddev(gyro, 0) + stddev(gyro, 1) + stddev(gyro, 2)) / 3.0
	res.TotalSamples += len(gyro)

	log.Info("calibration: magnetometer phase, rotate the device slowly in all directions")
	mag, err := collect(ctx, src, plan.MagSamples, plan.Interval, func(r imu_raw.IMURaw) [3]float64 {
		return [3]float64{float64(r.Mx), float64(r.My), float64(r.Mz)}
	})
	if err != nil {
		return nil, fmt.Errorf("magnetometer phase: %w", err)
	}
	fitMag(res, mag)
	res.TotalSamples += len(mag)
	return res, nil
}

func collect(ctx context.Context, src imu_raw.IMURawSource, n int, every time.Duration, pick func(imu_raw.IMURaw) [3]float64) ([][3]float64, error) {
	samples := make([][3]float64, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 && every > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(every):
			}
		}
		r, err := src.ReadRaw()
		if err != nil {
			return nil, err
		}
		samples = append(samples, pick(r))
	}
	return samples, nil
}

// fitMag computes hard-iron offsets (box center) and diagonal soft-iron
// scale factors (mean range / axis range).
func fitMag(res *CalibrationResult, samples [][3]float64) {
	if len(samples) == 0 {
		return
	}
	lo := [3]float64{math.MaxFloat64, math.MaxFloat64, math.MaxFloat64}
	hi := [3]float64{-math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64}
	for _, s := range samples {
		for a := 0; a < 3; a++ {
			lo[a] = math.Min(lo[a], s[a])
			hi[a] = math.Max(hi[a], s[a])
		}
	}
	var rng [3]float64
	for a := 0; a < 3; a++ {
		rng[a] = hi[a] - lo[a]
	}
	res.MagOffsetX = (hi[0] + lo[0]) / 2.0
	res.MagOffsetY = (hi[1] + lo[1]) / 2.0
	res.MagOffsetZ = (hi[2] + lo[2]) / 2.0

	avg := (rng[0] + rng[1] + rng[2]) / 3.0
	scale := func(r float64) float64 {
		if r == 0 {
			return 1
		}
		return avg / r
	}
	res.MagScaleX, res.MagScaleY, res.MagScaleZ = scale(rng[0]), scale(rng[1]), scale(rng[2])

	if maxR := math.Max(rng[0], math.Max(rng[1], rng[2])); maxR > 0 {
		res.MagConfidence = math.Min(rng[0], math.Min(rng[1], rng[2])) / maxR * 100.0
	}
	res.MagSampleCount = len(samples)
}

// RunCalibrate calibrates the configured IMU and writes the result to out,
// or to <addr>_<unix>_mpu9150_calibration.json when out is empty.
func RunCalibrate(ctx context.Context, out string) error {
	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		return fmt.Errorf("failed to initialize IMU: %w", err)
	}
	defer imuManager.Close()

	src, err := imuManager.Source()
	if err != nil {
		return err
	}
	if !src.Dev().MagAvailable() {
		return errors.New("magnetometer not available, cannot calibrate")
	}

	res, err := Calibrate(ctx, src, DefaultCalibrationPlan)
	if err != nil {
		return err
	}
	res.IMU = src.Name()

	if out == "" {
		out = fmt.Sprintf("%s_%d_mpu9150_calibration.json", src.Name(), res.Timestamp.Unix())
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal calibration results: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write calibration file: %w", err)
	}
	log.Infof("calibration: saved results to %s (gyro bias %.1f/%.1f/%.1f, mag confidence %.0f%%)",
		out, res.GyroBiasX, res.GyroBiasY, res.GyroBiasZ, res.MagConfidence)
	return nil
}

func mean(data [][3]float64, axis int) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v[axis]
	}
	return sum / float64(len(data))
}

func stddev(data [][3]float64, axis int) float64 {
	if len(data) == 0 {
		return 0
	}
	m := mean(data, axis)
	variance := 0.0
	for _, v := range data {
		diff := v[axis] - m
		variance += diff * diff
	}
	variance /= float64(len(data))
	return math.Sqrt(variance)
}
