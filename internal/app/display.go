// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/orientation"
	"github.com/relabs-tech/mpu9150/internal/register"
)

// Display content choices.
const (
	ContentIMURaw      = "imu_raw"
	ContentIMUScaled   = "imu_scaled"
	ContentOrientation = "orientation"
)

const (
	displayW    = 128
	displayH    = 64
	lineSpacing = 13
)

// DisplayData holds the latest data for display
type DisplayData struct {
	mu sync.RWMutex

	imuRaw  imu.IMURaw
	haveIMU bool

	pose     orientation.Pose
	havePose bool
}

func (d *DisplayData) setIMU(r imu.IMURaw) {
	d.mu.Lock()
	d.imuRaw, d.haveIMU = r, true
	d.mu.Unlock()
}

func (d *DisplayData) setPose(p orientation.Pose) {
	d.mu.Lock()
	d.pose, d.havePose = p, true
	d.mu.Unlock()
}

// RunDisplay renders the configured content on an SSD1306 until ctx is done.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Info("display: initialized")

	if err := dev.Draw(dev.Bounds(), renderLines("MPU-9150", "", "connecting..."), image.Point{}); err != nil {
		log.Warnf("display: error showing splash: %v", err)
	}

	data := &DisplayData{}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	switch cfg.DisplayContent {
	case ContentIMURaw, ContentIMUScaled:
		err = subscribeJSON(client, cfg.TopicIMU, data.setIMU)
	case ContentOrientation:
		err = subscribeJSON(client, cfg.TopicPose, data.setPose)
	default:
		err = fmt.Errorf("unknown display content type: %s", cfg.DisplayContent)
	}
	if err != nil {
		return err
	}

	accel := register.AccelRange(cfg.IMUAccelRange)
	gyro := register.GyroRange(cfg.IMUGyroRange)

	ticker := time.NewTicker(time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Info("display: starting update loop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		img := renderContent(cfg.DisplayContent, data, accel, gyro)
		if err := dev.Draw(dev.Bounds(), img, image.Point{}); err != nil {
			log.Errorf("display: error updating display: %v", err)
		}
	}
}

func renderContent(content string, data *DisplayData, accel register.AccelRange, gyro register.GyroRange) *image1bit.VerticalLSB {
	data.mu.RLock()
	raw, haveIMU := data.imuRaw, data.haveIMU
	pose, havePose := data.pose, data.havePose
	data.mu.RUnlock()

	switch content {
	case ContentIMURaw:
		if !haveIMU {
			return renderLines("", "IMU raw", "Waiting...")
		}
		return renderLines(
			fmt.Sprintf("A:%6d%6d", raw.Ax, raw.Ay),
			fmt.Sprintf("  %6d", raw.Az),
			fmt.Sprintf("G:%6d%6d", raw.Gx, raw.Gy),
			fmt.Sprintf("  %6d", raw.Gz),
		)
	case ContentIMUScaled:
		if !haveIMU {
			return renderLines("", "IMU", "Waiting...")
		}
		s := raw.Scale(accel, gyro)
		return renderLines(
			fmt.Sprintf("A %5.2f %5.2f", s.Ax, s.Ay),
			fmt.Sprintf("  %5.2f g", s.Az),
			fmt.Sprintf("G %5.0f %5.0f", s.Gx, s.Gy),
			fmt.Sprintf("  %5.0f dps %4.1fC", s.Gz, s.TempC),
		)
	default:
		if !havePose {
			return renderLines("", "Orientation", "Waiting...")
		}
		return renderLines(
			fmt.Sprintf("R: %6.1f", pose.Roll),
			fmt.Sprintf("P: %6.1f", pose.Pitch),
			fmt.Sprintf("Y: %6.1f", pose.Yaw),
		)
	}
}

// renderLines draws up to four lines of basicfont text on a blank frame.
func renderLines(lines ...string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayW, displayH))
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	for i, line := range lines {
		if line == "" {
			continue
		}
		drawer.Dot = fixed.P(0, lineSpacing*(i+1))
		drawer.DrawString(line)
	}
	return img
}
