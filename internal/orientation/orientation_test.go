// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestComputePoseFromAccel(t *testing.T) {
	cases := []struct {
		name       string
		ax, ay, az float64
		roll       float64
		pitch      float64
	}{
		{"level", 0, 0, 1, 0, 0},
		{"rolled right", 0, 1, 0, 90, 0},
		{"nose down", 1, 0, 0, 0, -90},
		{"45 roll", 0, 1, 1, 45, 0},
		{"scale free", 0, 0, 8192, 0, 0},
	}
	for _, c := range cases {
		p := ComputePoseFromAccel(c.ax, c.ay, c.az)
		if !near(p.Roll, c.roll) || !near(p.Pitch, c.pitch) || p.Yaw != 0 {
			t.Fatalf("%s: got %+v want roll=%v pitch=%v", c.name, p, c.roll, c.pitch)
		}
	}
}

func TestComputePose_LevelHeading(t *testing.T) {
	cases := []struct {
		mx, my float64
		yaw    float64
	}{
		{1, 0, 0},
		{0, -1, 90},
		{-1, 0, 180},
		{0, 1, 270},
		{1, -1, 45},
	}
	for _, c := range cases {
		p := ComputePose(0, 0, 1, c.mx, c.my, 0.3)
		if !near(p.Yaw, c.yaw) {
			t.Fatalf("m=(%v,%v) yaw=%v want %v", c.mx, c.my, p.Yaw, c.yaw)
		}
	}
}

func TestComputePose_TiltCompensated(t *testing.T) {
	// Rolled 90° about X: the body Z axis now points where Y pointed.
	p := ComputePose(0, 1, 0, 1, 0, 0)
	if !near(p.Roll, 90) || !near(p.Yaw, 0) {
		t.Fatalf("got %+v", p)
	}
	p = ComputePose(0, 1, 0, 0, 0, 1)
	if !near(p.Yaw, 90) {
		t.Fatalf("yaw=%v want 90", p.Yaw)
	}
}

func TestAlignMag(t *testing.T) {
	x, y, z := AlignMag(1, 2, 3)
	if x != 2 || y != 1 || z != -3 {
		t.Fatalf("got %v,%v,%v", x, y, z)
	}
}
