// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bus

import "testing"

func TestDevPath(t *testing.T) {
	cases := map[string]string{
		"":           "/dev/i2c-1",
		"0":          "/dev/i2c-0",
		"3":          "/dev/i2c-3",
		"/dev/i2c-7": "/dev/i2c-7",
	}
	for in, want := range cases {
		if got := devPath(in); got != want {
			t.Fatalf("devPath(%q)=%q want %q", in, got, want)
		}
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("spi", "1", 0); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
