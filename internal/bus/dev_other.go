// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build !linux

package bus

import "fmt"

// OpenDev is only available on linux.
func OpenDev(path string) (Bus, error) {
	return nil, fmt.Errorf("bus: %s: dev backend unsupported on this OS (need linux)", path)
}
