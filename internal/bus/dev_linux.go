// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

//go:build linux

package bus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/unix"
)

// I2C_RDWR lets a register read go out as write+read with a repeated start.
const (
	i2cMrd  = 0x0001
	i2cRdwr = 0x0707
)

type i2cMsg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type rdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

type devBus struct {
	f    *os.File
	path string
}

// OpenDev opens a /dev/i2c-N node.
func OpenDev(path string) (Bus, error) {
	path = filepath.Clean(path)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("bus: open %s: %w", path, err)
	}
	return &devBus{f: f, path: path}, nil
}

func (b *devBus) Conn(addr uint16) (Conn, error) {
	if err := checkAddr(addr); err != nil {
		return nil, err
	}
	return &devConn{bus: b, addr: addr}, nil
}

func (b *devBus) Close() error {
	if b == nil || b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	return err
}

type devConn struct {
	bus  *devBus
	addr uint16
}

func (d *devConn) ReadBytes(reg byte, n int) ([]byte, error) {
	if n <= 0 {
		return nil, errors.New("bus: read of zero bytes")
	}
	buf := make([]byte, n)
	if err := d.tx([]byte{reg}, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *devConn) ReadRegU8(reg byte) (byte, error) {
	var b [1]byte
	if err := d.tx([]byte{reg}, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *devConn) WriteBytes(reg byte, data []byte) error {
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	return d.tx(w, nil)
}

func (d *devConn) tx(w, r []byte) error {
	if d == nil || d.bus == nil || d.bus.f == nil {
		return errors.New("bus: device is closed")
	}
	if err := checkAddr(d.addr); err != nil {
		return err
	}

	msgs := make([]i2cMsg, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, i2cMsg{addr: d.addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))})
	}
	if len(r) > 0 {
		msgs = append(msgs, i2cMsg{addr: d.addr, flags: i2cMrd, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))})
	}
	if len(msgs) == 0 {
		return nil
	}

	data := rdwrData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.bus.f.Fd(), uintptr(i2cRdwr), uintptr(unsafe.Pointer(&data)))
	if errno != 0 {
		return fmt.Errorf("bus: %s addr 0x%02X: %w", d.bus.path, d.addr, errno)
	}
	return nil
}
