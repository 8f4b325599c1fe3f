// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bustest provides an in-memory I2C bus for tests.
package bustest

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/mpu9150/internal/bus"
)

// Op is one recorded bus transaction.
type Op struct {
	Write bool
	Reg   byte
	N     int    // bytes read
	Data  []byte // bytes written
}

// Device is a 256-byte register file behind one address.
type Device struct {
	mu   sync.Mutex
	Regs [256]byte
	Ops  []Op

	seq     map[byte][]byte
	readErr map[byte]error
	onWrite func(reg byte, data []byte)
}

// NewDevice returns a device with the given initial register values.
func NewDevice(init map[byte]byte) *Device {
	d := &Device{seq: map[byte][]byte{}, readErr: map[byte]error{}}
	for r, v := range init {
		d.Regs[r] = v
	}
	return d
}

// Sequence scripts successive single-byte reads of reg. Once exhausted,
// reads fall back to the register file.
func (d *Device) Sequence(reg byte, vals ...byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq[reg] = append(d.seq[reg], vals...)
}

// FailReads makes every read starting at reg return err.
func (d *Device) FailReads(reg byte, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readErr[reg] = err
}

// OnWrite installs a hook called after each write.
func (d *Device) OnWrite(f func(reg byte, data []byte)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onWrite = f
}

// Set writes register values without recording an operation.
func (d *Device) Set(reg byte, vals ...byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.Regs[reg:], vals)
}

// Get returns a register value.
func (d *Device) Get(reg byte) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Regs[reg]
}

// Reads returns the number of read transactions, optionally only those at reg.
func (d *Device) Reads(reg ...byte) int {
	return d.count(false, reg)
}

// Writes returns the number of write transactions, optionally only those at reg.
func (d *Device) Writes(reg ...byte) int {
	return d.count(true, reg)
}

// Transactions returns the total number of recorded operations.
func (d *Device) Transactions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Ops)
}

// Reset clears the operation log.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Ops = nil
}

func (d *Device) count(write bool, reg []byte) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, op := range d.Ops {
		if op.Write != write {
			continue
		}
		if len(reg) > 0 && op.Reg != reg[0] {
			continue
		}
		n++
	}
	return n
}

func (d *Device) ReadBytes(reg byte, n int) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Ops = append(d.Ops, Op{Reg: reg, N: n})
	if err := d.readErr[reg]; err != nil {
		return nil, err
	}
	if n <= 0 || int(reg)+n > len(d.Regs) {
		return nil, fmt.Errorf("bustest: bad read 0x%02X+%d", reg, n)
	}
	if n == 1 {
		if s := d.seq[reg]; len(s) > 0 {
			d.seq[reg] = s[1:]
			return []byte{s[0]}, nil
		}
	}
	out := make([]byte, n)
	copy(out, d.Regs[reg:int(reg)+n])
	return out, nil
}

func (d *Device) ReadRegU8(reg byte) (byte, error) {
	b, err := d.ReadBytes(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Device) WriteBytes(reg byte, data []byte) error {
	d.mu.Lock()
	if int(reg)+len(data) > len(d.Regs) {
		d.mu.Unlock()
		return fmt.Errorf("bustest: bad write 0x%02X+%d", reg, len(data))
	}
	d.Ops = append(d.Ops, Op{Write: true, Reg: reg, Data: append([]byte(nil), data...)})
	copy(d.Regs[reg:], data)
	hook := d.onWrite
	d.mu.Unlock()
	if hook != nil {
		hook(reg, data)
	}
	return nil
}

// Bus maps addresses to fake devices.
type Bus struct {
	mu      sync.Mutex
	devices map[uint16]*Device
	closed  bool
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{devices: map[uint16]*Device{}}
}

// Attach places d at addr.
func (b *Bus) Attach(addr uint16, d *Device) *Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.devices[addr] = d
	return d
}

// Closed reports whether Close was called.
func (b *Bus) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Bus) Conn(addr uint16) (bus.Conn, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.devices[addr]
	if !ok {
		return nil, fmt.Errorf("bustest: no device at 0x%02X", addr)
	}
	return d, nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
