// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package model holds the register memory of a simulated X-Line sensor.
// All regions are plain byte slices so a persistence backend can alias
// them directly onto a file or memory map.
package model

import (
	"encoding/binary"
	"math"
	"sync"
)

const (
	// One slot per possible identifier byte.
	NumCoefficients   = 256
	NumConfigurations = 256
)

// Memory is the persistent state of one simulated sensor. Multi-byte
// values are stored big-endian, matching the wire format, so a memory
// image is portable across hosts.
type Memory struct {
	mu sync.Mutex

	// Coefficients holds NumCoefficients big-endian float32 values.
	Coefficients []byte
	// Configurations holds one byte per configuration variable.
	Configurations []byte
	// Serial holds the big-endian 32-bit serial number.
	Serial []byte
	// Address holds the configured bus address.
	Address []byte
}

// NewMemory allocates a zeroed memory image.
func NewMemory() *Memory {
	return &Memory{
		Coefficients:   make([]byte, NumCoefficients*4),
		Configurations: make([]byte, NumConfigurations),
		Serial:         make([]byte, 4),
		Address:        make([]byte, 1),
	}
}

// Coefficient returns the stored value for an identifier.
func (m *Memory) Coefficient(id byte) float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	bits := binary.BigEndian.Uint32(m.Coefficients[int(id)*4:])
	return math.Float32frombits(bits)
}

// SetCoefficient stores a value for an identifier.
func (m *Memory) SetCoefficient(id byte, value float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	binary.BigEndian.PutUint32(m.Coefficients[int(id)*4:], math.Float32bits(value))
}

// Configuration returns the stored byte for a configuration variable.
func (m *Memory) Configuration(id byte) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Configurations[id]
}

// SetConfiguration stores a configuration variable.
func (m *Memory) SetConfiguration(id, value byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Configurations[id] = value
}

// SerialNumber returns the device serial number.
func (m *Memory) SerialNumber() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return binary.BigEndian.Uint32(m.Serial)
}

// SetSerialNumber stores the device serial number.
func (m *Memory) SetSerialNumber(serial uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	binary.BigEndian.PutUint32(m.Serial, serial)
}

// BusAddress returns the configured bus address.
func (m *Memory) BusAddress() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Address[0]
}

// SetBusAddress stores the configured bus address.
func (m *Memory) SetBusAddress(addr byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Address[0] = addr
}
