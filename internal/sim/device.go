// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package sim implements an in-process X-Line sensor. It answers request
// frames the way the real firmware does, including device error replies
// and the initialization gate, and persists its memory through a storage
// backend. It backs the loopback transport and the protocol tests.
package sim

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/emgardner/keller-xline/internal/sim/model"
	"github.com/emgardner/keller-xline/internal/sim/persistence"
	"github.com/emgardner/keller-xline/xline/crc"
	"github.com/emgardner/keller-xline/xline/frame"
)

const transparentAddress = 250

// Device error codes emitted by the simulated firmware.
const (
	errNonImplementedFunction = 1
	errIncorrectMessageLength = 3
	errSavingValue            = 4
	errNotInitialized         = 32
)

// Identification reported by initialize-and-release.
const (
	deviceClass = 5
	deviceGroup = 20
	deviceYear  = 21
	deviceWeek  = 33
	deviceBuf   = 250
)

// Device is one simulated sensor on a bus.
type Device struct {
	mu          sync.Mutex
	mem         *model.Memory
	storage     persistence.Storage
	initialized bool
	channels    map[byte]float32
	status      byte
}

// NewDevice creates a sensor at the given bus address backed by storage.
func NewDevice(address byte, serial uint32, storage persistence.Storage) (*Device, error) {
	mem, err := storage.Load()
	if err != nil {
		return nil, err
	}
	mem.SetBusAddress(address)
	if mem.SerialNumber() == 0 {
		mem.SetSerialNumber(serial)
	}
	return &Device{
		mem:      mem,
		storage:  storage,
		channels: make(map[byte]float32),
	}, nil
}

// SetChannel sets the current reading of a measurement channel.
func (d *Device) SetChannel(ch byte, value float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channels[ch] = value
}

// SetStatus sets the status byte appended to channel replies.
func (d *Device) SetStatus(status byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
}

// Memory exposes the device memory, for test setup.
func (d *Device) Memory() *model.Memory {
	return d.mem
}

// Process consumes one request frame and returns the device's reply, or
// nil where a real sensor would stay silent (corrupt frame, not our
// address).
func (d *Device) Process(request []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(request) < 4 {
		return nil
	}
	length := len(request)
	sum := crc.Checksum(request[:length-2])
	if request[length-2] != byte(sum>>8) || request[length-1] != byte(sum) {
		return nil
	}

	addr := request[0]
	fc := request[1]
	payload := request[2 : length-2]

	// Address assignment is answered regardless of the current address;
	// the request's address field is the one being assigned.
	if fc != frame.FuncWriteAddress &&
		addr != d.mem.BusAddress() && addr != transparentAddress {
		return nil
	}

	if !d.initialized && fc != frame.FuncInitAndRelease {
		return d.errorReply(fc, errNotInitialized)
	}

	switch fc {
	case frame.FuncInitAndRelease:
		d.initialized = true
		return d.reply(fc, []byte{deviceClass, deviceGroup, deviceYear, deviceWeek, deviceBuf, d.status})

	case frame.FuncReadCoefficient:
		if len(payload) != 1 {
			return d.errorReply(fc, errIncorrectMessageLength)
		}
		value := d.mem.Coefficient(payload[0])
		out := make([]byte, 4)
		binary.BigEndian.PutUint32(out, math.Float32bits(value))
		return d.reply(fc, out)

	case frame.FuncWriteCoefficient:
		if len(payload) != 5 {
			return d.errorReply(fc, errIncorrectMessageLength)
		}
		value := math.Float32frombits(binary.BigEndian.Uint32(payload[1:]))
		d.mem.SetCoefficient(payload[0], value)
		d.storage.OnWrite()
		return d.reply(fc, []byte{payload[0]})

	case frame.FuncReadConfiguration:
		if len(payload) != 1 {
			return d.errorReply(fc, errIncorrectMessageLength)
		}
		return d.reply(fc, []byte{d.mem.Configuration(payload[0]), 0, 0, 0})

	case frame.FuncWriteConfiguration:
		if len(payload) != 2 {
			return d.errorReply(fc, errIncorrectMessageLength)
		}
		d.mem.SetConfiguration(payload[0], payload[1])
		d.storage.OnWrite()
		return d.reply(fc, []byte{payload[0]})

	case frame.FuncWriteAddress:
		if len(payload) != 0 {
			return d.errorReply(fc, errIncorrectMessageLength)
		}
		d.mem.SetBusAddress(addr)
		d.storage.OnWrite()
		return d.reply(fc, []byte{addr})

	case frame.FuncReadSerialNumber:
		out := make([]byte, 4)
		binary.BigEndian.PutUint32(out, d.mem.SerialNumber())
		return d.reply(fc, out)

	case frame.FuncReadChannelFloat:
		if len(payload) != 1 {
			return d.errorReply(fc, errIncorrectMessageLength)
		}
		out := make([]byte, 5)
		binary.BigEndian.PutUint32(out, math.Float32bits(d.channels[payload[0]]))
		out[4] = d.status
		return d.reply(fc, out)

	case frame.FuncReadChannelInt:
		if len(payload) != 1 {
			return d.errorReply(fc, errIncorrectMessageLength)
		}
		out := make([]byte, 5)
		// Integer channel readings are scaled by 1000.
		binary.BigEndian.PutUint32(out, uint32(int32(d.channels[payload[0]]*1000)))
		out[4] = d.status
		return d.reply(fc, out)

	case frame.FuncZero:
		switch len(payload) {
		case 1:
			d.applyZero(payload[0], 0, false)
		case 5:
			value := math.Float32frombits(binary.BigEndian.Uint32(payload[1:]))
			d.applyZero(payload[0], value, true)
		default:
			return d.errorReply(fc, errIncorrectMessageLength)
		}
		d.storage.OnWrite()
		return d.reply(fc, []byte{payload[0]})
	}

	return d.errorReply(fc, errNonImplementedFunction)
}

// applyZero adjusts the offset coefficient of the zeroed channel. Set
// commands make the current reading report as the reference (default 0);
// reset commands restore the factory offset.
func (d *Device) applyZero(cmd byte, reference float32, withValue bool) {
	var coeff byte
	var ch byte
	switch cmd {
	case 0, 1:
		coeff, ch = 64, 1 // P1
	case 2, 3:
		coeff, ch = 66, 2 // P2
	case 6, 7:
		coeff, ch = 70, 0 // CH0
	case 8, 9:
		coeff, ch = 72, 3 // T
	case 10, 11:
		coeff, ch = 74, 4 // TOB1
	case 12, 13:
		coeff, ch = 76, 5 // TOB2
	default:
		return
	}
	if cmd%2 == 1 { // reset
		d.mem.SetCoefficient(coeff, 0)
		return
	}
	offset := reference - d.channels[ch]
	if !withValue {
		offset = -d.channels[ch]
	}
	d.mem.SetCoefficient(coeff, offset)
}

func (d *Device) reply(fc byte, payload []byte) []byte {
	raw, err := frame.Encode(d.mem.BusAddress(), fc, payload)
	if err != nil {
		return nil
	}
	return raw
}

// errorReply builds a device error frame. The error layout itself is
// minimal, but the master reads the fixed reply length of the function it
// issued, so the frame is padded out to that length.
func (d *Device) errorReply(fc, code byte) []byte {
	length, ok := frame.ResponseLength(fc)
	if !ok || length < frame.MinSize {
		length = frame.MinSize
	}
	raw := make([]byte, length)
	raw[0] = d.mem.BusAddress()
	raw[1] = fc | 0x80
	raw[2] = code
	sum := crc.Checksum(raw[:3])
	raw[3] = byte(sum >> 8)
	raw[4] = byte(sum)
	return raw
}
