// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package sim

import (
	"bytes"
	"testing"

	"github.com/emgardner/keller-xline/internal/sim/persistence"
	"github.com/emgardner/keller-xline/xline/crc"
	"github.com/emgardner/keller-xline/xline/frame"
)

func newTestDevice(t *testing.T) *Device {
	t.Helper()
	d, err := NewDevice(1, 1234567, persistence.NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	return d
}

// request builds a valid request frame.
func request(t *testing.T, address, funcCode byte, payload []byte) []byte {
	t.Helper()
	raw, err := frame.Encode(address, funcCode, payload)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	return raw
}

// initialize runs the initialize-and-release exchange.
func initialize(t *testing.T, d *Device) {
	t.Helper()
	reply := d.Process(request(t, 1, frame.FuncInitAndRelease, nil))
	if reply == nil || reply[1] != frame.FuncInitAndRelease {
		t.Fatalf("initialization failed, reply % X", reply)
	}
}

func TestRefusesBeforeInitialization(t *testing.T) {
	d := newTestDevice(t)

	reply := d.Process(request(t, 1, frame.FuncReadCoefficient, []byte{64}))
	if len(reply) != 8 {
		t.Fatalf("reply length = %d, want padded 8", len(reply))
	}
	if reply[1] != frame.FuncReadCoefficient|0x80 || reply[2] != errNotInitialized {
		t.Errorf("reply = % X, want device error 32", reply)
	}
}

func TestSilentOnCorruptRequest(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)

	raw := request(t, 1, frame.FuncReadCoefficient, []byte{64})
	raw[2] ^= 0xFF
	if reply := d.Process(raw); reply != nil {
		t.Errorf("device answered a corrupt request: % X", reply)
	}
}

func TestSilentOnForeignAddress(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)

	if reply := d.Process(request(t, 9, frame.FuncReadCoefficient, []byte{64})); reply != nil {
		t.Errorf("device answered a foreign address: % X", reply)
	}
	if reply := d.Process(request(t, 250, frame.FuncReadCoefficient, []byte{64})); reply == nil {
		t.Error("device ignored the transparent address")
	}
}

func TestCoefficientRoundTrip(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)

	payload := []byte{65, 0x3F, 0x80, 0x00, 0x00} // gain factor P1 = 1.0
	reply := d.Process(request(t, 1, frame.FuncWriteCoefficient, payload))
	if reply == nil || reply[1] != frame.FuncWriteCoefficient {
		t.Fatalf("write rejected: % X", reply)
	}

	reply = d.Process(request(t, 1, frame.FuncReadCoefficient, []byte{65}))
	resp, err := frame.Decode(reply)
	if err != nil {
		t.Fatalf("decoding read reply: %v", err)
	}
	if got := resp.Float32(); got != 1.0 {
		t.Errorf("coefficient = %v, want 1.0", got)
	}
}

func TestConfigurationRoundTrip(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)

	d.Process(request(t, 1, frame.FuncWriteConfiguration, []byte{10, 9}))
	reply := d.Process(request(t, 1, frame.FuncReadConfiguration, []byte{10}))
	resp, err := frame.Decode(reply)
	if err != nil {
		t.Fatalf("decoding read reply: %v", err)
	}
	if resp.Byte() != 9 {
		t.Errorf("configuration = %d, want 9", resp.Byte())
	}
}

func TestIncorrectMessageLength(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)

	reply := d.Process(request(t, 1, frame.FuncWriteCoefficient, []byte{65, 1}))
	if reply[1] != frame.FuncWriteCoefficient|0x80 || reply[2] != errIncorrectMessageLength {
		t.Errorf("reply = % X, want device error 3", reply)
	}
}

func TestWriteAddress(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)

	reply := d.Process(request(t, 42, frame.FuncWriteAddress, nil))
	resp, err := frame.Decode(reply)
	if err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if resp.Byte() != 42 || resp.Address != 42 {
		t.Errorf("confirmed address = %d from %d, want 42", resp.Byte(), resp.Address)
	}

	// The device now only answers its new address.
	if reply := d.Process(request(t, 1, frame.FuncReadSerialNumber, nil)); reply != nil {
		t.Error("device still answers its old address")
	}
}

func TestReadSerialNumber(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)

	reply := d.Process(request(t, 1, frame.FuncReadSerialNumber, nil))
	resp, err := frame.Decode(reply)
	if err != nil {
		t.Fatalf("decoding reply: %v", err)
	}
	if resp.Uint32() != 1234567 {
		t.Errorf("serial = %d, want 1234567", resp.Uint32())
	}
}

func TestChannelReadings(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)
	d.SetChannel(1, 10.5)
	d.SetStatus(4)

	reply := d.Process(request(t, 1, frame.FuncReadChannelFloat, []byte{1}))
	resp, err := frame.Decode(reply)
	if err != nil {
		t.Fatalf("decoding float reply: %v", err)
	}
	if resp.Float32() != 10.5 || resp.Payload[4] != 4 {
		t.Errorf("reading = %v status %d, want 10.5 status 4", resp.Float32(), resp.Payload[4])
	}

	reply = d.Process(request(t, 1, frame.FuncReadChannelInt, []byte{1}))
	resp, err = frame.Decode(reply)
	if err != nil {
		t.Fatalf("decoding int reply: %v", err)
	}
	if resp.Int32() != 10500 {
		t.Errorf("scaled reading = %d, want 10500", resp.Int32())
	}
}

func TestZeroAdjustsOffset(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)
	d.SetChannel(1, 2.5)

	d.Process(request(t, 1, frame.FuncZero, []byte{0})) // set zero P1
	if got := d.Memory().Coefficient(64); got != -2.5 {
		t.Errorf("offset after zero = %v, want -2.5", got)
	}

	d.Process(request(t, 1, frame.FuncZero, []byte{1})) // reset zero P1
	if got := d.Memory().Coefficient(64); got != 0 {
		t.Errorf("offset after reset = %v, want 0", got)
	}

	// Zero against an explicit reference value.
	zeroPayload := []byte{0, 0x3F, 0x80, 0x00, 0x00} // reference 1.0
	d.Process(request(t, 1, frame.FuncZero, zeroPayload))
	if got := d.Memory().Coefficient(64); got != -1.5 {
		t.Errorf("offset after value zero = %v, want -1.5", got)
	}
}

func TestUnknownFunctionCode(t *testing.T) {
	d := newTestDevice(t)
	initialize(t, d)

	raw := []byte{1, 100, 0}
	sum := crc.Checksum(raw)
	raw = append(raw, byte(sum>>8), byte(sum))

	reply := d.Process(raw)
	if !bytes.Equal(reply[:3], []byte{1, 100 | 0x80, errNonImplementedFunction}) {
		t.Errorf("reply = % X, want device error 1", reply)
	}
}
