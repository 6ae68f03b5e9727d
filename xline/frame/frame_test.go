// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package frame

import (
	"bytes"
	"errors"
	"testing"

	"github.com/emgardner/keller-xline/xline/crc"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		address  byte
		funcCode byte
		payload  []byte
	}{
		{"ReadCoefficient", 1, FuncReadCoefficient, []byte{64}},
		{"WriteCoefficient", 7, FuncWriteCoefficient, []byte{65, 0x3F, 0x80, 0x00, 0x00}},
		{"ZeroNoValue", 250, FuncZero, []byte{0}},
		{"LongPayload", 3, FuncReadChannelFloat, bytes.Repeat([]byte{0xA5}, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Encode(tt.address, tt.funcCode, tt.payload)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(raw) != len(tt.payload)+4 {
				t.Fatalf("frame length = %d, want %d", len(raw), len(tt.payload)+4)
			}

			resp, err := Decode(raw)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if resp.Address != tt.address {
				t.Errorf("address = %d, want %d", resp.Address, tt.address)
			}
			if resp.FunctionCode != tt.funcCode {
				t.Errorf("function code = %d, want %d", resp.FunctionCode, tt.funcCode)
			}
			if !bytes.Equal(resp.Payload, tt.payload) {
				t.Errorf("payload mismatch.\nWant: %X\nGot:  %X", tt.payload, resp.Payload)
			}
		})
	}
}

func TestEncodeCRCTrailerByteOrder(t *testing.T) {
	raw, err := Encode(1, FuncReadCoefficient, []byte{64})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	sum := crc.Checksum(raw[:len(raw)-2])
	if raw[len(raw)-2] != byte(sum>>8) || raw[len(raw)-1] != byte(sum) {
		t.Errorf("crc trailer = %02X %02X, want high byte %02X then low byte %02X",
			raw[len(raw)-2], raw[len(raw)-1], byte(sum>>8), byte(sum))
	}
}

func TestEncodeMaxSize(t *testing.T) {
	if _, err := Encode(1, FuncWriteCoefficient, make([]byte, MaxSize-4)); err != nil {
		t.Errorf("frame at maximum size rejected: %v", err)
	}
	if _, err := Encode(1, FuncWriteCoefficient, make([]byte, MaxSize-3)); err == nil {
		t.Error("oversized frame accepted")
	}
}

func TestDecodeTooShort(t *testing.T) {
	buffers := [][]byte{
		nil,
		{},
		{1},
		{1, 30},
		{1, 30, 64},
		{1, 159, 3, 0xFF}, // an error frame below minimum length is still too short
	}
	for _, buf := range buffers {
		if _, err := Decode(buf); !errors.Is(err, ErrTooShort) {
			t.Errorf("Decode(% X) error = %v, want ErrTooShort", buf, err)
		}
	}
}

func TestDecodeDeviceError(t *testing.T) {
	tests := []struct {
		name string
		code byte
		want DeviceError
	}{
		{"NonImplementedFunction", 1, NonImplementedFunction},
		{"InvalidAddress", 2, InvalidAddress},
		{"IncorrectMessageLength", 3, IncorrectMessageLength},
		{"ErrorSavingValue", 4, ErrorSavingValue},
		{"DeviceNotInitialized", 32, DeviceNotInitialized},
		{"Opaque", 99, DeviceError(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Error replies use a minimal fixed layout. The trailer here is
			// deliberately garbage: the device error check runs before any
			// checksum validation.
			raw := []byte{1, FuncWriteCoefficient + 128, tt.code, 0x00, 0x00}
			_, err := Decode(raw)

			var devErr DeviceError
			if !errors.As(err, &devErr) {
				t.Fatalf("Decode error = %v, want DeviceError", err)
			}
			if devErr != tt.want {
				t.Errorf("device error = %v, want %v", devErr, tt.want)
			}
		})
	}
}

func TestDecodeBadCRC(t *testing.T) {
	raw, err := Encode(1, FuncReadCoefficient, []byte{0x3F, 0x80, 0x00, 0x00})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Flipping the low bit of any single byte must be caught by the
	// checksum. (The top bit of the function code is different territory:
	// it turns the frame into a device error reply.)
	for i := range raw {
		corrupted := make([]byte, len(raw))
		copy(corrupted, raw)
		corrupted[i] ^= 0x01

		_, err := Decode(corrupted)
		var crcErr *CRCError
		if !errors.As(err, &crcErr) {
			t.Errorf("flip of byte %d: error = %v, want CRCError", i, err)
			continue
		}
		if crcErr.Expected == crcErr.Got {
			t.Errorf("flip of byte %d: expected and got are both %04X", i, crcErr.Got)
		}
	}
}

func TestResponseLength(t *testing.T) {
	tests := []struct {
		funcCode byte
		want     int
	}{
		{FuncReadCoefficient, 8},
		{FuncWriteCoefficient, 5},
		{FuncReadConfiguration, 8},
		{FuncWriteConfiguration, 5},
		{FuncInitAndRelease, 10},
		{FuncWriteAddress, 5},
		{FuncReadSerialNumber, 8},
		{FuncReadChannelFloat, 9},
		{FuncReadChannelInt, 9},
		{FuncZero, 5},
	}
	for _, tt := range tests {
		got, ok := ResponseLength(tt.funcCode)
		if !ok || got != tt.want {
			t.Errorf("ResponseLength(%d) = %d, %v; want %d, true", tt.funcCode, got, ok, tt.want)
		}
	}

	if _, ok := ResponseLength(0x99); ok {
		t.Error("ResponseLength accepted an unknown function code")
	}
}

func TestResponseValueExtraction(t *testing.T) {
	raw, err := Encode(1, FuncReadChannelFloat, []byte{0x3F, 0x80, 0x00, 0x00, 0x04})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	resp, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got := resp.Float32(); got != 1.0 {
		t.Errorf("Float32() = %v, want 1.0", got)
	}
	if got := resp.Byte(); got != 0x3F {
		t.Errorf("Byte() = %#02x, want 0x3f", got)
	}
	if got := resp.Uint32(); got != 0x3F800000 {
		t.Errorf("Uint32() = %#08x, want 0x3f800000", got)
	}
	if got := resp.Int32(); got != 0x3F800000 {
		t.Errorf("Int32() = %#08x, want 0x3f800000", got)
	}
}
