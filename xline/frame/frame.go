// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package frame encodes and decodes Keller X-Line bus frames.
//
// A frame is laid out as
//
//	Address         : 1 byte
//	Function        : 1 byte
//	Payload         : command specific
//	CRC             : 2 bytes, high byte first
//
// The protocol carries no length field. The master knows how many bytes a
// reply will occupy from the function code it issued, see ResponseLength.
package frame

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/emgardner/keller-xline/xline/crc"
)

const (
	// MinSize is the smallest valid response: address, function, one
	// payload byte and the checksum trailer.
	MinSize = 5
	// MaxSize caps a whole frame on the wire.
	MaxSize = 250
)

// Function codes understood by X-Line devices.
const (
	FuncReadCoefficient    = 30
	FuncWriteCoefficient   = 31
	FuncReadConfiguration  = 32
	FuncWriteConfiguration = 33
	FuncInitAndRelease     = 48
	FuncWriteAddress       = 66
	FuncReadSerialNumber   = 67
	FuncReadChannelFloat   = 73
	FuncReadChannelInt     = 74
	FuncZero               = 95
)

// ResponseLength returns the fixed size of the reply frame for a function
// code. The second return value is false for unknown codes.
func ResponseLength(functionCode byte) (int, bool) {
	switch functionCode {
	case FuncReadCoefficient, FuncReadConfiguration, FuncReadSerialNumber:
		return 8, true
	case FuncWriteCoefficient, FuncWriteConfiguration, FuncWriteAddress, FuncZero:
		return 5, true
	case FuncInitAndRelease:
		return 10, true
	case FuncReadChannelFloat, FuncReadChannelInt:
		return 9, true
	}
	return 0, false
}

// Response is a validated reply frame.
type Response struct {
	Address      byte
	FunctionCode byte
	Payload      []byte
	CRC          uint16
}

// Encode builds a wire frame from address, function code and payload,
// appending the checksum trailer.
func Encode(address, functionCode byte, payload []byte) ([]byte, error) {
	length := len(payload) + 4
	if length > MaxSize {
		return nil, fmt.Errorf("xline: frame length %v exceeds maximum %v", length, MaxSize)
	}
	raw := make([]byte, length)
	raw[0] = address
	raw[1] = functionCode
	copy(raw[2:], payload)

	sum := crc.Checksum(raw[:length-2])
	raw[length-2] = byte(sum >> 8)
	raw[length-1] = byte(sum)
	return raw, nil
}

// Decode parses and validates a reply frame.
//
// A function code above 127 marks a device-reported error; the error code
// sits at byte index 2 and the frame is rejected before any checksum
// validation, because error replies use a minimal layout of their own.
func Decode(raw []byte) (*Response, error) {
	if len(raw) < MinSize {
		return nil, ErrTooShort
	}

	fc := raw[1]
	if fc > 127 {
		return nil, DeviceError(raw[2])
	}

	dataLen := len(raw) - 2
	got := binary.BigEndian.Uint16(raw[dataLen:])
	expected := crc.Checksum(raw[:dataLen])
	if got != expected {
		return nil, &CRCError{Expected: expected, Got: got}
	}

	return &Response{
		Address:      raw[0],
		FunctionCode: fc,
		Payload:      raw[2:dataLen],
		CRC:          got,
	}, nil
}

// Byte returns the first payload byte.
func (r *Response) Byte() byte {
	return r.Payload[0]
}

// Float32 interprets the leading four payload bytes as a big-endian
// IEEE-754 single. The fixed reply lengths guarantee they are present on
// every float-valued reply.
func (r *Response) Float32() float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(r.Payload[:4]))
}

// Uint32 combines the leading four payload bytes big-endian.
func (r *Response) Uint32() uint32 {
	return binary.BigEndian.Uint32(r.Payload[:4])
}

// Int32 combines the leading four payload bytes big-endian.
func (r *Response) Int32() int32 {
	return int32(binary.BigEndian.Uint32(r.Payload[:4]))
}
