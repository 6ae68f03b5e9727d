// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package frame

import (
	"errors"
	"fmt"
)

// ErrTooShort is returned by Decode for buffers below MinSize.
var ErrTooShort = errors.New("xline: frame shorter than minimum of 5 bytes")

// Device error codes reported inside an error reply.
const (
	// The addressed device does not implement the requested function.
	NonImplementedFunction DeviceError = 1
	// The message was addressed outside the valid device address range.
	InvalidAddress DeviceError = 2
	// The message body does not have the length the function requires.
	IncorrectMessageLength DeviceError = 3
	// The device failed to store the written value in non-volatile memory.
	ErrorSavingValue DeviceError = 4
	// The device has not been initialized since power-up; most functions
	// refuse to run before an initialize-and-release command.
	DeviceNotInitialized DeviceError = 32
)

// DeviceError is an error code reported by the device itself, carried in a
// reply whose function code is above 127. Codes outside the documented set
// are device specific and passed through unclassified.
type DeviceError byte

// Error implements the builtin error interface,
// returning a human readable string for the underlying device error code.
func (e DeviceError) Error() string {
	prefix := "xline: device error: "
	switch e {
	case NonImplementedFunction:
		return prefix + "non-implemented function"
	case InvalidAddress:
		return prefix + "invalid address"
	case IncorrectMessageLength:
		return prefix + "incorrect message length"
	case ErrorSavingValue:
		return prefix + "error saving value"
	case DeviceNotInitialized:
		return prefix + "device not initialized"
	}
	return prefix + fmt.Sprintf("code %v", byte(e))
}

// CRCError reports a checksum mismatch on a received frame.
type CRCError struct {
	Expected uint16
	Got      uint16
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("xline: response crc %#04x does not match expected %#04x", e.Got, e.Expected)
}
