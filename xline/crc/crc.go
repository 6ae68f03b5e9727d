// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package crc implements the 16-bit cyclic redundancy check used by the
// Keller X-Line bus protocol (polynomial 0xA001, initial value 0xFFFF).
//
// The algorithm is the same as the one used by Modbus RTU, but the X-Line
// wire format transmits the checksum high byte first.
package crc

const polynomial = 0xA001

// CRC holds the running value of a checksum computation.
type CRC struct {
	value uint16
}

// Reset initializes the register and returns the receiver for chaining.
func (c *CRC) Reset() *CRC {
	c.value = 0xFFFF
	return c
}

// PushBytes folds data into the running checksum.
func (c *CRC) PushBytes(data []byte) *CRC {
	for _, b := range data {
		c.value ^= uint16(b)
		for i := 0; i < 8; i++ {
			lsb := c.value&1 != 0
			c.value >>= 1
			if lsb {
				c.value ^= polynomial
			}
		}
	}
	return c
}

// Value returns the current checksum.
func (c *CRC) Value() uint16 {
	return c.value
}

// Checksum computes the checksum of data in one shot.
func Checksum(data []byte) uint16 {
	var c CRC
	return c.Reset().PushBytes(data).Value()
}
