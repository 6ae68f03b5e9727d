// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package xline

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/emgardner/keller-xline/xline/frame"
)

// DeviceInfo is reported by an initialize-and-release command.
type DeviceInfo struct {
	Class  byte // device class
	Group  byte // device group within the class
	Year   byte // firmware year
	Week   byte // firmware week
	Buffer byte // length of the device's internal receive buffer
	Status byte // device status flags
}

// InitAndRelease initializes the device and returns its identification.
// Most devices refuse every other function until this has run once after
// power-up.
func (c *Client) InitAndRelease(ctx context.Context) (DeviceInfo, error) {
	resp, err := c.transact(ctx, c.address, frame.FuncInitAndRelease, nil)
	if err != nil {
		return DeviceInfo{}, err
	}
	p := resp.Payload
	return DeviceInfo{
		Class:  p[0],
		Group:  p[1],
		Year:   p[2],
		Week:   p[3],
		Buffer: p[4],
		Status: p[5],
	}, nil
}

// ReadCoefficient reads a calibration coefficient as a float.
func (c *Client) ReadCoefficient(ctx context.Context, coeff Coefficient) (float32, error) {
	resp, err := c.transact(ctx, c.address, frame.FuncReadCoefficient, []byte{byte(coeff)})
	if err != nil {
		return 0, err
	}
	return resp.Float32(), nil
}

// WriteCoefficient stores a calibration coefficient.
func (c *Client) WriteCoefficient(ctx context.Context, coeff Coefficient, value float32) error {
	payload := make([]byte, 5)
	payload[0] = byte(coeff)
	binary.BigEndian.PutUint32(payload[1:], math.Float32bits(value))

	_, err := c.transact(ctx, c.address, frame.FuncWriteCoefficient, payload)
	return err
}

// ReadConfiguration reads a single-byte configuration variable.
func (c *Client) ReadConfiguration(ctx context.Context, cfg Configuration) (byte, error) {
	resp, err := c.transact(ctx, c.address, frame.FuncReadConfiguration, []byte{byte(cfg)})
	if err != nil {
		return 0, err
	}
	return resp.Byte(), nil
}

// WriteConfiguration stores a single-byte configuration variable.
func (c *Client) WriteConfiguration(ctx context.Context, cfg Configuration, value byte) error {
	_, err := c.transact(ctx, c.address, frame.FuncWriteConfiguration, []byte{byte(cfg), value})
	return err
}

// WriteAddress assigns a new bus address to the device. The address field
// of the request itself carries the address being assigned, not the
// session's configured one; combined with TransparentAddress sessions this
// is how a factory-fresh device gets its unique address. The device
// confirms by returning the address now in effect.
func (c *Client) WriteAddress(ctx context.Context, address byte) (byte, error) {
	resp, err := c.transact(ctx, address, frame.FuncWriteAddress, nil)
	if err != nil {
		return 0, err
	}
	return resp.Byte(), nil
}

// ReadSerialNumber reads the device serial number.
func (c *Client) ReadSerialNumber(ctx context.Context) (uint32, error) {
	resp, err := c.transact(ctx, c.address, frame.FuncReadSerialNumber, nil)
	if err != nil {
		return 0, err
	}
	return resp.Uint32(), nil
}

// ReadChannel reads the current value of a measurement channel.
func (c *Client) ReadChannel(ctx context.Context, ch Channel) (float32, error) {
	value, _, err := c.ReadChannelWithStatus(ctx, ch)
	return value, err
}

// ReadChannelWithStatus reads a measurement channel together with the
// status byte the device appends to every float reply.
func (c *Client) ReadChannelWithStatus(ctx context.Context, ch Channel) (float32, byte, error) {
	resp, err := c.transact(ctx, c.address, frame.FuncReadChannelFloat, []byte{byte(ch)})
	if err != nil {
		return 0, 0, err
	}
	return resp.Float32(), resp.Payload[4], nil
}

// ReadChannelInt reads a measurement channel as a scaled 32-bit integer.
func (c *Client) ReadChannelInt(ctx context.Context, ch Channel) (int32, error) {
	resp, err := c.transact(ctx, c.address, frame.FuncReadChannelInt, []byte{byte(ch)})
	if err != nil {
		return 0, err
	}
	return resp.Int32(), nil
}

// Zero performs a zeroing operation on a channel, taking the current
// reading as the new zero (or resetting it to factory default).
func (c *Client) Zero(ctx context.Context, cmd ZeroCommand) error {
	_, err := c.transact(ctx, c.address, frame.FuncZero, []byte{byte(cmd)})
	return err
}

// ZeroWithValue performs a zeroing operation against an explicit reference
// value instead of the current reading.
func (c *Client) ZeroWithValue(ctx context.Context, cmd ZeroCommand, value float32) error {
	payload := make([]byte, 5)
	payload[0] = byte(cmd)
	binary.BigEndian.PutUint32(payload[1:], math.Float32bits(value))

	_, err := c.transact(ctx, c.address, frame.FuncZero, payload)
	return err
}
