// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package xline drives Keller X-Line pressure and temperature sensors over
// a half-duplex serial bus. One master issues fixed-format requests;
// exactly one addressed device replies with a CRC-protected frame.
package xline

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/emgardner/keller-xline/transport"
	"github.com/emgardner/keller-xline/xline/frame"
)

// TransparentAddress makes a request accept a reply from any responding
// device, regardless of its configured address. Used for bring-up on a
// single-device line before a unique address is assigned.
const TransparentAddress = 250

// Client is a driver session on one physical line. It owns the transport
// for the lifetime of the connection and runs transactions strictly one
// after another; the protocol carries no request identifier, so a Client
// must not be shared across concurrent callers without external locking.
type Client struct {
	transport transport.Transport
	timeout   time.Duration
	address   byte
}

// NewClient creates a session talking to the device at address through t.
// Every transport operation of a transaction is bounded by timeout.
func NewClient(t transport.Transport, timeout time.Duration, address byte) *Client {
	return &Client{
		transport: t,
		timeout:   timeout,
		address:   address,
	}
}

// Address returns the configured device address of the session.
func (c *Client) Address() byte {
	return c.address
}

// transact runs one request/response exchange: clear stale input, send the
// encoded frame, read the fixed-length reply, validate it. No retries; a
// failed exchange surfaces exactly one error.
func (c *Client) transact(ctx context.Context, address, functionCode byte, payload []byte) (*frame.Response, error) {
	responseLen, ok := frame.ResponseLength(functionCode)
	if !ok {
		return nil, fmt.Errorf("xline: unknown function code %v", functionCode)
	}

	if err := c.transport.ClearReceiveBuffer(ctx); err != nil {
		return nil, asProtocolError(err)
	}

	request, err := frame.Encode(address, functionCode, payload)
	if err != nil {
		return nil, err
	}

	slog.Debug("send to device", "request", hex.EncodeToString(request))
	if err := c.transport.WriteAll(ctx, request, c.timeout); err != nil {
		return nil, asProtocolError(err)
	}

	raw := make([]byte, responseLen)
	if err := c.transport.ReadExact(ctx, raw, c.timeout); err != nil {
		return nil, asProtocolError(err)
	}
	slog.Debug("recv from device", "response", hex.EncodeToString(raw))

	response, err := frame.Decode(raw)
	if err != nil {
		return nil, err
	}

	if response.FunctionCode != functionCode {
		return nil, ErrNonMatchingFunctionCode
	}
	if address != TransparentAddress && response.Address != address {
		return nil, ErrWrongAddress
	}
	return response, nil
}
