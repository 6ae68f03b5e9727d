// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package serial

import (
	"context"
	"errors"
	"log/slog"
	"time"

	gxserial "github.com/grid-x/serial"

	"github.com/emgardner/keller-xline/internal/config"
	"github.com/emgardner/keller-xline/transport"
)

// Port implements transport.Transport on a serial line. The port itself is
// opened lazily on first use and closed again after an idle period.
type Port struct {
	serialPort
}

var _ transport.Transport = (*Port)(nil)

// NewPort allocates and initializes a serial line transport.
func NewPort(cfg config.SerialConfig) *Port {
	p := &Port{}

	// Map internal config to serial.Config
	p.serialPort.Config.Address = cfg.Device
	p.serialPort.Config.BaudRate = cfg.BaudRate
	p.serialPort.Config.DataBits = cfg.DataBits
	p.serialPort.Config.StopBits = cfg.StopBits
	p.serialPort.Config.Parity = cfg.Parity
	p.serialPort.Config.Timeout = pollTimeout

	p.serialPort.Config.RS485.Enabled = cfg.RS485
	p.serialPort.Config.RS485.DelayRtsBeforeSend = cfg.DelayRtsBeforeSend
	p.serialPort.Config.RS485.DelayRtsAfterSend = cfg.DelayRtsAfterSend
	p.serialPort.Config.RS485.RtsHighDuringSend = cfg.RtsHighDuringSend
	p.serialPort.Config.RS485.RtsHighAfterSend = cfg.RtsHighAfterSend
	p.serialPort.Config.RS485.RxDuringTx = cfg.RxDuringTx

	p.IdleTimeout = serialIdleTimeout
	return p
}

// WriteAll writes the whole buffer within timeout.
func (p *Port) WriteAll(ctx context.Context, buf []byte, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connect(ctx); err != nil {
		return err
	}
	p.lastActivity = time.Now()
	p.startCloseTimer()

	deadline := time.Now().Add(timeout)
	for len(buf) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if time.Now().After(deadline) {
			return transport.ErrTimeout
		}
		n, err := p.port.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// ReadExact fills the whole buffer within timeout. The port's own read
// timeout is short, so the loop wakes often enough to honor both the
// context and the deadline.
func (p *Port) ReadExact(ctx context.Context, buf []byte, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connect(ctx); err != nil {
		return err
	}
	p.lastActivity = time.Now()
	p.startCloseTimer()

	deadline := time.Now().Add(timeout)
	for n := 0; n < len(buf); {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if time.Now().After(deadline) {
			return transport.ErrTimeout
		}
		k, err := p.port.Read(buf[n:])
		if err != nil && !errors.Is(err, gxserial.ErrTimeout) {
			return err
		}
		n += k
	}
	return nil
}

// ClearReceiveBuffer drains whatever is already buffered on the line. It
// stops at the first poll that comes back empty.
func (p *Port) ClearReceiveBuffer(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.connect(ctx); err != nil {
		return err
	}

	scratch := make([]byte, 64)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := p.port.Read(scratch)
		if n == 0 || err != nil {
			// An empty poll (or its timeout error) means the line is clean.
			if err == nil || errors.Is(err, gxserial.ErrTimeout) {
				return nil
			}
			return err
		}
		slog.Debug("discarded stale bytes", "count", n)
	}
}
