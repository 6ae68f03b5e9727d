// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package transport defines the byte transport consumed by the X-Line
// driver. Implementations own the physical line (a UART, an RS-485
// adapter, a loopback for tests) and are responsible for timeout
// enforcement; the context only carries cancellation.
package transport

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by implementations when an operation does not
// complete within its timeout.
var ErrTimeout = errors.New("transport: request timed out")

// Transport moves raw frame bytes over a half-duplex line.
//
// The driver holds exclusive logical ownership of the transport for the
// duration of a transaction: the wire protocol has no request identifier,
// so a transport must never be shared across in-flight exchanges.
type Transport interface {
	// WriteAll writes the whole buffer within timeout or fails.
	WriteAll(ctx context.Context, p []byte, timeout time.Duration) error

	// ReadExact fills the whole buffer within timeout or fails. Partial
	// reads are never returned.
	ReadExact(ctx context.Context, p []byte, timeout time.Duration) error

	// ClearReceiveBuffer discards any bytes already buffered on the line,
	// best effort. It defends against desynchronization left over from an
	// aborted exchange.
	ClearReceiveBuffer(ctx context.Context) error
}

// NopClearer provides the default no-op ClearReceiveBuffer for transports
// that have no input buffer to drain. Embed it in implementations.
type NopClearer struct{}

func (NopClearer) ClearReceiveBuffer(ctx context.Context) error { return nil }
