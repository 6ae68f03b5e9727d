// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package xline

import (
	"context"
	"errors"
	"os"

	"github.com/emgardner/keller-xline/transport"
)

var (
	// ErrTimeout is returned when a transport operation does not complete
	// within the session timeout.
	ErrTimeout = errors.New("xline: request timed out")

	// ErrWrongAddress is returned when a device other than the addressed
	// one answers a unicast request.
	ErrWrongAddress = errors.New("xline: response address does not match request")

	// ErrNonMatchingFunctionCode is returned when the reply does not echo
	// the requested function code.
	ErrNonMatchingFunctionCode = errors.New("xline: response function code does not match request")

	// ErrEchoMismatch is reserved for transports that verify their own
	// transmission echo on a half-duplex line. The transaction engine never
	// produces it.
	ErrEchoMismatch = errors.New("xline: line echo does not match transmitted frame")
)

// TransportError wraps a failure originating in the byte transport.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "xline: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// asProtocolError folds a transport operation result into the driver error
// taxonomy. Every place a transport result propagates goes through here, so
// callers never see a naked transport error.
func asProtocolError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, transport.ErrTimeout),
		errors.Is(err, ErrTimeout):
		return ErrTimeout
	default:
		return &TransportError{Err: err}
	}
}
