// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package local implements the driver transport against an in-process
// simulated sensor. It is used by tests and by the daemon's "sim" mode.
package local

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/emgardner/keller-xline/internal/config"
	"github.com/emgardner/keller-xline/internal/sim"
	"github.com/emgardner/keller-xline/internal/sim/persistence"
	"github.com/emgardner/keller-xline/transport"
)

// Loopback connects a driver session to a simulated device. Writing a
// request immediately produces the device's reply in the receive buffer.
type Loopback struct {
	mu      sync.Mutex
	device  *sim.Device
	pending []byte
}

var _ transport.Transport = (*Loopback)(nil)

// NewLoopback creates a loopback line to device.
func NewLoopback(device *sim.Device) *Loopback {
	return &Loopback{device: device}
}

// NewFromConfig builds a simulated device with the configured persistence
// backend and returns a loopback line to it.
func NewFromConfig(cfg config.SimConfig) (*Loopback, error) {
	var storage persistence.Storage
	switch cfg.Persistence.Type {
	case "file":
		slog.Info("Initializing simulated sensor with file persistence", "path", cfg.Persistence.Path)
		storage = persistence.NewFileStorage(cfg.Persistence.Path)
	case "mmap":
		slog.Info("Initializing simulated sensor with MMAP persistence", "path", cfg.Persistence.Path)
		storage = persistence.NewMmapStorage(cfg.Persistence.Path)
	case "sql":
		// Note: The main app must import the driver (e.g. _ "github.com/mattn/go-sqlite3")
		slog.Info("Initializing simulated sensor with SQL persistence", "driver", cfg.Persistence.Driver)
		storage = persistence.NewSQLStorage(cfg.Persistence.Driver, cfg.Persistence.DSN)
	default:
		slog.Info("Initializing simulated sensor with memory storage (non-persistent)")
		storage = persistence.NewMemoryStorage()
	}

	device, err := sim.NewDevice(cfg.Address, cfg.SerialNumber, storage)
	if err != nil {
		return nil, err
	}
	return NewLoopback(device), nil
}

// Device returns the simulated sensor behind the line.
func (l *Loopback) Device() *sim.Device {
	return l.device
}

func (l *Loopback) WriteAll(ctx context.Context, p []byte, timeout time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if reply := l.device.Process(p); reply != nil {
		l.pending = append(l.pending, reply...)
	}
	return nil
}

func (l *Loopback) ReadExact(ctx context.Context, p []byte, timeout time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	// A silent device (wrong address, corrupt request) surfaces exactly
	// like a dead line: a timeout.
	if len(l.pending) < len(p) {
		return transport.ErrTimeout
	}
	copy(p, l.pending[:len(p)])
	l.pending = l.pending[len(p):]
	return nil
}

func (l *Loopback) ClearReceiveBuffer(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
	return nil
}
