// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package local

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/emgardner/keller-xline/internal/config"
	"github.com/emgardner/keller-xline/internal/sim"
	"github.com/emgardner/keller-xline/internal/sim/persistence"
	"github.com/emgardner/keller-xline/xline"
	"github.com/emgardner/keller-xline/xline/frame"
)

func newLine(t *testing.T, address byte) (*Loopback, *xline.Client) {
	t.Helper()
	device, err := sim.NewDevice(1, 1234567, persistence.NewMemoryStorage())
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	line := NewLoopback(device)
	return line, xline.NewClient(line, 100*time.Millisecond, address)
}

func TestEndToEnd(t *testing.T) {
	line, client := newLine(t, 1)
	ctx := context.Background()

	info, err := client.InitAndRelease(ctx)
	if err != nil {
		t.Fatalf("InitAndRelease failed: %v", err)
	}
	if info.Class == 0 {
		t.Error("device reported no class")
	}

	if err := client.WriteCoefficient(ctx, xline.CoeffGainFactorP1, 1.0); err != nil {
		t.Fatalf("WriteCoefficient failed: %v", err)
	}
	gain, err := client.ReadCoefficient(ctx, xline.CoeffGainFactorP1)
	if err != nil {
		t.Fatalf("ReadCoefficient failed: %v", err)
	}
	if gain != 1.0 {
		t.Errorf("gain = %v, want 1.0", gain)
	}

	serial, err := client.ReadSerialNumber(ctx)
	if err != nil {
		t.Fatalf("ReadSerialNumber failed: %v", err)
	}
	if serial != 1234567 {
		t.Errorf("serial = %d, want 1234567", serial)
	}

	line.Device().SetChannel(byte(xline.ChannelP1), 10.5)
	value, err := client.ReadChannel(ctx, xline.ChannelP1)
	if err != nil {
		t.Fatalf("ReadChannel failed: %v", err)
	}
	if value != 10.5 {
		t.Errorf("reading = %v, want 10.5", value)
	}
}

func TestDeviceErrorSurfaces(t *testing.T) {
	_, client := newLine(t, 1)

	// Any command before initialize-and-release is refused by the device.
	_, err := client.ReadCoefficient(context.Background(), xline.CoeffGainFactorP1)
	var devErr frame.DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("error = %v, want DeviceError", err)
	}
	if devErr != frame.DeviceNotInitialized {
		t.Errorf("device error = %v, want DeviceNotInitialized", devErr)
	}
}

func TestForeignAddressTimesOut(t *testing.T) {
	_, client := newLine(t, 9) // device sits at address 1

	_, err := client.InitAndRelease(context.Background())
	if !errors.Is(err, xline.ErrTimeout) {
		t.Errorf("error = %v, want ErrTimeout", err)
	}
}

func TestAddressAssignment(t *testing.T) {
	line, client := newLine(t, xline.TransparentAddress)
	ctx := context.Background()

	if _, err := client.InitAndRelease(ctx); err != nil {
		t.Fatalf("InitAndRelease failed: %v", err)
	}
	confirmed, err := client.WriteAddress(ctx, 42)
	if err != nil {
		t.Fatalf("WriteAddress failed: %v", err)
	}
	if confirmed != 42 {
		t.Errorf("confirmed address = %d, want 42", confirmed)
	}
	if got := line.Device().Memory().BusAddress(); got != 42 {
		t.Errorf("device address = %d, want 42", got)
	}
}

func TestPersistentDeviceSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensor.mmap")
	cfg := config.SimConfig{
		Address:      1,
		SerialNumber: 99,
		Persistence:  config.PersistenceConfig{Type: "mmap", Path: path},
	}

	line, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	client := xline.NewClient(line, 100*time.Millisecond, 1)
	ctx := context.Background()

	if _, err := client.InitAndRelease(ctx); err != nil {
		t.Fatalf("InitAndRelease failed: %v", err)
	}
	if err := client.WriteCoefficient(ctx, xline.CoeffPressureOffsetP2, -0.25); err != nil {
		t.Fatalf("WriteCoefficient failed: %v", err)
	}

	// A second device on the same backing file sees the stored value.
	line2, err := NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig (restart) failed: %v", err)
	}
	client2 := xline.NewClient(line2, 100*time.Millisecond, 1)
	if _, err := client2.InitAndRelease(ctx); err != nil {
		t.Fatalf("InitAndRelease (restart) failed: %v", err)
	}
	offset, err := client2.ReadCoefficient(ctx, xline.CoeffPressureOffsetP2)
	if err != nil {
		t.Fatalf("ReadCoefficient (restart) failed: %v", err)
	}
	if offset != -0.25 {
		t.Errorf("offset after restart = %v, want -0.25", offset)
	}
}
