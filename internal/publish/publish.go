// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Package publish delivers sensor samples to downstream consumers.
package publish

import (
	"log/slog"
	"time"
)

// Sample is one channel reading taken from a sensor.
type Sample struct {
	Serial  uint32    `json:"serial"`
	Channel string    `json:"channel"`
	Value   float32   `json:"value"`
	Status  byte      `json:"status"`
	Time    time.Time `json:"time"`
}

// Publisher delivers samples somewhere.
type Publisher interface {
	Publish(sample Sample) error
	Close() error
}

// LogPublisher just logs samples. It is the fallback when no broker is
// configured.
type LogPublisher struct{}

func (LogPublisher) Publish(sample Sample) error {
	slog.Info("sample",
		"serial", sample.Serial,
		"channel", sample.Channel,
		"value", sample.Value,
		"status", sample.Status,
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
