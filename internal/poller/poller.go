// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/emgardner/keller-xline/internal/publish"
	"github.com/emgardner/keller-xline/xline"
)

// Poller periodically reads measurement channels from a single device and
// hands the readings to a publisher.
type Poller struct {
	client   *xline.Client
	channels []xline.Channel
	interval time.Duration
	pub      publish.Publisher

	serial uint32
}

func New(client *xline.Client, channels []xline.Channel, interval time.Duration, pub publish.Publisher) *Poller {
	return &Poller{
		client:   client,
		channels: channels,
		interval: interval,
		pub:      pub,
	}
}

// Run initializes the device, then reads every configured channel once per
// interval until ctx is canceled. Individual read or publish failures are
// logged and the loop continues; only ctx cancellation ends it.
func (p *Poller) Run(ctx context.Context) error {
	info, err := p.client.InitAndRelease(ctx)
	if err != nil {
		return err
	}
	serial, err := p.client.ReadSerialNumber(ctx)
	if err != nil {
		return err
	}
	p.serial = serial
	slog.Info("device online",
		"serial", serial,
		"class", info.Class,
		"group", info.Group,
		"firmware", info.Year,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.pollOnce(ctx)
		}
	}
}

func (p *Poller) pollOnce(ctx context.Context) {
	for _, ch := range p.channels {
		value, status, err := p.client.ReadChannelWithStatus(ctx, ch)
		if err != nil {
			slog.Warn("channel read failed", "channel", ch.String(), "error", err)
			continue
		}
		sample := publish.Sample{
			Serial:  p.serial,
			Channel: ch.String(),
			Value:   value,
			Status:  status,
			Time:    time.Now().UTC(),
		}
		if err := p.pub.Publish(sample); err != nil {
			slog.Warn("publish failed", "channel", ch.String(), "error", err)
		}
	}
}
