// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/emgardner/keller-xline/internal/config"
	"github.com/emgardner/keller-xline/internal/poller"
	"github.com/emgardner/keller-xline/internal/publish"
	"github.com/emgardner/keller-xline/transport"
	"github.com/emgardner/keller-xline/transport/local"
	"github.com/emgardner/keller-xline/transport/serial"
	"github.com/emgardner/keller-xline/xline"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load Configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	slog.Info("Starting X-Line daemon...")

	// Create Transport
	var tr transport.Transport
	switch cfg.Device.Transport {
	case "serial":
		tr = serial.NewPort(cfg.Serial)
	case "sim":
		tr, err = local.NewFromConfig(cfg.Sim)
		if err != nil {
			slog.Error("Failed to create simulated device", "err", err)
			os.Exit(1)
		}
	default:
		slog.Error("Unknown transport type", "type", cfg.Device.Transport)
		os.Exit(1)
	}

	client := xline.NewClient(tr, cfg.Device.Timeout, cfg.Device.Address)

	// Create Publisher
	var pub publish.Publisher
	if cfg.MQTT.URL != "" {
		pub, err = publish.NewMQTT(cfg.MQTT)
		if err != nil {
			slog.Error("Failed to connect to MQTT broker", "url", cfg.MQTT.URL, "err", err)
			os.Exit(1)
		}
	} else {
		pub = publish.LogPublisher{}
	}
	defer pub.Close()

	channels := make([]xline.Channel, 0, len(cfg.Poll.Channels))
	for _, name := range cfg.Poll.Channels {
		ch, err := xline.ParseChannel(name)
		if err != nil {
			slog.Error("Invalid channel in configuration", "channel", name, "err", err)
			os.Exit(1)
		}
		channels = append(channels, ch)
	}
	if len(channels) == 0 {
		channels = []xline.Channel{xline.ChannelP1}
	}

	p := poller.New(client, channels, cfg.Poll.Interval, pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// Wait for Signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		slog.Info("Shutting down...")
		cancel()
		<-done
	case err := <-done:
		if err != nil && err != context.Canceled {
			slog.Error("Poller stopped with error", "err", err)
			os.Exit(1)
		}
	}
	slog.Info("Goodbye.")
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.File != "" && cfg.File != "-" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Printf("Failed to open log file, falling back to stdout: %v\n", err)
			handler = slog.NewTextHandler(os.Stdout, opts)
		} else {
			handler = slog.NewTextHandler(f, opts)
		}
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
