// Copyright (c) 2026 Ethan Gardner. All rights reserved.
// This software may be modified and distributed under the terms
// of the BSD-3 Clause License. See the LICENSE file for details.

// Command xlinectl is an interactive console for talking to a single
// pressure transmitter on the bus. It speaks the same configuration file
// as xlined, so a port that works for the daemon works here too.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/emgardner/keller-xline/internal/config"
	"github.com/emgardner/keller-xline/transport"
	"github.com/emgardner/keller-xline/transport/local"
	"github.com/emgardner/keller-xline/transport/serial"
	"github.com/emgardner/keller-xline/xline"
)

const sessionKey = "$session"

type session struct {
	cfg    *config.Config
	client *xline.Client
}

func sessionFrom(c *ishell.Context) *session {
	return c.Get(sessionKey).(*session)
}

// mustBeConnected wraps command func requires an open port.
func mustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if sessionFrom(c).client == nil {
			c.Err(fmt.Errorf("not connected, use 'connect' first"))
			return
		}
		fn(c)
	}
}

func parseByteArg(c *ishell.Context, index int, what string) (byte, bool) {
	if len(c.Args) <= index {
		c.Err(fmt.Errorf("%s required", what))
		return 0, false
	}
	val, err := strconv.ParseUint(c.Args[index], 10, 8)
	if err != nil {
		c.Err(fmt.Errorf("invalid %s: %v", what, err))
		return 0, false
	}
	return byte(val), true
}

func parseFloatArg(c *ishell.Context, index int, what string) (float32, bool) {
	if len(c.Args) <= index {
		c.Err(fmt.Errorf("%s required", what))
		return 0, false
	}
	val, err := strconv.ParseFloat(c.Args[index], 32)
	if err != nil {
		c.Err(fmt.Errorf("invalid %s: %v", what, err))
		return 0, false
	}
	return float32(val), true
}

var (
	connectCmd = ishell.Cmd{
		Name: "connect",
		Help: "[ADDRESS] open the configured port and initialize the device",
		Func: func(c *ishell.Context) {
			s := sessionFrom(c)
			address := s.cfg.Device.Address
			if len(c.Args) > 0 {
				addr, ok := parseByteArg(c, 0, "ADDRESS")
				if !ok {
					return
				}
				address = addr
			}

			var tr transport.Transport
			switch s.cfg.Device.Transport {
			case "serial":
				tr = serial.NewPort(s.cfg.Serial)
			case "sim":
				loop, err := local.NewFromConfig(s.cfg.Sim)
				if err != nil {
					c.Err(err)
					return
				}
				tr = loop
			default:
				c.Err(fmt.Errorf("unknown transport type %q", s.cfg.Device.Transport))
				return
			}

			client := xline.NewClient(tr, s.cfg.Device.Timeout, address)
			info, err := client.InitAndRelease(context.Background())
			if err != nil {
				c.Err(err)
				return
			}
			s.client = client
			c.Printf("device class %d.%d firmware %d.%d status %d\n",
				info.Class, info.Group, info.Year, info.Week, info.Status)
			c.SetPrompt(fmt.Sprintf("[%d] > ", address))
		},
	}

	disconnectCmd = ishell.Cmd{
		Name: "disconnect",
		Help: "drop the current session",
		Func: func(c *ishell.Context) {
			sessionFrom(c).client = nil
			c.SetPrompt(unconnectedPrompt)
		},
	}

	serialCmd = ishell.Cmd{
		Name: "serial",
		Help: "read the device serial number",
		Func: mustBeConnected(func(c *ishell.Context) {
			serial, err := sessionFrom(c).client.ReadSerialNumber(context.Background())
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(serial)
		}),
	}

	readCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "CHANNEL read a measurement channel (P1, P2, T, TOB1, TOB2, ...)",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CHANNEL required"))
				return
			}
			ch, err := xline.ParseChannel(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			value, status, err := sessionFrom(c).client.ReadChannelWithStatus(context.Background(), ch)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s = %g (status %d)\n", ch, value, status)
		}),
	}

	readIntCmd = ishell.Cmd{
		Name: "readint",
		Help: "CHANNEL read a channel as scaled 32-bit integer",
		Func: mustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CHANNEL required"))
				return
			}
			ch, err := xline.ParseChannel(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			value, err := sessionFrom(c).client.ReadChannelInt(context.Background(), ch)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%s = %d\n", ch, value)
		}),
	}

	coeffCmd = ishell.Cmd{
		Name: "coeff",
		Help: "ID [VALUE] read or write a calibration coefficient",
		Func: mustBeConnected(func(c *ishell.Context) {
			id, ok := parseByteArg(c, 0, "ID")
			if !ok {
				return
			}
			client := sessionFrom(c).client
			if len(c.Args) > 1 {
				value, ok := parseFloatArg(c, 1, "VALUE")
				if !ok {
					return
				}
				if err := client.WriteCoefficient(context.Background(), xline.Coefficient(id), value); err != nil {
					c.Err(err)
					return
				}
				c.Println("OK")
				return
			}
			value, err := client.ReadCoefficient(context.Background(), xline.Coefficient(id))
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("coeff %d = %g\n", id, value)
		}),
	}

	cfgCmd = ishell.Cmd{
		Name: "cfg",
		Help: "ID [VALUE] read or write a configuration byte",
		Func: mustBeConnected(func(c *ishell.Context) {
			id, ok := parseByteArg(c, 0, "ID")
			if !ok {
				return
			}
			client := sessionFrom(c).client
			if len(c.Args) > 1 {
				value, ok := parseByteArg(c, 1, "VALUE")
				if !ok {
					return
				}
				if err := client.WriteConfiguration(context.Background(), xline.Configuration(id), value); err != nil {
					c.Err(err)
					return
				}
				c.Println("OK")
				return
			}
			value, err := client.ReadConfiguration(context.Background(), xline.Configuration(id))
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("cfg %d = %d\n", id, value)
		}),
	}

	zeroCmd = ishell.Cmd{
		Name: "zero",
		Help: "CMD [VALUE] issue a zeroing command, optionally with a reference value",
		Func: mustBeConnected(func(c *ishell.Context) {
			cmd, ok := parseByteArg(c, 0, "CMD")
			if !ok {
				return
			}
			client := sessionFrom(c).client
			if len(c.Args) > 1 {
				value, ok := parseFloatArg(c, 1, "VALUE")
				if !ok {
					return
				}
				if err := client.ZeroWithValue(context.Background(), xline.ZeroCommand(cmd), value); err != nil {
					c.Err(err)
					return
				}
			} else if err := client.Zero(context.Background(), xline.ZeroCommand(cmd)); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}

	setAddrCmd = ishell.Cmd{
		Name: "setaddr",
		Help: "ADDRESS assign a new bus address to the connected device",
		Func: mustBeConnected(func(c *ishell.Context) {
			addr, ok := parseByteArg(c, 0, "ADDRESS")
			if !ok {
				return
			}
			old, err := sessionFrom(c).client.WriteAddress(context.Background(), addr)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("address %d (was %d)\n", addr, old)
		}),
	}
)

const unconnectedPrompt = "[none] > "

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	shell := ishell.New()
	shell.Set(sessionKey, &session{cfg: cfg})
	shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range []*ishell.Cmd{
		&connectCmd,
		&disconnectCmd,
		&serialCmd,
		&readCmd,
		&readIntCmd,
		&coeffCmd,
		&cfgCmd,
		&zeroCmd,
		&setAddrCmd,
	} {
		shell.AddCmd(cmd)
	}

	if args := flag.Args(); len(args) > 0 {
		// Evaluation only, no interactive shell.
		if err := shell.Process(args...); err != nil {
			os.Exit(1)
		}
		return
	}
	shell.Println("X-Line console. Type 'help' for commands.")
	shell.Run()
}
