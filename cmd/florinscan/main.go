// Copyright 2015 The go-probeum Authors
// This file is part of the florinscan library.
//
// The florinscan library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The florinscan library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the florinscan library. If not, see <http://www.gnu.org/licenses/>.

// Command florinscan runs the multi-peer crawler/chain-monitor
// described by the supervisor, peersession, and chainview packages: it
// dials outbound peers on a Bitcoin-family network, tracks what each
// reports about the chain tip, and raises a reorg trigger when a
// competing fork is long enough and recent enough relative to the
// active tip.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/urfave/cli.v1"

	"github.com/florinscan/florinscan/fullnode"
	"github.com/florinscan/florinscan/log"
	"github.com/florinscan/florinscan/metrics"
	"github.com/florinscan/florinscan/statusserver"
	"github.com/florinscan/florinscan/supervisor"
)

func main() {
	app := cli.NewApp()
	app.Name = "florinscan"
	app.Usage = "Multi-peer Florincoin crawler and chain-tip monitor"
	app.Flags = appFlags
	app.Action = run

	app.Commands = []cli.Command{
		{
			Name:   "console",
			Usage:  "Run the crawler with an interactive console attached",
			Action: runWithConsole,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	sv, node, stop, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if node != nil {
			closeNode(node)
		}
	}()

	<-stop
	sv.Stop()
	return nil
}

func runWithConsole(ctx *cli.Context) error {
	sv, node, stop, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if node != nil {
			closeNode(node)
		}
	}()

	go runConsole(sv)
	<-stop
	sv.Stop()
	return nil
}

// bootstrap wires a Supervisor, its FullNodeAdapter, and the status
// server from CLI/TOML configuration, and returns a channel that closes
// on SIGINT/SIGTERM.
func bootstrap(ctx *cli.Context) (*supervisor.Supervisor, fullnode.Adapter, <-chan struct{}, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	var node fullnode.Adapter
	if ctx.GlobalBool(devFlag.Name) {
		dev, err := fullnode.OpenDevAdapter("./florinscan-dev-db")
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening dev adapter: %w", err)
		}
		node = dev
	} else if endpoint := ctx.GlobalString(fullnodeRPCFlag.Name); endpoint != "" {
		node = fullnode.NewRPCAdapter(endpoint)
	}

	sv, err := supervisor.New(cfg.Supervisor, node)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("constructing supervisor: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sv.Start(runCtx)

	if node != nil {
		if err := node.Start(runCtx); err != nil {
			log.Warn("fullnode adapter failed to start", "err", err)
		}
	}

	stopWatch := make(chan struct{})
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		go watchConfig(file, sv, stopWatch)
	}

	status := statusserver.New(sv, 0)
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: status.Handler()}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("status server stopped", "err", err)
		}
	}()

	if cfg.Metrics.Enabled {
		reporter, err := metrics.NewReporter(cfg.Metrics, sv)
		if err != nil {
			log.Warn("metrics reporter not started", "err", err)
		} else {
			go reporter.Run(stopWatch)
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-signals
		close(stopWatch)
		cancel()
		httpServer.Close()
		close(done)
	}()

	return sv, node, done, nil
}

func closeNode(node fullnode.Adapter) {
	if dev, ok := node.(*fullnode.DevAdapter); ok {
		dev.Close()
	}
}
