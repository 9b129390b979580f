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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/florinscan/florinscan/metrics"
	"github.com/florinscan/florinscan/supervisor"
)

// tomlSettings makes TOML keys match the Go struct field names exactly,
// the same convention cmd/gprobe/config.go uses.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// florinscanConfig is the root TOML document; each section maps onto the
// config struct of the package it configures.
type florinscanConfig struct {
	Supervisor supervisor.Config
	Metrics    metrics.Config
	HTTPAddr   string
}

func defaultConfig() florinscanConfig {
	return florinscanConfig{
		Supervisor: supervisor.Config{Network: "florincoin"},
		HTTPAddr:   "127.0.0.1:8745",
	}
}

func loadConfigFile(file string, cfg *florinscanConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig loads defaults, then a config file if given, then applies
// any CLI flags on top (CLI wins, matching cmd/gprobe's precedence).
func makeConfig(ctx *cli.Context) (florinscanConfig, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, fmt.Errorf("loading config file: %w", err)
		}
	}

	if ctx.GlobalIsSet(networkFlag.Name) {
		cfg.Supervisor.Network = ctx.GlobalString(networkFlag.Name)
	}
	if ctx.GlobalIsSet(maxPeersFlag.Name) {
		cfg.Supervisor.MaxPeers = ctx.GlobalInt(maxPeersFlag.Name)
	}
	if seeds := ctx.GlobalStringSlice(seedFlag.Name); len(seeds) > 0 {
		cfg.Supervisor.DNSSeeds = append(cfg.Supervisor.DNSSeeds, seeds...)
	}
	if ctx.GlobalIsSet(httpAddrFlag.Name) {
		cfg.HTTPAddr = ctx.GlobalString(httpAddrFlag.Name)
	}
	if ctx.GlobalIsSet(metricsInfluxDBEnableFlag.Name) {
		cfg.Metrics.Enabled = ctx.GlobalBool(metricsInfluxDBEnableFlag.Name)
	}
	if ctx.GlobalIsSet(metricsInfluxDBEndpointFlag.Name) {
		cfg.Metrics.Endpoint = ctx.GlobalString(metricsInfluxDBEndpointFlag.Name)
	}
	if ctx.GlobalIsSet(metricsInfluxDBDatabaseFlag.Name) {
		cfg.Metrics.Database = ctx.GlobalString(metricsInfluxDBDatabaseFlag.Name)
	}

	return cfg, nil
}
