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

import "gopkg.in/urfave/cli.v1"

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	networkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "Network to monitor (florincoin, florincoin-testnet)",
		Value: "florincoin",
	}
	maxPeersFlag = cli.IntFlag{
		Name:  "maxpeers",
		Usage: "Maximum number of concurrently tracked peers",
		Value: 1000,
	}
	seedFlag = cli.StringSliceFlag{
		Name:  "seed",
		Usage: "Additional DNS seed hostname to resolve beyond the network's DNS seed list, may be repeated",
	}
	devFlag = cli.BoolFlag{
		Name:  "dev",
		Usage: "Use an in-process leveldb-backed FullNodeAdapter instead of a real RPC full node",
	}
	fullnodeRPCFlag = cli.StringFlag{
		Name:  "fullnode.rpc",
		Usage: "Full node RPC endpoint",
	}
	httpAddrFlag = cli.StringFlag{
		Name:  "http.addr",
		Usage: "Status server listen address",
		Value: "127.0.0.1:8745",
	}
	metricsInfluxDBEnableFlag = cli.BoolFlag{
		Name:  "metrics.influxdb",
		Usage: "Enable InfluxDB metrics reporting",
	}
	metricsInfluxDBEndpointFlag = cli.StringFlag{
		Name:  "metrics.influxdb.endpoint",
		Usage: "InfluxDB API endpoint",
	}
	metricsInfluxDBDatabaseFlag = cli.StringFlag{
		Name:  "metrics.influxdb.database",
		Usage: "InfluxDB database name",
	}
)

var appFlags = []cli.Flag{
	configFileFlag,
	networkFlag,
	maxPeersFlag,
	seedFlag,
	devFlag,
	fullnodeRPCFlag,
	httpAddrFlag,
	metricsInfluxDBEnableFlag,
	metricsInfluxDBEndpointFlag,
	metricsInfluxDBDatabaseFlag,
}
