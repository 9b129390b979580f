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

// Package metrics pushes periodic counters to InfluxDB, mirroring
// cmd/gprobe's InfluxDB metrics flags (MetricsEnableInfluxDBFlag and
// friends) but reporting crawler-specific series instead of go
// runtime/EVM counters.
package metrics

import (
	"fmt"
	"time"

	client "github.com/influxdata/influxdb/client/v2"

	"github.com/florinscan/florinscan/log"
	"github.com/florinscan/florinscan/supervisor"
)

// Config mirrors cmd/gprobe/config.go's InfluxDB flag group.
type Config struct {
	Enabled  bool
	Endpoint string
	Database string
	Username string
	Password string
	Tags     map[string]string
	Interval time.Duration
}

// Reporter periodically samples a Supervisor and writes a batch of
// points to InfluxDB, so any operational deployment of the crawler can
// be observed externally.
type Reporter struct {
	cfg Config
	src Snapshotter
	c   client.Client
	log *log.Logger
}

// Snapshotter is the same narrow dependency statusserver takes.
type Snapshotter interface {
	Snapshot() supervisor.Status
}

func NewReporter(cfg Config, src Snapshotter) (*Reporter, error) {
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Second
	}
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Endpoint,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("metrics: building influxdb client: %w", err)
	}
	return &Reporter{cfg: cfg, src: src, c: c, log: log.New("module", "metrics")}, nil
}

// Run blocks, pushing a batch every cfg.Interval, until stop is closed.
func (r *Reporter) Run(stop <-chan struct{}) {
	if !r.cfg.Enabled {
		return
	}
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := r.send(); err != nil {
				r.log.Warn("influxdb write failed", "err", err)
			}
		}
	}
}

func (r *Reporter) send() error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{Database: r.cfg.Database})
	if err != nil {
		return err
	}

	status := r.src.Snapshot()
	fields := map[string]interface{}{
		"peer_count": status.PeerCount,
		"max_peers":  status.MaxPeers,
		"chains":     len(status.View.PeerMap),
	}
	if status.Armed {
		fields["armed"] = 1
	} else {
		fields["armed"] = 0
	}

	pt, err := client.NewPoint("florinscan_supervisor", r.cfg.Tags, fields, time.Now())
	if err != nil {
		return err
	}
	bp.AddPoint(pt)

	return r.c.Write(bp)
}

// Close releases the underlying HTTP client.
func (r *Reporter) Close() error { return r.c.Close() }
