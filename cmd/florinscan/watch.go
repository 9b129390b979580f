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
	"github.com/rjeczalik/notify"

	"github.com/florinscan/florinscan/log"
	"github.com/florinscan/florinscan/supervisor"
)

// watchConfig reloads the seed list, max_peers, and reorg thresholds
// from file whenever it changes on disk, without restarting the
// process or dropping any live session.
func watchConfig(file string, sv *supervisor.Supervisor, stop <-chan struct{}) {
	if file == "" {
		return
	}

	events := make(chan notify.EventInfo, 4)
	if err := notify.Watch(file, events, notify.Write); err != nil {
		log.Warn("config watch failed to start", "file", file, "err", err)
		return
	}
	defer notify.Stop(events)

	for {
		select {
		case <-stop:
			return
		case <-events:
			var cfg florinscanConfig
			if err := loadConfigFile(file, &cfg); err != nil {
				log.Warn("config reload failed", "file", file, "err", err)
				continue
			}
			sv.UpdateConfig(cfg.Supervisor)
		}
	}
}
