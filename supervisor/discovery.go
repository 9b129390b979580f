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

package supervisor

import (
	"context"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
)

// runDiscoveryLoop resolves every configured DNS seed on a fixed
// interval and feeds each returned address through AddPeer. Individual
// seed failures never abort the round.
func (sv *Supervisor) runDiscoveryLoop(ctx context.Context) {
	ticker := time.NewTicker(sv.cfg.DiscoveryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, seed := range sv.cfg.DNSSeeds {
				sv.discoverFrom(ctx, seed)
			}
		}
	}
}

// discoverFrom resolves one DNS seed and admits every address it
// returns. The lookup runs on its own errgroup goroutine and
// discoverFrom returns without waiting for it, so a slow or failing
// lookup against one seed never blocks the others.
func (sv *Supervisor) discoverFrom(ctx context.Context, seed string) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resolver := net.DefaultResolver
		ips, err := resolver.LookupHost(gctx, seed)
		if err != nil {
			sv.log.Warn("dns seed lookup failed", "seed", seed, "err", err)
			return nil
		}
		for _, ip := range ips {
			addrString := net.JoinHostPort(ip, sv.params.DefaultPort)
			if err := sv.AddPeer(addrString); err != nil {
				sv.log.Debug("discovery candidate not admitted", "addr", addrString, "err", err)
			}
		}
		return nil
	})
	go func() { _ = g.Wait() }()
}
