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
	"time"

	"github.com/florinscan/florinscan/fullnode"
	"github.com/florinscan/florinscan/peersession"
)

// runStallLoop periodically re-drives peers that have finished header
// sync but have fallen behind the best height any tracked peer has
// reported, and are not already waiting on an outstanding getdata.
func (sv *Supervisor) runStallLoop(ctx context.Context) {
	ticker := time.NewTicker(sv.cfg.StallCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sv.sweepStalled()
		}
	}
}

// sweepStalled finds the maximum best_height_reported across all
// tracked sessions, then re-issues getblocks (via RequestBlocks) for
// every session that has completed header sync, is behind that max,
// and has no blocks currently outstanding.
func (sv *Supervisor) sweepStalled() {
	sv.mu.Lock()
	peers := make([]*peersession.Session, 0, len(sv.peers))
	for _, p := range sv.peers {
		peers = append(peers, p)
	}
	sv.mu.Unlock()

	var max int32
	snaps := make(map[*peersession.Session]peersession.Snapshot, len(peers))
	for _, p := range peers {
		snap := p.Snapshot()
		snaps[p] = snap
		if snap.BestHeightReported > max {
			max = snap.BestHeightReported
		}
	}

	for p, snap := range snaps {
		if !snap.HeaderSyncComplete {
			continue
		}
		if snap.BestHeightReported >= max {
			continue
		}
		if snap.RequestedBlocksLen != 0 {
			continue
		}
		if err := p.RequestBlocks(); err != nil {
			sv.log.Debug("stall recovery request failed", "peer_hash", snap.PeerHash, "err", err)
		}
	}
}

// runTipLoop periodically polls the full node's chain tips and fires
// the armed reorg subscriber when a competing branch is both long enough
// (reorg_trigger_length) and close enough to the active tip
// (reorg_tip_maxage) to matter.
func (sv *Supervisor) runTipLoop(ctx context.Context) {
	if sv.node == nil {
		return
	}
	ticker := time.NewTicker(sv.cfg.TipCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sv.checkTip(ctx)
		}
	}
}

// checkTip asks the full node for every known chain tip, separates the
// active one from the rest, and, if a subscriber is armed, delivers a
// ReorgTrigger for the first other tip whose branch is both long enough
// (reorg_trigger_length) and not too far below the active tip
// (reorg_tip_maxage, a height distance rather than a wall-clock
// duration), then disarms the subscription.
func (sv *Supervisor) checkTip(ctx context.Context) {
	tips, err := sv.node.GetChainTips(ctx)
	if err != nil {
		sv.log.Warn("fullnode getchaintips query failed", "err", err)
		return
	}

	var active *fullnode.ChainTip
	var others []fullnode.ChainTip
	for i := range tips {
		t := tips[i]
		if t.Status == fullnode.StatusActive {
			if active == nil || t.Height > active.Height {
				active = &t
			}
			continue
		}
		others = append(others, t)
	}
	if active == nil {
		return
	}

	for _, other := range others {
		if other.BranchLen < sv.cfg.ReorgTriggerLength {
			continue
		}
		if other.Height < active.Height-sv.cfg.ReorgTipMaxAge {
			continue
		}

		sv.mu.Lock()
		sub := sv.reorgSub
		armed := sv.armed
		sv.mu.Unlock()
		if !armed || sub == nil {
			return
		}

		sub(ReorgTrigger{
			ActiveHeight: active.Height,
			ActiveHash:   active.Hash,
			ForkHeight:   other.Height,
			ForkHash:     other.Hash,
			ForkLength:   other.BranchLen,
		})

		sv.mu.Lock()
		sv.armed = false
		sv.mu.Unlock()
		return
	}
}
