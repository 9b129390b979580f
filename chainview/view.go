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

// Package chainview is a pure aggregator that folds a snapshot of
// PeerSession states into a partition of peers by the chain they
// observe, with the best height/hash reported per partition. It does
// not derive chain tips; the supervisor's tip check reads those from the
// full node. It holds no state of its own and never outlives the
// snapshot it was built from.
package chainview

import (
	"github.com/holiman/uint256"

	"github.com/florinscan/florinscan/chainparams"
	"github.com/florinscan/florinscan/peersession"
)

// ChainID is an opaque, order-dependent label for a grouping of peers
// that agree on a window of (height → rhash) mappings. Callers must not
// assign it any meaning beyond equality within a single View.
type ChainID chainparams.RHash

// PeerInfo is the (user_agent, ip) pair ChainView records per peer in a
// chain's peer_map bucket.
type PeerInfo struct {
	UserAgent string
	Address   string
	PeerHash  string
}

// ChainBucket is one entry of peer_map: the peers observed to agree on a
// chain, plus the best height/hash any of them reported.
type ChainBucket struct {
	Peers     []PeerInfo
	BestHeight int64
	BestHash   chainparams.RHash
}

// View is the output of Build: a partition of all qualifying peers by
// the chain they observe.
type View struct {
	PeerMap map[ChainID]*ChainBucket
	Chains  map[ChainID]map[int64]chainparams.RHash
}

// Build folds a slice of PeerSession snapshots into a View.
func Build(snapshots []peersession.Snapshot) View {
	v := View{
		PeerMap: make(map[ChainID]*ChainBucket),
		Chains:  make(map[ChainID]map[int64]chainparams.RHash),
	}

	for _, snap := range snapshots {
		if !snap.InitialSyncComplete {
			continue // ChainView ignores peers that are not yet synced.
		}
		if len(snap.BlockHeightMap) == 0 {
			continue // No information to group on.
		}

		id, matched := v.matchChain(snap.BlockHeightMap)
		if !matched {
			id = firstChainID(snap.BlockHeightMap)
			v.Chains[id] = copyHeightMap(snap.BlockHeightMap)
			v.PeerMap[id] = &ChainBucket{}
		}

		bucket := v.PeerMap[id]
		bucket.Peers = append(bucket.Peers, PeerInfo{
			UserAgent: snap.UserAgent,
			Address:   snap.Address.String(),
			PeerHash:  snap.PeerHash,
		})
		if snap.BestHeightReported > 0 {
			bumpBest(bucket, int64(snap.BestHeightReported), snap.LastRBlockHash)
		}
	}

	return v
}

// matchChain checks every existing chain_id for full agreement with H:
// every (height → rhash) pair in H must be present with the same value
// in chains[c].
func (v *View) matchChain(h map[chainparams.RHash]int64) (ChainID, bool) {
	// Invert height->rhash lookups are keyed by rhash->height in the
	// snapshot (block_height_map), but chains[] is keyed by height->rhash.
	// Build the height->rhash view of this peer once.
	peerByHeight := invert(h)

	for id, chain := range v.Chains {
		agree := true
		for height, rhash := range peerByHeight {
			existing, ok := chain[height]
			if !ok || existing != rhash {
				agree = false
				break
			}
		}
		if agree {
			return id, true
		}
	}
	return "", false
}

func invert(h map[chainparams.RHash]int64) map[int64]chainparams.RHash {
	out := make(map[int64]chainparams.RHash, len(h))
	for rhash, height := range h {
		out[height] = rhash
	}
	return out
}

func copyHeightMap(h map[chainparams.RHash]int64) map[int64]chainparams.RHash {
	return invert(h)
}

// firstChainID picks the rhash of the lowest height observed as the
// (arbitrary, stable) chain label — deterministic given a fixed H, even
// though map iteration order in Go is not, which is why it picks by
// height rather than iteration order.
func firstChainID(h map[chainparams.RHash]int64) ChainID {
	var (
		minHeight int64
		minRHash  chainparams.RHash
		first     = true
	)
	for rhash, height := range h {
		if first || height < minHeight {
			minHeight, minRHash, first = height, rhash, false
		}
	}
	return ChainID(minRHash)
}

func bumpBest(b *ChainBucket, height int64, rhash chainparams.RHash) {
	if height <= b.BestHeight {
		return
	}
	b.BestHeight = height
	b.BestHash = rhash
}

// HeightDelta returns a-b using overflow-safe unsigned arithmetic, for
// callers that need a candidate fork's distance below the active tip.
// The supervisor's reorg-age check does not call it; it compares int64
// heights directly.
func HeightDelta(a, b int64) int64 {
	if a < b {
		return -HeightDelta(b, a)
	}
	ua, ub := uint256.NewInt(uint64(a)), uint256.NewInt(uint64(b))
	d := new(uint256.Int).Sub(ua, ub)
	return int64(d.Uint64())
}
