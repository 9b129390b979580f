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

package chainview

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florinscan/florinscan/chainparams"
	"github.com/florinscan/florinscan/peeraddr"
	"github.com/florinscan/florinscan/peersession"
)

func mkSnap(peerHash string, synced bool, bestHeight int32, bhm map[chainparams.RHash]int64) peersession.Snapshot {
	return peersession.Snapshot{
		PeerHash:            peerHash,
		Address:             peeraddr.Address{Host: "10.0.0." + peerHash, Port: 7213},
		UserAgent:           "/florinscan:0.1.0/",
		InitialSyncComplete: synced,
		BestHeightReported:  bestHeight,
		BlockHeightMap:      bhm,
	}
}

func TestIgnoresUnsyncedAndEmptyPeers(t *testing.T) {
	snaps := []peersession.Snapshot{
		mkSnap("1", false, 100, map[chainparams.RHash]int64{"h100": 100}),
		mkSnap("2", true, 100, nil),
	}
	v := Build(snaps)
	require.Empty(t, v.PeerMap)
}

func TestPartitionsTwoChains(t *testing.T) {
	chainA := map[chainparams.RHash]int64{"h100": 100, "h101": 101, "h102": 102}
	chainAother := map[chainparams.RHash]int64{"h101": 101, "h102": 102}
	chainB := map[chainparams.RHash]int64{"h100": 100, "h101": 101, "hFork": 102}

	snaps := []peersession.Snapshot{
		mkSnap("p1", true, 102, chainA),
		mkSnap("p2", true, 103, chainAother),
		mkSnap("p3", true, 102, chainB),
	}
	v := Build(snaps)
	require.Len(t, v.PeerMap, 2)

	var sizes []int
	for _, b := range v.PeerMap {
		sizes = append(sizes, len(b.Peers))
	}
	require.ElementsMatch(t, []int{2, 1}, sizes)
}

func TestDeterministicModuloChainIDRenaming(t *testing.T) {
	chainA := map[chainparams.RHash]int64{"h1": 1, "h2": 2}
	s1 := []peersession.Snapshot{mkSnap("a", true, 2, chainA), mkSnap("b", true, 2, chainA)}
	s2 := []peersession.Snapshot{mkSnap("b", true, 2, chainA), mkSnap("a", true, 2, chainA)}

	v1 := Build(s1)
	v2 := Build(s2)
	require.Len(t, v1.PeerMap, 1)
	require.Len(t, v2.PeerMap, 1)

	var b1, b2 *ChainBucket
	for _, b := range v1.PeerMap {
		b1 = b
	}
	for _, b := range v2.PeerMap {
		b2 = b
	}
	require.ElementsMatch(t, b1.Peers, b2.Peers)
	require.Equal(t, b1.BestHeight, b2.BestHeight)
}
