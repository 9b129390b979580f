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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florinscan/florinscan/fullnode"
	"github.com/florinscan/florinscan/peeraddr"
)

func testSupervisor(t *testing.T, cfg Config) *Supervisor {
	t.Helper()
	if cfg.Network == "" {
		cfg.Network = "florincoin"
	}
	sv, err := New(cfg, nil)
	require.NoError(t, err)
	return sv
}

func TestAddPeerRejectsDuplicate(t *testing.T) {
	sv := testSupervisor(t, Config{MaxPeers: 10})
	hash := peeraddr.HashString("10.0.0.1:7213")
	sv.peers[hash] = nil // simulate a tracked session without dialing

	err := sv.AddPeer("10.0.0.1:7213")
	require.Error(t, err)
}

func TestAddPeerRejectsAtCapacity(t *testing.T) {
	sv := testSupervisor(t, Config{MaxPeers: 1})
	sv.peers[peeraddr.HashString("10.0.0.9:7213")] = nil

	err := sv.AddPeer("10.0.0.1:7213")
	require.Error(t, err)
}

func TestAddPeerRejectsRecentlyDestroyed(t *testing.T) {
	sv := testSupervisor(t, Config{MaxPeers: 10})
	hash := peeraddr.HashString("10.0.0.1:7213")
	sv.seen.Add(hash, struct{}{})

	err := sv.AddPeer("10.0.0.1:7213")
	require.Error(t, err)
}

func TestAdmissionPolicyRejectsByScript(t *testing.T) {
	sv := testSupervisor(t, Config{
		MaxPeers:           10,
		AdmissionPolicySrc: `function admit(host, port) { return host !== "10.0.0.1"; }`,
	})

	err := sv.AddPeer("10.0.0.1:7213")
	require.Error(t, err)
}

func TestOnReorgTriggerArmsAndFiresOnce(t *testing.T) {
	sv := testSupervisor(t, Config{MaxPeers: 10, ReorgTriggerLength: 1})
	dev, err := fullnode.OpenDevAdapter(t.TempDir())
	require.NoError(t, err)
	defer dev.Close()
	dev.SetChainTips([]fullnode.ChainTip{
		{Height: 1000, Status: fullnode.StatusActive},
		{Height: 998, BranchLen: 5, Status: fullnode.StatusValidFork},
	})
	sv.node = dev

	var fired []ReorgTrigger
	sv.OnReorgTrigger(func(rt ReorgTrigger) { fired = append(fired, rt) })

	require.True(t, sv.armed)

	// Two tip checks against the same competing fork: only the first,
	// armed one reaches the subscriber.
	sv.checkTip(context.Background())
	sv.checkTip(context.Background())

	if len(fired) != 1 {
		t.Fatalf("expected subscriber to receive exactly one trigger, got %d", len(fired))
	}
	require.Equal(t, int64(5), fired[0].ForkLength)
	require.False(t, sv.armed)
}

func TestSnapshotReflectsPeerCount(t *testing.T) {
	sv := testSupervisor(t, Config{MaxPeers: 10})
	status := sv.Snapshot()
	require.Equal(t, 0, status.PeerCount)
	require.Equal(t, 10, status.MaxPeers)
}
