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

package seedpublisher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florinscan/florinscan/chainview"
	"github.com/florinscan/florinscan/supervisor"
)

type fakeSnapshotter struct{ status supervisor.Status }

func (f fakeSnapshotter) Snapshot() supervisor.Status { return f.status }

func TestBestChainAddressesPicksHeaviestAndCaps(t *testing.T) {
	src := fakeSnapshotter{status: supervisor.Status{
		View: chainview.View{
			PeerMap: map[chainview.ChainID]*chainview.ChainBucket{
				"weak": {BestHeight: 10, Peers: []chainview.PeerInfo{{Address: "1.1.1.1:7213"}}},
				"strong": {BestHeight: 99, Peers: []chainview.PeerInfo{
					{Address: "2.2.2.2:7213"},
					{Address: "3.3.3.3:7213"},
				}},
			},
		},
	}}

	p := &Publisher{cfg: Config{Count: 1}, src: src}
	addrs := p.bestChainAddresses()
	require.Len(t, addrs, 1)
	require.Contains(t, []string{"2.2.2.2:7213", "3.3.3.3:7213"}, addrs[0])
}
