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

package statusserver

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florinscan/florinscan/chainview"
	"github.com/florinscan/florinscan/supervisor"
)

type fakeSnapshotter struct {
	status supervisor.Status
}

func (f fakeSnapshotter) Snapshot() supervisor.Status { return f.status }

func TestHandleStatusServesJSON(t *testing.T) {
	src := fakeSnapshotter{status: supervisor.Status{
		PeerCount: 3,
		MaxPeers:  125,
		Armed:     true,
		View: chainview.View{
			PeerMap: map[chainview.ChainID]*chainview.ChainBucket{"chain-a": {}},
		},
	}}
	s := New(src, 0)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/status", nil)
	s.handleStatus(rec, req, nil)

	var doc StatusDoc
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, 3, doc.PeerCount)
	require.Equal(t, 125, doc.MaxPeers)
	require.True(t, doc.Armed)
	require.Equal(t, 1, doc.Chains)
}
