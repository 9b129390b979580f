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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/florinscan/florinscan/chainview"
	"github.com/florinscan/florinscan/supervisor"
)

type fakeSnapshotter struct{ status supervisor.Status }

func (f fakeSnapshotter) Snapshot() supervisor.Status { return f.status }

func TestSendWritesABatch(t *testing.T) {
	var wrote bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrote = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	src := fakeSnapshotter{status: supervisor.Status{
		PeerCount: 2,
		MaxPeers:  10,
		View:      chainview.View{PeerMap: map[chainview.ChainID]*chainview.ChainBucket{}},
	}}
	r, err := NewReporter(Config{Enabled: true, Endpoint: ts.URL, Database: "florinscan"}, src)
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.send())
	require.True(t, wrote)
}
