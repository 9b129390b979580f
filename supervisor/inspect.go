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
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Inspect renders the current chain partition as a table, the same
// console affordance cmd/gprobe's console exposes for peer and
// transaction-pool state.
func (sv *Supervisor) Inspect() string {
	status := sv.Snapshot()

	var buf strings.Builder
	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"chain_id", "peers", "best_height", "best_hash"})

	for id, bucket := range status.View.PeerMap {
		label := string(id)
		if len(label) > 12 {
			label = label[:12]
		}
		table.Append([]string{
			label,
			fmt.Sprintf("%d", len(bucket.Peers)),
			fmt.Sprintf("%d", bucket.BestHeight),
			string(bucket.BestHash),
		})
	}
	table.Render()

	fmt.Fprintf(&buf, "\npeers: %d/%d  armed: %v\n", status.PeerCount, status.MaxPeers, status.Armed)
	return buf.String()
}
