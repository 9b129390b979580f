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

package peersession

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

var errNoCoinbase = errors.New("peersession: block has no usable coinbase height")

// onTx appends a post-sync transaction announcement to the mempool.
func (s *Session) onTx(m *wire.MsgTx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mempool = append(s.mempool, m)
}

// reconcileMempoolLocked removes mempool entries whose hash matches a
// transaction the arriving block confirms. This walks every index,
// including 0 — a reference implementation's loop (`i = len-1; i > 0;
// i--`) skips index 0, which looks like an off-by-one bug rather than
// intended behavior, so it is not reproduced here. Iterating in reverse
// keeps removal safe against the slice shrinking mid-scan.
func (s *Session) reconcileMempoolLocked(m *wire.MsgBlock) {
	if len(s.mempool) == 0 || len(m.Transactions) == 0 {
		return
	}
	confirmed := make(map[chainhash.Hash]struct{}, len(m.Transactions))
	for _, tx := range m.Transactions {
		confirmed[tx.TxHash()] = struct{}{}
	}
	for i := len(s.mempool) - 1; i >= 0; i-- {
		if _, ok := confirmed[s.mempool[i].TxHash()]; ok {
			s.mempool = append(s.mempool[:i], s.mempool[i+1:]...)
		}
	}
}
