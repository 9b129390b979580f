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
	"github.com/btcsuite/btcd/wire"

	"github.com/florinscan/florinscan/chainparams"
)

// onInv partitions inventory vectors into block and tx invs and drives
// getdata requests, distinguishing initial sync from ongoing tracking.
func (s *Session) onInv(m *wire.MsgInv) {
	s.mu.Lock()

	var blockHashes, txHashes []*wire.InvVect
	for _, iv := range m.InvList {
		switch iv.Type {
		case wire.InvTypeBlock:
			blockHashes = append(blockHashes, iv)
		case wire.InvTypeTx:
			txHashes = append(txHashes, iv)
		default:
			// Unknown inventory types are ignored.
		}
	}

	duringInitialSync := s.headerSyncComplete && !s.initialSyncComplete
	var getdataBlocks []*wire.InvVect
	switch {
	case duringInitialSync && len(blockHashes) > 1:
		// Overwrite requested_blocks with exactly this batch's hashes.
		s.requestedBlocks.Clear()
		for _, iv := range blockHashes {
			s.requestedBlocks.Add(iv.Hash)
		}
		getdataBlocks = blockHashes
	case s.initialSyncComplete && len(blockHashes) >= 1:
		// Ongoing tip tracking: issue getdata without replacing the set.
		getdataBlocks = blockHashes
	}
	s.mu.Unlock()

	if len(getdataBlocks) > 0 {
		if err := s.sendGetData(getdataBlocks); err != nil {
			s.log.Debug("getdata (blocks) send failed", "err", err)
		}
	}
	if len(txHashes) > 0 {
		if err := s.sendGetData(txHashes); err != nil {
			s.log.Debug("getdata (txs) send failed", "err", err)
		}
	}
}

func (s *Session) sendGetData(items []*wire.InvVect) error {
	msg := wire.NewMsgGetData()
	for _, iv := range items {
		if err := msg.AddInvVect(iv); err != nil {
			return err
		}
	}
	return s.writeMessage(msg)
}

// onBlock processes an arriving block body: records its height, folds
// it into the block/height maps, reconciles the mempool, and advances
// initial sync when the last requested block matches the header tip.
func (s *Session) onBlock(m *wire.MsgBlock) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := chainparams.HashFromChainhash(m.BlockHash())
	rhash := hash.RHash()

	height, err := coinbaseHeight(m)
	if err == nil && int32(height) > s.bestHeightReported {
		s.bestHeightReported = int32(height)
	}

	blk := &Block{Msg: m, Hash: hash, RHash: rhash, Height: height}
	s.blockMap[rhash] = blk
	s.blockHeightMap[rhash] = height

	s.lastBlockHash = hash
	s.lastRBlockHash = rhash

	s.requestedBlocks.Remove(hash.Chainhash())

	s.reconcileMempoolLocked(m)

	if !s.initialSyncComplete {
		if s.lastBlockHash == s.lastHeaderHash {
			s.initialSyncComplete = true
			s.phase = Live
		} else if s.requestedBlocks.Cardinality() == 0 {
			from := s.lastBlockHash
			go func() {
				if err := s.sendGetBlocks(from); err != nil {
					s.log.Debug("getblocks (continuation) send failed", "err", err)
				}
			}()
		}
	}
}

// coinbaseHeight extracts the BIP34-style block height encoded in the
// coinbase transaction's scriptSig. It returns 0 and errNoCoinbase if the
// block predates height-in-coinbase or the encoding is malformed; onBlock
// still records such a block, under height 0, and does not log it.
func coinbaseHeight(m *wire.MsgBlock) (int64, error) {
	if len(m.Transactions) == 0 || len(m.Transactions[0].TxIn) == 0 {
		return 0, errNoCoinbase
	}
	script := m.Transactions[0].TxIn[0].SignatureScript
	if len(script) == 0 {
		return 0, errNoCoinbase
	}
	// BIP34: first byte is the push-length of the serialized height.
	n := int(script[0])
	if n < 1 || n > 8 || len(script) < 1+n {
		return 0, errNoCoinbase
	}
	var height int64
	for i := 0; i < n; i++ {
		height |= int64(script[1+i]) << (8 * uint(i))
	}
	return height, nil
}
