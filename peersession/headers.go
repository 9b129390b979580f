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
	"fmt"
	"net"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/florinscan/florinscan/chainparams"
)

var zeroHash chainhash.Hash

func (s *Session) sendGetHeaders() error {
	s.mu.Lock()
	from := s.lastHeaderHash
	s.phase = HeaderSync
	s.mu.Unlock()

	msg := wire.NewMsgGetHeaders()
	msg.ProtocolVersion = s.params.ProtocolVersion
	ch := from.Chainhash()
	msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, &ch)
	return s.writeMessage(msg)
}

// netAddressString renders a wire.NetAddress as the "host:port" form
// address gossip and DNS discovery both use.
func netAddressString(na *wire.NetAddress) string {
	return net.JoinHostPort(na.IP.String(), fmt.Sprintf("%d", na.Port))
}

// onAddr hands each announced host:port to the supervisor's on_address
// callback. Empty address lists are silently discarded.
func (s *Session) onAddr(m *wire.MsgAddr) {
	if len(m.AddrList) == 0 {
		return
	}
	for _, na := range m.AddrList {
		if s.cb.OnAddress != nil {
			s.cb.OnAddress(netAddressString(na))
		}
	}
}

// onHeaders implements the five-step header-sync algorithm: reset on a
// mid-sync batch, append non-null headers, then complete or advance.
func (s *Session) onHeaders(m *wire.MsgHeaders) {
	s.mu.Lock()

	batchSize := len(m.Headers)

	// Step 1: mid-sync batches reset the sliding window before appending.
	if batchSize >= midSyncBatchThreshold {
		s.headersBuffer = nil
	}

	// Step 2: append all non-null headers, track the final one.
	var last *Header
	for _, wh := range m.Headers {
		if wh == nil {
			continue
		}
		h := headerFromWire(wh)
		s.headersBuffer = append(s.headersBuffer, h)
		hc := h
		last = &hc
	}
	s.lastHeader = last

	var doComplete, doAdvance bool
	switch {
	case last == nil:
		// Step 3: empty batch -> header sync complete.
		doComplete = true
	case batchSize < maxHeadersPerBatch:
		// Step 4: partial batch -> also complete.
		doComplete = true
	default:
		// Step 5: advance the cursor and request another batch.
		s.lastHeaderHash = last.Hash
		doAdvance = true
	}
	if doComplete {
		s.completeHeaderSyncLocked()
	}
	s.mu.Unlock()

	if doAdvance {
		if err := s.sendGetHeaders(); err != nil {
			s.log.Debug("getheaders send failed", "err", err)
		}
	}
}

// completeHeaderSyncLocked must be called with s.mu held, and itself
// triggers the getblocks send after releasing the lock. Both "complete"
// branches set last_block_hash to the *first* header of the buffer
// (block sync begins at the oldest still-pending block), not the tip —
// reproduced here deliberately rather than "corrected" to match the
// tip, since that is what a real peer does.
func (s *Session) completeHeaderSyncLocked() {
	s.headerSyncComplete = true
	if len(s.headersBuffer) > 0 {
		// I2: once sync completes, last_header_hash tracks the tip of
		// the buffer — no further headers will be fetched.
		s.lastHeaderHash = s.headersBuffer[len(s.headersBuffer)-1].Hash
		s.lastBlockHash = s.headersBuffer[0].Hash
		s.lastRBlockHash = s.headersBuffer[0].RHash
	}
	s.phase = BlockSync

	from := s.lastBlockHash
	go func() {
		if err := s.sendGetBlocks(from); err != nil {
			s.log.Debug("getblocks send failed", "err", err)
		}
	}()
}

func (s *Session) sendGetBlocks(from chainparams.Hash) error {
	msg := wire.NewMsgGetBlocks(&zeroHash)
	ch := from.Chainhash()
	msg.BlockLocatorHashes = []*chainhash.Hash{&ch}
	return s.writeMessage(msg)
}
