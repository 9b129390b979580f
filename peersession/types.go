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
	"github.com/florinscan/florinscan/peeraddr"
)

// Phase is the PeerSession state machine: Dialing → Handshaking → Open
// → HeaderSync → BlockSync → Live, with Dead absorbing from any state.
type Phase int

const (
	Dialing Phase = iota
	Handshaking
	Open
	HeaderSync
	BlockSync
	Live
	Dead
)

func (p Phase) String() string {
	switch p {
	case Dialing:
		return "dialing"
	case Handshaking:
		return "handshaking"
	case Open:
		return "open"
	case HeaderSync:
		return "header_sync"
	case BlockSync:
		return "block_sync"
	case Live:
		return "live"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// isOpen reports whether phase ∈ {Open, HeaderSync, BlockSync, Live}.
func (p Phase) isOpen() bool {
	switch p {
	case Open, HeaderSync, BlockSync, Live:
		return true
	default:
		return false
	}
}

// Header is the wire header plus the height. Height is not part of the
// wire header itself and only becomes known once the corresponding
// block body arrives.
type Header struct {
	Hash     chainparams.Hash
	RHash    chainparams.RHash
	PrevHash chainparams.Hash
	Time     int64
	Height   *int64
}

func headerFromWire(wh *wire.BlockHeader) Header {
	hash := chainparams.HashFromChainhash(wh.BlockHash())
	return Header{
		Hash:     hash,
		RHash:    hash.RHash(),
		PrevHash: chainparams.HashFromChainhash(wh.PrevBlock),
		Time:     wh.Timestamp.Unix(),
	}
}

// Block is a fully materialized block body plus its coinbase-derived
// height.
type Block struct {
	Msg    *wire.MsgBlock
	Hash   chainparams.Hash
	RHash  chainparams.RHash
	Height int64
}

// Callbacks are the late-binding capabilities the Supervisor wires into
// a session at construction: address gossip flows back via OnAddress,
// and terminal failures via OnDisconnect.
type Callbacks struct {
	OnAddress    func(addrString string)
	OnDisconnect func(peerHash string, wasOpen bool)

	// OnUnexpectedError fires for unexpected (tier-3) socket errors
	// only, before the session tears itself down, so a subscriber can
	// archive its last-known state.
	OnUnexpectedError func(peerHash string, err error, snap Snapshot)
}

// Snapshot is the immutable view of PeerSession state that ChainView
// and status reporting consume. It owns copies of any maps so it can
// safely outlive the session's own mutation.
type Snapshot struct {
	PeerHash            string
	Address             peeraddr.Address
	TraceID             string
	UserAgent           string
	ProtocolVersion     uint32
	Phase               Phase
	BestHeightReported  int32
	HeaderSyncComplete  bool
	InitialSyncComplete bool
	LastHeaderHash      chainparams.Hash
	LastBlockHash       chainparams.Hash
	LastRBlockHash      chainparams.RHash
	BlockHeightMap      map[chainparams.RHash]int64
	RequestedBlocksLen  int
	MempoolLen          int
}
