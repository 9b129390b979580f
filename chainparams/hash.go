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

// Package chainparams holds the static per-network constants and the
// two block-hash wrappers the rest of the engine uses to avoid ever
// conflating internal and display byte order.
package chainparams

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Hash is a block hash in internal (wire) byte order. Never format this
// for a human; use RHash for that.
type Hash struct {
	inner chainhash.Hash
}

// RHash is the reversed, human/display-order form of a block hash, as used
// in inventory logs and by block explorers. Never feed this back into the
// wire protocol as if it were internal order.
type RHash string

// HashFromChainhash wraps a btcd chainhash.Hash as returned by the codec
// library (wire.MsgBlock.BlockHash(), wire.MsgHeaders entries, etc).
func HashFromChainhash(h chainhash.Hash) Hash {
	return Hash{inner: h}
}

// HashFromBytes builds a Hash from a 32-byte internal-order slice.
func HashFromBytes(b []byte) (Hash, error) {
	var ch chainhash.Hash
	if err := ch.SetBytes(b); err != nil {
		return Hash{}, fmt.Errorf("chainparams: invalid hash length %d: %w", len(b), err)
	}
	return Hash{inner: ch}, nil
}

// Chainhash exposes the wrapped value for codec-library calls that expect
// it (PushGetHeadersMsg, InvVect construction, ...).
func (h Hash) Chainhash() chainhash.Hash { return h.inner }

// RHash derives the display-order form of this hash.
func (h Hash) RHash() RHash { return RHash(h.inner.String()) }

// IsZero reports whether this is the zero hash (no prior block).
func (h Hash) IsZero() bool { return h.inner == chainhash.Hash{} }

func (h Hash) String() string { return hex.EncodeToString(h.inner[:]) }

// RHashFromString parses a reversed/display-order hex string. It does not
// produce a Hash: that conversion requires reversing the byte order, which
// only the codec library's own parsing (chainhash.NewHashFromStr) should
// do, to keep the two forms from silently mixing.
func RHashFromString(s string) RHash { return RHash(s) }

func (r RHash) String() string { return string(r) }
