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
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"github.com/florinscan/florinscan/chainparams"
	"github.com/florinscan/florinscan/peeraddr"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	addr := peeraddr.Address{Host: "127.0.0.1", Port: 7213}
	return New(addr, chainparams.Florincoin, Callbacks{})
}

func randomHeader(prev chainhash.Hash) *wire.BlockHeader {
	return &wire.BlockHeader{
		Version:   1,
		PrevBlock: prev,
		Timestamp: time.Now(),
	}
}

func TestHeaderSyncBatchSizes(t *testing.T) {
	s := testSession(t)

	// A 2000-header batch does not complete sync; it advances the cursor.
	full := &wire.MsgHeaders{}
	prev := chainhash.Hash{}
	for i := 0; i < 2000; i++ {
		h := randomHeader(prev)
		full.AddBlockHeader(h)
		prev = h.BlockHash()
	}
	s.onHeaders(full)
	require.False(t, s.Snapshot().HeaderSyncComplete)
	require.Len(t, s.headersBuffer, 2000)

	// A following batch of 500 completes sync (step 4: < 2000).
	partial := &wire.MsgHeaders{}
	for i := 0; i < 500; i++ {
		h := randomHeader(prev)
		partial.AddBlockHeader(h)
		prev = h.BlockHash()
	}
	s.onHeaders(partial)
	snap := s.Snapshot()
	require.True(t, snap.HeaderSyncComplete)
	// I2: last_header_hash tracks the tip of headers_buffer once complete.
	require.Equal(t, s.headersBuffer[len(s.headersBuffer)-1].Hash, snap.LastHeaderHash)
}

func TestHeaderSyncEmptyBatchCompletes(t *testing.T) {
	s := testSession(t)
	// A full 2000-header batch leaves sync incomplete, so only the
	// following empty batch can complete it.
	first := &wire.MsgHeaders{}
	prev := chainhash.Hash{}
	for i := 0; i < 2000; i++ {
		h := randomHeader(prev)
		first.AddBlockHeader(h)
		prev = h.BlockHash()
	}
	s.onHeaders(first)
	require.False(t, s.Snapshot().HeaderSyncComplete)

	empty := &wire.MsgHeaders{}
	s.onHeaders(empty)
	require.True(t, s.Snapshot().HeaderSyncComplete)
}

func TestMidSyncBatchResetsBuffer(t *testing.T) {
	s := testSession(t)
	s.mu.Lock()
	s.headersBuffer = []Header{{}, {}, {}}
	s.mu.Unlock()

	batch := &wire.MsgHeaders{}
	prev := chainhash.Hash{}
	for i := 0; i < 1000; i++ {
		h := randomHeader(prev)
		batch.AddBlockHeader(h)
		prev = h.BlockHash()
	}
	s.onHeaders(batch)
	require.Len(t, s.headersBuffer, 1000, "mid-sync batch must reset the buffer before appending")
}

func TestInvDuringInitialSyncOverwritesRequestedBlocks(t *testing.T) {
	s := testSession(t)
	s.mu.Lock()
	s.headerSyncComplete = true
	s.initialSyncComplete = false
	s.requestedBlocks.Add(chainhash.Hash{0xAA})
	s.mu.Unlock()

	inv := &wire.MsgInv{}
	iv1 := wire.NewInvVect(wire.InvTypeBlock, &chainhash.Hash{0x01})
	iv2 := wire.NewInvVect(wire.InvTypeBlock, &chainhash.Hash{0x02})
	inv.AddInvVect(iv1)
	inv.AddInvVect(iv2)
	s.onInv(inv)

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Equal(t, 2, s.requestedBlocks.Cardinality())
	require.False(t, s.requestedBlocks.Contains(chainhash.Hash{0xAA}))
}

func TestOnBlockCompletesInitialSync(t *testing.T) {
	s := testSession(t)
	blk := &wire.MsgBlock{
		Header: *randomHeader(chainhash.Hash{}),
		Transactions: []*wire.MsgTx{
			coinbaseTx(t, 100),
		},
	}
	hash := chainparams.HashFromChainhash(blk.BlockHash())

	s.mu.Lock()
	s.headerSyncComplete = true
	s.lastHeaderHash = hash
	s.mu.Unlock()

	s.onBlock(blk)

	snap := s.Snapshot()
	require.True(t, snap.InitialSyncComplete)
	require.Equal(t, snap.LastBlockHash, snap.LastHeaderHash)
	require.Equal(t, 0, snap.RequestedBlocksLen)
}

func TestMempoolReconciliationRemovesConfirmedTx(t *testing.T) {
	s := testSession(t)
	tx := coinbaseTx(t, 1)
	s.mu.Lock()
	s.mempool = []*wire.MsgTx{tx}
	s.mu.Unlock()

	blk := &wire.MsgBlock{
		Header:       *randomHeader(chainhash.Hash{}),
		Transactions: []*wire.MsgTx{tx},
	}
	s.mu.Lock()
	s.reconcileMempoolLocked(blk)
	n := len(s.mempool)
	s.mu.Unlock()
	require.Equal(t, 0, n)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err   error
		class errorClass
	}{
		{nil, classSilent},
		{errors.New("read tcp: connection reset by peer (ECONNRESET)"), classSilent},
		{errors.New("dial tcp: connect: connection refused"), classExpected},
		{errors.New("read tcp: i/o timeout"), classExpected},
		{errors.New("peer is stalling"), classExpected},
		{errors.New("unexpected protocol violation"), classUnexpected},
	}
	for _, c := range cases {
		require.Equal(t, c.class, classify(c.err))
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	var disconnects int
	s := New(peeraddr.Address{Host: "127.0.0.1", Port: 1}, chainparams.Florincoin, Callbacks{
		OnDisconnect: func(string, bool) { disconnects++ },
	})
	s.Destroy()
	s.Destroy()
	require.Equal(t, 1, disconnects)
	require.Equal(t, Dead, s.Snapshot().Phase)
}

func coinbaseTx(t *testing.T, height int64) *wire.MsgTx {
	t.Helper()
	tx := wire.NewMsgTx(wire.TxVersion)
	script := []byte{byte(1)}
	b := height
	for b > 0 {
		script = append(script, byte(b&0xff))
		b >>= 8
	}
	script[0] = byte(len(script) - 1)
	tx.AddTxIn(&wire.TxIn{SignatureScript: script})
	return tx
}
