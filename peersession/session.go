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

// Package peersession: a PeerSession drives one outbound peer through
// version negotiation, header sync, block sync, inventory handling, and
// mempool tracking, with disciplined failure semantics. It owns its
// socket and timers; no other component reaches into its state.
package peersession

import (
	"fmt"
	"net"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/holiman/bloomfilter/v2"

	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"

	"github.com/florinscan/florinscan/chainparams"
	"github.com/florinscan/florinscan/log"
	"github.com/florinscan/florinscan/peeraddr"
)

// addrRequestInterval is the periodic getaddr cadence.
const addrRequestInterval = 60 * time.Second

// maxHeadersPerBatch is the wire protocol's cap on a single `headers`
// message.
const maxHeadersPerBatch = 2000

// midSyncBatchThreshold is the batch size at or above which a headers message
// is treated as "mid-sync" and the buffer is reset before appending.
const midSyncBatchThreshold = 1000

// Session is one supervised outbound connection.
type Session struct {
	mu sync.Mutex

	addr     peeraddr.Address
	peerHash string
	traceID  string
	params   chainparams.NetworkParams
	cb       Callbacks
	log      *log.Logger

	conn    net.Conn
	dialTO  time.Duration
	nonce   uint64
	version uint32

	phase              Phase
	bestHeightReported int32
	userAgent          string
	protocolVersion    uint32

	headersBuffer      []Header
	lastHeaderHash     chainparams.Hash
	lastHeader         *Header
	headerSyncComplete bool

	blockMap            map[chainparams.RHash]*Block
	blockHeightMap      map[chainparams.RHash]int64
	requestedBlocks     mapset.Set
	lastBlockHash       chainparams.Hash
	lastRBlockHash      chainparams.RHash
	initialSyncComplete bool

	mempool []*wire.MsgTx
	seenInv *bloomfilter.Filter

	addrTimer *time.Timer
	destroyed bool
	wasOpen   bool

	done chan struct{}
}

// New constructs a PeerSession bound to addr. The session does nothing
// until Start is called; construction never blocks or touches the
// network (admission happens before Start in the supervisor).
func New(addr peeraddr.Address, params chainparams.NetworkParams, cb Callbacks) *Session {
	peerHash := addr.Hash()
	traceID := uuid.New().String()
	bf, _ := bloomfilter.NewOptimal(10000, 0.001)
	return &Session{
		addr:            addr,
		peerHash:        peerHash,
		traceID:         traceID,
		params:          params,
		cb:              cb,
		log:             log.New("peer", peerHash[:8], "trace", traceID[:8]),
		dialTO:          10 * time.Second,
		nonce:           uint64(time.Now().UnixNano()),
		lastHeaderHash:  params.BootstrapAnchor, // I6: header sync never predates the checkpoint
		blockMap:        make(map[chainparams.RHash]*Block),
		blockHeightMap:  make(map[chainparams.RHash]int64),
		requestedBlocks: mapset.NewSet(),
		seenInv:         bf,
		phase:           Dialing,
		done:            make(chan struct{}),
	}
}

// PeerHash is the stable sha256 identity of this peer's address.
func (s *Session) PeerHash() string { return s.peerHash }

// Address is the address this session is (or was) connected to.
func (s *Session) Address() peeraddr.Address { return s.addr }

// IsOpen reports phase ∈ {Open, HeaderSync, BlockSync, Live}.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase.isOpen()
}

// Start dials the peer, performs the version handshake, and begins
// header sync. It returns once the handshake completes (or fails); the
// read loop and address-request timer continue in the background until
// Destroy.
func (s *Session) Start() error {
	conn, err := net.DialTimeout("tcp", s.addr.String(), s.dialTO)
	if err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.conn = conn
	s.phase = Handshaking
	s.mu.Unlock()

	if err := s.handshake(); err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.phase = Open
	s.wasOpen = true
	s.mu.Unlock()
	s.log.Debug("peer handshake complete")

	s.scheduleAddrRequest()

	go s.readLoop()

	// Open → HeaderSync happens on the first outgoing getheaders.
	if err := s.sendGetHeaders(); err != nil {
		s.log.Debug("initial getheaders failed", "err", err)
	}
	return nil
}

func (s *Session) handshake() error {
	ver := wire.NewMsgVersion(
		&wire.NetAddress{Timestamp: time.Now(), Services: 0, IP: net.ParseIP("0.0.0.0"), Port: 0},
		&wire.NetAddress{Timestamp: time.Now(), Services: 0, IP: net.ParseIP(s.addr.Host), Port: s.addr.Port},
		s.nonce, 0,
	)
	ver.AddUserAgent("florinscan", "0.1.0")
	ver.ProtocolVersion = int32(s.params.ProtocolVersion)
	if err := s.writeMessage(ver); err != nil {
		return err
	}

	gotVersion, gotVerAck := false, false
	deadline := time.Now().Add(s.dialTO)
	s.conn.SetDeadline(deadline)
	defer s.conn.SetDeadline(time.Time{})

	for !gotVersion || !gotVerAck {
		msg, _, err := wire.ReadMessage(s.conn, wire.ProtocolVersion, s.params.Net)
		if err != nil {
			return err
		}
		switch m := msg.(type) {
		case *wire.MsgVersion:
			s.onVersion(m)
			gotVersion = true
			if err := s.writeMessage(wire.NewMsgVerAck()); err != nil {
				return err
			}
		case *wire.MsgVerAck:
			gotVerAck = true
		default:
			// Ignore anything else during the handshake window.
		}
	}
	return nil
}

func (s *Session) writeMessage(msg wire.Message) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("socket already closed")
	}
	return wire.WriteMessage(conn, msg, wire.ProtocolVersion, s.params.Net)
}

// readLoop processes inbound messages one at a time, in arrival order,
// never interleaving with another handler of this same session.
func (s *Session) readLoop() {
	for {
		msg, _, err := wire.ReadMessage(s.conn, wire.ProtocolVersion, s.params.Net)
		if err != nil {
			s.fail(err)
			return
		}
		s.dispatch(msg)

		s.mu.Lock()
		dead := s.destroyed
		s.mu.Unlock()
		if dead {
			return
		}
	}
}

func (s *Session) dispatch(msg wire.Message) {
	switch m := msg.(type) {
	case *wire.MsgAddr:
		s.onAddr(m)
	case *wire.MsgHeaders:
		s.onHeaders(m)
	case *wire.MsgInv:
		s.onInv(m)
	case *wire.MsgBlock:
		s.onBlock(m)
	case *wire.MsgTx:
		s.onTx(m)
	case *wire.MsgPing, *wire.MsgPong, *wire.MsgSendCmpct, *wire.MsgSendHeaders,
		*wire.MsgGetHeaders, *wire.MsgFeeFilter:
		// Ignored verbs, suppressed at debug.
	default:
		s.log.Trace("dropping unhandled message", "type", fmt.Sprintf("%T", m))
	}
}

// fail routes a terminal socket error through the three-tier
// classification in classify.go.
func (s *Session) fail(err error) {
	switch classify(err) {
	case classSilent:
		return
	case classExpected:
		s.destroyLocked(false)
	case classUnexpected:
		s.log.Error("unexpected peer socket error", "err", err)
		if s.cb.OnUnexpectedError != nil {
			s.cb.OnUnexpectedError(s.peerHash, err, s.Snapshot())
		}
		s.destroyLocked(false)
	}
}

func (s *Session) destroyLocked(explicit bool) {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	wasOpen := s.wasOpen
	s.phase = Dead
	if s.addrTimer != nil {
		s.addrTimer.Stop()
	}
	conn := s.conn
	s.headersBuffer = nil
	s.blockMap = nil
	s.blockHeightMap = nil
	s.mempool = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	close(s.done)

	if s.cb.OnDisconnect != nil {
		s.cb.OnDisconnect(s.peerHash, wasOpen)
	}
}

// Destroy cancels all timers, releases heavy caches, and closes the
// socket. Idempotent: a second call is a no-op.
func (s *Session) Destroy() {
	s.destroyLocked(true)
}

func (s *Session) scheduleAddrRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	s.addrTimer = time.AfterFunc(addrRequestInterval, func() {
		if err := s.sendGetAddr(); err != nil {
			s.log.Debug("getaddr send failed", "err", err)
		}
		s.scheduleAddrRequest()
	})
}

func (s *Session) sendGetAddr() error {
	return s.writeMessage(wire.NewMsgGetAddr())
}

func (s *Session) onVersion(m *wire.MsgVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bestHeightReported = int32(m.LastBlock)
	s.userAgent = m.UserAgent
	s.protocolVersion = uint32(m.ProtocolVersion)
}

// Snapshot returns an immutable view of state for ChainView and status
// reporting.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	bhm := make(map[chainparams.RHash]int64, len(s.blockHeightMap))
	for k, v := range s.blockHeightMap {
		bhm[k] = v
	}
	return Snapshot{
		PeerHash:            s.peerHash,
		Address:             s.addr,
		TraceID:             s.traceID,
		UserAgent:           s.userAgent,
		ProtocolVersion:     s.protocolVersion,
		Phase:               s.phase,
		BestHeightReported:  s.bestHeightReported,
		HeaderSyncComplete:  s.headerSyncComplete,
		InitialSyncComplete: s.initialSyncComplete,
		LastHeaderHash:      s.lastHeaderHash,
		LastBlockHash:       s.lastBlockHash,
		LastRBlockHash:      s.lastRBlockHash,
		BlockHeightMap:      bhm,
		RequestedBlocksLen:  s.requestedBlocks.Cardinality(),
		MempoolLen:          len(s.mempool),
	}
}

// RequestBlocks is the stall-recovery hook: re-issue getblocks from the
// current tip for a peer that has gone quiet.
func (s *Session) RequestBlocks() error {
	s.mu.Lock()
	from := s.lastBlockHash
	s.mu.Unlock()
	return s.sendGetBlocks(from)
}
