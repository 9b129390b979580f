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

// Package supervisor owns the set of live PeerSessions, admits and
// evicts peers, folds their snapshots through chainview.Build on a
// schedule, and raises a reorg trigger when the full node reports a
// competing fork whose branch is long enough and whose tip is close
// enough below the active tip. It plays the role probe/handler.go's peerSet
// and broadcast loops play for block/tx propagation, generalized from
// "relay to peers" to "observe and aggregate what peers report".
package supervisor

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"

	"github.com/florinscan/florinscan/chainparams"
	"github.com/florinscan/florinscan/chainview"
	"github.com/florinscan/florinscan/fullnode"
	"github.com/florinscan/florinscan/log"
	"github.com/florinscan/florinscan/peeraddr"
	"github.com/florinscan/florinscan/peersession"
)

// Config holds the operator-tunable knobs of the crawler and its
// periodic tasks.
type Config struct {
	Network             string
	MaxPeers            int
	DNSSeeds            []string
	DiscoveryInterval   time.Duration
	StallCheckInterval  time.Duration
	TipCheckInterval    time.Duration
	ReorgTriggerLength  int64
	ReorgTipMaxAge      int64 // height distance below best_active_tip.height, not a duration
	AdmissionPolicySrc  string // optional goja predicate source; empty = admit all
	DestroyLogBurst     int
	DestroyLogPerSecond float64
}

func (c Config) withDefaults() Config {
	if c.MaxPeers == 0 {
		c.MaxPeers = 1000
	}
	if c.DiscoveryInterval == 0 {
		c.DiscoveryInterval = 10 * time.Minute
	}
	if c.StallCheckInterval == 0 {
		c.StallCheckInterval = 60 * time.Second
	}
	if c.TipCheckInterval == 0 {
		c.TipCheckInterval = 5 * time.Second
	}
	if c.ReorgTriggerLength == 0 {
		c.ReorgTriggerLength = 10
	}
	if c.ReorgTipMaxAge == 0 {
		c.ReorgTipMaxAge = 25
	}
	if c.DestroyLogBurst == 0 {
		c.DestroyLogBurst = 5
	}
	if c.DestroyLogPerSecond == 0 {
		c.DestroyLogPerSecond = 1
	}
	return c
}

// ReorgTrigger is delivered to a single subscriber when the tip loop
// observes a competing tip that is both long enough and fresh enough to
// act on.
type ReorgTrigger struct {
	ActiveHeight int64
	ActiveHash   chainparams.RHash
	ForkHeight   int64
	ForkHash     chainparams.RHash
	ForkLength   int64
}

// Status is the externally reportable snapshot of the Supervisor
// (consumed by the status server's T4 sink).
type Status struct {
	PeerCount int
	MaxPeers  int
	View      chainview.View
	Armed     bool
}

// Supervisor is the top-level scanning engine: one per monitored network.
type Supervisor struct {
	mu      sync.Mutex
	cfg     Config
	params  chainparams.NetworkParams
	node    fullnode.Adapter
	log     *log.Logger
	admit   *admissionPolicy
	destroy *rate.Limiter
	seen    *lru.Cache // recently destroyed peer_hash -> time.Time, suppresses immediate re-add churn

	peers map[string]*peersession.Session

	reorgSub func(ReorgTrigger)
	armed    bool

	onUnexpected func(peerHash string, err error, snap peersession.Snapshot)

	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs a Supervisor. node may be nil if no full node is wired
// yet (T3's reorg check is then a no-op).
func New(cfg Config, node fullnode.Adapter) (*Supervisor, error) {
	cfg = cfg.withDefaults()
	params, err := chainparams.ByName(cfg.Network)
	if err != nil {
		return nil, err
	}
	cfg.DNSSeeds = append(append([]string{}, params.DNSSeeds...), cfg.DNSSeeds...)
	seen, err := lru.New(1024)
	if err != nil {
		return nil, fmt.Errorf("supervisor: building destroyed-peer cache: %w", err)
	}
	admit, err := newAdmissionPolicy(cfg.AdmissionPolicySrc)
	if err != nil {
		return nil, fmt.Errorf("supervisor: compiling admission policy: %w", err)
	}
	return &Supervisor{
		cfg:     cfg,
		params:  params,
		node:    node,
		log:     log.New("module", "supervisor", "network", params.Name),
		admit:   admit,
		destroy: rate.NewLimiter(rate.Limit(cfg.DestroyLogPerSecond), cfg.DestroyLogBurst),
		seen:    seen,
		peers:   make(map[string]*peersession.Session),
	}, nil
}

// Start launches T1 (discovery), T2 (stall recovery) and T3 (tip watch)
// on their own tickers. It returns immediately; call Stop to unwind.
func (sv *Supervisor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	sv.cancel = cancel
	sv.done = make(chan struct{})

	go sv.runDiscoveryLoop(ctx)
	go sv.runStallLoop(ctx)
	go sv.runTipLoop(ctx)

	for _, seed := range sv.cfg.DNSSeeds {
		sv.discoverFrom(ctx, seed)
	}
}

// Stop cancels all periodic tasks and destroys every peer.
func (sv *Supervisor) Stop() {
	if sv.cancel != nil {
		sv.cancel()
	}
	sv.mu.Lock()
	peers := make([]*peersession.Session, 0, len(sv.peers))
	for _, p := range sv.peers {
		peers = append(peers, p)
	}
	sv.mu.Unlock()
	for _, p := range peers {
		p.Destroy()
	}
}

// AddPeer admits a newly discovered address, subject to the admission
// policy, the duplicate/max-peers caps, and the recently-destroyed
// suppression window.
func (sv *Supervisor) AddPeer(addrString string) error {
	peerHash := peeraddr.HashString(addrString)

	sv.mu.Lock()
	if _, ok := sv.peers[peerHash]; ok {
		sv.mu.Unlock()
		return fmt.Errorf("supervisor: peer %s already tracked", peerHash)
	}
	if len(sv.peers) >= sv.cfg.MaxPeers {
		sv.mu.Unlock()
		return fmt.Errorf("supervisor: at max_peers (%d)", sv.cfg.MaxPeers)
	}
	if _, recentlyDestroyed := sv.seen.Get(peerHash); recentlyDestroyed {
		sv.mu.Unlock()
		return fmt.Errorf("supervisor: peer %s recently destroyed, backing off", peerHash)
	}
	sv.mu.Unlock()

	addr, err := peeraddr.Parse(addrString)
	if err != nil {
		return fmt.Errorf("supervisor: invalid peer address %q: %w", addrString, err)
	}
	if !sv.admit.allow(addr) {
		return fmt.Errorf("supervisor: admission policy rejected %s", addrString)
	}

	sess := peersession.New(addr, sv.params, peersession.Callbacks{
		OnAddress: func(addrString string) {
			if err := sv.AddPeer(addrString); err != nil {
				sv.log.Debug("gossiped address not admitted", "addr", addrString, "err", err)
			}
		},
		OnDisconnect: sv.removePeerInternal,
		OnUnexpectedError: func(peerHash string, err error, snap peersession.Snapshot) {
			sv.mu.Lock()
			cb := sv.onUnexpected
			sv.mu.Unlock()
			if cb != nil {
				cb(peerHash, err, snap)
			}
		},
	})

	sv.mu.Lock()
	if _, ok := sv.peers[peerHash]; ok {
		sv.mu.Unlock()
		return fmt.Errorf("supervisor: peer %s already tracked", peerHash)
	}
	sv.peers[peerHash] = sess
	sv.mu.Unlock()

	if err := sess.Start(); err != nil {
		sv.removePeerInternal(peerHash, false)
		return fmt.Errorf("supervisor: starting session for %s: %w", addrString, err)
	}
	return nil
}

// RemovePeer destroys a tracked peer by hash. When restart is true, the
// peer's address is re-admitted immediately after teardown, bypassing
// the recently-destroyed suppression window that would otherwise block
// discovery from finding it again on its own.
func (sv *Supervisor) RemovePeer(peerHash string, restart bool) {
	sv.mu.Lock()
	sess, ok := sv.peers[peerHash]
	sv.mu.Unlock()
	if !ok {
		return
	}
	addr := sess.Address().String()
	sess.Destroy()

	if !restart {
		return
	}
	sv.mu.Lock()
	sv.seen.Remove(peerHash)
	sv.mu.Unlock()
	if err := sv.AddPeer(addr); err != nil {
		sv.log.Debug("restart re-admission failed", "peer_hash", peerHash, "err", err)
	}
}

// removePeerInternal is the PeerSession OnDisconnect callback: the
// session has already transitioned to Dead by the time this runs.
func (sv *Supervisor) removePeerInternal(peerHash string, wasOpen bool) {
	sv.mu.Lock()
	delete(sv.peers, peerHash)
	sv.seen.Add(peerHash, time.Now())
	count := len(sv.peers)
	sv.mu.Unlock()

	if sv.destroy.Allow() {
		sv.log.Info("peer destroyed", "peer_hash", peerHash, "was_open", wasOpen, "peer_count", count)
	}
}

// OnReorgTrigger installs the single subscriber notified when the tip
// loop detects a long, fresh competing tip. This is a single-shot
// armed/disarmed subscription, not a fan-out event bus: a trigger
// disarms it until the caller re-subscribes.
func (sv *Supervisor) OnReorgTrigger(cb func(ReorgTrigger)) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.reorgSub = cb
	sv.armed = cb != nil
}

// UpdateConfig applies a subset of Config fields (max_peers, DNS seeds,
// reorg thresholds) to the running Supervisor without a restart. It is
// the target of the config-file watcher in cmd/florinscan.
func (sv *Supervisor) UpdateConfig(cfg Config) {
	cfg = cfg.withDefaults()
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.cfg.MaxPeers = cfg.MaxPeers
	sv.cfg.DNSSeeds = append(append([]string{}, sv.params.DNSSeeds...), cfg.DNSSeeds...)
	sv.cfg.ReorgTriggerLength = cfg.ReorgTriggerLength
	sv.cfg.ReorgTipMaxAge = cfg.ReorgTipMaxAge
	sv.log.Info("supervisor config reloaded", "max_peers", sv.cfg.MaxPeers, "seeds", len(sv.cfg.DNSSeeds))
}

// OnUnexpectedError installs the subscriber notified when any tracked
// session hits an unexpected (tier-3) socket error, letting blackbox
// archive its last-known state before it tears down.
func (sv *Supervisor) OnUnexpectedError(cb func(peerHash string, err error, snap peersession.Snapshot)) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	sv.onUnexpected = cb
}

// Snapshot folds all tracked peers through chainview.Build and reports
// the result alongside peer-count bookkeeping.
func (sv *Supervisor) Snapshot() Status {
	sv.mu.Lock()
	snaps := make([]peersession.Snapshot, 0, len(sv.peers))
	for _, p := range sv.peers {
		snaps = append(snaps, p.Snapshot())
	}
	count := len(sv.peers)
	armed := sv.armed
	sv.mu.Unlock()

	return Status{
		PeerCount: count,
		MaxPeers:  sv.cfg.MaxPeers,
		View:      chainview.Build(snaps),
		Armed:     armed,
	}
}
