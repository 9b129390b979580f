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

// Package statusserver exposes the Supervisor's status snapshot over
// plain HTTP and a push websocket, for a browser dashboard or another
// process polling crawler health.
package statusserver

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/fjl/memsize"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/shirou/gopsutil/process"

	"github.com/florinscan/florinscan/log"
	"github.com/florinscan/florinscan/supervisor"
)

// Snapshotter is the read-only surface statusserver depends on; the
// Supervisor satisfies it directly.
type Snapshotter interface {
	Snapshot() supervisor.Status
}

// Resources is the host/process figures folded into every status push.
type Resources struct {
	CPUPercent   float64 `json:"cpu_percent"`
	RSSBytes     uint64  `json:"rss_bytes"`
	SessionBytes uint64  `json:"session_bytes"`
	Goroutines   int     `json:"goroutines"`
}

// StatusDoc is the JSON shape served at GET /status and pushed over the
// websocket on each tick.
type StatusDoc struct {
	PeerCount int       `json:"peer_count"`
	MaxPeers  int       `json:"max_peers"`
	Armed     bool      `json:"armed"`
	Chains    int       `json:"chains"`
	Resources Resources `json:"resources"`
	Timestamp int64     `json:"timestamp"`
}

// Server renders Snapshotter state as JSON/WS. It holds no supervisor
// state of its own.
type Server struct {
	src       Snapshotter
	log       *log.Logger
	upgrader  websocket.Upgrader
	pushEvery time.Duration
	proc      *process.Process
}

// New builds a Server. pushEvery controls the websocket push cadence;
// it defaults to 50ms.
func New(src Snapshotter, pushEvery time.Duration) *Server {
	if pushEvery == 0 {
		pushEvery = 50 * time.Millisecond
	}
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &Server{
		src:       src,
		log:       log.New("module", "statusserver"),
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		pushEvery: pushEvery,
		proc:      proc,
	}
}

// Handler returns the http.Handler to mount: GET /status (JSON),
// GET /status/ws (push socket), CORS-enabled for a browser dashboard.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/status", s.handleStatus)
	router.GET("/status/ws", s.handleWS)
	return cors.Default().Handler(router)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	doc := s.buildDoc()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		s.log.Warn("status encode failed", "err", err)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.pushEvery)
	defer ticker.Stop()
	for range ticker.C {
		doc := s.buildDoc()
		if err := conn.WriteJSON(doc); err != nil {
			return
		}
	}
}

func (s *Server) buildDoc() StatusDoc {
	status := s.src.Snapshot()

	var cpuPct float64
	var rss uint64
	if s.proc != nil {
		if pcts, err := s.proc.CPUPercent(); err == nil {
			cpuPct = pcts
		}
		if mi, err := s.proc.MemoryInfo(); err == nil && mi != nil {
			rss = mi.RSS
		}
	}

	sizes := memsize.Scan(&status.View)

	return StatusDoc{
		PeerCount: status.PeerCount,
		MaxPeers:  status.MaxPeers,
		Armed:     status.Armed,
		Chains:    len(status.View.PeerMap),
		Resources: Resources{
			CPUPercent:   cpuPct,
			RSSBytes:     rss,
			SessionBytes: uint64(sizes.Total),
			Goroutines:   runtime.NumGoroutine(),
		},
		Timestamp: time.Now().Unix(),
	}
}
