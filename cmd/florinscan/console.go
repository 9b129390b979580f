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

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/florinscan/florinscan/supervisor"
)

// runConsole is an interactive REPL over a running Supervisor: inspect,
// peers, addpeer <addr>, removepeer <hash>, quit. This mirrors the
// affordance cmd/gprobe's JS console gives go-probeum operators, cut
// down to the handful of commands a crawler operator actually needs.
func runConsole(sv *supervisor.Supervisor) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("florinscan console. Type 'help' for commands, 'quit' to exit.")
	for {
		input, err := line.Prompt("florinscan> ")
		if err != nil { // EOF or Ctrl-C
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if quit := dispatchCommand(sv, input); quit {
			return
		}
	}
}

func dispatchCommand(sv *supervisor.Supervisor, input string) (quit bool) {
	fields := strings.Fields(input)
	cmd := fields[0]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		fmt.Println("commands: inspect, peers, addpeer <host:port>, removepeer <peer_hash>, quit")
	case "inspect":
		fmt.Print(sv.Inspect())
	case "peers":
		status := sv.Snapshot()
		fmt.Printf("%d/%d peers tracked\n", status.PeerCount, status.MaxPeers)
	case "addpeer":
		if len(fields) != 2 {
			fmt.Println("usage: addpeer <host:port>")
			return false
		}
		if err := sv.AddPeer(fields[1]); err != nil {
			fmt.Println("error:", err)
		}
	case "removepeer":
		if len(fields) != 2 {
			fmt.Println("usage: removepeer <peer_hash>")
			return false
		}
		sv.RemovePeer(fields[1], false)
	default:
		if _, err := strconv.Atoi(cmd); err == nil {
			fmt.Println("unknown command (did you mean a peer_hash? use 'removepeer <hash>')")
			return false
		}
		fmt.Printf("unknown command %q\n", cmd)
	}
	return false
}
