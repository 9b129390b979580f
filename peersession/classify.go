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

import "strings"

// errorClass is the three-tier socket error classification used to
// decide whether, and how loudly, a session failure gets reported.
type errorClass int

const (
	// classSilent errors (ECONNRESET) are ignored entirely: no log, no
	// disconnect notification.
	classSilent errorClass = iota
	// classExpected errors are expected disconnects: no log, but the
	// supervisor is still notified so it can reap the session.
	classExpected
	// classUnexpected errors are logged at error level and the
	// supervisor is notified.
	classUnexpected
)

var silentMarkers = []string{
	"econnreset",
	"connection reset by peer",
}

var expectedMarkers = []string{
	"econnrefused",
	"connection refused",
	"ehostunreach",
	"no route to host",
	"epipe",
	"broken pipe",
	"connection timed out",
	"i/o timeout",
	"peer is stalling",
	"socket hangup",
	"use of closed network connection",
}

// classify buckets a socket-layer error into one of the three tiers. A
// nil error is treated as silent (nothing to report).
func classify(err error) errorClass {
	if err == nil {
		return classSilent
	}
	msg := strings.ToLower(err.Error())
	for _, m := range silentMarkers {
		if strings.Contains(msg, m) {
			return classSilent
		}
	}
	for _, m := range expectedMarkers {
		if strings.Contains(msg, m) {
			return classExpected
		}
	}
	return classUnexpected
}
