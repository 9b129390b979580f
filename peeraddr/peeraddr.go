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

// Package peeraddr is the PeerAddress data model: a bare host/port pair
// plus the sha256-derived identity ("peer_hash") the supervisor uses to
// dedup admission and address gossip.
package peeraddr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
)

// Address is a candidate or connected peer's network address. Host may be
// an IPv4 or IPv6 literal.
type Address struct {
	Host string
	Port uint16
}

// Parse splits a "host:port" string as delivered by `addr` gossip or a DNS
// seed lookup into an Address.
func Parse(hostport string) (Address, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return Address{}, fmt.Errorf("peeraddr: %w", err)
	}
	var port uint16
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return Address{}, fmt.Errorf("peeraddr: bad port %q: %w", portStr, err)
	}
	return Address{Host: host, Port: port}, nil
}

// String renders the canonical "host:port" form used both for dialing and
// as the input to Hash.
func (a Address) String() string {
	return net.JoinHostPort(a.Host, fmt.Sprintf("%d", a.Port))
}

// Hash returns the peer_hash identity: sha256 of the canonical
// "host:port" string, hex-encoded. This is stable for the session's
// lifetime and is what address-gossip dedups against.
func (a Address) Hash() string {
	return HashString(a.String())
}

// HashString computes the peer_hash identity directly from an address
// string as the supervisor receives it from DNS discovery or addr
// gossip, without requiring it to parse cleanly first.
func HashString(addrString string) string {
	sum := sha256.Sum256([]byte(addrString))
	return hex.EncodeToString(sum[:])
}
