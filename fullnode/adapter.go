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

// Package fullnode is a thin facade over the external, opaque full
// node. florinscan never validates blocks or maintains UTXO/state
// itself — everything here is a read-only query surface.
package fullnode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/florinscan/florinscan/chainparams"
)

// TipStatus mirrors the status vocabulary of a getChainTips-style RPC.
type TipStatus string

const (
	StatusActive      TipStatus = "active"
	StatusValidFork    TipStatus = "valid-fork"
	StatusValidHeaders TipStatus = "valid-headers"
	StatusHeadersOnly  TipStatus = "headers-only"
	StatusInvalid      TipStatus = "invalid"
)

// ChainTip is one entry of the getChainTips response.
type ChainTip struct {
	Height    int64           `json:"height"`
	Hash      chainparams.RHash `json:"hash"`
	BranchLen int64           `json:"branchlen"`
	Status    TipStatus       `json:"status"`
}

// Header is the minimal tip-header shape the Adapter reports.
type Header struct {
	Height int64             `json:"height"`
	Hash   chainparams.RHash `json:"hash"`
}

// Adapter is the interface the Supervisor depends on. All calls may
// suspend; none mutate Supervisor state directly.
type Adapter interface {
	Start(ctx context.Context) error
	Height(ctx context.Context) (uint64, error)
	Synced(ctx context.Context) (bool, error)
	Tip(ctx context.Context) (Header, error)
	GetChainTips(ctx context.Context) ([]ChainTip, error)
}

// RPCAdapter talks to a real external full node over its JSON-RPC-
// equivalent interface. The wire format and auth model are unspecified
// at this layer, so this is a deliberately thin HTTP+JSON client rather
// than a generated client off a schema.
type RPCAdapter struct {
	Endpoint string
	Client   *http.Client
}

func NewRPCAdapter(endpoint string) *RPCAdapter {
	return &RPCAdapter{Endpoint: endpoint, Client: http.DefaultClient}
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

func (a *RPCAdapter) call(ctx context.Context, method string, out interface{}) error {
	body, err := json.Marshal(rpcRequest{Method: method})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fullnode: %s returned %s", method, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *RPCAdapter) Start(ctx context.Context) error {
	var ok bool
	return a.call(ctx, "start", &ok)
}

func (a *RPCAdapter) Height(ctx context.Context) (uint64, error) {
	var h uint64
	err := a.call(ctx, "height", &h)
	return h, err
}

func (a *RPCAdapter) Synced(ctx context.Context) (bool, error) {
	var synced bool
	err := a.call(ctx, "synced", &synced)
	return synced, err
}

func (a *RPCAdapter) Tip(ctx context.Context) (Header, error) {
	var h Header
	err := a.call(ctx, "tip", &h)
	return h, err
}

func (a *RPCAdapter) GetChainTips(ctx context.Context) ([]ChainTip, error) {
	var tips []ChainTip
	err := a.call(ctx, "getChainTips", &tips)
	return tips, err
}
