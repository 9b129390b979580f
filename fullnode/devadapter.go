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

package fullnode

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/florinscan/florinscan/chainparams"
)

// DevAdapter is a local stand-in for a real full node, backed by an
// on-disk leveldb instance rather than an actual consensus engine. It
// exists so the supervisor and status server can be driven end to end
// in development and in tests without a real Florincoin daemon running
// alongside them. Values are snappy-compressed before being stored, the
// same reason the chain database's block/receipt encoding does: leveldb's
// own block compression is coarser than per-record snappy for small
// values.
type DevAdapter struct {
	db     *leveldb.DB
	height uint64
	tip    Header
	tips   []ChainTip
}

const devTipKey = "tip"

// OpenDevAdapter opens (creating if absent) a leveldb instance at dir.
func OpenDevAdapter(dir string) (*DevAdapter, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("fullnode: open devadapter db: %w", err)
	}
	return &DevAdapter{db: db}, nil
}

func (d *DevAdapter) Start(ctx context.Context) error {
	raw, err := d.db.Get([]byte(devTipKey), nil)
	if err == leveldb.ErrNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	plain, err := snappy.Decode(nil, raw)
	if err != nil {
		return err
	}
	if len(plain) < 8 {
		return fmt.Errorf("fullnode: corrupt devadapter tip record")
	}
	d.height = binary.BigEndian.Uint64(plain[:8])
	d.tip = Header{Height: int64(d.height), Hash: chainparams.RHashFromString(string(plain[8:]))}
	return nil
}

// SetTip sets and persists DevAdapter's reported height and tip, without
// a real peer-to-peer sync underneath it.
func (d *DevAdapter) SetTip(height uint64, hash chainparams.RHash) error {
	d.height = height
	d.tip = Header{Height: int64(height), Hash: hash}

	buf := make([]byte, 8+len(hash.String()))
	binary.BigEndian.PutUint64(buf[:8], height)
	copy(buf[8:], hash.String())
	return d.db.Put([]byte(devTipKey), snappy.Encode(nil, buf), nil)
}

// SetChainTips lets tests simulate a competing-fork getChainTips result.
func (d *DevAdapter) SetChainTips(tips []ChainTip) {
	d.tips = tips
}

func (d *DevAdapter) Height(ctx context.Context) (uint64, error) { return d.height, nil }

func (d *DevAdapter) Synced(ctx context.Context) (bool, error) { return true, nil }

func (d *DevAdapter) Tip(ctx context.Context) (Header, error) { return d.tip, nil }

func (d *DevAdapter) GetChainTips(ctx context.Context) ([]ChainTip, error) {
	if d.tips != nil {
		return d.tips, nil
	}
	return []ChainTip{{Height: d.tip.Height, Hash: d.tip.Hash, BranchLen: 0, Status: StatusActive}}, nil
}

func (d *DevAdapter) Close() error { return d.db.Close() }
