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

// Package blackbox archives a PeerSession's state to blob storage when
// it fails with an unexpected (tier-3) socket error, so an operator can
// inspect what the session last saw without having to reproduce the
// failure live. It never runs on the silent/expected tiers — those are
// normal churn, not incidents.
package blackbox

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/davecgh/go-spew/spew"

	"github.com/florinscan/florinscan/log"
	"github.com/florinscan/florinscan/peersession"
)

// Config names the storage account and container to archive into.
type Config struct {
	Enabled       bool
	AccountName   string
	AccountKey    string
	ContainerName string
}

// Archiver writes a dump of a failed session's snapshot to blob storage.
type Archiver struct {
	cfg       Config
	container azblob.ContainerURL
	log       *log.Logger
}

func New(cfg Config) (*Archiver, error) {
	a := &Archiver{cfg: cfg, log: log.New("module", "blackbox")}
	if !cfg.Enabled {
		return a, nil
	}

	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("blackbox: building shared key credential: %w", err)
	}
	pipeline := azblob.NewPipeline(cred, azblob.PipelineOptions{})
	u, err := url.Parse(fmt.Sprintf("https://%s.blob.core.windows.net/%s", cfg.AccountName, cfg.ContainerName))
	if err != nil {
		return nil, fmt.Errorf("blackbox: building container url: %w", err)
	}
	a.container = azblob.NewContainerURL(*u, pipeline)
	return a, nil
}

// Archive uploads a blob named by peer_hash and timestamp containing a
// spew dump of the session's snapshot. It is reached through the
// supervisor's OnUnexpectedError subscription, which a session's tier-3
// error path calls as a plain function; PeerSession itself owns no
// knowledge of storage.
func (a *Archiver) Archive(ctx context.Context, snap peersession.Snapshot, cause error) error {
	if !a.cfg.Enabled {
		return nil
	}

	blobName := fmt.Sprintf("%s-%d.txt", snap.PeerHash, time.Now().Unix())
	blockBlob := a.container.NewBlockBlobURL(blobName)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "cause: %v\n\n", cause)
	spew.Fdump(&buf, snap)

	_, err := azblob.UploadBufferToBlockBlob(ctx, buf.Bytes(), blockBlob, azblob.UploadToBlockBlobOptions{})
	if err != nil {
		return fmt.Errorf("blackbox: uploading %s: %w", blobName, err)
	}
	return nil
}

// OnUnexpectedError adapts Archive to the supervisor.Supervisor
// subscriber shape, so it can be installed directly:
// sv.OnUnexpectedError(archiver.OnUnexpectedError).
func (a *Archiver) OnUnexpectedError(peerHash string, cause error, snap peersession.Snapshot) {
	if err := a.Archive(context.Background(), snap, cause); err != nil {
		a.log.Warn("archive failed", "peer_hash", peerHash, "err", err)
	}
}
