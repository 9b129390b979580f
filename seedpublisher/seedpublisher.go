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

// Package seedpublisher republishes the addresses of peers on the
// highest chain bucket a Supervisor is tracking (up to Config.Count of
// them, in sorted address order) as DNS TXT records, so other
// crawler instances can bootstrap from live peers instead of only the
// static seed list baked into chainparams. This is a discovery-side
// supplement to the supervisor's own DNS discovery task, not a
// chain-state sink.
package seedpublisher

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/cloudflare/cloudflare-go"

	"github.com/florinscan/florinscan/chainview"
	"github.com/florinscan/florinscan/log"
	"github.com/florinscan/florinscan/supervisor"
)

// Snapshotter is the same narrow read dependency statusserver/metrics take.
type Snapshotter interface {
	Snapshot() supervisor.Status
}

// Config selects which backend(s) to publish to. At least one of the
// two credential sets must be set for Run to do anything.
type Config struct {
	Interval time.Duration
	Count    int // how many peer addresses to publish, by chain best height

	Route53ZoneID string
	Route53Domain string

	CloudflareAPIToken string
	CloudflareZoneID   string
	CloudflareDomain   string
}

// Publisher periodically samples a Supervisor and pushes the addresses
// of peers on the heaviest chain to whichever DNS backends are configured.
type Publisher struct {
	cfg     Config
	src     Snapshotter
	log     *log.Logger
	route53 *route53.Client
	cf      *cloudflare.API
}

func New(ctx context.Context, cfg Config, src Snapshotter) (*Publisher, error) {
	if cfg.Interval == 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Count == 0 {
		cfg.Count = 25
	}
	p := &Publisher{cfg: cfg, src: src, log: log.New("module", "seedpublisher")}

	if cfg.Route53ZoneID != "" {
		awsCfg, err := awscfg.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("seedpublisher: loading aws config: %w", err)
		}
		p.route53 = route53.NewFromConfig(awsCfg)
	}
	if cfg.CloudflareAPIToken != "" {
		cf, err := cloudflare.NewWithAPIToken(cfg.CloudflareAPIToken)
		if err != nil {
			return nil, fmt.Errorf("seedpublisher: building cloudflare client: %w", err)
		}
		p.cf = cf
	}
	return p, nil
}

// Run blocks, republishing on cfg.Interval until stop is closed.
func (p *Publisher) Run(ctx context.Context, stop <-chan struct{}) {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := p.publishOnce(ctx); err != nil {
				p.log.Warn("seed publish failed", "err", err)
			}
		}
	}
}

func (p *Publisher) publishOnce(ctx context.Context) error {
	addrs := p.bestChainAddresses()
	if len(addrs) == 0 {
		return nil
	}

	if p.route53 != nil {
		if err := p.publishRoute53(ctx, addrs); err != nil {
			return fmt.Errorf("route53: %w", err)
		}
	}
	if p.cf != nil {
		if err := p.publishCloudflare(ctx, addrs); err != nil {
			return fmt.Errorf("cloudflare: %w", err)
		}
	}
	return nil
}

// bestChainAddresses picks the heaviest chain bucket by best height and
// returns up to cfg.Count of its peer addresses.
func (p *Publisher) bestChainAddresses() []string {
	status := p.src.Snapshot()

	var best *chainview.ChainBucket
	for _, bucket := range status.View.PeerMap {
		if best == nil || bucket.BestHeight > best.BestHeight {
			best = bucket
		}
	}
	if best == nil {
		return nil
	}

	addrs := make([]string, 0, len(best.Peers))
	for _, peer := range best.Peers {
		addrs = append(addrs, peer.Address)
	}
	sort.Strings(addrs)
	if len(addrs) > p.cfg.Count {
		addrs = addrs[:p.cfg.Count]
	}
	return addrs
}

func (p *Publisher) publishRoute53(ctx context.Context, addrs []string) error {
	records := make([]r53types.ResourceRecord, len(addrs))
	for i, a := range addrs {
		records[i] = r53types.ResourceRecord{Value: aws.String(fmt.Sprintf("%q", a))}
	}

	_, err := p.route53.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(p.cfg.Route53ZoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Changes: []r53types.Change{{
				Action: r53types.ChangeActionUpsert,
				ResourceRecordSet: &r53types.ResourceRecordSet{
					Name:            aws.String(p.cfg.Route53Domain),
					Type:            r53types.RRTypeTxt,
					TTL:             aws.Int64(300),
					ResourceRecords: records,
				},
			}},
		},
	})
	return err
}

func (p *Publisher) publishCloudflare(ctx context.Context, addrs []string) error {
	for _, a := range addrs {
		_, err := p.cf.CreateDNSRecord(ctx, p.cfg.CloudflareZoneID, cloudflare.DNSRecord{
			Type:    "TXT",
			Name:    p.cfg.CloudflareDomain,
			Content: a,
			TTL:     300,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
