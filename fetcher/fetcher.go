// Package fetcher fans resource discovery out across the configured
// profiles and regions and normalizes the results.
package fetcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	awsprov "github.com/yairfalse/awsvars/providers/aws"
	"github.com/yairfalse/awsvars/types"
)

// ClientBuilder creates the discovery client for one (profile, region)
// pair. Swap it in tests to inject mock clients.
type ClientBuilder func(ctx context.Context, profile, region string) (*awsprov.Client, error)

// NewClientBuilder returns the production builder. When creds is
// non-nil, its temporary credentials apply to calls made under the
// matching profile.
func NewClientBuilder(factory awsprov.ClientFactory, creds *types.CredentialSet, opts awsprov.Options) ClientBuilder {
	return func(ctx context.Context, profile, region string) (*awsprov.Client, error) {
		cfg, err := awsprov.LoadProfileConfig(ctx, profile, region, creds)
		if err != nil {
			return nil, err
		}
		return awsprov.NewClient(factory(cfg), profile, region, opts), nil
	}
}

// Result is the complete fetch output for one run.
type Result struct {
	// Resources holds the normalized records per type, ordered by
	// region then profile declaration order, API order within each.
	Resources map[types.ResourceType][]types.Resource

	// AccountIDs maps profile name to its AWS account ID.
	AccountIDs map[string]string
}

// Fetcher runs discovery across the (profile, region, type)
// cross-product with bounded concurrency.
type Fetcher struct {
	regions  []string
	profiles []string
	limit    int
	build    ClientBuilder
	logger   zerolog.Logger
}

// New creates a Fetcher. limit bounds concurrent API fan-out.
func New(regions, profiles []string, limit int, build ClientBuilder, logger zerolog.Logger) *Fetcher {
	if limit < 1 {
		limit = 1
	}
	return &Fetcher{
		regions:  regions,
		profiles: profiles,
		limit:    limit,
		build:    build,
		logger:   logger,
	}
}

// Fetch lists every requested resource type in every (region, profile)
// pair. Any permanent failure aborts the whole fetch: a partial index
// is worse than a hard failure, since downstream lookups assume
// completeness.
//
// The merged output is deterministic regardless of completion order:
// for each type, results are concatenated region by region in
// configured order, profile by profile in declared order.
func (f *Fetcher) Fetch(ctx context.Context, rts []types.ResourceType) (*Result, error) {
	clients, err := f.buildClients(ctx)
	if err != nil {
		return nil, err
	}

	type slot struct {
		region  string
		profile string
		rt      types.ResourceType
	}

	slots := make([]slot, 0, len(f.regions)*len(f.profiles)*len(rts))
	for _, region := range f.regions {
		for _, profile := range f.profiles {
			for _, rt := range rts {
				slots = append(slots, slot{region: region, profile: profile, rt: rt})
			}
		}
	}

	fetched := make([][]types.Resource, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.limit)
	for i, s := range slots {
		i, s := i, s
		g.Go(func() error {
			client := clients[clientKey(s.profile, s.region)]
			resources, err := client.List(gctx, s.rt)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", s.rt, err)
			}
			f.logger.Debug().
				Str("type", string(s.rt)).
				Str("profile", s.profile).
				Str("region", s.region).
				Int("count", len(resources)).
				Msg("fetched resources")
			fetched[i] = resources
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Resources: make(map[types.ResourceType][]types.Resource, len(rts))}
	for _, rt := range rts {
		merged := []types.Resource{}
		for i, s := range slots {
			if s.rt == rt {
				merged = append(merged, fetched[i]...)
			}
		}
		result.Resources[rt] = merged
	}

	accountIDs, err := f.accountIDs(ctx, clients)
	if err != nil {
		return nil, err
	}
	result.AccountIDs = accountIDs

	return result, nil
}

// AccountIDs resolves each profile's account identity without fetching
// resources, for runs where every resource type was a cache hit.
func (f *Fetcher) AccountIDs(ctx context.Context) (map[string]string, error) {
	clients, err := f.buildClients(ctx)
	if err != nil {
		return nil, err
	}
	return f.accountIDs(ctx, clients)
}

// accountIDs queries STS once per profile, against the first
// configured region.
func (f *Fetcher) accountIDs(ctx context.Context, clients map[string]*awsprov.Client) (map[string]string, error) {
	ids := make(map[string]string, len(f.profiles))
	for _, profile := range f.profiles {
		client := clients[clientKey(profile, f.regions[0])]
		id, err := client.AccountID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve account ID: %w", err)
		}
		ids[profile] = id
	}
	return ids, nil
}

// buildClients constructs one client per (profile, region) pair up
// front so a misconfigured profile fails before any fan-out starts.
func (f *Fetcher) buildClients(ctx context.Context) (map[string]*awsprov.Client, error) {
	clients := make(map[string]*awsprov.Client, len(f.profiles)*len(f.regions))
	for _, profile := range f.profiles {
		for _, region := range f.regions {
			client, err := f.build(ctx, profile, region)
			if err != nil {
				return nil, fmt.Errorf("failed to build client for profile %q region %q: %w", profile, region, err)
			}
			clients[clientKey(profile, region)] = client
		}
	}
	return clients, nil
}

func clientKey(profile, region string) string {
	return profile + "\x00" + region
}
