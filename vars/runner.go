package vars

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yairfalse/awsvars/cache"
	"github.com/yairfalse/awsvars/config"
	"github.com/yairfalse/awsvars/fetcher"
	"github.com/yairfalse/awsvars/profiles"
	awsprov "github.com/yairfalse/awsvars/providers/aws"
	"github.com/yairfalse/awsvars/types"
)

// accountIDsSlot is the pseudo resource type under which the
// profile-to-account mapping is cached.
const accountIDsSlot = "account_ids"

// Runner executes one end-to-end variable run: profile selection and
// credential exchange, cache lookup, fetch of whatever is stale, index
// building and snapshot assembly.
type Runner struct {
	cfg       *config.Config
	cache     *cache.Manager
	exchanger *profiles.Exchanger
	builder   func(creds *types.CredentialSet) fetcher.ClientBuilder
	baseCreds BaseCredentialsFunc
	logger    zerolog.Logger
}

// RunnerOptions overrides the Runner's collaborators. Zero values use
// production implementations.
type RunnerOptions struct {
	ClientBuilder   func(creds *types.CredentialSet) fetcher.ClientBuilder
	BaseCredentials BaseCredentialsFunc
	Logger          zerolog.Logger
}

// NewRunner wires a Runner over the given configuration and cache.
func NewRunner(cfg *config.Config, cacheMgr *cache.Manager, exchanger *profiles.Exchanger, opts RunnerOptions) *Runner {
	logger := opts.Logger

	builder := opts.ClientBuilder
	if builder == nil {
		builder = func(creds *types.CredentialSet) fetcher.ClientBuilder {
			return fetcher.NewClientBuilder(awsprov.NewClientSet, creds, awsprov.Options{Logger: logger})
		}
	}

	baseCreds := opts.BaseCredentials
	if baseCreds == nil {
		baseCreds = ResolveBaseCredentials
	}

	return &Runner{
		cfg:       cfg,
		cache:     cacheMgr,
		exchanger: exchanger,
		builder:   builder,
		baseCreds: baseCreds,
		logger:    logger,
	}
}

// RunInput is the per-invocation runtime input.
type RunInput struct {
	// ExtraVars are the invocation's key/value variables, used for
	// profile matching.
	ExtraVars map[string]string

	// ProfileOverride short-circuits matching when it names a
	// configured profile.
	ProfileOverride string

	// FlushCache discards all cache entries before the run.
	FlushCache bool
}

// RunOutput carries the snapshot plus the environment exports for
// collaborators that consume credentials from the environment.
type RunOutput struct {
	Snapshot    *Snapshot
	Credentials *types.CredentialSet
	Env         map[string]string
}

// Run executes the pipeline. Any fatal error aborts before output is
// produced: a snapshot is all-or-nothing.
func (r *Runner) Run(ctx context.Context, in RunInput) (*RunOutput, error) {
	if in.FlushCache {
		if err := r.cache.Flush(); err != nil {
			return nil, fmt.Errorf("failed to flush cache: %w", err)
		}
	}

	selected, creds, err := r.selectProfile(ctx, in)
	if err != nil {
		return nil, err
	}

	resources, accountIDs, err := r.collect(ctx, creds)
	if err != nil {
		return nil, err
	}

	schemas := Schemas{}
	for _, rt := range types.AllResourceTypes() {
		schemas[rt] = r.cfg.TagSchema(rt)
	}

	env, err := r.exportEnv(ctx, creds)
	if err != nil {
		return nil, err
	}

	return &RunOutput{
		Snapshot:    Assemble(resources, schemas, accountIDs, selected),
		Credentials: creds,
		Env:         env,
	}, nil
}

// selectProfile resolves the run's profile and performs the one-time
// credential exchange. Exchange only happens for the mapping-shaped
// profile configuration; a plain name list fetches from every profile
// but never exchanges.
func (r *Runner) selectProfile(ctx context.Context, in RunInput) (string, *types.CredentialSet, error) {
	selected, ok := profiles.Resolve(r.cfg.Profiles, in.ExtraVars, in.ProfileOverride)
	if !ok {
		r.logger.Debug().Msg("no profile matched, ambient credentials remain in effect")
		return "", nil, nil
	}

	if !r.cfg.Profiles.Matchable() {
		// Override against a plain list surfaces the selection but
		// does not exchange.
		return selected, nil, nil
	}

	creds, err := r.exchanger.Exchange(ctx, selected)
	if err != nil {
		return "", nil, err
	}
	r.logger.Info().Str("profile", selected).Time("expires_at", creds.ExpiresAt).Msg("exchanged temporary credentials")
	return selected, creds, nil
}

// collect returns all resources and the account-id mapping, reading
// each cache slot and fetching only what is stale or missing.
func (r *Runner) collect(ctx context.Context, creds *types.CredentialSet) (map[types.ResourceType][]types.Resource, map[string]string, error) {
	resources := make(map[types.ResourceType][]types.Resource, len(types.AllResourceTypes()))
	var missing []types.ResourceType

	for _, rt := range types.AllResourceTypes() {
		entry, ok := r.cache.Get(r.key(string(rt)))
		if !ok {
			missing = append(missing, rt)
			continue
		}
		var cached []types.Resource
		if err := json.Unmarshal(entry.Payload, &cached); err != nil {
			r.logger.Warn().Err(err).Str("type", string(rt)).Msg("corrupt cache payload, refetching")
			missing = append(missing, rt)
			continue
		}
		resources[rt] = cached
	}

	accountIDs, haveAccounts := r.cachedAccountIDs()

	if len(missing) == 0 && haveAccounts {
		r.logger.Debug().Msg("all resource types served from cache")
		return resources, accountIDs, nil
	}

	f := fetcher.New(r.cfg.Regions, r.cfg.Profiles.Names, r.cfg.MaxConcurrentRequests, r.builder(creds), r.logger)

	if len(missing) == 0 {
		ids, err := f.AccountIDs(ctx)
		if err != nil {
			return nil, nil, err
		}
		r.putSlot(accountIDsSlot, ids)
		return resources, ids, nil
	}

	result, err := f.Fetch(ctx, missing)
	if err != nil {
		return nil, nil, err
	}

	for _, rt := range missing {
		resources[rt] = result.Resources[rt]
		r.putSlot(string(rt), result.Resources[rt])
	}
	r.putSlot(accountIDsSlot, result.AccountIDs)

	return resources, result.AccountIDs, nil
}

// cachedAccountIDs reads the account-id slot.
func (r *Runner) cachedAccountIDs() (map[string]string, bool) {
	entry, ok := r.cache.Get(r.key(accountIDsSlot))
	if !ok {
		return nil, false
	}
	var ids map[string]string
	if err := json.Unmarshal(entry.Payload, &ids); err != nil {
		r.logger.Warn().Err(err).Msg("corrupt account-id cache payload, refetching")
		return nil, false
	}
	return ids, true
}

// putSlot writes one cache slot; cache write failures are warnings,
// not run failures.
func (r *Runner) putSlot(slot string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn().Err(err).Str("slot", slot).Msg("failed to marshal cache payload")
		return
	}
	if err := r.cache.Put(r.key(slot), data); err != nil {
		r.logger.Warn().Err(err).Str("slot", slot).Msg("failed to write cache entry")
	}
}

func (r *Runner) key(slot string) string {
	return cache.Key(slot, r.cfg.Regions, r.cfg.Profiles.Names)
}

// exportEnv resolves every profile's base credentials under prefixed
// names, then lays the exchanged credentials over the standard
// variables when a profile was matched.
func (r *Runner) exportEnv(ctx context.Context, creds *types.CredentialSet) (map[string]string, error) {
	env := make(map[string]string)

	for _, profile := range r.cfg.Profiles.Names {
		base, err := r.baseCreds(ctx, profile)
		if err != nil {
			return nil, &profiles.CredentialError{Profile: profile, Err: err}
		}
		for k, v := range ProfileCredentialEnv(profile, base) {
			env[k] = v
		}
	}

	for k, v := range CredentialEnv(creds) {
		env[k] = v
	}

	return env, nil
}
